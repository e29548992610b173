// Package layout describes the ten page templates as data and maps a
// profile's photos and generated sections onto the chosen template.
package layout

import (
	"regexp"
	"slices"

	"github.com/kalambet/meishi/internal/document"
)

// ID identifies one of the ten templates, L01 through L10.
type ID string

// Default is used for missing or unrecognized template ids.
const Default ID = "L01"

var idPattern = regexp.MustCompile(`^L(0[1-9]|10)$`)

// Parse validates s against the closed L01..L10 set.
func Parse(s string) (ID, bool) {
	if !idPattern.MatchString(s) {
		return "", false
	}
	return ID(s), true
}

// Numbering selects how section headings are labeled.
type Numbering int

const (
	NumberingNone Numbering = iota
	// NumberingMarker prefixes the marker keys with a decorative "Q".
	NumberingMarker
	// NumberingSequential labels present sections Q1, Q2, ... in order.
	NumberingSequential
)

// PhotoPlacement selects where section photos go.
type PhotoPlacement int

const (
	PhotosStandalone PhotoPlacement = iota
	PhotosEmbedded
	PhotosNone
)

// Palette is the template's static chrome, independent of the theme.
type Palette struct {
	Page    string `json:"page"`
	Heading string `json:"heading"`
	Band    string `json:"band,omitempty"`
	Links   string `json:"links"`
	Accent  string `json:"accent,omitempty"`
}

// Descriptor is the declarative record of one template.
type Descriptor struct {
	ID          ID                    `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Order       []document.SectionKey `json:"order"`
	Numbering   Numbering             `json:"numbering"`
	MarkerKeys  []document.SectionKey `json:"markerKeys,omitempty"`
	Index       bool                  `json:"index"`
	Disclaimer  bool                  `json:"disclaimer"`
	Banner      bool                  `json:"banner"`
	Cards       bool                  `json:"cards"`
	Photos      PhotoPlacement        `json:"photos"`
	Bands       bool                  `json:"bands"`
	Condensed   bool                  `json:"condensed"`
	DarkLinks   bool                  `json:"darkLinks"`
	Palette     Palette               `json:"palette"`
}

// photoIndex maps a section to its slot in photos[1:5]. Quick and proof
// never take a photo.
var photoIndex = map[document.SectionKey]int{
	document.Reason: 0,
	document.Values: 1,
	document.NotFit: 2,
	document.Human:  3,
}

// MaxPhotos is the number of photos a profile may carry: one hero and four
// section photos.
const MaxPhotos = 5

var (
	fullOrder  = document.Keys()
	storyOrder = []document.SectionKey{document.Reason, document.Values, document.NotFit, document.Human}
	qMarked    = []document.SectionKey{document.Reason, document.Values, document.NotFit, document.Proof, document.Human}
)

var catalog = []Descriptor{
	{
		ID: "L01", Name: "Standard", Description: "Single column with a photo before each section.",
		Order: fullOrder,
		Palette: Palette{Page: "bg-white", Heading: "text-xl font-bold", Links: "bg-gray-50"},
	},
	{
		ID: "L02", Name: "Cards", Description: "Each section on its own rounded card.",
		Order: fullOrder, Cards: true,
		Palette: Palette{Page: "bg-gray-100", Heading: "text-lg font-semibold", Links: "bg-white rounded-xl"},
	},
	{
		ID: "L03", Name: "Interview", Description: "Interview article with Q markers and a closing note.",
		Order: fullOrder, Numbering: NumberingMarker, MarkerKeys: qMarked, Disclaimer: true,
		Palette: Palette{Page: "bg-white", Heading: "text-xl font-serif", Links: "bg-white border-t", Accent: "text-red-700"},
	},
	{
		ID: "L04", Name: "Magazine", Description: "Table of contents linking to each section.",
		Order: fullOrder, Index: true,
		Palette: Palette{Page: "bg-stone-50", Heading: "text-2xl font-serif", Links: "bg-stone-100"},
	},
	{
		ID: "L05", Name: "Q&A", Description: "Sections numbered as consecutive questions.",
		Order: fullOrder, Numbering: NumberingSequential,
		Palette: Palette{Page: "bg-white", Heading: "text-lg font-bold", Links: "bg-blue-50", Accent: "text-blue-600"},
	},
	{
		ID: "L06", Name: "Story", Description: "Photos set into each section with a dark link block.",
		Order: storyOrder, Photos: PhotosEmbedded, DarkLinks: true,
		Palette: Palette{Page: "bg-white", Heading: "text-2xl font-black", Links: "bg-[#2d2d2d] text-white", Accent: "text-[#FFC107]"},
	},
	{
		ID: "L07", Name: "Elegant", Description: "Serif typography with generous spacing.",
		Order: fullOrder,
		Palette: Palette{Page: "bg-neutral-50", Heading: "text-xl font-serif tracking-wide", Links: "bg-neutral-100"},
	},
	{
		ID: "L08", Name: "Banner", Description: "Section headings set on full-width banners.",
		Order: fullOrder, Banner: true,
		Palette: Palette{Page: "bg-white", Heading: "text-lg font-bold text-white bg-gray-800 px-4 py-2", Links: "bg-gray-50"},
	},
	{
		ID: "L09", Name: "Compact", Description: "Single-photo header with alternating bands.",
		Order: fullOrder, Photos: PhotosNone, Bands: true, Condensed: true,
		Palette: Palette{Page: "bg-white", Heading: "text-lg font-semibold", Band: "bg-gray-50", Links: "bg-white"},
	},
	{
		ID: "L10", Name: "Compact contrast", Description: "Single-photo header with tinted alternating bands.",
		Order: fullOrder, Photos: PhotosNone, Bands: true, Condensed: true,
		Palette: Palette{Page: "bg-slate-50", Heading: "text-lg font-semibold", Band: "bg-slate-200", Links: "bg-slate-100"},
	},
}

// Catalog returns all ten descriptors in id order. Callers own the result.
func Catalog() []Descriptor {
	out := make([]Descriptor, len(catalog))
	for i, d := range catalog {
		out[i] = d.clone()
	}
	return out
}

func (d Descriptor) clone() Descriptor {
	d.Order = slices.Clone(d.Order)
	d.MarkerKeys = slices.Clone(d.MarkerKeys)
	return d
}

// Lookup returns the descriptor for s, falling back to L01.
func Lookup(s string) Descriptor {
	if id, ok := Parse(s); ok {
		for _, d := range catalog {
			if d.ID == id {
				return d.clone()
			}
		}
	}
	return catalog[0].clone()
}

// Features lists the template's distinguishing traits for catalog display.
func (d Descriptor) Features() []string {
	var out []string
	switch d.Numbering {
	case NumberingMarker:
		out = append(out, "Q markers")
	case NumberingSequential:
		out = append(out, "Numbered questions")
	}
	if d.Index {
		out = append(out, "Table of contents")
	}
	if d.Cards {
		out = append(out, "Section cards")
	}
	if d.Banner {
		out = append(out, "Banner headings")
	}
	switch d.Photos {
	case PhotosStandalone:
		out = append(out, "Photo per section")
	case PhotosEmbedded:
		out = append(out, "Photos in sections")
	case PhotosNone:
		out = append(out, "Single photo")
	}
	if d.Bands {
		out = append(out, "Alternating bands")
	}
	if d.Disclaimer {
		out = append(out, "Closing note")
	}
	return out
}
