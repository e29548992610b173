package layout

import (
	"fmt"
	"slices"

	"github.com/kalambet/meishi/internal/document"
)

// Entry is one rendered section with its assigned photo and label.
type Entry struct {
	Key     document.SectionKey `json:"key"`
	Anchor  string              `json:"anchor"`
	Heading string              `json:"heading,omitempty"`
	Summary string              `json:"summary,omitempty"`
	Body    string              `json:"body"`
	Photo   string              `json:"photo,omitempty"`
	Number  int                 `json:"number,omitempty"`
	Marker  bool                `json:"marker,omitempty"`
}

// Label is the heading as displayed: "Q{n} heading" for numbered templates.
func (e Entry) Label() string {
	if e.Number > 0 {
		if e.Heading == "" {
			return fmt.Sprintf("Q%d", e.Number)
		}
		return fmt.Sprintf("Q%d %s", e.Number, e.Heading)
	}
	return e.Heading
}

// IndexEntry is one jump link of the table of contents.
type IndexEntry struct {
	Anchor string `json:"anchor"`
	Title  string `json:"title"`
}

// Plan is the complete slot assignment for one page.
type Plan struct {
	Layout     Descriptor   `json:"layout"`
	Hero       string       `json:"hero,omitempty"`
	Entries    []Entry      `json:"entries"`
	Index      []IndexEntry `json:"index,omitempty"`
	Disclaimer bool         `json:"disclaimer"`
}

// Keys returns the section keys of the plan in render order.
func (p Plan) Keys() []document.SectionKey {
	out := make([]document.SectionKey, 0, len(p.Entries))
	for _, e := range p.Entries {
		out = append(out, e.Key)
	}
	return out
}

// indexFallback titles a quick section, which has no heading of its own.
const indexFallback = "Profile"

// Assign maps photos and sections onto the template named by layoutID.
// photos[0] is the hero, photos[1:5] feed the section slots and anything
// beyond is ignored. Missing photos leave their slot empty. Unrecognized
// ids use L01. Assign never fails.
func Assign(photos []string, sections document.Sections, layoutID string) Plan {
	d := Lookup(layoutID)
	plan := Plan{Layout: d}

	if len(photos) > 0 {
		plan.Hero = photos[0]
	}
	var sectionPhotos []string
	if len(photos) > 1 && d.Photos != PhotosNone {
		sectionPhotos = photos[1:min(len(photos), MaxPhotos)]
	}

	n := 0
	for _, k := range d.Order {
		sec := sections.Get(k)
		if sec == nil {
			continue
		}
		n++
		e := Entry{
			Key:     k,
			Anchor:  "section-" + string(k),
			Heading: sec.Heading,
			Summary: sec.Summary,
			Body:    sec.Body,
		}
		if i, ok := photoIndex[k]; ok && i < len(sectionPhotos) {
			e.Photo = sectionPhotos[i]
		}
		switch d.Numbering {
		case NumberingSequential:
			e.Number = n
		case NumberingMarker:
			e.Marker = slices.Contains(d.MarkerKeys, k)
		}
		if e.Marker && d.Disclaimer {
			plan.Disclaimer = true
		}
		if d.Index {
			title := e.Heading
			if title == "" {
				title = indexFallback
			}
			plan.Index = append(plan.Index, IndexEntry{Anchor: e.Anchor, Title: title})
		}
		plan.Entries = append(plan.Entries, e)
	}

	return plan
}
