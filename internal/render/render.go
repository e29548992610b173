// Package render turns a layout plan, a theme preset and the profile's
// identity fields into an HTML tree. One renderer serves every template;
// template differences come from the layout descriptor.
package render

import (
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/skip2/go-qrcode"
	"golang.org/x/net/html"

	"github.com/kalambet/meishi/internal/document"
	"github.com/kalambet/meishi/internal/layout"
	"github.com/kalambet/meishi/internal/profile"
	"github.com/kalambet/meishi/internal/theme"
)

const (
	qrSize          = 200
	disclaimerText  = "This page was written from the author's own answers and edited for readability."
	linksHeading    = "Links"
	shareHeading    = "Share this page"
	copyButtonLabel = "Copy link"
)

// Input is everything one page render needs. Page never modifies it.
type Input struct {
	Profile  profile.Profile
	Document *document.Document
	// LayoutID and ThemeID override the profile's choices when valid. The
	// owner preview uses them to try a template before saving it.
	LayoutID string
	ThemeID  string
	// ShareURL is the public address shown in the share block.
	ShareURL string
	// CatalogURL marks the page as a template sample and links back to the
	// showcase index.
	CatalogURL string
}

// Layout returns the template id that will be used for in.
func (in Input) Layout() layout.ID {
	if id, ok := layout.Parse(in.LayoutID); ok {
		return id
	}
	return layout.Lookup(in.Profile.LayoutTemplateID).ID
}

// Theme resolves the preset: a valid override first, then the profile's
// theme, then the document's, then the default.
func (in Input) Theme() theme.Preset {
	if id, ok := theme.ParseID(in.ThemeID); ok {
		return theme.Lookup(id)
	}
	var docTheme string
	if in.Document != nil {
		docTheme = string(in.Document.ThemeID)
	}
	return theme.Resolve(in.Profile.ThemeID, docTheme)
}

// Plan returns the slot assignment for in.
func (in Input) Plan() layout.Plan {
	var sections document.Sections
	if in.Document != nil {
		sections = in.Document.Sections
	}
	return layout.Assign(in.Profile.PhotoURLs, sections, string(in.Layout()))
}

// Write renders the full page to w.
func Write(w io.Writer, in Input) error {
	return html.Render(w, Page(in))
}

// Page builds the document node of the page.
func Page(in Input) *html.Node {
	plan := in.Plan()
	preset := in.Theme()
	d := plan.Layout

	title := in.Profile.Name
	if title == "" {
		title = "Introduction"
	}

	main := el("main", a("class", "mx-auto max-w-2xl"))
	if len(plan.Index) > 0 {
		main.AppendChild(index(plan.Index, preset))
	}
	for i, e := range plan.Entries {
		for _, n := range section(e, i, d, preset) {
			main.AppendChild(n)
		}
	}
	if plan.Disclaimer {
		main.AppendChild(el("aside", a("data-block", "disclaimer", "class", cls("text-sm", preset.TextSecondary)),
			text(disclaimerText)))
	}
	if l := links(in.Profile.Links, d, preset); l != nil {
		main.AppendChild(l)
	}
	main.AppendChild(share(in.ShareURL, preset))

	body := el("body",
		a(
			"class", cls(preset.Background, preset.TextPrimary, d.Palette.Page),
			"data-layout", string(d.ID),
			"data-theme", string(preset.ID),
		),
		sampleBanner(in.CatalogURL, d),
		hero(in, plan, preset),
		main,
	)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(el("html", a("lang", "en"),
		el("head", nil,
			el("meta", a("charset", "utf-8")),
			el("meta", a("name", "viewport", "content", "width=device-width, initial-scale=1")),
			el("title", nil, text(title)),
		),
		body,
	))
	return doc
}

func sampleBanner(catalogURL string, d layout.Descriptor) *html.Node {
	if catalogURL == "" {
		return nil
	}
	return el("div", a("data-block", "sample-banner", "class", "flex items-center gap-3 bg-gray-900 px-4 py-3 text-sm text-white"),
		el("span", a("class", "rounded-full bg-white/20 px-3 py-1"), text("Sample page")),
		el("span", nil, text(fmt.Sprintf("%s (%s)", d.Name, d.ID))),
		el("a", a("href", catalogURL, "class", "ml-auto underline"), text("All templates")),
	)
}

func hero(in Input, plan layout.Plan, preset theme.Preset) *html.Node {
	headline, tagline := in.Profile.Headline, in.Profile.Tagline
	if in.Document != nil {
		if in.Document.Headline != "" {
			headline = in.Document.Headline
		}
		if in.Document.Tagline != "" {
			tagline = in.Document.Tagline
		}
	}

	h := el("header", a("data-block", "hero", "class", cls("px-6 py-10 text-center", preset.Hero)))
	if plan.Hero != "" {
		imgClass := "mx-auto h-32 w-32 rounded-full object-cover"
		if plan.Layout.Condensed {
			imgClass = "h-48 w-full object-cover"
		}
		h.AppendChild(el("img", a("src", plan.Hero, "alt", in.Profile.Name, "class", imgClass)))
	}
	if in.Profile.Name != "" {
		h.AppendChild(el("h1", a("class", "text-3xl font-bold"), text(in.Profile.Name)))
	}
	if headline != "" {
		h.AppendChild(el("p", a("data-field", "headline", "class", cls("text-lg", preset.Accent)), text(headline)))
	}
	if tagline != "" {
		h.AppendChild(el("p", a("data-field", "tagline", "class", preset.TextSecondary), text(tagline)))
	}
	return h
}

func index(entries []layout.IndexEntry, preset theme.Preset) *html.Node {
	ul := el("ul", nil)
	for _, e := range entries {
		ul.AppendChild(el("li", nil, el("a", a("href", "#"+e.Anchor, "class", preset.Accent), text(e.Title))))
	}
	return el("nav", a("data-block", "index", "class", cls("border-b", preset.Border)), ul)
}

// section returns the nodes for one entry: an optional standalone figure
// followed by the section element.
func section(e layout.Entry, pos int, d layout.Descriptor, preset theme.Preset) []*html.Node {
	var out []*html.Node
	if e.Photo != "" && d.Photos == layout.PhotosStandalone {
		out = append(out, el("figure", a("data-photo-for", string(e.Key)),
			el("img", a("src", e.Photo, "alt", "", "class", "w-full rounded-lg object-cover"))))
	}

	var band string
	if d.Bands && pos%2 == 1 {
		band = d.Palette.Band
	}
	surface := ""
	if d.Cards {
		surface = cls(preset.Surface, preset.Elevation, "rounded-xl")
	}
	s := el("section", a(
		"id", e.Anchor,
		"data-section", string(e.Key),
		"class", cls("px-6", sectionSpacing(d), band, surface),
	))

	if e.Photo != "" && d.Photos == layout.PhotosEmbedded {
		s.AppendChild(el("img", a("src", e.Photo, "alt", "", "class", "mb-4 w-full object-cover")))
	}
	if h := heading(e, d, preset); h != nil {
		s.AppendChild(h)
	}
	if e.Summary != "" {
		s.AppendChild(el("p", a("data-field", "summary", "class", cls("font-medium", preset.TextSecondary)), text(e.Summary)))
	}
	for _, p := range paragraphs(e.Body, "leading-relaxed") {
		s.AppendChild(p)
	}
	return append(out, s)
}

func sectionSpacing(d layout.Descriptor) string {
	if d.Condensed {
		return "py-4"
	}
	return "py-8"
}

func heading(e layout.Entry, d layout.Descriptor, preset theme.Preset) *html.Node {
	label := e.Label()
	if label == "" && !e.Marker {
		return nil
	}
	h := el("h2", a("class", d.Palette.Heading))
	if d.Banner {
		h.Attr = append(h.Attr, html.Attribute{Key: "data-banner", Val: "true"})
	}
	if e.Marker {
		h.AppendChild(el("span", a("data-marker", "Q", "class", cls("mr-2", d.Palette.Accent, preset.Accent)), text("Q")))
	}
	if label != "" {
		h.AppendChild(text(label))
	}
	return h
}

func links(ls []profile.Link, d layout.Descriptor, preset theme.Preset) *html.Node {
	if len(ls) == 0 {
		return nil
	}
	border := preset.Border
	if d.DarkLinks {
		border = ""
	}
	ul := el("ul", a("class", "space-y-2"))
	for _, l := range ls {
		label := l.Label
		if label == "" {
			label = l.URL
		}
		ul.AppendChild(el("li", nil, el("a", a(
			"href", LinkHref(l.URL),
			"target", "_blank",
			"rel", "noopener noreferrer",
			"class", cls("block rounded border px-4 py-3", border),
		), text(label))))
	}
	return el("section", a("data-block", "links", "class", cls("px-6 py-8", d.Palette.Links)),
		el("h2", a("class", d.Palette.Heading), text(linksHeading)),
		ul,
	)
}

// LinkHref prefixes https:// to URLs that carry no http(s) scheme.
func LinkHref(u string) string {
	u = strings.TrimSpace(u)
	lower := strings.ToLower(u)
	if strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") {
		return u
	}
	return "https://" + u
}

func share(url string, preset theme.Preset) *html.Node {
	s := el("section", a("data-block", "share", "class", cls("px-6 py-8 text-center", preset.Surface)),
		el("h2", a("class", "text-lg font-semibold"), text(shareHeading)))
	if url == "" {
		return s
	}
	if src, err := QRDataURI(url); err != nil {
		slog.Warn("render: qr code", "url", url, "error", err)
	} else {
		s.AppendChild(el("img", a("src", src, "alt", "QR code for "+url, "width", fmt.Sprint(qrSize), "height", fmt.Sprint(qrSize), "class", "mx-auto")))
	}
	s.AppendChild(el("p", a("data-field", "share-url", "class", preset.TextSecondary), text(url)))
	s.AppendChild(el("button", a(
		"type", "button",
		"data-copy", url,
		"onclick", "navigator.clipboard.writeText(this.dataset.copy)",
		"class", cls("rounded border px-4 py-2", preset.Border),
	), text(copyButtonLabel)))
	return s
}

// QRDataURI encodes url as a PNG QR code inside a data URI.
func QRDataURI(url string) (string, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		return "", fmt.Errorf("encoding qr code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// WriteNotFound renders the page shown for missing and unpublished slugs.
func WriteNotFound(w io.Writer) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(el("html", a("lang", "en"),
		el("head", nil,
			el("meta", a("charset", "utf-8")),
			el("title", nil, text("Not found")),
		),
		el("body", a("class", "bg-white text-gray-900"),
			el("main", a("data-block", "not-found", "class", "mx-auto max-w-md py-24 text-center"),
				el("h1", a("class", "text-2xl font-bold"), text("Page not found")),
				el("p", a("class", "text-gray-600"), text("This page does not exist or is not public.")),
			),
		),
	))
	return html.Render(w, doc)
}
