package render

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/kalambet/meishi/internal/document"
	"github.com/kalambet/meishi/internal/layout"
	"github.com/kalambet/meishi/internal/profile"
)

func fullDocument() *document.Document {
	sec := func(k string) *document.Section {
		return &document.Section{Heading: k + " heading", Summary: k + " summary", Body: k + " body"}
	}
	return &document.Document{
		ThemeID:  "T02",
		Headline: "Generated headline",
		Sections: document.Sections{
			Quick:  &document.Section{Body: "quick body"},
			Reason: sec("reason"),
			Values: sec("values"),
			NotFit: sec("notFit"),
			Proof:  &document.Section{Heading: "proof heading", Body: "proof body"},
			Human:  sec("human"),
		},
	}
}

func fullInput(layoutID string) Input {
	return Input{
		Profile: profile.Profile{
			Name:             "Aiko Tanaka",
			Headline:         "Own headline",
			Tagline:          "Own tagline",
			LayoutTemplateID: layoutID,
			PhotoURLs:        []string{"hero.jpg", "p1.jpg", "p2.jpg", "p3.jpg", "p4.jpg"},
			Links: []profile.Link{
				{Label: "Site", URL: "example.com"},
				{Label: "Blog", URL: "http://blog.example.com"},
			},
		},
		Document: fullDocument(),
		ShareURL: "https://meishi.example/abc123",
	}
}

func renderTree(t *testing.T, in Input) *html.Node {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, in); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	doc, err := html.Parse(&buf)
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}
	return doc
}

func attr(n *html.Node, key string) string {
	for _, at := range n.Attr {
		if at.Key == key {
			return at.Val
		}
	}
	return ""
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func byAttr(key, val string) func(*html.Node) bool {
	return func(n *html.Node) bool { return attr(n, key) == val }
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func sectionKeys(doc *html.Node) []string {
	var keys []string
	for _, n := range findAll(doc, func(n *html.Node) bool { return attr(n, "data-section") != "" }) {
		keys = append(keys, attr(n, "data-section"))
	}
	return keys
}

func TestPage_SectionsPerLayout(t *testing.T) {
	full := []string{"quick", "reason", "values", "notFit", "proof", "human"}
	tests := []struct {
		layout string
		want   []string
	}{
		{"L01", full},
		{"L02", full},
		{"L03", full},
		{"L04", full},
		{"L05", full},
		{"L06", []string{"reason", "values", "notFit", "human"}},
		{"L07", full},
		{"L08", full},
		{"L09", full},
		{"L10", full},
	}
	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			doc := renderTree(t, fullInput(tt.layout))
			if diff := cmp.Diff(tt.want, sectionKeys(doc)); diff != "" {
				t.Errorf("sections mismatch (-want +got):\n%s", diff)
			}
			body := findAll(doc, func(n *html.Node) bool { return n.Data == "body" })[0]
			if got := attr(body, "data-layout"); got != tt.layout {
				t.Errorf("data-layout = %q, want %q", got, tt.layout)
			}
		})
	}
}

func TestPage_UnknownLayoutFallsBack(t *testing.T) {
	doc := renderTree(t, fullInput("L99"))
	body := findAll(doc, func(n *html.Node) bool { return n.Data == "body" })[0]
	if got := attr(body, "data-layout"); got != "L01" {
		t.Errorf("data-layout = %q, want L01", got)
	}
}

func TestPage_StandalonePhotos(t *testing.T) {
	doc := renderTree(t, fullInput("L01"))
	got := map[string]string{}
	for _, f := range findAll(doc, func(n *html.Node) bool { return n.Data == "figure" }) {
		img := findAll(f, func(n *html.Node) bool { return n.Data == "img" })[0]
		got[attr(f, "data-photo-for")] = attr(img, "src")
	}
	want := map[string]string{"reason": "p1.jpg", "values": "p2.jpg", "notFit": "p3.jpg", "human": "p4.jpg"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("photo slots mismatch (-want +got):\n%s", diff)
	}
}

func TestPage_CondensedHasNoSectionPhotos(t *testing.T) {
	for _, id := range []string{"L09", "L10"} {
		doc := renderTree(t, fullInput(id))
		var srcs []string
		for _, img := range findAll(doc, func(n *html.Node) bool { return n.Data == "img" && strings.HasSuffix(attr(n, "src"), ".jpg") }) {
			srcs = append(srcs, attr(img, "src"))
		}
		if diff := cmp.Diff([]string{"hero.jpg"}, srcs); diff != "" {
			t.Errorf("%s photos mismatch (-want +got):\n%s", id, diff)
		}
	}
}

func TestPage_EmbeddedPhotos(t *testing.T) {
	doc := renderTree(t, fullInput("L06"))
	if figs := findAll(doc, func(n *html.Node) bool { return n.Data == "figure" }); len(figs) != 0 {
		t.Errorf("L06 rendered %d standalone figures, want 0", len(figs))
	}
	reason := findAll(doc, byAttr("data-section", "reason"))[0]
	first := reason.FirstChild
	if first == nil || first.Data != "img" || attr(first, "src") != "p1.jpg" {
		t.Errorf("reason section does not start with its photo")
	}
}

func TestPage_Numbering(t *testing.T) {
	doc := renderTree(t, fullInput("L05"))
	var headings []string
	for _, s := range findAll(doc, func(n *html.Node) bool { return attr(n, "data-section") != "" }) {
		for _, h := range findAll(s, func(n *html.Node) bool { return n.Data == "h2" }) {
			headings = append(headings, textOf(h))
		}
	}
	want := []string{"Q1", "Q2 reason heading", "Q3 values heading", "Q4 notFit heading", "Q5 proof heading", "Q6 human heading"}
	if diff := cmp.Diff(want, headings); diff != "" {
		t.Errorf("headings mismatch (-want +got):\n%s", diff)
	}
}

func TestPage_MarkersAndDisclaimer(t *testing.T) {
	doc := renderTree(t, fullInput("L03"))
	if got := len(findAll(doc, byAttr("data-marker", "Q"))); got != 5 {
		t.Errorf("markers = %d, want 5", got)
	}
	if got := len(findAll(doc, byAttr("data-block", "disclaimer"))); got != 1 {
		t.Errorf("disclaimer blocks = %d, want 1", got)
	}

	doc = renderTree(t, fullInput("L01"))
	if got := len(findAll(doc, byAttr("data-block", "disclaimer"))); got != 0 {
		t.Errorf("L01 disclaimer blocks = %d, want 0", got)
	}
}

func TestPage_Index(t *testing.T) {
	doc := renderTree(t, fullInput("L04"))
	nav := findAll(doc, byAttr("data-block", "index"))
	if len(nav) != 1 {
		t.Fatalf("index blocks = %d, want 1", len(nav))
	}
	var hrefs []string
	for _, l := range findAll(nav[0], func(n *html.Node) bool { return n.Data == "a" }) {
		hrefs = append(hrefs, attr(l, "href"))
	}
	want := []string{"#section-quick", "#section-reason", "#section-values", "#section-notFit", "#section-proof", "#section-human"}
	if diff := cmp.Diff(want, hrefs); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}
}

func TestPage_Banner(t *testing.T) {
	doc := renderTree(t, fullInput("L08"))
	if got := len(findAll(doc, byAttr("data-banner", "true"))); got != 5 {
		t.Errorf("bannered headings = %d, want 5", got)
	}
}

func TestPage_CardSurfaces(t *testing.T) {
	for _, tt := range []struct {
		layoutID string
		cards    bool
	}{{"L02", true}, {"L01", false}, {"L09", false}} {
		doc := renderTree(t, fullInput(tt.layoutID))
		for _, n := range findAll(doc, byAttr("data-section", "reason")) {
			if got := strings.Contains(attr(n, "class"), "rounded-xl"); got != tt.cards {
				t.Errorf("%s reason section class = %q, card = %v, want %v", tt.layoutID, attr(n, "class"), got, tt.cards)
			}
		}
	}
}

func TestPage_Links(t *testing.T) {
	doc := renderTree(t, fullInput("L01"))
	block := findAll(doc, byAttr("data-block", "links"))
	if len(block) != 1 {
		t.Fatalf("links blocks = %d, want 1", len(block))
	}
	anchors := findAll(block[0], func(n *html.Node) bool { return n.Data == "a" })
	var hrefs []string
	for _, l := range anchors {
		hrefs = append(hrefs, attr(l, "href"))
		if attr(l, "target") != "_blank" || attr(l, "rel") != "noopener noreferrer" {
			t.Errorf("link %q missing target/rel", attr(l, "href"))
		}
	}
	if diff := cmp.Diff([]string{"https://example.com", "http://blog.example.com"}, hrefs); diff != "" {
		t.Errorf("hrefs mismatch (-want +got):\n%s", diff)
	}

	in := fullInput("L01")
	in.Profile.Links = nil
	doc = renderTree(t, in)
	if got := len(findAll(doc, byAttr("data-block", "links"))); got != 0 {
		t.Errorf("links blocks without links = %d, want 0", got)
	}
}

func TestPage_ShareBlockLast(t *testing.T) {
	doc := renderTree(t, fullInput("L06"))
	main := findAll(doc, func(n *html.Node) bool { return n.Data == "main" })[0]
	last := main.LastChild
	if attr(last, "data-block") != "share" {
		t.Fatalf("last block = %q, want share", attr(last, "data-block"))
	}
	if prev := last.PrevSibling; attr(prev, "data-block") != "links" {
		t.Errorf("block before share = %q, want links", attr(prev, "data-block"))
	}
	imgs := findAll(last, func(n *html.Node) bool { return n.Data == "img" })
	if len(imgs) != 1 || !strings.HasPrefix(attr(imgs[0], "src"), "data:image/png;base64,") {
		t.Errorf("share block has no QR data URI")
	}
	buttons := findAll(last, func(n *html.Node) bool { return n.Data == "button" })
	if len(buttons) != 1 || attr(buttons[0], "data-copy") != "https://meishi.example/abc123" {
		t.Errorf("share block copy button missing or wrong")
	}
}

func TestPage_HeroOverrides(t *testing.T) {
	doc := renderTree(t, fullInput("L01"))
	headline := findAll(doc, byAttr("data-field", "headline"))
	if len(headline) != 1 || textOf(headline[0]) != "Generated headline" {
		t.Errorf("headline not overridden by document")
	}
	tagline := findAll(doc, byAttr("data-field", "tagline"))
	if len(tagline) != 1 || textOf(tagline[0]) != "Own tagline" {
		t.Errorf("tagline should fall back to profile value")
	}
}

func TestPage_ThemeResolution(t *testing.T) {
	tests := []struct {
		name     string
		override string
		profile  string
		want     string
	}{
		{"document theme", "", "", "T02"},
		{"profile theme wins", "", "T05", "T05"},
		{"invalid profile theme", "", "T11", "T02"},
		{"override", "T08", "T05", "T08"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := fullInput("L01")
			in.ThemeID = tt.override
			in.Profile.ThemeID = tt.profile
			doc := renderTree(t, in)
			body := findAll(doc, func(n *html.Node) bool { return n.Data == "body" })[0]
			if got := attr(body, "data-theme"); got != tt.want {
				t.Errorf("data-theme = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPage_NoDocument(t *testing.T) {
	in := fullInput("L01")
	in.Document = nil
	doc := renderTree(t, in)
	if keys := sectionKeys(doc); len(keys) != 0 {
		t.Errorf("sections = %v, want none", keys)
	}
	body := findAll(doc, func(n *html.Node) bool { return n.Data == "body" })[0]
	if got := attr(body, "data-theme"); got != "T01" {
		t.Errorf("data-theme = %q, want T01", got)
	}
}

func TestPage_DoesNotMutateInput(t *testing.T) {
	in := fullInput("L04")
	before := fullInput("L04")
	_ = Page(in)
	if diff := cmp.Diff(before, in); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestPage_SampleBanner(t *testing.T) {
	doc := renderTree(t, fullInput("L03"))
	if n := findAll(doc, byAttr("data-block", "sample-banner")); len(n) != 0 {
		t.Errorf("regular page has a sample banner")
	}

	in := fullInput("L03")
	in.CatalogURL = "/samples"
	doc = renderTree(t, in)
	banners := findAll(doc, byAttr("data-block", "sample-banner"))
	if len(banners) != 1 {
		t.Fatalf("sample banners = %d, want 1", len(banners))
	}
	if got := textOf(banners[0]); !strings.Contains(got, "Interview (L03)") {
		t.Errorf("banner text = %q, want template name and id", got)
	}
	if back := findAll(banners[0], byAttr("href", "/samples")); len(back) != 1 {
		t.Error("banner has no link back to the catalog")
	}
}

func TestWriteCatalog(t *testing.T) {
	var buf bytes.Buffer
	href := func(id layout.ID) string { return "/samples/" + string(id) }
	if err := WriteCatalog(&buf, layout.Catalog(), href); err != nil {
		t.Fatalf("WriteCatalog: %v", err)
	}
	doc, err := html.Parse(&buf)
	if err != nil {
		t.Fatal(err)
	}
	cards := findAll(doc, func(n *html.Node) bool { return n.Data == "a" && attr(n, "data-layout") != "" })
	if len(cards) != 10 {
		t.Fatalf("cards = %d, want 10", len(cards))
	}
	if got := attr(cards[5], "href"); got != "/samples/L06" {
		t.Errorf("sixth card href = %q, want /samples/L06", got)
	}
	if got := textOf(cards[3]); !strings.Contains(got, "Table of contents") {
		t.Errorf("L04 card = %q, want its features listed", got)
	}
}

func TestLinkHref(t *testing.T) {
	tests := []struct{ in, want string }{
		{"example.com", "https://example.com"},
		{"https://example.com", "https://example.com"},
		{"HTTP://example.com", "HTTP://example.com"},
		{" x.com/a ", "https://x.com/a"},
	}
	for _, tt := range tests {
		if got := LinkHref(tt.in); got != tt.want {
			t.Errorf("LinkHref(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteNotFound(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteNotFound(&buf); err != nil {
		t.Fatalf("WriteNotFound() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Page not found") {
		t.Errorf("output = %s", buf.String())
	}
}

func ExampleLinkHref() {
	fmt.Println(LinkHref("example.com/me"))
	// Output: https://example.com/me
}
