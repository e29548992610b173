package render

import (
	"io"

	"golang.org/x/net/html"

	"github.com/kalambet/meishi/internal/layout"
)

// WriteCatalog writes the template showcase: one card per descriptor with
// its id, name, description and features, linking to href(id).
func WriteCatalog(w io.Writer, layouts []layout.Descriptor, href func(layout.ID) string) error {
	grid := el("div", a("class", "grid gap-8 sm:grid-cols-2 lg:grid-cols-3"))
	for _, d := range layouts {
		tags := el("ul", a("class", "flex flex-wrap gap-2"))
		for _, f := range d.Features() {
			tags.AppendChild(el("li", a("class", "rounded-md bg-gray-100 px-2 py-1 text-xs"), text(f)))
		}
		grid.AppendChild(el("a", a("href", href(d.ID), "data-layout", string(d.ID), "class", "block rounded-lg border border-gray-200"),
			el("div", a("class", "border-b border-gray-200 bg-gray-50 px-6 py-4"),
				el("span", a("class", "text-sm font-semibold"), text(string(d.ID))),
				el("h2", a("class", "text-lg"), text(d.Name)),
			),
			el("div", a("class", "px-6 py-4"),
				el("p", a("class", "mb-4 text-sm text-gray-600"), text(d.Description)),
				tags,
			),
		))
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(el("html", a("lang", "en"),
		el("head", nil,
			el("meta", a("charset", "utf-8")),
			el("meta", a("name", "viewport", "content", "width=device-width, initial-scale=1")),
			el("title", nil, text("Layout templates")),
		),
		el("body", a("class", "bg-white text-gray-900"),
			el("main", a("data-block", "catalog", "class", "mx-auto max-w-6xl px-4 py-20"),
				el("h1", a("class", "mb-12 text-center text-5xl font-light"), text("Layout templates")),
				grid,
			),
		),
	))
	return html.Render(w, doc)
}
