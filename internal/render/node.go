package render

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// el builds an element node. Attributes are given as name/value pairs;
// pairs with an empty value are skipped. Nil children are ignored.
func el(tag string, attrs []string, children ...*html.Node) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i+1] == "" {
			continue
		}
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	for _, c := range children {
		if c != nil {
			n.AppendChild(c)
		}
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func a(kv ...string) []string { return kv }

// cls joins the non-empty class names.
func cls(names ...string) string {
	out := names[:0:0]
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, " ")
}

// paragraphs splits body text on blank lines; single newlines become <br>.
func paragraphs(body, class string) []*html.Node {
	var out []*html.Node
	for _, block := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		p := el("p", a("class", class))
		for i, line := range strings.Split(block, "\n") {
			if i > 0 {
				p.AppendChild(el("br", nil))
			}
			p.AppendChild(text(line))
		}
		out = append(out, p)
	}
	return out
}
