package samples

import (
	"testing"

	"github.com/kalambet/meishi/internal/document"
	"github.com/kalambet/meishi/internal/layout"
)

func TestInputEveryLayout(t *testing.T) {
	for _, d := range layout.Catalog() {
		in, ok := Input(string(d.ID))
		if !ok {
			t.Fatalf("Input(%s) not found", d.ID)
		}
		if in.Layout() != d.ID {
			t.Errorf("Input(%s).Layout() = %s", d.ID, in.Layout())
		}
		if len(in.Profile.Links) != 3 || len(in.Profile.PhotoURLs) != layout.MaxPhotos {
			t.Errorf("Input(%s) links=%d photos=%d, want 3 and %d", d.ID, len(in.Profile.Links), len(in.Profile.PhotoURLs), layout.MaxPhotos)
		}
		if got := in.Document.Sections.Present(); len(got) != len(document.Keys()) {
			t.Errorf("Input(%s) sections = %v, want all six", d.ID, got)
		}
	}
}

func TestInputUnknownLayout(t *testing.T) {
	for _, id := range []string{"", "L00", "L11", "l01", "sample"} {
		if _, ok := Input(id); ok {
			t.Errorf("Input(%q) found, want false", id)
		}
	}
}

func TestInputReturnsCopies(t *testing.T) {
	a, _ := Input("L01")
	a.Profile.PhotoURLs[0] = "changed.jpg"
	a.Document.Sections.Quick.Body = "changed"

	b, _ := Input("L01")
	if b.Profile.PhotoURLs[0] == "changed.jpg" || b.Document.Sections.Quick.Body == "changed" {
		t.Error("Input shares state between calls")
	}
}
