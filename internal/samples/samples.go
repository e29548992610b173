// Package samples holds the fixed showcase profile used to demonstrate every
// layout template.
package samples

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/kalambet/meishi/internal/document"
	"github.com/kalambet/meishi/internal/layout"
	"github.com/kalambet/meishi/internal/profile"
	"github.com/kalambet/meishi/internal/render"
)

// Slug is the pseudo slug shown in sample share blocks.
const Slug = "sample"

//go:embed sample.json
var sampleJSON []byte

type fixture struct {
	Profile  profile.Profile   `json:"profile"`
	Document document.Document `json:"document"`
}

func init() {
	if _, err := load(); err != nil {
		panic(fmt.Sprintf("samples: %v", err))
	}
}

// load decodes a fresh copy so callers never share slices.
func load() (fixture, error) {
	var f fixture
	if err := json.Unmarshal(sampleJSON, &f); err != nil {
		return fixture{}, fmt.Errorf("decoding sample.json: %w", err)
	}
	if len(f.Profile.PhotoURLs) != layout.MaxPhotos {
		return fixture{}, fmt.Errorf("sample has %d photos, want %d", len(f.Profile.PhotoURLs), layout.MaxPhotos)
	}
	return f, nil
}

// Input returns the showcase page for layoutID, or false when the id is not
// one of the ten templates.
func Input(layoutID string) (render.Input, bool) {
	id, ok := layout.Parse(layoutID)
	if !ok {
		return render.Input{}, false
	}
	f, err := load()
	if err != nil {
		return render.Input{}, false
	}
	f.Profile.Slug = Slug
	f.Profile.LayoutTemplateID = string(id)
	doc := f.Document
	return render.Input{Profile: f.Profile, Document: &doc}, true
}
