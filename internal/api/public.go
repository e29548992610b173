package api

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/meishi/internal/document"
	"github.com/kalambet/meishi/internal/profile"
	"github.com/kalambet/meishi/internal/render"
	"github.com/kalambet/meishi/internal/theme"
)

// publicPage is the published view of a profile. Owner-only fields such as
// the user id and the raw onboarding answers are left out.
type publicPage struct {
	Slug             string             `json:"slug"`
	Name             string             `json:"name,omitempty"`
	Headline         string             `json:"headline,omitempty"`
	Tagline          string             `json:"tagline,omitempty"`
	PhotoURLs        []string           `json:"photoUrls"`
	LayoutTemplateID string             `json:"layoutTemplateId"`
	Theme            theme.Preset       `json:"theme"`
	Generated        *document.Document `json:"generated,omitempty"`
	Links            []profile.Link     `json:"links"`
	ShareURL         string             `json:"shareUrl"`
}

func (d Deps) publicPage(p profile.Profile) publicPage {
	in := render.Input{Profile: p, Document: p.Document}
	links := p.Links
	if links == nil {
		links = []profile.Link{}
	}
	return publicPage{
		Slug:             p.Slug,
		Name:             p.Name,
		Headline:         p.Headline,
		Tagline:          p.Tagline,
		PhotoURLs:        p.PhotoURLs,
		LayoutTemplateID: string(in.Layout()),
		Theme:            in.Theme(),
		Generated:        p.Document,
		Links:            links,
		ShareURL:         d.shareURL(p.Slug),
	}
}

func handlePublicJSON(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Profiles.PublicPage(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"page": deps.publicPage(p)})
	}
}

func handlePublicPage(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Profiles.PublicPage(r.Context(), chi.URLParam(r, "slug"))
		if errors.Is(err, profile.ErrNotFound) {
			writeNotFoundPage(w)
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}

		var buf bytes.Buffer
		if err := render.Write(&buf, render.Input{Profile: p, Document: p.Document, ShareURL: deps.shareURL(p.Slug)}); err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
	}
}

func writeNotFoundPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	render.WriteNotFound(w)
}
