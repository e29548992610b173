package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/meishi/internal/document"
	"github.com/kalambet/meishi/internal/layout"
	"github.com/kalambet/meishi/internal/profile"
	"github.com/kalambet/meishi/internal/render"
)

type profileResponse struct {
	Profile  profile.Profile `json:"profile"`
	State    string          `json:"state"`
	ShareURL string          `json:"shareUrl"`
}

func (d Deps) profileResponse(p profile.Profile) profileResponse {
	return profileResponse{Profile: p, State: p.State().String(), ShareURL: d.shareURL(p.Slug)}
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: invalid request body: %v", profile.ErrInvalidInput, err)
	}
	return nil
}

func handleMe(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := userFrom(r.Context())
		p, err := deps.Profiles.Get(r.Context(), u.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, deps.profileResponse(p))
	}
}

func handleCreate(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Profiles.Create(r.Context(), userFrom(r.Context()).ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, deps.profileResponse(p))
	}
}

func handleUpdate(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u profile.Update
		if err := decodeBody(w, r, &u); err != nil {
			writeError(w, r, err)
			return
		}
		p, err := deps.Profiles.Update(r.Context(), userFrom(r.Context()).ID, u)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, deps.profileResponse(p))
	}
}

func handleGenerate(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userFrom(r.Context()).ID
		p, err := deps.Profiles.Get(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if _, _, err := deps.Generator.Generate(r.Context(), p); err != nil {
			writeError(w, r, err)
			return
		}
		p, err = deps.Profiles.Get(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, deps.profileResponse(p))
	}
}

func handlePublish(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := struct {
			IsPublished *bool `json:"isPublished"`
		}{}
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		published := req.IsPublished == nil || *req.IsPublished

		p, err := deps.Profiles.SetPublished(r.Context(), userFrom(r.Context()).ID, published)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, deps.profileResponse(p))
	}
}

func handleAddLink(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in profile.LinkInput
		if err := decodeBody(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		l, err := deps.Profiles.AddLink(r.Context(), userFrom(r.Context()).ID, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"link": l})
	}
}

func handleUpdateLink(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u profile.LinkUpdate
		if err := decodeBody(w, r, &u); err != nil {
			writeError(w, r, err)
			return
		}
		l, err := deps.Profiles.UpdateLink(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "id"), u)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"link": l})
	}
}

func handleDeleteLink(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Profiles.DeleteLink(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// handlePreview renders the owner's page regardless of publication, with
// optional layout and theme overrides from the query string.
func handlePreview(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Profiles.Get(r.Context(), userFrom(r.Context()).ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		in := render.Input{
			Profile:  p,
			Document: p.Document,
			LayoutID: r.URL.Query().Get("layout"),
			ThemeID:  r.URL.Query().Get("theme"),
			ShareURL: deps.shareURL(p.Slug),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if err := render.Write(w, in); err != nil {
			slog.Warn("writing preview", "profile", p.ID, "error", err)
		}
	}
}

type layoutInfo struct {
	ID          layout.ID             `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Sections    []document.SectionKey `json:"sections"`
}

func layoutCatalog() []layoutInfo {
	var out []layoutInfo
	for _, d := range layout.Catalog() {
		out = append(out, layoutInfo{ID: d.ID, Name: d.Name, Description: d.Description, Sections: d.Order})
	}
	return out
}

func handleLayouts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"layouts": layoutCatalog()})
}
