package api

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/meishi/internal/layout"
	"github.com/kalambet/meishi/internal/render"
	"github.com/kalambet/meishi/internal/samples"
)

const samplesPath = "/samples"

func handleSampleCatalog(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	href := func(id layout.ID) string { return samplesPath + "/" + string(id) }
	if err := render.WriteCatalog(&buf, layout.Catalog(), href); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleSample renders the showcase profile in one template. An optional
// theme query parameter swaps the preset.
func handleSample(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := samples.Input(chi.URLParam(r, "layout"))
		if !ok {
			writeNotFoundPage(w)
			return
		}
		in.ThemeID = r.URL.Query().Get("theme")
		in.ShareURL = deps.shareURL(samples.Slug)
		in.CatalogURL = samplesPath

		var buf bytes.Buffer
		if err := render.Write(&buf, in); err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
	}
}
