// Package api serves the owner, public and identity HTTP endpoints and the
// MCP tool surface.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kalambet/meishi/internal/document"
	"github.com/kalambet/meishi/internal/profile"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Profiles is the profile service behind the HTTP surface. Implemented by
// profile.Manager.
type Profiles interface {
	UserResolver
	Get(ctx context.Context, userID string) (profile.Profile, error)
	Create(ctx context.Context, userID string) (profile.Profile, error)
	Update(ctx context.Context, userID string, u profile.Update) (profile.Profile, error)
	AddLink(ctx context.Context, userID string, in profile.LinkInput) (profile.Link, error)
	UpdateLink(ctx context.Context, userID, linkID string, u profile.LinkUpdate) (profile.Link, error)
	DeleteLink(ctx context.Context, userID, linkID string) error
	SetPublished(ctx context.Context, userID string, published bool) (profile.Profile, error)
	PublicPage(ctx context.Context, slug string) (profile.Profile, error)
	HandleIdentityEvent(ctx context.Context, ev profile.IdentityEvent) error
}

// Generator produces and stores a profile's document.
type Generator interface {
	Generate(ctx context.Context, p profile.Profile) (profile.Profile, document.Document, error)
}

// Deps holds the dependencies of the HTTP handler.
type Deps struct {
	Profiles      Profiles
	Generator     Generator
	PublicBaseURL string
	JWTSecret     string
	WebhookSecret string
	CORSOrigins   []string
}

// shareURL is the public address of slug.
func (d Deps) shareURL(slug string) string {
	return strings.TrimRight(d.PublicBaseURL, "/") + "/" + slug
}

// NewRouter returns the complete HTTP handler.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/public/{slug}", handlePublicJSON(deps))

		r.With(BearerAuth(deps.WebhookSecret)).Post("/identity/events", handleIdentityEvent(deps))

		r.Route("/profile", func(r chi.Router) {
			r.Use(JWTAuth(deps.JWTSecret, deps.Profiles))

			r.Get("/me", handleMe(deps))
			r.Post("/create", handleCreate(deps))
			r.Patch("/update", handleUpdate(deps))
			r.Post("/generate", handleGenerate(deps))
			r.Post("/publish", handlePublish(deps))
			r.Post("/links", handleAddLink(deps))
			r.Patch("/links/{id}", handleUpdateLink(deps))
			r.Delete("/links/{id}", handleDeleteLink(deps))
			r.Get("/preview", handlePreview(deps))
			r.Get("/layouts", handleLayouts)
		})
	})

	r.Get(samplesPath, handleSampleCatalog)
	r.Get(samplesPath+"/{layout}", handleSample(deps))

	r.Get("/{slug}", handlePublicPage(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
