// Package generation turns a profile's onboarding answers into a document by
// asking the text-generation service for one structured JSON reply.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kalambet/meishi/internal/document"
	"github.com/kalambet/meishi/internal/llm"
	"github.com/kalambet/meishi/internal/profile"
	"github.com/kalambet/meishi/internal/publish"
)

var (
	// ErrOnboardingIncomplete is returned before any external call when the
	// profile lacks role, audience or impression tags.
	ErrOnboardingIncomplete = errors.New("onboarding incomplete: role, audience and at least one impression tag are required")
	// ErrGenerationFailed wraps every failure of the external call or of
	// decoding its output. Nothing is persisted when it is returned.
	ErrGenerationFailed = errors.New("generation failed")
)

// ProfileUpdater persists the generated fields.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, id string, patch profile.Patch) (profile.Profile, error)
}

// Orchestrator runs one generation per call.
type Orchestrator struct {
	client      llm.Completer
	store       ProfileUpdater
	timeout     time.Duration
	temperature float64
}

// NewOrchestrator creates an Orchestrator. A zero timeout means the caller's
// context alone bounds the request.
func NewOrchestrator(client llm.Completer, store ProfileUpdater, timeout time.Duration, temperature float64) *Orchestrator {
	return &Orchestrator{
		client:      client,
		store:       store,
		timeout:     timeout,
		temperature: temperature,
	}
}

// Generate builds the prompt from p, makes exactly one completion request,
// decodes the reply and stores tone, theme and document in a single update.
// The returned profile is the stored row after the update.
func (o *Orchestrator) Generate(ctx context.Context, p profile.Profile) (profile.Profile, document.Document, error) {
	if !p.OnboardingComplete() {
		return profile.Profile{}, document.Document{}, ErrOnboardingIncomplete
	}

	req := BuildPrompt(p, o.temperature)

	callCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := o.client.Complete(callCtx, req)
	if err != nil {
		slog.Warn("generation: request failed", "profile", p.ID, "elapsed", time.Since(start), "error", err)
		return profile.Profile{}, document.Document{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	doc, corrections, err := document.Parse(raw)
	if err != nil {
		slog.Warn("generation: unusable reply", "profile", p.ID, "bytes", len(raw), "error", err)
		return profile.Profile{}, document.Document{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	for _, c := range corrections {
		slog.Info("generation: corrected field", "profile", p.ID, "field", c.Field, "got", c.Got, "replaced", c.Replaced)
	}

	var patch profile.Patch
	patch.Scalar(profile.FieldTone, string(doc.Tone)).
		Scalar(profile.FieldThemeID, string(doc.ThemeID)).
		Document(profile.FieldGenerated, &doc)

	updated, err := o.store.UpdateProfile(ctx, p.ID, patch)
	if err != nil {
		return profile.Profile{}, document.Document{}, fmt.Errorf("storing generated document: %w", err)
	}

	slog.Info("generation: document stored",
		"profile", p.ID,
		"theme", doc.ThemeID,
		"sections", len(doc.Sections.Present()),
		"state", publish.Generate(p.State()),
		"elapsed", time.Since(start),
	)
	return updated, doc, nil
}
