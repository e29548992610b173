package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/meishi/internal/layout"
	"github.com/kalambet/meishi/internal/publish"
)

// Store defines the persistence operations the Manager needs.
// Implemented by storage.Store.
type Store interface {
	UserByExternalID(ctx context.Context, externalID string) (User, error)
	CreateUser(ctx context.Context, u User) error
	TouchUserLogin(ctx context.Context, userID string, at time.Time) error
	UpdateUserEmail(ctx context.Context, userID, email string) error
	DeleteUserByExternalID(ctx context.Context, externalID string) error

	ProfileByUserID(ctx context.Context, userID string) (Profile, error)
	PublishedProfileBySlug(ctx context.Context, slug string) (Profile, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	CreateProfile(ctx context.Context, p Profile) error
	UpdateProfile(ctx context.Context, id string, patch Patch) (Profile, error)

	LinkByID(ctx context.Context, id string) (Link, error)
	CountLinks(ctx context.Context, profileID string) (int, error)
	CreateLink(ctx context.Context, l Link) error
	UpdateLink(ctx context.Context, l Link) error
	DeleteLink(ctx context.Context, id string) error
	SaveEdit(ctx context.Context, id string, patch Patch, links *[]Link) error
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// maxSlugAttempts bounds the slug collision loop.
const maxSlugAttempts = 10

// Manager implements the owner and public operations on profiles.
type Manager struct {
	store   Store
	clock   Clock
	newSlug func() string
}

// NewManager creates a Manager with the wall clock and random slugs.
func NewManager(store Store) *Manager {
	return &Manager{
		store:   store,
		clock:   realClock{},
		newSlug: randomSlug,
	}
}

// NewManagerWithClock creates a Manager with a custom clock (for testing).
func NewManagerWithClock(store Store, clock Clock) *Manager {
	m := NewManager(store)
	m.clock = clock
	return m
}

func randomSlug() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

// EnsureUser returns the user for an identity-provider subject, creating it
// on first contact. Existing users get their last login refreshed.
func (m *Manager) EnsureUser(ctx context.Context, externalID, email string) (User, error) {
	now := m.clock.Now()
	u, err := m.store.UserByExternalID(ctx, externalID)
	if err == nil {
		if err := m.store.TouchUserLogin(ctx, u.ID, now); err != nil {
			return User{}, fmt.Errorf("recording login: %w", err)
		}
		u.LastLoginAt = &now
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("loading user: %w", err)
	}

	u = User{
		ID:          uuid.NewString(),
		ExternalID:  externalID,
		Email:       email,
		Role:        "user",
		CreatedAt:   now,
		UpdatedAt:   now,
		LastLoginAt: &now,
	}
	if err := m.store.CreateUser(ctx, u); err != nil {
		return User{}, fmt.Errorf("creating user: %w", err)
	}
	slog.Info("user created", "user_id", u.ID)
	return u, nil
}

// Get returns the user's profile with its links.
func (m *Manager) Get(ctx context.Context, userID string) (Profile, error) {
	return m.store.ProfileByUserID(ctx, userID)
}

// Create allocates a new unpublished profile with a unique slug.
func (m *Manager) Create(ctx context.Context, userID string) (Profile, error) {
	_, err := m.store.ProfileByUserID(ctx, userID)
	if err == nil {
		return Profile{}, ErrAlreadyExists
	}
	if !errors.Is(err, ErrNotFound) {
		return Profile{}, fmt.Errorf("checking existing profile: %w", err)
	}

	slug, err := m.uniqueSlug(ctx)
	if err != nil {
		return Profile{}, err
	}

	now := m.clock.Now()
	p := Profile{
		ID:               uuid.NewString(),
		UserID:           userID,
		Slug:             slug,
		LayoutTemplateID: string(layout.Default),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := m.store.CreateProfile(ctx, p); err != nil {
		return Profile{}, fmt.Errorf("creating profile: %w", err)
	}
	slog.Info("profile created", "profile_id", p.ID, "slug", slug)
	return m.store.ProfileByUserID(ctx, userID)
}

// GetOrCreate returns the user's profile, creating it when missing.
func (m *Manager) GetOrCreate(ctx context.Context, userID string) (Profile, error) {
	p, err := m.store.ProfileByUserID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return m.Create(ctx, userID)
	}
	return p, err
}

func (m *Manager) uniqueSlug(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		slug := m.newSlug()
		exists, err := m.store.SlugExists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("checking slug: %w", err)
		}
		if !exists {
			return slug, nil
		}
		slog.Debug("slug collision", "slug", slug, "attempt", attempt)
	}
	return "", ErrSlugExhausted
}

// Update validates and applies a partial edit, creating the profile first if
// the user has none yet. Field changes and the link list are saved together
// or not at all.
func (m *Manager) Update(ctx context.Context, userID string, u Update) (Profile, error) {
	patch, err := u.patch()
	if err != nil {
		return Profile{}, err
	}
	var links []Link
	if u.Links != nil {
		if len(*u.Links) > MaxLinks {
			return Profile{}, fmt.Errorf("%w: %d links submitted, at most %d allowed", ErrLinkLimit, len(*u.Links), MaxLinks)
		}
		for _, in := range *u.Links {
			in, err := in.validate()
			if err != nil {
				return Profile{}, err
			}
			links = append(links, Link{Label: in.Label, URL: in.URL})
		}
	}

	p, err := m.GetOrCreate(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	var replace *[]Link
	if u.Links != nil {
		now := m.clock.Now()
		for i := range links {
			links[i].ID = uuid.NewString()
			links[i].ProfileID = p.ID
			links[i].Position = i
			links[i].CreatedAt = now
			links[i].UpdatedAt = now
		}
		replace = &links
	}
	if !patch.Empty() || replace != nil {
		if err := m.store.SaveEdit(ctx, p.ID, patch, replace); err != nil {
			return Profile{}, fmt.Errorf("saving profile: %w", err)
		}
	}
	return m.store.ProfileByUserID(ctx, userID)
}

// AddLink appends a link at the next position.
func (m *Manager) AddLink(ctx context.Context, userID string, in LinkInput) (Link, error) {
	in, err := in.validate()
	if err != nil {
		return Link{}, err
	}
	p, err := m.store.ProfileByUserID(ctx, userID)
	if err != nil {
		return Link{}, err
	}
	count, err := m.store.CountLinks(ctx, p.ID)
	if err != nil {
		return Link{}, fmt.Errorf("counting links: %w", err)
	}
	if count >= MaxLinks {
		return Link{}, ErrLinkLimit
	}

	now := m.clock.Now()
	l := Link{
		ID:        uuid.NewString(),
		ProfileID: p.ID,
		Label:     in.Label,
		URL:       in.URL,
		Position:  count,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.CreateLink(ctx, l); err != nil {
		return Link{}, fmt.Errorf("creating link: %w", err)
	}
	return l, nil
}

// UpdateLink edits a link owned by the user.
func (m *Manager) UpdateLink(ctx context.Context, userID, linkID string, u LinkUpdate) (Link, error) {
	l, err := m.ownedLink(ctx, userID, linkID)
	if err != nil {
		return Link{}, err
	}
	if u.Label != nil {
		l.Label = strings.TrimSpace(*u.Label)
	}
	if u.URL != nil {
		l.URL = strings.TrimSpace(*u.URL)
	}
	if l.Label == "" || l.URL == "" {
		return Link{}, invalid("link label and url are required")
	}
	l.UpdatedAt = m.clock.Now()
	if err := m.store.UpdateLink(ctx, l); err != nil {
		return Link{}, fmt.Errorf("updating link: %w", err)
	}
	return l, nil
}

// DeleteLink removes a link owned by the user; the remaining links are
// re-sequenced from 0.
func (m *Manager) DeleteLink(ctx context.Context, userID, linkID string) error {
	if _, err := m.ownedLink(ctx, userID, linkID); err != nil {
		return err
	}
	return m.store.DeleteLink(ctx, linkID)
}

// ownedLink reports another user's link as missing.
func (m *Manager) ownedLink(ctx context.Context, userID, linkID string) (Link, error) {
	p, err := m.store.ProfileByUserID(ctx, userID)
	if err != nil {
		return Link{}, err
	}
	l, err := m.store.LinkByID(ctx, linkID)
	if err != nil {
		return Link{}, err
	}
	if l.ProfileID != p.ID {
		return Link{}, ErrNotFound
	}
	return l, nil
}

// SetPublished publishes or unpublishes the user's profile. Publishing a
// profile without a generated document fails with publish.ErrGuardViolation.
func (m *Manager) SetPublished(ctx context.Context, userID string, published bool) (Profile, error) {
	p, err := m.store.ProfileByUserID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	next := publish.Unpublish(p.State())
	if published {
		if next, err = publish.Publish(p.State()); err != nil {
			return Profile{}, err
		}
	}

	var patch Patch
	patch.Scalar(FieldPublished, next == publish.Published)
	updated, err := m.store.UpdateProfile(ctx, p.ID, patch)
	if err != nil {
		return Profile{}, fmt.Errorf("updating publication: %w", err)
	}
	slog.Info("publication changed", "profile_id", p.ID, "from", p.State(), "to", next)
	return updated, nil
}

// PublicPage returns a published profile by slug. Unpublished and unknown
// slugs both yield ErrNotFound.
func (m *Manager) PublicPage(ctx context.Context, slug string) (Profile, error) {
	return m.store.PublishedProfileBySlug(ctx, slug)
}
