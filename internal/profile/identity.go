package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Identity provider event types.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// IdentityEvent is a user lifecycle notification from the identity provider.
type IdentityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"data"`
}

// HandleIdentityEvent keeps local users in step with the identity provider.
// Deleting a user removes its profile and links. Unknown event types are
// ignored.
func (m *Manager) HandleIdentityEvent(ctx context.Context, ev IdentityEvent) error {
	if ev.Data.ID == "" {
		return invalid("identity event without subject id")
	}

	switch ev.Type {
	case EventUserCreated:
		_, err := m.store.UserByExternalID(ctx, ev.Data.ID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		return m.createUser(ctx, ev.Data.ID, ev.Data.Email)

	case EventUserUpdated:
		u, err := m.store.UserByExternalID(ctx, ev.Data.ID)
		if errors.Is(err, ErrNotFound) {
			return m.createUser(ctx, ev.Data.ID, ev.Data.Email)
		}
		if err != nil {
			return err
		}
		return m.store.UpdateUserEmail(ctx, u.ID, ev.Data.Email)

	case EventUserDeleted:
		err := m.store.DeleteUserByExternalID(ctx, ev.Data.ID)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err == nil {
			slog.Info("user deleted", "external_id", ev.Data.ID)
		}
		return err

	default:
		slog.Debug("ignoring identity event", "type", ev.Type)
		return nil
	}
}

func (m *Manager) createUser(ctx context.Context, externalID, email string) error {
	now := m.clock.Now()
	u := User{
		ID:         uuid.NewString(),
		ExternalID: externalID,
		Email:      email,
		Role:       "user",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := m.store.CreateUser(ctx, u); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

