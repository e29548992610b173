package storage

import (
	"fmt"
	"time"

	"github.com/kalambet/meishi/internal/profile"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = profile.ErrNotFound

// timeFormat is the TEXT encoding of every timestamp column.
const timeFormat = time.RFC3339

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

var _ profile.Store = (*Store)(nil)
