// Package publish implements the publication lifecycle of a profile:
// Draft (no document) → Generated (document, private) → Published.
package publish

import "errors"

// ErrGuardViolation is returned when publishing a profile that has no
// generated document.
var ErrGuardViolation = errors.New("profile has no generated document to publish")

type State int

const (
	Draft State = iota
	Generated
	Published
)

func (s State) String() string {
	switch s {
	case Draft:
		return "draft"
	case Generated:
		return "generated"
	case Published:
		return "published"
	}
	return "unknown"
}

// StateOf derives the state from stored facts. A published flag without a
// document is treated as Draft.
func StateOf(hasDocument, published bool) State {
	switch {
	case !hasDocument:
		return Draft
	case published:
		return Published
	default:
		return Generated
	}
}

// Generate is the transition taken when a document is stored. Draft moves to
// Generated; a published profile stays published with the new document.
func Generate(s State) State {
	if s == Draft {
		return Generated
	}
	return s
}

// Publish moves Generated to Published and is idempotent on Published.
func Publish(s State) (State, error) {
	if s == Draft {
		return s, ErrGuardViolation
	}
	return Published, nil
}

// Unpublish is always permitted.
func Unpublish(s State) State {
	if s == Published {
		return Generated
	}
	return s
}
