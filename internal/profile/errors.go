package profile

import "errors"

var (
	// ErrNotFound is returned when a user, profile, link or published slug
	// does not exist. Unpublished slugs report the same error.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when creating a second profile for a user.
	ErrAlreadyExists = errors.New("profile already exists")
	// ErrSlugExhausted is returned when no unused slug was found within the
	// attempt ceiling.
	ErrSlugExhausted = errors.New("could not allocate a unique slug")
	// ErrLinkLimit is returned when a profile would exceed MaxLinks.
	ErrLinkLimit = errors.New("link limit reached")
	// ErrInvalidInput wraps field validation failures.
	ErrInvalidInput = errors.New("invalid input")
)
