package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kalambet/meishi/internal/profile"
)

const bearerPrefix = "Bearer "

// BearerAuth guards a route with a static shared secret.
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if token == "" || !strings.HasPrefix(auth, bearerPrefix) || subtle.ConstantTimeCompare([]byte(auth[len(bearerPrefix):]), []byte(token)) != 1 {
				writeError(w, r, errUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserResolver maps a verified token subject to a local user.
type UserResolver interface {
	EnsureUser(ctx context.Context, externalID, email string) (profile.User, error)
}

type userKey struct{}

// claims are the fields read from an identity token.
type claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuth verifies an HS256 bearer token, resolves its subject to a user and
// stores the user in the request context.
func JWTAuth(secret string, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := parseToken(r.Header.Get("Authorization"), secret)
			if err != nil {
				writeError(w, r, fmt.Errorf("%w: %v", errUnauthorized, err))
				return
			}
			u, err := users.EnsureUser(r.Context(), c.Subject, c.Email)
			if err != nil {
				writeError(w, r, fmt.Errorf("resolving user: %w", err))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, u)))
		})
	}
}

func parseToken(header, secret string) (*claims, error) {
	if secret == "" {
		return nil, errors.New("token verification is not configured")
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, errors.New("missing bearer token")
	}
	token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, bearerPrefix), &claims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid || c.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return c, nil
}

// userFrom returns the user set by JWTAuth.
func userFrom(ctx context.Context) profile.User {
	u, _ := ctx.Value(userKey{}).(profile.User)
	return u
}
