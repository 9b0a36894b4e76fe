// Package session carries the authenticated caller through request contexts.
// Identity is established upstream by the auth gateway, which forwards the
// user id in a header; nothing in this service defaults to an implicit user.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/agent-market/pkg/handlers"
	"github.com/google/uuid"
)

// HeaderUserID is the header the auth gateway sets with the caller's user id.
const HeaderUserID = "X-User-ID"

// ErrUnauthenticated is returned when no valid session is present.
var ErrUnauthenticated = errors.New("unauthenticated")

// Session identifies the caller.
type Session struct {
	UserID uuid.UUID
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx.
func FromContext(ctx context.Context) (Session, error) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	if !ok || s.UserID == uuid.Nil {
		return Session{}, ErrUnauthenticated
	}
	return s, nil
}

// Parse builds a Session from a raw user id.
func Parse(raw string) (Session, error) {
	if raw == "" {
		return Session{}, fmt.Errorf("%w: missing %s", ErrUnauthenticated, HeaderUserID)
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return Session{}, fmt.Errorf("%w: malformed %s", ErrUnauthenticated, HeaderUserID)
	}
	return Session{UserID: id}, nil
}

// Middleware rejects requests without a valid user id header and stores the
// session on the request context.
func Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := Parse(r.Header.Get(HeaderUserID))
			if err != nil {
				handlers.RespondError(w, logger, http.StatusUnauthorized, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}
