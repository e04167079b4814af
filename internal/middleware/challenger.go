// Package middleware provides HTTP middlewares for challenger resolution,
// mandatory response headers, logging, metrics and rate limiting.
package middleware

import (
	"context"
	"net/http"

	"github.com/atinyakov/apichallenges/internal/codec"
	"github.com/atinyakov/apichallenges/internal/service"
)

// ChallengerHeader carries the challenger session token.
const ChallengerHeader = "X-CHALLENGER"

// MsgUnknownChallenger is the error reported by RequireChallenger.
const MsgUnknownChallenger = "X-CHALLENGER header is missing or unknown"

type ctxKey string

const sessionKey ctxKey = "session"

// SessionResolver looks up a challenger session by token.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*service.Session, error)
}

// WithChallenger resolves the X-CHALLENGER header and, when the token is
// known, stores the session in the request context. Requests without a
// resolvable token pass through unchanged.
func WithChallenger(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(ChallengerHeader)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			s, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// RequireChallenger rejects requests without a resolved session with 401.
func RequireChallenger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSessionFromContext(r.Context()) == nil {
			w.Header().Set("Content-Type", codec.MediaJSON)
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write(codec.EncodeErrorsJSON(MsgUnknownChallenger))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *service.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// GetSessionFromContext extracts the challenger session from the request
// context. Returns nil if not found.
func GetSessionFromContext(ctx context.Context) *service.Session {
	if s, ok := ctx.Value(sessionKey).(*service.Session); ok {
		return s
	}
	return nil
}
