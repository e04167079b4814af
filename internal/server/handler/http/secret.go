package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/atinyakov/apichallenges/internal/challenge"
	"github.com/atinyakov/apichallenges/internal/codec"
	"github.com/atinyakov/apichallenges/internal/service"
)

// AuthTokenHeader carries the token issued by POST /secret/token.
const AuthTokenHeader = "X-AUTH-TOKEN"

// AuthService defines the methods needed by SecretHandler
// to issue tokens and guard the secret note.
type AuthService interface {
	IssueToken(ctx context.Context, user, password string, ok bool) (string, error)
	Authorize(ctx context.Context, token string) error
	ReadNote(ctx context.Context, token string) (string, error)
	WriteNote(ctx context.Context, token, text string) (string, error)
}

// TokenRecorder counts token exchanges by result.
type TokenRecorder interface {
	RecordAuthToken(result string)
}

// SecretHandler serves the secret token and note endpoints.
type SecretHandler struct {
	AuthService AuthService
	// Metrics is optional.
	Metrics TokenRecorder
}

// Token handles POST /secret/token, exchanging Basic credentials for an
// X-AUTH-TOKEN.
func (h *SecretHandler) Token(w http.ResponseWriter, r *http.Request) {
	user, password, ok := r.BasicAuth()
	token, err := h.AuthService.IssueToken(r.Context(), user, password, ok)
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		h.record("denied")
		w.Header().Set("WWW-Authenticate", `Basic realm="User Visible Realm"`)
		writeJSONErrors(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		complete(r, challenge.CreateSecretToken401)
		return
	case err != nil:
		h.record("error")
		writeJSONErrors(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	h.record("issued")
	w.Header().Set(AuthTokenHeader, token)
	w.WriteHeader(http.StatusCreated)
	complete(r, challenge.CreateSecretToken201)
}

// GetNote handles GET /secret/note.
func (h *SecretHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	c, _, ok := negotiate(w, r)
	if !ok {
		return
	}
	token, bearer := authToken(r)
	note, err := h.AuthService.ReadNote(r.Context(), token)
	if err != nil {
		status := authStatus(err)
		writeErrors(w, c, status, http.StatusText(status))
		switch status {
		case http.StatusUnauthorized:
			complete(r, challenge.GetSecretNote401)
		case http.StatusForbidden:
			complete(r, challenge.GetSecretNote403)
		}
		return
	}

	w.Header().Set(AuthTokenHeader, token)
	writeDoc(w, c, http.StatusOK, func(c codec.Codec) ([]byte, error) {
		return c.EncodeNote(note)
	})
	complete(r, challenge.GetSecretNote200)
	if bearer {
		complete(r, challenge.GetSecretNoteBearer200)
	}
}

// PostNote handles POST /secret/note with a {"note": "..."} payload.
func (h *SecretHandler) PostNote(w http.ResponseWriter, r *http.Request) {
	c, _, ok := negotiate(w, r)
	if !ok {
		return
	}
	token, bearer := authToken(r)
	if err := h.AuthService.Authorize(r.Context(), token); err != nil {
		status := authStatus(err)
		writeErrors(w, c, status, http.StatusText(status))
		switch status {
		case http.StatusUnauthorized:
			complete(r, challenge.PostSecretNote401)
		case http.StatusForbidden:
			complete(r, challenge.PostSecretNote403)
		}
		return
	}

	fields, _, err := decodeFields(w, r)
	if err != nil {
		status, msgs := statusOf(err)
		writeErrors(w, c, status, msgs...)
		return
	}
	text, isString := fields["note"].(string)
	if !isString {
		writeErrors(w, c, http.StatusBadRequest, "Failed Validation: note should be STRING")
		return
	}

	note, err := h.AuthService.WriteNote(r.Context(), token, text)
	if err != nil {
		status := authStatus(err)
		writeErrors(w, c, status, http.StatusText(status))
		return
	}

	w.Header().Set(AuthTokenHeader, token)
	writeDoc(w, c, http.StatusOK, func(c codec.Codec) ([]byte, error) {
		return c.EncodeNote(note)
	})
	complete(r, challenge.PostSecretNote200)
	if bearer {
		complete(r, challenge.PostSecretNoteBearer200)
	}
}

func (h *SecretHandler) record(result string) {
	if h.Metrics != nil {
		h.Metrics.RecordAuthToken(result)
	}
}

// authToken returns the X-AUTH-TOKEN header, falling back to an
// Authorization Bearer token. bearer reports which one was used.
func authToken(r *http.Request) (token string, bearer bool) {
	if token = r.Header.Get(AuthTokenHeader); token != "" {
		return token, false
	}
	scheme, value, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if found && strings.EqualFold(scheme, "Bearer") {
		if value = strings.TrimSpace(value); value != "" {
			return value, true
		}
	}
	return "", false
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrMissingCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
