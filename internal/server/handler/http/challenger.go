package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/apichallenges/internal/challenge"
	"github.com/atinyakov/apichallenges/internal/codec"
	"github.com/atinyakov/apichallenges/internal/middleware"
	"github.com/atinyakov/apichallenges/internal/models"
	"github.com/atinyakov/apichallenges/internal/service"
)

// SessionService manages challenger sessions.
type SessionService interface {
	Issue(ctx context.Context) *service.Session
	Resolve(ctx context.Context, token string) (*service.Session, error)
	Restore(ctx context.Context, token string, p models.Progress) (*service.Session, bool, error)
	ExportDatabase(ctx context.Context, token string) ([]models.Todo, error)
	ImportDatabase(ctx context.Context, token string, todos []models.Todo) error
}

// ChallengerHandler serves session creation, the challenge list and
// progress and database restoration.
type ChallengerHandler struct {
	Sessions SessionService
}

// Create handles POST /challenger. A request that already carries a known
// X-CHALLENGER keeps its session.
func (h *ChallengerHandler) Create(w http.ResponseWriter, r *http.Request) {
	if s := middleware.GetSessionFromContext(r.Context()); s != nil {
		w.Header().Set(middleware.ChallengerHeader, s.Token())
		w.WriteHeader(http.StatusOK)
		return
	}

	s := h.Sessions.Issue(r.Context())
	w.Header().Set(middleware.ChallengerHeader, s.Token())
	w.WriteHeader(http.StatusCreated)
	s.Complete(challenge.CreateNewChallenger)
}

// List handles GET /challenges. Status flags come from the requesting
// session; without one every challenge is reported as incomplete.
func (h *ChallengerHandler) List(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r.Context())
	complete(r, challenge.GetChallenges)

	var status map[challenge.ID]bool
	if s != nil {
		status = s.Status()
	}
	states := make([]models.ChallengeState, 0, len(challenge.Catalog))
	for _, d := range challenge.Catalog {
		states = append(states, models.ChallengeState{
			ID:          string(d.ID),
			Name:        d.Name,
			Description: d.Description,
			Status:      status[d.ID],
		})
	}
	writeJSON(w, http.StatusOK, struct {
		Challenges []models.ChallengeState `json:"challenges"`
	}{states})
}

// GetProgress handles GET /challenger/{token}.
func (h *ChallengerHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	s, err := h.Sessions.Resolve(r.Context(), token)
	if err != nil {
		writeJSONErrors(w, http.StatusNotFound, "Challenger not found: "+token)
		return
	}
	s.Complete(challenge.GetRestorableProgress)

	body, err := codec.EncodeProgress(s.Progress())
	if err != nil {
		writeJSONErrors(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	w.Header().Set(middleware.ChallengerHeader, token)
	write(w, codec.MediaJSON, http.StatusOK, body)
}

// PutProgress handles PUT /challenger/{token}. It answers 200 when an
// in-memory session was restored and 201 when a new one was created.
func (h *ChallengerHandler) PutProgress(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	in, err := codec.RequestFormat(r.Header.Get("Content-Type"))
	if err == nil && in != codec.JSON {
		err = &codec.UnsupportedMediaTypeError{Value: r.Header.Get("Content-Type")}
	}
	var data []byte
	if err == nil {
		data, err = readBody(w, r)
	}
	var p models.Progress
	if err == nil {
		p, err = codec.DecodeProgress(data)
	}
	if err != nil {
		h.writeDecodeError(w, err)
		return
	}

	s, created, err := h.Sessions.Restore(r.Context(), token, p)
	if err != nil {
		writeJSONErrors(w, http.StatusBadRequest, restoreMessages(err)...)
		return
	}

	body, err := codec.EncodeProgress(s.Progress())
	if err != nil {
		writeJSONErrors(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	w.Header().Set(middleware.ChallengerHeader, token)
	write(w, codec.MediaJSON, status, body)
}

// GetDatabase handles GET /challenger/database/{token}.
func (h *ChallengerHandler) GetDatabase(w http.ResponseWriter, r *http.Request) {
	c, _, ok := negotiate(w, r)
	if !ok {
		return
	}
	token := chi.URLParam(r, "token")
	todos, err := h.Sessions.ExportDatabase(r.Context(), token)
	if err != nil {
		writeErrors(w, c, http.StatusNotFound, "Challenger not found: "+token)
		return
	}
	h.complete(r, token, challenge.GetRestorableTodos)

	writeDoc(w, c, http.StatusOK, func(c codec.Codec) ([]byte, error) {
		return c.EncodeTodos(todos)
	})
}

// PutDatabase handles PUT /challenger/database/{token}. The body is a todo
// collection document in JSON or XML.
func (h *ChallengerHandler) PutDatabase(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	in, err := codec.RequestFormat(r.Header.Get("Content-Type"))
	var data []byte
	if err == nil {
		data, err = readBody(w, r)
	}
	var todos []models.Todo
	if err == nil {
		todos, err = codec.For(in).DecodeTodos(data)
	}
	if err != nil {
		h.writeDecodeError(w, err)
		return
	}

	err = h.Sessions.ImportDatabase(r.Context(), token, todos)
	switch {
	case errors.Is(err, service.ErrUnknownSession):
		writeJSONErrors(w, http.StatusNotFound, "Challenger not found: "+token)
		return
	case err != nil:
		writeJSONErrors(w, http.StatusBadRequest, restoreMessages(err)...)
		return
	}
	h.complete(r, token, challenge.PutRestorableTodos)
	w.WriteHeader(http.StatusNoContent)
}

// complete marks id on the session named in the path.
func (h *ChallengerHandler) complete(r *http.Request, token string, id challenge.ID) {
	if s, err := h.Sessions.Resolve(r.Context(), token); err == nil {
		s.Complete(id)
	}
}

func (h *ChallengerHandler) writeDecodeError(w http.ResponseWriter, err error) {
	var schema *codec.SchemaError
	if errors.As(err, &schema) {
		writeJSONErrors(w, http.StatusBadRequest, schema.Messages...)
		return
	}
	status, msgs := statusOf(err)
	writeJSONErrors(w, status, msgs...)
}

func restoreMessages(err error) []string {
	var dbErr *service.DatabaseError
	if errors.As(err, &dbErr) {
		return dbErr.Messages
	}
	return []string{err.Error()}
}
