// Package http provides the HTTP handlers and routing of the challenge API.
package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/apichallenges/internal/challenge"
	"github.com/atinyakov/apichallenges/internal/codec"
	"github.com/atinyakov/apichallenges/internal/middleware"
	"github.com/atinyakov/apichallenges/internal/models"
	"github.com/atinyakov/apichallenges/internal/repository"
	"github.com/atinyakov/apichallenges/internal/service"
	"github.com/atinyakov/apichallenges/internal/validation"
)

// Allow header values for the todo routes.
const (
	allowTodos = "OPTIONS, GET, HEAD, POST"
	allowTodo  = "OPTIONS, GET, HEAD, POST, PUT, DELETE"
)

const msgPutCreate = "Cannot create todo with PUT due to Auto fields id"

// TodoHandler serves the todo collection of the requesting challenger.
// Every route expects a session in the request context.
type TodoHandler struct{}

// List handles GET and HEAD /todos, optionally filtered by ?doneStatus=.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r.Context())
	c, out, ok := negotiate(w, r)
	if !ok {
		complete(r, challenge.GetUnsupportedAccept406)
		return
	}

	query := r.URL.Query()
	filtered := query.Has("doneStatus")
	todos := listTodos(s, query.Get("doneStatus"), filtered)

	writeDoc(w, c, http.StatusOK, func(c codec.Codec) ([]byte, error) {
		return c.EncodeTodos(todos)
	})

	complete(r, challenge.GetTodos)
	if r.Method == http.MethodHead {
		complete(r, challenge.GetHeadTodos)
	}
	if filtered && query.Get("doneStatus") == "true" {
		complete(r, challenge.GetTodosFiltered)
	}
	complete(r, acceptChallenges(r.Header.Get("Accept"), out)...)
}

// listTodos applies the ?doneStatus= filter. A value other than "true" or
// "false" matches nothing.
func listTodos(s *service.Session, raw string, filtered bool) []models.Todo {
	if !filtered {
		return s.List(repository.Filter{})
	}
	var want bool
	switch raw {
	case "true":
		want = true
	case "false":
	default:
		return []models.Todo{}
	}
	return s.List(repository.Filter{DoneStatus: &want})
}

func acceptChallenges(accept string, out codec.Format) []challenge.ID {
	accept = strings.ToLower(strings.TrimSpace(accept))
	switch {
	case accept == "":
		return []challenge.ID{challenge.GetJSONByDefaultNoAccept}
	case out == codec.XML && strings.Contains(accept, codec.MediaJSON):
		return []challenge.ID{challenge.GetAcceptXMLPreferred}
	case out == codec.XML:
		return []challenge.ID{challenge.GetAcceptXML}
	case accept == "*/*":
		return []challenge.ID{challenge.GetAcceptAnyDefaultJSON}
	case strings.Contains(accept, codec.MediaJSON):
		return []challenge.ID{challenge.GetAcceptJSON}
	}
	return nil
}

// Get handles GET /todos/{id}. The todo is wrapped in a collection document.
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r.Context())
	c, _, ok := negotiate(w, r)
	if !ok {
		return
	}

	raw := chi.URLParam(r, "id")
	id, err := parseID(raw)
	var t models.Todo
	if err == nil {
		t, err = s.Get(id)
	}
	if err != nil {
		writeErrors(w, c, http.StatusNotFound, fmt.Sprintf("Could not find an instance with todos/%s", raw))
		complete(r, challenge.GetTodo404)
		return
	}

	writeDoc(w, c, http.StatusOK, func(c codec.Codec) ([]byte, error) {
		return c.EncodeTodos([]models.Todo{t})
	})
	complete(r, challenge.GetTodo)
}

// Create handles POST /todos.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r.Context())
	c, out, ok := negotiate(w, r)
	if !ok {
		return
	}

	fields, in, err := decodeFields(w, r)
	var t models.Todo
	if err == nil {
		t, err = s.Create(fields)
	}
	if err != nil {
		status, msgs := statusOf(err)
		writeErrors(w, c, status, msgs...)
		complete(r, createFailureChallenges(status, err)...)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/todos/%d", t.ID))
	writeDoc(w, c, http.StatusCreated, func(c codec.Codec) ([]byte, error) {
		return c.EncodeTodo(t)
	})

	complete(r, challenge.PostTodos)
	if utf8.RuneCountInString(t.Title) == validation.MaxTitleLength &&
		utf8.RuneCountInString(t.Description) == validation.MaxDescriptionLength {
		complete(r, challenge.PostMaxOutTitleDescription)
	}
	if r.Header.Get("Content-Type") != "" && r.Header.Get("Accept") != "" {
		switch {
		case in == codec.XML && out == codec.XML:
			complete(r, challenge.PostCreateXML)
		case in == codec.JSON && out == codec.JSON:
			complete(r, challenge.PostCreateJSON)
		case in == codec.XML && out == codec.JSON:
			complete(r, challenge.PostCreateXMLAcceptJSON)
		case in == codec.JSON && out == codec.XML:
			complete(r, challenge.PostCreateJSONAcceptXML)
		}
	}
	if s.Len() == repository.MaxTodos {
		complete(r, challenge.PostAllTodos)
	}
}

func createFailureChallenges(status int, err error) []challenge.ID {
	switch status {
	case http.StatusRequestEntityTooLarge:
		return []challenge.ID{challenge.PostTodosTooLongPayload}
	case http.StatusUnsupportedMediaType:
		return []challenge.ID{challenge.PostCreateUnsupportedContent415}
	}
	var ids []challenge.ID
	if validation.HasRule(err, validation.RuleType, validation.FieldDoneStatus) {
		ids = append(ids, challenge.PostTodosBadDoneStatus)
	}
	if validation.HasRule(err, validation.RuleLength, validation.FieldTitle) {
		ids = append(ids, challenge.PostTodosTooLongTitle)
	}
	if validation.HasRule(err, validation.RuleLength, validation.FieldDescription) {
		ids = append(ids, challenge.PostTodosTooLongDescription)
	}
	if validation.HasRule(err, validation.RuleUnknownField, "") {
		ids = append(ids, challenge.PostTodosInvalidExtraField)
	}
	return ids
}

// Replace handles PUT /todos/{id}. PUT never creates: an unknown id is a 400.
func (h *TodoHandler) Replace(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r.Context())
	c, _, ok := negotiate(w, r)
	if !ok {
		return
	}

	fields, _, err := decodeFields(w, r)
	var t models.Todo
	if err == nil {
		var id int64
		if id, err = parseID(chi.URLParam(r, "id")); err == nil {
			t, err = s.Replace(id, fields)
		}
	}
	switch {
	case errors.Is(err, repository.ErrTodoNotFound), errors.Is(err, strconv.ErrSyntax), errors.Is(err, strconv.ErrRange):
		writeErrors(w, c, http.StatusBadRequest, msgPutCreate)
		complete(r, challenge.PutTodos400)
		return
	case err != nil:
		status, msgs := statusOf(err)
		writeErrors(w, c, status, msgs...)
		if validation.HasRule(err, validation.RuleMandatory, validation.FieldTitle) {
			complete(r, challenge.PutTodosMissingTitle400)
		}
		if validation.HasRule(err, validation.RuleAmendID, validation.FieldID) {
			complete(r, challenge.PutTodosNoAmendID400)
		}
		return
	}

	writeDoc(w, c, http.StatusOK, func(c codec.Codec) ([]byte, error) {
		return c.EncodeTodo(t)
	})
	if fields.Has(validation.FieldDoneStatus) && fields.Has(validation.FieldDescription) {
		complete(r, challenge.PutTodosFull200)
	} else {
		complete(r, challenge.PutTodosPartial200)
	}
}

// Update handles POST /todos/{id}, a partial amendment.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r.Context())
	c, _, ok := negotiate(w, r)
	if !ok {
		return
	}

	raw := chi.URLParam(r, "id")
	fields, _, err := decodeFields(w, r)
	var t models.Todo
	if err == nil {
		var id int64
		if id, err = parseID(raw); err == nil {
			t, err = s.Update(id, fields)
		}
	}
	switch {
	case errors.Is(err, repository.ErrTodoNotFound), errors.Is(err, strconv.ErrSyntax), errors.Is(err, strconv.ErrRange):
		writeErrors(w, c, http.StatusNotFound, fmt.Sprintf("No such todo entity instance with id == %s found", raw))
		complete(r, challenge.PostTodos404)
		return
	case err != nil:
		status, msgs := statusOf(err)
		writeErrors(w, c, status, msgs...)
		return
	}

	writeDoc(w, c, http.StatusOK, func(c codec.Codec) ([]byte, error) {
		return c.EncodeTodo(t)
	})
	complete(r, challenge.PostUpdateTodo)
}

// Delete handles DELETE /todos/{id}.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSessionFromContext(r.Context())
	c, _, ok := negotiate(w, r)
	if !ok {
		return
	}

	raw := chi.URLParam(r, "id")
	id, err := parseID(raw)
	if err == nil {
		err = s.Delete(id)
	}
	if err != nil {
		writeErrors(w, c, http.StatusNotFound, fmt.Sprintf("Could not find any instances with todos/%s", raw))
		return
	}

	w.WriteHeader(http.StatusOK)
	complete(r, challenge.DeleteTodo)
	if s.Len() == 0 {
		complete(r, challenge.DeleteAllTodos)
	}
}

// Options answers OPTIONS requests with the given Allow header.
func Options(allow string, ids ...challenge.ID) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		w.WriteHeader(http.StatusOK)
		complete(r, ids...)
	}
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
