package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/atinyakov/apichallenges/internal/challenge"
	"github.com/atinyakov/apichallenges/internal/codec"
	"github.com/atinyakov/apichallenges/internal/middleware"
	"github.com/atinyakov/apichallenges/internal/models"
	"github.com/atinyakov/apichallenges/internal/repository"
	"github.com/atinyakov/apichallenges/internal/validation"
)

// MaxBodyBytes is the largest request body accepted by any endpoint.
const MaxBodyBytes = 5000

var errBodyTooLarge = fmt.Errorf("Error: Request body too large, max allowed is %d bytes", MaxBodyBytes)

// complete marks challenges on the session of the request, if any.
// Unknown ids are ignored.
func complete(r *http.Request, ids ...challenge.ID) {
	s := middleware.GetSessionFromContext(r.Context())
	if s == nil {
		return
	}
	for _, id := range ids {
		if challenge.Known(id) {
			s.Complete(id)
		}
	}
}

// negotiate picks the response codec from the Accept header. On failure
// it writes the 406 response and returns false.
func negotiate(w http.ResponseWriter, r *http.Request) (codec.Codec, codec.Format, bool) {
	f, err := codec.Negotiate(r.Header.Get("Accept"))
	if err != nil {
		writeJSONErrors(w, http.StatusNotAcceptable, err.Error())
		return nil, f, false
	}
	return codec.For(f), f, true
}

// readBody reads the request body up to MaxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, fmt.Errorf("%w: %v", codec.ErrMalformedBody, err)
	}
	return data, nil
}

// decodeFields resolves the request codec, reads the body and decodes it
// into raw fields.
func decodeFields(w http.ResponseWriter, r *http.Request) (models.Fields, codec.Format, error) {
	in, err := codec.RequestFormat(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, in, err
	}
	data, err := readBody(w, r)
	if err != nil {
		return nil, in, err
	}
	fields, err := codec.For(in).DecodeFields(data)
	return fields, in, err
}

// statusOf maps a service error to a status code and client messages.
func statusOf(err error) (int, []string) {
	var unsupported *codec.UnsupportedMediaTypeError
	switch {
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge, []string{errBodyTooLarge.Error()}
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType, []string{unsupported.Error()}
	case errors.Is(err, repository.ErrCapacityExceeded):
		return http.StatusBadRequest, []string{repository.ErrCapacityExceeded.Error()}
	case len(validation.Violations(err)) > 0:
		return http.StatusBadRequest, validation.Messages(err)
	case errors.Is(err, codec.ErrMalformedBody):
		return http.StatusBadRequest, []string{err.Error()}
	default:
		return http.StatusInternalServerError, []string{http.StatusText(http.StatusInternalServerError)}
	}
}

func write(w http.ResponseWriter, contentType string, status int, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if len(body) > 0 {
		_, _ = w.Write(body)
	}
}

// writeDoc encodes a document with c. Encoding failures become a 500.
func writeDoc(w http.ResponseWriter, c codec.Codec, status int, encode func(codec.Codec) ([]byte, error)) {
	body, err := encode(c)
	if err != nil {
		writeJSONErrors(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	write(w, c.ContentType(), status, body)
}

func writeErrors(w http.ResponseWriter, c codec.Codec, status int, messages ...string) {
	writeDoc(w, c, status, func(c codec.Codec) ([]byte, error) {
		return c.EncodeErrors(messages)
	})
}

func writeJSONErrors(w http.ResponseWriter, status int, messages ...string) {
	write(w, codec.MediaJSON, status, codec.EncodeErrorsJSON(messages...))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeJSONErrors(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	write(w, codec.MediaJSON, status, body)
}
