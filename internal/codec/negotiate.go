// Package codec translates todos between their internal representation and
// the JSON and XML wire formats, and negotiates which format a request
// speaks and expects.
package codec

import (
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/munnerz/goautoneg"

	"github.com/atinyakov/apichallenges/internal/models"
)

// Media types understood by the API.
const (
	MediaJSON = "application/json"
	MediaXML  = "application/xml"
)

// Format is a wire format.
type Format int

const (
	JSON Format = iota
	XML
)

func (f Format) String() string {
	if f == XML {
		return "xml"
	}
	return "json"
}

// ContentType returns the media type used for responses in this format.
func (f Format) ContentType() string {
	if f == XML {
		return MediaXML
	}
	return MediaJSON
}

var (
	// ErrNotAcceptable means no supported format satisfies the Accept header.
	ErrNotAcceptable = errors.New("Unrecognised Accept Type")
	// ErrMalformedBody is wrapped by every decode failure.
	ErrMalformedBody = errors.New("malformed request body")
)

// UnsupportedMediaTypeError reports a request Content-Type no decoder handles.
type UnsupportedMediaTypeError struct {
	Value string
}

func (e *UnsupportedMediaTypeError) Error() string {
	return fmt.Sprintf("Unsupported Content Type - %s", e.Value)
}

// Negotiate selects the response format for an Accept header.
//
// An absent header means JSON. Explicit application/xml and
// application/json ranges are compared by quality, with XML winning ties.
// Without an explicit match, */* or application/* select JSON.
func Negotiate(accept string) (Format, error) {
	if strings.TrimSpace(accept) == "" {
		return JSON, nil
	}

	var jsonQ, xmlQ, wildcardQ float64
	for _, a := range goautoneg.ParseAccept(accept) {
		if a.Q <= 0 {
			continue
		}
		// Media types are case-insensitive; goautoneg keeps them as sent.
		typ, sub := strings.ToLower(a.Type), strings.ToLower(a.SubType)
		switch {
		case typ == "application" && sub == "xml":
			xmlQ = max(xmlQ, a.Q)
		case typ == "application" && sub == "json":
			jsonQ = max(jsonQ, a.Q)
		case typ == "*" && sub == "*", typ == "application" && sub == "*":
			wildcardQ = max(wildcardQ, a.Q)
		}
	}

	switch {
	case xmlQ > 0 && xmlQ >= jsonQ:
		return XML, nil
	case jsonQ > 0:
		return JSON, nil
	case wildcardQ > 0:
		return JSON, nil
	default:
		return JSON, ErrNotAcceptable
	}
}

// RequestFormat selects the decoder for a request Content-Type. An absent
// header is treated as JSON.
func RequestFormat(contentType string) (Format, error) {
	if strings.TrimSpace(contentType) == "" {
		return JSON, nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return JSON, &UnsupportedMediaTypeError{Value: contentType}
	}
	switch mediaType {
	case MediaJSON:
		return JSON, nil
	case MediaXML:
		return XML, nil
	default:
		return JSON, &UnsupportedMediaTypeError{Value: contentType}
	}
}

// Codec encodes and decodes API documents in one wire format.
type Codec interface {
	// ContentType is the media type of encoded documents.
	ContentType() string
	// DecodeFields decodes a single object payload into raw fields.
	DecodeFields(data []byte) (models.Fields, error)
	// DecodeTodo decodes a complete todo document.
	DecodeTodo(data []byte) (models.Todo, error)
	// DecodeTodos decodes a todo collection document.
	DecodeTodos(data []byte) ([]models.Todo, error)
	EncodeTodo(t models.Todo) ([]byte, error)
	EncodeTodos(todos []models.Todo) ([]byte, error)
	EncodeErrors(messages []string) ([]byte, error)
	EncodeNote(note string) ([]byte, error)
}

// For returns the codec for f.
func For(f Format) Codec {
	if f == XML {
		return xmlCodec{}
	}
	return jsonCodec{}
}

func malformed(format Format, err error) error {
	return fmt.Errorf("%w: invalid %s: %v", ErrMalformedBody, format, err)
}
