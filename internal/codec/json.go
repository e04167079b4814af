package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/atinyakov/apichallenges/internal/models"
)

type jsonTodo struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	DoneStatus  bool   `json:"doneStatus"`
	Description string `json:"description"`
}

type jsonTodos struct {
	Todos []jsonTodo `json:"todos"`
}

type jsonErrors struct {
	ErrorMessages []string `json:"errorMessages"`
}

type jsonNote struct {
	Note string `json:"note"`
}

func toJSONTodo(t models.Todo) jsonTodo {
	return jsonTodo{ID: t.ID, Title: t.Title, DoneStatus: t.DoneStatus, Description: t.Description}
}

func (j jsonTodo) model() models.Todo {
	return models.Todo{ID: j.ID, Title: j.Title, DoneStatus: j.DoneStatus, Description: j.Description}
}

type jsonCodec struct{}

func (jsonCodec) ContentType() string { return MediaJSON }

func (jsonCodec) DecodeFields(data []byte) (models.Fields, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Fields{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, malformed(JSON, err)
	}
	if fields == nil {
		return nil, malformed(JSON, errors.New("expected an object"))
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}
	return models.Fields(fields), nil
}

func (jsonCodec) DecodeTodo(data []byte) (models.Todo, error) {
	var t jsonTodo
	if err := decodeStrict(data, &t); err != nil {
		return models.Todo{}, err
	}
	return t.model(), nil
}

func (jsonCodec) DecodeTodos(data []byte) ([]models.Todo, error) {
	var doc jsonTodos
	if err := decodeStrict(data, &doc); err != nil {
		return nil, err
	}
	todos := make([]models.Todo, 0, len(doc.Todos))
	for _, t := range doc.Todos {
		todos = append(todos, t.model())
	}
	return todos, nil
}

func (jsonCodec) EncodeTodo(t models.Todo) ([]byte, error) {
	return json.Marshal(toJSONTodo(t))
}

func (jsonCodec) EncodeTodos(todos []models.Todo) ([]byte, error) {
	doc := jsonTodos{Todos: make([]jsonTodo, 0, len(todos))}
	for _, t := range todos {
		doc.Todos = append(doc.Todos, toJSONTodo(t))
	}
	return json.Marshal(doc)
}

func (jsonCodec) EncodeErrors(messages []string) ([]byte, error) {
	if messages == nil {
		messages = []string{}
	}
	return json.Marshal(jsonErrors{ErrorMessages: messages})
}

func (jsonCodec) EncodeNote(note string) ([]byte, error) {
	return json.Marshal(jsonNote{Note: note})
}

// EncodeErrorsJSON renders messages as a JSON error document. It is used
// when no negotiated format is available, e.g. for 406 responses.
func EncodeErrorsJSON(messages ...string) []byte {
	b, _ := jsonCodec{}.EncodeErrors(messages)
	return b
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return malformed(JSON, err)
	}
	return expectEOF(dec)
}

func expectEOF(dec *json.Decoder) error {
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return malformed(JSON, errors.New("unexpected data after top-level value"))
	}
	return nil
}
