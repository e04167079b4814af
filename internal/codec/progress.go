package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/atinyakov/apichallenges/internal/models"
)

// progressSchema describes a restorable challenger progress document.
// Unknown top-level members are tolerated so that snapshots taken from
// other deployments, which carry extra bookkeeping, can still be restored.
const progressSchema = `{
  "type": "object",
  "required": ["challengeStatus"],
  "properties": {
    "xChallenger": {"type": "string"},
    "challengeStatus": {
      "type": "object",
      "additionalProperties": {"type": "boolean"}
    },
    "todos": {
      "type": "array",
      "maxItems": 20,
      "items": {
        "type": "object",
        "required": ["id", "title"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "integer", "minimum": 1},
          "title": {"type": "string", "minLength": 1, "maxLength": 50},
          "doneStatus": {"type": "boolean"},
          "description": {"type": "string", "maxLength": 200}
        }
      }
    }
  }
}`

var compiledProgressSchema = jsonschema.MustCompileString("progress.json", progressSchema)

type jsonProgress struct {
	XChallenger     string          `json:"xChallenger"`
	ChallengeStatus map[string]bool `json:"challengeStatus"`
	Todos           *[]jsonTodo     `json:"todos,omitempty"`
}

// SchemaError lists the schema violations of a progress document.
type SchemaError struct {
	Messages []string
}

func (e *SchemaError) Error() string {
	return "invalid progress document: " + strings.Join(e.Messages, "; ")
}

func (e *SchemaError) Unwrap() error { return ErrMalformedBody }

// EncodeProgress renders a progress snapshot as JSON. Todos are included
// whenever the snapshot carries them, even if the collection is empty.
func EncodeProgress(p models.Progress) ([]byte, error) {
	doc := jsonProgress{XChallenger: p.XChallenger, ChallengeStatus: p.ChallengeStatus}
	if doc.ChallengeStatus == nil {
		doc.ChallengeStatus = map[string]bool{}
	}
	if p.Todos != nil {
		todos := make([]jsonTodo, 0, len(p.Todos))
		for _, t := range p.Todos {
			todos = append(todos, toJSONTodo(t))
		}
		doc.Todos = &todos
	}
	return json.Marshal(doc)
}

// DecodeProgress validates data against the progress schema and decodes it.
func DecodeProgress(data []byte) (models.Progress, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return models.Progress{}, malformed(JSON, err)
	}
	if err := expectEOF(dec); err != nil {
		return models.Progress{}, err
	}
	if err := compiledProgressSchema.Validate(raw); err != nil {
		return models.Progress{}, schemaError(err)
	}

	var doc jsonProgress
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Progress{}, malformed(JSON, err)
	}
	p := models.Progress{XChallenger: doc.XChallenger, ChallengeStatus: doc.ChallengeStatus}
	if doc.Todos != nil {
		p.Todos = make([]models.Todo, 0, len(*doc.Todos))
		for _, t := range *doc.Todos {
			p.Todos = append(p.Todos, t.model())
		}
	}
	return p, nil
}

func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return malformed(JSON, err)
	}
	var msgs []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "/"
			}
			msgs = append(msgs, fmt.Sprintf("Failed Validation: %s %s", location, e.Message))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return &SchemaError{Messages: msgs}
}
