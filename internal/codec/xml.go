package codec

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/atinyakov/apichallenges/internal/models"
)

type xmlTodo struct {
	XMLName     xml.Name `xml:"todo"`
	ID          int64    `xml:"id"`
	Title       string   `xml:"title"`
	DoneStatus  bool     `xml:"doneStatus"`
	Description string   `xml:"description"`
}

type xmlTodos struct {
	XMLName xml.Name  `xml:"todos"`
	Todos   []xmlTodo `xml:"todo"`
}

type xmlErrors struct {
	XMLName  xml.Name `xml:"errorMessages"`
	Messages []string `xml:"errorMessage"`
}

type xmlNote struct {
	XMLName xml.Name `xml:"secretNote"`
	Note    string   `xml:"note"`
}

// xmlFields captures every child element of an arbitrary root element.
type xmlFields struct {
	XMLName xml.Name
	Fields  []xmlField `xml:",any"`
}

type xmlField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

func toXMLTodo(t models.Todo) xmlTodo {
	return xmlTodo{ID: t.ID, Title: t.Title, DoneStatus: t.DoneStatus, Description: t.Description}
}

func (x xmlTodo) model() models.Todo {
	return models.Todo{ID: x.ID, Title: x.Title, DoneStatus: x.DoneStatus, Description: x.Description}
}

type xmlCodec struct{}

func (xmlCodec) ContentType() string { return MediaXML }

// DecodeFields maps each child of the root element to a field. Text is
// typed the way a JSON payload would be: booleans for doneStatus, numbers
// for numeric text outside title and description, strings otherwise.
func (xmlCodec) DecodeFields(data []byte) (models.Fields, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Fields{}, nil
	}
	var doc xmlFields
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, malformed(XML, err)
	}
	fields := make(models.Fields, len(doc.Fields))
	for _, f := range doc.Fields {
		fields[f.XMLName.Local] = typedXMLValue(f.XMLName.Local, f.Value)
	}
	return fields, nil
}

func (xmlCodec) DecodeTodo(data []byte) (models.Todo, error) {
	var t xmlTodo
	if err := xml.Unmarshal(data, &t); err != nil {
		return models.Todo{}, malformed(XML, err)
	}
	return t.model(), nil
}

func (xmlCodec) DecodeTodos(data []byte) ([]models.Todo, error) {
	var doc xmlTodos
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, malformed(XML, err)
	}
	todos := make([]models.Todo, 0, len(doc.Todos))
	for _, t := range doc.Todos {
		todos = append(todos, t.model())
	}
	return todos, nil
}

func (xmlCodec) EncodeTodo(t models.Todo) ([]byte, error) {
	return xml.Marshal(toXMLTodo(t))
}

func (xmlCodec) EncodeTodos(todos []models.Todo) ([]byte, error) {
	doc := xmlTodos{Todos: make([]xmlTodo, 0, len(todos))}
	for _, t := range todos {
		doc.Todos = append(doc.Todos, toXMLTodo(t))
	}
	return xml.Marshal(doc)
}

func (xmlCodec) EncodeErrors(messages []string) ([]byte, error) {
	return xml.Marshal(xmlErrors{Messages: messages})
}

func (xmlCodec) EncodeNote(note string) ([]byte, error) {
	return xml.Marshal(xmlNote{Note: note})
}

func typedXMLValue(name, raw string) any {
	switch name {
	case "title", "description", "note":
		return raw
	}
	text := strings.TrimSpace(raw)
	if name == "doneStatus" && (text == "true" || text == "false") {
		return text == "true"
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return json.Number(text)
	}
	return text
}
