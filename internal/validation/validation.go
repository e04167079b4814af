// Package validation checks candidate todo payloads against the field rules
// of the todo API. Every violation is reported, not only the first one.
package validation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/multierr"

	"github.com/atinyakov/apichallenges/internal/models"
)

// Field names accepted in a todo payload.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldDoneStatus  = "doneStatus"
	FieldDescription = "description"
)

// Length limits, counted in characters.
const (
	MaxTitleLength       = 50
	MaxDescriptionLength = 200
)

// Op is the kind of change a payload is validated for.
type Op int

const (
	// OpCreate validates a new todo. Mandatory fields must be present and
	// the payload may not carry an id.
	OpCreate Op = iota
	// OpReplace validates a full replacement of an existing todo.
	OpReplace
	// OpUpdate validates a partial update; absent fields keep their value.
	OpUpdate
)

// Rule classifies a violation.
type Rule int

const (
	RuleType Rule = iota
	RuleLength
	RuleEmpty
	RuleMandatory
	RuleUnknownField
	RuleAmendID
	RuleCreateWithID
	RuleInvalidID
)

// Violation is a single failed rule.
type Violation struct {
	Rule    Rule
	Field   string
	Message string
}

func (v *Violation) Error() string { return v.Message }

func violation(rule Rule, field, format string, args ...any) error {
	return &Violation{Rule: rule, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks fields for op and returns the resulting todo.
//
// current is the stored todo for OpReplace and OpUpdate and nil for
// OpCreate. The returned todo keeps current's id; for OpCreate the id is
// zero and assigned by the caller. On failure the error aggregates every
// violation; use Violations or Messages to unpack it.
func Validate(op Op, current *models.Todo, fields models.Fields) (models.Todo, error) {
	var out models.Todo
	if current != nil {
		out = *current
	}
	if op != OpUpdate {
		out.Title = ""
		out.DoneStatus = false
		out.Description = ""
	}

	var errs error

	if raw, ok := fields[FieldID]; ok {
		errs = multierr.Append(errs, checkID(op, current, raw))
	}

	if raw, ok := fields[FieldTitle]; ok {
		title, err := checkString(FieldTitle, raw, MaxTitleLength)
		if err == nil && strings.TrimSpace(title) == "" {
			err = violation(RuleEmpty, FieldTitle, "Failed Validation: title : can not be empty")
		}
		errs = multierr.Append(errs, err)
		out.Title = title
	} else if op != OpUpdate {
		errs = multierr.Append(errs, violation(RuleMandatory, FieldTitle, "%s : field is mandatory", FieldTitle))
	}

	if raw, ok := fields[FieldDoneStatus]; ok {
		done, isBool := raw.(bool)
		if !isBool {
			errs = multierr.Append(errs, violation(RuleType, FieldDoneStatus,
				"Failed Validation: %s should be BOOLEAN but was %s", FieldDoneStatus, kindOf(raw)))
		}
		out.DoneStatus = done
	}

	if raw, ok := fields[FieldDescription]; ok {
		description, err := checkString(FieldDescription, raw, MaxDescriptionLength)
		errs = multierr.Append(errs, err)
		out.Description = description
	}

	for _, name := range unknownFields(fields) {
		errs = multierr.Append(errs, violation(RuleUnknownField, name, "Could not find field: %s", name))
	}

	if errs != nil {
		return models.Todo{}, errs
	}
	return out, nil
}

// ValidateTodo checks a complete todo, e.g. one restored from a database snapshot.
func ValidateTodo(t models.Todo) error {
	var errs error
	if t.ID <= 0 {
		errs = multierr.Append(errs, violation(RuleInvalidID, FieldID, "Failed Validation: id must be a positive integer but was %d", t.ID))
	}
	if strings.TrimSpace(t.Title) == "" {
		errs = multierr.Append(errs, violation(RuleEmpty, FieldTitle, "Failed Validation: title : can not be empty"))
	}
	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		errs = multierr.Append(errs, lengthViolation(FieldTitle, MaxTitleLength))
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		errs = multierr.Append(errs, lengthViolation(FieldDescription, MaxDescriptionLength))
	}
	return errs
}

// Violations unpacks an error returned by Validate or ValidateTodo.
// Errors that are not violations are ignored.
func Violations(err error) []*Violation {
	var out []*Violation
	for _, e := range multierr.Errors(err) {
		if v, ok := e.(*Violation); ok {
			out = append(out, v)
		}
	}
	return out
}

// Messages returns the human readable messages of every violation in err.
func Messages(err error) []string {
	vs := Violations(err)
	msgs := make([]string, 0, len(vs))
	for _, v := range vs {
		msgs = append(msgs, v.Message)
	}
	return msgs
}

// HasRule reports whether err contains a violation of rule, optionally
// restricted to field when field is not empty.
func HasRule(err error, rule Rule, field string) bool {
	for _, v := range Violations(err) {
		if v.Rule == rule && (field == "" || v.Field == field) {
			return true
		}
	}
	return false
}

func checkID(op Op, current *models.Todo, raw any) error {
	if op == OpCreate || current == nil {
		return violation(RuleCreateWithID, FieldID, "Failed Validation: Not allowed to create with id")
	}
	proposed := formatValue(raw)
	if id, err := strconv.ParseInt(proposed, 10, 64); err == nil && id == current.ID {
		return nil
	}
	return violation(RuleAmendID, FieldID, "Can not amend id from %d to %s", current.ID, proposed)
}

func checkString(field string, raw any, max int) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", violation(RuleType, field, "Failed Validation: %s should be STRING but was %s", field, kindOf(raw))
	}
	if utf8.RuneCountInString(s) > max {
		return s, lengthViolation(field, max)
	}
	return s, nil
}

func lengthViolation(field string, max int) error {
	return violation(RuleLength, field,
		"Failed Validation: Maximum allowable length exceeded for %s - maximum allowed is %d", field, max)
}

func unknownFields(fields models.Fields) []string {
	var names []string
	for name := range fields {
		switch name {
		case FieldID, FieldTitle, FieldDoneStatus, FieldDescription:
		default:
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "NULL"
	case bool:
		return "BOOLEAN"
	case string:
		return "STRING"
	case json.Number, float64, float32, int, int64:
		return "NUMERIC"
	case []any:
		return "ARRAY"
	case map[string]any:
		return "OBJECT"
	default:
		return strings.ToUpper(fmt.Sprintf("%T", v))
	}
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return "null"
	default:
		return fmt.Sprint(t)
	}
}
