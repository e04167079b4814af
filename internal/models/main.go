// Package models defines the core data structures shared by the todo
// store, the session registry and the HTTP layer.
package models

// Todo is a single managed todo entity.
type Todo struct {
	// ID is assigned by the server and never changes.
	ID int64
	// Title is mandatory, 1-50 characters.
	Title string
	// DoneStatus defaults to false when absent.
	DoneStatus bool
	// Description is optional, at most 200 characters.
	Description string
}

// Fields is a raw decoded todo payload, keyed by field name.
//
// Values are JSON shaped: bool, string, json.Number, nil, []any or
// map[string]any. The XML decoder produces the same shapes so that
// validation does not depend on the wire format.
type Fields map[string]any

// Has reports whether the payload carries the named field.
func (f Fields) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// Progress is the restorable snapshot of a challenger session.
type Progress struct {
	// XChallenger is the session token the snapshot belongs to.
	XChallenger string
	// ChallengeStatus maps challenge identifiers to completion flags.
	ChallengeStatus map[string]bool
	// Todos is the session's todo collection. Nil means "not part of the snapshot".
	Todos []Todo
}

// ChallengeState is a single entry of the challenge catalog as seen by one session.
type ChallengeState struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      bool   `json:"status"`
}
