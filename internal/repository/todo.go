// Package repository provides the in-memory storage used by the challenge
// services: the per-session todo collection and the process-wide auth state.
package repository

import (
	"errors"
	"fmt"

	"github.com/atinyakov/apichallenges/internal/models"
	"github.com/atinyakov/apichallenges/internal/validation"
)

// MaxTodos is the largest number of todos a single store may hold.
const MaxTodos = 20

var (
	// ErrTodoNotFound is returned when no todo has the requested id.
	ErrTodoNotFound = errors.New("todo not found")
	// ErrCapacityExceeded is returned by Create when the store is full.
	ErrCapacityExceeded = fmt.Errorf("ERROR: Cannot add instance, maximum limit of %d reached", MaxTodos)
)

// defaultTitles seed every new session, in id order starting at 1.
var defaultTitles = []string{
	"scan paperwork",
	"file paperwork",
	"process payments",
	"escalate late payments",
	"pay invoices",
	"process payroll",
	"train staff",
	"schedule meeting",
	"tidy meeting room",
	"install webcam",
}

// DefaultTodos returns the todos a fresh session starts with.
func DefaultTodos() []models.Todo {
	todos := make([]models.Todo, 0, len(defaultTitles))
	for i, title := range defaultTitles {
		todos = append(todos, models.Todo{ID: int64(i + 1), Title: title})
	}
	return todos
}

// Filter narrows the result of List. A nil field matches everything.
type Filter struct {
	DoneStatus *bool
}

func (f Filter) match(t models.Todo) bool {
	return f.DoneStatus == nil || *f.DoneStatus == t.DoneStatus
}

// TodoStore is an ordered todo collection with monotonic id allocation.
//
// TodoStore is not safe for concurrent use; the owning session serializes access.
type TodoStore struct {
	todos  []models.Todo
	nextID int64
}

// NewTodoStore creates a store holding a copy of todos.
func NewTodoStore(todos []models.Todo) *TodoStore {
	s := &TodoStore{nextID: 1}
	s.Load(todos)
	return s
}

// List returns the todos matching filter in insertion order.
func (s *TodoStore) List(filter Filter) []models.Todo {
	out := make([]models.Todo, 0, len(s.todos))
	for _, t := range s.todos {
		if filter.match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Get returns the todo with the given id.
func (s *TodoStore) Get(id int64) (models.Todo, error) {
	i := s.index(id)
	if i < 0 {
		return models.Todo{}, ErrTodoNotFound
	}
	return s.todos[i], nil
}

// Create validates fields and appends a new todo with the next free id.
// The capacity check happens before validation.
func (s *TodoStore) Create(fields models.Fields) (models.Todo, error) {
	if len(s.todos) >= MaxTodos {
		return models.Todo{}, ErrCapacityExceeded
	}
	t, err := validation.Validate(validation.OpCreate, nil, fields)
	if err != nil {
		return models.Todo{}, err
	}
	t.ID = s.nextID
	s.nextID++
	s.todos = append(s.todos, t)
	return t, nil
}

// Replace overwrites every field of the todo with the given id.
func (s *TodoStore) Replace(id int64, fields models.Fields) (models.Todo, error) {
	return s.amend(validation.OpReplace, id, fields)
}

// Update changes only the fields present in fields.
func (s *TodoStore) Update(id int64, fields models.Fields) (models.Todo, error) {
	return s.amend(validation.OpUpdate, id, fields)
}

func (s *TodoStore) amend(op validation.Op, id int64, fields models.Fields) (models.Todo, error) {
	i := s.index(id)
	if i < 0 {
		return models.Todo{}, ErrTodoNotFound
	}
	t, err := validation.Validate(op, &s.todos[i], fields)
	if err != nil {
		return models.Todo{}, err
	}
	s.todos[i] = t
	return t, nil
}

// Delete removes the todo with the given id. Its id is never reused.
func (s *TodoStore) Delete(id int64) error {
	i := s.index(id)
	if i < 0 {
		return ErrTodoNotFound
	}
	s.todos = append(s.todos[:i], s.todos[i+1:]...)
	return nil
}

// Snapshot returns a copy of the whole collection.
func (s *TodoStore) Snapshot() []models.Todo {
	return append(make([]models.Todo, 0, len(s.todos)), s.todos...)
}

// Load replaces the collection with a copy of todos. The id counter only
// moves forward.
func (s *TodoStore) Load(todos []models.Todo) {
	s.todos = append(make([]models.Todo, 0, len(todos)), todos...)
	for _, t := range todos {
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
}

// Len returns the number of stored todos.
func (s *TodoStore) Len() int {
	return len(s.todos)
}

func (s *TodoStore) index(id int64) int {
	for i, t := range s.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}
