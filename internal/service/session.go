// Package service implements the business logic of the challenge API:
// challenger sessions with their todo collections and progress flags, and
// the token based secret note authentication.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/atinyakov/apichallenges/internal/challenge"
	"github.com/atinyakov/apichallenges/internal/models"
	"github.com/atinyakov/apichallenges/internal/repository"
	"github.com/atinyakov/apichallenges/internal/validation"
)

var (
	// ErrUnknownSession is returned when no session has the given token.
	ErrUnknownSession = errors.New("unknown challenger")
	// ErrInvalidToken is returned when a new session is requested for a
	// token that is not a UUID.
	ErrInvalidToken = errors.New("challenger token must be a UUID")
	// ErrTokenMismatch is returned when a progress snapshot names a
	// different challenger than the one it is restored into.
	ErrTokenMismatch = errors.New("xChallenger does not match the challenger token")
	// ErrInvalidDatabase is returned for a todo collection that can not be imported.
	ErrInvalidDatabase = errors.New("invalid todo database")
)

// CompletionHook is notified once for every challenge flag that becomes true.
type CompletionHook func(token string, id challenge.ID)

// Session is the state of one challenger: a todo store and the set of
// completed challenges. All methods are safe for concurrent use.
type Session struct {
	token  string
	onDone CompletionHook

	mu     sync.RWMutex
	store  *repository.TodoStore
	status map[challenge.ID]bool
}

func newSession(token string, todos []models.Todo, onDone CompletionHook) *Session {
	return &Session{
		token:  token,
		onDone: onDone,
		store:  repository.NewTodoStore(todos),
		status: make(map[challenge.ID]bool),
	}
}

// Token returns the challenger token identifying the session.
func (s *Session) Token() string { return s.token }

// List returns the todos matching filter in insertion order.
func (s *Session) List(filter repository.Filter) []models.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.List(filter)
}

// Get returns the todo with id.
func (s *Session) Get(id int64) (models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Get(id)
}

// Create validates fields and stores a new todo.
func (s *Session) Create(fields models.Fields) (models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Create(fields)
}

// Replace overwrites every field of an existing todo.
func (s *Session) Replace(id int64, fields models.Fields) (models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Replace(id, fields)
}

// Update amends the given fields of an existing todo.
func (s *Session) Update(id int64, fields models.Fields) (models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Update(id, fields)
}

// Delete removes the todo with id.
func (s *Session) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(id)
}

// Len reports how many todos the session holds.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Len()
}

// Complete marks a challenge as done. It reports whether the flag was newly set.
func (s *Session) Complete(id challenge.ID) bool {
	s.mu.Lock()
	set := s.setLocked(id)
	s.mu.Unlock()
	if set {
		s.notify(id)
	}
	return set
}

// Status returns a copy of the completed challenge flags.
func (s *Session) Status() map[challenge.ID]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[challenge.ID]bool, len(s.status))
	for id, done := range s.status {
		out[id] = done
	}
	return out
}

// Progress returns the restorable snapshot of the session. Every catalog
// challenge is listed, completed or not.
func (s *Session) Progress() models.Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status := make(map[string]bool, len(challenge.Catalog))
	for _, def := range challenge.Catalog {
		status[string(def.ID)] = s.status[def.ID]
	}
	return models.Progress{
		XChallenger:     s.token,
		ChallengeStatus: status,
		Todos:           s.store.Snapshot(),
	}
}

func (s *Session) setLocked(id challenge.ID) bool {
	if s.status[id] {
		return false
	}
	s.status[id] = true
	return true
}

// mergeLocked sets every known flag that is true in status and returns
// the ones that were newly set. Flags never revert.
func (s *Session) mergeLocked(status map[string]bool) []challenge.ID {
	var set []challenge.ID
	for name, done := range status {
		id := challenge.ID(name)
		if done && challenge.Known(id) && s.setLocked(id) {
			set = append(set, id)
		}
	}
	return set
}

func (s *Session) notify(ids ...challenge.ID) {
	if s.onDone == nil {
		return
	}
	for _, id := range ids {
		s.onDone(s.token, id)
	}
}

// Option configures a SessionRegistry.
type Option func(*SessionRegistry)

// WithCompletionHook registers fn to be called for every newly completed challenge.
func WithCompletionHook(fn CompletionHook) Option {
	return func(r *SessionRegistry) { r.onDone = fn }
}

// WithTokenGenerator replaces the UUID generator used for new challengers.
func WithTokenGenerator(fn func() string) Option {
	return func(r *SessionRegistry) { r.newToken = fn }
}

// SessionRegistry maps challenger tokens to sessions. The registry lock is
// held only for lookups and inserts; each session has its own lock.
type SessionRegistry struct {
	newToken func() string
	onDone   CompletionHook

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry(opts ...Option) *SessionRegistry {
	r := &SessionRegistry{
		newToken: uuid.NewString,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Issue creates a session with a fresh token and the default todos.
func (r *SessionRegistry) Issue(ctx context.Context) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	token := r.newToken()
	for r.sessions[token] != nil {
		token = r.newToken()
	}
	s := newSession(token, repository.DefaultTodos(), r.onDone)
	r.sessions[token] = s
	return s
}

// Resolve returns the session for token.
func (r *SessionRegistry) Resolve(ctx context.Context, token string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[token]
	if !ok {
		return nil, ErrUnknownSession
	}
	return s, nil
}

// Restore applies a progress snapshot to the session with the given token.
//
// For a known token the snapshot's todos, when present, replace the
// collection and its completed flags are merged in. For an unknown token a
// new session is created from the snapshot; created reports which case
// applied.
func (r *SessionRegistry) Restore(ctx context.Context, token string, p models.Progress) (s *Session, created bool, err error) {
	if p.XChallenger != "" && p.XChallenger != token {
		return nil, false, ErrTokenMismatch
	}
	if p.Todos != nil {
		if err := checkDatabase(p.Todos); err != nil {
			return nil, false, err
		}
	}

	r.mu.Lock()
	s, ok := r.sessions[token]
	if !ok {
		if _, err := uuid.Parse(token); err != nil {
			r.mu.Unlock()
			return nil, false, fmt.Errorf("%w: %q", ErrInvalidToken, token)
		}
		todos := p.Todos
		if todos == nil {
			todos = repository.DefaultTodos()
		}
		s = newSession(token, todos, r.onDone)
		r.sessions[token] = s
	}
	r.mu.Unlock()

	s.mu.Lock()
	if ok && p.Todos != nil {
		s.store.Load(p.Todos)
	}
	set := s.mergeLocked(p.ChallengeStatus)
	marker := challenge.PutRestorableProgress
	if !ok {
		marker = challenge.PutNewRestoredProgress
	}
	if s.setLocked(marker) {
		set = append(set, marker)
	}
	s.mu.Unlock()

	s.notify(set...)
	return s, !ok, nil
}

// ExportDatabase returns a copy of the todos of the session with the given token.
func (r *SessionRegistry) ExportDatabase(ctx context.Context, token string) ([]models.Todo, error) {
	s, err := r.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Snapshot(), nil
}

// ImportDatabase overwrites the todos of the session with the given token.
// Completed flags are left untouched.
func (r *SessionRegistry) ImportDatabase(ctx context.Context, token string, todos []models.Todo) error {
	s, err := r.Resolve(ctx, token)
	if err != nil {
		return err
	}
	if err := checkDatabase(todos); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Load(todos)
	return nil
}

// Stats returns the number of sessions and the total number of todos they hold.
func (r *SessionRegistry) Stats() (sessions, todos int) {
	r.mu.RLock()
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.mu.RUnlock()

	for _, s := range all {
		todos += s.Len()
	}
	return len(all), todos
}

// DatabaseError lists why a todo collection was rejected.
type DatabaseError struct {
	Messages []string
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("%s: %v", ErrInvalidDatabase, e.Messages)
}

func (e *DatabaseError) Unwrap() error { return ErrInvalidDatabase }

func checkDatabase(todos []models.Todo) error {
	var msgs []string
	if len(todos) > repository.MaxTodos {
		msgs = append(msgs, repository.ErrCapacityExceeded.Error())
	}
	seen := make(map[int64]bool, len(todos))
	for _, t := range todos {
		if seen[t.ID] {
			msgs = append(msgs, fmt.Sprintf("Failed Validation: duplicate id %d", t.ID))
		}
		seen[t.ID] = true
		msgs = append(msgs, validation.Messages(validation.ValidateTodo(t))...)
	}
	if len(msgs) > 0 {
		return &DatabaseError{Messages: msgs}
	}
	return nil
}
