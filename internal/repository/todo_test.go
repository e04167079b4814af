package repository

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/apichallenges/internal/models"
	"github.com/atinyakov/apichallenges/internal/validation"
)

func TestDefaultTodos(t *testing.T) {
	todos := DefaultTodos()
	require.Len(t, todos, 10)
	assert.Equal(t, models.Todo{ID: 2, Title: "file paperwork"}, todos[1])

	s := NewTodoStore(todos)
	created, err := s.Create(models.Fields{"title": "next"})
	require.NoError(t, err)
	assert.EqualValues(t, 11, created.ID)
}

func TestTodoStore_ListFilter(t *testing.T) {
	s := NewTodoStore([]models.Todo{
		{ID: 1, Title: "a"},
		{ID: 2, Title: "b", DoneStatus: true},
		{ID: 3, Title: "c"},
	})

	done, notDone := true, false
	assert.Len(t, s.List(Filter{}), 3)
	assert.Equal(t, []models.Todo{{ID: 2, Title: "b", DoneStatus: true}}, s.List(Filter{DoneStatus: &done}))
	assert.Len(t, s.List(Filter{DoneStatus: &notDone}), 2)
}

func TestTodoStore_CRUD(t *testing.T) {
	s := NewTodoStore(nil)

	created, err := s.Create(models.Fields{"title": "create todo", "doneStatus": true, "description": "d"})
	require.NoError(t, err)
	assert.Equal(t, models.Todo{ID: 1, Title: "create todo", DoneStatus: true, Description: "d"}, created)

	got, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	updated, err := s.Update(1, models.Fields{"title": "updated"})
	require.NoError(t, err)
	assert.Equal(t, models.Todo{ID: 1, Title: "updated", DoneStatus: true, Description: "d"}, updated)

	replaced, err := s.Replace(1, models.Fields{"title": "replaced"})
	require.NoError(t, err)
	assert.Equal(t, models.Todo{ID: 1, Title: "replaced"}, replaced)

	require.NoError(t, s.Delete(1))
	assert.ErrorIs(t, s.Delete(1), ErrTodoNotFound)
	_, err = s.Get(1)
	assert.ErrorIs(t, err, ErrTodoNotFound)
	_, err = s.Update(1, models.Fields{"title": "x"})
	assert.ErrorIs(t, err, ErrTodoNotFound)
	_, err = s.Replace(1, models.Fields{"title": "x"})
	assert.ErrorIs(t, err, ErrTodoNotFound)
}

func TestTodoStore_IDsNeverReused(t *testing.T) {
	s := NewTodoStore(nil)
	var last int64
	for i := 0; i < 5; i++ {
		created, err := s.Create(models.Fields{"title": "t"})
		require.NoError(t, err)
		assert.Greater(t, created.ID, last)
		last = created.ID
		require.NoError(t, s.Delete(created.ID))
	}
	assert.Zero(t, s.Len())
}

func TestTodoStore_Capacity(t *testing.T) {
	s := NewTodoStore(DefaultTodos())
	for s.Len() < MaxTodos {
		_, err := s.Create(models.Fields{"title": "fill"})
		require.NoError(t, err)
	}

	_, err := s.Create(models.Fields{"title": "one too many"})
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, "ERROR: Cannot add instance, maximum limit of 20 reached", err.Error())

	// the capacity check wins over validation
	_, err = s.Create(models.Fields{"doneStatus": "bob"})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	// updates are not bound by capacity
	_, err = s.Update(1, models.Fields{"doneStatus": true})
	assert.NoError(t, err)
	assert.Equal(t, MaxTodos, s.Len())
}

func TestTodoStore_ValidationFailureLeavesStoreUntouched(t *testing.T) {
	s := NewTodoStore(DefaultTodos())

	_, err := s.Create(models.Fields{"title": strings.Repeat("A", 51), "doneStatus": json.Number("1")})
	require.Error(t, err)
	assert.Len(t, validation.Violations(err), 2)
	assert.Equal(t, 10, s.Len())

	_, err = s.Replace(1, models.Fields{"id": json.Number("999"), "title": "x"})
	require.Error(t, err)
	assert.True(t, validation.HasRule(err, validation.RuleAmendID, validation.FieldID))
	got, _ := s.Get(1)
	assert.Equal(t, "scan paperwork", got.Title)

	assert.False(t, errors.Is(err, ErrTodoNotFound))
}

func TestTodoStore_LoadKeepsCounterMonotonic(t *testing.T) {
	s := NewTodoStore(DefaultTodos())
	for i := 0; i < 5; i++ {
		_, err := s.Create(models.Fields{"title": "t"})
		require.NoError(t, err)
	}

	s.Load([]models.Todo{{ID: 3, Title: "loaded"}})
	created, err := s.Create(models.Fields{"title": "after load"})
	require.NoError(t, err)
	assert.EqualValues(t, 16, created.ID)

	s.Load([]models.Todo{{ID: 40, Title: "high"}})
	created, err = s.Create(models.Fields{"title": "after high load"})
	require.NoError(t, err)
	assert.EqualValues(t, 41, created.ID)
}

func TestTodoStore_SnapshotIsCopy(t *testing.T) {
	s := NewTodoStore(DefaultTodos())
	snap := s.Snapshot()
	snap[0].Title = "mutated"

	got, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "scan paperwork", got.Title)
}
