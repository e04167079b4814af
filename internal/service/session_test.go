package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/apichallenges/internal/challenge"
	"github.com/atinyakov/apichallenges/internal/models"
	"github.com/atinyakov/apichallenges/internal/repository"
)

func TestIssueAndResolve(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRegistry()

	s := r.Issue(ctx)
	_, err := uuid.Parse(s.Token())
	require.NoError(t, err)
	assert.Equal(t, 10, s.Len())
	assert.Empty(t, s.Status())

	got, err := r.Resolve(ctx, s.Token())
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = r.Resolve(ctx, "nope")
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestIssue_SkipsTakenTokens(t *testing.T) {
	tokens := []string{"a", "a", "b"}
	r := NewSessionRegistry(WithTokenGenerator(func() string {
		tok := tokens[0]
		tokens = tokens[1:]
		return tok
	}))

	first := r.Issue(context.Background())
	second := r.Issue(context.Background())
	assert.Equal(t, "a", first.Token())
	assert.Equal(t, "b", second.Token())
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRegistry()
	a, b := r.Issue(ctx), r.Issue(ctx)

	require.NoError(t, a.Delete(1))
	_, err := a.Create(models.Fields{"title": "only in a"})
	require.NoError(t, err)

	assert.Equal(t, 10, a.Len())
	_, err = b.Get(1)
	assert.NoError(t, err)
	assert.Len(t, b.List(repository.Filter{}), 10)
}

func TestComplete_NotifiesOnce(t *testing.T) {
	var calls []challenge.ID
	r := NewSessionRegistry(WithCompletionHook(func(token string, id challenge.ID) {
		calls = append(calls, id)
	}))
	s := r.Issue(context.Background())

	assert.True(t, s.Complete(challenge.GetTodos))
	assert.False(t, s.Complete(challenge.GetTodos))
	assert.Equal(t, []challenge.ID{challenge.GetTodos}, calls)
	assert.Equal(t, map[challenge.ID]bool{challenge.GetTodos: true}, s.Status())
}

func TestProgress_ListsWholeCatalog(t *testing.T) {
	s := NewSessionRegistry().Issue(context.Background())
	s.Complete(challenge.GetChallenges)

	p := s.Progress()
	assert.Equal(t, s.Token(), p.XChallenger)
	assert.Len(t, p.ChallengeStatus, len(challenge.Catalog))
	assert.True(t, p.ChallengeStatus[string(challenge.GetChallenges)])
	assert.False(t, p.ChallengeStatus[string(challenge.GetTodos)])
	assert.Len(t, p.Todos, 10)
}

func TestRestore_KnownToken(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRegistry()
	s := r.Issue(ctx)
	s.Complete(challenge.GetTodos)

	snapshot := s.Progress()
	snapshot.ChallengeStatus[string(challenge.GetTodos)] = false
	snapshot.ChallengeStatus[string(challenge.PostTodos)] = true
	snapshot.ChallengeStatus["NOT_A_CHALLENGE"] = true
	snapshot.Todos = []models.Todo{{ID: 4, Title: "restored"}}

	got, created, err := r.Restore(ctx, s.Token(), snapshot)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, s, got)

	status := s.Status()
	assert.True(t, status[challenge.GetTodos], "flags never revert")
	assert.True(t, status[challenge.PostTodos])
	assert.True(t, status[challenge.PutRestorableProgress])
	assert.NotContains(t, status, challenge.ID("NOT_A_CHALLENGE"))
	assert.Equal(t, []models.Todo{{ID: 4, Title: "restored"}}, s.List(repository.Filter{}))

	created11, err := s.Create(models.Fields{"title": "after restore"})
	require.NoError(t, err)
	assert.EqualValues(t, 11, created11.ID)
}

func TestRestore_WithoutTodosKeepsCollection(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRegistry()
	s := r.Issue(ctx)
	require.NoError(t, s.Delete(1))

	_, _, err := r.Restore(ctx, s.Token(), models.Progress{ChallengeStatus: map[string]bool{}})
	require.NoError(t, err)
	assert.Equal(t, 9, s.Len())
}

func TestRestore_NewToken(t *testing.T) {
	ctx := context.Background()
	var hooked []string
	r := NewSessionRegistry(WithCompletionHook(func(token string, id challenge.ID) {
		hooked = append(hooked, fmt.Sprintf("%s:%s", token, id))
	}))
	token := uuid.NewString()

	s, created, err := r.Restore(ctx, token, models.Progress{
		ChallengeStatus: map[string]bool{string(challenge.GetTodos): true},
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, token, s.Token())
	assert.Equal(t, 10, s.Len(), "default todos when the snapshot has none")
	assert.True(t, s.Status()[challenge.PutNewRestoredProgress])
	assert.True(t, s.Status()[challenge.GetTodos])
	assert.ElementsMatch(t, []string{
		token + ":" + string(challenge.GetTodos),
		token + ":" + string(challenge.PutNewRestoredProgress),
	}, hooked)

	resolved, err := r.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Same(t, s, resolved)
}

func TestRestore_Errors(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRegistry()
	s := r.Issue(ctx)

	_, _, err := r.Restore(ctx, "not-a-uuid", models.Progress{})
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = r.Restore(ctx, s.Token(), models.Progress{XChallenger: uuid.NewString()})
	assert.ErrorIs(t, err, ErrTokenMismatch)

	_, _, err = r.Restore(ctx, s.Token(), models.Progress{Todos: []models.Todo{{ID: 1, Title: "a"}, {ID: 1, Title: "b"}}})
	assert.ErrorIs(t, err, ErrInvalidDatabase)
	assert.Equal(t, 10, s.Len())
}

func TestDatabaseExportImport(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRegistry()
	s := r.Issue(ctx)
	s.Complete(challenge.GetTodos)

	todos, err := r.ExportDatabase(ctx, s.Token())
	require.NoError(t, err)
	assert.Len(t, todos, 10)

	require.NoError(t, r.ImportDatabase(ctx, s.Token(), todos[:2]))
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Status()[challenge.GetTodos], "import leaves flags alone")

	_, err = r.ExportDatabase(ctx, "unknown")
	assert.ErrorIs(t, err, ErrUnknownSession)
	assert.ErrorIs(t, r.ImportDatabase(ctx, "unknown", nil), ErrUnknownSession)
}

func TestImportDatabase_Rejects(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRegistry()
	s := r.Issue(ctx)

	tooMany := make([]models.Todo, 0, 21)
	for i := 1; i <= 21; i++ {
		tooMany = append(tooMany, models.Todo{ID: int64(i), Title: "t"})
	}

	cases := map[string][]models.Todo{
		"too many":     tooMany,
		"duplicate id": {{ID: 1, Title: "a"}, {ID: 1, Title: "b"}},
		"empty title":  {{ID: 1}},
		"zero id":      {{ID: 0, Title: "a"}},
	}
	for name, todos := range cases {
		t.Run(name, func(t *testing.T) {
			err := r.ImportDatabase(ctx, s.Token(), todos)
			var dbErr *DatabaseError
			require.ErrorAs(t, err, &dbErr)
			assert.NotEmpty(t, dbErr.Messages)
			assert.ErrorIs(t, err, ErrInvalidDatabase)
		})
	}
	assert.Equal(t, 10, s.Len())
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRegistry()
	sessions, todos := r.Stats()
	assert.Zero(t, sessions)
	assert.Zero(t, todos)

	a := r.Issue(ctx)
	r.Issue(ctx)
	require.NoError(t, a.Delete(1))

	sessions, todos = r.Stats()
	assert.Equal(t, 2, sessions)
	assert.Equal(t, 19, todos)
}

func TestSession_ConcurrentCreates(t *testing.T) {
	s := NewSessionRegistry().Issue(context.Background())

	var wg sync.WaitGroup
	errs := make(chan error, 30)
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Create(models.Fields{"title": "concurrent"}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	var rejected int
	for err := range errs {
		assert.ErrorIs(t, err, repository.ErrCapacityExceeded)
		rejected++
	}
	assert.Equal(t, repository.MaxTodos, s.Len())
	assert.Equal(t, 20, rejected)
}
