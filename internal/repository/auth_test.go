package repository

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryAuthRepository_Tokens(t *testing.T) {
	repo := NewMemoryAuthRepository()
	ctx := context.Background()

	exists, err := repo.TokenExists(ctx, "tok-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Errorf("expected unknown token, got known")
	}

	if err := repo.SaveToken(ctx, "tok-1"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	if err := repo.SaveToken(ctx, "tok-2"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}

	for _, tok := range []string{"tok-1", "tok-2"} {
		exists, err := repo.TokenExists(ctx, tok)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !exists {
			t.Errorf("expected %q to be valid", tok)
		}
	}
}

func TestMemoryAuthRepository_Note(t *testing.T) {
	repo := NewMemoryAuthRepository()
	ctx := context.Background()

	note, err := repo.GetNote(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if note != "" {
		t.Errorf("initial note = %q; want empty", note)
	}

	if err := repo.SetNote(ctx, "my note"); err != nil {
		t.Fatalf("SetNote: %v", err)
	}
	note, _ = repo.GetNote(ctx)
	if note != "my note" {
		t.Errorf("note = %q; want %q", note, "my note")
	}
}

func TestMemoryAuthRepository_Concurrent(t *testing.T) {
	repo := NewMemoryAuthRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.SaveToken(ctx, "shared")
			_, _ = repo.TokenExists(ctx, "shared")
			_ = repo.SetNote(ctx, "n")
			_, _ = repo.GetNote(ctx)
		}()
	}
	wg.Wait()

	if ok, _ := repo.TokenExists(ctx, "shared"); !ok {
		t.Errorf("expected shared token to be saved")
	}
}
