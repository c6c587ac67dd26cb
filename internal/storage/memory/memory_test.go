package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"financaszen/internal/storage"
)

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.Insert(ctx, "accounts", "a", []byte(`{"id":"a"}`)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Insert(ctx, "accounts", "a", []byte(`{}`)); !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if err := s.Insert(ctx, "accounts", "b", []byte(`{"id":"b"}`)); err != nil {
		t.Fatalf("insert b: %v", err)
	}
	if err := s.Replace(ctx, "accounts", "a", []byte(`{"id":"a","v":2}`)); err != nil {
		t.Fatalf("replace: %v", err)
	}
	docs, _ := s.List(ctx, "accounts")
	if len(docs) != 2 || string(docs[0]) != `{"id":"a","v":2}` {
		t.Fatalf("unexpected list %q", docs)
	}
	if err := s.Delete(ctx, "accounts", "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "accounts", "a"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.Replace(ctx, "cards", "x", nil); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStoreConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('A' + i))
			if err := s.Insert(ctx, "tx", id, []byte(`{}`)); err != nil {
				t.Errorf("insert %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()
	docs, _ := s.List(ctx, "tx")
	if len(docs) != 50 {
		t.Fatalf("expected 50 docs, got %d", len(docs))
	}
}

func TestNewFromDir(t *testing.T) {
	dir := t.TempDir()
	seed := `[{"id":"1","name":"Conta"},{"id":"2","name":"Carteira"}]`
	if err := os.WriteFile(filepath.Join(dir, "bank_accounts.json"), []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := NewFromDir(dir)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	docs, _ := s.List(context.Background(), "bank_accounts")
	if len(docs) != 2 {
		t.Fatalf("expected 2 seeded docs, got %d", len(docs))
	}

	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`[{"name":"x"}]`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFromDir(dir); err == nil {
		t.Fatalf("expected error for record without id")
	}
}
