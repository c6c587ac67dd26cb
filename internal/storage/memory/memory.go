// Package memory is an in-process storage.Store for development and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"financaszen/internal/storage"
)

type collection struct {
	order []string
	docs  map[string][]byte
}

type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

func New() *Store {
	return &Store{collections: make(map[string]*collection)}
}

// NewFromDir seeds a store from <collection>.json files holding arrays of
// objects with an "id" field. A missing directory yields an empty store.
func NewFromDir(dir string) (*Store, error) {
	s := New()
	if dir == "" {
		return s, nil
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list seed files: %w", err)
	}
	for _, path := range paths {
		if err := s.seedFile(path); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) seedFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed %s: %w", path, err)
	}
	var docs []json.RawMessage
	if err := json.Unmarshal(raw, &docs); err != nil {
		return fmt.Errorf("parse seed %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), ".json")
	for i, doc := range docs {
		var head struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(doc, &head); err != nil || head.ID == "" {
			return fmt.Errorf("seed %s: record %d has no id", path, i)
		}
		if err := s.Insert(context.Background(), name, head.ID, doc); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) get(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string][]byte)}
		s.collections[name] = c
	}
	return c
}

func clone(b []byte) []byte { return append([]byte(nil), b...) }

func (s *Store) Insert(_ context.Context, name, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.get(name)
	if _, ok := c.docs[id]; ok {
		return fmt.Errorf("insert %s/%s: %w", name, id, storage.ErrDuplicate)
	}
	c.docs[id] = clone(data)
	c.order = append(c.order, id)
	return nil
}

func (s *Store) Replace(_ context.Context, name, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.get(name)
	if _, ok := c.docs[id]; !ok {
		return fmt.Errorf("update %s/%s: %w", name, id, storage.ErrNotFound)
	}
	c.docs[id] = clone(data)
	return nil
}

func (s *Store) Get(_ context.Context, name, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.collections[name]; ok {
		if doc, ok := c.docs[id]; ok {
			return clone(doc), nil
		}
	}
	return nil, fmt.Errorf("get %s/%s: %w", name, id, storage.ErrNotFound)
}

func (s *Store) List(_ context.Context, name string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, nil
	}
	out := make([][]byte, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, clone(c.docs[id]))
	}
	return out, nil
}

func (s *Store) Delete(_ context.Context, name, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("delete %s/%s: %w", name, id, storage.ErrNotFound)
	}
	if _, ok := c.docs[id]; !ok {
		return fmt.Errorf("delete %s/%s: %w", name, id, storage.ErrNotFound)
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

var _ storage.Store = (*Store)(nil)
