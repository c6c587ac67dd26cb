// Package storage persists domain records as JSON documents grouped in
// named collections.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Store is the document backend shared by SQLite and memory implementations.
// Documents keep insertion order within a collection.
type Store interface {
	Insert(ctx context.Context, collection, id string, data []byte) error
	Replace(ctx context.Context, collection, id string, data []byte) error
	Get(ctx context.Context, collection, id string) ([]byte, error)
	List(ctx context.Context, collection string) ([][]byte, error)
	Delete(ctx context.Context, collection, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// Collection is a typed view over one collection of a Store.
type Collection[T any] struct {
	store Store
	name  string
}

func NewCollection[T any](s Store, name string) *Collection[T] {
	return &Collection[T]{store: s, name: name}
}

func (c *Collection[T]) Name() string { return c.name }

func (c *Collection[T]) encode(v T) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s record: %w", c.name, err)
	}
	return data, nil
}

func (c *Collection[T]) Insert(ctx context.Context, id string, v T) error {
	data, err := c.encode(v)
	if err != nil {
		return err
	}
	return c.store.Insert(ctx, c.name, id, data)
}

func (c *Collection[T]) Replace(ctx context.Context, id string, v T) error {
	data, err := c.encode(v)
	if err != nil {
		return err
	}
	return c.store.Replace(ctx, c.name, id, data)
}

// Upsert replaces the record or inserts it when missing.
func (c *Collection[T]) Upsert(ctx context.Context, id string, v T) error {
	err := c.Replace(ctx, id, v)
	if errors.Is(err, ErrNotFound) {
		return c.Insert(ctx, id, v)
	}
	return err
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var v T
	data, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode %s/%s: %w", c.name, id, err)
	}
	return v, nil
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	return c.Filter(ctx, nil)
}

// Filter lists the records accepted by keep; a nil keep accepts all.
func (c *Collection[T]) Filter(ctx context.Context, keep func(T) bool) ([]T, error) {
	docs, err := c.store.List(ctx, c.name)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, data := range docs {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode %s record: %w", c.name, err)
		}
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, c.name, id)
}
