// Package services holds the domain state containers and the views derived
// from them.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"financaszen/internal/core"
	"financaszen/internal/log"
	"financaszen/internal/storage"
)

// record is satisfied by pointers to the core entity types.
type record[T any] interface {
	*T
	core.Entity
	Stamp(id string, created, updated time.Time)
	Created() time.Time
	Normalize()
}

// ChangeFunc is told which collection was written.
type ChangeFunc func(collection string)

// Repo is a CRUD container over one collection: ids and timestamps are
// assigned here, records are normalized and validated before every write.
type Repo[T any, P record[T]] struct {
	col      *storage.Collection[T]
	logger   *log.Logger
	now      func() time.Time
	newID    func() string
	onChange ChangeFunc
}

func NewRepo[T any, P record[T]](s storage.Store, name string, logger *log.Logger) *Repo[T, P] {
	if logger == nil {
		logger = log.Discard()
	}
	return &Repo[T, P]{
		col:    storage.NewCollection[T](s, name),
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func (r *Repo[T, P]) Name() string { return r.col.Name() }

// OnChange registers the callback run after successful writes.
func (r *Repo[T, P]) OnChange(fn ChangeFunc) { r.onChange = fn }

func (r *Repo[T, P]) changed() {
	if r.onChange != nil {
		r.onChange(r.col.Name())
	}
}

func (r *Repo[T, P]) Create(ctx context.Context, v T) (T, error) {
	p := P(&v)
	p.Normalize()
	if err := p.Validate(); err != nil {
		return v, err
	}
	now := r.now().UTC()
	p.Stamp(r.newID(), now, now)
	if err := r.col.Insert(ctx, p.Key(), v); err != nil {
		return v, fmt.Errorf("create %s: %w", r.col.Name(), err)
	}
	r.changed()
	r.logger.DebugContext(ctx, "Record created",
		log.FieldCollection, r.col.Name(),
		log.FieldEntityID, p.Key())
	return v, nil
}

func (r *Repo[T, P]) Get(ctx context.Context, id string) (T, error) {
	v, err := r.col.Get(ctx, id)
	if err != nil {
		return v, fmt.Errorf("get %s %s: %w", r.col.Name(), id, err)
	}
	return v, nil
}

func (r *Repo[T, P]) List(ctx context.Context) ([]T, error) {
	return r.Filter(ctx, nil)
}

func (r *Repo[T, P]) Filter(ctx context.Context, keep func(T) bool) ([]T, error) {
	out, err := r.col.Filter(ctx, keep)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.col.Name(), err)
	}
	return out, nil
}

// Update replaces the record with the given id, keeping its creation time.
func (r *Repo[T, P]) Update(ctx context.Context, id string, v T) (T, error) {
	existing, err := r.Get(ctx, id)
	if err != nil {
		return v, err
	}
	p := P(&v)
	p.Normalize()
	if err := p.Validate(); err != nil {
		return v, err
	}
	p.Stamp(id, P(&existing).Created(), r.now().UTC())
	if err := r.col.Replace(ctx, id, v); err != nil {
		return v, fmt.Errorf("update %s %s: %w", r.col.Name(), id, err)
	}
	r.changed()
	r.logger.DebugContext(ctx, "Record updated",
		log.FieldCollection, r.col.Name(),
		log.FieldEntityID, id)
	return v, nil
}

func (r *Repo[T, P]) Delete(ctx context.Context, id string) error {
	if err := r.col.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", r.col.Name(), id, err)
	}
	r.changed()
	r.logger.DebugContext(ctx, "Record deleted",
		log.FieldCollection, r.col.Name(),
		log.FieldEntityID, id)
	return nil
}
