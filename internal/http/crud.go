package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// crudRepo is the repository surface the generic handlers need.
type crudRepo[T any] interface {
	Create(ctx context.Context, v T) (T, error)
	Get(ctx context.Context, id string) (T, error)
	List(ctx context.Context) ([]T, error)
	Filter(ctx context.Context, keep func(T) bool) ([]T, error)
	Update(ctx context.Context, id string, v T) (T, error)
	Delete(ctx context.Context, id string) error
}

// queryFilter narrows a list by one query parameter.
type queryFilter[T any] struct {
	param string
	match func(v T, value string) bool
}

func filterBy[T any](param string, match func(v T, value string) bool) queryFilter[T] {
	return queryFilter[T]{param: param, match: match}
}

// resource serves list/create on "/" and get/replace/delete on "/{id}".
type resource[T any] struct {
	s       *Server
	repo    crudRepo[T]
	filters []queryFilter[T]
}

func mountCRUD[T any](r chi.Router, s *Server, repo crudRepo[T], filters ...queryFilter[T]) {
	res := &resource[T]{s: s, repo: repo, filters: filters}
	r.Get("/", res.list)
	r.Post("/", res.create)
	r.Get("/{id}", res.get)
	r.Put("/{id}", res.replace)
	r.Delete("/{id}", res.delete)
}

func (res *resource[T]) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	type active struct {
		match func(T, string) bool
		value string
	}
	var preds []active
	for _, f := range res.filters {
		if v := sanitizeInput(q.Get(f.param)); v != "" {
			preds = append(preds, active{f.match, v})
		}
	}
	items, err := res.repo.Filter(r.Context(), func(v T) bool {
		for _, p := range preds {
			if !p.match(v, p.value) {
				return false
			}
		}
		return true
	})
	if err != nil {
		res.s.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (res *resource[T]) create(w http.ResponseWriter, r *http.Request) {
	var v T
	if err := decodeJSON(w, r, &v); err != nil {
		res.s.writeError(w, r, err)
		return
	}
	created, err := res.repo.Create(r.Context(), v)
	if err != nil {
		res.s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (res *resource[T]) get(w http.ResponseWriter, r *http.Request) {
	v, err := res.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		res.s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (res *resource[T]) replace(w http.ResponseWriter, r *http.Request) {
	var v T
	if err := decodeJSON(w, r, &v); err != nil {
		res.s.writeError(w, r, err)
		return
	}
	updated, err := res.repo.Update(r.Context(), chi.URLParam(r, "id"), v)
	if err != nil {
		res.s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (res *resource[T]) delete(w http.ResponseWriter, r *http.Request) {
	if err := res.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		res.s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
