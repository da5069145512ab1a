package repository

import (
	"context"
	"fmt"
	"sync"

	"finanzas/internal/core"
)

// CategoryStore is the persistence surface the category mirror drives.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	ListCategoriesByType(ctx context.Context, t core.TransactionType) ([]core.Category, error)
	CreateCategory(ctx context.Context, in core.CategoryInput) (core.Category, error)
	UpdateCategory(ctx context.Context, id string, p core.CategoryPatch) (core.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type Categories struct {
	store CategoryStore

	mu       sync.RWMutex
	items    []core.Category
	loading  bool
	lastErr  string
	fetchSeq uint64
}

func NewCategories(store CategoryStore) *Categories {
	return &Categories{store: store}
}

// Refresh reloads the mirror; see Transactions.Refresh for the stale-response
// handling.
func (r *Categories) Refresh(ctx context.Context) error {
	r.mu.Lock()
	r.fetchSeq++
	seq := r.fetchSeq
	r.loading = true
	r.mu.Unlock()

	items, err := r.store.ListCategories(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.fetchSeq {
		return nil
	}
	r.loading = false
	if err != nil {
		r.lastErr = err.Error()
		return fmt.Errorf("refresh categories: %w", err)
	}
	r.items = items
	r.lastErr = ""
	return nil
}

func (r *Categories) All() []core.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Category, len(r.items))
	copy(out, r.items)
	return out
}

// FetchForType queries the store for categories usable by transactions of
// type t. On failure the mirror's scoped view is returned with the error
// recorded, so callers degrade to the previous data.
func (r *Categories) FetchForType(ctx context.Context, t core.TransactionType) ([]core.Category, error) {
	items, err := r.store.ListCategoriesByType(ctx, t)
	if err != nil {
		r.mu.Lock()
		r.lastErr = err.Error()
		r.mu.Unlock()
		return r.ForType(t), fmt.Errorf("fetch categories for type %s: %w", t, err)
	}

	r.mu.Lock()
	r.lastErr = ""
	r.mu.Unlock()
	return items, nil
}

// ForType returns the mirrored categories usable by transactions of type t.
func (r *Categories) ForType(t core.TransactionType) []core.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.Category
	for _, c := range r.items {
		if c.Type.Allows(t) {
			out = append(out, c)
		}
	}
	return out
}

func (r *Categories) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading
}

func (r *Categories) Err() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

func (r *Categories) ByID(id string) (core.Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.items {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}

func (r *Categories) ByName(name string) (core.Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.items {
		if c.Name == name {
			return c, true
		}
	}
	return core.Category{}, false
}

// Namer resolves a category id to its display name, empty when unknown. It
// feeds search matching and export shaping.
func (r *Categories) Namer() func(id string) string {
	return func(id string) string {
		c, ok := r.ByID(id)
		if !ok {
			return ""
		}
		return c.Name
	}
}

// Lookup adapts the mirror to the breakdown's category resolver.
func (r *Categories) Lookup() func(id string) (core.Category, bool) {
	return r.ByID
}

func (r *Categories) Create(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	created, err := r.store.CreateCategory(ctx, in)
	if err != nil {
		return core.Category{}, err
	}

	r.mu.Lock()
	r.items = append(r.items, created)
	r.mu.Unlock()
	return created, nil
}

func (r *Categories) Update(ctx context.Context, id string, p core.CategoryPatch) (core.Category, error) {
	updated, err := r.store.UpdateCategory(ctx, id, p)
	if err != nil {
		return core.Category{}, err
	}

	r.mu.Lock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i] = updated
			break
		}
	}
	r.mu.Unlock()
	return updated, nil
}

func (r *Categories) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteCategory(ctx, id); err != nil {
		return err
	}

	r.mu.Lock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
	return nil
}
