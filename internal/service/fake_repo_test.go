package service

import (
	"context"
	"sync"

	dom "kanban/internal/domain"
	"kanban/internal/repo"
)

// memRepo wraps the in-memory repo, counting calls and optionally failing them.
type memRepo struct {
	inner *repo.MemoryTaskRepo

	mu      sync.Mutex
	calls   map[string]int
	FailAll error

	// afterList runs once the store has been read, before List returns.
	afterList func()
}

func newMemRepo(seed ...dom.Task) *memRepo {
	return &memRepo{inner: repo.NewMemoryTaskRepo(seed...), calls: map[string]int{}}
}

func (r *memRepo) hit(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[name]++
	return r.FailAll
}

func (r *memRepo) Calls(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[name]
}

func (r *memRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	if err := r.hit("Create"); err != nil {
		return dom.Task{}, err
	}
	return r.inner.Create(ctx, t)
}

func (r *memRepo) GetByID(ctx context.Context, id string) (dom.Task, error) {
	if err := r.hit("GetByID"); err != nil {
		return dom.Task{}, err
	}
	return r.inner.GetByID(ctx, id)
}

func (r *memRepo) List(ctx context.Context) ([]dom.Task, error) {
	if err := r.hit("List"); err != nil {
		return nil, err
	}
	list, err := r.inner.List(ctx)
	if r.afterList != nil {
		r.afterList()
	}
	return list, err
}

func (r *memRepo) UpdateFields(ctx context.Context, id string, patch dom.TaskPatch) (dom.Task, error) {
	if err := r.hit("UpdateFields"); err != nil {
		return dom.Task{}, err
	}
	return r.inner.UpdateFields(ctx, id, patch)
}

func (r *memRepo) Move(ctx context.Context, id string, column dom.Column, status dom.Status) (dom.Task, error) {
	if err := r.hit("Move"); err != nil {
		return dom.Task{}, err
	}
	return r.inner.Move(ctx, id, column, status)
}

func (r *memRepo) Delete(ctx context.Context, id string) (dom.Task, error) {
	if err := r.hit("Delete"); err != nil {
		return dom.Task{}, err
	}
	return r.inner.Delete(ctx, id)
}
