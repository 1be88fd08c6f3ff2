package repo

import (
	"context"
	"fmt"
	"sync"
	"time"

	dom "kanban/internal/domain"
)

// MemoryTaskRepo keeps tasks in process memory. Used for local runs without
// a database (STORE_DRIVER=memory) and in tests.
type MemoryTaskRepo struct {
	mu    sync.RWMutex
	order []string
	tasks map[string]dom.Task
	now   func() time.Time
}

func NewMemoryTaskRepo(seed ...dom.Task) *MemoryTaskRepo {
	r := &MemoryTaskRepo{tasks: make(map[string]dom.Task), now: func() time.Time { return time.Now().UTC() }}
	for _, t := range seed {
		r.order = append(r.order, t.ID)
		r.tasks[t.ID] = t
	}
	return r
}

func (r *MemoryTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.tasks[t.ID]; dup {
		return dom.Task{}, fmt.Errorf("task %q already exists", t.ID)
	}
	t.CreatedAt = r.now()
	t.UpdatedAt = t.CreatedAt
	r.order = append(r.order, t.ID)
	r.tasks[t.ID] = t
	return t, nil
}

func (r *MemoryTaskRepo) GetByID(ctx context.Context, id string) (dom.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return dom.Task{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryTaskRepo) List(ctx context.Context) ([]dom.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]dom.Task, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tasks[id])
	}
	return out, nil
}

func (r *MemoryTaskRepo) UpdateFields(ctx context.Context, id string, patch dom.TaskPatch) (dom.Task, error) {
	return r.update(id, func(t *dom.Task) {
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Detail != nil {
			t.Detail = *patch.Detail
		}
		if patch.AssignedTo != nil {
			t.AssignedTo = *patch.AssignedTo
		}
	})
}

func (r *MemoryTaskRepo) Move(ctx context.Context, id string, column dom.Column, status dom.Status) (dom.Task, error) {
	return r.update(id, func(t *dom.Task) {
		t.Column = column
		t.Status = status
	})
}

func (r *MemoryTaskRepo) Delete(ctx context.Context, id string) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return dom.Task{}, ErrNotFound
	}
	delete(r.tasks, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return t, nil
}

func (r *MemoryTaskRepo) update(id string, fn func(*dom.Task)) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return dom.Task{}, ErrNotFound
	}
	fn(&t)
	t.UpdatedAt = r.now()
	r.tasks[id] = t
	return t, nil
}
