package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"kanban/internal/board"
	"kanban/internal/cache"
	dom "kanban/internal/domain"
	"kanban/internal/repo"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// CreateInput describes a new task. Status may be empty, in which case the
// column's baseline status is used.
type CreateInput struct {
	Title      string
	Detail     string
	AssignedTo string
	Column     dom.Column
	Status     dom.Status
}

// UpdateInput is a partial edit. A non-nil Column moves the task through the
// transition policy.
type UpdateInput struct {
	ID         string
	Title      *string
	Detail     *string
	AssignedTo *string
	Column     *dom.Column
}

// TaskService is the only writer of tasks. Concurrent writes to the same task
// are last-write-wins.
type TaskService struct {
	repo  repo.TaskRepo
	cache *cache.TaskCache
	sf    singleflight.Group
	newID func() string
}

// NewTaskService creates a TaskService. If c is nil, caching is disabled.
func NewTaskService(r repo.TaskRepo, c *cache.TaskCache) *TaskService {
	return &TaskService{repo: r, cache: c, newID: uuid.NewString}
}

func (s *TaskService) List(ctx context.Context) ([]dom.Task, error) {
	if s.cache == nil {
		return s.repo.List(ctx)
	}
	v, err, _ := s.sf.Do("list", func() (interface{}, error) {
		if list, err := s.cache.GetList(ctx); err == nil && list != nil {
			return list, nil
		}
		epoch, epochErr := s.cache.Epoch(ctx)
		list, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		if epochErr == nil {
			_ = s.cache.SetList(ctx, epoch, list)
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Task), nil
}

func (s *TaskService) Get(ctx context.Context, id string) (dom.Task, error) {
	if s.cache == nil {
		return s.load(ctx, id)
	}
	v, err, _ := s.sf.Do("item:"+id, func() (interface{}, error) {
		if t, err := s.cache.GetTask(ctx, id); err == nil && t != nil {
			return *t, nil
		}
		epoch, epochErr := s.cache.Epoch(ctx)
		t, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if epochErr == nil {
			_ = s.cache.SetTask(ctx, epoch, t)
		}
		return t, nil
	})
	if err != nil {
		return dom.Task{}, err
	}
	return v.(dom.Task), nil
}

func (s *TaskService) ListByColumn(ctx context.Context, column dom.Column) ([]dom.Task, error) {
	if !column.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrValidation, dom.ErrInvalidColumn)
	}
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return board.InColumn(list, column), nil
}

// Search returns the tasks matching q in board order.
func (s *TaskService) Search(ctx context.Context, q string) ([]dom.Task, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return board.Filter(list, q), nil
}

// Board returns the filtered board grouped by column.
func (s *TaskService) Board(ctx context.Context, q string) (board.View, error) {
	list, err := s.List(ctx)
	if err != nil {
		return board.View{}, err
	}
	return board.NewView(list, q), nil
}

func (s *TaskService) Stats(ctx context.Context) (board.Stats, error) {
	list, err := s.List(ctx)
	if err != nil {
		return board.Stats{}, err
	}
	return board.Summarize(list), nil
}

func (s *TaskService) Create(ctx context.Context, in CreateInput) (dom.Task, error) {
	t := dom.Task{
		ID:         s.newID(),
		Title:      strings.TrimSpace(in.Title),
		Detail:     strings.TrimSpace(in.Detail),
		AssignedTo: strings.TrimSpace(in.AssignedTo),
		Column:     in.Column,
		Status:     in.Status,
	}
	if !t.Column.Valid() {
		return dom.Task{}, fmt.Errorf("%w: %v", ErrValidation, dom.ErrInvalidColumn)
	}
	if t.Status == "" {
		t.Status = t.Column.Baseline()
	}
	if !t.Status.Valid() {
		return dom.Task{}, fmt.Errorf("%w: %v", ErrValidation, dom.ErrInvalidStatus)
	}
	if err := validateFields(&t.Title, &t.Detail, &t.AssignedTo); err != nil {
		return dom.Task{}, err
	}
	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return dom.Task{}, err
	}
	s.invalidateCache(ctx)
	return created, nil
}

// Update applies field edits and, when requested, a column move.
func (s *TaskService) Update(ctx context.Context, in UpdateInput) (dom.Task, error) {
	patch := dom.TaskPatch{
		Title:      trimmed(in.Title),
		Detail:     trimmed(in.Detail),
		AssignedTo: trimmed(in.AssignedTo),
	}
	if err := validateFields(patch.Title, patch.Detail, patch.AssignedTo); err != nil {
		return dom.Task{}, err
	}
	if in.Column != nil && !in.Column.Valid() {
		return dom.Task{}, fmt.Errorf("%w: %v", ErrValidation, dom.ErrInvalidColumn)
	}

	var (
		t   dom.Task
		err error
	)
	if patch.Empty() {
		t, err = s.load(ctx, in.ID)
	} else {
		t, err = s.repo.UpdateFields(ctx, in.ID, patch)
		err = mapRepoErr(err)
		if err == nil {
			s.invalidateCache(ctx, in.ID)
		}
	}
	if err != nil {
		return dom.Task{}, err
	}
	if in.Column == nil {
		return t, nil
	}
	return s.move(ctx, t, *in.Column)
}

// Move drops a task on a column. Column and status are recomputed by the
// transition policy and written together.
func (s *TaskService) Move(ctx context.Context, id string, column dom.Column) (dom.Task, error) {
	if !column.Valid() {
		return dom.Task{}, fmt.Errorf("%w: %v", ErrValidation, dom.ErrInvalidColumn)
	}
	t, err := s.load(ctx, id)
	if err != nil {
		return dom.Task{}, err
	}
	return s.move(ctx, t, column)
}

func (s *TaskService) move(ctx context.Context, t dom.Task, column dom.Column) (dom.Task, error) {
	moved, changed := board.Apply(t, column)
	if !changed {
		return t, nil
	}
	out, err := s.repo.Move(ctx, t.ID, moved.Column, moved.Status)
	if err != nil {
		return dom.Task{}, mapRepoErr(err)
	}
	s.invalidateCache(ctx, t.ID)
	return out, nil
}

// Reassign changes who a task is assigned to.
func (s *TaskService) Reassign(ctx context.Context, id, assignedTo string) (dom.Task, error) {
	return s.Update(ctx, UpdateInput{ID: id, AssignedTo: &assignedTo})
}

// Duplicate creates a copy of the task with a marked title.
func (s *TaskService) Duplicate(ctx context.Context, id string) (dom.Task, error) {
	src, err := s.load(ctx, id)
	if err != nil {
		return dom.Task{}, err
	}
	cp := board.Duplicate(src)
	cp.ID = s.newID()
	created, err := s.repo.Create(ctx, cp)
	if err != nil {
		return dom.Task{}, err
	}
	s.invalidateCache(ctx)
	return created, nil
}

// Delete removes the task and returns it as it was.
func (s *TaskService) Delete(ctx context.Context, id string) (dom.Task, error) {
	t, err := s.repo.Delete(ctx, id)
	if err != nil {
		return dom.Task{}, mapRepoErr(err)
	}
	s.invalidateCache(ctx, id)
	return t, nil
}

// BulkUpdate applies updates in order and stops at the first failure. Updates
// already applied stay applied.
func (s *TaskService) BulkUpdate(ctx context.Context, updates []UpdateInput) ([]dom.Task, error) {
	out := make([]dom.Task, 0, len(updates))
	for i, u := range updates {
		t, err := s.Update(ctx, u)
		if err != nil {
			return out, fmt.Errorf("update %d (%s): %w", i, u.ID, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *TaskService) load(ctx context.Context, id string) (dom.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dom.Task{}, mapRepoErr(err)
	}
	return t, nil
}

func (s *TaskService) invalidateCache(ctx context.Context, ids ...string) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, ids...)
	}
}

func mapRepoErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

func validateFields(title, detail, assignedTo *string) error {
	if title != nil {
		if n := utf8.RuneCountInString(*title); n == 0 || n > dom.MaxTitleLen {
			return fmt.Errorf("%w: title must be 1-%d characters", ErrValidation, dom.MaxTitleLen)
		}
	}
	if detail != nil && utf8.RuneCountInString(*detail) > dom.MaxDetailLen {
		return fmt.Errorf("%w: detail must be at most %d characters", ErrValidation, dom.MaxDetailLen)
	}
	if assignedTo != nil && utf8.RuneCountInString(*assignedTo) > dom.MaxAssignedToLen {
		return fmt.Errorf("%w: assignedTo must be at most %d characters", ErrValidation, dom.MaxAssignedToLen)
	}
	return nil
}
