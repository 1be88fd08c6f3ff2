package graph

import (
	"context"
	"encoding/json"
	"errors"

	dom "kanban/internal/domain"
	"kanban/internal/service"

	graphql "github.com/graph-gophers/graphql-go"
)

type Resolver struct {
	svc *service.TaskService
}

type idArgs struct {
	ID graphql.ID
}

type createArgs struct {
	Title      string
	Detail     string
	AssignedTo string
	Status     *string
	Column     string
}

type updateArgs struct {
	ID         graphql.ID
	Title      *string
	Detail     *string
	AssignedTo *string
	Column     *string
}

func (r *Resolver) Tasks(ctx context.Context) ([]*taskResolver, error) {
	list, err := r.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	return wrapTasks(list), nil
}

// Task resolves to null when no task has the id.
func (r *Resolver) Task(ctx context.Context, args idArgs) (*taskResolver, error) {
	t, err := r.svc.Get(ctx, string(args.ID))
	if errors.Is(err, service.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &taskResolver{t: t}, nil
}

func (r *Resolver) TasksByColumn(ctx context.Context, args struct{ Column string }) ([]*taskResolver, error) {
	list, err := r.svc.ListByColumn(ctx, dom.Column(args.Column))
	if err != nil {
		return nil, err
	}
	return wrapTasks(list), nil
}

func (r *Resolver) SearchTasks(ctx context.Context, args struct{ Query string }) ([]*taskResolver, error) {
	list, err := r.svc.Search(ctx, args.Query)
	if err != nil {
		return nil, err
	}
	return wrapTasks(list), nil
}

func (r *Resolver) TasksStats(ctx context.Context) (*statsResolver, error) {
	s, err := r.svc.Stats(ctx)
	if err != nil {
		return nil, err
	}
	by := make(map[string]int32, len(s.ByStatus))
	for k, v := range s.ByStatus {
		by[string(k)] = int32(v)
	}
	raw, err := json.Marshal(by)
	if err != nil {
		return nil, err
	}
	return &statsResolver{
		total:    int32(s.Total),
		todo:     int32(s.Todo),
		doing:    int32(s.Doing),
		done:     int32(s.Done),
		byStatus: string(raw),
	}, nil
}

// AddTask is kept alongside CreateTask for older clients.
func (r *Resolver) AddTask(ctx context.Context, args createArgs) (*taskResolver, error) {
	return r.CreateTask(ctx, args)
}

func (r *Resolver) CreateTask(ctx context.Context, args createArgs) (*taskResolver, error) {
	in := service.CreateInput{
		Title:      args.Title,
		Detail:     args.Detail,
		AssignedTo: args.AssignedTo,
		Column:     dom.Column(args.Column),
	}
	if args.Status != nil {
		in.Status = dom.Status(*args.Status)
	}
	return wrap(r.svc.Create(ctx, in))
}

func (r *Resolver) UpdateTask(ctx context.Context, args updateArgs) (*taskResolver, error) {
	return wrap(r.svc.Update(ctx, args.input()))
}

func (r *Resolver) UpdateTaskColumn(ctx context.Context, args struct {
	ID     graphql.ID
	Column string
}) (*taskResolver, error) {
	return wrap(r.svc.Move(ctx, string(args.ID), dom.Column(args.Column)))
}

func (r *Resolver) UpdateTaskAssignment(ctx context.Context, args struct {
	ID         graphql.ID
	AssignedTo string
}) (*taskResolver, error) {
	return wrap(r.svc.Reassign(ctx, string(args.ID), args.AssignedTo))
}

func (r *Resolver) DeleteTask(ctx context.Context, args idArgs) (*taskResolver, error) {
	return wrap(r.svc.Delete(ctx, string(args.ID)))
}

func (r *Resolver) DuplicateTask(ctx context.Context, args idArgs) (*taskResolver, error) {
	return wrap(r.svc.Duplicate(ctx, string(args.ID)))
}

func (r *Resolver) BulkUpdateTasks(ctx context.Context, args struct{ Updates []updateArgs }) ([]*taskResolver, error) {
	updates := make([]service.UpdateInput, len(args.Updates))
	for i, u := range args.Updates {
		updates[i] = u.input()
	}
	list, err := r.svc.BulkUpdate(ctx, updates)
	if err != nil {
		return nil, err
	}
	return wrapTasks(list), nil
}

func (a updateArgs) input() service.UpdateInput {
	in := service.UpdateInput{
		ID:         string(a.ID),
		Title:      a.Title,
		Detail:     a.Detail,
		AssignedTo: a.AssignedTo,
	}
	if a.Column != nil {
		col := dom.Column(*a.Column)
		in.Column = &col
	}
	return in
}

type taskResolver struct {
	t dom.Task
}

func (r *taskResolver) ID() graphql.ID     { return graphql.ID(r.t.ID) }
func (r *taskResolver) Title() string      { return r.t.Title }
func (r *taskResolver) Detail() string     { return r.t.Detail }
func (r *taskResolver) AssignedTo() string { return r.t.AssignedTo }
func (r *taskResolver) Status() string     { return string(r.t.Status) }
func (r *taskResolver) Column() string     { return string(r.t.Column) }

type statsResolver struct {
	total, todo, doing, done int32
	byStatus                 string
}

func (r *statsResolver) Total() int32     { return r.total }
func (r *statsResolver) Todo() int32      { return r.todo }
func (r *statsResolver) Doing() int32     { return r.doing }
func (r *statsResolver) Done() int32      { return r.done }
func (r *statsResolver) ByStatus() string { return r.byStatus }

func wrap(t dom.Task, err error) (*taskResolver, error) {
	if err != nil {
		return nil, err
	}
	return &taskResolver{t: t}, nil
}

func wrapTasks(list []dom.Task) []*taskResolver {
	out := make([]*taskResolver, len(list))
	for i := range list {
		out[i] = &taskResolver{t: list[i]}
	}
	return out
}
