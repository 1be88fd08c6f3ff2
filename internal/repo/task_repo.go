package repo

import (
	"context"
	"errors"

	dom "kanban/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned by every TaskRepo implementation when no task has the given id.
var ErrNotFound = errors.New("task not found")

// TaskRepo is the persistence boundary for tasks. Column and status are only
// written together, through Move.
type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	GetByID(ctx context.Context, id string) (dom.Task, error)
	List(ctx context.Context) ([]dom.Task, error)
	UpdateFields(ctx context.Context, id string, patch dom.TaskPatch) (dom.Task, error)
	Move(ctx context.Context, id string, column dom.Column, status dom.Status) (dom.Task, error)
	Delete(ctx context.Context, id string) (dom.Task, error)
}

// PGX is the subset of *pgxpool.Pool the Postgres repo needs.
type PGX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const taskColumns = `id, title, detail, assigned_to, board_column, status, created_at, updated_at`

type PGTaskRepo struct {
	db PGX
}

func NewPGTaskRepo(db PGX) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		INSERT INTO tasks (id, title, detail, assigned_to, board_column, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query,
		t.ID, t.Title, t.Detail, t.AssignedTo, string(t.Column), string(t.Status)))
}

func (r *PGTaskRepo) GetByID(ctx context.Context, id string) (dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.db.QueryRow(ctx, query, id))
}

func (r *PGTaskRepo) List(ctx context.Context) ([]dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []dom.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// UpdateFields applies a partial edit. Nil fields keep their stored value.
func (r *PGTaskRepo) UpdateFields(ctx context.Context, id string, patch dom.TaskPatch) (dom.Task, error) {
	query := `
		UPDATE tasks SET
			title = COALESCE($2, title),
			detail = COALESCE($3, detail),
			assigned_to = COALESCE($4, assigned_to),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query, id, patch.Title, patch.Detail, patch.AssignedTo))
}

func (r *PGTaskRepo) Move(ctx context.Context, id string, column dom.Column, status dom.Status) (dom.Task, error) {
	query := `
		UPDATE tasks SET board_column = $2, status = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query, id, string(column), string(status)))
}

func (r *PGTaskRepo) Delete(ctx context.Context, id string) (dom.Task, error) {
	query := `DELETE FROM tasks WHERE id = $1 RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query, id))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (dom.Task, error) {
	var (
		t           dom.Task
		col, status string
	)
	err := row.Scan(&t.ID, &t.Title, &t.Detail, &t.AssignedTo, &col, &status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}
	t.Column = dom.Column(col)
	t.Status = dom.Status(status)
	return t, nil
}
