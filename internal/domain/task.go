package domain

import (
	"errors"
	"time"
)

// Domain entity: the board's source of truth.
// Does not depend on Gin, Postgres, Neo4j or Redis.

var (
	ErrInvalidColumn = errors.New("column must be one of todo, doing, done")
	ErrInvalidStatus = errors.New("status must be one of pending, committed, done, reassigned")
)

// Column is a board lane.
type Column string

const (
	ColumnTodo  Column = "todo"
	ColumnDoing Column = "doing"
	ColumnDone  Column = "done"
)

// Status is the workflow state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusCommitted  Status = "committed"
	StatusDone       Status = "done"
	StatusReassigned Status = "reassigned"
)

// Field limits.
const (
	MaxTitleLen      = 100
	MaxDetailLen     = 500
	MaxAssignedToLen = 50
)

// Columns returns the lanes in board order.
func Columns() []Column {
	return []Column{ColumnTodo, ColumnDoing, ColumnDone}
}

// Statuses returns every workflow status.
func Statuses() []Status {
	return []Status{StatusPending, StatusCommitted, StatusDone, StatusReassigned}
}

// Rank is the column's position in the todo -> doing -> done progression.
func (c Column) Rank() int {
	switch c {
	case ColumnTodo:
		return 0
	case ColumnDoing:
		return 1
	case ColumnDone:
		return 2
	}
	return -1
}

// Baseline is the status a task gets when it lands in c without regressing.
func (c Column) Baseline() Status {
	switch c {
	case ColumnDoing:
		return StatusCommitted
	case ColumnDone:
		return StatusDone
	}
	return StatusPending
}

func (c Column) Valid() bool { return c.Rank() >= 0 }

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCommitted, StatusDone, StatusReassigned:
		return true
	}
	return false
}

func ParseColumn(s string) (Column, error) {
	c := Column(s)
	if !c.Valid() {
		return "", ErrInvalidColumn
	}
	return c, nil
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

type Task struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Detail     string `json:"detail"`
	AssignedTo string `json:"assignedTo"`
	Column     Column `json:"column"`
	Status     Status `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TaskPatch carries the fields an editor may change directly.
// Column and status change only through a move.
type TaskPatch struct {
	Title      *string
	Detail     *string
	AssignedTo *string
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Detail == nil && p.AssignedTo == nil
}
