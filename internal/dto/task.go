package dto

import (
	"time"

	"kanban/internal/board"
	dom "kanban/internal/domain"
)

type CreateTaskRequest struct {
	Title      string `json:"title" binding:"required,min=1,max=100"`
	Detail     string `json:"detail" binding:"max=500"`
	AssignedTo string `json:"assignedTo" binding:"max=50"`
	Column     string `json:"column" binding:"required,oneof=todo doing done"`
	Status     string `json:"status" binding:"omitempty,oneof=pending committed done reassigned"` // empty = column baseline
}

// UpdateTaskRequest is a partial edit. Status is not accepted: it follows the column.
type UpdateTaskRequest struct {
	Title      *string `json:"title" binding:"omitempty,min=1,max=100"`
	Detail     *string `json:"detail" binding:"omitempty,max=500"`
	AssignedTo *string `json:"assignedTo" binding:"omitempty,max=50"`
	Column     *string `json:"column" binding:"omitempty,oneof=todo doing done"`
}

type MoveTaskRequest struct {
	Column string `json:"column" binding:"required,oneof=todo doing done"`
}

type AssignTaskRequest struct {
	AssignedTo *string `json:"assignedTo" binding:"required,max=50"`
}

type BulkTaskUpdate struct {
	ID string `json:"id" binding:"required"`
	UpdateTaskRequest
}

type BulkUpdateRequest struct {
	Updates []BulkTaskUpdate `json:"updates" binding:"required,min=1,dive"`
}

// BulkUpdateErrorResponse reports the failing update together with the
// updates applied before it.
type BulkUpdateErrorResponse struct {
	Error   string         `json:"error"`
	Applied []TaskResponse `json:"applied"`
}

type TaskResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Detail     string    `json:"detail"`
	AssignedTo string    `json:"assignedTo"`
	Column     string    `json:"column"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type ListTasksResponse struct {
	Items []TaskResponse `json:"items"`
}

type SearchTasksResponse struct {
	Query string         `json:"query"`
	Count int            `json:"count"`
	Items []TaskResponse `json:"items"`
}

type BoardColumn struct {
	Column string         `json:"column"`
	Title  string         `json:"title"`
	Count  int            `json:"count"`
	Items  []TaskResponse `json:"items"`
}

type BoardResponse struct {
	Query   string        `json:"query"`
	Matched int           `json:"matched"`
	Columns []BoardColumn `json:"columns"`
}

type StatsResponse struct {
	Total    int            `json:"total"`
	Todo     int            `json:"todo"`
	Doing    int            `json:"doing"`
	Done     int            `json:"done"`
	ByStatus map[string]int `json:"byStatus"`
}

func TaskToResponse(t dom.Task) TaskResponse {
	return TaskResponse{
		ID:         t.ID,
		Title:      t.Title,
		Detail:     t.Detail,
		AssignedTo: t.AssignedTo,
		Column:     string(t.Column),
		Status:     string(t.Status),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func TasksToResponses(list []dom.Task) []TaskResponse {
	out := make([]TaskResponse, len(list))
	for i := range list {
		out[i] = TaskToResponse(list[i])
	}
	return out
}

// ColumnTitle is the lane heading shown on the board.
func ColumnTitle(c dom.Column) string {
	switch c {
	case dom.ColumnTodo:
		return "To Do"
	case dom.ColumnDoing:
		return "Doing"
	case dom.ColumnDone:
		return "Done"
	}
	return string(c)
}

func BoardToResponse(v board.View) BoardResponse {
	resp := BoardResponse{Query: v.Query, Matched: v.Matched}
	for _, c := range dom.Columns() {
		lane := v.Columns[c]
		resp.Columns = append(resp.Columns, BoardColumn{
			Column: string(c),
			Title:  ColumnTitle(c),
			Count:  len(lane),
			Items:  TasksToResponses(lane),
		})
	}
	return resp
}

func StatsToResponse(s board.Stats) StatsResponse {
	by := make(map[string]int, len(s.ByStatus))
	for k, v := range s.ByStatus {
		by[string(k)] = v
	}
	return StatsResponse{Total: s.Total, Todo: s.Todo, Doing: s.Doing, Done: s.Done, ByStatus: by}
}
