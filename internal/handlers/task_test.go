package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dom "kanban/internal/domain"
	"kanban/internal/dto"
	"kanban/internal/repo"
	"kanban/internal/service"

	"github.com/gin-gonic/gin"
)

var errDown = errors.New("store unavailable")

type downRepo struct{ repo.TaskRepo }

func (downRepo) List(context.Context) ([]dom.Task, error)           { return nil, errDown }
func (downRepo) GetByID(context.Context, string) (dom.Task, error)  { return dom.Task{}, errDown }
func (downRepo) Delete(context.Context, string) (dom.Task, error)   { return dom.Task{}, errDown }
func (downRepo) Create(context.Context, dom.Task) (dom.Task, error) { return dom.Task{}, errDown }

func newEngine(r repo.TaskRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	h := NewTaskHandler(service.NewTaskService(r, nil))
	e.GET("/tasks", h.List)
	e.GET("/tasks/:id", h.GetByID)
	e.DELETE("/tasks/:id", h.Delete)
	e.POST("/tasks/:id/move", h.Move)
	e.GET("/board", h.Board)
	return e
}

func serve(e *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("update 2 (x): %w", service.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: bad column", service.ErrValidation), http.StatusBadRequest},
		{errDown, http.StatusInternalServerError},
	}
	gin.SetMode(gin.TestMode)
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondError(c, tt.err)
		if w.Code != tt.code {
			t.Errorf("respondError(%v) = %d, want %d", tt.err, w.Code, tt.code)
		}
	}
}

func TestStoreFailureIs500(t *testing.T) {
	e := newEngine(downRepo{})
	for _, path := range []string{"/tasks", "/tasks/a1", "/board"} {
		if w := serve(e, http.MethodGet, path, ""); w.Code != http.StatusInternalServerError {
			t.Errorf("GET %s = %d, want 500", path, w.Code)
		}
	}
	if w := serve(e, http.MethodDelete, "/tasks/a1", ""); w.Code != http.StatusInternalServerError {
		t.Errorf("DELETE = %d, want 500", w.Code)
	}
}

func TestMoveNoOpKeepsStatus(t *testing.T) {
	r := repo.NewMemoryTaskRepo(dom.Task{ID: "a1", Title: "x", Column: dom.ColumnTodo, Status: dom.StatusReassigned})
	e := newEngine(r)
	w := serve(e, http.MethodPost, "/tasks/a1/move", `{"column":"todo"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"reassigned"`) {
		t.Fatalf("status changed on self-drop: %s", w.Body.String())
	}
}

func TestUpdateInput(t *testing.T) {
	title, col := "New", "done"
	in := updateInput("a1", dto.UpdateTaskRequest{Title: &title, Column: &col})
	if in.ID != "a1" || *in.Title != "New" || in.Detail != nil || in.Column == nil || *in.Column != dom.ColumnDone {
		t.Fatalf("unexpected input: %+v", in)
	}
	if in := updateInput("a1", dto.UpdateTaskRequest{}); in.Column != nil {
		t.Fatal("nil column must stay nil")
	}
}
