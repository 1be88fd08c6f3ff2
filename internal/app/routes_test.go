package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kanban/internal/config"
	dom "kanban/internal/domain"
	"kanban/internal/dto"
	"kanban/internal/repo"
	"kanban/internal/service"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := repo.NewMemoryTaskRepo(
		dom.Task{ID: "t1", Title: "Draft proposal", AssignedTo: "Ana", Column: dom.ColumnTodo, Status: dom.StatusPending},
		dom.Task{ID: "t2", Title: "Review budget", Detail: "Q3 numbers", AssignedTo: "Bo", Column: dom.ColumnDoing, Status: dom.StatusCommitted},
		dom.Task{ID: "t3", Title: "Send invoice", AssignedTo: "ana", Column: dom.ColumnDone, Status: dom.StatusDone},
	)
	cfg := config.Config{App: config.AppConfig{Env: "test", Version: "v0"}, Store: config.StoreConfig{Driver: config.DriverMemory}}
	return NewRouter(cfg, service.NewTaskService(r, nil))
}

func request(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body != "" {
		rd = strings.NewReader(body)
	} else {
		rd = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode: %v (%s)", err, w.Body.String())
	}
	return v
}

func TestHealthAndRoot(t *testing.T) {
	r := newTestRouter(t)
	if w := request(t, r, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Fatalf("health = %d", w.Code)
	}
	w := request(t, r, http.MethodGet, "/version", "")
	if got := decode[map[string]string](t, w)["version"]; got != "v0" {
		t.Fatalf("version = %q", got)
	}
	if w := request(t, r, http.MethodGet, "/swagger-doc.json", ""); w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("/tasks/{id}/move")) {
		t.Fatalf("swagger doc = %d", w.Code)
	}
}

func TestTasks_ListAndFilterByColumn(t *testing.T) {
	r := newTestRouter(t)
	all := decode[dto.ListTasksResponse](t, request(t, r, http.MethodGet, "/api/v1/tasks", ""))
	if len(all.Items) != 3 {
		t.Fatalf("len = %d", len(all.Items))
	}
	doing := decode[dto.ListTasksResponse](t, request(t, r, http.MethodGet, "/api/v1/tasks?column=doing", ""))
	if len(doing.Items) != 1 || doing.Items[0].ID != "t2" {
		t.Fatalf("doing = %+v", doing.Items)
	}
	if w := request(t, r, http.MethodGet, "/api/v1/tasks?column=someday", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad column = %d", w.Code)
	}
}

func TestTasks_CreateValidation(t *testing.T) {
	r := newTestRouter(t)
	tests := []struct {
		name string
		body string
		code int
	}{
		{"ok", `{"title":"Book venue","column":"todo"}`, http.StatusCreated},
		{"missing title", `{"column":"todo"}`, http.StatusBadRequest},
		{"missing column", `{"title":"x"}`, http.StatusBadRequest},
		{"bad column", `{"title":"x","column":"later"}`, http.StatusBadRequest},
		{"bad status", `{"title":"x","column":"todo","status":"blocked"}`, http.StatusBadRequest},
		{"unknown field", `{"title":"x","column":"todo","priority":1}`, http.StatusBadRequest},
		{"title too long", `{"title":"` + strings.Repeat("a", 101) + `","column":"todo"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(t, r, http.MethodPost, "/api/v1/tasks", tt.body)
			if w.Code != tt.code {
				t.Fatalf("code = %d, want %d (%s)", w.Code, tt.code, w.Body.String())
			}
		})
	}
}

func TestTasks_CreateDefaultsStatusToBaseline(t *testing.T) {
	r := newTestRouter(t)
	w := request(t, r, http.MethodPost, "/api/v1/tasks", `{"title":"Pay vendor","assignedTo":"Cy","column":"done"}`)
	got := decode[dto.TaskResponse](t, w)
	if got.Status != "done" || got.ID == "" {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestTasks_Move(t *testing.T) {
	tests := []struct {
		id, column, wantStatus string
	}{
		{"t1", "doing", "committed"},
		{"t1", "done", "done"},
		{"t3", "doing", "reassigned"},
		{"t2", "todo", "reassigned"},
		{"t2", "doing", "committed"},
	}
	for _, tt := range tests {
		t.Run(tt.id+"->"+tt.column, func(t *testing.T) {
			r := newTestRouter(t)
			w := request(t, r, http.MethodPost, "/api/v1/tasks/"+tt.id+"/move", `{"column":"`+tt.column+`"}`)
			if w.Code != http.StatusOK {
				t.Fatalf("code = %d (%s)", w.Code, w.Body.String())
			}
			got := decode[dto.TaskResponse](t, w)
			if got.Column != tt.column || got.Status != tt.wantStatus {
				t.Fatalf("got (%s, %s), want (%s, %s)", got.Column, got.Status, tt.column, tt.wantStatus)
			}
		})
	}
}

func TestTasks_MoveErrors(t *testing.T) {
	r := newTestRouter(t)
	if w := request(t, r, http.MethodPost, "/api/v1/tasks/nope/move", `{"column":"done"}`); w.Code != http.StatusNotFound {
		t.Fatalf("missing task = %d", w.Code)
	}
	if w := request(t, r, http.MethodPost, "/api/v1/tasks/t1/move", `{"column":"done","status":"pending"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("status in move body = %d", w.Code)
	}
}

func TestTasks_UpdateRejectsStatus(t *testing.T) {
	r := newTestRouter(t)
	w := request(t, r, http.MethodPatch, "/api/v1/tasks/t1", `{"status":"done"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", w.Code)
	}
	w = request(t, r, http.MethodPatch, "/api/v1/tasks/t1", `{"title":"Draft proposal v2","column":"doing"}`)
	got := decode[dto.TaskResponse](t, w)
	if got.Title != "Draft proposal v2" || got.Status != "committed" {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestTasks_AssignDuplicateDelete(t *testing.T) {
	r := newTestRouter(t)

	w := request(t, r, http.MethodPost, "/api/v1/tasks/t2/assign", `{"assignedTo":"Dee"}`)
	if got := decode[dto.TaskResponse](t, w); got.AssignedTo != "Dee" {
		t.Fatalf("assign: %+v", got)
	}
	if w := request(t, r, http.MethodPost, "/api/v1/tasks/t2/assign", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("assign without body field = %d", w.Code)
	}

	w = request(t, r, http.MethodPost, "/api/v1/tasks/t2/duplicate", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("duplicate = %d", w.Code)
	}
	cp := decode[dto.TaskResponse](t, w)
	if cp.Title != "Review budget (Copy)" || cp.Column != "doing" || cp.AssignedTo != "Dee" {
		t.Fatalf("copy: %+v", cp)
	}

	w = request(t, r, http.MethodDelete, "/api/v1/tasks/"+cp.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete = %d", w.Code)
	}
	if w := request(t, r, http.MethodGet, "/api/v1/tasks/"+cp.ID, ""); w.Code != http.StatusNotFound {
		t.Fatalf("get deleted = %d", w.Code)
	}
}

func TestTasks_BulkUpdate(t *testing.T) {
	r := newTestRouter(t)
	w := request(t, r, http.MethodPatch, "/api/v1/tasks/bulk", `{"updates":[{"id":"t3","column":"todo"},{"id":"t1","detail":"with slides"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d (%s)", w.Code, w.Body.String())
	}
	got := decode[dto.ListTasksResponse](t, w)
	if len(got.Items) != 2 || got.Items[0].Status != "reassigned" || got.Items[1].Detail != "with slides" {
		t.Fatalf("unexpected: %+v", got.Items)
	}
	if w := request(t, r, http.MethodPatch, "/api/v1/tasks/bulk", `{"updates":[]}`); w.Code != http.StatusBadRequest {
		t.Fatalf("empty updates = %d", w.Code)
	}
	if w := request(t, r, http.MethodPatch, "/api/v1/tasks/bulk", `{"updates":[{"id":"t1","status":"done"}]}`); w.Code != http.StatusBadRequest {
		t.Fatalf("status in bulk = %d", w.Code)
	}
}

func TestSearchAndBoardAgree(t *testing.T) {
	r := newTestRouter(t)
	for _, q := range []string{"", "ana", "%20ANA%20", "committed", "zzz"} {
		s := decode[dto.SearchTasksResponse](t, request(t, r, http.MethodGet, "/api/v1/tasks/search?q="+q, ""))
		b := decode[dto.BoardResponse](t, request(t, r, http.MethodGet, "/api/v1/board?q="+q, ""))
		if len(b.Columns) != 3 {
			t.Fatalf("board has %d columns", len(b.Columns))
		}
		sum := 0
		for _, c := range b.Columns {
			sum += c.Count
		}
		if s.Count != len(s.Items) || s.Count != b.Matched || sum != b.Matched {
			t.Errorf("q=%q: search %d, board matched %d, columns %d", q, s.Count, b.Matched, sum)
		}
	}
	s := decode[dto.SearchTasksResponse](t, request(t, r, http.MethodGet, "/api/v1/tasks/search?q=ana", ""))
	if s.Count != 2 {
		t.Fatalf("ana matched %d, want 2", s.Count)
	}
}

func TestStats(t *testing.T) {
	r := newTestRouter(t)
	s := decode[dto.StatsResponse](t, request(t, r, http.MethodGet, "/api/v1/tasks/stats", ""))
	if s.Total != 3 || s.Todo != 1 || s.Doing != 1 || s.Done != 1 || s.ByStatus["pending"] != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestGraphQLMounted(t *testing.T) {
	r := newTestRouter(t)
	w := request(t, r, http.MethodPost, "/graphql", `{"query":"{ tasks { id } }"}`)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"t2"`)) {
		t.Fatalf("graphql = %d %s", w.Code, w.Body.String())
	}
}

func TestSearchAndBoardEchoNormalizedQuery(t *testing.T) {
	r := newTestRouter(t)
	s := decode[dto.SearchTasksResponse](t, request(t, r, http.MethodGet, "/api/v1/tasks/search?q=%20ANA%20", ""))
	b := decode[dto.BoardResponse](t, request(t, r, http.MethodGet, "/api/v1/board?q=%20ANA%20", ""))
	if s.Query != "ana" || b.Query != "ana" {
		t.Fatalf("search query = %q, board query = %q, want both %q", s.Query, b.Query, "ana")
	}
}

func TestTasks_BulkUpdatePartialFailureListsApplied(t *testing.T) {
	r := newTestRouter(t)
	w := request(t, r, http.MethodPatch, "/api/v1/tasks/bulk",
		`{"updates":[{"id":"t1","detail":"with slides"},{"id":"nope","title":"x"},{"id":"t2","column":"done"}]}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404 (%s)", w.Code, w.Body.String())
	}
	got := decode[dto.BulkUpdateErrorResponse](t, w)
	if len(got.Applied) != 1 || got.Applied[0].ID != "t1" || got.Applied[0].Detail != "with slides" {
		t.Fatalf("applied = %+v", got.Applied)
	}
	if !strings.Contains(got.Error, "update 1 (nope)") {
		t.Fatalf("error = %q", got.Error)
	}

	t2 := decode[dto.TaskResponse](t, request(t, r, http.MethodGet, "/api/v1/tasks/t2", ""))
	if t2.Column != "doing" {
		t.Fatalf("update after the failure must not run, t2 column = %s", t2.Column)
	}
}
