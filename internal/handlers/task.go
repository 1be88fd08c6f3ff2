package handlers

import (
	"errors"
	"net/http"

	"kanban/internal/board"
	dom "kanban/internal/domain"
	"kanban/internal/dto"
	"kanban/internal/service"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// Create godoc
// @Summary      Create a task
// @Description  Column and status are taken as given. An empty status defaults to the column's baseline.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTaskRequest  true  "Task body"
// @Success      201   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.svc.Create(c.Request.Context(), service.CreateInput{
		Title:      req.Title,
		Detail:     req.Detail,
		AssignedTo: req.AssignedTo,
		Column:     dom.Column(req.Column),
		Status:     dom.Status(req.Status),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.TaskToResponse(t))
}

// List godoc
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Param        column  query     string  false  "Only tasks in this column"  Enums(todo, doing, done)
// @Success      200     {object}  dto.ListTasksResponse
// @Failure      400     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	var (
		list []dom.Task
		err  error
	)
	if col, ok := c.GetQuery("column"); ok {
		list, err = h.svc.ListByColumn(c.Request.Context(), dom.Column(col))
	} else {
		list, err = h.svc.List(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{Items: dto.TasksToResponses(list)})
}

// GetByID godoc
// @Summary      Get a task by ID
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TaskToResponse(t))
}

// Update godoc
// @Summary      Update a task
// @Description  Partial edit. A column change is applied as a move, so the status is recomputed.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Task ID"
// @Param        body  body      dto.UpdateTaskRequest  true  "Partial update"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.Update(c.Request.Context(), updateInput(c.Param("id"), req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TaskToResponse(t))
}

// Move godoc
// @Summary      Move a task to a column
// @Description  Dropping on the current column is a no-op. Backward moves yield status reassigned.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Task ID"
// @Param        body  body      dto.MoveTaskRequest  true  "Destination column"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /tasks/{id}/move [post]
func (h *TaskHandler) Move(c *gin.Context) {
	var req dto.MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.Move(c.Request.Context(), c.Param("id"), dom.Column(req.Column))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TaskToResponse(t))
}

// Assign godoc
// @Summary      Change a task's assignee
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Task ID"
// @Param        body  body      dto.AssignTaskRequest  true  "Assignee"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /tasks/{id}/assign [post]
func (h *TaskHandler) Assign(c *gin.Context) {
	var req dto.AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.Reassign(c.Request.Context(), c.Param("id"), *req.AssignedTo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TaskToResponse(t))
}

// Duplicate godoc
// @Summary      Duplicate a task
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      201  {object}  dto.TaskResponse
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /tasks/{id}/duplicate [post]
func (h *TaskHandler) Duplicate(c *gin.Context) {
	t, err := h.svc.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.TaskToResponse(t))
}

// Delete godoc
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	t, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TaskToResponse(t))
}

// BulkUpdate godoc
// @Summary      Apply several partial updates in order
// @Description  Stops at the first failing update. Earlier updates stay applied and are listed in the error body.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      dto.BulkUpdateRequest  true  "Updates"
// @Success      200   {object}  dto.ListTasksResponse
// @Failure      400   {object}  dto.BulkUpdateErrorResponse
// @Failure      404   {object}  dto.BulkUpdateErrorResponse
// @Failure      500   {object}  dto.BulkUpdateErrorResponse
// @Router       /tasks/bulk [patch]
func (h *TaskHandler) BulkUpdate(c *gin.Context) {
	var req dto.BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updates := make([]service.UpdateInput, len(req.Updates))
	for i, u := range req.Updates {
		updates[i] = updateInput(u.ID, u.UpdateTaskRequest)
	}
	list, err := h.svc.BulkUpdate(c.Request.Context(), updates)
	if err != nil {
		c.JSON(errorStatus(err), dto.BulkUpdateErrorResponse{
			Error:   err.Error(),
			Applied: dto.TasksToResponses(list),
		})
		return
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{Items: dto.TasksToResponses(list)})
}

// Search godoc
// @Summary      Search tasks
// @Description  Case-insensitive substring match on title, detail, assignee, status and id.
// @Tags         tasks
// @Produce      json
// @Param        q    query     string  false  "Search query"
// @Success      200  {object}  dto.SearchTasksResponse
// @Failure      500  {object}  map[string]string
// @Router       /tasks/search [get]
func (h *TaskHandler) Search(c *gin.Context) {
	q := c.Query("q")
	list, err := h.svc.Search(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SearchTasksResponse{Query: board.NormalizeQuery(q), Count: len(list), Items: dto.TasksToResponses(list)})
}

// Board godoc
// @Summary      Board view
// @Description  Tasks matching q grouped by column; matched equals the sum of the column counts.
// @Tags         board
// @Produce      json
// @Param        q    query     string  false  "Search query"
// @Success      200  {object}  dto.BoardResponse
// @Failure      500  {object}  map[string]string
// @Router       /board [get]
func (h *TaskHandler) Board(c *gin.Context) {
	v, err := h.svc.Board(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BoardToResponse(v))
}

// Stats godoc
// @Summary      Task counts per column and status
// @Tags         tasks
// @Produce      json
// @Success      200  {object}  dto.StatsResponse
// @Failure      500  {object}  map[string]string
// @Router       /tasks/stats [get]
func (h *TaskHandler) Stats(c *gin.Context) {
	s, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatsToResponse(s))
}

func updateInput(id string, req dto.UpdateTaskRequest) service.UpdateInput {
	in := service.UpdateInput{
		ID:         id,
		Title:      req.Title,
		Detail:     req.Detail,
		AssignedTo: req.AssignedTo,
	}
	if req.Column != nil {
		col := dom.Column(*req.Column)
		in.Column = &col
	}
	return in
}

func respondError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(errorStatus(err), gin.H{"error": err.Error()})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
