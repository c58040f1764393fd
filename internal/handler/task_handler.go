package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taskapi/internal/model"
	"taskapi/internal/query"
	"taskapi/internal/validation"
)

// TaskService is what the task endpoints need from the service layer
type TaskService interface {
	Create(ctx context.Context, p validation.TaskPayload) (*model.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Task, error)
	List(ctx context.Context, q *query.Query) ([]model.Task, error)
	Count(ctx context.Context, where []query.Condition) (int64, error)
	Replace(ctx context.Context, id uuid.UUID, p validation.TaskPayload) (*model.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type TaskHandler struct {
	tasks        TaskService
	defaultLimit int
	log          zerolog.Logger
}

func NewTaskHandler(tasks TaskService, defaultLimit int, log zerolog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, defaultLimit: defaultLimit, log: log}
}

// Create godoc
// @Summary      Create a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        task  body      validation.TaskPayload  true  "Task"
// @Success      201   {object}  Response
// @Failure      400   {object}  Response
// @Failure      404   {object}  Response
// @Failure      500   {object}  Response
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req validation.TaskPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, h.log, malformedBody())
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	respond(c, http.StatusCreated, taskDocument(task))
}

// GetAll godoc
// @Summary      List tasks
// @Tags         Tasks
// @Produce      json
// @Param        where   query     string  false  "JSON filter"
// @Param        sort    query     string  false  "JSON sort"
// @Param        select  query     string  false  "JSON projection"
// @Param        skip    query     int     false  "Documents to skip"
// @Param        limit   query     int     false  "Maximum documents, 0 for no limit"
// @Param        count   query     bool    false  "Return only the count"
// @Success      200     {object}  Response
// @Failure      400     {object}  Response
// @Failure      500     {object}  Response
// @Router       /tasks [get]
func (h *TaskHandler) GetAll(c *gin.Context) {
	q, err := query.Parse(c.Request.URL.Query(), query.Tasks, h.defaultLimit)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	if q.Count {
		n, err := h.tasks.Count(c.Request.Context(), q.Where)
		if err != nil {
			fail(c, h.log, err)
			return
		}
		respond(c, http.StatusOK, CountResponse{Count: n})
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), q)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	docs := make([]map[string]any, 0, len(tasks))
	for i := range tasks {
		docs = append(docs, q.Projection.Apply(taskDocument(&tasks[i])))
	}
	respond(c, http.StatusOK, docs)
}

// GetByID godoc
// @Summary      Get a task
// @Tags         Tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  Response
// @Failure      400  {object}  Response
// @Failure      404  {object}  Response
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, taskDocument(task))
}

// Replace godoc
// @Summary      Replace a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "Task ID"
// @Param        task  body      validation.TaskPayload  true  "Task"
// @Success      200   {object}  Response
// @Failure      400   {object}  Response
// @Failure      404   {object}  Response
// @Failure      500   {object}  Response
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Replace(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	var req validation.TaskPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, h.log, malformedBody())
		return
	}

	task, err := h.tasks.Replace(c.Request.Context(), id, req)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, taskDocument(task))
}

// Delete godoc
// @Summary      Delete a task
// @Tags         Tasks
// @Param        id   path  string  true  "Task ID"
// @Success      204
// @Failure      400  {object}  Response
// @Failure      404  {object}  Response
// @Failure      500  {object}  Response
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), id); err != nil {
		fail(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}
