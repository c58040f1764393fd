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

// UserService is what the user endpoints need from the service layer
type UserService interface {
	Create(ctx context.Context, p validation.UserPayload) (*model.User, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context, q *query.Query) ([]model.User, error)
	Count(ctx context.Context, where []query.Condition) (int64, error)
	Replace(ctx context.Context, id uuid.UUID, p validation.UserPayload) (*model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserHandler struct {
	users        UserService
	defaultLimit int
	log          zerolog.Logger
}

func NewUserHandler(users UserService, defaultLimit int, log zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, defaultLimit: defaultLimit, log: log}
}

// Create godoc
// @Summary      Create a user
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        user  body      validation.UserPayload  true  "User"
// @Success      201   {object}  Response
// @Failure      400   {object}  Response
// @Failure      404   {object}  Response
// @Failure      500   {object}  Response
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req validation.UserPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, h.log, malformedBody())
		return
	}

	user, err := h.users.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	respond(c, http.StatusCreated, userDocument(user))
}

// GetAll godoc
// @Summary      List users
// @Tags         Users
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
// @Router       /users [get]
func (h *UserHandler) GetAll(c *gin.Context) {
	q, err := query.Parse(c.Request.URL.Query(), query.Users, h.defaultLimit)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	if q.Count {
		n, err := h.users.Count(c.Request.Context(), q.Where)
		if err != nil {
			fail(c, h.log, err)
			return
		}
		respond(c, http.StatusOK, CountResponse{Count: n})
		return
	}

	users, err := h.users.List(c.Request.Context(), q)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	docs := make([]map[string]any, 0, len(users))
	for i := range users {
		docs = append(docs, q.Projection.Apply(userDocument(&users[i])))
	}
	respond(c, http.StatusOK, docs)
}

// GetByID godoc
// @Summary      Get a user
// @Tags         Users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  Response
// @Failure      400  {object}  Response
// @Failure      404  {object}  Response
// @Router       /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, userDocument(user))
}

// Replace godoc
// @Summary      Replace a user
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "User ID"
// @Param        user  body      validation.UserPayload  true  "User"
// @Success      200   {object}  Response
// @Failure      400   {object}  Response
// @Failure      404   {object}  Response
// @Failure      500   {object}  Response
// @Router       /users/{id} [put]
func (h *UserHandler) Replace(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	var req validation.UserPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, h.log, malformedBody())
		return
	}

	user, err := h.users.Replace(c.Request.Context(), id, req)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, userDocument(user))
}

// Delete godoc
// @Summary      Delete a user
// @Description  Tasks assigned to the user become unassigned.
// @Tags         Users
// @Param        id   path  string  true  "User ID"
// @Success      204
// @Failure      400  {object}  Response
// @Failure      404  {object}  Response
// @Failure      500  {object}  Response
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		fail(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}
