package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taskapi/internal/apperr"
	"taskapi/internal/model"
)

const messageOK = "OK"

// Response is the envelope of every JSON response
type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// CountResponse is the payload of a listing called with count=true
type CountResponse struct {
	Count int64 `json:"count"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Message: messageOK, Data: data})
}

// fail writes err as an error envelope. Store failures are logged with their
// cause; clients only see the safe message.
func fail(c *gin.Context, log zerolog.Logger, err error) {
	appErr := apperr.As(err)
	status := apperr.Status(err)

	prefix := "BAD REQUEST: "
	switch status {
	case http.StatusNotFound:
		prefix = "NOT FOUND: "
	case http.StatusInternalServerError:
		prefix = "SERVER ERROR: "
		requestLogger(c, log).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg(appErr.Message)
	}

	c.JSON(status, Response{Message: prefix + appErr.Message, Data: gin.H{}})
}

// requestLogger returns the request scoped logger set by middleware.Logger,
// falling back to log outside that middleware.
func requestLogger(c *gin.Context, log zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(c.Request.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log
}

// pathID parses the :id path parameter
func pathID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.Validation(apperr.ReasonBadIDFormat, "invalid id")
	}
	return id, nil
}

func malformedBody() error {
	return apperr.Validation(apperr.ReasonMalformedBody, "request body must be a JSON object")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func taskDocument(t *model.Task) map[string]any {
	assignedUser := ""
	if t.IsAssigned() {
		assignedUser = t.AssignedUser.String()
	}
	return map[string]any{
		"id":               t.ID.String(),
		"name":             t.Name,
		"description":      t.Description,
		"deadline":         formatTime(t.Deadline),
		"completed":        t.Completed,
		"assignedUser":     assignedUser,
		"assignedUserName": t.AssignedUserName,
		"dateCreated":      formatTime(t.DateCreated),
	}
}

func userDocument(u *model.User) map[string]any {
	pending := make([]string, 0, len(u.PendingTasks))
	for _, id := range u.PendingTasks {
		pending = append(pending, id.String())
	}
	return map[string]any{
		"id":           u.ID.String(),
		"name":         u.Name,
		"email":        u.Email,
		"pendingTasks": pending,
		"dateCreated":  formatTime(u.DateCreated),
	}
}
