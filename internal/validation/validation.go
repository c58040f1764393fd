package validation

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"taskapi/internal/apperr"
	"taskapi/internal/model"
)

var validate = validator.New()

// Resolver looks up referenced documents. Missing documents are reported as
// (nil, nil).
type Resolver interface {
	ResolveUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ResolveTask(ctx context.Context, id uuid.UUID) (*model.Task, error)
	// EmailTaken reports whether a user other than except holds email.
	EmailTaken(ctx context.Context, email string, except uuid.UUID) (bool, error)
}

// text stringifies scalar JSON values. ok is false for null, objects and arrays.
func text(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}

func requiredText(v any) (string, bool) {
	s, ok := text(v)
	s = strings.TrimSpace(s)
	return s, ok && s != ""
}

// coerceBool is true only for boolean true or the string "true".
func coerceBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return strings.EqualFold(strings.TrimSpace(x), "true")
	}
	return false
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apperr.Validation(apperr.ReasonBadIDFormat, "invalid id "+strconv.Quote(s))
	}
	return id, nil
}

func lookupFailed(err error) error {
	return apperr.Store("unable to resolve references", err)
}
