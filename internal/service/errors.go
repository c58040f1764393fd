package service

import (
	"errors"

	"taskapi/internal/apperr"
	"taskapi/internal/repository"
)

// storeError maps repository failures onto the application taxonomy.
func storeError(message string, err error) error {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrTaskNotFound):
		return apperr.NotFound(apperr.ReasonNotFound, "task not found")
	case errors.Is(err, repository.ErrUserNotFound):
		return apperr.NotFound(apperr.ReasonNotFound, "user not found")
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperr.Conflict(apperr.ReasonDuplicateEmail, "email must be unique")
	}
	return apperr.Store(message, err)
}
