package services

import (
	"errors"

	"github.com/anonto42/campus-connect/backend/internal/repositories"
	"github.com/anonto42/campus-connect/backend/pkg/apperrors"
)

// lookupErr classifies a repository error from a by-id lookup.
func lookupErr(err error, notFound string, op string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.NotFound(notFound)
	case errors.Is(err, repositories.ErrInvalidID):
		return apperrors.InvalidInput("Invalid ID")
	default:
		return apperrors.Storage(err, op)
	}
}
