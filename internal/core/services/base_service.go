package services

import (
	"errors"

	"github.com/KsiegaPro/ledger_backend_app/internal/apperrors"
)

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
