package datastore

import (
	"errors"

	"github.com/peek-app/peek-sync/internal/errs"
)

func errsIsNotFound(err error) bool {
	return errors.Is(err, errs.ErrNotFound)
}

func errsIsConflict(err error) bool {
	return errors.Is(err, errs.ErrConflict)
}
