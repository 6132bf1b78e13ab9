package profile

import (
	"errors"
	"fmt"

	"github.com/peek-app/peek-sync/internal/errs"
)

func errsIsNotFound(err error) bool {
	return errors.Is(err, errs.ErrNotFound)
}

func errActiveProfileUndeletable(id string) error {
	return errs.Validation("profile.Delete", fmt.Errorf("profile %s is active and cannot be deleted", id))
}
