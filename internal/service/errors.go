package service

import (
	"errors"
	"fmt"

	"claims-service/internal/repository"
)

var (
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrNotFound         = repository.ErrNotFound
)

// ValidationError carries field-keyed messages for a rejected claim or
// project draft. The rejected entity is left untouched.
type ValidationError map[string]string

func (v ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(v))
}

// storeErr folds repository failures into the surface the callers branch
// on: not-found stays distinguishable, everything else is the store being
// unavailable. In-memory state is never changed before this point.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	default:
		return errors.Join(ErrStoreUnavailable, err)
	}
}
