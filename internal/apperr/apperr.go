// Package apperr holds the error taxonomy shared by the person directory core.
//
// Services wrap these sentinels (fmt.Errorf("...: %w", ErrNotFound)) and the
// HTTP layer classifies them with errors.Is:
//   - ErrInvalidID: malformed identifier, 400
//   - ErrValidation: missing field or self reference, 400
//   - ErrNotFound: no record for the id, 404
//   - ErrStorage: picture upload/delete failure, 400 on create/update
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidID  = errors.New("invalid id format")
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage failure")

	// ErrSelfReference is a validation error: a person cannot befriend itself.
	ErrSelfReference = fmt.Errorf("%w: cannot add yourself as a friend", ErrValidation)
)
