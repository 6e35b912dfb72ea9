package domain

import "errors"

// Handlers map these with errors.Is:
//   - ErrValidation, ErrInvalidSlug, ErrInvalidTarget → 400
//   - ErrNotFound → 404
//   - ErrAlreadyExists → 409
//   - ErrUnauthorized → 401
var (
	ErrValidation    = errors.New("validation failed")
	ErrInvalidSlug   = errors.New("slug must match [a-z0-9-_]+")
	ErrInvalidTarget = errors.New("target must start with http(s)://")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnauthorized  = errors.New("unauthorized")
)

// IsValidation reports whether err should be surfaced as a 400.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidSlug) || errors.Is(err, ErrInvalidTarget)
}
