package content

import "errors"

var (
	ErrNotFound       = errors.New("content not found")
	ErrNotPublishable = errors.New("content cannot be published in its current state")
	ErrNoFiles        = errors.New("content has no files")
	ErrNegativePrice  = errors.New("price must not be negative")
)

// ValidationError names the required field that blocked a publish attempt.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "missing required field: " + e.Field
}

// IsValidation reports whether err is a publish validation failure.
func IsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
