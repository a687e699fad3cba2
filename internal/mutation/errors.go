package mutation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid marks a request rejected for malformed input, locally or by
	// the backend.
	ErrInvalid = errors.New("invalid request")
	// ErrNotFound marks a delete whose target does not exist.
	ErrNotFound = errors.New("poi not found")
	// ErrConflict marks a delete blocked by records that reference the POI.
	ErrConflict = errors.New("poi is referenced by other records")
)

// ValidationError describes a rejected field. It matches ErrInvalid.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Describe returns a short user facing text for a mutation error.
func Describe(err error) string {
	var ve *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, ErrConflict):
		return "cannot delete: the point is referenced by other records"
	case errors.Is(err, ErrNotFound):
		return "point not found (already deleted?)"
	case errors.Is(err, ErrInvalid):
		return "rejected by the server: " + err.Error()
	}
	return err.Error()
}
