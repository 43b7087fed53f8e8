package reviews

import (
	"errors"
	"net/http"
)

// Validation and inference errors reject a submission.
var (
	ErrEmptyInput            = errors.New("empty input")
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	ErrUnexpectedLabel       = errors.New("unexpected classifier label")
	ErrInvalidScore          = errors.New("classifier score outside [0, 1]")
)

// Persistence errors never reject a submission. Their messages are reported
// verbatim as an outcome's persist_error.
var (
	ErrStoreUnavailable = errors.New("persistence unavailable")
	ErrRelationMissing  = errors.New("object does not exist")
	ErrSequenceMissing  = errors.New("sequence does not exist")
	ErrStoreFailed      = errors.New("other database error")
)

// Lookup errors.
var (
	ErrNotFound  = errors.New("review log not found")
	ErrDuplicate = errors.New("review log already exists")
)

// MapHTTPStatus maps review domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrEmptyInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrClassifierUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrUnexpectedLabel), errors.Is(err, ErrInvalidScore):
		return http.StatusBadGateway
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
