// Package domain defines domain-level errors for the listings feature.
package domain

import "errors"

// Domain errors for listing operations.
// Messages are user-facing and returned verbatim in the response body.
var (
	// ErrListingNotFound indicates that no listing exists with the given id.
	ErrListingNotFound = errors.New("Listing not found")

	// ErrEditForbidden is returned when a non-owner tries to modify a listing.
	ErrEditForbidden = errors.New("You are not authorized to edit this listing")

	// ErrDeleteForbidden is returned when a non-owner tries to delete a listing.
	ErrDeleteForbidden = errors.New("You are not authorized to delete this listing")
)

// ValidationError reports a request that is well-formed JSON but breaks a listing rule,
// such as missing category details.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}
