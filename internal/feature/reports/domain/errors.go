// Package domain defines domain-level errors for the reports feature.
package domain

import "errors"

// Domain errors for report operations. Messages are returned verbatim in the response body.
var (
	ErrReportNotFound       = errors.New("Report not found")
	ErrReportedUserNotFound = errors.New("Reported user not found")

	ErrSelfReport          = errors.New("You cannot report yourself")
	ErrCounterpartMismatch = errors.New("Reported user must be part of the provided transaction")
	ErrReportClosed        = errors.New("Closed reports cannot be updated")
	ErrEmptyDescription    = errors.New("Description cannot be empty")

	ErrNotParticipant  = errors.New("You are not part of this transaction")
	ErrUpdateForbidden = errors.New("You are not authorized to update this report")
	ErrModeratorOnly   = errors.New("Only moderators can update status or resolution notes")
)
