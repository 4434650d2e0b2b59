// Package domain defines domain-level errors for the users feature.
package domain

import "errors"

// ErrUserNotFound indicates that no account exists with the given id.
var ErrUserNotFound = errors.New("User not found")
