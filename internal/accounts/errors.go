package accounts

import "errors"

var (
	// ErrAccountNotFound is returned when no account record exists for a user
	ErrAccountNotFound = errors.New("account not found")
)
