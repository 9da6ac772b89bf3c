package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionCorrupt  = errors.New("session data unreadable")

	// Account errors
	ErrAccountExists = errors.New("username or email already in use")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)
