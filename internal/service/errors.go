// Package service provides business logic services for Planwerk.
package service

import "errors"

// Service-level validation errors. Business rule violations reuse the
// sentinels from the domain package.
var (
	ErrMissingFields    = errors.New("all fields are required")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrMissingSetting   = errors.New("setting key is required")
	ErrInternalError    = errors.New("internal server error")
)
