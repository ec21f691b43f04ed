package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrForbidden        = fmt.Errorf("forbidden")

	// API and transport errors
	ErrNetwork            = fmt.Errorf("network failure")
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNotFound           = fmt.Errorf("not found")
	ErrConflict           = fmt.Errorf("conflict")

	// Input validation errors
	ErrInvalidInput     = fmt.Errorf("invalid input")
	ErrMissingArgument  = fmt.Errorf("missing required argument")
	ErrInvalidArgument  = fmt.Errorf("invalid argument")
	ErrInvalidEmail     = fmt.Errorf("invalid email")
	ErrPasswordMismatch = fmt.Errorf("passwords do not match")
	ErrPasswordTooShort = fmt.Errorf("password too short")
	ErrDuplicateTag     = fmt.Errorf("tag already exists")

	// View state errors
	ErrBusy          = fmt.Errorf("operation already in progress")
	ErrStaleResponse = fmt.Errorf("stale response discarded")
	ErrCancelled     = fmt.Errorf("cancelled by user")
)
