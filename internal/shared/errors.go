package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Store errors
	ErrStoreConnection = fmt.Errorf("store connection failed")
	ErrNotFound        = fmt.Errorf("not found")

	// Provider errors
	ErrUpstream = fmt.Errorf("upstream request failed")

	// Selection errors
	ErrNoMatch = fmt.Errorf("no video matches the given filters")

	// Input validation errors
	ErrValidation      = fmt.Errorf("validation failed")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
