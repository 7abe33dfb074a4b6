// Package service provides application-level services orchestrating tasks,
// user tasks, subtasks and authentication.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent conditions that callers check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped with fmt.Errorf("%w: ...")
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrInvalidCredentials indicates a login attempt with an unknown email
	// or wrong password. The API layer maps this to HTTP 401 and never
	// distinguishes the two cases in the response.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
