// Package apperr defines the error taxonomy shared by all domain services.
package apperr

import "errors"

var (
	// ErrNotFound means an entity id or number did not resolve.
	ErrNotFound = errors.New("not_found")
	// ErrInvalidTransition means a state machine rejected the requested move.
	ErrInvalidTransition = errors.New("invalid_transition")
	// ErrBusinessRule means a domain rule was breached (over-payment,
	// double receipt source, editing a non-draft quotation, ...).
	ErrBusinessRule = errors.New("business_rule_violation")
	// ErrValidation means the input shape or range is malformed.
	ErrValidation = errors.New("validation_error")
)
