package gate

import (
	"errors"
	"fmt"
)

const (
	errorMessageValidation        = "gate: validation failed"
	errorMessageAuthMismatch      = "gate: invalid username or password"
	errorMessageOwnerStepMissing  = "gate: owner credentials not verified"
	errorMessageUnknownTier       = "gate: unknown tier"
	validationErrorMessagePattern = "%s: %s is required"
)

var (
	// ErrValidation indicates a required form field was empty or malformed.
	ErrValidation = errors.New(errorMessageValidation)
	// ErrAuthMismatch indicates a credential comparison failed. It never says which field differed.
	ErrAuthMismatch = errors.New(errorMessageAuthMismatch)
	// ErrOwnerStepMissing indicates a security code was submitted before the owner credentials were accepted.
	ErrOwnerStepMissing = errors.New(errorMessageOwnerStepMissing)
	// ErrUnknownTier indicates a tier value outside visitor, admin and owner.
	ErrUnknownTier = errors.New(errorMessageUnknownTier)
)

// ValidationError names the field that failed validation.
type ValidationError struct {
	Field string
}

func (validationError ValidationError) Error() string {
	return fmt.Sprintf(validationErrorMessagePattern, errorMessageValidation, validationError.Field)
}

func (validationError ValidationError) Unwrap() error {
	return ErrValidation
}
