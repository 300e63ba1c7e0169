package models

import "errors"

// Validation errors
var (
	ErrInvalidPhone           = errors.New("invalid phone number")
	ErrUnsupportedCountryCode = errors.New("unsupported country code")
	ErrIncompleteOTP          = errors.New("verification code must have 6 digits")
	ErrEmptyName              = errors.New("name is required")
	ErrNameTooShort           = errors.New("name too short (min 2 characters)")
	ErrNameTooLong            = errors.New("name too long (max 50 characters)")
	ErrInvalidDigit           = errors.New("verification code cell accepts a single digit")
	ErrDigitOutOfRange        = errors.New("verification code cell index out of range")
)

// Flow errors
var (
	ErrFlowBusy         = errors.New("another request is in progress")
	ErrWrongStep        = errors.New("action not available on current step")
	ErrNoPendingSession = errors.New("no pending verification session")
	ErrResendNotReady   = errors.New("resend window has not elapsed")
	ErrFlowClosed       = errors.New("authentication flow is closed")
	ErrStaleResponse    = errors.New("response arrived after the flow moved on")
	ErrIdentityNotFound = errors.New("no authenticated identity")
	ErrSessionNotFound  = errors.New("verification session not found")
)

// ValidationError is a local, pre-network failure tied to a form field.
type ValidationError struct {
	Field Field
	Err   error
}

func (e *ValidationError) Error() string {
	return string(e.Field) + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
