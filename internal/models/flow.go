package models

import "strings"

// OTPLength is the number of cells in the verification code form
const OTPLength = 6

// Step is one stage of the authentication flow
type Step string

const (
	StepPhone   Step = "phone"
	StepOtp     Step = "otp"
	StepProfile Step = "profile"
	StepWelcome Step = "welcome"
)

// BusyState tells which remote call, if any, is in flight
type BusyState string

const (
	BusyIdle      BusyState = "idle"
	BusySending   BusyState = "sending"
	BusyVerifying BusyState = "verifying"
	BusyResending BusyState = "resending"
)

// Field names used as keys in FlowState.FieldErrors
type Field string

const (
	FieldPhone Field = "phone"
	FieldOTP   Field = "otp"
	FieldName  Field = "name"
)

// FlowState is the in-memory state of an open authentication surface.
type FlowState struct {
	Step                   Step              `json:"step"`
	PhoneInput             string            `json:"phone_input"`
	CountryCodeInput       string            `json:"country_code_input"`
	OTPDigits              [OTPLength]string `json:"otp_digits"`
	NameInput              string            `json:"name_input"`
	FieldErrors            map[Field]string  `json:"field_errors"`
	Busy                   BusyState         `json:"busy"`
	ResendSecondsRemaining int               `json:"resend_seconds_remaining"`
}

// NewFlowState returns a state with every field at its default.
func NewFlowState(defaultCountryCode string) FlowState {
	return FlowState{
		Step:             StepPhone,
		CountryCodeInput: defaultCountryCode,
		FieldErrors:      map[Field]string{},
		Busy:             BusyIdle,
	}
}

// Clone returns a deep copy safe to hand to views.
func (s FlowState) Clone() FlowState {
	out := s
	out.FieldErrors = make(map[Field]string, len(s.FieldErrors))
	for k, v := range s.FieldErrors {
		out.FieldErrors[k] = v
	}
	return out
}

// OTPCode joins the digit cells.
func (s FlowState) OTPCode() string {
	return strings.Join(s.OTPDigits[:], "")
}

// FieldError returns the message for field or nil when there is none.
func (s FlowState) FieldError(f Field) *string {
	msg, ok := s.FieldErrors[f]
	if !ok || msg == "" {
		return nil
	}
	return &msg
}
