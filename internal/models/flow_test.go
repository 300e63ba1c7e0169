package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFlowState(t *testing.T) {
	s := NewFlowState("+966")

	assert.Equal(t, StepPhone, s.Step)
	assert.Equal(t, "+966", s.CountryCodeInput)
	assert.Equal(t, BusyIdle, s.Busy)
	assert.Empty(t, s.PhoneInput)
	assert.Empty(t, s.NameInput)
	assert.Empty(t, s.FieldErrors)
	assert.Equal(t, 0, s.ResendSecondsRemaining)
	assert.Equal(t, [OTPLength]string{}, s.OTPDigits)
}

func TestFlowState_Clone(t *testing.T) {
	s := NewFlowState("+20")
	s.FieldErrors[FieldPhone] = "bad"

	c := s.Clone()
	c.FieldErrors[FieldPhone] = "changed"
	c.OTPDigits[0] = "1"

	assert.Equal(t, "bad", s.FieldErrors[FieldPhone])
	assert.Equal(t, "", s.OTPDigits[0])
}

func TestFlowState_OTPCode(t *testing.T) {
	s := NewFlowState("+20")
	s.OTPDigits = [OTPLength]string{"1", "2", "3", "4", "5", "6"}

	assert.Equal(t, "123456", s.OTPCode())
}

func TestFlowState_FieldError(t *testing.T) {
	s := NewFlowState("+20")
	assert.Nil(t, s.FieldError(FieldOTP))

	s.FieldErrors[FieldOTP] = "wrong code"
	msg := s.FieldError(FieldOTP)
	require.NotNil(t, msg)
	assert.Equal(t, "wrong code", *msg)
}

func TestVerificationSession_HasIssuedCode(t *testing.T) {
	code := "123456"
	empty := ""

	assert.False(t, (*VerificationSession)(nil).HasIssuedCode())
	assert.False(t, (&VerificationSession{}).HasIssuedCode())
	assert.False(t, (&VerificationSession{IssuedCode: &empty}).HasIssuedCode())
	assert.True(t, (&VerificationSession{IssuedCode: &code}).HasIssuedCode())
}

func TestAuthenticatedIdentity_NeedsProfile(t *testing.T) {
	assert.True(t, (*AuthenticatedIdentity)(nil).NeedsProfile())
	assert.True(t, (&AuthenticatedIdentity{}).NeedsProfile())
	assert.False(t, (&AuthenticatedIdentity{Name: "Sara"}).NeedsProfile())
}
