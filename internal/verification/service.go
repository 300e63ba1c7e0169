// Package verification talks to the remote phone verification service that
// issues and checks one-time codes.
package verification

import (
	"context"
	"errors"
	"fmt"
)

// Operation names, used for errors, metrics and spans
const (
	OpSendCode        = "send_code"
	OpVerifyCode      = "verify_code"
	OpResendCode      = "resend_code"
	OpCompleteProfile = "complete_profile"
)

// Service is the remote verification capability the login flow depends on.
type Service interface {
	SendCode(ctx context.Context, req CodeRequest) (*CodeResult, error)
	VerifyCode(ctx context.Context, req VerifyRequest) (*VerifyResult, error)
	ResendCode(ctx context.Context, req CodeRequest) (*CodeResult, error)
	CompleteProfile(ctx context.Context, accessToken, name string) error
}

// CodeRequest asks the service to issue a code to a phone number.
type CodeRequest struct {
	CountryCode string `json:"countryCode"`
	PhoneNumber string `json:"phoneNumber"`
}

// CodeResult is returned by send-code and resend-code.
type CodeResult struct {
	ServerPhoneKey string  `json:"phoneNumber"`
	DeliveryMethod string  `json:"deliveryMethod"`
	IssuedCode     *string `json:"code,omitempty"`
}

// VerifyRequest checks a code against the key returned by send-code.
type VerifyRequest struct {
	ServerPhoneKey string `json:"phoneNumber"`
	Code           string `json:"code"`
}

// User is the account summary returned on successful verification.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Phone      string `json:"phone"`
	IsVerified bool   `json:"isVerified"`
}

// VerifyResult carries the credentials issued after verification.
type VerifyResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	TokenType    string `json:"tokenType,omitempty"`
	User         User   `json:"user"`
}

// RemoteError is a network or server-reported failure of a remote call.
// Message holds the server's own text when it sent one.
type RemoteError struct {
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Message != "" && e.StatusCode != 0:
		return fmt.Sprintf("%s failed with status %d: %s", e.Operation, e.StatusCode, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
	default:
		return fmt.Sprintf("%s failed with status %d", e.Operation, e.StatusCode)
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }

// UserMessage returns the server-provided message carried by err, or fallback
// when there is none.
func UserMessage(err error, fallback string) string {
	var re *RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return fallback
}
