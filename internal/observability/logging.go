package observability

import (
	"github.com/prefeitura-rio/app-login/internal/logging"
)

// Logger returns the global safe logger instance
func Logger() *logging.SafeLogger {
	return logging.Logger
}

// MaskPhone keeps the last three digits of a phone number for logging
func MaskPhone(phone string) string {
	if len(phone) < 4 {
		return "***"
	}
	return "***" + phone[len(phone)-3:]
}

// MaskToken keeps a short prefix of a bearer token for logging
func MaskToken(token string) string {
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "********"
}
