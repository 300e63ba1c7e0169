package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/prefeitura-rio/app-login/internal/models"
)

const (
	// MinPhoneLength is the shortest phone input accepted for submit
	MinPhoneLength = 9
	// MinNameLength and MaxNameLength bound the trimmed display name
	MinNameLength = 2
	MaxNameLength = 50
)

var otpRegex = regexp.MustCompile(`^\d{6}$`)

// ValidatePhone checks only that the national number is present and at least
// MinPhoneLength characters long. It does not check the country grammar; see
// ValidatePhoneStrict for that.
func ValidatePhone(value string) error {
	if value == "" || utf8.RuneCountInString(value) < MinPhoneLength {
		return models.ErrInvalidPhone
	}
	return nil
}

// ValidateOTP checks that all cells hold exactly one decimal digit.
func ValidateOTP(digits [models.OTPLength]string) error {
	if !otpRegex.MatchString(strings.Join(digits[:], "")) {
		return models.ErrIncompleteOTP
	}
	return nil
}

// ValidateName checks the display name collected on the profile step.
func ValidateName(value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return models.ErrEmptyName
	}
	n := utf8.RuneCountInString(trimmed)
	if n < MinNameLength {
		return models.ErrNameTooShort
	}
	if n > MaxNameLength {
		return models.ErrNameTooLong
	}
	return nil
}

// ValidateCountryCode checks code against the configured set.
func ValidateCountryCode(code string, allowed []string) error {
	for _, c := range allowed {
		if c == code {
			return nil
		}
	}
	return models.ErrUnsupportedCountryCode
}

// CanSubmitPhone mirrors the enable rule of the phone step's primary action.
func CanSubmitPhone(value string) bool {
	return ValidatePhone(value) == nil
}

// CanSubmitOTP is true when every cell is filled. Cell contents are already
// restricted to single digits by SanitizeOTPDigit.
func CanSubmitOTP(digits [models.OTPLength]string) bool {
	for _, d := range digits {
		if d == "" {
			return false
		}
	}
	return true
}

// CanSubmitName mirrors the enable rule of the profile step's primary action.
func CanSubmitName(value string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(value)) >= MinNameLength
}

// SanitizeOTPDigit accepts "" or a single ASCII decimal digit.
func SanitizeOTPDigit(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if len(value) == 1 && value[0] >= '0' && value[0] <= '9' {
		return value, nil
	}
	return "", models.ErrInvalidDigit
}

// ExtractDigits returns at most max ASCII digits found in s, in order.
func ExtractDigits(s string, max int) []string {
	out := make([]string, 0, max)
	for i := 0; i < len(s) && len(out) < max; i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i:i+1])
		}
	}
	return out
}
