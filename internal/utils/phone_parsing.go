package utils

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"github.com/prefeitura-rio/app-login/internal/models"
)

// PhoneComponents represents the parsed components of a phone number
type PhoneComponents struct {
	CountryCode    string `json:"country_code"`
	NationalNumber string `json:"national_number"`
	Region         string `json:"region"`
	E164           string `json:"e164"`
}

// ParsePhoneNumber parses a national number under the given "+NNN" country
// code and returns its components.
func ParsePhoneNumber(countryCode, national string) (*PhoneComponents, error) {
	cc := strings.TrimSpace(countryCode)
	if !strings.HasPrefix(cc, "+") {
		cc = "+" + cc
	}
	nat := strings.TrimLeft(strings.TrimSpace(national), "0")

	num, err := phonenumbers.Parse(cc+nat, "")
	if err != nil {
		return nil, fmt.Errorf("failed to parse phone number: %w", err)
	}

	return &PhoneComponents{
		CountryCode:    fmt.Sprintf("+%d", num.GetCountryCode()),
		NationalNumber: phonenumbers.GetNationalSignificantNumber(num),
		Region:         phonenumbers.GetRegionCodeForNumber(num),
		E164:           phonenumbers.Format(num, phonenumbers.E164),
	}, nil
}

// ValidatePhoneStrict runs the loose length check and then asks
// libphonenumber whether the number is valid for the country code.
func ValidatePhoneStrict(countryCode, national string) error {
	if err := ValidatePhone(national); err != nil {
		return err
	}

	cc := strings.TrimSpace(countryCode)
	if !strings.HasPrefix(cc, "+") {
		cc = "+" + cc
	}
	num, err := phonenumbers.Parse(cc+strings.TrimLeft(national, "0"), "")
	if err != nil {
		return models.ErrInvalidPhone
	}
	if !phonenumbers.IsValidNumber(num) {
		return models.ErrInvalidPhone
	}
	return nil
}

// FormatE164 returns the E.164 form, or the plain concatenation when the
// number cannot be parsed.
func FormatE164(countryCode, national string) string {
	pc, err := ParsePhoneNumber(countryCode, national)
	if err != nil {
		return countryCode + national
	}
	return pc.E164
}
