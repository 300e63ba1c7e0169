package flow

import (
	"github.com/prefeitura-rio/app-login/internal/models"
	"github.com/prefeitura-rio/app-login/internal/utils"
)

// Snapshot is a consistent copy of a flow taken under its lock. Exactly one
// of the step views is set, matching State.Step.
type Snapshot struct {
	Open    bool             `json:"open"`
	State   models.FlowState `json:"state"`
	Phone   *PhoneView       `json:"phone,omitempty"`
	OTP     *OTPView         `json:"otp,omitempty"`
	Profile *ProfileView     `json:"profile,omitempty"`
	Welcome *WelcomeView     `json:"welcome,omitempty"`
}

// PhoneView is what the phone step renders.
type PhoneView struct {
	PhoneNumber  string   `json:"phoneNumber"`
	CountryCode  string   `json:"countryCode"`
	CountryCodes []string `json:"countryCodes"`
	Error        *string  `json:"error"`
	Busy         bool     `json:"busy"`
	CanSubmit    bool     `json:"canSubmit"`
}

// OTPView is what the code entry step renders.
type OTPView struct {
	Digits                 [models.OTPLength]string `json:"digits"`
	PhoneNumber            string                   `json:"phoneNumber"`
	CountryCode            string                   `json:"countryCode"`
	DeliveryMethod         string                   `json:"deliveryMethod,omitempty"`
	Error                  *string                  `json:"error"`
	Busy                   bool                     `json:"busy"`
	Resending              bool                     `json:"resending"`
	CanSubmit              bool                     `json:"canSubmit"`
	CanResend              bool                     `json:"canResend"`
	CanGoBack              bool                     `json:"canGoBack"`
	ResendSecondsRemaining int                      `json:"resendSecondsRemaining"`
}

// ProfileView is what the name collection step renders.
type ProfileView struct {
	Name      string  `json:"name"`
	Error     *string `json:"error"`
	CanSubmit bool    `json:"canSubmit"`
	CanSkip   bool    `json:"canSkip"`
}

// WelcomeView is what the confirmation step renders.
type WelcomeView struct {
	Name        string `json:"name"`
	Destination string `json:"destination"`
}

func buildSnapshot(open bool, state models.FlowState, countryCodes []string, deliveryMethod, welcomeName, destination string) Snapshot {
	snap := Snapshot{Open: open, State: state.Clone()}
	idle := state.Busy == models.BusyIdle

	switch state.Step {
	case models.StepPhone:
		snap.Phone = &PhoneView{
			PhoneNumber:  state.PhoneInput,
			CountryCode:  state.CountryCodeInput,
			CountryCodes: append([]string(nil), countryCodes...),
			Error:        state.FieldError(models.FieldPhone),
			Busy:         !idle,
			CanSubmit:    idle && utils.CanSubmitPhone(state.PhoneInput),
		}
	case models.StepOtp:
		snap.OTP = &OTPView{
			Digits:                 state.OTPDigits,
			PhoneNumber:            state.PhoneInput,
			CountryCode:            state.CountryCodeInput,
			DeliveryMethod:         deliveryMethod,
			Error:                  state.FieldError(models.FieldOTP),
			Busy:                   !idle,
			Resending:              state.Busy == models.BusyResending,
			CanSubmit:              idle && utils.CanSubmitOTP(state.OTPDigits),
			CanResend:              idle && state.ResendSecondsRemaining == 0,
			CanGoBack:              true,
			ResendSecondsRemaining: state.ResendSecondsRemaining,
		}
	case models.StepProfile:
		snap.Profile = &ProfileView{
			Name:      state.NameInput,
			Error:     state.FieldError(models.FieldName),
			CanSubmit: idle && utils.CanSubmitName(state.NameInput),
			CanSkip:   idle,
		}
	case models.StepWelcome:
		snap.Welcome = &WelcomeView{Name: welcomeName, Destination: destination}
	}
	return snap
}
