package flow

import (
	"github.com/prefeitura-rio/app-login/internal/models"
	"github.com/prefeitura-rio/app-login/internal/utils"
)

// InitialState is the state a freshly opened flow starts in. It depends only
// on the persisted session: with one the flow resumes at the OTP step with a
// full resend window, without one it starts at the phone step.
func InitialState(vs *models.VerificationSession, defaultCountryCode string, resendWindow int) models.FlowState {
	state := models.NewFlowState(defaultCountryCode)
	if vs == nil {
		return state
	}

	state.Step = models.StepOtp
	state.PhoneInput = vs.PhoneNumber
	if vs.CountryCode != "" {
		state.CountryCodeInput = vs.CountryCode
	}
	state.ResendSecondsRemaining = resendWindow
	if vs.HasIssuedCode() {
		state.OTPDigits = seedDigits(*vs.IssuedCode)
	}
	return state
}

// seedDigits spreads an issued code over the OTP cells.
func seedDigits(code string) [models.OTPLength]string {
	var cells [models.OTPLength]string
	for i, d := range utils.ExtractDigits(code, models.OTPLength) {
		cells[i] = d
	}
	return cells
}
