// Package flow implements the phone + one-time-code login state machine.
//
// A Controller owns one authentication surface: its FlowState, the resend
// countdown and the in-flight remote call. State is guarded by a mutex;
// remote calls run with the lock released and their responses are applied
// only if the flow has not moved on in the meantime.
package flow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prefeitura-rio/app-login/internal/events"
	"github.com/prefeitura-rio/app-login/internal/logging"
	"github.com/prefeitura-rio/app-login/internal/models"
	"github.com/prefeitura-rio/app-login/internal/observability"
	"github.com/prefeitura-rio/app-login/internal/session"
	"github.com/prefeitura-rio/app-login/internal/timer"
	"github.com/prefeitura-rio/app-login/internal/utils"
	"github.com/prefeitura-rio/app-login/internal/verification"
	"go.uber.org/zap"
)

// Fallback messages shown when the service gives no reason.
const (
	MsgSendFailed   = "Could not send the verification code. Please try again."
	MsgVerifyFailed = "Invalid verification code. Please try again."
	MsgResendFailed = "Could not resend the verification code. Please try again."
	MsgNoSession    = "Your verification expired. Go back and request a new code."
)

const profileCallTimeout = 15 * time.Second

// Options configures a Controller.
type Options struct {
	DeviceID              string
	Store                 *session.Store
	Service               verification.Service
	Events                events.Publisher
	ResendWindow          time.Duration
	CloseGraceDelay       time.Duration
	PostLoginDestination  string
	AllowedCountryCodes   []string
	DefaultCountryCode    string
	StrictPhoneValidation bool
	// Ticker overrides the resend countdown's clock.
	Ticker func(time.Duration) timer.Ticker
}

// Controller drives one login flow.
type Controller struct {
	mu       sync.Mutex
	opts     Options
	state    models.FlowState
	open     bool
	epoch    uint64
	session  *models.VerificationSession
	identity *models.AuthenticatedIdentity
	resend   *timer.ResendTimer
	teardown *time.Timer
	bg       sync.WaitGroup
	logger   *logging.SafeLogger

	onDiscard func(*Controller)
}

// NewController returns a closed controller. Call Open before any intent.
func NewController(opts Options) *Controller {
	if len(opts.AllowedCountryCodes) == 0 && opts.DefaultCountryCode != "" {
		opts.AllowedCountryCodes = []string{opts.DefaultCountryCode}
	}
	if opts.DefaultCountryCode == "" && len(opts.AllowedCountryCodes) > 0 {
		opts.DefaultCountryCode = opts.AllowedCountryCodes[0]
	}
	if opts.PostLoginDestination == "" {
		opts.PostLoginDestination = "/"
	}
	if opts.ResendWindow <= 0 {
		opts.ResendWindow = 60 * time.Second
	}

	c := &Controller{
		opts:   opts,
		state:  models.NewFlowState(opts.DefaultCountryCode),
		logger: logging.Logger.With(zap.String("device_id", opts.DeviceID)),
	}

	timerOpts := []timer.Option{timer.WithOnTick(c.onTick)}
	if opts.Ticker != nil {
		timerOpts = append(timerOpts, timer.WithTicker(opts.Ticker))
	}
	c.resend = timer.NewResendTimer(opts.ResendWindow, timerOpts...)
	return c
}

// DeviceID returns the device this controller serves.
func (c *Controller) DeviceID() string {
	return c.opts.DeviceID
}

// onTick runs on the timer goroutine. It must not take c.mu: Stop waits for
// that goroutine while the lock is held.
func (c *Controller) onTick(int) {
	c.publish(context.Background(), events.StateChanged(c.opts.DeviceID))
}

func (c *Controller) publish(ctx context.Context, ev events.Event) {
	if c.opts.Events != nil {
		c.opts.Events.Publish(ctx, ev)
	}
}

func (c *Controller) notifyError(ctx context.Context, message string) {
	c.publish(ctx, events.Notification(c.opts.DeviceID, events.LevelError, message))
}

// Open shows the surface. The starting step is derived from the persisted
// verification session. Opening an open flow is a no-op.
func (c *Controller) Open(ctx context.Context) error {
	vs, err := c.opts.Store.LoadVerification(ctx)
	if err != nil {
		c.logger.Warn("failed to load verification session, starting fresh", zap.Error(err))
		vs = nil
	}

	c.mu.Lock()
	if c.open {
		c.mu.Unlock()
		return nil
	}
	if c.teardown != nil {
		c.teardown.Stop()
		c.teardown = nil
	}

	c.open = true
	c.epoch++
	c.session = vs
	c.identity = nil
	c.state = InitialState(vs, c.opts.DefaultCountryCode, c.resend.Window())
	if c.state.Step == models.StepOtp {
		c.resend.Start()
	} else {
		c.resend.Reset()
	}
	step := c.state.Step
	c.mu.Unlock()

	observability.ActiveFlows.Inc()
	observability.FlowTransitions.WithLabelValues("open", string(step), "ok").Inc()
	c.logger.Debug("flow opened", zap.String("step", string(step)))
	c.publish(ctx, events.StateChanged(c.opts.DeviceID))
	return nil
}

// Close hides the surface. In-flight responses are discarded and the state
// is reset to defaults after the grace delay.
func (c *Controller) Close() {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return
	}
	c.open = false
	c.epoch++
	c.resend.Stop()
	c.state.Busy = models.BusyIdle

	if c.teardown != nil {
		c.teardown.Stop()
	}
	c.teardown = time.AfterFunc(c.opts.CloseGraceDelay, c.resetAfterClose)
	c.mu.Unlock()

	observability.ActiveFlows.Dec()
	c.logger.Debug("flow closed")
	c.publish(context.Background(), events.StateChanged(c.opts.DeviceID))
}

func (c *Controller) resetAfterClose() {
	c.mu.Lock()
	if c.open {
		c.mu.Unlock()
		return
	}
	c.teardown = nil
	c.state = models.NewFlowState(c.opts.DefaultCountryCode)
	c.session = nil
	c.identity = nil
	c.resend.Reset()
	discard := c.onDiscard
	c.mu.Unlock()

	if discard != nil {
		discard(c)
	}
}

// IsOpen reports whether the surface is shown.
func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Wait blocks until background profile saves have finished.
func (c *Controller) Wait() {
	c.bg.Wait()
}

// Snapshot returns a consistent copy of the flow with per-step views.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	state := c.state
	state.ResendSecondsRemaining = 0
	if state.Step == models.StepOtp {
		state.ResendSecondsRemaining = c.resend.Remaining()
	}

	var delivery, name string
	if c.session != nil {
		delivery = c.session.DeliveryMethod
	}
	if c.identity != nil {
		name = c.identity.Name
	}
	return buildSnapshot(c.open, state, c.opts.AllowedCountryCodes, delivery, name, c.opts.PostLoginDestination)
}

// guard checks the preconditions shared by every intent. Callers hold c.mu.
func (c *Controller) guard(step models.Step) error {
	if !c.open {
		return models.ErrFlowClosed
	}
	if c.state.Step != step {
		return models.ErrWrongStep
	}
	if c.state.Busy != models.BusyIdle {
		return models.ErrFlowBusy
	}
	return nil
}

// enterStep moves to step and invalidates any in-flight response. Callers
// hold c.mu.
func (c *Controller) enterStep(step models.Step) {
	c.state.Step = step
	c.state.FieldErrors = map[models.Field]string{}
	c.epoch++
	if step == models.StepOtp {
		c.resend.Start()
	} else {
		c.resend.Stop()
	}
}

func (c *Controller) validationError(field models.Field, err error) error {
	c.state.FieldErrors[field] = err.Error()
	return &models.ValidationError{Field: field, Err: err}
}

func countTransition(trigger string, from models.Step, outcome string) {
	observability.FlowTransitions.WithLabelValues(trigger, string(from), outcome).Inc()
}

func (c *Controller) countStale(op string) {
	observability.StaleResponses.WithLabelValues(op).Inc()
	c.logger.Debug("discarding stale response", zap.String("operation", op))
}

// SetPhone updates the phone input on the phone step.
func (c *Controller) SetPhone(value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editable(models.StepPhone); err != nil {
		return err
	}
	c.state.PhoneInput = strings.TrimSpace(value)
	delete(c.state.FieldErrors, models.FieldPhone)
	return nil
}

// SetCountryCode selects one of the configured country codes.
func (c *Controller) SetCountryCode(code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editable(models.StepPhone); err != nil {
		return err
	}
	code = strings.TrimSpace(code)
	if err := utils.ValidateCountryCode(code, c.opts.AllowedCountryCodes); err != nil {
		return &models.ValidationError{Field: models.FieldPhone, Err: err}
	}
	c.state.CountryCodeInput = code
	return nil
}

// SetOTPDigit writes one code cell and returns the cell that should receive
// focus next.
func (c *Controller) SetOTPDigit(index int, value string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editable(models.StepOtp); err != nil {
		return index, err
	}
	if index < 0 || index >= models.OTPLength {
		return index, models.ErrDigitOutOfRange
	}
	digit, err := utils.SanitizeOTPDigit(value)
	if err != nil {
		return index, &models.ValidationError{Field: models.FieldOTP, Err: err}
	}

	c.state.OTPDigits[index] = digit
	delete(c.state.FieldErrors, models.FieldOTP)
	if digit != "" && index < models.OTPLength-1 {
		return index + 1, nil
	}
	return index, nil
}

// BackspaceOTP clears the cell at index. On an already empty cell focus moves
// to the previous cell instead.
func (c *Controller) BackspaceOTP(index int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editable(models.StepOtp); err != nil {
		return index, err
	}
	if index < 0 || index >= models.OTPLength {
		return index, models.ErrDigitOutOfRange
	}
	if c.state.OTPDigits[index] != "" {
		c.state.OTPDigits[index] = ""
		return index, nil
	}
	if index > 0 {
		return index - 1, nil
	}
	return index, nil
}

// PasteOTP spreads the digits found in text over the cells, starting at the
// first one, and returns the cell to focus.
func (c *Controller) PasteOTP(text string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editable(models.StepOtp); err != nil {
		return 0, err
	}
	digits := utils.ExtractDigits(text, models.OTPLength)
	if len(digits) == 0 {
		return 0, &models.ValidationError{Field: models.FieldOTP, Err: models.ErrInvalidDigit}
	}
	for i, d := range digits {
		c.state.OTPDigits[i] = d
	}
	delete(c.state.FieldErrors, models.FieldOTP)
	if len(digits) >= models.OTPLength {
		return models.OTPLength - 1, nil
	}
	return len(digits), nil
}

// SetName updates the display name input on the profile step.
func (c *Controller) SetName(value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editable(models.StepProfile); err != nil {
		return err
	}
	c.state.NameInput = value
	delete(c.state.FieldErrors, models.FieldName)
	return nil
}

func (c *Controller) editable(step models.Step) error {
	if !c.open {
		return models.ErrFlowClosed
	}
	if c.state.Step != step {
		return models.ErrWrongStep
	}
	return nil
}

// SubmitPhone validates the phone input and requests a code. On success the
// flow moves to the OTP step. Remote failures are reported through the phone
// field error and a notification, not the returned error.
func (c *Controller) SubmitPhone(ctx context.Context) error {
	ctx, span, cleanup := utils.TraceFlowTransition(ctx, "submit_phone", string(models.StepPhone))
	defer cleanup()

	c.mu.Lock()
	if err := c.guard(models.StepPhone); err != nil {
		c.mu.Unlock()
		return err
	}
	phone, cc := c.state.PhoneInput, c.state.CountryCodeInput
	if err := c.validatePhone(cc, phone); err != nil {
		verr := c.validationError(models.FieldPhone, err)
		c.mu.Unlock()
		countTransition("submit_phone", models.StepPhone, "invalid")
		return verr
	}
	delete(c.state.FieldErrors, models.FieldPhone)
	c.state.Busy = models.BusySending
	epoch := c.epoch
	c.mu.Unlock()
	c.publish(ctx, events.StateChanged(c.opts.DeviceID))

	res, callErr := c.opts.Service.SendCode(ctx, verification.CodeRequest{CountryCode: cc, PhoneNumber: phone})

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		c.countStale(verification.OpSendCode)
		return models.ErrStaleResponse
	}
	c.state.Busy = models.BusyIdle

	if callErr != nil {
		utils.RecordError(span, callErr)
		msg := verification.UserMessage(callErr, MsgSendFailed)
		c.state.FieldErrors[models.FieldPhone] = msg
		c.mu.Unlock()

		c.logger.Warn("send-code failed", zap.String("phone", observability.MaskPhone(phone)), zap.Error(callErr))
		countTransition("submit_phone", models.StepPhone, "remote_error")
		c.notifyError(ctx, msg)
		c.publish(ctx, events.StateChanged(c.opts.DeviceID))
		return nil
	}

	vs := &models.VerificationSession{
		PhoneNumber:    phone,
		CountryCode:    cc,
		ServerPhoneKey: res.ServerPhoneKey,
		IssuedCode:     res.IssuedCode,
		DeliveryMethod: res.DeliveryMethod,
	}
	c.persistSession(ctx, vs)
	c.session = vs
	c.state.OTPDigits = [models.OTPLength]string{}
	if vs.HasIssuedCode() {
		c.state.OTPDigits = seedDigits(*vs.IssuedCode)
	}
	c.enterStep(models.StepOtp)
	c.mu.Unlock()

	countTransition("submit_phone", models.StepPhone, "ok")
	c.publish(ctx, events.StateChanged(c.opts.DeviceID))
	return nil
}

func (c *Controller) validatePhone(cc, phone string) error {
	if err := utils.ValidateCountryCode(cc, c.opts.AllowedCountryCodes); err != nil {
		return err
	}
	if c.opts.StrictPhoneValidation {
		return utils.ValidatePhoneStrict(cc, phone)
	}
	return utils.ValidatePhone(phone)
}

// persistSession writes the pending session. A failed write only costs the
// ability to resume, so the flow carries on. Callers hold c.mu.
func (c *Controller) persistSession(ctx context.Context, vs *models.VerificationSession) {
	if err := c.opts.Store.SaveVerification(ctx, vs); err != nil {
		c.logger.Error("failed to persist verification session", zap.Error(err))
	}
}

// SubmitOTP verifies the entered code. On success the identity is stored,
// the pending session is cleared, a login event is broadcast, and the flow
// moves to the profile step (no name yet) or the welcome step.
func (c *Controller) SubmitOTP(ctx context.Context) error {
	ctx, span, cleanup := utils.TraceFlowTransition(ctx, "submit_otp", string(models.StepOtp))
	defer cleanup()

	c.mu.Lock()
	if err := c.guard(models.StepOtp); err != nil {
		c.mu.Unlock()
		return err
	}
	if err := utils.ValidateOTP(c.state.OTPDigits); err != nil {
		verr := c.validationError(models.FieldOTP, err)
		c.mu.Unlock()
		countTransition("submit_otp", models.StepOtp, "invalid")
		return verr
	}
	if c.session == nil {
		c.state.FieldErrors[models.FieldOTP] = MsgNoSession
		c.mu.Unlock()
		countTransition("submit_otp", models.StepOtp, "no_session")
		return models.ErrNoPendingSession
	}
	delete(c.state.FieldErrors, models.FieldOTP)
	c.state.Busy = models.BusyVerifying
	req := verification.VerifyRequest{ServerPhoneKey: c.session.ServerPhoneKey, Code: c.state.OTPCode()}
	epoch := c.epoch
	c.mu.Unlock()
	c.publish(ctx, events.StateChanged(c.opts.DeviceID))

	res, callErr := c.opts.Service.VerifyCode(ctx, req)

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		c.countStale(verification.OpVerifyCode)
		return models.ErrStaleResponse
	}
	c.state.Busy = models.BusyIdle

	if callErr != nil {
		utils.RecordError(span, callErr)
		msg := verification.UserMessage(callErr, MsgVerifyFailed)
		c.state.OTPDigits = [models.OTPLength]string{}
		c.state.FieldErrors[models.FieldOTP] = msg
		c.mu.Unlock()

		c.logger.Warn("verify-code failed", zap.Error(callErr))
		countTransition("submit_otp", models.StepOtp, "remote_error")
		c.notifyError(ctx, msg)
		c.publish(ctx, events.StateChanged(c.opts.DeviceID))
		return nil
	}

	identity := &models.AuthenticatedIdentity{
		ID:           res.User.ID,
		Name:         strings.TrimSpace(res.User.Name),
		Phone:        res.User.Phone,
		IsVerified:   res.User.IsVerified,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    res.TokenType,
	}
	if identity.Phone == "" {
		identity.Phone = req.ServerPhoneKey
	}
	if err := c.opts.Store.SaveIdentity(ctx, identity); err != nil {
		c.logger.Error("failed to persist identity", zap.Error(err))
	}
	if err := c.opts.Store.ClearVerification(ctx); err != nil {
		c.logger.Error("failed to clear verification session", zap.Error(err))
	}
	c.session = nil
	c.identity = identity
	c.state.OTPDigits = [models.OTPLength]string{}

	next := models.StepWelcome
	if identity.NeedsProfile() {
		next = models.StepProfile
	}
	c.enterStep(next)
	c.mu.Unlock()

	c.logger.Info("login succeeded",
		zap.String("user_id", identity.ID),
		zap.String("next_step", string(next)))
	countTransition("submit_otp", models.StepOtp, "ok")
	c.publish(ctx, events.LoginOccurred(c.opts.DeviceID, identity))
	c.publish(ctx, events.StateChanged(c.opts.DeviceID))
	return nil
}

// Resend asks for a new code once the countdown has reached zero.
func (c *Controller) Resend(ctx context.Context) error {
	ctx, span, cleanup := utils.TraceFlowTransition(ctx, "resend", string(models.StepOtp))
	defer cleanup()

	c.mu.Lock()
	if err := c.guard(models.StepOtp); err != nil {
		c.mu.Unlock()
		return err
	}
	if !c.resend.CanResend() {
		c.mu.Unlock()
		return models.ErrResendNotReady
	}
	if c.session == nil {
		c.state.FieldErrors[models.FieldOTP] = MsgNoSession
		c.mu.Unlock()
		return models.ErrNoPendingSession
	}
	c.state.Busy = models.BusyResending
	req := verification.CodeRequest{CountryCode: c.session.CountryCode, PhoneNumber: c.session.PhoneNumber}
	epoch := c.epoch
	c.mu.Unlock()
	c.publish(ctx, events.StateChanged(c.opts.DeviceID))

	res, callErr := c.opts.Service.ResendCode(ctx, req)

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		c.countStale(verification.OpResendCode)
		return models.ErrStaleResponse
	}
	c.state.Busy = models.BusyIdle

	if callErr != nil {
		utils.RecordError(span, callErr)
		msg := verification.UserMessage(callErr, MsgResendFailed)
		c.state.FieldErrors[models.FieldOTP] = msg
		c.mu.Unlock()

		c.logger.Warn("resend-code failed", zap.Error(callErr))
		countTransition("resend", models.StepOtp, "remote_error")
		c.notifyError(ctx, msg)
		c.publish(ctx, events.StateChanged(c.opts.DeviceID))
		return nil
	}

	vs := *c.session
	vs.ServerPhoneKey = res.ServerPhoneKey
	vs.DeliveryMethod = res.DeliveryMethod
	vs.IssuedCode = res.IssuedCode
	c.persistSession(ctx, &vs)
	c.session = &vs

	c.state.OTPDigits = [models.OTPLength]string{}
	if vs.HasIssuedCode() {
		c.state.OTPDigits = seedDigits(*vs.IssuedCode)
	}
	delete(c.state.FieldErrors, models.FieldOTP)
	c.resend.Start()
	c.mu.Unlock()

	countTransition("resend", models.StepOtp, "ok")
	c.publish(ctx, events.StateChanged(c.opts.DeviceID))
	return nil
}

// Back returns from the OTP step to the phone step, keeping the phone input
// and the persisted session. It is accepted while a call is in flight; that
// call's response is then discarded.
func (c *Controller) Back() error {
	c.mu.Lock()
	if err := c.editable(models.StepOtp); err != nil {
		c.mu.Unlock()
		return err
	}
	c.state.Busy = models.BusyIdle
	c.state.OTPDigits = [models.OTPLength]string{}
	c.enterStep(models.StepPhone)
	c.mu.Unlock()

	countTransition("back", models.StepOtp, "ok")
	c.publish(context.Background(), events.StateChanged(c.opts.DeviceID))
	return nil
}

// SubmitProfile validates the name, stores it on the local identity and moves
// to the welcome step. The remote profile update runs in the background and
// its failure is only logged.
func (c *Controller) SubmitProfile(ctx context.Context) error {
	c.mu.Lock()
	if err := c.guard(models.StepProfile); err != nil {
		c.mu.Unlock()
		return err
	}
	if err := utils.ValidateName(c.state.NameInput); err != nil {
		verr := c.validationError(models.FieldName, err)
		c.mu.Unlock()
		countTransition("submit_profile", models.StepProfile, "invalid")
		return verr
	}

	name := strings.TrimSpace(c.state.NameInput)
	var token string
	if c.identity != nil {
		updated := *c.identity
		updated.Name = name
		if err := c.opts.Store.SaveIdentity(ctx, &updated); err != nil {
			c.logger.Error("failed to persist identity name", zap.Error(err))
		}
		c.identity = &updated
		token = updated.AccessToken
	}
	c.enterStep(models.StepWelcome)
	c.mu.Unlock()

	if token != "" {
		c.completeProfile(ctx, token, name)
	}
	countTransition("submit_profile", models.StepProfile, "ok")
	c.publish(ctx, events.StateChanged(c.opts.DeviceID))
	return nil
}

func (c *Controller) completeProfile(ctx context.Context, token, name string) {
	c.bg.Add(1)
	go func() {
		defer c.bg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), profileCallTimeout)
		defer cancel()

		if err := c.opts.Service.CompleteProfile(ctx, token, name); err != nil {
			c.logger.Warn("complete-profile failed, keeping local name",
				zap.String("token", observability.MaskToken(token)),
				zap.Error(err))
		}
	}()
}

// Skip leaves the profile step without saving a name.
func (c *Controller) Skip() error {
	c.mu.Lock()
	if err := c.guard(models.StepProfile); err != nil {
		c.mu.Unlock()
		return err
	}
	c.enterStep(models.StepWelcome)
	c.mu.Unlock()

	countTransition("skip", models.StepProfile, "ok")
	c.publish(context.Background(), events.StateChanged(c.opts.DeviceID))
	return nil
}

// Finish ends the flow from the welcome step: it asks the host to navigate
// to the post-login destination and closes the surface.
func (c *Controller) Finish(ctx context.Context) (string, error) {
	c.mu.Lock()
	if err := c.guard(models.StepWelcome); err != nil {
		c.mu.Unlock()
		return "", err
	}
	dest := c.opts.PostLoginDestination
	c.mu.Unlock()

	countTransition("finish", models.StepWelcome, "ok")
	c.publish(ctx, events.Navigate(c.opts.DeviceID, dest))
	c.Close()
	return dest, nil
}

// IsRejection reports whether err means the intent was not accepted in the
// flow's current state, as opposed to a validation failure.
func IsRejection(err error) bool {
	return errors.Is(err, models.ErrFlowBusy) ||
		errors.Is(err, models.ErrWrongStep) ||
		errors.Is(err, models.ErrFlowClosed) ||
		errors.Is(err, models.ErrResendNotReady) ||
		errors.Is(err, models.ErrStaleResponse)
}
