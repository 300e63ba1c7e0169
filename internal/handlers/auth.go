package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-login/internal/events"
	"github.com/prefeitura-rio/app-login/internal/flow"
	"github.com/prefeitura-rio/app-login/internal/logging"
	"github.com/prefeitura-rio/app-login/internal/middleware"
	"github.com/prefeitura-rio/app-login/internal/models"
	"go.uber.org/zap"
)

// Subscriber hands out event streams.
type Subscriber interface {
	Subscribe(filter events.Filter) (<-chan events.Event, func())
}

// AuthHandlers exposes the per-device login flow over HTTP.
type AuthHandlers struct {
	registry *flow.Registry
	events   Subscriber
	logger   *logging.SafeLogger
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(registry *flow.Registry, subscriber Subscriber, logger *logging.SafeLogger) *AuthHandlers {
	return &AuthHandlers{registry: registry, events: subscriber, logger: logger}
}

// RegisterRoutes mounts the auth routes on rg.
func (h *AuthHandlers) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.GET("/flow", h.GetFlow)
		auth.POST("/flow/open", h.OpenFlow)
		auth.POST("/flow/close", h.CloseFlow)

		auth.PUT("/flow/phone", h.SetPhone)
		auth.POST("/flow/phone/submit", h.SubmitPhone)

		auth.PUT("/flow/otp/digit", h.SetOTPDigit)
		auth.POST("/flow/otp/backspace", h.BackspaceOTP)
		auth.POST("/flow/otp/paste", h.PasteOTP)
		auth.POST("/flow/otp/submit", h.SubmitOTP)
		auth.POST("/flow/otp/resend", h.Resend)
		auth.POST("/flow/otp/back", h.Back)

		auth.PUT("/flow/profile", h.SetName)
		auth.POST("/flow/profile/submit", h.SubmitProfile)
		auth.POST("/flow/profile/skip", h.Skip)

		auth.POST("/flow/finish", h.Finish)

		auth.GET("/identity", h.GetIdentity)
		auth.DELETE("/identity", h.Logout)

		auth.GET("/events", h.StreamEvents)
	}
}

// ErrorResponse is returned for every non-2xx answer.
type ErrorResponse struct {
	Error string         `json:"error"`
	Field string         `json:"field,omitempty"`
	Flow  *flow.Snapshot `json:"flow,omitempty"`
}

// FlowResponse carries the flow snapshot after an operation.
type FlowResponse struct {
	Flow  flow.Snapshot `json:"flow"`
	Focus *int          `json:"focus,omitempty"`
}

// FinishResponse tells the client where to navigate.
type FinishResponse struct {
	Destination string `json:"destination"`
}

// IdentityResponse is the public part of the authenticated identity.
type IdentityResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	IsVerified bool   `json:"isVerified"`
}

// PhoneInputRequest updates the phone step inputs.
type PhoneInputRequest struct {
	PhoneNumber string  `json:"phoneNumber"`
	CountryCode *string `json:"countryCode,omitempty"`
}

// OTPDigitRequest writes one code cell.
type OTPDigitRequest struct {
	Index int    `json:"index"`
	Value string `json:"value"`
}

// OTPBackspaceRequest clears one code cell.
type OTPBackspaceRequest struct {
	Index int `json:"index"`
}

// OTPPasteRequest spreads pasted text over the code cells.
type OTPPasteRequest struct {
	Text string `json:"text" binding:"required"`
}

// NameRequest updates the profile step input.
type NameRequest struct {
	Name string `json:"name"`
}

func deviceID(c *gin.Context) string {
	if id := c.GetString(middleware.DeviceIDKey); id != "" {
		return id
	}
	return c.GetHeader("X-Device-ID")
}

// controller returns the caller's controller. Without one, the flow is closed
// and every intent is rejected.
func (h *AuthHandlers) controller(c *gin.Context) (*flow.Controller, bool) {
	ctrl, ok := h.registry.Lookup(deviceID(c))
	if !ok {
		snap := h.registry.Snapshot(deviceID(c))
		c.JSON(http.StatusConflict, ErrorResponse{Error: models.ErrFlowClosed.Error(), Flow: &snap})
	}
	return ctrl, ok
}

func (h *AuthHandlers) respond(c *gin.Context, ctrl *flow.Controller, focus *int) {
	c.JSON(http.StatusOK, FlowResponse{Flow: ctrl.Snapshot(), Focus: focus})
}

// fail maps flow errors onto HTTP statuses.
func (h *AuthHandlers) fail(c *gin.Context, ctrl *flow.Controller, err error) {
	var snap *flow.Snapshot
	if ctrl != nil {
		s := ctrl.Snapshot()
		snap = &s
	}

	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: verr.Err.Error(), Field: string(verr.Field), Flow: snap})
	case errors.Is(err, models.ErrDigitOutOfRange):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Field: string(models.FieldOTP), Flow: snap})
	case errors.Is(err, models.ErrNoPendingSession), flow.IsRejection(err):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Flow: snap})
	case errors.Is(err, models.ErrIdentityNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error("auth request failed", zap.String("device_id", deviceID(c)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

func (h *AuthHandlers) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (h *AuthHandlers) run(c *gin.Context, op func(*flow.Controller) error) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	if err := op(ctrl); err != nil {
		h.fail(c, ctrl, err)
		return
	}
	h.respond(c, ctrl, nil)
}

func (h *AuthHandlers) runFocus(c *gin.Context, op func(*flow.Controller) (int, error)) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	focus, err := op(ctrl)
	if err != nil {
		h.fail(c, ctrl, err)
		return
	}
	h.respond(c, ctrl, &focus)
}

// GetFlow godoc
// @Summary Get login flow
// @Description Returns the current state of the caller's login flow with per-step views
// @Tags auth
// @Produce json
// @Param X-Device-ID header string false "Device identifier"
// @Success 200 {object} FlowResponse
// @Router /auth/flow [get]
func (h *AuthHandlers) GetFlow(c *gin.Context) {
	c.JSON(http.StatusOK, FlowResponse{Flow: h.registry.Snapshot(deviceID(c))})
}

// OpenFlow godoc
// @Summary Open login flow
// @Description Shows the login surface. A pending verification session resumes at the code step.
// @Tags auth
// @Produce json
// @Param X-Device-ID header string false "Device identifier"
// @Success 200 {object} FlowResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/flow/open [post]
func (h *AuthHandlers) OpenFlow(c *gin.Context) {
	ctrl, err := h.registry.Open(c.Request.Context(), deviceID(c))
	if err != nil {
		h.fail(c, nil, err)
		return
	}
	h.respond(c, ctrl, nil)
}

// CloseFlow godoc
// @Summary Close login flow
// @Description Hides the login surface and discards any in-flight response
// @Tags auth
// @Produce json
// @Param X-Device-ID header string false "Device identifier"
// @Success 200 {object} FlowResponse
// @Router /auth/flow/close [post]
func (h *AuthHandlers) CloseFlow(c *gin.Context) {
	if ctrl, ok := h.registry.Lookup(deviceID(c)); ok {
		ctrl.Close()
	}
	c.JSON(http.StatusOK, FlowResponse{Flow: h.registry.Snapshot(deviceID(c))})
}

// SetPhone godoc
// @Summary Update phone input
// @Tags auth
// @Accept json
// @Produce json
// @Param X-Device-ID header string false "Device identifier"
// @Param data body PhoneInputRequest true "Phone number and optional country code"
// @Success 200 {object} FlowResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /auth/flow/phone [put]
func (h *AuthHandlers) SetPhone(c *gin.Context) {
	var req PhoneInputRequest
	if !h.bind(c, &req) {
		return
	}
	h.run(c, func(ctrl *flow.Controller) error {
		if req.CountryCode != nil {
			if err := ctrl.SetCountryCode(*req.CountryCode); err != nil {
				return err
			}
		}
		return ctrl.SetPhone(req.PhoneNumber)
	})
}

// SubmitPhone godoc
// @Summary Request verification code
// @Description Validates the phone input and asks the verification service for a code. Service failures are reported in the phone view error.
// @Tags auth
// @Produce json
// @Param X-Device-ID header string false "Device identifier"
// @Success 200 {object} FlowResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /auth/flow/phone/submit [post]
func (h *AuthHandlers) SubmitPhone(c *gin.Context) {
	h.run(c, func(ctrl *flow.Controller) error { return ctrl.SubmitPhone(c.Request.Context()) })
}

// SetOTPDigit godoc
// @Summary Update one code cell
// @Tags auth
// @Accept json
// @Produce json
// @Param X-Device-ID header string false "Device identifier"
// @Param data body OTPDigitRequest true "Cell index and digit"
// @Success 200 {object} FlowResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /auth/flow/otp/digit [put]
func (h *AuthHandlers) SetOTPDigit(c *gin.Context) {
	var req OTPDigitRequest
	if !h.bind(c, &req) {
		return
	}
	h.runFocus(c, func(ctrl *flow.Controller) (int, error) { return ctrl.SetOTPDigit(req.Index, req.Value) })
}

// BackspaceOTP godoc
// @Summary Clear one code cell
// @Tags auth
// @Accept json
// @Produce json
// @Param X-Device-ID header string false "Device identifier"
// @Param data body OTPBackspaceRequest true "Cell index"
// @Success 200 {object} FlowResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/flow/otp/backspace [post]
func (h *AuthHandlers) BackspaceOTP(c *gin.Context) {
	var req OTPBackspaceRequest
	if !h.bind(c, &req) {
		return
	}
	h.runFocus(c, func(ctrl *flow.Controller) (int, error) { return ctrl.BackspaceOTP(req.Index) })
}

// PasteOTP godoc
// @Summary Paste a verification code
// @Tags auth
// @Accept json
// @Produce json
// @Param X-Device-ID header string false "Device identifier"
// @Param data body OTPPasteRequest true "Pasted text"
// @Success 200 {object} FlowResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /auth/flow/otp/paste [post]
func (h *AuthHandlers) PasteOTP(c *gin.Context) {
	var req OTPPasteRequest
	if !h.bind(c, &req) {
		return
	}
	h.runFocus(c, func(ctrl *flow.Controller) (int, error) { return ctrl.PasteOTP(req.Text) })
}

// SubmitOTP godoc
// @Summary Verify code
// @Description Verifies the entered code. On success the identity is stored and a login event is broadcast.
// @Tags auth
// @Produce json
// @Param X-Device-ID header string false "Device identifier"
// @Success 200 {object} FlowResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /auth/flow/otp/submit [post]
func (h *AuthHandlers) SubmitOTP(c *gin.Context) {
	h.run(c, func(ctrl *flow.Controller) error { return ctrl.SubmitOTP(c.Request.Context()) })
}

// Resend godoc
// @Summary Resend code
// @Description Requests a new code once the resend countdown has reached zero
// @Tags auth
// @Produce json
// @Param X-Device-ID header string false "Device identifier"
// @Success 200 {object} FlowResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/flow/otp/resend [post]
func (h *AuthHandlers) Resend(c *gin.Context) {
	h.run(c, func(ctrl *flow.Controller) error { return ctrl.Resend(c.Request.Context()) })
}

// Back godoc
// @Summary Back to phone step
// @Tags auth
// @Produce json
// @Param X-Device-ID header string false "Device identifier"
// @Success 200 {object} FlowResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/flow/otp/back [post]
func (h *AuthHandlers) Back(c *gin.Context) {
	h.run(c, func(ctrl *flow.Controller) error { return ctrl.Back() })
}

// SetName godoc
// @Summary Update name input
// @Tags auth
// @Accept json
// @Produce json
// @Param X-Device-ID header string false "Device identifier"
// @Param data body NameRequest true "Display name"
// @Success 200 {object} FlowResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/flow/profile [put]
func (h *AuthHandlers) SetName(c *gin.Context) {
	var req NameRequest
	if !h.bind(c, &req) {
		return
	}
	h.run(c, func(ctrl *flow.Controller) error { return ctrl.SetName(req.Name) })
}

// SubmitProfile godoc
// @Summary Save display name
// @Tags auth
// @Produce json
// @Param X-Device-ID header string false "Device identifier"
// @Success 200 {object} FlowResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /auth/flow/profile/submit [post]
func (h *AuthHandlers) SubmitProfile(c *gin.Context) {
	h.run(c, func(ctrl *flow.Controller) error { return ctrl.SubmitProfile(c.Request.Context()) })
}

// Skip godoc
// @Summary Skip profile step
// @Tags auth
// @Produce json
// @Param X-Device-ID header string false "Device identifier"
// @Success 200 {object} FlowResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/flow/profile/skip [post]
func (h *AuthHandlers) Skip(c *gin.Context) {
	h.run(c, func(ctrl *flow.Controller) error { return ctrl.Skip() })
}

// Finish godoc
// @Summary Finish login
// @Description Closes the flow and returns the post-login destination
// @Tags auth
// @Produce json
// @Param X-Device-ID header string false "Device identifier"
// @Success 200 {object} FinishResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/flow/finish [post]
func (h *AuthHandlers) Finish(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	dest, err := ctrl.Finish(c.Request.Context())
	if err != nil {
		h.fail(c, ctrl, err)
		return
	}
	c.JSON(http.StatusOK, FinishResponse{Destination: dest})
}

// GetIdentity godoc
// @Summary Get authenticated identity
// @Tags auth
// @Produce json
// @Param X-Device-ID header string false "Device identifier"
// @Success 200 {object} IdentityResponse
// @Failure 404 {object} ErrorResponse
// @Router /auth/identity [get]
func (h *AuthHandlers) GetIdentity(c *gin.Context) {
	id, err := h.registry.Store(deviceID(c)).LoadIdentity(c.Request.Context())
	if err != nil {
		h.fail(c, nil, err)
		return
	}
	if id == nil {
		h.fail(c, nil, models.ErrIdentityNotFound)
		return
	}
	c.JSON(http.StatusOK, IdentityResponse{ID: id.ID, Name: id.Name, Phone: id.Phone, IsVerified: id.IsVerified})
}

// Logout godoc
// @Summary Log out
// @Description Removes the stored identity and broadcasts a logout event
// @Tags auth
// @Param X-Device-ID header string false "Device identifier"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /auth/identity [delete]
func (h *AuthHandlers) Logout(c *gin.Context) {
	id := deviceID(c)
	if err := flow.Logout(c.Request.Context(), h.registry.Store(id), h.registry.Events(), id); err != nil {
		h.fail(c, nil, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StreamEvents godoc
// @Summary Stream events
// @Description Server-sent events for the caller's device: state changes, notifications and navigation, plus login and logout broadcasts
// @Tags auth
// @Produce text/event-stream
// @Param X-Device-ID header string false "Device identifier"
// @Success 200
// @Router /auth/events [get]
func (h *AuthHandlers) StreamEvents(c *gin.Context) {
	ch, cancel := h.events.Subscribe(events.ForDevice(deviceID(c)))
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		return streamNext(ctx, c, ch)
	})
}

func streamNext(ctx context.Context, c *gin.Context, ch <-chan events.Event) bool {
	select {
	case <-ctx.Done():
		return false
	case ev, ok := <-ch:
		if !ok {
			return false
		}
		c.SSEvent(string(ev.Kind), ev)
		return true
	}
}
