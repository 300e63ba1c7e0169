package flow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prefeitura-rio/app-login/internal/events"
	"github.com/prefeitura-rio/app-login/internal/models"
	"github.com/prefeitura-rio/app-login/internal/session"
	"github.com/prefeitura-rio/app-login/internal/storage"
	"github.com/prefeitura-rio/app-login/internal/timer"
	"github.com/prefeitura-rio/app-login/internal/verification"
	"github.com/stretchr/testify/require"
)

const testPhone = "501234567"

func strPtr(s string) *string { return &s }

// scriptedService answers remote calls with per-test functions and counts
// the calls it receives.
type scriptedService struct {
	mu       sync.Mutex
	calls    map[string]int
	send     func(verification.CodeRequest) (*verification.CodeResult, error)
	resend   func(verification.CodeRequest) (*verification.CodeResult, error)
	verify   func(verification.VerifyRequest) (*verification.VerifyResult, error)
	profile  func(token, name string) error
	profiles []string
}

func newScriptedService() *scriptedService {
	return &scriptedService{
		calls: map[string]int{},
		send: func(req verification.CodeRequest) (*verification.CodeResult, error) {
			return &verification.CodeResult{
				ServerPhoneKey: req.CountryCode + req.PhoneNumber,
				DeliveryMethod: models.DeliveryWhatsApp,
				IssuedCode:     strPtr("123456"),
			}, nil
		},
		verify: func(req verification.VerifyRequest) (*verification.VerifyResult, error) {
			return &verification.VerifyResult{
				AccessToken: "access",
				TokenType:   "Bearer",
				User:        verification.User{ID: "u1", Phone: req.ServerPhoneKey, IsVerified: true},
			}, nil
		},
		profile: func(string, string) error { return nil },
	}
}

func (s *scriptedService) count(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
}

func (s *scriptedService) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *scriptedService) SendCode(_ context.Context, req verification.CodeRequest) (*verification.CodeResult, error) {
	s.count(verification.OpSendCode)
	return s.send(req)
}

func (s *scriptedService) ResendCode(_ context.Context, req verification.CodeRequest) (*verification.CodeResult, error) {
	s.count(verification.OpResendCode)
	if s.resend != nil {
		return s.resend(req)
	}
	return s.send(req)
}

func (s *scriptedService) VerifyCode(_ context.Context, req verification.VerifyRequest) (*verification.VerifyResult, error) {
	s.count(verification.OpVerifyCode)
	return s.verify(req)
}

func (s *scriptedService) CompleteProfile(_ context.Context, token, name string) error {
	s.count(verification.OpCompleteProfile)
	s.mu.Lock()
	s.profiles = append(s.profiles, name)
	s.mu.Unlock()
	return s.profile(token, name)
}

type testTicker struct{ ch chan time.Time }

func (t *testTicker) C() <-chan time.Time { return t.ch }
func (t *testTicker) Stop()               {}

// testClock hands the resend timer tickers that only fire on demand.
type testClock struct {
	mu  sync.Mutex
	cur *testTicker
}

func (c *testClock) factory(time.Duration) timer.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = &testTicker{ch: make(chan time.Time)}
	return c.cur
}

func (c *testClock) advance(t *testing.T, seconds int) {
	t.Helper()
	c.mu.Lock()
	tk := c.cur
	c.mu.Unlock()
	require.NotNil(t, tk, "resend timer never started")

	for i := 0; i < seconds; i++ {
		select {
		case tk.ch <- time.Now():
		case <-time.After(time.Second):
			t.Fatalf("resend timer stopped after %d ticks", i)
		}
	}
}

type harness struct {
	ctrl  *Controller
	svc   *scriptedService
	store *session.Store
	bus   *events.Bus
	clock *testClock
}

func newHarness(t *testing.T, mutate ...func(*Options)) *harness {
	t.Helper()
	svc := newScriptedService()
	store := session.NewStore(storage.NewMemoryKV(), "test:", 0)
	bus := events.NewBus(256)
	clock := &testClock{}

	opts := Options{
		DeviceID:             "device-1",
		Store:                store,
		Service:              svc,
		Events:               bus,
		ResendWindow:         60 * time.Second,
		CloseGraceDelay:      0,
		PostLoginDestination: "/orders",
		AllowedCountryCodes:  []string{"+20", "+966"},
		DefaultCountryCode:   "+966",
		Ticker:               clock.factory,
	}
	for _, m := range mutate {
		m(&opts)
	}

	ctrl := NewController(opts)
	t.Cleanup(ctrl.Close)
	return &harness{ctrl: ctrl, svc: svc, store: store, bus: bus, clock: clock}
}

func (h *harness) open(t *testing.T) {
	t.Helper()
	require.NoError(t, h.ctrl.Open(context.Background()))
}

// toOTP drives the flow from a fresh open to the OTP step.
func (h *harness) toOTP(t *testing.T) {
	t.Helper()
	h.open(t)
	require.NoError(t, h.ctrl.SetPhone(testPhone))
	require.NoError(t, h.ctrl.SubmitPhone(context.Background()))
	require.Equal(t, models.StepOtp, h.ctrl.Snapshot().State.Step)
}

func (h *harness) subscribe(t *testing.T, kind events.Kind) <-chan events.Event {
	t.Helper()
	ch, cancel := h.bus.Subscribe(func(ev events.Event) bool { return ev.Kind == kind })
	t.Cleanup(cancel)
	return ch
}

func waitEvent(t *testing.T, ch <-chan events.Event) events.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("expected event was not published")
		return events.Event{}
	}
}
