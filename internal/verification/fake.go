package verification

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/prefeitura-rio/app-login/internal/logging"
	"github.com/prefeitura-rio/app-login/internal/models"
	"github.com/prefeitura-rio/app-login/internal/observability"
	"github.com/prefeitura-rio/app-login/internal/utils"
	"go.uber.org/zap"
)

type issuedCode struct {
	code      string
	expiresAt time.Time
}

type fakeAccount struct {
	id    string
	name  string
	phone string
}

// FakeService is an in-process verification service for development. It
// issues random codes, echoes them back for autofill, and remembers accounts
// by phone number.
type FakeService struct {
	mu       sync.Mutex
	codes    map[string]issuedCode
	accounts map[string]*fakeAccount
	tokens   map[string]string
	codeTTL  time.Duration
	echo     bool
	now      func() time.Time
	generate func() string
}

// FakeOption customizes a FakeService.
type FakeOption func(*FakeService)

// WithAccount registers an existing account with a display name.
func WithAccount(e164, name string) FakeOption {
	return func(s *FakeService) {
		s.accounts[e164] = &fakeAccount{id: utils.GenerateUUID(), name: name, phone: e164}
	}
}

// WithoutEcho stops the service from returning issued codes.
func WithoutEcho() FakeOption {
	return func(s *FakeService) { s.echo = false }
}

// WithCodeGenerator replaces the random code generator.
func WithCodeGenerator(gen func() string) FakeOption {
	return func(s *FakeService) { s.generate = gen }
}

// NewFakeService returns a FakeService whose codes expire after codeTTL.
func NewFakeService(codeTTL time.Duration, opts ...FakeOption) *FakeService {
	s := &FakeService{
		codes:    make(map[string]issuedCode),
		accounts: make(map[string]*fakeAccount),
		tokens:   make(map[string]string),
		codeTTL:  codeTTL,
		echo:     true,
		now:      time.Now,
		generate: utils.GenerateVerificationCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FakeService) SendCode(ctx context.Context, req CodeRequest) (*CodeResult, error) {
	return s.issue(ctx, OpSendCode, req)
}

func (s *FakeService) ResendCode(ctx context.Context, req CodeRequest) (*CodeResult, error) {
	return s.issue(ctx, OpResendCode, req)
}

func (s *FakeService) issue(ctx context.Context, op string, req CodeRequest) (*CodeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &RemoteError{Operation: op, Err: err}
	}
	phone := strings.TrimSpace(req.PhoneNumber)
	if utils.ValidatePhone(phone) != nil {
		return nil, &RemoteError{Operation: op, StatusCode: 400, Message: "Invalid phone number"}
	}

	key := utils.FormatE164(req.CountryCode, phone)
	code := s.generate()

	s.mu.Lock()
	s.codes[key] = issuedCode{code: code, expiresAt: s.now().Add(s.codeTTL)}
	s.mu.Unlock()

	logging.Logger.Info("issued verification code",
		zap.String("operation", op),
		zap.String("phone", observability.MaskPhone(key)))

	result := &CodeResult{ServerPhoneKey: key, DeliveryMethod: models.DeliveryWhatsApp}
	if s.echo {
		result.IssuedCode = &code
	}
	return result, nil
}

func (s *FakeService) VerifyCode(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &RemoteError{Operation: OpVerifyCode, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	issued, ok := s.codes[req.ServerPhoneKey]
	if !ok || s.now().After(issued.expiresAt) {
		delete(s.codes, req.ServerPhoneKey)
		return nil, &RemoteError{Operation: OpVerifyCode, StatusCode: 400, Message: "Verification code expired, request a new one"}
	}
	if issued.code != req.Code {
		return nil, &RemoteError{Operation: OpVerifyCode, StatusCode: 400, Message: "Invalid verification code"}
	}
	delete(s.codes, req.ServerPhoneKey)

	acct, ok := s.accounts[req.ServerPhoneKey]
	if !ok {
		acct = &fakeAccount{id: utils.GenerateUUID(), phone: req.ServerPhoneKey}
		s.accounts[req.ServerPhoneKey] = acct
	}

	token := utils.GenerateUUID()
	s.tokens[token] = req.ServerPhoneKey

	return &VerifyResult{
		AccessToken:  token,
		RefreshToken: utils.GenerateUUID(),
		TokenType:    "Bearer",
		User: User{
			ID:         acct.id,
			Name:       acct.name,
			Phone:      acct.phone,
			IsVerified: true,
		},
	}, nil
}

func (s *FakeService) CompleteProfile(ctx context.Context, accessToken, name string) error {
	if err := ctx.Err(); err != nil {
		return &RemoteError{Operation: OpCompleteProfile, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	phone, ok := s.tokens[accessToken]
	if !ok {
		return &RemoteError{Operation: OpCompleteProfile, StatusCode: 401, Message: "Unauthorized"}
	}
	s.accounts[phone].name = strings.TrimSpace(name)
	return nil
}
