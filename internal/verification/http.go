package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prefeitura-rio/app-login/internal/logging"
	"github.com/prefeitura-rio/app-login/internal/observability"
	"github.com/prefeitura-rio/app-login/internal/utils"
	"github.com/prefeitura-rio/app-login/internal/utils/httpclient"
	"go.uber.org/zap"
)

const maxResponseBytes = 1 << 20

// envelope covers the response shapes the service uses: bare payloads,
// {"data": ...} wrappers, and {"success": false, "message": ...} failures.
type envelope struct {
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// HTTPService is the Service backed by the verification HTTP API.
type HTTPService struct {
	baseURL string
	pool    *httpclient.HTTPClientPool
}

// NewHTTPService returns a client for the API rooted at baseURL.
func NewHTTPService(baseURL string, timeout time.Duration) *HTTPService {
	return &HTTPService{
		baseURL: baseURL,
		pool:    httpclient.NewHTTPClientPool(10, timeout),
	}
}

// Close releases pooled clients.
func (s *HTTPService) Close() {
	s.pool.Close()
}

func (s *HTTPService) SendCode(ctx context.Context, req CodeRequest) (*CodeResult, error) {
	var out CodeResult
	if err := s.post(ctx, OpSendCode, "/auth/send-code", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *HTTPService) ResendCode(ctx context.Context, req CodeRequest) (*CodeResult, error) {
	var out CodeResult
	if err := s.post(ctx, OpResendCode, "/auth/resend-code", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *HTTPService) VerifyCode(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	var out VerifyResult
	if err := s.post(ctx, OpVerifyCode, "/auth/verify-code", "", req, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, &RemoteError{Operation: OpVerifyCode, Err: fmt.Errorf("response has no access token")}
	}
	return &out, nil
}

func (s *HTTPService) CompleteProfile(ctx context.Context, accessToken, name string) error {
	body := map[string]string{"name": name}
	return s.post(ctx, OpCompleteProfile, "/auth/complete-profile", accessToken, body, nil)
}

func (s *HTTPService) post(ctx context.Context, op, path, bearer string, in, out interface{}) (err error) {
	url := s.baseURL + path
	logger := logging.Logger.With(zap.String("operation", op))

	ctx, span, cleanup := utils.TraceHTTPOperation(ctx, http.MethodPost, url, path)
	defer cleanup()

	start := time.Now()
	status := 0
	defer func() {
		utils.RecordError(span, err)
		observability.VerificationCallDuration.
			WithLabelValues(op, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	}()

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	client := s.pool.Get()
	defer s.pool.Put(client)

	resp, err := client.Do(req)
	if err != nil {
		logger.Warn("verification service unreachable", zap.Error(err))
		return &RemoteError{Operation: op, Err: err}
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &RemoteError{Operation: op, StatusCode: status, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	var env envelope
	// Non-JSON bodies are tolerated on error statuses.
	decodeErr := json.Unmarshal(body, &env)
	message := env.Message
	if message == "" {
		message = env.Error
	}

	if status < 200 || status >= 300 {
		logger.Warn("verification service returned an error",
			zap.Int("status", status),
			zap.String("message", message))
		return &RemoteError{Operation: op, StatusCode: status, Message: message}
	}
	if decodeErr != nil && len(bytes.TrimSpace(body)) > 0 {
		return &RemoteError{Operation: op, StatusCode: status, Err: fmt.Errorf("failed to decode response: %w", decodeErr)}
	}
	if env.Success != nil && !*env.Success {
		return &RemoteError{Operation: op, StatusCode: status, Message: message}
	}
	if out == nil {
		return nil
	}

	data := body
	if len(env.Data) > 0 && string(env.Data) != "null" {
		data = env.Data
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &RemoteError{Operation: op, StatusCode: status, Err: fmt.Errorf("failed to decode %s payload: %w", op, err)}
	}
	return nil
}
