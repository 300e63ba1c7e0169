package verification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedCode(code string) FakeOption {
	return WithCodeGenerator(func() string { return code })
}

func TestFakeService_SendAndVerify(t *testing.T) {
	svc := NewFakeService(time.Minute, fixedCode("123456"))
	ctx := context.Background()

	sent, err := svc.SendCode(ctx, CodeRequest{CountryCode: "+966", PhoneNumber: "501234567"})
	require.NoError(t, err)
	assert.Equal(t, "+966501234567", sent.ServerPhoneKey)
	require.NotNil(t, sent.IssuedCode)
	assert.Equal(t, "123456", *sent.IssuedCode)

	res, err := svc.VerifyCode(ctx, VerifyRequest{ServerPhoneKey: sent.ServerPhoneKey, Code: "123456"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Empty(t, res.User.Name)
	assert.True(t, res.User.IsVerified)

	// Codes are single use
	_, err = svc.VerifyCode(ctx, VerifyRequest{ServerPhoneKey: sent.ServerPhoneKey, Code: "123456"})
	assert.Error(t, err)
}

func TestFakeService_WrongCode(t *testing.T) {
	svc := NewFakeService(time.Minute, fixedCode("123456"))
	ctx := context.Background()

	sent, err := svc.SendCode(ctx, CodeRequest{CountryCode: "+966", PhoneNumber: "501234567"})
	require.NoError(t, err)

	_, err = svc.VerifyCode(ctx, VerifyRequest{ServerPhoneKey: sent.ServerPhoneKey, Code: "000000"})
	assert.Equal(t, "Invalid verification code", UserMessage(err, ""))
}

func TestFakeService_Expiry(t *testing.T) {
	svc := NewFakeService(time.Minute, fixedCode("123456"))
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	sent, err := svc.SendCode(ctx, CodeRequest{CountryCode: "+966", PhoneNumber: "501234567"})
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = svc.VerifyCode(ctx, VerifyRequest{ServerPhoneKey: sent.ServerPhoneKey, Code: "123456"})
	assert.Error(t, err)
}

func TestFakeService_KnownAccountAndProfile(t *testing.T) {
	svc := NewFakeService(time.Minute, fixedCode("654321"), WithAccount("+966501234567", "Sara"), WithoutEcho())
	ctx := context.Background()

	sent, err := svc.SendCode(ctx, CodeRequest{CountryCode: "+966", PhoneNumber: "501234567"})
	require.NoError(t, err)
	assert.Nil(t, sent.IssuedCode)

	res, err := svc.VerifyCode(ctx, VerifyRequest{ServerPhoneKey: sent.ServerPhoneKey, Code: "654321"})
	require.NoError(t, err)
	assert.Equal(t, "Sara", res.User.Name)

	require.NoError(t, svc.CompleteProfile(ctx, res.AccessToken, " Noura "))
	assert.Equal(t, "Noura", svc.accounts["+966501234567"].name)

	assert.Error(t, svc.CompleteProfile(ctx, "bogus", "Noura"))
}

func TestFakeService_InvalidPhone(t *testing.T) {
	svc := NewFakeService(time.Minute)

	_, err := svc.SendCode(context.Background(), CodeRequest{CountryCode: "+966", PhoneNumber: "123"})
	assert.Equal(t, "Invalid phone number", UserMessage(err, ""))
}

func TestFakeService_ImplementsService(t *testing.T) {
	var _ Service = NewFakeService(time.Minute)
	var _ Service = NewHTTPService("http://localhost", time.Second)
}
