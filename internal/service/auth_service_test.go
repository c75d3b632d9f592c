package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptopulse/backend/internal/repository"
)

type fakeSMS struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSMS) SendSMS(ctx context.Context, to, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeSMS) lastCode(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	text := f.sent[len(f.sent)-1]
	idx := strings.LastIndex(text, " ")
	require.Greater(t, idx, 0)
	return text[idx+1:]
}

func TestSendCodeRequiresPhone(t *testing.T) {
	svc := NewAuthService(repository.NewMemoryOTPStore(), &fakeSMS{}, time.Minute)
	err := svc.SendCode(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrPhoneRequired)
}

func TestVerifyCodeRoundTrip(t *testing.T) {
	sender := &fakeSMS{}
	svc := NewAuthService(repository.NewMemoryOTPStore(), sender, time.Minute)
	ctx := context.Background()

	require.NoError(t, svc.SendCode(ctx, "+15550001111"))
	code := sender.lastCode(t)
	require.Len(t, code, 6)

	require.NoError(t, svc.VerifyCode(ctx, "+15550001111", code))

	// The code is consumed on first use.
	assert.ErrorIs(t, svc.VerifyCode(ctx, "+15550001111", code), ErrInvalidCode)
}

func TestVerifyCodeRejectsWrongCode(t *testing.T) {
	sender := &fakeSMS{}
	svc := NewAuthService(repository.NewMemoryOTPStore(), sender, time.Minute)
	ctx := context.Background()

	require.NoError(t, svc.SendCode(ctx, "+15550001111"))

	assert.ErrorIs(t, svc.VerifyCode(ctx, "+15550001111", "000000"), ErrInvalidCode)
	assert.ErrorIs(t, svc.VerifyCode(ctx, "+15559999999", sender.lastCode(t)), ErrInvalidCode)

	// A wrong attempt does not burn the real code.
	assert.NoError(t, svc.VerifyCode(ctx, "+15550001111", sender.lastCode(t)))
}

func TestVerifyCodeExpires(t *testing.T) {
	sender := &fakeSMS{}
	svc := NewAuthService(repository.NewMemoryOTPStore(), sender, time.Second).(*authService)
	svc.ttl = 10 * time.Millisecond
	ctx := context.Background()

	require.NoError(t, svc.SendCode(ctx, "+15550001111"))
	code := sender.lastCode(t)

	time.Sleep(30 * time.Millisecond)
	assert.ErrorIs(t, svc.VerifyCode(ctx, "+15550001111", code), ErrInvalidCode)
}

func TestVonageSendSMS(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "key", r.PostForm.Get("api_key"))
		assert.Equal(t, "+15550001111", r.PostForm.Get("to"))
		assert.Equal(t, "CryptoPulse", r.PostForm.Get("from"))
		w.Write([]byte(`{"messages":[{"status":"0"}]}`))
	}))
	defer server.Close()

	svc := NewVonageService("key", "secret", "CryptoPulse").(*vonageService)
	svc.endpoint = server.URL

	assert.NoError(t, svc.SendSMS(context.Background(), "+15550001111", "Your CryptoPulse code is: 123456"))
}

func TestVonageSendSMSFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"messages":[{"status":"2","error-text":"Missing to param"}]}`))
	}))
	defer server.Close()

	svc := NewVonageService("key", "secret", "CryptoPulse").(*vonageService)
	svc.endpoint = server.URL

	err := svc.SendSMS(context.Background(), "", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing to param")
}
