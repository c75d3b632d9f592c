package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

type SMSSender interface {
	SendSMS(ctx context.Context, to, text string) error
}

const vonageEndpoint = "https://rest.nexmo.com/sms/json"

type vonageService struct {
	apiKey    string
	apiSecret string
	from      string
	endpoint  string
	client    *http.Client
}

func NewVonageService(apiKey, apiSecret, from string) SMSSender {
	return &vonageService{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		from:      from,
		endpoint:  vonageEndpoint,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type vonageResponse struct {
	Messages []struct {
		Status    string `json:"status"`
		ErrorText string `json:"error-text"`
	} `json:"messages"`
}

func (s *vonageService) SendSMS(ctx context.Context, to, text string) error {
	form := url.Values{}
	form.Set("api_key", s.apiKey)
	form.Set("api_secret", s.apiSecret)
	form.Set("to", to)
	form.Set("from", s.from)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("vonage: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("vonage: send sms: %w", err)
	}
	defer res.Body.Close()

	var result vonageResponse
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return fmt.Errorf("vonage: decode response: %w", err)
	}
	if len(result.Messages) == 0 {
		return errors.New("vonage: empty response")
	}
	if result.Messages[0].Status != "0" {
		return fmt.Errorf("vonage: send failed with status %s: %s", result.Messages[0].Status, result.Messages[0].ErrorText)
	}
	return nil
}

// logSMSSender is the credential-less fallback for local runs: it logs
// the message instead of sending it.
type logSMSSender struct{}

func NewLogSMSSender() SMSSender {
	return logSMSSender{}
}

func (logSMSSender) SendSMS(ctx context.Context, to, text string) error {
	log.WithFields(log.Fields{"to": to, "text": text}).Info("sms (not sent, no credentials)")
	return nil
}
