package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/MattchuPichuu/WarDaddy/pkg/service"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

const (
	defaultWebhookTimeout = 10 * time.Second
	maxErrorBody          = 512
)

// WebhookClient posts messages to Discord webhooks. Every call goes through a
// circuit breaker; nothing is retried automatically, the caller re-invokes.
type WebhookClient struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// WebhookOption is a functional option for configuring a WebhookClient.
type WebhookOption func(*WebhookClient)

// WithHTTPClient replaces the underlying http client.
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *WebhookClient) {
		w.client = c
	}
}

// NewWebhookClient creates a client whose requests time out after timeout.
func NewWebhookClient(timeout time.Duration, opts ...WebhookOption) *WebhookClient {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}

	w := &WebhookClient{
		client: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        "discord-webhook",
			MaxRequests: 1,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logrus.Warnf("circuit breaker %s: %s -> %s", name, from, to)
			},
		}),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// ValidateURL checks that raw is an absolute http(s) URL.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: invalid webhook url", service.ErrInvalidInput)
	}
	return nil
}

// Post delivers payload to the webhook at webhookURL.
// Any failure is reported as service.ErrDeliveryFailure.
func (w *WebhookClient) Post(ctx context.Context, webhookURL string, payload Payload) error {
	if err := ValidateURL(webhookURL); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	var respBody []byte
	resp, err := w.breaker.Execute(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		r, err := w.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer r.Body.Close()

		respBody, _ = io.ReadAll(io.LimitReader(r.Body, maxErrorBody))

		// only upstream trouble counts against the breaker
		if r.StatusCode >= 500 || r.StatusCode == http.StatusTooManyRequests {
			return r, statusError(r.StatusCode, respBody)
		}
		return r, nil
	})
	if err != nil {
		logrus.Errorf("webhook delivery failed: %v", err)
		return fmt.Errorf("%w: %v", service.ErrDeliveryFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := statusError(resp.StatusCode, respBody)
		logrus.Errorf("webhook delivery rejected: %v", err)
		return fmt.Errorf("%w: %v", service.ErrDeliveryFailure, err)
	}

	logrus.Debugf("webhook delivered with status %d", resp.StatusCode)
	return nil
}

// statusError prefers Discord's own error message when the body carries one.
func statusError(status int, body []byte) error {
	var discordErr struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &discordErr); err == nil && discordErr.Message != "" {
		return fmt.Errorf("discord returned %d: %s", status, discordErr.Message)
	}
	return fmt.Errorf("discord returned %d", status)
}
