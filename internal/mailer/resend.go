// Package mailer delivers transactional email through the Resend HTTP API.
// The relay sends two independent messages per accepted submission: the
// operator notification (the lead itself) and the sender-facing
// acknowledgment. Each Send is a single attempt; retries and fallbacks are
// the caller's concern.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultEndpoint is the Resend email-send URL.
const DefaultEndpoint = "https://api.resend.com/emails"

// Email is one outbound message.
type Email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Client talks to the Resend API with a bearer key.
type Client struct {
	APIKey   string
	Endpoint string       // defaults to DefaultEndpoint
	HTTP     *http.Client // defaults to a client with a 15s timeout
}

// NewClient constructs a Client for the given API key.
func NewClient(apiKey string) *Client {
	return &Client{APIKey: apiKey}
}

// Send submits one email. A non-2xx provider answer is an error carrying the
// status and a truncated body, so the relay can persist enough context in the
// fallback record for human triage.
func (c *Client) Send(ctx context.Context, msg Email) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("mailer: encode message: %w", err)
	}

	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	hc := c.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("mailer: provider status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
