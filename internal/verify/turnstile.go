// Package verify implements the server-side half of the Cloudflare Turnstile
// bot-verification gate. The widget on the page issues an opaque token; this
// client submits it (with the caller's network-address hint) to the
// siteverify endpoint and requires an explicit success signal. Any
// non-success outcome is a hard reject.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultEndpoint is Cloudflare's Turnstile verification URL.
const DefaultEndpoint = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// ErrRejected is returned when the verification service answers without an
// explicit success signal.
var ErrRejected = errors.New("verify: challenge rejected")

// Client verifies Turnstile tokens against a shared secret.
type Client struct {
	Secret   string
	Endpoint string       // defaults to DefaultEndpoint
	HTTP     *http.Client // defaults to a client with a 10s timeout
}

// NewClient constructs a Client for the given shared secret.
func NewClient(secret string) *Client {
	return &Client{Secret: secret}
}

// siteverifyResponse is the subset of the response body we act on.
type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify submits token plus the optional remoteIP hint. It returns nil only
// on an explicit success; transport failures and negative answers both fail
// verification.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) error {
	form := url.Values{}
	form.Set("secret", c.Secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	hc := c.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("verify: siteverify call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("verify: read response: %w", err)
	}
	var out siteverifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("verify: decode response: %w", err)
	}
	if !out.Success {
		if len(out.ErrorCodes) > 0 {
			return fmt.Errorf("%w: %s", ErrRejected, strings.Join(out.ErrorCodes, ","))
		}
		return ErrRejected
	}
	return nil
}
