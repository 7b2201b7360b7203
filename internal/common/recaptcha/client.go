// internal/common/recaptcha/client.go
package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	httpclient "lead-gateway/internal/common/http"
)

const target = "recaptcha"

// Client calls the reCAPTCHA siteverify endpoint.
type Client struct {
	verifyURL  string
	secret     string
	httpClient *httpclient.Client
}

// SiteVerifyResponse is the siteverify JSON body. Score is nil when the
// service omits it (v2 checkbox keys).
type SiteVerifyResponse struct {
	Success     bool     `json:"success"`
	Score       *float64 `json:"score,omitempty"`
	Action      string   `json:"action,omitempty"`
	Hostname    string   `json:"hostname,omitempty"`
	ChallengeTS string   `json:"challenge_ts,omitempty"`
	ErrorCodes  []string `json:"error-codes,omitempty"`
}

func NewClient(verifyURL, secret string, httpClient *httpclient.Client) *Client {
	return &Client{
		verifyURL:  verifyURL,
		secret:     secret,
		httpClient: httpClient,
	}
}

// Verify posts the secret and token. Any transport failure or a body that is
// not JSON is returned as an error.
func (c *Client) Verify(ctx context.Context, token string) (*SiteVerifyResponse, error) {
	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(ctx, target, req)
	if err != nil {
		return nil, err
	}

	var result SiteVerifyResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode siteverify response (status %d): %w", resp.StatusCode, err)
	}

	return &result, nil
}
