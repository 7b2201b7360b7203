// internal/common/leadexec/client.go
package leadexec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"lead-gateway/internal/common/errors"
	httpclient "lead-gateway/internal/common/http"
)

const (
	targetAuth   = "leadexec_auth"
	targetInsert = "leadexec_insert"

	grantTypeClientCredentials = "client_credentials"
)

// Client talks to the lead-distribution API: the client-credentials token
// endpoint and the lead insert endpoint.
type Client struct {
	authURL    string
	insertURL  string
	httpClient *httpclient.Client
}

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
}

func NewClient(authURL, insertURL string, httpClient *httpclient.Client) *Client {
	return &Client{
		authURL:    authURL,
		insertURL:  insertURL,
		httpClient: httpClient,
	}
}

// RequestToken exchanges client credentials for an access token. A response
// without a usable access_token yields an AUTHENTICATION_FAILED error carrying
// the upstream "error" member; transport and decode failures are plain errors.
func (c *Client) RequestToken(ctx context.Context, clientID, clientSecret string) (string, error) {
	payload, err := json.Marshal(tokenRequest{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		GrantType:    grantTypeClientCredentials,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(ctx, targetAuth, req)
	if err != nil {
		return "", err
	}

	var body map[string]interface{}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", fmt.Errorf("failed to decode token response (status %d): %w", resp.StatusCode, err)
	}

	token, _ := body["access_token"].(string)
	if token == "" {
		return "", errors.NewAuthenticationFailedError(body["error"])
	}

	return token, nil
}

// Insert posts the enriched lead payload with the given credential header.
// The upstream status and raw body are returned whatever the status code.
func (c *Client) Insert(ctx context.Context, payload []byte, cred *Credential) (*httpclient.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.insertURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create insert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cred != nil {
		req.Header.Set(cred.Header, cred.Value)
	}

	return c.httpClient.Do(ctx, targetInsert, req)
}
