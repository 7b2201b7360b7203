package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	httpclient "lead-gateway/internal/common/http"
)

const target = "airtable"

// CRMClient creates records in one Airtable table.
type CRMClient struct {
	apiKey     string
	baseURL    string
	baseID     string
	tableName  string
	typecast   bool
	httpClient *httpclient.Client
}

type Record struct {
	ID          string                 `json:"id,omitempty"`
	CreatedTime string                 `json:"createdTime,omitempty"`
	Fields      map[string]interface{} `json:"fields"`
}

type createRecordRequest struct {
	Fields   map[string]interface{} `json:"fields"`
	Typecast bool                   `json:"typecast,omitempty"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewCRMClient(baseURL, apiKey, baseID, tableName string, typecast bool, httpClient *httpclient.Client) *CRMClient {
	return &CRMClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		baseID:     baseID,
		tableName:  tableName,
		typecast:   typecast,
		httpClient: httpClient,
	}
}

func (c *CRMClient) recordsURL() string {
	return fmt.Sprintf("%s/v0/%s/%s", c.baseURL, c.baseID, url.PathEscape(c.tableName))
}

// CreateRecord inserts fields as a new row and returns its record id.
func (c *CRMClient) CreateRecord(ctx context.Context, fields map[string]interface{}) (string, error) {
	jsonData, err := json.Marshal(createRecordRequest{Fields: fields, Typecast: c.typecast})
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.recordsURL(), bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(ctx, target, req)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var apiErr errorResponse
		if json.Unmarshal(resp.Body, &apiErr) == nil && apiErr.Error.Type != "" {
			return "", fmt.Errorf("failed to create record (status %d): %s: %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}
		return "", fmt.Errorf("failed to create record (status %d): %s", resp.StatusCode, string(resp.Body))
	}

	var record Record
	if err := json.Unmarshal(resp.Body, &record); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if record.ID == "" {
		return "", fmt.Errorf("no record id in response")
	}

	return record.ID, nil
}
