// Package crm is the HTTP client for the external CRM API: custom field
// and tag creation, contact upsert/update/delete, and the OAuth token
// endpoints. Every call carries a bearer token and the fixed API
// version header.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	apiVersion     = "2021-07-28"
	defaultTimeout = 30 * time.Second
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        logger,
	}
}

// CreateCustomField creates a TEXT custom field and returns its key.
func (c *Client) CreateCustomField(ctx context.Context, accessToken, locationID, name string) (string, error) {
	var out struct {
		CustomField struct {
			ID       string `json:"id"`
			FieldKey string `json:"fieldKey"`
		} `json:"customField"`
	}
	body := map[string]any{"name": name, "dataType": "TEXT"}
	url := fmt.Sprintf("%s/locations/%s/customFields", c.baseURL, locationID)
	if err := c.doJSON(ctx, http.MethodPost, url, accessToken, body, &out); err != nil {
		return "", err
	}
	return out.CustomField.FieldKey, nil
}

// CreateTag creates a tag and returns its id.
func (c *Client) CreateTag(ctx context.Context, accessToken, locationID, name string) (string, error) {
	var out struct {
		Tag struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"tag"`
	}
	url := fmt.Sprintf("%s/locations/%s/tags", c.baseURL, locationID)
	if err := c.doJSON(ctx, http.MethodPost, url, accessToken, map[string]any{"name": name}, &out); err != nil {
		return "", err
	}
	return out.Tag.ID, nil
}

// ListCustomFields returns the raw upstream custom-field listing.
func (c *Client) ListCustomFields(ctx context.Context, accessToken, locationID string) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/locations/%s/customFields", c.baseURL, locationID)
	var out json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, url, accessToken, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTags returns the raw upstream tag listing.
func (c *Client) ListTags(ctx context.Context, accessToken, locationID string) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/locations/%s/tags", c.baseURL, locationID)
	var out json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, url, accessToken, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertContact submits one contact payload and returns the upstream
// contact id.
func (c *Client) UpsertContact(ctx context.Context, accessToken, locationID string, payload map[string]any) (string, error) {
	_ = locationID // already embedded in the payload
	var out struct {
		Contact struct {
			ID string `json:"id"`
		} `json:"contact"`
	}
	url := c.baseURL + "/contacts/upsert"
	if err := c.doJSON(ctx, http.MethodPost, url, accessToken, payload, &out); err != nil {
		return "", err
	}
	return out.Contact.ID, nil
}

// SearchContacts returns the ids of a location's contacts whose first
// name matches, first page only.
func (c *Client) SearchContacts(ctx context.Context, accessToken, locationID, firstNameLower string) ([]string, error) {
	body := map[string]any{
		"locationId": locationID,
		"page":       1,
		"pageLimit":  20,
		"filters": []map[string]any{{
			"field":    "firstNameLowerCase",
			"operator": "eq",
			"value":    firstNameLower,
		}},
	}
	var out struct {
		Contacts []struct {
			ID string `json:"id"`
		} `json:"contacts"`
	}
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/contacts/search", accessToken, body, &out); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(out.Contacts))
	for _, contact := range out.Contacts {
		ids = append(ids, contact.ID)
	}
	return ids, nil
}

// UpdateContactDND flags a contact as do-not-disturb.
func (c *Client) UpdateContactDND(ctx context.Context, accessToken, contactID string) error {
	url := c.baseURL + "/contacts/" + contactID
	return c.doJSON(ctx, http.MethodPut, url, accessToken, map[string]any{"dnd": true}, nil)
}

func (c *Client) DeleteContact(ctx context.Context, accessToken, contactID string) error {
	url := c.baseURL + "/contacts/" + contactID
	return c.doJSON(ctx, http.MethodDelete, url, accessToken, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, url, accessToken string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Version", apiVersion)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}

func (c *Client) apiError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	message := string(bytes.TrimSpace(raw))
	var envelope struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Message) > 0 {
		var s string
		if err := json.Unmarshal(envelope.Message, &s); err == nil {
			message = s
		} else {
			message = string(envelope.Message)
		}
	}

	c.log.Error("crm request failed", "status", resp.StatusCode, "message", message)
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}
