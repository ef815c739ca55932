// Package client is the Go client for the Introly question API. It attaches
// credentials to every call, reconciles the server's heterogeneous JSON
// payloads into a canonical Question shape, and drives drag-and-drop
// reordering with optimistic updates and rollback.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Question is the canonical client-side question shape. Ids are strings so
// the client is agnostic to the backing store's id type.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Category      string   `json:"category"`
	ApplicableFor []string `json:"applicableFor"`
	Order         int      `json:"order"`
}

// CreateQuestionInput is the payload for creating a question.
type CreateQuestionInput struct {
	Text          string   `json:"text"`
	Category      string   `json:"category"`
	ApplicableFor []string `json:"applicable_for,omitempty"`
}

// UpdateQuestionInput is the payload for a partial update. Nil fields are
// left untouched server-side.
type UpdateQuestionInput struct {
	Text          *string   `json:"text,omitempty"`
	Category      *string   `json:"category,omitempty"`
	ApplicableFor *[]string `json:"applicable_for,omitempty"`
}

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// Client calls the question API on behalf of one admin session.
type Client struct {
	baseURL  string
	token    string
	tenantID string
	httpc    *http.Client
}

// New creates a Client for the given server, bearer token and tenant.
func New(baseURL, token, tenantID string) *Client {
	return &Client{
		baseURL:  baseURL,
		token:    token,
		tenantID: tenantID,
		httpc:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetHTTPClient replaces the underlying HTTP client (timeouts, transports).
func (c *Client) SetHTTPClient(httpc *http.Client) {
	if httpc != nil {
		c.httpc = httpc
	}
}

// ListQuestions fetches the tenant's questions, normalized and sorted.
func (c *Client) ListQuestions(ctx context.Context) ([]Question, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/admin/questions", nil)
	if err != nil {
		return nil, err
	}
	return NormalizeJSON(body), nil
}

// CreateQuestion creates a question at the end of the sequence.
func (c *Client) CreateQuestion(ctx context.Context, in CreateQuestionInput) (Question, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/admin/questions", in)
	if err != nil {
		return Question{}, err
	}
	return firstOrDefault(NormalizeJSON(body)), nil
}

// UpdateQuestion merges the supplied fields into an existing question.
func (c *Client) UpdateQuestion(ctx context.Context, id string, in UpdateQuestionInput) (Question, error) {
	body, err := c.do(ctx, http.MethodPut, "/api/v1/admin/questions/"+id, in)
	if err != nil {
		return Question{}, err
	}
	return firstOrDefault(NormalizeJSON(body)), nil
}

// DeleteQuestion removes a question.
func (c *Client) DeleteQuestion(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/admin/questions/"+id, nil)
	return err
}

// ReorderQuestions submits a new delivery sequence and returns the
// server-confirmed list.
func (c *Client) ReorderQuestions(ctx context.Context, orderedIDs []string) ([]Question, error) {
	payload := map[string][]string{"ordered_ids": orderedIDs}
	body, err := c.do(ctx, http.MethodPut, "/api/v1/admin/questions/reorder", payload)
	if err != nil {
		return nil, err
	}
	return NormalizeJSON(body), nil
}

// do issues one JSON request with credentials attached and returns the raw
// response body, or an *APIError for non-2xx statuses.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.tenantID != "" {
		req.Header.Set("X-Tenant-ID", c.tenantID)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp.StatusCode, body)
	}
	return body, nil
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var envelope struct {
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error != nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		} else if envelope.Message != "" {
			apiErr.Message = envelope.Message
		}
	}
	return apiErr
}

func firstOrDefault(questions []Question) Question {
	if len(questions) == 0 {
		return Question{}
	}
	return questions[0]
}
