// Package client is a thin typed HTTP client for the Loam API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrGenerationFailed reports that the service marked a projection failed.
var ErrGenerationFailed = errors.New("projection generation failed")

// APIError is an RFC 7807 problem document returned by the service.
type APIError struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail"`
	Instance string       `json:"instance"`
	Errors   []FieldError `json:"errors,omitempty"`
}

// FieldError is a per-field validation failure inside an APIError.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("loam: %s (status %d)", e.Detail, e.Status)
	}
	return fmt.Sprintf("loam: %s (status %d)", e.Title, e.Status)
}

// Client is the Loam API client
type Client struct {
	baseURL  string
	adminKey string
	http     *http.Client
}

// New creates a new Loam client
func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("BaseURL is required")
	}

	// Set defaults
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		baseURL:  strings.TrimRight(config.BaseURL, "/"),
		adminKey: config.AdminKey,
		http:     httpClient,
	}, nil
}

// BaseURL returns the normalized base URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health returns the service health document.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateInquiry opens a new property inquiry.
func (c *Client) CreateInquiry(ctx context.Context, params CreateInquiryParams) (*Inquiry, error) {
	var out Inquiry
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/inquiries", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetInquiry fetches an inquiry record.
func (c *Client) GetInquiry(ctx context.Context, id string) (*Inquiry, error) {
	var out Inquiry
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/inquiries/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetQuestion fetches questionnaire step number for an inquiry, including
// any answer already recorded.
func (c *Client) GetQuestion(ctx context.Context, id string, number int) (*QuestionView, error) {
	path := fmt.Sprintf("/api/v1/inquiries/%s/questions/%d", id, number)
	var out QuestionView
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitAnswer records the answer to questionnaire step number.
func (c *Client) SubmitAnswer(ctx context.Context, id string, number int, response string) (*AnswerResult, error) {
	path := fmt.Sprintf("/api/v1/inquiries/%s/answers/%d", id, number)
	body := struct {
		Response string `json:"response"`
	}{Response: response}

	var out AnswerResult
	if err := c.doJSON(ctx, http.MethodPut, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestProjection asks the service to generate the projection. Generation
// is synchronous server-side, so a completed state usually comes back on the
// first call; re-requesting a completed inquiry returns the stored record.
func (c *Client) RequestProjection(ctx context.Context, id string) (*ProjectionState, error) {
	data, err := c.doRaw(ctx, http.MethodPost, "/api/v1/inquiries/"+id+"/projection", nil)
	if err != nil {
		return nil, err
	}
	return parseProjectionState(data)
}

// GetProjection fetches the projection state without triggering generation.
func (c *Client) GetProjection(ctx context.Context, id string) (*ProjectionState, error) {
	data, err := c.doRaw(ctx, http.MethodGet, "/api/v1/inquiries/"+id+"/projection", nil)
	if err != nil {
		return nil, err
	}
	return parseProjectionState(data)
}

// GetStatus fetches the generation status of an inquiry.
func (c *Client) GetStatus(ctx context.Context, id string) (*GenerationStatus, error) {
	var out GenerationStatus
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/inquiries/"+id+"/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WaitForProjection polls until the projection reaches a terminal state and
// returns the completed record. A failed generation returns an error wrapping
// ErrGenerationFailed.
func (c *Client) WaitForProjection(ctx context.Context, id string, pollInterval time.Duration) (*Inquiry, error) {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		state, err := c.GetProjection(ctx, id)
		if err != nil {
			return nil, err
		}

		switch state.Status {
		case StatusCompleted:
			return state.Inquiry, nil
		case StatusFailed:
			if state.Error != "" {
				return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, state.Error)
			}
			return nil, ErrGenerationFailed
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// ListInquiries fetches a page of inquiries. Requires an admin key.
func (c *Client) ListInquiries(ctx context.Context, params ListParams) (*InquiryPage, error) {
	q := url.Values{}
	if params.Status != "" {
		q.Set("status", string(params.Status))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		q.Set("offset", strconv.Itoa(params.Offset))
	}

	path := "/api/v1/admin/inquiries"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out InquiryPage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats fetches aggregate service statistics. Requires an admin key.
func (c *Client) Stats(ctx context.Context) (*ServiceStats, error) {
	var out ServiceStats
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/admin/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteInquiry permanently deletes an inquiry. Requires an admin key.
func (c *Client) DeleteInquiry(ctx context.Context, id string) error {
	_, err := c.doRaw(ctx, http.MethodDelete, "/api/v1/admin/inquiries/"+id, nil)
	return err
}

// doJSON sends a request and decodes the JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	data, err := c.doRaw(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// doRaw sends a request and returns the response body. Non-2xx responses
// are returned as *APIError.
func (c *Client) doRaw(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.adminKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.adminKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, parseAPIError(resp.StatusCode, data)
	}

	return data, nil
}

// parseAPIError decodes a problem document, falling back to the bare status
// when the body is not a problem.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Status == 0 {
		return &APIError{
			Status: statusCode,
			Title:  http.StatusText(statusCode),
		}
	}
	return apiErr
}

// parseProjectionState decodes a projection response, which is the full
// record when completed and a bare status document otherwise.
func parseProjectionState(data []byte) (*ProjectionState, error) {
	var probe struct {
		Status InquiryStatus `json:"status"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if probe.Status == StatusCompleted {
		var inq Inquiry
		if err := json.Unmarshal(data, &inq); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return &ProjectionState{
			InquiryID:       inq.ID,
			Status:          inq.Status,
			ProgressPercent: 100,
			Inquiry:         &inq,
		}, nil
	}

	var status GenerationStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &ProjectionState{
		InquiryID:       status.InquiryID,
		Status:          status.Status,
		ProgressPercent: status.ProgressPercent,
		Error:           status.Error,
	}, nil
}
