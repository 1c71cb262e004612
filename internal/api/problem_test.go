package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openacre/loam/internal/store"
	"github.com/openacre/loam/internal/validation"
)

func TestWriteProblem_KnownStatuses(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		detail    string
		wantType  string
		wantTitle string
	}{
		{
			name:      "unauthorized",
			status:    http.StatusUnauthorized,
			detail:    "Missing or invalid admin key",
			wantType:  "https://loam.dev/errors/unauthorized",
			wantTitle: "Unauthorized",
		},
		{
			name:      "bad request",
			status:    http.StatusBadRequest,
			detail:    "Invalid JSON: unexpected EOF",
			wantType:  "https://loam.dev/errors/bad-request",
			wantTitle: "Bad Request",
		},
		{
			name:      "not found",
			status:    http.StatusNotFound,
			detail:    "Inquiry not found",
			wantType:  "https://loam.dev/errors/not-found",
			wantTitle: "Not Found",
		},
		{
			name:      "internal error",
			status:    http.StatusInternalServerError,
			detail:    "Internal Server Error",
			wantType:  "https://loam.dev/errors/internal-error",
			wantTitle: "Internal Server Error",
		},
		{
			name:      "validation error",
			status:    http.StatusUnprocessableEntity,
			detail:    "Request contains invalid fields",
			wantType:  "https://loam.dev/errors/validation-error",
			wantTitle: "Validation Error",
		},
		{
			name:      "service unavailable",
			status:    http.StatusServiceUnavailable,
			detail:    "Store offline",
			wantType:  "https://loam.dev/errors/service-unavailable",
			wantTitle: "Service Unavailable",
		},
		{
			name:      "conflict",
			status:    http.StatusConflict,
			detail:    "Inquiry has already been submitted for projection",
			wantType:  "https://loam.dev/errors/conflict",
			wantTitle: "Conflict",
		},
		{
			name:      "rate limit",
			status:    http.StatusTooManyRequests,
			detail:    "Deletion rate limit exceeded",
			wantType:  "https://loam.dev/errors/rate-limit",
			wantTitle: "Too Many Requests",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/test", nil)
			w := httptest.NewRecorder()

			WriteProblem(w, req, tt.status, tt.detail)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}

			contentType := w.Header().Get("Content-Type")
			if contentType != "application/problem+json" {
				t.Errorf("Content-Type = %q, want application/problem+json", contentType)
			}

			var p Problem
			if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
				t.Fatalf("failed to unmarshal: %v", err)
			}

			if p.Type != tt.wantType {
				t.Errorf("type = %v, want %v", p.Type, tt.wantType)
			}
			if p.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", p.Title, tt.wantTitle)
			}
			if p.Status != tt.status {
				t.Errorf("body status = %d, want %d", p.Status, tt.status)
			}
			if p.Detail != tt.detail {
				t.Errorf("detail = %q, want %q", p.Detail, tt.detail)
			}
			if p.Instance != "/api/v1/test" {
				t.Errorf("instance = %q, want /api/v1/test", p.Instance)
			}
		})
	}
}

func TestWriteProblem_UnknownStatusFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/test", nil)
	w := httptest.NewRecorder()

	WriteProblem(w, req, http.StatusTeapot, "short and stout")

	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTeapot)
	}

	var p Problem
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if p.Type != "https://loam.dev/errors/unknown" {
		t.Errorf("type = %v, want https://loam.dev/errors/unknown", p.Type)
	}
	if p.Title != http.StatusText(http.StatusTeapot) {
		t.Errorf("title = %q, want %q", p.Title, http.StatusText(http.StatusTeapot))
	}
}

func TestProblemWithErrors_Serialization(t *testing.T) {
	p := ProblemWithErrors{
		Problem: Problem{
			Type:     "https://loam.dev/errors/validation-error",
			Title:    "Validation Error",
			Status:   422,
			Detail:   "Request contains invalid fields",
			Instance: "/api/v1/inquiries",
		},
		Errors: []validation.ValidationError{
			{Field: "address", Message: "address is required"},
			{Field: "lot_size", Message: "lot_size must be positive"},
		},
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	errList, ok := raw["errors"].([]any)
	if !ok {
		t.Fatalf("errors field missing or not an array: %v", raw["errors"])
	}
	if len(errList) != 2 {
		t.Errorf("len(errors) = %d, want 2", len(errList))
	}

	first, ok := errList[0].(map[string]any)
	if !ok {
		t.Fatalf("errors[0] is not an object")
	}
	if first["field"] != "address" {
		t.Errorf("errors[0].field = %v, want address", first["field"])
	}
}

func TestWriteProblemWithErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inquiries", nil)
	w := httptest.NewRecorder()

	errs := []validation.ValidationError{
		{Field: "address", Message: "address must be at least 5 characters"},
	}
	WriteProblemWithErrors(w, req, "Request contains invalid fields", errs)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}

	contentType := w.Header().Get("Content-Type")
	if contentType != "application/problem+json" {
		t.Errorf("Content-Type = %q, want application/problem+json", contentType)
	}

	var p ProblemWithErrors
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if p.Detail != "Request contains invalid fields" {
		t.Errorf("detail = %q", p.Detail)
	}
	if len(p.Errors) != 1 || p.Errors[0].Field != "address" {
		t.Errorf("errors = %v, want address error", p.Errors)
	}
}

func TestWriteProblemConflict(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inquiries/abc/projection", nil)
	w := httptest.NewRecorder()

	WriteProblemConflict(w, req, "Questionnaire must be completed before requesting a projection")

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}

	var p Problem
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if p.Type != "https://loam.dev/errors/conflict" {
		t.Errorf("type = %v, want https://loam.dev/errors/conflict", p.Type)
	}
	if p.Detail != "Questionnaire must be completed before requesting a projection" {
		t.Errorf("detail = %q", p.Detail)
	}
}

func TestMapStoreError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "not found",
			err:        store.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantDetail: "Inquiry not found",
		},
		{
			name:       "invalid question",
			err:        store.ErrInvalidQuestion,
			wantStatus: http.StatusNotFound,
			wantDetail: "Question not found",
		},
		{
			name:       "already processed",
			err:        store.ErrAlreadyProcessed,
			wantStatus: http.StatusConflict,
			wantDetail: "Inquiry has already been submitted for projection",
		},
		{
			name:       "not processing",
			err:        store.ErrNotProcessing,
			wantStatus: http.StatusConflict,
			wantDetail: "Inquiry is not processing",
		},
		{
			name:       "unknown error",
			err:        errors.New("sqlite: disk I/O error at /var/lib/loam/loam.db"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/test", nil)
			w := httptest.NewRecorder()

			MapStoreError(w, req, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			var p Problem
			if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
				t.Fatalf("failed to unmarshal: %v", err)
			}

			if p.Detail != tt.wantDetail {
				t.Errorf("detail = %q, want %q", p.Detail, tt.wantDetail)
			}
		})
	}
}

func TestMapStoreError_NoInternalLeak(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/test", nil)
	w := httptest.NewRecorder()

	MapStoreError(w, req, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	body := w.Body.String()
	if strings.Contains(body, "10.0.0.5") || strings.Contains(body, "connection refused") {
		t.Errorf("response leaks internal error details: %s", body)
	}
}

func TestMapStoreError_WrappedErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/test", nil)
	w := httptest.NewRecorder()

	wrapped := errors.Join(errors.New("get inquiry"), store.ErrNotFound)
	MapStoreError(w, req, wrapped)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d for wrapped ErrNotFound", w.Code, http.StatusNotFound)
	}
}
