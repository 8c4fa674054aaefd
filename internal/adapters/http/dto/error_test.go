package dto_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jsamuelsen11/storefront-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/storefront-service/internal/domain"
)

func bodyViolations(fields ...string) *domain.ValidationError {
	verr := domain.NewValidationError(domain.LocationBody)
	for _, f := range fields {
		verr.Missing(f)
	}
	return verr
}

func TestNewErrorResponse_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantTitle  string
		wantCode   string
	}{
		{
			name:       "NotFoundError maps to 404",
			err:        domain.NotFound("order", 42),
			wantStatus: http.StatusNotFound,
			wantTitle:  "Not Found",
			wantCode:   dto.CodeNotFound,
		},
		{
			name:       "ValidationError maps to 400",
			err:        bodyViolations("name"),
			wantStatus: http.StatusBadRequest,
			wantTitle:  "Bad Request",
			wantCode:   dto.CodeValidation,
		},
		{
			name:       "ConflictError maps to 409",
			err:        &domain.ConflictError{Resource: "user", Field: "username", Value: "jdoe"},
			wantStatus: http.StatusConflict,
			wantTitle:  "Conflict",
			wantCode:   dto.CodeConflict,
		},
		{
			name:       "ErrUnavailable maps to 503",
			err:        fmt.Errorf("storage product.get: %w", domain.ErrUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantTitle:  "Service Unavailable",
			wantCode:   dto.CodeUnavailable,
		},
		{
			name:       "unknown error maps to 500",
			err:        errors.New("oops"),
			wantStatus: http.StatusInternalServerError,
			wantTitle:  "Internal Server Error",
			wantCode:   dto.CodeInternal,
		},
		{
			name:       "wrapped ErrNotFound preserves mapping",
			err:        fmt.Errorf("resolving user: %w", domain.NotFound("user", 7)),
			wantStatus: http.StatusNotFound,
			wantTitle:  "Not Found",
			wantCode:   dto.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/orders/42", nil)
			got := dto.NewErrorResponse(r, tt.err)

			if got.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", got.Status, tt.wantStatus)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestNewErrorResponse_Fields(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/orders/order-number/XYZ", nil)
	err := &domain.NotFoundError{Resource: "order", Key: "orderNumber", Value: "XYZ"}

	got := dto.NewErrorResponse(r, err)

	if got.Type != "about:blank" {
		t.Errorf("Type = %q, want %q", got.Type, "about:blank")
	}
	if got.Instance != "/orders/order-number/XYZ" {
		t.Errorf("Instance = %q, want %q", got.Instance, "/orders/order-number/XYZ")
	}
	if got.Detail != "order with orderNumber XYZ not found" {
		t.Errorf("Detail = %q, want %q", got.Detail, "order with orderNumber XYZ not found")
	}
}

func TestNewErrorResponse_HidesInternalDetail(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/products", nil)
	got := dto.NewErrorResponse(r, errors.New("dial tcp 10.0.0.5:3306: secret topology"))

	if strings.Contains(got.Detail, "10.0.0.5") {
		t.Errorf("Detail = %q, leaks the internal error", got.Detail)
	}
	if got.Detail == "" {
		t.Error("Detail is empty, want a generic message")
	}
}

func TestNewErrorResponse_ValidationErrors(t *testing.T) {
	t.Parallel()

	verr := domain.NewValidationError(domain.LocationBody)
	verr.Missing("userId")
	verr.OutOfRange("items[0].quantity", "must be >= 1")
	verr.Invalid("status", `unknown status "LOST"`)

	r := httptest.NewRequest(http.MethodPost, "/orders", nil)
	got := dto.NewErrorResponse(r, verr)

	if len(got.Errors) != 3 {
		t.Fatalf("len(Errors) = %d, want 3", len(got.Errors))
	}

	for i := 1; i < len(got.Errors); i++ {
		if got.Errors[i-1].Location >= got.Errors[i].Location {
			t.Errorf("Errors not sorted: %q >= %q", got.Errors[i-1].Location, got.Errors[i].Location)
		}
	}

	want := map[string]string{
		"body.items[0].quantity": "out_of_range",
		"body.status":            "invalid",
		"body.userId":            "missing",
	}
	for _, detail := range got.Errors {
		if want[detail.Location] != detail.Code {
			t.Errorf("Errors[%q].Code = %q, want %q", detail.Location, detail.Code, want[detail.Location])
		}
	}
}

func TestNewErrorResponse_QueryLocation(t *testing.T) {
	t.Parallel()

	verr := domain.NewValidationError(domain.LocationQuery)
	verr.Invalid("sort", "unknown sort field")

	r := httptest.NewRequest(http.MethodGet, "/products?sort=bogus", nil)
	got := dto.NewErrorResponse(r, verr)

	if len(got.Errors) != 1 || got.Errors[0].Location != "query.sort" {
		t.Errorf("Errors = %+v, want one entry at query.sort", got.Errors)
	}
}

func TestNewErrorResponse_EmptyLocationDefaultsToBody(t *testing.T) {
	t.Parallel()

	verr := &domain.ValidationError{Fields: map[string]domain.Violation{
		"name": {Kind: domain.KindMissing, Message: domain.MsgRequired},
	}}

	r := httptest.NewRequest(http.MethodPost, "/products", nil)
	got := dto.NewErrorResponse(r, verr)

	if len(got.Errors) != 1 || got.Errors[0].Location != "body.name" {
		t.Errorf("Errors = %+v, want one entry at body.name", got.Errors)
	}
}

func TestNewErrorResponse_MixedLocations(t *testing.T) {
	t.Parallel()

	path := domain.NewValidationError(domain.LocationPath)
	path.Invalid("id", "must be a positive integer")
	query := domain.NewValidationError(domain.LocationQuery)
	query.Invalid("status", "unknown status")

	r := httptest.NewRequest(http.MethodPut, "/orders/abc/status?status=bogus", nil)
	got := dto.NewErrorResponse(r, domain.MergeValidation(path.Err(), query.Err()))

	if len(got.Errors) != 2 || got.Errors[0].Location != "path.id" || got.Errors[1].Location != "query.status" {
		t.Errorf("Errors = %+v, want path.id and query.status", got.Errors)
	}
}

func TestNewErrorResponse_WholePartLocation(t *testing.T) {
	t.Parallel()

	verr := domain.NewValidationError(domain.LocationBody)
	verr.Invalid("", "malformed JSON")

	r := httptest.NewRequest(http.MethodPost, "/orders", nil)
	got := dto.NewErrorResponse(r, verr)

	if len(got.Errors) != 1 || got.Errors[0].Location != "body" {
		t.Errorf("Errors = %+v, want one entry at body", got.Errors)
	}
}

func TestNewErrorResponse_NoValidationErrorsForNonValidation(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/orders/1", nil)
	got := dto.NewErrorResponse(r, domain.ErrNotFound)

	if got.Errors != nil {
		t.Errorf("Errors = %v, want nil for non-validation error", got.Errors)
	}
}

func TestWriteErrorResponse_ContentType(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/orders/42", nil)

	dto.WriteErrorResponse(w, r, domain.ErrNotFound)

	ct := w.Header().Get("Content-Type")
	if ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/problem+json")
	}
}

func TestWriteErrorResponse_StatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"validation", bodyViolations("x"), http.StatusBadRequest},
		{"conflict", domain.ErrConflict, http.StatusConflict},
		{"unavailable", domain.ErrUnavailable, http.StatusServiceUnavailable},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/test", nil)

			dto.WriteErrorResponse(w, r, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status code = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestWriteErrorResponse_ValidJSON(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/products", nil)

	dto.WriteErrorResponse(w, r, bodyViolations("name"))

	var resp dto.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}

	if resp.Status != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", resp.Status, http.StatusBadRequest)
	}
	if resp.Code != dto.CodeValidation {
		t.Errorf("Code = %q, want %q", resp.Code, dto.CodeValidation)
	}
	if len(resp.Errors) != 1 {
		t.Fatalf("len(Errors) = %d, want 1", len(resp.Errors))
	}
	if resp.Errors[0].Location != "body.name" {
		t.Errorf("Errors[0].Location = %q, want %q", resp.Errors[0].Location, "body.name")
	}
	if resp.Errors[0].Message != "is required" {
		t.Errorf("Errors[0].Message = %q, want %q", resp.Errors[0].Message, "is required")
	}
	if resp.Errors[0].Code != "missing" {
		t.Errorf("Errors[0].Code = %q, want %q", resp.Errors[0].Code, "missing")
	}
}
