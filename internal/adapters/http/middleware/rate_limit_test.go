package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jsamuelsen11/storefront-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/storefront-service/internal/adapters/http/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	return resp
}

func TestRateLimit_RejectsBeyondBurst(t *testing.T) {
	t.Parallel()

	// One token per hour, so the bucket cannot refill during the test.
	handler := middleware.RateLimit(1.0/3600, 2)(okHandler())

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", http.NoBody))
		codes = append(codes, rec.Code)

		if rec.Code == http.StatusTooManyRequests {
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("Content-Type = %q, want application/problem+json", ct)
			}
			if rec.Header().Get("Retry-After") == "" {
				t.Error("Retry-After header not set")
			}
		}
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d status = %d, want %d", i, codes[i], want[i])
		}
	}
}

func TestRateLimit_ProblemBody(t *testing.T) {
	t.Parallel()

	handler := middleware.RateLimit(1.0/3600, 1)(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", http.NoBody))

	resp := decodeProblem(t, rec)
	if resp.Status != http.StatusTooManyRequests || resp.Code != dto.CodeRateLimited {
		t.Errorf("problem = %+v, want 429 %s", resp, dto.CodeRateLimited)
	}
	if resp.Instance != "/users" {
		t.Errorf("instance = %q, want /users", resp.Instance)
	}
}

func TestRateLimit_DisabledPassesEverything(t *testing.T) {
	t.Parallel()

	handler := middleware.RateLimit(0, 0)(okHandler())

	for i := range 50 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}
}
