package app

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

var fixedTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want errors.Is(%v)", err, target)
	}
}

func requireValidationFields(t *testing.T, err error, fields ...string) *domain.ValidationError {
	t.Helper()

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *domain.ValidationError", err)
	}
	for _, f := range fields {
		if !verr.Has(f) {
			t.Errorf("ValidationError.Fields missing %q, got %v", f, verr.Fields)
		}
	}
	return verr
}
