package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/storefront-service/internal/adapters/cache"
	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/product"
	"github.com/jsamuelsen11/storefront-service/internal/platform/breaker"
	"github.com/jsamuelsen11/storefront-service/internal/platform/config"
	"github.com/jsamuelsen11/storefront-service/mocks"
)

const ttl = 5 * time.Minute

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testBreaker() *breaker.Breaker {
	cfg := &config.CircuitBreakerConfig{MaxFailures: 5, Timeout: time.Minute, HalfOpenLimit: 1}
	return breaker.New(cfg, "redis-circuit", nil, testLogger())
}

func widget() *product.Product {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &product.Product{
		ID:            1,
		Name:          "Widget",
		Description:   "A widget",
		Price:         decimal.RequireFromString("19.99"),
		StockQuantity: 4,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
}

func encode(t *testing.T, p *product.Product) string {
	t.Helper()
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestGet_Hit(t *testing.T) {
	t.Parallel()

	client, rmock := redismock.NewClientMock()
	next := mocks.NewMockProductRepository(t)
	repo := cache.NewProductRepository(next, client, testBreaker(), ttl, testLogger())

	rmock.ExpectGet("product:1").SetVal(encode(t, widget()))

	got, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Widget" {
		t.Errorf("Name = %q, want %q", got.Name, "Widget")
	}
	if !got.Price.Equal(decimal.RequireFromString("19.99")) {
		t.Errorf("Price = %s, want 19.99", got.Price)
	}
	if err := rmock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGet_MissPopulatesCache(t *testing.T) {
	t.Parallel()

	client, rmock := redismock.NewClientMock()
	next := mocks.NewMockProductRepository(t)
	repo := cache.NewProductRepository(next, client, testBreaker(), ttl, testLogger())

	p := widget()
	rmock.ExpectGet("product:1").RedisNil()
	next.EXPECT().Get(mock.Anything, int64(1)).Return(p, nil).Once()
	rmock.ExpectSet("product:1", encode(t, p), ttl).SetVal("OK")

	got, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != 1 {
		t.Errorf("ID = %d, want 1", got.ID)
	}
	if got == p {
		t.Error("Get() returned the store's pointer, want a copy")
	}
	if err := rmock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGet_LoadSurvivesCallerCancellation(t *testing.T) {
	t.Parallel()

	client, rmock := redismock.NewClientMock()
	next := mocks.NewMockProductRepository(t)
	repo := cache.NewProductRepository(next, client, testBreaker(), ttl, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := widget()
	loadErr := make(chan error, 1)
	rmock.ExpectGet("product:1").RedisNil()
	next.EXPECT().Get(mock.Anything, int64(1)).RunAndReturn(func(loadCtx context.Context, _ int64) (*product.Product, error) {
		cancel()
		loadErr <- loadCtx.Err()
		return p, nil
	}).Once()

	got, err := repo.Get(ctx, 1)
	if err != nil && !errors.Is(err, context.Canceled) {
		t.Fatalf("Get() error = %v, want nil or context.Canceled", err)
	}
	if err == nil && got.ID != 1 {
		t.Errorf("ID = %d, want 1", got.ID)
	}
	if err := <-loadErr; err != nil {
		t.Errorf("store read saw ctx error %v, want an uncancelled context", err)
	}
}

func TestGet_RedisDownFallsThrough(t *testing.T) {
	t.Parallel()

	client, rmock := redismock.NewClientMock()
	next := mocks.NewMockProductRepository(t)
	repo := cache.NewProductRepository(next, client, testBreaker(), ttl, testLogger())

	p := widget()
	rmock.ExpectGet("product:1").SetErr(errors.New("connection refused"))
	next.EXPECT().Get(mock.Anything, int64(1)).Return(p, nil).Once()
	rmock.ExpectSet("product:1", encode(t, p), ttl).SetErr(errors.New("connection refused"))

	got, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get() error = %v, want nil (cache is best-effort)", err)
	}
	if got.Name != "Widget" {
		t.Errorf("Name = %q, want %q", got.Name, "Widget")
	}
}

func TestGet_NotFoundIsNotCached(t *testing.T) {
	t.Parallel()

	client, rmock := redismock.NewClientMock()
	next := mocks.NewMockProductRepository(t)
	repo := cache.NewProductRepository(next, client, testBreaker(), ttl, testLogger())

	rmock.ExpectGet("product:9").RedisNil()
	next.EXPECT().Get(mock.Anything, int64(9)).Return(nil, domain.NotFound(product.Resource, 9)).Once()

	_, err := repo.Get(context.Background(), 9)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get() error = %v, want domain.ErrNotFound", err)
	}
	if err := rmock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGet_CorruptEntryFallsThrough(t *testing.T) {
	t.Parallel()

	client, rmock := redismock.NewClientMock()
	next := mocks.NewMockProductRepository(t)
	repo := cache.NewProductRepository(next, client, testBreaker(), ttl, testLogger())

	p := widget()
	rmock.ExpectGet("product:1").SetVal("{not json")
	next.EXPECT().Get(mock.Anything, int64(1)).Return(p, nil).Once()
	rmock.ExpectSet("product:1", encode(t, p), ttl).SetVal("OK")

	if _, err := repo.Get(context.Background(), 1); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if err := rmock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdate_Invalidates(t *testing.T) {
	t.Parallel()

	client, rmock := redismock.NewClientMock()
	next := mocks.NewMockProductRepository(t)
	repo := cache.NewProductRepository(next, client, testBreaker(), ttl, testLogger())

	p := widget()
	next.EXPECT().Update(mock.Anything, int64(1), p).Return(p, nil).Once()
	rmock.ExpectDel("product:1").SetVal(1)

	if _, err := repo.Update(context.Background(), 1, p); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := rmock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdate_FailureKeepsCache(t *testing.T) {
	t.Parallel()

	client, rmock := redismock.NewClientMock()
	next := mocks.NewMockProductRepository(t)
	repo := cache.NewProductRepository(next, client, testBreaker(), ttl, testLogger())

	p := widget()
	next.EXPECT().Update(mock.Anything, int64(1), p).Return(nil, domain.NotFound(product.Resource, 1)).Once()

	if _, err := repo.Update(context.Background(), 1, p); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Update() error = %v, want domain.ErrNotFound", err)
	}
	// No DEL was expected; any issued command would be unmet or unexpected.
	if err := rmock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestDelete_Invalidates(t *testing.T) {
	t.Parallel()

	client, rmock := redismock.NewClientMock()
	next := mocks.NewMockProductRepository(t)
	repo := cache.NewProductRepository(next, client, testBreaker(), ttl, testLogger())

	next.EXPECT().Delete(mock.Anything, int64(1)).Return(nil).Once()
	rmock.ExpectDel("product:1").SetVal(1)

	if err := repo.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := rmock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestList_BypassesCache(t *testing.T) {
	t.Parallel()

	client, rmock := redismock.NewClientMock()
	next := mocks.NewMockProductRepository(t)
	repo := cache.NewProductRepository(next, client, testBreaker(), ttl, testLogger())

	req := domain.DefaultPageRequest(product.DefaultSort)
	page := domain.NewPage([]product.Product{*widget()}, 1, req)
	next.EXPECT().List(mock.Anything, product.Filter{}, req).Return(page, nil).Once()

	got, err := repo.List(context.Background(), product.Filter{}, req)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got.TotalElements != 1 {
		t.Errorf("TotalElements = %d, want 1", got.TotalElements)
	}
	if err := rmock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	if got := cache.Key(42); got != "product:42" {
		t.Errorf("Key(42) = %q, want %q", got, "product:42")
	}
}

func TestChecker(t *testing.T) {
	t.Parallel()

	client, rmock := redismock.NewClientMock()
	checker := cache.NewChecker(client)

	if checker.Name() != "redis" {
		t.Errorf("Name() = %q, want %q", checker.Name(), "redis")
	}

	rmock.ExpectPing().SetVal("PONG")
	if err := checker.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() = %v, want nil", err)
	}

	rmock.ExpectPing().SetErr(errors.New("connection refused"))
	if err := checker.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() = nil, want error")
	}
}
