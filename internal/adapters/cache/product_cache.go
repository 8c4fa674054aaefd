// Package cache provides a Redis cache-aside decorator for product reads.
//
// Reads by id are served from Redis when present; misses load from the
// wrapped repository and populate the cache with a TTL. Concurrent misses for
// the same id are collapsed into a single store read that is not cancelled
// when one of the waiting callers goes away. Updates and deletes invalidate
// the cached entry after the store write succeeds. A miss that loaded the old
// row before an update committed can still write it back after the
// invalidation, so a stale entry may survive until its TTL expires.
//
// The cache is best-effort: any Redis failure is logged and the call falls
// through to the store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/product"
	"github.com/jsamuelsen11/storefront-service/internal/platform/breaker"
	"github.com/jsamuelsen11/storefront-service/internal/ports"
)

const keyPrefix = "product:"

var _ ports.ProductRepository = (*ProductRepository)(nil)

// ProductRepository caches product lookups by id in front of another
// ports.ProductRepository. Listings are never cached.
type ProductRepository struct {
	next    ports.ProductRepository
	client  *redis.Client
	breaker *breaker.Breaker
	ttl     time.Duration
	group   singleflight.Group
	logger  *slog.Logger
}

// NewProductRepository wraps next with a Redis cache. Redis calls run through
// b so that an unreachable Redis is skipped instead of slowing every read.
func NewProductRepository(
	next ports.ProductRepository,
	client *redis.Client,
	b *breaker.Breaker,
	ttl time.Duration,
	logger *slog.Logger,
) *ProductRepository {
	return &ProductRepository{
		next:    next,
		client:  client,
		breaker: b,
		ttl:     ttl,
		logger:  logger,
	}
}

// Key returns the Redis key for a product id.
func Key(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (*product.Product, error) {
	if p, ok := r.lookup(ctx, id); ok {
		return p, nil
	}

	ch := r.group.DoChan(Key(id), func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		p, err := r.next.Get(loadCtx, id)
		if err != nil {
			return nil, err
		}
		r.store(loadCtx, p)
		return p, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// Callers sharing a flight must not share the pointer.
		out := *res.Val.(*product.Product)
		return &out, nil
	}
}

func (r *ProductRepository) Update(ctx context.Context, id int64, p *product.Product) (*product.Product, error) {
	updated, err := r.next.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return updated, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *ProductRepository) List(ctx context.Context, filter product.Filter, req domain.PageRequest) (domain.Page[product.Product], error) {
	return r.next.List(ctx, filter, req)
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) (*product.Product, error) {
	return r.next.Create(ctx, p)
}

func (r *ProductRepository) ListLowStock(ctx context.Context, threshold int) ([]product.Product, error) {
	return r.next.ListLowStock(ctx, threshold)
}

// lookup returns the cached product, reporting false on a miss or any
// Redis failure.
func (r *ProductRepository) lookup(ctx context.Context, id int64) (*product.Product, bool) {
	data, err := breaker.Execute(ctx, r.breaker, "product.get", func(ctx context.Context) ([]byte, error) {
		data, err := r.client.Get(ctx, Key(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		r.logger.WarnContext(ctx, "product cache read failed",
			slog.Int64("product_id", id),
			slog.Any("error", err),
		)
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	var p product.Product
	if err := json.Unmarshal(data, &p); err != nil {
		r.logger.WarnContext(ctx, "discarding undecodable product cache entry",
			slog.Int64("product_id", id),
			slog.Any("error", err),
		)
		return nil, false
	}
	return &p, true
}

func (r *ProductRepository) store(ctx context.Context, p *product.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		r.logger.WarnContext(ctx, "encoding product for cache", slog.Int64("product_id", p.ID), slog.Any("error", err))
		return
	}

	err = breaker.Do(ctx, r.breaker, "product.set", func(ctx context.Context) error {
		return r.client.Set(ctx, Key(p.ID), string(data), r.ttl).Err()
	})
	if err != nil {
		r.logger.WarnContext(ctx, "product cache write failed",
			slog.Int64("product_id", p.ID),
			slog.Any("error", err),
		)
	}
}

func (r *ProductRepository) invalidate(ctx context.Context, id int64) {
	err := breaker.Do(ctx, r.breaker, "product.invalidate", func(ctx context.Context) error {
		return r.client.Del(ctx, Key(id)).Err()
	})
	if err != nil {
		// A stale entry survives until its TTL expires.
		r.logger.WarnContext(ctx, "product cache invalidation failed",
			slog.Int64("product_id", id),
			slog.Any("error", err),
		)
	}
}

// Checker reports Redis reachability.
type Checker struct {
	client *redis.Client
}

// NewChecker creates a Checker for client.
func NewChecker(client *redis.Client) *Checker {
	return &Checker{client: client}
}

// Name returns "redis".
func (c *Checker) Name() string {
	return "redis"
}

// HealthCheck pings Redis.
func (c *Checker) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}
