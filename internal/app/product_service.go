package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/product"
	"github.com/jsamuelsen11/storefront-service/internal/ports"
)

// Compile-time check that ProductService implements ports.ProductService.
var _ ports.ProductService = (*ProductService)(nil)

// ProductService implements ports.ProductService on top of a
// ProductRepository. The repository may be the cache decorator; the service
// does not care.
type ProductService struct {
	products ports.ProductRepository
	logger   *slog.Logger
}

// NewProductService creates a ProductService.
func NewProductService(products ports.ProductRepository, logger *slog.Logger) *ProductService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ProductService{
		products: products,
		logger:   logger,
	}
}

// ListProducts validates the page request and filter together, then returns
// one page from the repository.
func (s *ProductService) ListProducts(
	ctx context.Context,
	filter product.Filter,
	req domain.PageRequest,
) (domain.Page[product.Product], error) {
	s.logger.InfoContext(ctx, "listing products",
		slog.Int("page", req.Page),
		slog.Int("size", req.Size),
		slog.String("sort", req.Sort.String()),
	)

	if err := domain.MergeValidation(req.Validate(product.SortFields), filter.Validate()); err != nil {
		return domain.Page[product.Product]{}, err
	}

	page, err := s.products.List(ctx, filter, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list products",
			slog.String("operation", "ListProducts"),
			slog.Any("error", err),
		)
		return domain.Page[product.Product]{}, err
	}

	return page, nil
}

// GetProduct returns a single product by ID.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*product.Product, error) {
	s.logger.InfoContext(ctx, "fetching product", slog.Int64("id", id))

	p, err := s.products.Get(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch product",
			slog.String("operation", "GetProduct"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	return p, nil
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, p *product.Product) (*product.Product, error) {
	s.logger.InfoContext(ctx, "creating product", slog.String("name", p.Name))

	if err := p.Validate(); err != nil {
		return nil, err
	}

	created, err := s.products.Create(ctx, p)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create product",
			slog.String("operation", "CreateProduct"),
			slog.Any("error", err),
		)
		return nil, err
	}

	return created, nil
}

// UpdateProduct validates and replaces an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, p *product.Product) (*product.Product, error) {
	s.logger.InfoContext(ctx, "updating product", slog.Int64("id", id))

	if err := p.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.products.Update(ctx, id, p)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update product",
			slog.String("operation", "UpdateProduct"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	return updated, nil
}

// DeleteProduct removes a product.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	s.logger.InfoContext(ctx, "deleting product", slog.Int64("id", id))

	if err := s.products.Delete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete product",
			slog.String("operation", "DeleteProduct"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return err
	}

	return nil
}

// ListLowStock returns products with stock strictly below threshold.
func (s *ProductService) ListLowStock(ctx context.Context, threshold int) ([]product.Product, error) {
	s.logger.InfoContext(ctx, "listing low-stock products", slog.Int("threshold", threshold))

	if threshold < 0 {
		verr := domain.NewValidationError(domain.LocationQuery)
		verr.OutOfRange("threshold", fmt.Sprintf("must be >= 0, got %d", threshold))
		return nil, verr
	}

	products, err := s.products.ListLowStock(ctx, threshold)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list low-stock products",
			slog.String("operation", "ListLowStock"),
			slog.Int("threshold", threshold),
			slog.Any("error", err),
		)
		return nil, err
	}

	return products, nil
}
