package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/product"
	"github.com/jsamuelsen11/storefront-service/internal/ports"
)

var _ ports.ProductRepository = (*ProductRepository)(nil)

// ProductRepository stores products in the in-memory database.
type ProductRepository struct {
	db *DB
}

// NewProductRepository creates a ProductRepository backed by db.
func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) List(_ context.Context, filter product.Filter, req domain.PageRequest) (domain.Page[product.Product], error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableProducts, indexID)
	if err != nil {
		return domain.Page[product.Product]{}, fmt.Errorf("listing products: %w", err)
	}
	all := collect(it, filter.Matches)

	domain.SortStable(all, req.Sort.Direction,
		func(a, b *product.Product) int { return product.Compare(a, b, req.Sort.Field) },
		func(p *product.Product) int64 { return p.ID },
	)
	return domain.SlicePage(all, req), nil
}

func (r *ProductRepository) Get(_ context.Context, id int64) (*product.Product, error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	p, err := first[product.Product](txn, tableProducts, indexID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound(product.Resource, id)
	}
	out := *p
	return &out, nil
}

func (r *ProductRepository) Create(_ context.Context, p *product.Product) (*product.Product, error) {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	id, err := nextID(txn, tableProducts)
	if err != nil {
		return nil, err
	}

	rec := *p
	rec.ID = id
	rec.CreatedAt = r.db.timestamp()
	rec.UpdatedAt = rec.CreatedAt

	if err := txn.Insert(tableProducts, &rec); err != nil {
		return nil, fmt.Errorf("inserting product: %w", err)
	}
	txn.Commit()

	out := rec
	return &out, nil
}

func (r *ProductRepository) Update(_ context.Context, id int64, p *product.Product) (*product.Product, error) {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	existing, err := first[product.Product](txn, tableProducts, indexID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.NotFound(product.Resource, id)
	}

	rec := *p
	rec.ID = id
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = r.db.timestamp()

	if err := txn.Insert(tableProducts, &rec); err != nil {
		return nil, fmt.Errorf("updating product: %w", err)
	}
	txn.Commit()

	out := rec
	return &out, nil
}

func (r *ProductRepository) Delete(_ context.Context, id int64) error {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	existing, err := first[product.Product](txn, tableProducts, indexID, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.NotFound(product.Resource, id)
	}
	if err := txn.Delete(tableProducts, existing); err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	txn.Commit()
	return nil
}

func (r *ProductRepository) ListLowStock(_ context.Context, threshold int) ([]product.Product, error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableProducts, indexID)
	if err != nil {
		return nil, fmt.Errorf("listing low-stock products: %w", err)
	}
	low := collect(it, func(p *product.Product) bool { return p.StockQuantity < threshold })

	slices.SortFunc(low, func(a, b product.Product) int {
		if c := cmp.Compare(a.StockQuantity, b.StockQuantity); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if low == nil {
		low = []product.Product{}
	}
	return low, nil
}
