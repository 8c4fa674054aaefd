package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/product"
	"github.com/jsamuelsen11/storefront-service/internal/ports"
)

var _ ports.ProductRepository = (*ProductRepository)(nil)

const productColumns = "id, name, description, price, stock_quantity, created_at, updated_at"

var productSortColumns = map[string]string{
	"id":            "id",
	"name":          "name",
	"price":         "price",
	"stockQuantity": "stock_quantity",
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
}

// ProductRepository stores products in the products table.
type ProductRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewProductRepository creates a ProductRepository on db.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db, now: time.Now}
}

func scanProduct(row rowScanner) (*product.Product, error) {
	var p product.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func productWhere(f product.Filter) *where {
	w := &where{}
	if f.NameContains != "" {
		w.add("LOWER(name) LIKE ?", containsPattern(f.NameContains))
	}
	if f.MinPrice != nil {
		w.add("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		w.add("price <= ?", *f.MaxPrice)
	}
	return w
}

func (r *ProductRepository) List(ctx context.Context, filter product.Filter, req domain.PageRequest) (domain.Page[product.Product], error) {
	w := productWhere(filter)

	total, err := count(r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products"+w.String(), w.args...))
	if err != nil {
		return domain.Page[product.Product]{}, fmt.Errorf("count products: %w", err)
	}

	tail, pageArgs := orderBy(productSortColumns, req)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products"+w.String()+tail,
		append(w.args, pageArgs...)...,
	)
	if err != nil {
		return domain.Page[product.Product]{}, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	items, err := scanProducts(rows)
	if err != nil {
		return domain.Page[product.Product]{}, err
	}
	return domain.NewPage(items, total, req), nil
}

func scanProducts(rows *sql.Rows) ([]product.Product, error) {
	items := []product.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return items, nil
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (*product.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound(product.Resource, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) (*product.Product, error) {
	now := timestamp(r.now)

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO products (name, description, price, stock_quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.Price, p.StockQuantity, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert product id: %w", err)
	}

	out := *p
	out.ID = id
	out.CreatedAt = now
	out.UpdatedAt = now
	return &out, nil
}

func (r *ProductRepository) Update(ctx context.Context, id int64, p *product.Product) (*product.Product, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, description = ?, price = ?, stock_quantity = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Description, p.Price, p.StockQuantity, timestamp(r.now), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, domain.NotFound(product.Resource, id)
	}
	return r.Get(ctx, id)
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.NotFound(product.Resource, id)
	}
	return nil
}

func (r *ProductRepository) ListLowStock(ctx context.Context, threshold int) ([]product.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE stock_quantity < ? ORDER BY stock_quantity ASC, id ASC",
		threshold,
	)
	if err != nil {
		return nil, fmt.Errorf("query low-stock products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}
