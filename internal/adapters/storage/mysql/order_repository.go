package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/order"
	"github.com/jsamuelsen11/storefront-service/internal/ports"
)

var _ ports.OrderRepository = (*OrderRepository)(nil)

const (
	orderColumns = "id, order_number, user_id, status, total_amount, created_at, updated_at"
	itemColumns  = "id, order_id, product_id, product_name, quantity, unit_price, subtotal"
)

var orderSortColumns = map[string]string{
	"id":          "id",
	"orderNumber": "order_number",
	"userId":      "user_id",
	"status":      "status",
	"totalAmount": "total_amount",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

// OrderRepository stores orders in the orders table and their lines in
// order_items. Writes touching both tables run in one transaction.
type OrderRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewOrderRepository creates an OrderRepository on db.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db, now: time.Now}
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var o order.Order
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Items = []order.Item{}
	return &o, nil
}

func numberConflict(number string) error {
	return &domain.ConflictError{Resource: order.Resource, Field: "orderNumber", Value: number}
}

func (r *OrderRepository) List(ctx context.Context, filter order.Filter, req domain.PageRequest) (domain.Page[order.Order], error) {
	w := &where{}
	if filter.UserID != nil {
		w.add("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		w.add("status = ?", string(filter.Status))
	}

	total, err := count(r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders"+w.String(), w.args...))
	if err != nil {
		return domain.Page[order.Order]{}, fmt.Errorf("count orders: %w", err)
	}

	tail, pageArgs := orderBy(orderSortColumns, req)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders"+w.String()+tail,
		append(w.args, pageArgs...)...,
	)
	if err != nil {
		return domain.Page[order.Order]{}, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	items := []order.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return domain.Page[order.Order]{}, fmt.Errorf("scan order: %w", err)
		}
		items = append(items, *o)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[order.Order]{}, fmt.Errorf("iterate orders: %w", err)
	}

	if err := r.loadItems(ctx, items); err != nil {
		return domain.Page[order.Order]{}, err
	}
	return domain.NewPage(items, total, req), nil
}

// loadItems fills the Items of every order with a single query.
func (r *OrderRepository) loadItems(ctx context.Context, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	index := make(map[int64]int, len(orders))
	ids := make([]any, len(orders))
	for i := range orders {
		index[orders[i].ID] = i
		ids[i] = orders[i].ID
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM order_items WHERE order_id IN ("+placeholders(len(ids))+") ORDER BY id ASC",
		ids...,
	)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it      order.Item
			orderID int64
		)
		if err := rows.Scan(&it.ID, &orderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate order items: %w", err)
	}
	return nil
}

func (r *OrderRepository) getOne(ctx context.Context, query string, arg any, notFound error) (*order.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE "+query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	orders := []order.Order{*o}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *OrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	return r.getOne(ctx, "id = ?", id, domain.NotFound(order.Resource, id))
}

func (r *OrderRepository) GetByNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	return r.getOne(ctx, "order_number = ?", orderNumber,
		&domain.NotFoundError{Resource: order.Resource, Key: "orderNumber", Value: orderNumber})
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) (*order.Order, error) {
	now := timestamp(r.now)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO orders (order_number, user_id, status, total_amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		o.OrderNumber, o.UserID, string(o.Status), o.TotalAmount, now, now,
	)
	if isDuplicate(err) {
		return nil, numberConflict(o.OrderNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert order id: %w", err)
	}

	out := *o
	out.ID = id
	out.CreatedAt = now
	out.UpdatedAt = now
	if out.Items, err = insertItems(ctx, tx, id, o.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit order: %w", err)
	}
	return &out, nil
}

func (r *OrderRepository) Update(ctx context.Context, id int64, o *order.Order) (*order.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var createdAt time.Time
	err = tx.QueryRowContext(ctx, "SELECT created_at FROM orders WHERE id = ? FOR UPDATE", id).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound(order.Resource, id)
	}
	if err != nil {
		return nil, fmt.Errorf("lock order: %w", err)
	}

	now := timestamp(r.now)
	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET order_number = ?, user_id = ?, status = ?, total_amount = ?, updated_at = ?
		WHERE id = ?`,
		o.OrderNumber, o.UserID, string(o.Status), o.TotalAmount, now, id,
	)
	if isDuplicate(err) {
		return nil, numberConflict(o.OrderNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM order_items WHERE order_id = ?", id); err != nil {
		return nil, fmt.Errorf("replace order items: %w", err)
	}

	out := *o
	out.ID = id
	out.CreatedAt = createdAt
	out.UpdatedAt = now
	if out.Items, err = insertItems(ctx, tx, id, o.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit order: %w", err)
	}
	return &out, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status order.Status) (*order.Order, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE orders SET status = ?, updated_at = ? WHERE id = ?",
		string(status), timestamp(r.now), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, domain.NotFound(order.Resource, id)
	}
	return r.Get(ctx, id)
}

func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.NotFound(order.Resource, id)
	}
	return nil
}

func insertItems(ctx context.Context, tx *sql.Tx, orderID int64, items []order.Item) ([]order.Item, error) {
	out := make([]order.Item, len(items))
	for i, it := range items {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, subtotal)
			VALUES (?, ?, ?, ?, ?, ?)`,
			orderID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, it.Subtotal,
		)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
		if it.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("insert order item id: %w", err)
		}
		out[i] = it
	}
	return out, nil
}
