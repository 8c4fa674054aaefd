package memory

import (
	"context"
	"fmt"
	"slices"

	memdb "github.com/hashicorp/go-memdb"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/order"
	"github.com/jsamuelsen11/storefront-service/internal/ports"
)

var _ ports.OrderRepository = (*OrderRepository)(nil)

// OrderRepository stores orders with their items embedded. Order numbers are
// unique; item ids come from a dedicated sequence.
type OrderRepository struct {
	db *DB
}

// NewOrderRepository creates an OrderRepository backed by db.
func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) List(_ context.Context, filter order.Filter, req domain.PageRequest) (domain.Page[order.Order], error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	var (
		it  memdb.ResultIterator
		err error
	)
	switch {
	case filter.UserID != nil:
		it, err = txn.Get(tableOrders, "user", *filter.UserID)
	case filter.Status != "":
		it, err = txn.Get(tableOrders, "status", string(filter.Status))
	default:
		it, err = txn.Get(tableOrders, indexID)
	}
	if err != nil {
		return domain.Page[order.Order]{}, fmt.Errorf("listing orders: %w", err)
	}
	all := collect(it, filter.Matches)
	for i := range all {
		all[i].Items = slices.Clone(all[i].Items)
	}

	domain.SortStable(all, req.Sort.Direction,
		func(a, b *order.Order) int { return order.Compare(a, b, req.Sort.Field) },
		func(o *order.Order) int64 { return o.ID },
	)
	return domain.SlicePage(all, req), nil
}

func (r *OrderRepository) Get(_ context.Context, id int64) (*order.Order, error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	o, err := first[order.Order](txn, tableOrders, indexID, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound(order.Resource, id)
	}
	return clone(o), nil
}

func (r *OrderRepository) GetByNumber(_ context.Context, orderNumber string) (*order.Order, error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	o, err := first[order.Order](txn, tableOrders, "number", orderNumber)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, &domain.NotFoundError{Resource: order.Resource, Key: "orderNumber", Value: orderNumber}
	}
	return clone(o), nil
}

func (r *OrderRepository) Create(_ context.Context, o *order.Order) (*order.Order, error) {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	if err := checkOrderNumber(txn, o.OrderNumber, 0); err != nil {
		return nil, err
	}

	id, err := nextID(txn, tableOrders)
	if err != nil {
		return nil, err
	}

	rec := clone(o)
	rec.ID = id
	rec.CreatedAt = r.db.timestamp()
	rec.UpdatedAt = rec.CreatedAt
	if err := assignItemIDs(txn, rec); err != nil {
		return nil, err
	}

	if err := txn.Insert(tableOrders, rec); err != nil {
		return nil, fmt.Errorf("inserting order: %w", err)
	}
	txn.Commit()

	return clone(rec), nil
}

func (r *OrderRepository) Update(_ context.Context, id int64, o *order.Order) (*order.Order, error) {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	existing, err := first[order.Order](txn, tableOrders, indexID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.NotFound(order.Resource, id)
	}
	if err := checkOrderNumber(txn, o.OrderNumber, id); err != nil {
		return nil, err
	}

	rec := clone(o)
	rec.ID = id
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = r.db.timestamp()
	if err := assignItemIDs(txn, rec); err != nil {
		return nil, err
	}

	if err := replace(txn, existing, rec); err != nil {
		return nil, err
	}
	txn.Commit()

	return clone(rec), nil
}

func (r *OrderRepository) UpdateStatus(_ context.Context, id int64, status order.Status) (*order.Order, error) {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	existing, err := first[order.Order](txn, tableOrders, indexID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.NotFound(order.Resource, id)
	}

	rec := clone(existing)
	rec.Status = status
	rec.UpdatedAt = r.db.timestamp()

	if err := replace(txn, existing, rec); err != nil {
		return nil, err
	}
	txn.Commit()

	return clone(rec), nil
}

func (r *OrderRepository) Delete(_ context.Context, id int64) error {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	existing, err := first[order.Order](txn, tableOrders, indexID, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.NotFound(order.Resource, id)
	}
	if err := txn.Delete(tableOrders, existing); err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}
	txn.Commit()
	return nil
}

// replace swaps old for rec so that secondary index entries of old do not
// linger when the number, user or status changed.
func replace(txn *memdb.Txn, old, rec *order.Order) error {
	if err := txn.Delete(tableOrders, old); err != nil {
		return fmt.Errorf("replacing order: %w", err)
	}
	if err := txn.Insert(tableOrders, rec); err != nil {
		return fmt.Errorf("updating order: %w", err)
	}
	return nil
}

func checkOrderNumber(txn *memdb.Txn, number string, selfID int64) error {
	holder, err := first[order.Order](txn, tableOrders, "number", number)
	if err != nil {
		return err
	}
	if holder != nil && holder.ID != selfID {
		return &domain.ConflictError{Resource: order.Resource, Field: "orderNumber", Value: number}
	}
	return nil
}

// assignItemIDs gives every item a fresh id. Updates replace the item set
// wholesale, so earlier ids are never reused.
func assignItemIDs(txn *memdb.Txn, o *order.Order) error {
	for i := range o.Items {
		id, err := nextID(txn, seqOrderItems)
		if err != nil {
			return err
		}
		o.Items[i].ID = id
	}
	return nil
}

// clone returns a copy of o that shares no item storage with it.
func clone(o *order.Order) *order.Order {
	out := *o
	out.Items = slices.Clone(o.Items)
	return &out
}
