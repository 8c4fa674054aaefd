// Package memory implements the repository ports on top of
// hashicorp/go-memdb. Write transactions are serialized by memdb, so the
// uniqueness checks performed inside them cannot race with each other.
package memory

import (
	"context"
	"fmt"
	"time"

	memdb "github.com/hashicorp/go-memdb"
)

const (
	tableProducts  = "products"
	tableUsers     = "users"
	tableOrders    = "orders"
	tableSequences = "sequences"

	indexID = "id"

	seqOrderItems = "order_items"
)

// HealthCheckName identifies the in-memory store in readiness reports.
const HealthCheckName = "storage"

type sequence struct {
	Name  string
	Value int64
}

func idIndex() *memdb.IndexSchema {
	return &memdb.IndexSchema{
		Name:    indexID,
		Unique:  true,
		Indexer: &memdb.IntFieldIndex{Field: "ID"},
	}
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableProducts: {
				Name:    tableProducts,
				Indexes: map[string]*memdb.IndexSchema{indexID: idIndex()},
			},
			tableUsers: {
				Name: tableUsers,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: idIndex(),
					"username": {
						Name:    "username",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Username"},
					},
				},
			},
			tableOrders: {
				Name: tableOrders,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: idIndex(),
					"number": {
						Name:    "number",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "OrderNumber"},
					},
					"user": {
						Name:    "user",
						Indexer: &memdb.IntFieldIndex{Field: "UserID"},
					},
					"status": {
						Name:    "status",
						Indexer: &memdb.StringFieldIndex{Field: "Status"},
					},
				},
			},
			tableSequences: {
				Name: tableSequences,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Name"},
					},
				},
			},
		},
	}
}

// DB is the shared in-memory database behind the product, user and order
// repositories.
type DB struct {
	mem *memdb.MemDB
	now func() time.Time
}

// New creates an empty in-memory database.
func New() (*DB, error) {
	mem, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("creating memdb: %w", err)
	}
	return &DB{mem: mem, now: time.Now}, nil
}

// Name implements ports.HealthChecker.
func (db *DB) Name() string {
	return HealthCheckName
}

// HealthCheck implements ports.HealthChecker. The in-memory store is healthy
// for as long as the process is running.
func (db *DB) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}

func (db *DB) timestamp() time.Time {
	return db.now().UTC()
}

// nextID advances the named sequence inside txn. An aborted transaction
// rolls the sequence back with it.
func nextID(txn *memdb.Txn, name string) (int64, error) {
	raw, err := txn.First(tableSequences, indexID, name)
	if err != nil {
		return 0, fmt.Errorf("reading sequence %s: %w", name, err)
	}

	next := int64(1)
	if raw != nil {
		next = raw.(*sequence).Value + 1
	}
	if err := txn.Insert(tableSequences, &sequence{Name: name, Value: next}); err != nil {
		return 0, fmt.Errorf("advancing sequence %s: %w", name, err)
	}
	return next, nil
}

func first[T any](txn *memdb.Txn, table, index string, args ...any) (*T, error) {
	raw, err := txn.First(table, index, args...)
	if err != nil {
		return nil, fmt.Errorf("memdb lookup %s.%s: %w", table, index, err)
	}
	if raw == nil {
		return nil, nil
	}
	return raw.(*T), nil
}

// collect drains it, keeping copies of the records accepted by keep.
func collect[T any](it memdb.ResultIterator, keep func(*T) bool) []T {
	var out []T
	for raw := it.Next(); raw != nil; raw = it.Next() {
		rec := raw.(*T)
		if keep(rec) {
			out = append(out, *rec)
		}
	}
	return out
}
