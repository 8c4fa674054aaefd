package memory

import (
	"context"
	"fmt"

	memdb "github.com/hashicorp/go-memdb"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/user"
	"github.com/jsamuelsen11/storefront-service/internal/ports"
)

var _ ports.UserRepository = (*UserRepository)(nil)

// UserRepository stores users in the in-memory database. Usernames are
// unique and compared case-sensitively.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a UserRepository backed by db.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(_ context.Context, filter user.Filter, req domain.PageRequest) (domain.Page[user.User], error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableUsers, indexID)
	if err != nil {
		return domain.Page[user.User]{}, fmt.Errorf("listing users: %w", err)
	}
	all := collect(it, filter.Matches)

	domain.SortStable(all, req.Sort.Direction,
		func(a, b *user.User) int { return user.Compare(a, b, req.Sort.Field) },
		func(u *user.User) int64 { return u.ID },
	)
	return domain.SlicePage(all, req), nil
}

func (r *UserRepository) Get(_ context.Context, id int64) (*user.User, error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	u, err := first[user.User](txn, tableUsers, indexID, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound(user.Resource, id)
	}
	out := *u
	return &out, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*user.User, error) {
	txn := r.db.mem.Txn(false)
	defer txn.Abort()

	u, err := first[user.User](txn, tableUsers, "username", username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, &domain.NotFoundError{Resource: user.Resource, Key: "username", Value: username}
	}
	out := *u
	return &out, nil
}

func (r *UserRepository) Create(_ context.Context, u *user.User) (*user.User, error) {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	if err := checkUsername(txn, u.Username, 0); err != nil {
		return nil, err
	}

	id, err := nextID(txn, tableUsers)
	if err != nil {
		return nil, err
	}

	rec := *u
	rec.ID = id
	rec.CreatedAt = r.db.timestamp()
	rec.UpdatedAt = rec.CreatedAt

	if err := txn.Insert(tableUsers, &rec); err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	txn.Commit()

	out := rec
	return &out, nil
}

func (r *UserRepository) Update(_ context.Context, id int64, u *user.User) (*user.User, error) {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	existing, err := first[user.User](txn, tableUsers, indexID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.NotFound(user.Resource, id)
	}
	if err := checkUsername(txn, u.Username, id); err != nil {
		return nil, err
	}

	rec := *u
	rec.ID = id
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = r.db.timestamp()

	// The username index entry of the old record must go before the
	// replacement is inserted, or a renamed user would leave a stale entry.
	if err := txn.Delete(tableUsers, existing); err != nil {
		return nil, fmt.Errorf("replacing user: %w", err)
	}
	if err := txn.Insert(tableUsers, &rec); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	txn.Commit()

	out := rec
	return &out, nil
}

func (r *UserRepository) Delete(_ context.Context, id int64) error {
	txn := r.db.mem.Txn(true)
	defer txn.Abort()

	existing, err := first[user.User](txn, tableUsers, indexID, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.NotFound(user.Resource, id)
	}
	if err := txn.Delete(tableUsers, existing); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	txn.Commit()
	return nil
}

// checkUsername reports a conflict when username belongs to a user other
// than selfID.
func checkUsername(txn *memdb.Txn, username string, selfID int64) error {
	holder, err := first[user.User](txn, tableUsers, "username", username)
	if err != nil {
		return err
	}
	if holder != nil && holder.ID != selfID {
		return &domain.ConflictError{Resource: user.Resource, Field: "username", Value: username}
	}
	return nil
}
