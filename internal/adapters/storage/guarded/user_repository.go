package guarded

import (
	"context"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/user"
	"github.com/jsamuelsen11/storefront-service/internal/platform/breaker"
	"github.com/jsamuelsen11/storefront-service/internal/ports"
)

var _ ports.UserRepository = (*UserRepository)(nil)

// UserRepository guards a ports.UserRepository.
type UserRepository struct {
	next ports.UserRepository
	b    *breaker.Breaker
}

// NewUserRepository wraps next with b.
func NewUserRepository(next ports.UserRepository, b *breaker.Breaker) *UserRepository {
	return &UserRepository{next: next, b: b}
}

func (r *UserRepository) List(ctx context.Context, filter user.Filter, req domain.PageRequest) (domain.Page[user.User], error) {
	return breaker.Execute(ctx, r.b, "user.list", func(ctx context.Context) (domain.Page[user.User], error) {
		return r.next.List(ctx, filter, req)
	})
}

func (r *UserRepository) Get(ctx context.Context, id int64) (*user.User, error) {
	return breaker.Execute(ctx, r.b, "user.get", func(ctx context.Context) (*user.User, error) {
		return r.next.Get(ctx, id)
	})
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return breaker.Execute(ctx, r.b, "user.get_by_username", func(ctx context.Context) (*user.User, error) {
		return r.next.GetByUsername(ctx, username)
	})
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	return breaker.Execute(ctx, r.b, "user.create", func(ctx context.Context) (*user.User, error) {
		return r.next.Create(ctx, u)
	})
}

func (r *UserRepository) Update(ctx context.Context, id int64, u *user.User) (*user.User, error) {
	return breaker.Execute(ctx, r.b, "user.update", func(ctx context.Context) (*user.User, error) {
		return r.next.Update(ctx, id, u)
	})
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return breaker.Do(ctx, r.b, "user.delete", func(ctx context.Context) error {
		return r.next.Delete(ctx, id)
	})
}
