package app

import (
	"context"
	"log/slog"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/user"
	"github.com/jsamuelsen11/storefront-service/internal/ports"
)

// Compile-time check that UserService implements ports.UserService.
var _ ports.UserService = (*UserService)(nil)

// UserService implements ports.UserService. Username uniqueness is left to
// the repository so that concurrent creates cannot both succeed.
type UserService struct {
	users  ports.UserRepository
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users ports.UserRepository, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// ListUsers returns one page of users, optionally narrowed by name.
func (s *UserService) ListUsers(ctx context.Context, filter user.Filter, req domain.PageRequest) (domain.Page[user.User], error) {
	s.logger.InfoContext(ctx, "listing users",
		slog.Int("page", req.Page),
		slog.Int("size", req.Size),
		slog.String("sort", req.Sort.String()),
	)

	if err := req.Validate(user.SortFields); err != nil {
		return domain.Page[user.User]{}, err
	}

	page, err := s.users.List(ctx, filter, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list users",
			slog.String("operation", "ListUsers"),
			slog.Any("error", err),
		)
		return domain.Page[user.User]{}, err
	}

	return page, nil
}

// GetUser returns a single user by ID.
func (s *UserService) GetUser(ctx context.Context, id int64) (*user.User, error) {
	s.logger.InfoContext(ctx, "fetching user", slog.Int64("id", id))

	u, err := s.users.Get(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch user",
			slog.String("operation", "GetUser"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	return u, nil
}

// GetUserByUsername returns the user owning username.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	s.logger.InfoContext(ctx, "fetching user by username", slog.String("username", username))

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch user by username",
			slog.String("operation", "GetUserByUsername"),
			slog.String("username", username),
			slog.Any("error", err),
		)
		return nil, err
	}

	return u, nil
}

// CreateUser validates and stores a new user.
func (s *UserService) CreateUser(ctx context.Context, u *user.User) (*user.User, error) {
	s.logger.InfoContext(ctx, "creating user", slog.String("username", u.Username))

	if err := u.Validate(); err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create user",
			slog.String("operation", "CreateUser"),
			slog.String("username", u.Username),
			slog.Any("error", err),
		)
		return nil, err
	}

	return created, nil
}

// UpdateUser validates and replaces an existing user.
func (s *UserService) UpdateUser(ctx context.Context, id int64, u *user.User) (*user.User, error) {
	s.logger.InfoContext(ctx, "updating user", slog.Int64("id", id))

	if err := u.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.users.Update(ctx, id, u)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update user",
			slog.String("operation", "UpdateUser"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	return updated, nil
}

// DeleteUser removes a user.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	s.logger.InfoContext(ctx, "deleting user", slog.Int64("id", id))

	if err := s.users.Delete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete user",
			slog.String("operation", "DeleteUser"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return err
	}

	return nil
}
