package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/users-api/internal/errs"
	"github.com/deppfellow/users-api/internal/lib/metrics"
	"github.com/deppfellow/users-api/internal/lib/password"
	"github.com/deppfellow/users-api/internal/model"
	"github.com/deppfellow/users-api/internal/model/user"
	"github.com/deppfellow/users-api/internal/repository"
	"github.com/deppfellow/users-api/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WelcomeNotifier is told about every newly created user.
type WelcomeNotifier interface {
	EnqueueWelcomeEmail(ctx context.Context, to, name string) error
}

// UserService implements the user lifecycle on top of a UserRepository.
// Every error it returns is an *errs.HTTPError.
type UserService struct {
	repo     repository.UserRepository
	notifier WelcomeNotifier
	logger   *zerolog.Logger
	now      func() time.Time
}

// NewUserService builds the service. notifier may be nil.
func NewUserService(repo repository.UserRepository, notifier WelcomeNotifier, logger *zerolog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// timestamp is the current time as stored: UTC at second precision.
func (s *UserService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

// List returns one page of users matching the query. A page past the end
// is an empty page, not an error.
func (s *UserService) List(ctx context.Context, q *user.ListUsersQuery) (model.PaginatedResponse[user.User], error) {
	page, err := s.list(ctx, q)
	metrics.ObserveUserOperation("list", err)
	return page, err
}

func (s *UserService) list(ctx context.Context, q *user.ListUsersQuery) (model.PaginatedResponse[user.User], error) {
	filter := q.Filter()

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return model.PaginatedResponse[user.User]{}, s.storeError("", err)
	}

	// Past the last page the store has nothing to return, and the offset
	// of a huge page would overflow.
	if q.Page > model.PageCount(total, q.PageSize) {
		return model.Paginate[user.User](nil, total, q.Page, q.PageSize), nil
	}

	items, err := s.repo.List(ctx, filter, model.PageOffset(q.Page, q.PageSize), q.PageSize)
	if err != nil {
		return model.PaginatedResponse[user.User]{}, s.storeError("", err)
	}

	return model.Paginate(items, total, q.Page, q.PageSize), nil
}

// Create stores a new user with a fresh id and sends the welcome email in
// the background.
func (s *UserService) Create(ctx context.Context, p *user.CreateUserPayload) (*user.User, error) {
	u, err := s.create(ctx, p)
	metrics.ObserveUserOperation("create", err)
	return u, err
}

func (s *UserService) create(ctx context.Context, p *user.CreateUserPayload) (*user.User, error) {
	hash, err := password.Hash(p.Password)
	if err != nil {
		return nil, errs.NewInternalServerError(err)
	}

	now := s.timestamp()
	created, err := s.repo.Insert(ctx, user.User{
		ID:           uuid.NewString(),
		Email:        p.Email,
		Name:         p.Name,
		Status:       p.Status.OrElse(user.StatusActive),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, s.storeError("", err)
	}

	s.logger.Info().Str("user_id", created.ID).Msg("user created")

	if s.notifier != nil {
		if err := s.notifier.EnqueueWelcomeEmail(ctx, created.Email, created.Name); err != nil {
			s.logger.Error().Err(err).Str("user_id", created.ID).Msg("failed to enqueue welcome email")
		}
	}

	return created, nil
}

// Get fetches one user.
func (s *UserService) Get(ctx context.Context, id string) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		err = s.storeError(id, err)
	}
	metrics.ObserveUserOperation("get", err)
	return u, err
}

// Update applies the fields present in p and moves updated_at forward.
func (s *UserService) Update(ctx context.Context, p *user.UpdateUserPayload) (*user.User, error) {
	patch := p.Patch()
	patch.UpdatedAt = s.timestamp()

	u, err := s.repo.Update(ctx, p.ID, patch)
	if err != nil {
		err = s.storeError(p.ID, err)
	}
	metrics.ObserveUserOperation("update", err)
	return u, err
}

// Delete removes a user. Deleting an absent user is NotFound.
func (s *UserService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		err = s.storeError(id, err)
	} else {
		s.logger.Info().Str("user_id", id).Msg("user deleted")
	}
	metrics.ObserveUserOperation("delete", err)
	return err
}

func (s *UserService) storeError(id string, err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return errs.NewNotFoundError(fmt.Sprintf("User with id %s not found", id))
	case errors.Is(err, repository.ErrEmailTaken):
		return errs.NewValidationError([]errs.FieldError{{Field: "email", Message: "is already taken"}})
	default:
		return sqlerr.HandleError(err)
	}
}

// Ping checks the store. Stores without a health check always pass.
func (s *UserService) Ping(ctx context.Context) error {
	if p, ok := s.repo.(repository.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
