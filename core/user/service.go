package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/profeweb/core"
)

var (
	ErrNotFound         = errors.New("user not found")
	ErrEmailExists      = errors.New("a user with this email already exists")
	ErrEmailNotVerified = errors.New("email not verified by the identity provider")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service interface {
		Register(ctx context.Context, nu NewUser) (User, error)
		SignIn(ctx context.Context, id Identity) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Register creates a User, or returns ErrEmailExists wrapped in a core.ValidationError.
func (svc *service) Register(ctx context.Context, nu NewUser) (User, error) {
	if _, err := svc.repo.GetUser(ctx, GetFilter{Email: nu.Email}); err == nil {
		return User{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	} else if errors.Cause(err) != ErrNotFound {
		return User{}, errors.Wrap(err, "checking email uniqueness")
	}

	now := time.Now().UTC()
	usr, err := svc.repo.CreateUser(ctx, User{
		ID:        uuid.New().String(),
		Name:      nu.Name,
		Email:     nu.Email,
		Image:     nu.Image,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return usr, errors.Wrap(err, "creating user")
}

// SignIn returns the User matching the identity's email, creating it on first sign-in,
// and refreshes its profile and last login.
func (svc *service) SignIn(ctx context.Context, id Identity) (User, error) {
	if !id.EmailVerified {
		return User{}, ErrEmailNotVerified
	}
	email := core.CleanString(id.Email, true /* lower */)

	usr, err := svc.repo.GetUser(ctx, GetFilter{Email: email})
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return User{}, errors.Wrap(err, "finding user by email")
		}
		usr, err = svc.Register(ctx, NewUser{Name: id.Name, Email: email, Image: id.Picture})
		if err != nil {
			return User{}, errors.Wrap(err, "registering user")
		}
	}

	now := time.Now().UTC()
	if usr.Name == "" {
		usr.Name = id.Name
	}
	if id.Picture != "" {
		usr.Image = id.Picture
	}
	usr.LastLogin = now
	usr.UpdatedAt = now
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "setting lastLogin")
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}
