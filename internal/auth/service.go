package auth

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/frozify/storefront/pkg/errors"
	"github.com/frozify/storefront/pkg/storefront"
)

const invalidCredentialsMessage = "invalid credentials"

type authAPI interface {
	Login(ctx context.Context, email, password string) (*storefront.AuthResult, error)
	Register(ctx context.Context, input storefront.RegisterInput) (*storefront.AuthResult, error)
}

// Service signs shoppers in against the storefront API and records the result in their Store.
type Service interface {
	LoginWithPassword(ctx context.Context, store *Store, req LoginRequest) (*Identity, error)
	Register(ctx context.Context, store *Store, req RegisterRequest) (*Identity, error)
}

type service struct {
	api authAPI
}

// NewService constructs an auth service backed by api.
func NewService(api authAPI) (Service, error) {
	if api == nil {
		return nil, fmt.Errorf("auth api is required")
	}
	return &service{api: api}, nil
}

func (s *service) LoginWithPassword(ctx context.Context, store *Store, req LoginRequest) (*Identity, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "auth store required")
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	result, err := s.api.Login(ctx, email, req.Password)
	if err != nil {
		return nil, loginError(err)
	}
	return s.complete(ctx, store, result)
}

func (s *service) Register(ctx context.Context, store *Store, req RegisterRequest) (*Identity, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "auth store required")
	}
	result, err := s.api.Register(ctx, storefront.RegisterInput{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, store, result)
}

func (s *service) complete(ctx context.Context, store *Store, result *storefront.AuthResult) (*Identity, error) {
	if result.User.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "auth response missing user")
	}
	identity := IdentityFromUser(result.User)
	if err := store.Login(ctx, result.Token, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// loginError folds rejected credentials into UNAUTHORIZED; outages pass through.
func loginError(err error) error {
	typed := pkgerrors.As(err)
	if typed == nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "login failed")
	}
	switch typed.Code() {
	case pkgerrors.CodeUnauthorized, pkgerrors.CodeValidation, pkgerrors.CodeNotFound, pkgerrors.CodeForbidden:
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, invalidCredentialsMessage)
	default:
		return err
	}
}
