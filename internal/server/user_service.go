package server

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/relocation-matcher/internal/authz"
	"github.com/jonathan/relocation-matcher/internal/config"
	"github.com/jonathan/relocation-matcher/internal/db"
	"github.com/jonathan/relocation-matcher/internal/types"
)

// UserStore is the account storage used by UserService.
type UserStore interface {
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, displayName, email, passwordHash string) (uuid.UUID, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
}

// UserService provides account registration and login.
type UserService struct {
	store          UserStore
	passwordConfig *config.PasswordConfig
	policy         authz.Policy
}

// NewUserService creates a new UserService. policy decides the IsAdmin flag
// on returned users and may be nil.
func NewUserService(store UserStore, passwordConfig *config.PasswordConfig, policy authz.Policy) *UserService {
	return &UserService{
		store:          store,
		passwordConfig: passwordConfig,
		policy:         policy,
	}
}

func (s *UserService) public(u *db.User) *types.User {
	return u.Public(s.policy != nil && s.policy.IsAdmin(u.Email))
}

// Register creates a new account.
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*types.User, error) {
	exists, err := s.store.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, &ErrEmailAlreadyExists{Email: req.Email}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.store.CreateUser(ctx, req.DisplayName, req.Email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve created user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("created user not found: %s", userID)
	}
	return s.public(user), nil
}

// Login checks credentials. Unknown emails and wrong passwords return the
// same error.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if user == nil || !s.passwordConfig.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}
	return s.public(user), nil
}

// Get returns the account for userID.
func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, &ErrUserNotFound{UserID: userID}
	}
	return s.public(user), nil
}
