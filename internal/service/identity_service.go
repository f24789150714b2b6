package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Leganyst/service-marketplace/internal/auth"
	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/repository"
)

const minPasswordLen = 8

type RegisterInput struct {
	Email    string
	FullName string
	Phone    string
	Password string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// IdentityService реализует регистрацию, вход и проверку токенов.
type IdentityService struct {
	users  repository.UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.TokenIssuer
}

func NewIdentityService(users repository.UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenIssuer) *IdentityService {
	return &IdentityService{users: users, hasher: hasher, tokens: tokens}
}

// Register создаёт пользователя с ролью customer или provider.
func (s *IdentityService) Register(ctx context.Context, role model.Role, in RegisterInput) (*model.User, error) {
	if role != model.RoleCustomer && role != model.RoleProvider {
		return nil, invalidArg("self-registration is not available for role %q", role)
	}
	return s.register(ctx, role, in)
}

// CreateAdmin is the only way to get an admin identity.
func (s *IdentityService) CreateAdmin(ctx context.Context, in RegisterInput) (*model.User, error) {
	return s.register(ctx, model.RoleAdmin, in)
}

func (s *IdentityService) register(ctx context.Context, role model.Role, in RegisterInput) (*model.User, error) {
	email := repository.NormalizeEmail(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	if email == "" || fullName == "" {
		return nil, invalidArg("email and full_name are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalidArg("email %q is not valid", in.Email)
	}
	if len(in.Password) < minPasswordLen {
		return nil, invalidArg("password must be at least %d characters", minPasswordLen)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Email:        email,
		FullName:     fullName,
		Phone:        in.Phone,
		Role:         role,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", ErrDomainRule)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login checks credentials and issues a bearer token. Unknown email, wrong
// password and inactive account all report the same error.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	bad := fmt.Errorf("%w: incorrect email or password", ErrUnauthorized)

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, bad
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Verify(u.PasswordHash, password); err != nil {
		return nil, bad
	}
	if !u.IsActive {
		return nil, bad
	}

	token, exp, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// ResolveToken turns a bearer token into an Actor. The user must still exist,
// be active and carry the role the token was issued for.
func (s *IdentityService) ResolveToken(ctx context.Context, token string) (Actor, error) {
	invalid := fmt.Errorf("%w: could not validate credentials", ErrUnauthorized)

	token = strings.TrimSpace(token)
	if token == "" {
		return Actor{}, invalid
	}
	sub, err := s.tokens.Resolve(token)
	if err != nil {
		return Actor{}, invalid
	}

	u, err := s.users.GetByID(ctx, sub.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Actor{}, invalid
		}
		return Actor{}, fmt.Errorf("get user: %w", err)
	}
	if !u.IsActive || u.Role != sub.Role {
		return Actor{}, invalid
	}
	return Actor{UserID: u.ID, Role: u.Role}, nil
}

func (s *IdentityService) Me(ctx context.Context, actor Actor) (*model.User, error) {
	u, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return u, nil
}
