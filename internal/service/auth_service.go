package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/recipe-book/recipe-book/internal/auth"
	"github.com/recipe-book/recipe-book/internal/config"
	"github.com/recipe-book/recipe-book/internal/domain"
	"github.com/recipe-book/recipe-book/internal/repository"
	"github.com/recipe-book/recipe-book/internal/validation"
	apperrors "github.com/recipe-book/recipe-book/pkg/util"
)

const (
	CodeUserAlreadyExists  = "REGISTER_USER_ALREADY_EXISTS"
	CodeBadCredentials     = "LOGIN_BAD_CREDENTIALS"
	MsgUserAlreadyExists   = "User already exists"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgInvalidRegistration = "Invalid registration data"
)

// RegisterInput describes a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult carries the signed session for a successful login.
type LoginResult struct {
	User    *domain.User
	Token   string
	Session domain.Session
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL()),
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates an active, unverified account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	form := validation.Registration{
		Username:        in.Username,
		Email:           in.Email,
		Password:        in.Password,
		PasswordConfirm: in.Password,
	}
	if errs := validation.ValidateRegistration(form); len(errs) > 0 {
		return nil, apperrors.NewValidationError(MsgInvalidRegistration, errs)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewBadRequest(CodeUserAlreadyExists, MsgUserAlreadyExists)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login checks credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			auth.DummyCompare(password, s.bcryptCost)
			return nil, apperrors.NewBadRequest(CodeBadCredentials, MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.NewBadRequest(CodeBadCredentials, MsgInvalidCredentials)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewBadRequest(CodeBadCredentials, MsgInvalidCredentials)
	}

	token, session, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{User: user, Token: token, Session: session}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
