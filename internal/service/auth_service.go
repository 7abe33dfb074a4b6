package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TokenPair bundles the access and refresh tokens issued together.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterInput carries the fields for creating an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthService handles account registration, login and token refresh. Task
// authorization downstream only ever consumes the principal the tokens
// resolve to.
type AuthService interface {
	// Register creates a user account and issues an initial token pair.
	// Returns store.ErrEmailExists if the email is taken.
	Register(ctx context.Context, input RegisterInput) (*domain.User, TokenPair, error)

	// Login verifies the credentials and issues a token pair. Returns
	// ErrInvalidCredentials for an unknown email or wrong password without
	// distinguishing the two.
	Login(ctx context.Context, email, password string) (*domain.User, TokenPair, error)

	// Refresh exchanges a valid refresh token for a new token pair.
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)

	// GetProfile returns the account of the given user.
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// AuthServiceImpl implements the AuthService interface.
type AuthServiceImpl struct {
	db         *sql.DB
	userStore  store.UserStore
	jwtService auth.JWTService
	verifier   auth.PasswordVerifier
	logger     *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	db *sql.DB,
	userStore store.UserStore,
	jwtService auth.JWTService,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) AuthService {
	return &AuthServiceImpl{
		db:         db,
		userStore:  userStore,
		jwtService: jwtService,
		verifier:   verifier,
		logger:     logger.With("component", "auth_service"),
	}
}

// Register implements AuthService.Register
func (s *AuthServiceImpl) Register(ctx context.Context, input RegisterInput) (*domain.User, TokenPair, error) {
	user, err := domain.NewUser(input.Name, input.Email, input.Password)
	if err != nil {
		s.logger.Warn("registration rejected", "error", err)
		return nil, TokenPair{}, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			s.logger.Debug("attempted to register existing email")
		} else {
			s.logger.Error("failed to create user", "error", err)
		}
		return nil, TokenPair{}, fmt.Errorf("failed to register user: %w", err)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, TokenPair{}, err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, tokens, nil
}

// Login implements AuthService.Login
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*domain.User, TokenPair, error) {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("login attempt for unknown email")
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		s.logger.Error("failed to load user for login", "error", err)
		return nil, TokenPair{}, fmt.Errorf("failed to log in: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("login attempt with wrong password", "user_id", user.ID)
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, TokenPair{}, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user, tokens, nil
}

// Refresh implements AuthService.Refresh
// The user row is reloaded so a role change takes effect at the next
// refresh rather than living for the refresh token's full lifetime.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		s.logger.Debug("refresh token rejected", "error", err)
		return TokenPair{}, err
	}

	user, err := s.userStore.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return TokenPair{}, auth.ErrInvalidRefreshToken
		}
		s.logger.Error("failed to load user for refresh", "error", err)
		return TokenPair{}, fmt.Errorf("failed to refresh tokens: %w", err)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return TokenPair{}, err
	}

	s.logger.Debug("tokens refreshed", "user_id", user.ID)
	return tokens, nil
}

// GetProfile implements AuthService.GetProfile
func (s *AuthServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthServiceImpl) issueTokens(ctx context.Context, user *domain.User) (TokenPair, error) {
	access, err := s.jwtService.GenerateToken(ctx, user.ID, user.Role)
	if err != nil {
		s.logger.Error("failed to generate access token", "error", err, "user_id", user.ID)
		return TokenPair{}, fmt.Errorf("failed to issue tokens: %w", err)
	}
	refresh, err := s.jwtService.GenerateRefreshToken(ctx, user.ID, user.Role)
	if err != nil {
		s.logger.Error("failed to generate refresh token", "error", err, "user_id", user.ID)
		return TokenPair{}, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
