package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"msgboard/internal/common"
	"msgboard/internal/common/security"
	"msgboard/internal/domain/model"
	"msgboard/internal/domain/repository"

	"github.com/google/uuid"
)

var (
	// Same error for unknown email and wrong password.
	ErrInvalidCredentials = common.NewError(common.ErrUnauthorized, "Invalid credentials")

	ErrTokenExpired = common.NewError(common.ErrUnauthorized, "Token expired")
	ErrTokenInvalid = common.NewError(common.ErrUnauthorized, "Invalid token")
	ErrTokenRevoked = common.NewError(common.ErrUnauthorized, "Token has been revoked")
	ErrUserGone     = common.NewError(common.ErrUnauthorized, "User no longer exists")
)

type AuthService struct {
	userRepo     repository.UserRepository
	tokens       *security.TokenManager
	blocklist    repository.TokenBlocklist
	storeTimeout time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokens *security.TokenManager,
	blocklist repository.TokenBlocklist,
	storeTimeout time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		tokens:       tokens,
		blocklist:    blocklist,
		storeTimeout: storeTimeout,
	}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var fe fieldErrors
	if runeLen(req.Username) < minUsernameLen {
		fe.add("username", fmt.Sprintf("must be at least %d characters", minUsernameLen))
	}
	if !validEmail(req.Email) {
		fe.add("email", "must be a valid email address")
	}
	if runeLen(req.Password) < minPasswordLen {
		fe.add("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           model.RoleUser, // Default role
	}

	// Uniqueness is enforced by the store in the same write; no read-then-write check.
	sctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()
	if err := s.userRepo.Create(sctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, _, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{Message: "User registered successfully", Token: token, User: user.Public()}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var fe fieldErrors
	if !validEmail(req.Email) {
		fe.add("email", "must be a valid email address")
	}
	if req.Password == "" {
		fe.add("password", "is required")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	sctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()
	user, err := s.userRepo.FindByEmail(sctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			security.BurnPasswordCheck(req.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{Message: "Login successful", Token: token, User: user.Public()}, nil
}

// Authenticate verifies token and re-reads its user so deleted accounts stop
// working immediately. Failures are ErrUnauthorized-kind errors except store
// failures, which stay internal.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, *model.TokenClaims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil, nil, ErrTokenExpired
		}
		return nil, nil, ErrTokenInvalid
	}

	sctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()

	if s.blocklist != nil && claims.TokenID != "" {
		revoked, err := s.blocklist.IsRevoked(sctx, claims.TokenID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if revoked {
			return nil, nil, ErrTokenRevoked
		}
	}

	user, err := s.userRepo.FindByID(sctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, ErrUserGone
		}
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user.Public(), claims, nil
}

// Logout revokes the presented token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *model.TokenClaims) error {
	if s.blocklist == nil || claims == nil || claims.TokenID == "" {
		return nil
	}
	sctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()
	if err := s.blocklist.Revoke(sctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}
