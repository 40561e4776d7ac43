// Package service implements staff authentication: login, refresh token
// rotation and account management.
package service

import (
	"context"
	"strings"
	"time"

	"resort_crm_backend/internal/auth/password"
	"resort_crm_backend/internal/auth/repository"
	"resort_crm_backend/internal/auth/token"
	"resort_crm_backend/internal/auth/transport"
	"resort_crm_backend/platform/apperr"
	"resort_crm_backend/platform/config"
	"resort_crm_backend/platform/logger"
	"resort_crm_backend/platform/validator"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	accessTokenType  = "access"
	refreshTokenType = "refresh"
)

// Service implements staff authentication.
type Service struct {
	repo     *repository.Repo
	cfg      config.AuthServiceConfig
	validate *validator.Validator
	log      *logger.Logger
}

// New creates a new auth service.
func New(repo *repository.Repo, cfg config.AuthServiceConfig, val *validator.Validator, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, validate: val, log: log}
}

// Login checks credentials and issues an access/refresh token pair.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (transport.AuthResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return transport.AuthResponse{}, apperr.Validation(err.Error())
	}

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return transport.AuthResponse{}, apperr.Unauthorized("invalid credentials")
	}
	if err := password.Compare(user.PasswordHash, req.Password); err != nil {
		return transport.AuthResponse{}, apperr.Unauthorized("invalid credentials")
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates a refresh token and issues a new pair. The old token is
// revoked whether or not it is still valid.
func (s *Service) Refresh(ctx context.Context, req transport.RefreshRequest) (transport.AuthResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return transport.AuthResponse{}, apperr.Validation(err.Error())
	}

	hash := token.HashSHA256(req.RefreshToken)
	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		return transport.AuthResponse{}, apperr.Unauthorized("invalid refresh token")
	}
	_ = s.repo.RevokeRefreshToken(ctx, hash)
	if time.Now().After(expiresAt) {
		return transport.AuthResponse{}, apperr.Unauthorized("refresh token expired")
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil || !user.IsActive {
		return transport.AuthResponse{}, apperr.Unauthorized("account disabled")
	}
	return s.issueTokens(ctx, user)
}

// Logout revokes the presented refresh token.
func (s *Service) Logout(ctx context.Context, req transport.RefreshRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return apperr.Validation(err.Error())
	}
	return s.repo.RevokeRefreshToken(ctx, token.HashSHA256(req.RefreshToken))
}

// CreateUser provisions a staff account. Admin only.
func (s *Service) CreateUser(ctx context.Context, req transport.CreateUserRequest) (repository.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return repository.User{}, apperr.Validation(err.Error())
	}
	role := req.Role
	if role == "" {
		role = repository.RoleStaff
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return repository.User{}, apperr.Internal("could not hash password")
	}

	user, err := s.repo.CreateUser(ctx, repository.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
	})
	if err != nil {
		return repository.User{}, err
	}
	s.log.Info("staff account created", "user_id", user.ID.String(), "role", user.Role)
	return user, nil
}

// GetUser retrieves one user.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (repository.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// ListUsers retrieves all staff accounts.
func (s *Service) ListUsers(ctx context.Context) ([]repository.User, error) {
	return s.repo.ListUsers(ctx)
}

// UpdateName changes the caller's display name.
func (s *Service) UpdateName(ctx context.Context, userID uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return apperr.Validation("name must be at least 2 characters")
	}
	return s.repo.UpdateName(ctx, userID, name)
}

// ChangePassword verifies the current password and sets a new one, revoking
// all refresh tokens.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req transport.ChangePasswordRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return apperr.Validation(err.Error())
	}
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := password.Compare(user.PasswordHash, req.CurrentPassword); err != nil {
		return apperr.Unauthorized("current password is incorrect")
	}
	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return apperr.Internal("could not hash password")
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	return s.repo.RevokeAllRefreshTokens(ctx, userID)
}

// SetRole changes a user's role. Admin only.
func (s *Service) SetRole(ctx context.Context, userID uuid.UUID, role string) error {
	if role != repository.RoleStaff && role != repository.RoleAdmin {
		return apperr.Validation("role must be staff or admin")
	}
	return s.repo.SetRole(ctx, userID, role)
}

// SetActive enables or disables an account, revoking tokens on disable.
func (s *Service) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	if err := s.repo.SetActive(ctx, userID, active); err != nil {
		return err
	}
	if !active {
		return s.repo.RevokeAllRefreshTokens(ctx, userID)
	}
	return nil
}

func (s *Service) issueTokens(ctx context.Context, user repository.User) (transport.AuthResponse, error) {
	accessToken, err := s.signJWT(user, s.cfg.GetAccessTokenTTL(), accessTokenType, s.cfg.GetJWTAccessSecret())
	if err != nil {
		return transport.AuthResponse{}, apperr.Internal("could not sign token")
	}

	refreshToken, err := token.GenerateRandomToken(48)
	if err != nil {
		return transport.AuthResponse{}, apperr.Internal("could not generate token")
	}
	expiresAt := time.Now().Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.CreateRefreshToken(ctx, user.ID, token.HashSHA256(refreshToken), expiresAt); err != nil {
		return transport.AuthResponse{}, err
	}

	return transport.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.cfg.GetAccessTokenTTL().Seconds()),
	}, nil
}

func (s *Service) signJWT(user repository.User, ttl time.Duration, tokenType, secret string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"type":  tokenType,
		"roles": []string{user.Role},
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
