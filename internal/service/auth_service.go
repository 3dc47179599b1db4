package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/devpulse/tracker-api/internal/models"
	"github.com/devpulse/tracker-api/internal/repository"
	appErrors "github.com/devpulse/tracker-api/pkg/errors"
	"github.com/devpulse/tracker-api/pkg/password"
	"github.com/devpulse/tracker-api/pkg/token"
)

type authUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type refreshTokenStore interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	Rotate(ctx context.Context, oldToken string, replacement *models.RefreshToken, now time.Time) (int64, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	RefreshTokenExpiry time.Duration
}

// AuthService orchestrates registration, login, refresh and logout by
// composing the password hasher, the access-token codec and the refresh
// token store. Failed operations issue no tokens and persist no rows.
type AuthService struct {
	users     authUserRepository
	tokens    refreshTokenStore
	hasher    *password.Hasher
	codec     *token.Codec
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, tokens refreshTokenStore, hasher *password.Hasher, codec *token.Codec, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.RefreshTokenExpiry <= 0 {
		config.RefreshTokenExpiry = 7 * 24 * time.Hour
	}
	return &AuthService{users: users, tokens: tokens, hasher: hasher, codec: codec, validator: validate, logger: logger, config: config}
}

// Register creates a new account with a hashed password.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid register payload")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{Username: req.Username, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "username already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.audit(ctx, &user.ID, models.AuditActionRegister, req.IP, req.UserAgent)

	info := user.Info()
	return &info, nil
}

// Login authenticates a user and returns an issued token pair. A missing
// user and a wrong password produce the same error so usernames cannot be
// enumerated through the login endpoint.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if !s.hasher.Verify(user.PasswordHash, req.Password) {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	accessToken, err := s.codec.Issue(user.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	refreshValue, err := generateRefreshTokenValue()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create refresh token")
	}

	refreshToken := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshValue,
		ExpiresAt: time.Now().UTC().Add(s.config.RefreshTokenExpiry),
	}
	if err := s.tokens.Create(ctx, refreshToken); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist refresh token")
	}

	s.audit(ctx, &user.ID, models.AuditActionLogin, req.IP, req.UserAgent)

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		ExpiresIn:    int64(s.codec.TTL().Seconds()),
		User:         user.Info(),
	}, nil
}

// Refresh exchanges a refresh token for a new token pair. The presented
// token is consumed and replaced in one storage transaction, so it is good
// for exactly one refresh; concurrent attempts with the same value leave
// exactly one winner.
func (s *AuthService) Refresh(ctx context.Context, req models.RefreshRequest) (*models.RefreshResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid refresh payload")
	}

	refreshValue, err := generateRefreshTokenValue()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create refresh token")
	}

	now := time.Now().UTC()
	replacement := &models.RefreshToken{
		Token:     refreshValue,
		ExpiresAt: now.Add(s.config.RefreshTokenExpiry),
	}

	userID, err := s.tokens.Rotate(ctx, req.RefreshToken, replacement, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidToken, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rotate refresh token")
	}

	accessToken, err := s.codec.Issue(userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.audit(ctx, &userID, models.AuditActionRefresh, req.IP, req.UserAgent)

	return &models.RefreshResponse{
		AccessToken:  accessToken,
		RefreshToken: replacement.Token,
		ExpiresIn:    int64(s.codec.TTL().Seconds()),
	}, nil
}

// Logout revokes the provided refresh token. It succeeds whether or not the
// token was valid, so the endpoint leaks nothing about token validity.
func (s *AuthService) Logout(ctx context.Context, req models.LogoutRequest) error {
	if req.RefreshToken == "" {
		return nil
	}
	if err := s.tokens.Revoke(ctx, req.RefreshToken); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke refresh token")
	}

	s.audit(ctx, nil, models.AuditActionLogout, req.IP, req.UserAgent)
	return nil
}

// RevokeAllSessions terminates every session for a user.
func (s *AuthService) RevokeAllSessions(ctx context.Context, userID int64) error {
	if err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke sessions")
	}
	return nil
}

// VerifyAccessToken resolves a bearer token to a user id.
func (s *AuthService) VerifyAccessToken(tokenString string) (int64, error) {
	return s.codec.Verify(tokenString)
}

func (s *AuthService) audit(ctx context.Context, userID *int64, action models.AuditAction, ip, userAgent string) {
	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:    userID,
		Action:    action,
		IPAddress: ip,
		UserAgent: userAgent,
	}); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", string(action)), zap.Error(err))
	}
}

// generateRefreshTokenValue returns 32 bytes of cryptographic randomness in
// URL-safe base64, large enough that guessing a live value is infeasible.
func generateRefreshTokenValue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
