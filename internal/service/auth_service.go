package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fieldops/field-report-service/internal/auth"
	"github.com/fieldops/field-report-service/internal/config"
	"github.com/fieldops/field-report-service/internal/domain"
	"github.com/fieldops/field-report-service/internal/repository"
	apperrors "github.com/fieldops/field-report-service/pkg/util/errorutil"
)

// AuthService coordinates registration, login and admin account edits.
type AuthService struct {
	users          repository.UserRepository
	tokenMgr       *auth.TokenManager
	bcryptCost     int
	bootstrapAdmin string
	logger         *zap.Logger
}

// UserUpdate is a partial admin edit. Nil fields are left unchanged.
type UserUpdate struct {
	Name      *string
	IsAdmin   *bool
	Activated *bool
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:          users,
		tokenMgr:       tokens,
		bcryptCost:     cfg.BcryptCost,
		bootstrapAdmin: normalizeEmail(cfg.BootstrapAdminEmail),
		logger:         logger,
	}
}

// Register creates an activated account. The configured bootstrap email is
// granted the admin capability.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, time.Time, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" || strings.TrimSpace(name) == "" {
		return nil, "", time.Time{}, apperrors.NewInvalidArgument("name, email and password are required", nil)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !apperrors.IsNoRows(err) {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Email:            &email,
		PasswordHash:     hash,
		IsAdmin:          s.bootstrapAdmin != "" && email == s.bootstrapAdmin,
		AccountActivated: true,
	}
	user.SetName(name)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.Bool("admin", user.IsAdmin))
	return user, token, exp, nil
}

// Login authenticates an activated user.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperrors.IsNoRows(err) {
			return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if !user.AccountActivated {
		return nil, "", time.Time{}, apperrors.NewUnauthenticated("account not activated")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
	}
	if auth.NeedsRehash(user.PasswordHash, s.bcryptCost) {
		s.rehash(ctx, user, password)
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// UpdateUser applies an admin edit to another account.
func (s *AuthService) UpdateUser(ctx context.Context, actor *domain.Actor, id string, update UserUpdate) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return nil, apperrors.NewInvalidArgument("name cannot be empty", nil)
		}
		user.SetName(*update.Name)
	}
	if update.IsAdmin != nil {
		user.IsAdmin = *update.IsAdmin
	}
	if update.Activated != nil {
		user.AccountActivated = *update.Activated
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("user updated",
		zap.String("user_id", user.ID),
		zap.String("by", actor.UserID),
		zap.Bool("admin", user.IsAdmin),
		zap.Bool("activated", user.AccountActivated),
	)
	return user, nil
}

// Deactivate strips personal data from an account and revokes access.
// Deactivating an already deactivated account succeeds.
func (s *AuthService) Deactivate(ctx context.Context, actor *domain.Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return err
	}
	if !user.AccountActivated && user.Email == nil && user.SearchName == "" {
		s.logger.Info("user already deactivated", zap.String("user_id", id))
		return nil
	}

	user.Deactivate()
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("user deactivated", zap.String("user_id", id), zap.String("by", actor.UserID))
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// rehash moves a stored hash to the configured cost. Failures keep the old
// hash, which still verifies.
func (s *AuthService) rehash(ctx context.Context, user *domain.User, password string) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		s.logger.Warn("password rehash failed", zap.String("user_id", user.ID), zap.Error(err))
		return
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Warn("password rehash not stored", zap.String("user_id", user.ID), zap.Error(err))
		return
	}
	s.logger.Info("password rehashed", zap.String("user_id", user.ID))
}

func (s *AuthService) loadUser(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsMissing(err) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
