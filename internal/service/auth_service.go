package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/equipment-ticketing/internal/auth"
	"github.com/spec-kit/equipment-ticketing/internal/config"
	"github.com/spec-kit/equipment-ticketing/internal/domain"
	"github.com/spec-kit/equipment-ticketing/internal/repository"
	apperrors "github.com/spec-kit/equipment-ticketing/pkg/util"
)

// AuthService is the identity collaborator: it registers users and exchanges
// credentials for role-bearing tokens. The workflow engine itself only ever
// sees the Identity the middleware resolves from those tokens.
type AuthService struct {
	users      repository.UserRepository
	units      repository.UnitRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	UnitRepo repository.UnitRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		units:      deps.UnitRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// RegisterInput describes a registration payload. Role and unit are fixed at
// registration; there is no role-change operation.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       domain.Role
	UnitID     *string
	Department *string
	Phone      *string
}

// Register creates a user account and issues a token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, string, time.Time, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" || input.Password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("name, email and password are required", nil)
	}
	role := input.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	if !domain.ValidRole(role) {
		return nil, "", time.Time{}, apperrors.NewValidationError("unknown role", map[string]any{"role": input.Role})
	}
	if input.UnitID != nil {
		if _, err := s.units.GetByID(ctx, *input.UnitID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, "", time.Time{}, apperrors.NewNotFound("unit", map[string]any{"unit_id": *input.UnitID})
			}
			return nil, "", time.Time{}, apperrors.MapError(err)
		}
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		UnitID:       input.UnitID,
		Department:   input.Department,
		Phone:        input.Phone,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(domain.IdentityOf(user))
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// Login authenticates a user and issues a token carrying role, unit and
// department claims.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(domain.IdentityOf(user))
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// ListAssignableUsers returns the candidates an assignment UI may offer:
// admins plus users of the given unit.
func (s *AuthService) ListAssignableUsers(ctx context.Context, unitID string) ([]domain.User, error) {
	if strings.TrimSpace(unitID) == "" {
		return nil, apperrors.NewValidationError("unitId is required", nil)
	}
	users, err := s.users.ListAssignable(ctx, unitID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}
