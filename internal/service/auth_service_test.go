package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/equipment-ticketing/internal/config"
	"github.com/spec-kit/equipment-ticketing/internal/domain"
	apperrors "github.com/spec-kit/equipment-ticketing/pkg/util"
)

func newAuthFixture() (*AuthService, *fixture) {
	f := newFixture()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 5,
			BcryptCost:            4,
		},
	}
	svc := NewAuthService(cfg, AuthDependencies{UserRepo: f.users, UnitRepo: f.units})
	return svc, f
}

func TestRegisterDefaultsToEmployee(t *testing.T) {
	svc, f := newAuthFixture()
	ctx := context.Background()

	user, token, _, err := svc.Register(ctx, RegisterInput{
		Name:     "New Hire",
		Email:    "hire@example.com",
		Password: "s3cret",
		UnitID:   &f.unitA.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEmployee, user.Role)
	assert.NotEmpty(t, token)
	assert.Equal(t, "hire@example.com", user.Email)
}

func TestRegisterValidation(t *testing.T) {
	svc, f := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, RegisterInput{Name: "x", Email: "", Password: "p"})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, _, _, err = svc.Register(ctx, RegisterInput{
		Name: "x", Email: "x@example.com", Password: "p", Role: "superuser",
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	missing := "unit-404"
	_, _, _, err = svc.Register(ctx, RegisterInput{
		Name: "x", Email: "x@example.com", Password: "p", UnitID: &missing,
	})
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	_, _, _, err = svc.Register(ctx, RegisterInput{
		Name: "dup", Email: f.manager.Email, Password: "p",
	})
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, RegisterInput{
		Name:     "Login User",
		Email:    "login@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	user, token, _, err := svc.Login(ctx, "Login@Example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "login@example.com", user.Email)
	assert.NotEmpty(t, token)

	_, _, _, err = svc.Login(ctx, "login@example.com", "wrong")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	_, _, _, err = svc.Login(ctx, "nobody@example.com", "whatever")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
}

func TestLoginTokenRoundTrip(t *testing.T) {
	svc, f := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, RegisterInput{
		Name:       "Claims User",
		Email:      "claims@example.com",
		Password:   "pw",
		Role:       domain.RoleManager,
		UnitID:     &f.unitA.ID,
		Department: strPtr("Imaging"),
	})
	require.NoError(t, err)

	_, token, _, err := svc.Login(ctx, "claims@example.com", "pw")
	require.NoError(t, err)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, claims.Role)
	require.NotNil(t, claims.UnitID)
	assert.Equal(t, f.unitA.ID, *claims.UnitID)
	require.NotNil(t, claims.Department)
	assert.Equal(t, "Imaging", *claims.Department)
}

func TestListAssignableUsers(t *testing.T) {
	svc, f := newAuthFixture()
	ctx := context.Background()

	_, err := svc.ListAssignableUsers(ctx, " ")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	users, err := svc.ListAssignableUsers(ctx, f.unitA.ID)
	require.NoError(t, err)

	// the admin plus the unit's manager and employee
	require.Len(t, users, 3)
	roles := map[domain.Role]int{}
	for _, u := range users {
		roles[u.Role]++
	}
	assert.Equal(t, 1, roles[domain.RoleAdmin])
	assert.Equal(t, 1, roles[domain.RoleManager])
	assert.Equal(t, 1, roles[domain.RoleEmployee])
}
