package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/equipment-ticketing/internal/domain"
	apperrors "github.com/spec-kit/equipment-ticketing/pkg/util"
)

func TestCreateUnit(t *testing.T) {
	f := newFixture()
	svc := NewUnitService(f.units)
	ctx := context.Background()

	_, err := svc.CreateUnit(ctx, f.identity(f.manager), "ICU", "ICU")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = svc.CreateUnit(ctx, f.identity(f.admin), "  ", "ICU")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	unit, err := svc.CreateUnit(ctx, f.identity(f.admin), "Intensive Care", "ICU")
	require.NoError(t, err)
	assert.NotEmpty(t, unit.ID)
	assert.Equal(t, "Intensive Care", unit.Name)
}

func TestListUnits(t *testing.T) {
	f := newFixture()
	svc := NewUnitService(f.units)

	units, err := svc.ListUnits(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 2)

	var names []string
	for _, u := range units {
		names = append(names, u.Name)
	}
	assert.Contains(t, names, "Radiology")
	assert.Contains(t, names, "Cardiology")
}

func TestIdentityInUnit(t *testing.T) {
	unit := "u1"
	caller := domain.Identity{ID: "x", UnitID: &unit}
	assert.True(t, caller.InUnit("u1"))
	assert.False(t, caller.InUnit("u2"))
	assert.False(t, domain.Identity{}.InUnit("u1"))
}
