package service

import (
	"context"
	"strings"

	"github.com/spec-kit/equipment-ticketing/internal/domain"
	"github.com/spec-kit/equipment-ticketing/internal/repository"
	apperrors "github.com/spec-kit/equipment-ticketing/pkg/util"
)

// UnitService manages the organizational units owning tickets.
type UnitService struct {
	units repository.UnitRepository
}

// NewUnitService constructs the service.
func NewUnitService(units repository.UnitRepository) *UnitService {
	return &UnitService{units: units}
}

// CreateUnit registers a unit. Admin only.
func (s *UnitService) CreateUnit(ctx context.Context, caller domain.Identity, name, code string) (*domain.Unit, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin required")
	}
	name = strings.TrimSpace(name)
	code = strings.TrimSpace(code)
	if name == "" || code == "" {
		return nil, apperrors.NewValidationError("name and code are required", nil)
	}
	unit := &domain.Unit{Name: name, Code: code}
	if err := s.units.Create(ctx, unit); err != nil {
		return nil, apperrors.MapError(err)
	}
	return unit, nil
}

// ListUnits returns all units.
func (s *UnitService) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	units, err := s.units.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return units, nil
}
