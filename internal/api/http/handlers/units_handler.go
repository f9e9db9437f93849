package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/equipment-ticketing/internal/api/dto"
	"github.com/spec-kit/equipment-ticketing/internal/auth"
	"github.com/spec-kit/equipment-ticketing/internal/service"
	apperrors "github.com/spec-kit/equipment-ticketing/pkg/util"
)

// UnitsHandler exposes unit management.
type UnitsHandler struct {
	units *service.UnitService
}

// NewUnitsHandler returns a new handler instance.
func NewUnitsHandler(units *service.UnitService) *UnitsHandler {
	return &UnitsHandler{units: units}
}

// Create handles POST /units.
func (h *UnitsHandler) Create(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateUnitRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	unit, err := h.units.CreateUnit(c.Context(), identity, req.Name, req.Code)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.UnitResponse{ID: unit.ID, Name: unit.Name, Code: unit.Code}})
}

// List handles GET /units.
func (h *UnitsHandler) List(c *fiber.Ctx) error {
	if _, ok := auth.IdentityFromContext(c); !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	units, err := h.units.ListUnits(c.Context())
	if err != nil {
		return err
	}

	items := make([]dto.UnitResponse, 0, len(units))
	for _, unit := range units {
		items = append(items, dto.UnitResponse{ID: unit.ID, Name: unit.Name, Code: unit.Code})
	}
	return c.JSON(fiber.Map{"data": items})
}
