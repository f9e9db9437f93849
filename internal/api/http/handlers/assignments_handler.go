package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/equipment-ticketing/internal/api/dto"
	"github.com/spec-kit/equipment-ticketing/internal/auth"
	"github.com/spec-kit/equipment-ticketing/internal/service"
	apperrors "github.com/spec-kit/equipment-ticketing/pkg/util"
)

// AssignmentsHandler exposes the assignment chain over HTTP.
type AssignmentsHandler struct {
	assignments *service.AssignmentService
}

// NewAssignmentsHandler returns a new handler instance.
func NewAssignmentsHandler(assignments *service.AssignmentService) *AssignmentsHandler {
	return &AssignmentsHandler{assignments: assignments}
}

// AssignManager handles POST /tickets/:id/assign-manager.
func (h *AssignmentsHandler) AssignManager(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.AssignManagerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if req.ManagerID == "" {
		return apperrors.NewValidationError("managerId is required", nil)
	}

	ticket, err := h.assignments.AssignManager(c.Context(), identity, c.Params("id"), req.ManagerID, req.EquipmentIDs, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// AssignEmployee handles POST /tickets/:id/assign-employee.
func (h *AssignmentsHandler) AssignEmployee(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.AssignEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if req.EmployeeID == "" {
		return apperrors.NewValidationError("employeeId is required", nil)
	}

	ticket, err := h.assignments.AssignEmployee(c.Context(), identity, c.Params("id"), req.EmployeeID, req.EquipmentIDs, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// Assign handles POST /tickets/:id/assign.
func (h *AssignmentsHandler) Assign(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	ticket, err := h.assignments.Assign(c.Context(), identity, c.Params("id"), service.AssignInput{
		AssignedToID:         req.AssignedToID,
		AssignedToName:       req.AssignedToName,
		RequiredEquipmentIDs: req.RequiredEquipmentIDs,
		Note:                 req.Note,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// ListLog handles GET /tickets/:id/assignments.
func (h *AssignmentsHandler) ListLog(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	entries, err := h.assignments.ListLog(c.Context(), identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LogFromDomain(entries)})
}
