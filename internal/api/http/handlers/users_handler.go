package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/equipment-ticketing/internal/api/dto"
	"github.com/spec-kit/equipment-ticketing/internal/auth"
	"github.com/spec-kit/equipment-ticketing/internal/domain"
	"github.com/spec-kit/equipment-ticketing/internal/service"
	apperrors "github.com/spec-kit/equipment-ticketing/pkg/util"
)

// UsersHandler exposes registration, login and assignee lookup.
type UsersHandler struct {
	authSvc *service.AuthService
}

// NewUsersHandler returns a new handler instance.
func NewUsersHandler(authSvc *service.AuthService) *UsersHandler {
	return &UsersHandler{authSvc: authSvc}
}

// Register handles POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	user, token, expiresAt, err := h.authSvc.Register(c.Context(), service.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       domain.Role(req.Role),
		UnitID:     req.UnitID,
		Department: req.Department,
		Phone:      req.Phone,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.UserFromDomain(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: expiresAt},
		},
	})
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	user, token, expiresAt, err := h.authSvc.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.UserFromDomain(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: expiresAt},
		},
	})
}

// ListAssignable handles GET /users/assignable?unitId=...
func (h *UsersHandler) ListAssignable(c *fiber.Ctx) error {
	if _, ok := auth.IdentityFromContext(c); !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	users, err := h.authSvc.ListAssignableUsers(c.Context(), c.Query("unitId"))
	if err != nil {
		return err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.UserFromDomain(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
