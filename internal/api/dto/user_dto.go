package dto

import (
	"time"

	"github.com/spec-kit/equipment-ticketing/internal/domain"
)

// RegisterRequest payload for new users.
type RegisterRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Role       string  `json:"role"`
	UnitID     *string `json:"unitId"`
	Department *string `json:"department"`
	Phone      *string `json:"phone"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public user shape.
type UserResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	UnitID     *string `json:"unitId,omitempty"`
	Department *string `json:"department,omitempty"`
}

// UserFromDomain maps a user onto the wire shape.
func UserFromDomain(u *domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       string(u.Role),
		UnitID:     u.UnitID,
		Department: u.Department,
	}
}

// CreateUnitRequest payload.
type CreateUnitRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// UnitResponse is the unit wire shape.
type UnitResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}
