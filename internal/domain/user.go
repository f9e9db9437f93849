package domain

import "time"

// Role enumerates the three operator tiers.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// ValidRole reports whether the value is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// User is an actor in the system. Role and unit affiliation are fixed at
// registration; employees and managers typically carry a unit, admins may not.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	UnitID       *string
	Department   *string
	Phone        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the resolved caller context supplied by the auth collaborator
// on every operation. The workflow engine never re-derives it.
type Identity struct {
	ID         string
	Role       Role
	UnitID     *string
	Department *string
}

// IdentityOf builds the caller context from a loaded user record.
func IdentityOf(u *User) Identity {
	return Identity{
		ID:         u.ID,
		Role:       u.Role,
		UnitID:     u.UnitID,
		Department: u.Department,
	}
}

// InUnit reports whether the caller belongs to the given unit.
func (i Identity) InUnit(unitID string) bool {
	return i.UnitID != nil && *i.UnitID == unitID
}
