package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets. The canonical chain is
// Pending -> In Progress -> Resolved -> Verified -> Closed.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "Pending"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusVerified   TicketStatus = "Verified"
	TicketStatusClosed     TicketStatus = "Closed"
)

// ValidStatus reports whether the value belongs to the canonical enum.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusPending, TicketStatusInProgress, TicketStatusResolved,
		TicketStatusVerified, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// NormalizePriority maps raw input onto the closed priority set.
// "critical" collapses to high, empty input defaults to medium; anything
// else is rejected.
func NormalizePriority(raw string) (TicketPriority, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return TicketPriorityMedium, true
	case "critical", "high":
		return TicketPriorityHigh, true
	case "medium":
		return TicketPriorityMedium, true
	case "low":
		return TicketPriorityLow, true
	}
	return "", false
}

// Ticket is the aggregate for equipment-service requests. UnitID and
// CreatedByID are fixed at creation and never change.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Category    string
	Priority    TicketPriority
	Department  string

	Floor *string
	Room  *string
	Bed   *string

	Status      TicketStatus
	UnitID      string
	EquipmentID *string

	AssignedToID       *string
	AssignedToName     *string
	AssignedManagerID  *string
	AssignedEmployeeID *string

	CreatedByID string

	WorkNote             *string
	EquipmentsUsed       *string
	ManagerReviewNote    *string
	DepartmentReviewNote *string
	Comment              *string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	ClosedAt    *time.Time
}

// IsAssignedEmployee reports whether the user is the ticket's chain employee.
func (t *Ticket) IsAssignedEmployee(userID string) bool {
	return t.AssignedEmployeeID != nil && *t.AssignedEmployeeID == userID
}

// IsChainManager reports whether the user is the manager on the ticket's
// assignment chain.
func (t *Ticket) IsChainManager(userID string) bool {
	return t.AssignedManagerID != nil && *t.AssignedManagerID == userID
}

// Assignee is the target of a single-step assignment. The simpler flows allow
// assigning by bare name when no user record matches; such unresolved
// assignees carry no identity and cannot enter the chain log or be subjects
// of ownership checks.
type Assignee struct {
	UserID *string
	Name   string
}

// ResolvedAssignee builds an assignee backed by a user record.
func ResolvedAssignee(u *User) Assignee {
	id := u.ID
	return Assignee{UserID: &id, Name: u.Name}
}

// UnresolvedAssignee builds a free-text assignee.
func UnresolvedAssignee(name string) Assignee {
	return Assignee{Name: name}
}

// Resolved reports whether the assignee maps to a user record.
func (a Assignee) Resolved() bool {
	return a.UserID != nil
}
