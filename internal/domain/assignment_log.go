package domain

import "time"

// AssignmentRole labels which hop of the chain a log entry records.
type AssignmentRole string

const (
	AssignmentRoleManager  AssignmentRole = "manager"
	AssignmentRoleEmployee AssignmentRole = "employee"
)

// AssignmentLogEntry is an append-only audit record of a hand-off. Entries
// are written in addition to the ticket's current-assignee fields and are
// never mutated or deleted.
type AssignmentLogEntry struct {
	ID           string
	TicketID     string
	AssignedToID string
	AssignedByID string
	Role         AssignmentRole
	EquipmentIDs []string
	Note         *string
	CreatedAt    time.Time
}
