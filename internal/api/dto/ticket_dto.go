package dto

import (
	"time"

	"github.com/spec-kit/equipment-ticketing/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Priority    string  `json:"priority"`
	Department  string  `json:"department"`
	Floor       *string `json:"floor"`
	Room        *string `json:"room"`
	Bed         *string `json:"bed"`
	UnitID      *string `json:"unitId"`
	EquipmentID *string `json:"equipmentId"`
}

// UpdateTicketRequest is the generic patch payload.
type UpdateTicketRequest struct {
	Status     *domain.TicketStatus `json:"status"`
	Priority   *string              `json:"priority"`
	Category   *string              `json:"category"`
	Comment    *string              `json:"comment"`
	AssignedTo *string              `json:"assignedTo"`
}

// OverrideStatusRequest payload for the admin status override.
type OverrideStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// WorkUpdateRequest payload for employee progress notes.
type WorkUpdateRequest struct {
	WorkNote       *string `json:"workNote"`
	EquipmentsUsed *string `json:"equipmentsUsed"`
}

// VerifyRequest payload for manager verification.
type VerifyRequest struct {
	ReviewNote *string `json:"reviewNote"`
}

// AssignRequest payload for the generic single-step assignment.
type AssignRequest struct {
	AssignedToID         *string  `json:"assignedToId"`
	AssignedToName       *string  `json:"assignedToName"`
	RequiredEquipmentIDs []string `json:"requiredEquipmentIds"`
	Note                 *string  `json:"note"`
}

// AssignManagerRequest payload for the admin→manager hop.
type AssignManagerRequest struct {
	ManagerID    string   `json:"managerId"`
	EquipmentIDs []string `json:"equipmentIds"`
	Note         *string  `json:"note"`
}

// AssignEmployeeRequest payload for the manager→employee hop.
type AssignEmployeeRequest struct {
	EmployeeID   string   `json:"employeeId"`
	EquipmentIDs []string `json:"equipmentIds"`
	Note         *string  `json:"note"`
}

// TicketResponse carries the full ticket field set.
type TicketResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Priority    string  `json:"priority"`
	Department  string  `json:"department"`
	Floor       *string `json:"floor,omitempty"`
	Room        *string `json:"room,omitempty"`
	Bed         *string `json:"bed,omitempty"`

	Status      domain.TicketStatus `json:"status"`
	UnitID      string              `json:"unitId"`
	EquipmentID *string             `json:"equipmentId,omitempty"`

	AssignedToID       *string `json:"assignedToId,omitempty"`
	AssignedToName     *string `json:"assignedToName,omitempty"`
	AssignedManagerID  *string `json:"assignedManagerId,omitempty"`
	AssignedEmployeeID *string `json:"assignedEmployeeId,omitempty"`

	CreatedByID string `json:"createdById"`

	WorkNote             *string `json:"workNote,omitempty"`
	EquipmentsUsed       *string `json:"equipmentsUsed,omitempty"`
	ManagerReviewNote    *string `json:"managerReviewNote,omitempty"`
	DepartmentReviewNote *string `json:"departmentReviewNote,omitempty"`
	Comment              *string `json:"comment,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	ClosedAt    *time.Time `json:"closedAt,omitempty"`
}

// AssignmentLogResponse represents one chain-log entry.
type AssignmentLogResponse struct {
	ID           string    `json:"id"`
	TicketID     string    `json:"ticketId"`
	AssignedToID string    `json:"assignedToId"`
	AssignedByID string    `json:"assignedById"`
	Role         string    `json:"role"`
	EquipmentIDs []string  `json:"equipmentIds,omitempty"`
	Note         *string   `json:"note,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TicketFromDomain maps the entity onto the wire shape.
func TicketFromDomain(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Priority:    string(t.Priority),
		Department:  t.Department,
		Floor:       t.Floor,
		Room:        t.Room,
		Bed:         t.Bed,

		Status:      t.Status,
		UnitID:      t.UnitID,
		EquipmentID: t.EquipmentID,

		AssignedToID:       t.AssignedToID,
		AssignedToName:     t.AssignedToName,
		AssignedManagerID:  t.AssignedManagerID,
		AssignedEmployeeID: t.AssignedEmployeeID,

		CreatedByID: t.CreatedByID,

		WorkNote:             t.WorkNote,
		EquipmentsUsed:       t.EquipmentsUsed,
		ManagerReviewNote:    t.ManagerReviewNote,
		DepartmentReviewNote: t.DepartmentReviewNote,
		Comment:              t.Comment,

		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		StartedAt:   t.StartedAt,
		CompletedAt: t.CompletedAt,
		ClosedAt:    t.ClosedAt,
	}
}

// TicketsFromDomain maps a listing.
func TicketsFromDomain(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, TicketFromDomain(&tickets[i]))
	}
	return items
}

// LogFromDomain maps chain-log entries.
func LogFromDomain(entries []domain.AssignmentLogEntry) []AssignmentLogResponse {
	items := make([]AssignmentLogResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, AssignmentLogResponse{
			ID:           entry.ID,
			TicketID:     entry.TicketID,
			AssignedToID: entry.AssignedToID,
			AssignedByID: entry.AssignedByID,
			Role:         string(entry.Role),
			EquipmentIDs: entry.EquipmentIDs,
			Note:         entry.Note,
			CreatedAt:    entry.CreatedAt,
		})
	}
	return items
}
