package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/equipment-ticketing/internal/domain"
	"github.com/spec-kit/equipment-ticketing/internal/events"
	"github.com/spec-kit/equipment-ticketing/internal/repository"
	apperrors "github.com/spec-kit/equipment-ticketing/pkg/util"
)

// TicketService coordinates the ticket lifecycle: creation, the generic
// role-gated update, and the dedicated workflow transitions
// (start, work update, resolve, verify, close).
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	units      repository.UnitRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	UnitRepo   repository.UnitRepository
	Dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		units:      deps.UnitRepo,
		dispatcher: deps.Dispatcher,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
	Department  string
	Floor       *string
	Room        *string
	Bed         *string
	UnitID      *string
	EquipmentID *string
}

// TicketUpdateInput is the generic patch payload. Nil fields are untouched.
type TicketUpdateInput struct {
	Status     *domain.TicketStatus
	Priority   *string
	Category   *string
	Comment    *string
	AssignedTo *string
}

// WorkUpdateInput carries the employee's progress notes.
type WorkUpdateInput struct {
	WorkNote       *string
	EquipmentsUsed *string
}

// CreateTicket opens a ticket in Pending state. Employees raise tickets for
// their own unit; admins must name the unit. UnitID and CreatedByID are
// fixed here and never change afterwards.
func (s *TicketService) CreateTicket(ctx context.Context, caller domain.Identity, input TicketCreateInput) (*domain.Ticket, error) {
	switch caller.Role {
	case domain.RoleEmployee, domain.RoleAdmin:
	default:
		return nil, apperrors.NewForbidden("only employees and admins may raise tickets")
	}

	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if strings.TrimSpace(input.Category) == "" {
		return nil, apperrors.NewValidationError("category is required", nil)
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("description is required", nil)
	}
	if strings.TrimSpace(input.Department) == "" {
		return nil, apperrors.NewValidationError("department is required", nil)
	}

	var unitID string
	if caller.Role == domain.RoleEmployee {
		if caller.UnitID == nil {
			return nil, apperrors.NewValidationError("employee has no assigned unit", nil)
		}
		unitID = *caller.UnitID
	} else {
		if input.UnitID == nil || *input.UnitID == "" {
			return nil, apperrors.NewValidationError("admin must provide unitId", nil)
		}
		unitID = *input.UnitID
	}
	if _, err := s.units.GetByID(ctx, unitID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("unit", map[string]any{"unit_id": unitID})
		}
		return nil, apperrors.MapError(err)
	}

	priority, ok := domain.NormalizePriority(input.Priority)
	if !ok {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority})
	}

	ticket := &domain.Ticket{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Priority:    priority,
		Department:  strings.TrimSpace(input.Department),
		Floor:       input.Floor,
		Room:        input.Room,
		Bed:         input.Bed,
		Status:      domain.TicketStatusPending,
		UnitID:      unitID,
		EquipmentID: input.EquipmentID,
		CreatedByID: caller.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, caller, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			UnitID:     ticket.UnitID,
			Department: ticket.Department,
			Priority:   ticket.Priority,
			Title:      ticket.Title,
		},
	})
	return ticket, nil
}

// GetTicket fetches a single ticket. Reads are limited to admins, the
// creator, same-unit callers, and the current assignees.
func (s *TicketService) GetTicket(ctx context.Context, caller domain.Identity, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !canReadTicket(caller, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// UpdateTicket is the generic patch operation. Status changes are validated
// against the caller role's allowed-target set; an out-of-set status fails
// the whole request and leaves the ticket unchanged.
func (s *TicketService) UpdateTicket(ctx context.Context, caller domain.Identity, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if caller.Role != domain.RoleAdmin && !caller.InUnit(ticket.UnitID) {
		return nil, apperrors.NewForbidden("access denied")
	}

	prior := ticket.Status

	if input.Status != nil {
		if !domain.ValidStatus(*input.Status) {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *input.Status})
		}
		if !domain.RoleMaySetStatus(caller.Role, *input.Status) {
			return nil, apperrors.NewValidationError("status not allowed for role", map[string]any{
				"status": *input.Status,
				"role":   caller.Role,
			})
		}
		ticket.Status = *input.Status
	}
	if input.Priority != nil {
		priority, ok := domain.NormalizePriority(*input.Priority)
		if !ok {
			return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
		}
		ticket.Priority = priority
	}
	if input.Category != nil && strings.TrimSpace(*input.Category) != "" {
		category := strings.TrimSpace(*input.Category)
		ticket.Category = category
	}
	if input.Comment != nil {
		ticket.Comment = input.Comment
	}
	if input.AssignedTo != nil && strings.TrimSpace(*input.AssignedTo) != "" {
		assignee := s.resolveAssigneeByName(ctx, strings.TrimSpace(*input.AssignedTo))
		ticket.AssignedToID = assignee.UserID
		name := assignee.Name
		ticket.AssignedToName = &name
	}

	if err := s.tickets.UpdateWorkflow(ctx, ticket, prior); err != nil {
		return nil, mapWorkflowError(err)
	}
	if ticket.Status != prior {
		s.publishStatusChange(ctx, caller, ticket.ID, prior, ticket.Status, "")
	}
	return ticket, nil
}

// OverrideStatus is the admin-only direct status write. It bypasses the
// chain-order check but still rejects values outside the canonical enum.
func (s *TicketService) OverrideStatus(ctx context.Context, caller domain.Identity, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin required")
	}
	if !domain.ValidStatus(status) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": status})
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	prior := ticket.Status
	ticket.Status = status
	if status == domain.TicketStatusClosed && ticket.ClosedAt == nil {
		now := time.Now()
		ticket.ClosedAt = &now
	}
	if err := s.tickets.UpdateWorkflow(ctx, ticket, prior); err != nil {
		return nil, mapWorkflowError(err)
	}
	s.publishStatusChange(ctx, caller, ticket.ID, prior, status, "admin_override")
	return ticket, nil
}

// StartWork marks the assigned employee as working on the ticket. StartedAt
// is recorded on the first call only; repeat calls keep the original stamp.
func (s *TicketService) StartWork(ctx context.Context, caller domain.Identity, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadAssignedToEmployee(ctx, caller, ticketID)
	if err != nil {
		return nil, err
	}
	prior := ticket.Status
	if !domain.CanTransition(prior, domain.TicketStatusInProgress) {
		return nil, apperrors.NewPrecondition("ticket cannot be started in its current status", map[string]any{"status": prior})
	}
	ticket.Status = domain.TicketStatusInProgress
	if ticket.StartedAt == nil {
		now := time.Now()
		ticket.StartedAt = &now
	}
	if err := s.tickets.UpdateWorkflow(ctx, ticket, prior); err != nil {
		return nil, mapWorkflowError(err)
	}
	if prior != ticket.Status {
		s.publishStatusChange(ctx, caller, ticket.ID, prior, ticket.Status, "work_started")
	}
	return ticket, nil
}

// RecordWorkUpdate lets the assigned employee update progress notes while the
// ticket is In Progress. It may be called repeatedly.
func (s *TicketService) RecordWorkUpdate(ctx context.Context, caller domain.Identity, ticketID string, input WorkUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.loadAssignedToEmployee(ctx, caller, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != domain.TicketStatusInProgress {
		return nil, apperrors.NewPrecondition("ticket is not in progress", map[string]any{"status": ticket.Status})
	}
	if input.WorkNote != nil {
		ticket.WorkNote = input.WorkNote
	}
	if input.EquipmentsUsed != nil {
		ticket.EquipmentsUsed = input.EquipmentsUsed
	}
	if err := s.tickets.UpdateWorkflow(ctx, ticket, ticket.Status); err != nil {
		return nil, mapWorkflowError(err)
	}
	return ticket, nil
}

// ResolveTicket moves an In Progress ticket to Resolved and stamps
// CompletedAt. Only the current chain employee may resolve.
func (s *TicketService) ResolveTicket(ctx context.Context, caller domain.Identity, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadAssignedToEmployee(ctx, caller, ticketID)
	if err != nil {
		return nil, err
	}
	prior := ticket.Status
	if prior != domain.TicketStatusInProgress {
		return nil, apperrors.NewPrecondition("only an in-progress ticket can be resolved", map[string]any{"status": prior})
	}
	ticket.Status = domain.TicketStatusResolved
	now := time.Now()
	ticket.CompletedAt = &now
	if err := s.tickets.UpdateWorkflow(ctx, ticket, prior); err != nil {
		return nil, mapWorkflowError(err)
	}
	s.publishStatusChange(ctx, caller, ticket.ID, prior, ticket.Status, "resolved")
	return ticket, nil
}

// VerifyTicket moves a Resolved ticket to Verified. The caller must be a
// manager owning the ticket's assignment chain, or a manager of the same
// department.
func (s *TicketService) VerifyTicket(ctx context.Context, caller domain.Identity, ticketID string, reviewNote *string) (*domain.Ticket, error) {
	if caller.Role != domain.RoleManager {
		return nil, apperrors.NewForbidden("manager required")
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	sameDepartment := caller.Department != nil && *caller.Department == ticket.Department
	if !ticket.IsChainManager(caller.ID) && !sameDepartment {
		return nil, apperrors.NewForbidden("not your ticket")
	}
	prior := ticket.Status
	if prior != domain.TicketStatusResolved {
		return nil, apperrors.NewPrecondition("only a resolved ticket can be verified", map[string]any{"status": prior})
	}
	ticket.Status = domain.TicketStatusVerified
	if reviewNote != nil {
		ticket.ManagerReviewNote = reviewNote
	}
	if err := s.tickets.UpdateWorkflow(ctx, ticket, prior); err != nil {
		return nil, mapWorkflowError(err)
	}
	s.publishStatusChange(ctx, caller, ticket.ID, prior, ticket.Status, "verified")
	return ticket, nil
}

// CloseTicket moves a Verified ticket to Closed and stamps ClosedAt.
// Admin only.
func (s *TicketService) CloseTicket(ctx context.Context, caller domain.Identity, ticketID string) (*domain.Ticket, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin required")
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	prior := ticket.Status
	if prior != domain.TicketStatusVerified {
		return nil, apperrors.NewPrecondition("only a verified ticket can be closed", map[string]any{"status": prior})
	}
	ticket.Status = domain.TicketStatusClosed
	now := time.Now()
	ticket.ClosedAt = &now
	if err := s.tickets.UpdateWorkflow(ctx, ticket, prior); err != nil {
		return nil, mapWorkflowError(err)
	}
	s.publishStatusChange(ctx, caller, ticket.ID, prior, ticket.Status, "closed")
	return ticket, nil
}

// ListUnitTickets lists a unit's tickets, newest first. Admins may list any
// unit; everyone else only their own.
func (s *TicketService) ListUnitTickets(ctx context.Context, caller domain.Identity, unitID string) ([]domain.Ticket, error) {
	if caller.Role != domain.RoleAdmin && !caller.InUnit(unitID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	tickets, err := s.tickets.ListScoped(ctx, repository.TicketScope{UnitID: &unitID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListQueue lists the tickets the caller may act on, per the role's
// visibility scope.
func (s *TicketService) ListQueue(ctx context.Context, caller domain.Identity) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListScoped(ctx, ScopeFor(caller))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListPendingTickets is the admin review queue of freshly raised tickets.
func (s *TicketService) ListPendingTickets(ctx context.Context, caller domain.Identity) ([]domain.Ticket, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin required")
	}
	status := domain.TicketStatusPending
	tickets, err := s.tickets.ListScoped(ctx, repository.TicketScope{Status: &status})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListAllTickets is the unrestricted admin override view.
func (s *TicketService) ListAllTickets(ctx context.Context, caller domain.Identity) ([]domain.Ticket, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin required")
	}
	tickets, err := s.tickets.ListScoped(ctx, repository.TicketScope{All: true})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) loadAssignedToEmployee(ctx context.Context, caller domain.Identity, ticketID string) (*domain.Ticket, error) {
	if caller.Role != domain.RoleEmployee {
		return nil, apperrors.NewForbidden("employee required")
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsAssignedEmployee(caller.ID) {
		return nil, apperrors.NewForbidden("not your ticket")
	}
	return ticket, nil
}

// resolveAssigneeByName resolves a free-text assignee, preferring a matching
// user record and falling back to the bare name.
func (s *TicketService) resolveAssigneeByName(ctx context.Context, name string) domain.Assignee {
	user, err := s.users.GetByName(ctx, name)
	if err != nil {
		return domain.UnresolvedAssignee(name)
	}
	return domain.ResolvedAssignee(user)
}

func canReadTicket(caller domain.Identity, ticket *domain.Ticket) bool {
	if caller.Role == domain.RoleAdmin {
		return true
	}
	if ticket.CreatedByID == caller.ID {
		return true
	}
	if caller.InUnit(ticket.UnitID) {
		return true
	}
	if ticket.IsAssignedEmployee(caller.ID) || ticket.IsChainManager(caller.ID) {
		return true
	}
	return ticket.AssignedToID != nil && *ticket.AssignedToID == caller.ID
}

// mapWorkflowError converts a failed conditional write into a precondition
// error: the row's status no longer matched what the caller saw.
func mapWorkflowError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewPrecondition("ticket changed concurrently; retry", nil)
	}
	return apperrors.MapError(err)
}

func (s *TicketService) publishStatusChange(ctx context.Context, caller domain.Identity, ticketID string, oldStatus, newStatus domain.TicketStatus, comment string) {
	s.publishEvent(ctx, caller, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticketID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
}

func (s *TicketService) publishEvent(ctx context.Context, caller domain.Identity, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Actor = events.Actor{UserID: caller.ID, Role: caller.Role}
	_ = s.dispatcher.Publish(ctx, event)
}
