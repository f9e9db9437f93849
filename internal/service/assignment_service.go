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

// AssignmentService handles the two chain hops (admin→manager,
// manager→employee) and the generic single-step assignment. Every hop
// appends a chain-log entry in addition to mutating the ticket's
// current-assignee fields.
type AssignmentService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	log        repository.AssignmentLogRepository
	dispatcher events.Dispatcher
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	LogRepo    repository.AssignmentLogRepository
	Dispatcher events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		log:        deps.LogRepo,
		dispatcher: deps.Dispatcher,
	}
}

// AssignInput is the generic single-step assignment payload.
type AssignInput struct {
	AssignedToID         *string
	AssignedToName       *string
	RequiredEquipmentIDs []string
	Note                 *string
}

// AssignManager routes a ticket to a manager. Admin only. A Pending ticket
// moves to In Progress; a ticket already past In Progress is not re-routed.
func (s *AssignmentService) AssignManager(ctx context.Context, caller domain.Identity, ticketID, managerID string, equipmentIDs []string, note *string) (*domain.Ticket, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin required")
	}
	manager, err := s.loadUser(ctx, managerID, "manager")
	if err != nil {
		return nil, err
	}
	if manager.Role != domain.RoleManager {
		return nil, apperrors.NewValidationError("assignee is not a manager", map[string]any{"user_id": managerID})
	}

	ticket, err := s.loadRoutableTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	prior := ticket.Status
	ticket.AssignedManagerID = &manager.ID
	if ticket.Status == domain.TicketStatusPending {
		ticket.Status = domain.TicketStatusInProgress
	}
	if err := s.tickets.UpdateWorkflow(ctx, ticket, prior); err != nil {
		return nil, mapWorkflowError(err)
	}
	if err := s.appendLog(ctx, ticket.ID, manager.ID, caller.ID, domain.AssignmentRoleManager, equipmentIDs, note); err != nil {
		return nil, err
	}
	s.publishAssigned(ctx, caller, ticket.ID, &manager.ID, manager.Name, domain.AssignmentRoleManager)
	return ticket, nil
}

// AssignEmployee routes a ticket onward to an employee. Only the manager
// currently on the ticket's chain may do this.
func (s *AssignmentService) AssignEmployee(ctx context.Context, caller domain.Identity, ticketID, employeeID string, equipmentIDs []string, note *string) (*domain.Ticket, error) {
	if caller.Role != domain.RoleManager {
		return nil, apperrors.NewForbidden("manager required")
	}
	ticket, err := s.loadRoutableTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsChainManager(caller.ID) {
		return nil, apperrors.NewForbidden("not your ticket")
	}
	employee, err := s.loadUser(ctx, employeeID, "employee")
	if err != nil {
		return nil, err
	}
	if employee.Role != domain.RoleEmployee {
		return nil, apperrors.NewValidationError("assignee is not an employee", map[string]any{"user_id": employeeID})
	}

	prior := ticket.Status
	ticket.AssignedEmployeeID = &employee.ID
	if ticket.Status == domain.TicketStatusPending {
		ticket.Status = domain.TicketStatusInProgress
	}
	if err := s.tickets.UpdateWorkflow(ctx, ticket, prior); err != nil {
		return nil, mapWorkflowError(err)
	}
	if err := s.appendLog(ctx, ticket.ID, employee.ID, caller.ID, domain.AssignmentRoleEmployee, equipmentIDs, note); err != nil {
		return nil, err
	}
	s.publishAssigned(ctx, caller, ticket.ID, &employee.ID, employee.Name, domain.AssignmentRoleEmployee)
	return ticket, nil
}

// Assign is the generic single-step assignment used by flows that do not
// distinguish the two hops. The target resolves by user id first, then by
// free-text name; an unresolved name is stored on the ticket but produces no
// chain-log entry, since it carries no identity to log.
func (s *AssignmentService) Assign(ctx context.Context, caller domain.Identity, ticketID string, input AssignInput) (*domain.Ticket, error) {
	if caller.Role != domain.RoleAdmin && caller.Role != domain.RoleManager {
		return nil, apperrors.NewForbidden("admin or manager required")
	}

	assignee, err := s.resolveTarget(ctx, input)
	if err != nil {
		return nil, err
	}

	ticket, err := s.loadRoutableTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	prior := ticket.Status
	ticket.AssignedToID = assignee.UserID
	name := assignee.Name
	ticket.AssignedToName = &name
	if ticket.Status == domain.TicketStatusPending {
		ticket.Status = domain.TicketStatusInProgress
	}
	if err := s.tickets.UpdateWorkflow(ctx, ticket, prior); err != nil {
		return nil, mapWorkflowError(err)
	}

	var hopRole *domain.AssignmentRole
	if assignee.Resolved() {
		role := hopRoleOf(ctx, s.users, *assignee.UserID)
		hopRole = &role
		if err := s.appendLog(ctx, ticket.ID, *assignee.UserID, caller.ID, role, input.RequiredEquipmentIDs, input.Note); err != nil {
			return nil, err
		}
	}
	s.publishAssignedDetail(ctx, caller, ticket.ID, assignee.UserID, assignee.Name, hopRole)
	return ticket, nil
}

// ListLog returns the chain log for a ticket. Admins and the ticket's chain
// manager may read it.
func (s *AssignmentService) ListLog(ctx context.Context, caller domain.Identity, ticketID string) ([]domain.AssignmentLogEntry, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if caller.Role != domain.RoleAdmin && !ticket.IsChainManager(caller.ID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	entries, err := s.log.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *AssignmentService) resolveTarget(ctx context.Context, input AssignInput) (domain.Assignee, error) {
	if input.AssignedToID != nil && *input.AssignedToID != "" {
		user, err := s.users.GetByID(ctx, *input.AssignedToID)
		if err == nil {
			return domain.ResolvedAssignee(user), nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return domain.Assignee{}, apperrors.MapError(err)
		}
		// fall through to the name fallback
	}
	if input.AssignedToName != nil && strings.TrimSpace(*input.AssignedToName) != "" {
		name := strings.TrimSpace(*input.AssignedToName)
		user, err := s.users.GetByName(ctx, name)
		if err == nil {
			return domain.ResolvedAssignee(user), nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return domain.Assignee{}, apperrors.MapError(err)
		}
		return domain.UnresolvedAssignee(name), nil
	}
	return domain.Assignee{}, apperrors.NewValidationError("assignedToId or assignedToName is required", nil)
}

// loadRoutableTicket fetches a ticket and rejects hops on tickets already
// past In Progress, so the chain log stays meaningful.
func (s *AssignmentService) loadRoutableTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	switch ticket.Status {
	case domain.TicketStatusPending, domain.TicketStatusInProgress:
		return ticket, nil
	}
	return nil, apperrors.NewPrecondition("ticket is past assignment", map[string]any{"status": ticket.Status})
}

func (s *AssignmentService) loadUser(ctx context.Context, userID, resource string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound(resource, map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *AssignmentService) appendLog(ctx context.Context, ticketID, assigneeID, assignerID string, role domain.AssignmentRole, equipmentIDs []string, note *string) error {
	entry := &domain.AssignmentLogEntry{
		TicketID:     ticketID,
		AssignedToID: assigneeID,
		AssignedByID: assignerID,
		Role:         role,
		EquipmentIDs: equipmentIDs,
		Note:         note,
	}
	if err := s.log.Append(ctx, entry); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// hopRoleOf labels a resolved single-step assignee for the chain log.
// Managers log as the manager hop; everyone else as the employee hop.
func hopRoleOf(ctx context.Context, users repository.UserRepository, userID string) domain.AssignmentRole {
	user, err := users.GetByID(ctx, userID)
	if err == nil && user.Role == domain.RoleManager {
		return domain.AssignmentRoleManager
	}
	return domain.AssignmentRoleEmployee
}

func (s *AssignmentService) publishAssigned(ctx context.Context, caller domain.Identity, ticketID string, assigneeID *string, assigneeName string, role domain.AssignmentRole) {
	s.publishAssignedDetail(ctx, caller, ticketID, assigneeID, assigneeName, &role)
}

func (s *AssignmentService) publishAssignedDetail(ctx context.Context, caller domain.Identity, ticketID string, assigneeID *string, assigneeName string, role *domain.AssignmentRole) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketAssigned,
		TicketID:  ticketID,
		Actor:     events.Actor{UserID: caller.ID, Role: caller.Role},
		Timestamp: time.Now(),
		Payload: events.TicketAssignedPayload{
			AssigneeID:   assigneeID,
			AssigneeName: assigneeName,
			HopRole:      role,
		},
	}
	_ = s.dispatcher.Publish(ctx, event)
}
