package service

import (
	"github.com/spec-kit/equipment-ticketing/internal/domain"
	"github.com/spec-kit/equipment-ticketing/internal/repository"
)

// ScopeFor derives the listing predicate for a caller's queue.
//
// Admins see what they raised, the Verified queue awaiting closure, and
// every ticket with a single-step assignee (oversight). Managers see tickets
// assigned to them, tickets they routed onward, and their unit's Resolved
// tickets awaiting verification. Employees see tickets where they are the
// chain employee or the single-step assignee.
func ScopeFor(caller domain.Identity) repository.TicketScope {
	id := caller.ID
	switch caller.Role {
	case domain.RoleAdmin:
		verified := domain.TicketStatusVerified
		return repository.TicketScope{
			CreatedByID: &id,
			Status:      &verified,
			AnyAssignee: true,
		}
	case domain.RoleManager:
		scope := repository.TicketScope{
			AssignedToID:      &id,
			AssignedManagerID: &id,
		}
		if caller.UnitID != nil {
			scope.UnitStatus = &repository.UnitStatusClause{
				UnitID: *caller.UnitID,
				Status: domain.TicketStatusResolved,
			}
		}
		return scope
	default:
		return repository.TicketScope{
			AssignedEmployeeID: &id,
			AssignedToID:       &id,
		}
	}
}
