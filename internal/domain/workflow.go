package domain

// chainNext holds the forward edges of the canonical status chain. The
// In Progress self-edge covers repeated work updates by the assigned
// employee.
var chainNext = map[TicketStatus][]TicketStatus{
	TicketStatusPending:    {TicketStatusInProgress},
	TicketStatusInProgress: {TicketStatusInProgress, TicketStatusResolved},
	TicketStatusResolved:   {TicketStatusVerified},
	TicketStatusVerified:   {TicketStatusClosed},
	TicketStatusClosed:     {},
}

// CanTransition reports whether the chain permits moving from one status to
// the next. The admin override path bypasses this check but still validates
// enum membership.
func CanTransition(from, to TicketStatus) bool {
	for _, candidate := range chainNext[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// updateTargets is the role-gated allowed-target set for the generic update
// operation, keyed by caller role.
var updateTargets = map[Role][]TicketStatus{
	RoleEmployee: {TicketStatusInProgress},
	RoleManager:  {TicketStatusResolved},
	RoleAdmin: {
		TicketStatusPending,
		TicketStatusInProgress,
		TicketStatusResolved,
		TicketStatusVerified,
		TicketStatusClosed,
	},
}

// AllowedUpdateStatuses returns the statuses a role may name in a generic
// update request.
func AllowedUpdateStatuses(role Role) []TicketStatus {
	return updateTargets[role]
}

// RoleMaySetStatus reports whether the role's allowed-target set contains the
// status.
func RoleMaySetStatus(role Role, status TicketStatus) bool {
	for _, candidate := range updateTargets[role] {
		if candidate == status {
			return true
		}
	}
	return false
}
