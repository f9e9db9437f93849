package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to TicketStatus
		want     bool
	}{
		{TicketStatusPending, TicketStatusInProgress, true},
		{TicketStatusInProgress, TicketStatusInProgress, true},
		{TicketStatusInProgress, TicketStatusResolved, true},
		{TicketStatusResolved, TicketStatusVerified, true},
		{TicketStatusVerified, TicketStatusClosed, true},

		{TicketStatusPending, TicketStatusResolved, false},
		{TicketStatusPending, TicketStatusClosed, false},
		{TicketStatusResolved, TicketStatusInProgress, false},
		{TicketStatusVerified, TicketStatusResolved, false},
		{TicketStatusClosed, TicketStatusPending, false},
		{TicketStatusClosed, TicketStatusInProgress, false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestRoleMaySetStatus(t *testing.T) {
	assert.True(t, RoleMaySetStatus(RoleEmployee, TicketStatusInProgress))
	assert.False(t, RoleMaySetStatus(RoleEmployee, TicketStatusResolved))
	assert.False(t, RoleMaySetStatus(RoleEmployee, TicketStatusClosed))

	assert.True(t, RoleMaySetStatus(RoleManager, TicketStatusResolved))
	assert.False(t, RoleMaySetStatus(RoleManager, TicketStatusVerified))
	assert.False(t, RoleMaySetStatus(RoleManager, TicketStatusInProgress))

	for _, status := range []TicketStatus{
		TicketStatusPending, TicketStatusInProgress, TicketStatusResolved,
		TicketStatusVerified, TicketStatusClosed,
	} {
		assert.Truef(t, RoleMaySetStatus(RoleAdmin, status), "admin should set %s", status)
	}
}

func TestAllowedUpdateStatuses(t *testing.T) {
	assert.Equal(t, []TicketStatus{TicketStatusInProgress}, AllowedUpdateStatuses(RoleEmployee))
	assert.Equal(t, []TicketStatus{TicketStatusResolved}, AllowedUpdateStatuses(RoleManager))
	assert.Len(t, AllowedUpdateStatuses(RoleAdmin), 5)
	assert.Empty(t, AllowedUpdateStatuses(Role("intruder")))
}
