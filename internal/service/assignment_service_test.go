package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/equipment-ticketing/internal/domain"
	"github.com/spec-kit/equipment-ticketing/internal/events"
	apperrors "github.com/spec-kit/equipment-ticketing/pkg/util"
)

func TestAssignManagerAdminOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ticket := f.raiseTicket(ctx)

	_, err := f.assignmentSvc.AssignManager(ctx, f.identity(f.manager), ticket.ID, f.manager.ID, nil, nil)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestAssignManagerTargetMustBeManager(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ticket := f.raiseTicket(ctx)

	_, err := f.assignmentSvc.AssignManager(ctx, f.identity(f.admin), ticket.ID, f.employee.ID, nil, nil)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = f.assignmentSvc.AssignManager(ctx, f.identity(f.admin), ticket.ID, "user-404", nil, nil)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestAssignManagerBumpsPendingAndLogs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ticket := f.raiseTicket(ctx)

	note := "handle today"
	routed, err := f.assignmentSvc.AssignManager(ctx, f.identity(f.admin), ticket.ID, f.manager.ID, []string{"eq-1", "eq-2"}, &note)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusInProgress, routed.Status)
	assert.Equal(t, f.manager.ID, *routed.AssignedManagerID)

	entries, err := f.log.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AssignmentRoleManager, entries[0].Role)
	assert.Equal(t, f.manager.ID, entries[0].AssignedToID)
	assert.Equal(t, f.admin.ID, entries[0].AssignedByID)
	assert.Equal(t, []string{"eq-1", "eq-2"}, entries[0].EquipmentIDs)
	assert.Equal(t, note, *entries[0].Note)

	assigned := f.dispatcher.eventsOfType(events.EventTicketAssigned)
	require.Len(t, assigned, 1)
}

func TestAssignEmployeeRequiresChainManager(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ticket := f.raiseTicket(ctx)

	_, err := f.assignmentSvc.AssignManager(ctx, f.identity(f.admin), ticket.ID, f.manager.ID, nil, nil)
	require.NoError(t, err)

	other := f.addUser("Olaf Other", domain.RoleManager, &f.unitA.ID, strPtr("Imaging"))
	_, err = f.assignmentSvc.AssignEmployee(ctx, f.identity(other), ticket.ID, f.employee.ID, nil, nil)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = f.assignmentSvc.AssignEmployee(ctx, f.identity(f.manager), ticket.ID, f.manager.ID, nil, nil)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	routed, err := f.assignmentSvc.AssignEmployee(ctx, f.identity(f.manager), ticket.ID, f.employee.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, f.employee.ID, *routed.AssignedEmployeeID)
	assert.Equal(t, f.manager.ID, *routed.AssignedManagerID)
}

func TestAssignRejectedPastInProgress(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ticket := f.raiseTicket(ctx)

	stored, err := f.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	stored.Status = domain.TicketStatusResolved
	require.NoError(t, f.tickets.Update(ctx, stored))

	_, err = f.assignmentSvc.AssignManager(ctx, f.identity(f.admin), ticket.ID, f.manager.ID, nil, nil)
	assert.True(t, apperrors.IsCode(err, "PRECONDITION_FAILED"))

	_, err = f.assignmentSvc.Assign(ctx, f.identity(f.admin), ticket.ID, AssignInput{AssignedToID: &f.manager.ID})
	assert.True(t, apperrors.IsCode(err, "PRECONDITION_FAILED"))
}

func TestAssignByIDLogsHopRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ticket := f.raiseTicket(ctx)

	routed, err := f.assignmentSvc.Assign(ctx, f.identity(f.admin), ticket.ID, AssignInput{
		AssignedToID: &f.manager.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, routed.Status)
	assert.Equal(t, f.manager.ID, *routed.AssignedToID)
	assert.Equal(t, f.manager.Name, *routed.AssignedToName)

	entries, err := f.log.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AssignmentRoleManager, entries[0].Role)
}

func TestAssignUnresolvedNameSkipsLog(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ticket := f.raiseTicket(ctx)

	name := "External Contractor"
	routed, err := f.assignmentSvc.Assign(ctx, f.identity(f.manager), ticket.ID, AssignInput{
		AssignedToName: &name,
	})
	require.NoError(t, err)
	assert.Nil(t, routed.AssignedToID)
	assert.Equal(t, name, *routed.AssignedToName)

	// no identity, nothing to log
	entries, err := f.log.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAssignRequiresTarget(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ticket := f.raiseTicket(ctx)

	_, err := f.assignmentSvc.Assign(ctx, f.identity(f.admin), ticket.ID, AssignInput{})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = f.assignmentSvc.Assign(ctx, f.identity(f.employee), ticket.ID, AssignInput{AssignedToID: &f.manager.ID})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestListLogAccess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ticket := f.raiseTicket(ctx)

	_, err := f.assignmentSvc.AssignManager(ctx, f.identity(f.admin), ticket.ID, f.manager.ID, nil, nil)
	require.NoError(t, err)
	_, err = f.assignmentSvc.AssignEmployee(ctx, f.identity(f.manager), ticket.ID, f.employee.ID, nil, nil)
	require.NoError(t, err)

	entries, err := f.assignmentSvc.ListLog(ctx, f.identity(f.admin), ticket.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = f.assignmentSvc.ListLog(ctx, f.identity(f.manager), ticket.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	other := f.addUser("Rita Remote", domain.RoleManager, &f.unitB.ID, nil)
	_, err = f.assignmentSvc.ListLog(ctx, f.identity(other), ticket.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}
