package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/equipment-ticketing/internal/domain"
	"github.com/spec-kit/equipment-ticketing/internal/events"
	"github.com/spec-kit/equipment-ticketing/internal/repository"
)

// memoryTicketRepo mimics the Postgres repository, including the conditional
// workflow write: a stale expected status yields pgx.ErrNoRows.
type memoryTicketRepo struct {
	mu      sync.Mutex
	seq     int
	order   []string
	tickets map[string]domain.Ticket
}

func newMemoryTicketRepo() *memoryTicketRepo {
	return &memoryTicketRepo{tickets: make(map[string]domain.Ticket)}
}

func (r *memoryTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.tickets[ticket.ID] = *ticket
	r.order = append(r.order, ticket.ID)
	return nil
}

func (r *memoryTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := stored
	return &copied, nil
}

func (r *memoryTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memoryTicketRepo) UpdateWorkflow(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[ticket.ID]
	if !ok || stored.Status != expected {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memoryTicketRepo) ListScoped(ctx context.Context, scope repository.TicketScope) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for i := len(r.order) - 1; i >= 0; i-- {
		ticket := r.tickets[r.order[i]]
		if matchesScope(scope, &ticket) {
			result = append(result, ticket)
		}
	}
	return result, nil
}

// matchesScope mirrors the OR semantics of the SQL builder.
func matchesScope(scope repository.TicketScope, t *domain.Ticket) bool {
	any := false
	if scope.CreatedByID != nil {
		any = true
		if t.CreatedByID == *scope.CreatedByID {
			return true
		}
	}
	if scope.AssignedToID != nil {
		any = true
		if t.AssignedToID != nil && *t.AssignedToID == *scope.AssignedToID {
			return true
		}
	}
	if scope.AssignedManagerID != nil {
		any = true
		if t.AssignedManagerID != nil && *t.AssignedManagerID == *scope.AssignedManagerID {
			return true
		}
	}
	if scope.AssignedEmployeeID != nil {
		any = true
		if t.AssignedEmployeeID != nil && *t.AssignedEmployeeID == *scope.AssignedEmployeeID {
			return true
		}
	}
	if scope.AnyAssignee {
		any = true
		if t.AssignedToID != nil {
			return true
		}
	}
	if scope.Status != nil {
		any = true
		if t.Status == *scope.Status {
			return true
		}
	}
	if scope.UnitID != nil {
		any = true
		if t.UnitID == *scope.UnitID {
			return true
		}
	}
	if scope.UnitStatus != nil {
		any = true
		if t.UnitID == scope.UnitStatus.UnitID && t.Status == scope.UnitStatus.Status {
			return true
		}
	}
	if !any {
		return scope.All
	}
	return false
}

type memoryUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]domain.User)}
}

func (r *memoryUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := user
	return &copied, nil
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findFirst(func(u domain.User) bool { return u.Email == email })
}

func (r *memoryUserRepo) GetByName(ctx context.Context, name string) (*domain.User, error) {
	return r.findFirst(func(u domain.User) bool { return u.Name == name })
}

func (r *memoryUserRepo) findFirst(match func(domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if match(user) {
			copied := user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryUserRepo) ListAssignable(ctx context.Context, unitID string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.users {
		if user.Role == domain.RoleAdmin || (user.UnitID != nil && *user.UnitID == unitID) {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Role != result[j].Role {
			return result[i].Role < result[j].Role
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

type memoryUnitRepo struct {
	mu    sync.Mutex
	seq   int
	units map[string]domain.Unit
}

func newMemoryUnitRepo() *memoryUnitRepo {
	return &memoryUnitRepo{units: make(map[string]domain.Unit)}
}

func (r *memoryUnitRepo) Create(ctx context.Context, unit *domain.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	unit.ID = fmt.Sprintf("unit-%d", r.seq)
	r.units[unit.ID] = *unit
	return nil
}

func (r *memoryUnitRepo) GetByID(ctx context.Context, id string) (*domain.Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	unit, ok := r.units[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := unit
	return &copied, nil
}

func (r *memoryUnitRepo) List(ctx context.Context) ([]domain.Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Unit
	for _, unit := range r.units {
		result = append(result, unit)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

type memoryLogRepo struct {
	mu      sync.Mutex
	seq     int
	entries []domain.AssignmentLogEntry
}

func newMemoryLogRepo() *memoryLogRepo {
	return &memoryLogRepo{}
}

func (r *memoryLogRepo) Append(ctx context.Context, entry *domain.AssignmentLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	entry.ID = fmt.Sprintf("log-%d", r.seq)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memoryLogRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.AssignmentLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.AssignmentLogEntry
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *recordingDispatcher) eventsOfType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.published {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

// fixture bundles repos, services and canonical actors for workflow tests.
type fixture struct {
	tickets    *memoryTicketRepo
	users      *memoryUserRepo
	units      *memoryUnitRepo
	log        *memoryLogRepo
	dispatcher *recordingDispatcher

	ticketSvc     *TicketService
	assignmentSvc *AssignmentService

	unitA domain.Unit
	unitB domain.Unit

	admin    domain.User
	manager  domain.User
	employee domain.User
}

func newFixture() *fixture {
	f := &fixture{
		tickets:    newMemoryTicketRepo(),
		users:      newMemoryUserRepo(),
		units:      newMemoryUnitRepo(),
		log:        newMemoryLogRepo(),
		dispatcher: &recordingDispatcher{},
	}
	f.ticketSvc = NewTicketService(TicketDependencies{
		TicketRepo: f.tickets,
		UserRepo:   f.users,
		UnitRepo:   f.units,
		Dispatcher: f.dispatcher,
	})
	f.assignmentSvc = NewAssignmentService(AssignmentDependencies{
		TicketRepo: f.tickets,
		UserRepo:   f.users,
		LogRepo:    f.log,
		Dispatcher: f.dispatcher,
	})

	ctx := context.Background()
	f.unitA = domain.Unit{Name: "Radiology", Code: "RAD"}
	f.unitB = domain.Unit{Name: "Cardiology", Code: "CAR"}
	_ = f.units.Create(ctx, &f.unitA)
	_ = f.units.Create(ctx, &f.unitB)

	f.admin = f.addUser("Ava Admin", domain.RoleAdmin, nil, strPtr("Facilities"))
	f.manager = f.addUser("Mia Manager", domain.RoleManager, &f.unitA.ID, strPtr("Imaging"))
	f.employee = f.addUser("Eli Employee", domain.RoleEmployee, &f.unitA.ID, strPtr("Imaging"))
	return f
}

func (f *fixture) addUser(name string, role domain.Role, unitID, department *string) domain.User {
	email := strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com"
	user := domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		UnitID:       unitID,
		Department:   department,
	}
	_ = f.users.Create(context.Background(), &user)
	return user
}

func (f *fixture) identity(u domain.User) domain.Identity {
	return domain.IdentityOf(&u)
}

// raiseTicket opens a Pending ticket through the service as the employee.
func (f *fixture) raiseTicket(ctx context.Context) *domain.Ticket {
	ticket, err := f.ticketSvc.CreateTicket(ctx, f.identity(f.employee), TicketCreateInput{
		Title:       "Ventilator alarm fault",
		Description: "Unit beeps continuously after power-on",
		Category:    "repair",
		Priority:    "high",
		Department:  "Imaging",
	})
	if err != nil {
		panic(err)
	}
	return ticket
}

func strPtr(s string) *string { return &s }
