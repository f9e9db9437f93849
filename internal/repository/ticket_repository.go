package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/equipment-ticketing/internal/domain"
)

const ticketColumns = `id, title, description, category, priority, department,
               floor, room, bed, status, unit_id, equipment_id,
               assigned_to_id, assigned_to_name, assigned_manager_id, assigned_employee_id,
               created_by_id, work_note, equipments_used, manager_review_note,
               department_review_note, comment,
               created_at, updated_at, started_at, completed_at, closed_at`

// TicketScope is the visibility predicate for a listing query. Every set
// clause is OR'd with the others; UnitStatus pairs a unit with a status as a
// single AND group. An empty scope with All set selects everything.
type TicketScope struct {
	All                bool
	CreatedByID        *string
	AssignedToID       *string
	AssignedManagerID  *string
	AssignedEmployeeID *string
	AnyAssignee        bool
	Status             *domain.TicketStatus
	UnitID             *string
	UnitStatus         *UnitStatusClause
}

// UnitStatusClause selects tickets of one unit in one status.
type UnitStatusClause struct {
	UnitID string
	Status domain.TicketStatus
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) error
	// UpdateWorkflow persists the ticket only when its stored status still
	// equals expected; pgx.ErrNoRows signals a lost race or a stale read.
	UpdateWorkflow(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error
	ListScoped(ctx context.Context, scope TicketScope) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, category, priority, department,
            floor, room, bed, status, unit_id, equipment_id, created_by_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Department,
		ticket.Floor,
		ticket.Room,
		ticket.Bed,
		ticket.Status,
		ticket.UnitID,
		ticket.EquipmentID,
		ticket.CreatedByID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	row := r.pool.QueryRow(ctx, query, id)
	return scanTicket(row)
}

// mutableColumns excludes unit_id and created_by_id: both are fixed at
// creation and have no write path.
const mutableColumns = `category=$1, priority=$2, status=$3,
            assigned_to_id=$4, assigned_to_name=$5, assigned_manager_id=$6, assigned_employee_id=$7,
            work_note=$8, equipments_used=$9, manager_review_note=$10, department_review_note=$11,
            comment=$12, started_at=$13, completed_at=$14, closed_at=$15, updated_at=NOW()`

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$16`, mutableColumns)
	cmd, err := r.pool.Exec(ctx, query, mutableArgs(ticket, ticket.ID)...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) UpdateWorkflow(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error {
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$16 AND status=$17`, mutableColumns)
	cmd, err := r.pool.Exec(ctx, query, mutableArgs(ticket, ticket.ID, expected)...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func mutableArgs(ticket *domain.Ticket, trailing ...any) []any {
	args := []any{
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.AssignedToID,
		ticket.AssignedToName,
		ticket.AssignedManagerID,
		ticket.AssignedEmployeeID,
		ticket.WorkNote,
		ticket.EquipmentsUsed,
		ticket.ManagerReviewNote,
		ticket.DepartmentReviewNote,
		ticket.Comment,
		ticket.StartedAt,
		ticket.CompletedAt,
		ticket.ClosedAt,
	}
	return append(args, trailing...)
}

func (r *ticketRepository) ListScoped(ctx context.Context, scope TicketScope) ([]domain.Ticket, error) {
	clauses := []string{}
	args := []any{}

	if scope.CreatedByID != nil {
		args = append(args, *scope.CreatedByID)
		clauses = append(clauses, fmt.Sprintf("created_by_id=$%d", len(args)))
	}
	if scope.AssignedToID != nil {
		args = append(args, *scope.AssignedToID)
		clauses = append(clauses, fmt.Sprintf("assigned_to_id=$%d", len(args)))
	}
	if scope.AssignedManagerID != nil {
		args = append(args, *scope.AssignedManagerID)
		clauses = append(clauses, fmt.Sprintf("assigned_manager_id=$%d", len(args)))
	}
	if scope.AssignedEmployeeID != nil {
		args = append(args, *scope.AssignedEmployeeID)
		clauses = append(clauses, fmt.Sprintf("assigned_employee_id=$%d", len(args)))
	}
	if scope.AnyAssignee {
		clauses = append(clauses, "assigned_to_id IS NOT NULL")
	}
	if scope.Status != nil {
		args = append(args, *scope.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if scope.UnitID != nil {
		args = append(args, *scope.UnitID)
		clauses = append(clauses, fmt.Sprintf("unit_id=$%d", len(args)))
	}
	if scope.UnitStatus != nil {
		args = append(args, scope.UnitStatus.UnitID)
		unitPlaceholder := len(args)
		args = append(args, scope.UnitStatus.Status)
		clauses = append(clauses, fmt.Sprintf("(unit_id=$%d AND status=$%d)", unitPlaceholder, len(args)))
	}

	where := "1=1"
	if len(clauses) > 0 {
		where = "(" + strings.Join(clauses, " OR ") + ")"
	} else if !scope.All {
		// an empty scope without the override flag selects nothing
		where = "1=0"
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC`, ticketColumns, where)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Department,
		&ticket.Floor,
		&ticket.Room,
		&ticket.Bed,
		&ticket.Status,
		&ticket.UnitID,
		&ticket.EquipmentID,
		&ticket.AssignedToID,
		&ticket.AssignedToName,
		&ticket.AssignedManagerID,
		&ticket.AssignedEmployeeID,
		&ticket.CreatedByID,
		&ticket.WorkNote,
		&ticket.EquipmentsUsed,
		&ticket.ManagerReviewNote,
		&ticket.DepartmentReviewNote,
		&ticket.Comment,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.StartedAt,
		&ticket.CompletedAt,
		&ticket.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
