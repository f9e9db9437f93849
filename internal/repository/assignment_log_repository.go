package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/equipment-ticketing/internal/domain"
)

// AssignmentLogRepository stores chain-log entries. Entries are append-only;
// there is no update or delete path.
type AssignmentLogRepository interface {
	Append(ctx context.Context, entry *domain.AssignmentLogEntry) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.AssignmentLogEntry, error)
}

type assignmentLogRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentLogRepository builds repository.
func NewAssignmentLogRepository(pool *pgxpool.Pool) AssignmentLogRepository {
	return &assignmentLogRepository{pool: pool}
}

func (r *assignmentLogRepository) Append(ctx context.Context, entry *domain.AssignmentLogEntry) error {
	const query = `
        INSERT INTO ticket_assignments (ticket_id, assigned_to_id, assigned_by_id, role, equipment_ids, note)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.AssignedToID,
		entry.AssignedByID,
		entry.Role,
		entry.EquipmentIDs,
		entry.Note,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *assignmentLogRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.AssignmentLogEntry, error) {
	const query = `
        SELECT id, ticket_id, assigned_to_id, assigned_by_id, role, equipment_ids, note, created_at
        FROM ticket_assignments WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AssignmentLogEntry
	for rows.Next() {
		var entry domain.AssignmentLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.AssignedToID,
			&entry.AssignedByID,
			&entry.Role,
			&entry.EquipmentIDs,
			&entry.Note,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
