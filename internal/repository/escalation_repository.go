package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joshwa2003/hr-helpdesk/internal/domain"
)

// EscalationRepository stores the append-only escalation trail per ticket.
type EscalationRepository interface {
	Create(ctx context.Context, entry *domain.EscalationEntry) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.EscalationEntry, error)
}

type escalationRepository struct {
	pool *pgxpool.Pool
}

// NewEscalationRepository builds repository.
func NewEscalationRepository(pool *pgxpool.Pool) EscalationRepository {
	return &escalationRepository{pool: pool}
}

func (r *escalationRepository) Create(ctx context.Context, entry *domain.EscalationEntry) error {
	const query = `
        INSERT INTO ticket_escalations (ticket_id, from_role, to_role, escalated_by, reason, is_auto)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.FromRole,
		entry.ToRole,
		entry.EscalatedBy,
		entry.Reason,
		entry.IsAutoEscalation,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *escalationRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.EscalationEntry, error) {
	const query = `
        SELECT id, ticket_id, from_role, to_role, escalated_by, reason, is_auto, created_at
        FROM ticket_escalations WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EscalationEntry
	for rows.Next() {
		var entry domain.EscalationEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.FromRole,
			&entry.ToRole,
			&entry.EscalatedBy,
			&entry.Reason,
			&entry.IsAutoEscalation,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
