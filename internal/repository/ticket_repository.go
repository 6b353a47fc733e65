package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joshwa2003/hr-helpdesk/internal/domain"
)

// ErrVersionConflict signals a lost optimistic-lock race on a ticket update.
var ErrVersionConflict = fmt.Errorf("ticket version conflict")

// TicketFilter captures ticket search parameters.
type TicketFilter struct {
	CreatedBy    *string
	AssignedTo   *string
	Unassigned   *bool
	Categories   []domain.TicketCategory
	Statuses     []domain.TicketStatus
	Priorities   []domain.TicketPriority
	SearchTerm   *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// openStatuses count toward an agent's workload.
var openStatuses = []domain.TicketStatus{
	domain.TicketStatusOpen,
	domain.TicketStatusInProgress,
	domain.TicketStatusPending,
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// Update writes the ticket guarded by its version column and bumps the
	// version on success. Returns ErrVersionConflict when the row moved.
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// CountOpenByAssignee returns the agent's current workload: tickets in
	// Open, InProgress or Pending assigned to them.
	CountOpenByAssignee(ctx context.Context, userID string) (int, error)
	// ListForSweep returns tickets the escalation sweep must inspect, i.e.
	// everything not Closed or Resolved.
	ListForSweep(ctx context.Context, limit int) ([]domain.Ticket, error)
	// MaxTicketNumber returns the highest ticket number starting with prefix,
	// or empty string when none exist.
	MaxTicketNumber(ctx context.Context, prefix string) (string, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_number, created_by, assigned_to, is_manually_assigned,
               category, subcategory, subject, description, status, priority, tags,
               is_confidential, escalation_level, sla, resolution, feedback,
               first_response_at, resolved_at, closed_at, version, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_number, created_by, assigned_to, is_manually_assigned,
            category, subcategory, subject, description, status, priority, tags,
            is_confidential, escalation_level, sla, resolution)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id, version, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.CreatedBy,
		ticket.AssignedTo,
		ticket.IsManuallyAssigned,
		ticket.Category,
		ticket.Subcategory,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Tags,
		ticket.IsConfidential,
		ticket.EscalationLevel,
		ticket.SLA,
		ticket.Resolution,
	).Scan(&ticket.ID, &ticket.Version, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET assigned_to=$1, is_manually_assigned=$2, category=$3, subcategory=$4,
            subject=$5, description=$6, status=$7, priority=$8, tags=$9, is_confidential=$10,
            escalation_level=$11, sla=$12, resolution=$13, feedback=$14,
            first_response_at=$15, resolved_at=$16, closed_at=$17,
            version=version+1, updated_at=NOW()
        WHERE id=$18 AND version=$19`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.AssignedTo,
		ticket.IsManuallyAssigned,
		ticket.Category,
		ticket.Subcategory,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Tags,
		ticket.IsConfidential,
		ticket.EscalationLevel,
		ticket.SLA,
		ticket.Resolution,
		ticket.Feedback,
		ticket.FirstResponseAt,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.ID,
		ticket.Version,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		// either unknown id or a concurrent writer bumped the version
		if _, getErr := r.GetByID(ctx, ticket.ID); getErr != nil {
			return getErr
		}
		return ErrVersionConflict
	}
	ticket.Version++
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_number=$1`
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.CreatedBy,
		&ticket.AssignedTo,
		&ticket.IsManuallyAssigned,
		&ticket.Category,
		&ticket.Subcategory,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Tags,
		&ticket.IsConfidential,
		&ticket.EscalationLevel,
		&ticket.SLA,
		&ticket.Resolution,
		&ticket.Feedback,
		&ticket.FirstResponseAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
		&ticket.Version,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("created_by=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if filter.Unassigned != nil && *filter.Unassigned {
		clauses = append(clauses, "assigned_to IS NULL")
	}
	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, cat := range filter.Categories {
			args = append(args, cat)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("category IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(subject) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountOpenByAssignee(ctx context.Context, userID string) (int, error) {
	const query = `
        SELECT COUNT(*) FROM tickets
        WHERE assigned_to=$1 AND status = ANY($2)`
	statuses := make([]string, len(openStatuses))
	for i, s := range openStatuses {
		statuses[i] = string(s)
	}
	var count int
	if err := r.pool.QueryRow(ctx, query, userID, statuses).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ticketRepository) ListForSweep(ctx context.Context, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 500
	}
	query := fmt.Sprintf(`SELECT %s FROM tickets
        WHERE status NOT IN ('CLOSED','RESOLVED')
        ORDER BY created_at ASC LIMIT %d`, ticketColumns, limit)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) MaxTicketNumber(ctx context.Context, prefix string) (string, error) {
	const query = `
        SELECT COALESCE(MAX(ticket_number), '') FROM tickets
        WHERE ticket_number LIKE $1`
	var max string
	if err := r.pool.QueryRow(ctx, query, prefix+"%").Scan(&max); err != nil {
		return "", err
	}
	return max, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TicketNumber,
			&ticket.CreatedBy,
			&ticket.AssignedTo,
			&ticket.IsManuallyAssigned,
			&ticket.Category,
			&ticket.Subcategory,
			&ticket.Subject,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.Tags,
			&ticket.IsConfidential,
			&ticket.EscalationLevel,
			&ticket.SLA,
			&ticket.Resolution,
			&ticket.Feedback,
			&ticket.FirstResponseAt,
			&ticket.ResolvedAt,
			&ticket.ClosedAt,
			&ticket.Version,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
