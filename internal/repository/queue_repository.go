package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civigo/citizen-portal/internal/domain"
)

const queueTicketColumns = `id, user_id, service_id, sector_id, status, position, served_by, forwarded_to, created_at, updated_at`

// SectorQueueStats aggregates per-sector queue figures for reporting.
type SectorQueueStats struct {
	SectorID       string
	SectorName     string
	Waiting        int64
	Called         int64
	Serving        int64
	CompletedToday int64
	IssuedToday    int64
	AvgWaitSeconds float64
}

// QueueRepository encapsulates queue ticket persistence. Position allocation
// and status transitions rely on the store's atomicity, not in-process locks,
// so multiple portal instances stay correct.
type QueueRepository interface {
	// CreateWithPosition inserts a ticket, allocating the next position in
	// the target service's queue atomically. Retries are internal; a
	// returned unique violation on the active-ticket index means a
	// duplicate active ticket.
	CreateWithPosition(ctx context.Context, ticket *domain.QueueTicket) error
	GetByID(ctx context.Context, id string) (*domain.QueueTicket, error)
	ListActiveByUser(ctx context.Context, userID string) ([]domain.QueueTicket, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.QueueTicket, error)
	ListActiveBySector(ctx context.Context, sectorID string) ([]domain.QueueTicket, error)
	ListHistoryBySector(ctx context.Context, sectorID string, limit int) ([]domain.QueueTicket, error)
	// UpdateStatusCAS applies a transition only when the ticket still bears
	// the expected status. Returns false when the precondition failed.
	UpdateStatusCAS(ctx context.Context, id string, expected, next domain.QueueStatus, servedBy *string) (bool, error)
	// Forward stamps the old ticket FORWARDED and inserts its replacement in
	// the target queue within one transaction, preserving the original
	// creation time.
	Forward(ctx context.Context, ticketID string, expected domain.QueueStatus, servedBy string, replacement *domain.QueueTicket) (bool, error)
	StatsBySector(ctx context.Context) ([]SectorQueueStats, error)
}

type queueRepository struct {
	pool *pgxpool.Pool
}

// NewQueueRepository instantiates repository.
func NewQueueRepository(pool *pgxpool.Pool) QueueRepository {
	return &queueRepository{pool: pool}
}

const positionAllocationRetries = 3

// retryOnPositionConflict runs fn up to positionAllocationRetries times.
// Concurrent allocators may race on the MAX(position)+1 slot; only a unique
// violation on the position index is retryable, every other error returns
// immediately.
func retryOnPositionConflict(fn func() error) error {
	var err error
	for attempt := 0; attempt < positionAllocationRetries; attempt++ {
		err = fn()
		if err == nil || !IsUniqueViolation(err, "queue_tickets_service_position_key") {
			return err
		}
	}
	return err
}

func (r *queueRepository) CreateWithPosition(ctx context.Context, ticket *domain.QueueTicket) error {
	const query = `
        INSERT INTO queue_tickets (user_id, service_id, sector_id, status, position, created_at)
        VALUES ($1, $2, $3, $4,
                (SELECT COALESCE(MAX(position), 0) + 1 FROM queue_tickets WHERE service_id=$2),
                $5)
        RETURNING id, position, created_at, updated_at`

	createdAt := ticket.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return retryOnPositionConflict(func() error {
		return r.pool.QueryRow(ctx, query,
			ticket.UserID,
			ticket.ServiceID,
			ticket.SectorID,
			ticket.Status,
			createdAt,
		).Scan(&ticket.ID, &ticket.Position, &ticket.CreatedAt, &ticket.UpdatedAt)
	})
}

func (r *queueRepository) GetByID(ctx context.Context, id string) (*domain.QueueTicket, error) {
	query := `SELECT ` + queueTicketColumns + ` FROM queue_tickets WHERE id=$1`
	var ticket domain.QueueTicket
	if err := r.pool.QueryRow(ctx, query, id).Scan(ticketFields(&ticket)...); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *queueRepository) ListActiveByUser(ctx context.Context, userID string) ([]domain.QueueTicket, error) {
	query := `SELECT ` + queueTicketColumns + `
        FROM queue_tickets
        WHERE user_id=$1 AND status IN ('WAITING','CALLED','SERVING')
        ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *queueRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.QueueTicket, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + queueTicketColumns + `
        FROM queue_tickets
        WHERE user_id=$1
        ORDER BY created_at DESC LIMIT $2`
	return r.list(ctx, query, userID, limit)
}

func (r *queueRepository) ListActiveBySector(ctx context.Context, sectorID string) ([]domain.QueueTicket, error) {
	query := `SELECT ` + queueTicketColumns + `
        FROM queue_tickets
        WHERE sector_id=$1 AND status IN ('WAITING','CALLED','SERVING')
        ORDER BY position ASC`
	return r.list(ctx, query, sectorID)
}

func (r *queueRepository) ListHistoryBySector(ctx context.Context, sectorID string, limit int) ([]domain.QueueTicket, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + queueTicketColumns + `
        FROM queue_tickets
        WHERE sector_id=$1 AND status IN ('FORWARDED','COMPLETED','CANCELLED','NO_SHOW')
        ORDER BY updated_at DESC LIMIT $2`
	return r.list(ctx, query, sectorID, limit)
}

func (r *queueRepository) UpdateStatusCAS(ctx context.Context, id string, expected, next domain.QueueStatus, servedBy *string) (bool, error) {
	const query = `
        UPDATE queue_tickets
        SET status=$1, served_by=COALESCE($2, served_by), updated_at=NOW()
        WHERE id=$3 AND status=$4`
	cmd, err := r.pool.Exec(ctx, query, next, servedBy, id, expected)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *queueRepository) Forward(ctx context.Context, ticketID string, expected domain.QueueStatus, servedBy string, replacement *domain.QueueTicket) (bool, error) {
	// The replacement insert allocates a position in the target queue and can
	// lose the slot to a concurrent take there; the whole transaction is
	// redone in that case.
	var forwarded bool
	err := retryOnPositionConflict(func() error {
		ok, err := r.forwardOnce(ctx, ticketID, expected, servedBy, replacement)
		forwarded = ok
		return err
	})
	return forwarded, err
}

func (r *queueRepository) forwardOnce(ctx context.Context, ticketID string, expected domain.QueueStatus, servedBy string, replacement *domain.QueueTicket) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const updateQuery = `
        UPDATE queue_tickets
        SET status='FORWARDED', served_by=$1, forwarded_to=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4`
	cmd, err := tx.Exec(ctx, updateQuery, servedBy, replacement.ServiceID, ticketID, expected)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() == 0 {
		return false, nil
	}

	const insertQuery = `
        INSERT INTO queue_tickets (user_id, service_id, sector_id, status, position, created_at)
        VALUES ($1, $2, $3, 'WAITING',
                (SELECT COALESCE(MAX(position), 0) + 1 FROM queue_tickets WHERE service_id=$2),
                $4)
        RETURNING id, position, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertQuery,
		replacement.UserID,
		replacement.ServiceID,
		replacement.SectorID,
		replacement.CreatedAt,
	).Scan(&replacement.ID, &replacement.Position, &replacement.CreatedAt, &replacement.UpdatedAt); err != nil {
		return false, err
	}
	replacement.Status = domain.QueueStatusWaiting

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (r *queueRepository) StatsBySector(ctx context.Context) ([]SectorQueueStats, error) {
	const query = `
        SELECT s.id, s.name,
               COUNT(*) FILTER (WHERE t.status='WAITING'),
               COUNT(*) FILTER (WHERE t.status='CALLED'),
               COUNT(*) FILTER (WHERE t.status='SERVING'),
               COUNT(*) FILTER (WHERE t.status='COMPLETED' AND t.updated_at >= CURRENT_DATE),
               COUNT(*) FILTER (WHERE t.created_at >= CURRENT_DATE),
               COALESCE(AVG(EXTRACT(EPOCH FROM t.updated_at - t.created_at))
                        FILTER (WHERE t.status IN ('SERVING','COMPLETED')), 0)
        FROM sectors s
        LEFT JOIN queue_tickets t ON t.sector_id = s.id
        GROUP BY s.id, s.name
        ORDER BY s.name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SectorQueueStats
	for rows.Next() {
		var stats SectorQueueStats
		if err := rows.Scan(
			&stats.SectorID,
			&stats.SectorName,
			&stats.Waiting,
			&stats.Called,
			&stats.Serving,
			&stats.CompletedToday,
			&stats.IssuedToday,
			&stats.AvgWaitSeconds,
		); err != nil {
			return nil, err
		}
		result = append(result, stats)
	}
	return result, rows.Err()
}

func (r *queueRepository) list(ctx context.Context, query string, args ...any) ([]domain.QueueTicket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.QueueTicket, error) {
	var result []domain.QueueTicket
	for rows.Next() {
		var ticket domain.QueueTicket
		if err := rows.Scan(ticketFields(&ticket)...); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func ticketFields(t *domain.QueueTicket) []any {
	return []any{
		&t.ID,
		&t.UserID,
		&t.ServiceID,
		&t.SectorID,
		&t.Status,
		&t.Position,
		&t.ServedBy,
		&t.ForwardedTo,
		&t.CreatedAt,
		&t.UpdatedAt,
	}
}
