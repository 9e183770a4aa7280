package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/civicworks/grievance_redressal_app/internal/apperrors"
	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
	portsrepo "github.com/civicworks/grievance_redressal_app/internal/core/ports/repositories"
	"github.com/civicworks/grievance_redressal_app/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxWorkerRequestRepository struct {
	db *pgxpool.Pool
}

func newPgxWorkerRequestRepository(db *pgxpool.Pool) portsrepo.WorkerRequestRepository {
	return &PgxWorkerRequestRepository{db: db}
}

// Ensure PgxWorkerRequestRepository implements portsrepo.WorkerRequestRepository
var _ portsrepo.WorkerRequestRepository = (*PgxWorkerRequestRepository)(nil)

func toDomainWorkerRequest(m models.WorkerRequest) domain.WorkerRequest {
	return domain.WorkerRequest{
		RequestID:   m.RequestID,
		GrievanceID: m.GrievanceID,
		WorkerID:    m.WorkerID,
		Reason:      m.Reason,
		Status:      domain.RequestStatus(m.Status),
		RequestedAt: m.RequestedAt,
		DecidedBy:   m.DecidedBy,
		DecidedAt:   m.DecidedAt,
	}
}

const workerRequestColumns = `request_id, grievance_id, worker_id, reason, status, requested_at, decided_by, decided_at`

func scanWorkerRequest(row pgx.Row) (models.WorkerRequest, error) {
	var m models.WorkerRequest
	err := row.Scan(
		&m.RequestID,
		&m.GrievanceID,
		&m.WorkerID,
		&m.Reason,
		&m.Status,
		&m.RequestedAt,
		&m.DecidedBy,
		&m.DecidedAt,
	)
	return m, err
}

func collectWorkerRequests(rows pgx.Rows) ([]domain.WorkerRequest, error) {
	requests := make([]domain.WorkerRequest, 0)
	for rows.Next() {
		m, err := scanWorkerRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan worker request row: %w", err)
		}
		requests = append(requests, toDomainWorkerRequest(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating worker request rows: %w", err)
	}
	return requests, nil
}

func (r *PgxWorkerRequestRepository) SaveWorkerRequest(ctx context.Context, request domain.WorkerRequest) error {
	query := `
		INSERT INTO worker_requests (request_id, grievance_id, worker_id, reason, status, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.db.Exec(ctx, query,
		request.RequestID,
		request.GrievanceID,
		request.WorkerID,
		request.Reason,
		string(request.Status),
		request.RequestedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation on pending (grievance, worker) pair
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save worker request: %w", err)
	}
	return nil
}

func (r *PgxWorkerRequestRepository) FindWorkerRequestByID(ctx context.Context, requestID string) (*domain.WorkerRequest, error) {
	query := `SELECT ` + workerRequestColumns + ` FROM worker_requests WHERE request_id = $1;`
	m, err := scanWorkerRequest(r.db.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find worker request by ID %s: %w", requestID, err)
	}

	request := toDomainWorkerRequest(m)
	return &request, nil
}

func (r *PgxWorkerRequestRepository) FindPendingRequest(ctx context.Context, grievanceID, workerID string) (*domain.WorkerRequest, error) {
	query := `
		SELECT ` + workerRequestColumns + `
		FROM worker_requests
		WHERE grievance_id = $1 AND worker_id = $2 AND status = $3;
	`
	m, err := scanWorkerRequest(r.db.QueryRow(ctx, query, grievanceID, workerID, string(domain.RequestPending)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find pending request for grievance %s: %w", grievanceID, err)
	}

	request := toDomainWorkerRequest(m)
	return &request, nil
}

func (r *PgxWorkerRequestRepository) ListWorkerRequestsByWorker(ctx context.Context, workerID string) ([]domain.WorkerRequest, error) {
	query := `
		SELECT ` + workerRequestColumns + `
		FROM worker_requests
		WHERE worker_id = $1
		ORDER BY requested_at DESC;
	`
	rows, err := r.db.Query(ctx, query, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests for worker %s: %w", workerID, err)
	}
	defer rows.Close()

	return collectWorkerRequests(rows)
}

func (r *PgxWorkerRequestRepository) ListWorkerRequestsByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.WorkerRequest, error) {
	query := `
		SELECT ` + workerRequestColumns + `
		FROM worker_requests
		WHERE status = $1
		ORDER BY requested_at ASC;
	`
	rows, err := r.db.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query requests by status %s: %w", status, err)
	}
	defer rows.Close()

	return collectWorkerRequests(rows)
}

// MarkWorkerRequestDecided is compare-and-set on Pending, so a request leaves
// Pending at most once.
func (r *PgxWorkerRequestRepository) MarkWorkerRequestDecided(ctx context.Context, requestID string, status domain.RequestStatus, decidedBy string, decidedAt time.Time) error {
	query := `
		UPDATE worker_requests
		SET status = $2, decided_by = $3, decided_at = $4
		WHERE request_id = $1 AND status = $5;
	`
	tag, err := r.db.Exec(ctx, query, requestID, string(status), decidedBy, decidedAt, string(domain.RequestPending))
	if err != nil {
		return fmt.Errorf("failed to mark worker request %s decided: %w", requestID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM worker_requests WHERE request_id = $1);`, requestID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check worker request %s: %w", requestID, err)
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return apperrors.ErrConflict
	}
	return nil
}
