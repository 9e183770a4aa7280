package pgsql

import (
	"context"
	"database/sql"
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

type PgxSignupRepository struct {
	BaseRepository
}

func newPgxSignupRepository(db *pgxpool.Pool) portsrepo.SignupRepository {
	return &PgxSignupRepository{BaseRepository: BaseRepository{Pool: db}}
}

// Ensure PgxSignupRepository implements portsrepo.SignupRepository
var _ portsrepo.SignupRepository = (*PgxSignupRepository)(nil)

func toDomainSignup(m models.WorkerSignup) domain.WorkerSignupRequest {
	return domain.WorkerSignupRequest{
		SignupID:    m.SignupID,
		WorkerID:    m.WorkerID,
		Name:        m.Name,
		Email:       m.Email,
		Department:  m.Department,
		Phone:       m.Phone.String,
		Status:      domain.RequestStatus(m.Status),
		RequestedAt: m.RequestedAt,
		DecidedBy:   m.DecidedBy,
		DecidedAt:   m.DecidedAt,
	}
}

const signupColumns = `signup_id, worker_id, name, email, department, phone, status, requested_at, decided_by, decided_at`

func scanSignup(row pgx.Row) (models.WorkerSignup, error) {
	var m models.WorkerSignup
	err := row.Scan(
		&m.SignupID,
		&m.WorkerID,
		&m.Name,
		&m.Email,
		&m.Department,
		&m.Phone,
		&m.Status,
		&m.RequestedAt,
		&m.DecidedBy,
		&m.DecidedAt,
	)
	return m, err
}

// CreateWorkerWithSignup inserts the provisional account and its signup
// application within a single DB transaction, so neither exists without the
// other.
func (r *PgxSignupRepository) CreateWorkerWithSignup(ctx context.Context, user domain.User, signup domain.WorkerSignupRequest) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	modelUser := toModelUser(user)
	userQuery := `
		INSERT INTO users (user_id, name, email, role, department, password_hash, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err = tx.Exec(ctx, userQuery,
		modelUser.UserID,
		modelUser.Name,
		modelUser.Email,
		modelUser.Role,
		modelUser.Department,
		modelUser.PasswordHash,
		modelUser.CreatedAt,
		modelUser.CreatedBy,
		modelUser.LastUpdatedAt,
		modelUser.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert worker account "+modelUser.UserID, err)
	}

	signupQuery := `
		INSERT INTO worker_signup_requests (signup_id, worker_id, name, email, department, phone, status, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = tx.Exec(ctx, signupQuery,
		signup.SignupID,
		signup.WorkerID,
		signup.Name,
		signup.Email,
		signup.Department,
		sql.NullString{String: signup.Phone, Valid: signup.Phone != ""},
		string(signup.Status),
		signup.RequestedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert worker signup "+signup.SignupID, err)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxSignupRepository) FindSignupByID(ctx context.Context, signupID string) (*domain.WorkerSignupRequest, error) {
	query := `SELECT ` + signupColumns + ` FROM worker_signup_requests WHERE signup_id = $1;`
	m, err := scanSignup(r.Pool.QueryRow(ctx, query, signupID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find signup by ID %s: %w", signupID, err)
	}

	signup := toDomainSignup(m)
	return &signup, nil
}

func (r *PgxSignupRepository) FindSignupByWorkerID(ctx context.Context, workerID string) (*domain.WorkerSignupRequest, error) {
	query := `
		SELECT ` + signupColumns + `
		FROM worker_signup_requests
		WHERE worker_id = $1
		ORDER BY requested_at DESC
		LIMIT 1;
	`
	m, err := scanSignup(r.Pool.QueryRow(ctx, query, workerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find signup for worker %s: %w", workerID, err)
	}

	signup := toDomainSignup(m)
	return &signup, nil
}

func (r *PgxSignupRepository) ListSignupsByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.WorkerSignupRequest, error) {
	query := `
		SELECT ` + signupColumns + `
		FROM worker_signup_requests
		WHERE status = $1
		ORDER BY requested_at ASC;
	`
	rows, err := r.Pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query signups by status %s: %w", status, err)
	}
	defer rows.Close()

	signups := make([]domain.WorkerSignupRequest, 0)
	for rows.Next() {
		m, err := scanSignup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signup row: %w", err)
		}
		signups = append(signups, toDomainSignup(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signup rows: %w", err)
	}
	return signups, nil
}

// ApproveSignupAndPromote flips the signup out of Pending and promotes the
// account to WORKER within one transaction. The flip is compare-and-set on
// Pending.
func (r *PgxSignupRepository) ApproveSignupAndPromote(ctx context.Context, signupID, adminID string, decidedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var workerID string
	decideQuery := `
		UPDATE worker_signup_requests
		SET status = $2, decided_by = $3, decided_at = $4
		WHERE signup_id = $1 AND status = $5
		RETURNING worker_id;
	`
	err = tx.QueryRow(ctx, decideQuery, signupID, string(domain.RequestApproved), adminID, decidedAt, string(domain.RequestPending)).Scan(&workerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.classifyMissedDecision(ctx, tx, signupID)
		}
		return apperrors.NewAppError(500, "failed to approve signup "+signupID, err)
	}

	promoteQuery := `
		UPDATE users
		SET role = $2, last_updated_at = $3, last_updated_by = $4
		WHERE user_id = $1;
	`
	tag, err := tx.Exec(ctx, promoteQuery, workerID, string(domain.RoleWorker), decidedAt, adminID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to promote worker "+workerID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewAppError(500, "worker account missing for signup "+signupID, apperrors.ErrNotFound)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxSignupRepository) RejectSignup(ctx context.Context, signupID, adminID string, decidedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE worker_signup_requests
		SET status = $2, decided_by = $3, decided_at = $4
		WHERE signup_id = $1 AND status = $5;
	`
	tag, err := tx.Exec(ctx, query, signupID, string(domain.RequestRejected), adminID, decidedAt, string(domain.RequestPending))
	if err != nil {
		return apperrors.NewAppError(500, "failed to reject signup "+signupID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMissedDecision(ctx, tx, signupID)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxSignupRepository) classifyMissedDecision(ctx context.Context, tx pgx.Tx, signupID string) error {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM worker_signup_requests WHERE signup_id = $1);`, signupID).Scan(&exists); err != nil {
		return apperrors.NewAppError(500, "failed to check signup "+signupID, err)
	}
	if !exists {
		return apperrors.ErrNotFound
	}
	return apperrors.ErrConflict
}
