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
	"github.com/civicworks/grievance_redressal_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxGrievanceRepository struct {
	BaseRepository
}

func newPgxGrievanceRepository(db *pgxpool.Pool) portsrepo.GrievanceRepository {
	return &PgxGrievanceRepository{BaseRepository: BaseRepository{Pool: db}}
}

// Ensure PgxGrievanceRepository implements portsrepo.GrievanceRepository
var _ portsrepo.GrievanceRepository = (*PgxGrievanceRepository)(nil)

func toModelGrievance(d domain.Grievance) models.Grievance {
	return models.Grievance{
		GrievanceID:      d.GrievanceID,
		Title:            d.Title,
		Description:      d.Description,
		Category:         string(d.Category),
		Priority:         string(d.Priority),
		Status:           string(d.Status),
		AssignedWorkerID: d.AssignedWorkerID,
		ReporterID:       d.ReporterID,
		IsPublic:         d.IsPublic,
		Upvotes:          d.Upvotes,
		Downvotes:        d.Downvotes,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainGrievance(m models.Grievance) domain.Grievance {
	// pgx returns nil slices for empty arrays; keep response shapes stable.
	if m.Upvotes == nil {
		m.Upvotes = []string{}
	}
	if m.Downvotes == nil {
		m.Downvotes = []string{}
	}
	return domain.Grievance{
		GrievanceID:      m.GrievanceID,
		Title:            m.Title,
		Description:      m.Description,
		Category:         domain.GrievanceCategory(m.Category),
		Priority:         domain.GrievancePriority(m.Priority),
		Status:           domain.GrievanceStatus(m.Status),
		AssignedWorkerID: m.AssignedWorkerID,
		ReporterID:       m.ReporterID,
		IsPublic:         m.IsPublic,
		Upvotes:          m.Upvotes,
		Downvotes:        m.Downvotes,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const grievanceColumns = `grievance_id, title, description, category, priority, status, assigned_worker_id, reporter_id, is_public, upvotes, downvotes, created_at, created_by, last_updated_at, last_updated_by`

func scanGrievance(row pgx.Row) (models.Grievance, error) {
	var m models.Grievance
	err := row.Scan(
		&m.GrievanceID,
		&m.Title,
		&m.Description,
		&m.Category,
		&m.Priority,
		&m.Status,
		&m.AssignedWorkerID,
		&m.ReporterID,
		&m.IsPublic,
		&m.Upvotes,
		&m.Downvotes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func collectGrievances(rows pgx.Rows) ([]domain.Grievance, error) {
	grievances := make([]domain.Grievance, 0)
	for rows.Next() {
		m, err := scanGrievance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan grievance row: %w", err)
		}
		grievances = append(grievances, toDomainGrievance(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating grievance rows: %w", err)
	}
	return grievances, nil
}

const insertStatusLogQuery = `
	INSERT INTO status_logs (log_id, grievance_id, status, updated_by, remarks, created_at)
	VALUES ($1, $2, $3, $4, $5, $6);
`

// SaveGrievanceWithLog inserts the grievance and its initial log entry within
// a single DB transaction.
func (r *PgxGrievanceRepository) SaveGrievanceWithLog(ctx context.Context, grievance domain.Grievance, log domain.StatusLogEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := toModelGrievance(grievance)
	query := `
		INSERT INTO grievances (
			grievance_id, title, description, category, priority, status,
			assigned_worker_id, reporter_id, is_public, upvotes, downvotes,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = tx.Exec(ctx, query,
		m.GrievanceID,
		m.Title,
		m.Description,
		m.Category,
		m.Priority,
		m.Status,
		m.AssignedWorkerID,
		m.ReporterID,
		m.IsPublic,
		m.Upvotes,
		m.Downvotes,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert grievance "+m.GrievanceID, err)
	}

	if err := insertStatusLog(ctx, tx, log); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateStatusWithLog is compare-and-set on the current status: the UPDATE
// matches only when the grievance still sits at the expected status, so a
// concurrent transition makes this one fail instead of silently clobbering.
func (r *PgxGrievanceRepository) UpdateStatusWithLog(ctx context.Context, grievanceID string, from, to domain.GrievanceStatus, log domain.StatusLogEntry, updatedBy string, updatedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE grievances
		SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE grievance_id = $1 AND status = $2;
	`
	tag, err := tx.Exec(ctx, query, grievanceID, string(from), string(to), updatedAt, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of grievance "+grievanceID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMissedUpdate(ctx, tx, grievanceID, apperrors.ErrConflict)
	}

	if err := insertStatusLog(ctx, tx, log); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// AssignGrievanceWithLog binds the worker with compare-and-set on the NULL
// worker column. The log append, and the Pending->Approved flip of the
// winning request when approveRequestID is set, ride the same transaction.
func (r *PgxGrievanceRepository) AssignGrievanceWithLog(ctx context.Context, grievanceID, workerID string, log domain.StatusLogEntry, approveRequestID *string, decidedBy string, decidedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE grievances
		SET assigned_worker_id = $2, status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE grievance_id = $1 AND assigned_worker_id IS NULL;
	`
	tag, err := tx.Exec(ctx, query, grievanceID, workerID, string(domain.StatusAssigned), decidedAt, decidedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to assign grievance "+grievanceID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMissedUpdate(ctx, tx, grievanceID, apperrors.ErrAlreadyAssigned)
	}

	if err := insertStatusLog(ctx, tx, log); err != nil {
		return err
	}

	if approveRequestID != nil {
		requestQuery := `
			UPDATE worker_requests
			SET status = $2, decided_by = $3, decided_at = $4
			WHERE request_id = $1 AND status = $5;
		`
		reqTag, err := tx.Exec(ctx, requestQuery, *approveRequestID, string(domain.RequestApproved), decidedBy, decidedAt, string(domain.RequestPending))
		if err != nil {
			return apperrors.NewAppError(500, "failed to approve worker request "+*approveRequestID, err)
		}
		if reqTag.RowsAffected() == 0 {
			return apperrors.ErrConflict
		}
	}

	return r.Commit(ctx, tx)
}

// classifyMissedUpdate turns a zero-row CAS update into ErrNotFound when the
// grievance does not exist, or the supplied conflict error when it does.
func (r *PgxGrievanceRepository) classifyMissedUpdate(ctx context.Context, tx pgx.Tx, grievanceID string, conflictErr error) error {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM grievances WHERE grievance_id = $1);`, grievanceID).Scan(&exists)
	if err != nil {
		return apperrors.NewAppError(500, "failed to check grievance "+grievanceID, err)
	}
	if !exists {
		return apperrors.ErrNotFound
	}
	return conflictErr
}

func (r *PgxGrievanceRepository) AppendStatusLog(ctx context.Context, log domain.StatusLogEntry) error {
	return insertStatusLog(ctx, r.Pool, log)
}

// pgxExecutor covers both pgxpool.Pool and pgx.Tx.
type pgxExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func insertStatusLog(ctx context.Context, db pgxExecutor, log domain.StatusLogEntry) error {
	_, err := db.Exec(ctx, insertStatusLogQuery,
		log.LogID,
		log.GrievanceID,
		string(log.Status),
		log.UpdatedBy,
		log.Remarks,
		log.CreatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert status log for grievance "+log.GrievanceID, err)
	}
	return nil
}

// ApplyVote toggles the voter's membership in the vote arrays as one
// statement, so the sets stay mutually exclusive under concurrent votes. The
// CASE arms all read the pre-update row.
func (r *PgxGrievanceRepository) ApplyVote(ctx context.Context, grievanceID, voterID string, direction domain.VoteDirection, updatedAt time.Time) (*domain.Grievance, error) {
	var query string
	if direction == domain.VoteUp {
		query = `
			UPDATE grievances
			SET upvotes = CASE WHEN $2 = ANY(upvotes) THEN array_remove(upvotes, $2) ELSE array_append(upvotes, $2) END,
			    downvotes = CASE WHEN $2 = ANY(upvotes) THEN downvotes ELSE array_remove(downvotes, $2) END,
			    last_updated_at = $3, last_updated_by = $2
			WHERE grievance_id = $1
			RETURNING ` + grievanceColumns + `;
		`
	} else {
		query = `
			UPDATE grievances
			SET downvotes = CASE WHEN $2 = ANY(downvotes) THEN array_remove(downvotes, $2) ELSE array_append(downvotes, $2) END,
			    upvotes = CASE WHEN $2 = ANY(downvotes) THEN upvotes ELSE array_remove(upvotes, $2) END,
			    last_updated_at = $3, last_updated_by = $2
			WHERE grievance_id = $1
			RETURNING ` + grievanceColumns + `;
		`
	}

	m, err := scanGrievance(r.Pool.QueryRow(ctx, query, grievanceID, voterID, updatedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to apply vote on grievance %s: %w", grievanceID, err)
	}

	g := toDomainGrievance(m)
	return &g, nil
}

// DeleteGrievance removes a grievance owned by the reporter. Status logs and
// worker requests go with it via ON DELETE CASCADE.
func (r *PgxGrievanceRepository) DeleteGrievance(ctx context.Context, grievanceID, reporterID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM grievances WHERE grievance_id = $1 AND reporter_id = $2;`, grievanceID, reporterID)
	if err != nil {
		return fmt.Errorf("failed to delete grievance %s: %w", grievanceID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM grievances WHERE grievance_id = $1);`, grievanceID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check grievance %s: %w", grievanceID, err)
		}
		if exists {
			return apperrors.ErrForbidden
		}
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxGrievanceRepository) FindGrievanceByID(ctx context.Context, grievanceID string) (*domain.Grievance, error) {
	query := `SELECT ` + grievanceColumns + ` FROM grievances WHERE grievance_id = $1;`
	m, err := scanGrievance(r.Pool.QueryRow(ctx, query, grievanceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find grievance by ID %s: %w", grievanceID, err)
	}

	g := toDomainGrievance(m)
	return &g, nil
}

func (r *PgxGrievanceRepository) ListGrievancesByReporter(ctx context.Context, reporterID string) ([]domain.Grievance, error) {
	query := `
		SELECT ` + grievanceColumns + `
		FROM grievances
		WHERE reporter_id = $1
		ORDER BY created_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, reporterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query grievances for reporter %s: %w", reporterID, err)
	}
	defer rows.Close()

	return collectGrievances(rows)
}

func (r *PgxGrievanceRepository) ListUnassignedGrievances(ctx context.Context) ([]domain.Grievance, error) {
	query := `
		SELECT ` + grievanceColumns + `
		FROM grievances
		WHERE assigned_worker_id IS NULL
		ORDER BY
			CASE priority WHEN 'High' THEN 0 WHEN 'Medium' THEN 1 ELSE 2 END,
			created_at ASC;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query unassigned grievances: %w", err)
	}
	defer rows.Close()

	return collectGrievances(rows)
}

func (r *PgxGrievanceRepository) ListGrievancesByWorker(ctx context.Context, workerID string) ([]domain.Grievance, error) {
	query := `
		SELECT ` + grievanceColumns + `
		FROM grievances
		WHERE assigned_worker_id = $1
		ORDER BY last_updated_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query grievances for worker %s: %w", workerID, err)
	}
	defer rows.Close()

	return collectGrievances(rows)
}

// ListPublicGrievances uses keyset pagination on (created_at, grievance_id)
// so pages stay stable while new grievances arrive.
func (r *PgxGrievanceRepository) ListPublicGrievances(ctx context.Context, limit int, nextToken *string) ([]domain.Grievance, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	args := []any{limit + 1}
	query := `
		SELECT ` + grievanceColumns + `
		FROM grievances
		WHERE is_public = TRUE
	`
	if nextToken != nil && *nextToken != "" {
		createdAt, lastID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += ` AND (created_at, grievance_id) < ($2, $3)`
		args = append(args, createdAt, lastID)
	}
	query += `
		ORDER BY created_at DESC, grievance_id DESC
		LIMIT $1;
	`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query public grievances: %w", err)
	}
	defer rows.Close()

	grievances, err := collectGrievances(rows)
	if err != nil {
		return nil, nil, err
	}

	var next *string
	if len(grievances) > limit {
		grievances = grievances[:limit]
		last := grievances[len(grievances)-1]
		token := pagination.EncodeToken(last.CreatedAt, last.GrievanceID)
		next = &token
	}
	return grievances, next, nil
}

func (r *PgxGrievanceRepository) CountOpenGrievancesByWorker(ctx context.Context, workerIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(workerIDs))
	for _, id := range workerIDs {
		counts[id] = 0
	}
	if len(workerIDs) == 0 {
		return counts, nil
	}

	query := `
		SELECT assigned_worker_id, COUNT(*)
		FROM grievances
		WHERE assigned_worker_id = ANY($1) AND status <> $2
		GROUP BY assigned_worker_id;
	`
	rows, err := r.Pool.Query(ctx, query, workerIDs, string(domain.StatusClosed))
	if err != nil {
		return nil, fmt.Errorf("failed to count open grievances: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var workerID string
		var count int
		if err := rows.Scan(&workerID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan open grievance count: %w", err)
		}
		counts[workerID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating open grievance counts: %w", err)
	}
	return counts, nil
}

func (r *PgxGrievanceRepository) FindStatusLogsByGrievanceID(ctx context.Context, grievanceID string) ([]domain.StatusLogEntry, error) {
	query := `
		SELECT log_id, grievance_id, status, updated_by, remarks, created_at
		FROM status_logs
		WHERE grievance_id = $1
		ORDER BY created_at ASC, log_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, grievanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status logs for grievance %s: %w", grievanceID, err)
	}
	defer rows.Close()

	logs := make([]domain.StatusLogEntry, 0)
	for rows.Next() {
		var m models.StatusLog
		if err := rows.Scan(&m.LogID, &m.GrievanceID, &m.Status, &m.UpdatedBy, &m.Remarks, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status log row: %w", err)
		}
		logs = append(logs, domain.StatusLogEntry{
			LogID:       m.LogID,
			GrievanceID: m.GrievanceID,
			Status:      domain.GrievanceStatus(m.Status),
			UpdatedBy:   m.UpdatedBy,
			Remarks:     m.Remarks,
			CreatedAt:   m.CreatedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status log rows: %w", err)
	}
	return logs, nil
}
