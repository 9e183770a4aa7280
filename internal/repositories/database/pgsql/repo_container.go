package pgsql

import (
	portsrepo "github.com/civicworks/grievance_redressal_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)
	grievanceRepo := newPgxGrievanceRepository(dbPool)
	workerRequestRepo := newPgxWorkerRequestRepository(dbPool)
	signupRepo := newPgxSignupRepository(dbPool)

	return portsrepo.RepositoryProvider{
		UserRepo:          userRepo,
		GrievanceRepo:     grievanceRepo,
		WorkerRequestRepo: workerRequestRepo,
		SignupRepo:        signupRepo,
	}
}
