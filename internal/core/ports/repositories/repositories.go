package repositories

// RepositoryProvider aggregates the repository implementations handed to the
// service container at startup.
type RepositoryProvider struct {
	UserRepo          UserRepository
	GrievanceRepo     GrievanceRepository
	WorkerRequestRepo WorkerRequestRepository
	SignupRepo        SignupRepository
}
