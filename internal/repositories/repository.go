package repositories

import "context"

// Repository groups every data source the service talks to
type Repository interface {
	User() UserRepository
	Archive() ArchiveRepository

	// Identity service (external, not part of database transactions)
	AuthAdmin() AuthAdminRepository

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
