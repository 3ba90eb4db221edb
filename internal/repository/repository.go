package repository

import (
	"context" // Standard for request-scoped deadlines, cancellation signals, etc.

	"liftlog/workout-engine/internal/domain" // Import our defined domain models
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository anchors workout ownership. Users are created lazily because
// identities are issued by the external auth provider.
type UserRepository interface {
	Ensure(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error) // WorkoutsCopied is not populated
}

// WorkoutRepository defines the interface for interacting with workout headers.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) error
	GetByID(ctx context.Context, id string) (*domain.Workout, error)
	UpdateHeader(ctx context.Context, workout *domain.Workout) error
	IncrementCopyCount(ctx context.Context, id string) error
	// Delete removes the workout and cascades to its exercises and their sets.
	Delete(ctx context.Context, id string) error
	// ListByUser returns the user's workouts newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Workout, error)
}

// ExerciseRepository defines the interface for exercises owned by workouts.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) error
	// ListByWorkout returns the workout's exercises in creation order with Sets populated.
	ListByWorkout(ctx context.Context, workoutID string) ([]domain.Exercise, error)
	// FirstNames returns the names of the first n exercises of the workout.
	FirstNames(ctx context.Context, workoutID string, n int) ([]string, error)
	// DeleteByIDs removes the exercises and cascades to their sets.
	DeleteByIDs(ctx context.Context, ids []string) error
}

// SetRepository defines the interface for sets owned by exercises.
type SetRepository interface {
	// CreateBatch inserts all sets for exerciseID, assigning ids and timestamps in place.
	CreateBatch(ctx context.Context, exerciseID string, sets []domain.Set) error
}

// ProvenanceRepository stores which source workouts a user has copied.
type ProvenanceRepository interface {
	Exists(ctx context.Context, userID, sourceWorkoutID string) (bool, error)
	// Add returns ErrDuplicate when (UserID, SourceWorkoutID) already exists.
	Add(ctx context.Context, record *domain.CopyRecord) error
	// RemoveByCopy deletes the entry that produced copyWorkoutID, whoever owns the copy now.
	RemoveByCopy(ctx context.Context, copyWorkoutID string) error
	ListSourceIDs(ctx context.Context, userID string) ([]string, error)
}

// FollowRepository stores the follower graph between users.
type FollowRepository interface {
	// Add returns ErrDuplicate when followerID already follows followingID.
	Add(ctx context.Context, followerID, followingID string) error
	// Remove returns ErrNotFound when there is no such edge.
	Remove(ctx context.Context, followerID, followingID string) error
	// ListFollowers returns the users following userID, oldest edge first.
	ListFollowers(ctx context.Context, userID string) ([]domain.User, error)
	// ListFollowing returns the users userID follows, oldest edge first.
	ListFollowing(ctx context.Context, userID string) ([]domain.User, error)
}

// CatalogRepository holds the reference exercise library used for example workouts.
type CatalogRepository interface {
	Upsert(ctx context.Context, exercise *domain.Exercise) error
	ListByMuscle(ctx context.Context, muscle string, limit int) ([]domain.Exercise, error)
}

// Repositories groups the aggregate repositories bound to one connection or transaction.
type Repositories interface {
	Users() UserRepository
	Workouts() WorkoutRepository
	Exercises() ExerciseRepository
	Sets() SetRepository
	Provenance() ProvenanceRepository
	Follows() FollowRepository
	Catalog() CatalogRepository
}

// TxFunc is a unit of work run inside a transaction. It must only use tx.
type TxFunc func(ctx context.Context, tx Repositories) error

// Store is the persistence facade of the workout aggregate and owns transaction boundaries.
type Store interface {
	Repositories
	// WithinTx runs fn in a single transaction: committed when fn returns nil,
	// rolled back otherwise.
	WithinTx(ctx context.Context, fn TxFunc) error
	Close(ctx context.Context) error
}
