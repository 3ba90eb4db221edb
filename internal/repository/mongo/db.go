// Package mongo implements repository.Store on MongoDB.
//
// Each entity has its own collection. Cascades that SQL gets from foreign keys
// are explicit deletes here, and every multi-document write of the engine runs
// inside a session transaction, which requires a replica set deployment.
package mongo

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"liftlog/workout-engine/internal/repository"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

const (
	userCollectionName     = "users"
	workoutCollectionName  = "workouts"
	exerciseCollectionName = "exercises"
	setCollectionName      = "sets"
	copyCollectionName     = "workout_copies"
	followCollectionName   = "follows"
	catalogCollectionName  = "exercise_catalog"
)

// ConnectDB establishes a connection to MongoDB using the provided URI and
// verifies it with a ping against the primary.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = DisconnectDB(client)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

type repos struct {
	db *mongo.Database
}

func (r repos) Users() repository.UserRepository {
	return &mongoUserRepository{collection: r.db.Collection(userCollectionName)}
}

func (r repos) Workouts() repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: r.db.Collection(workoutCollectionName),
		exercises:  r.db.Collection(exerciseCollectionName),
		sets:       r.db.Collection(setCollectionName),
		copies:     r.db.Collection(copyCollectionName),
	}
}

func (r repos) Exercises() repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: r.db.Collection(exerciseCollectionName),
		sets:       r.db.Collection(setCollectionName),
	}
}

func (r repos) Sets() repository.SetRepository {
	return &mongoSetRepository{collection: r.db.Collection(setCollectionName)}
}

func (r repos) Provenance() repository.ProvenanceRepository {
	return &mongoProvenanceRepository{collection: r.db.Collection(copyCollectionName)}
}

func (r repos) Follows() repository.FollowRepository {
	return &mongoFollowRepository{
		collection: r.db.Collection(followCollectionName),
		users:      r.db.Collection(userCollectionName),
	}
}

func (r repos) Catalog() repository.CatalogRepository {
	return &mongoCatalogRepository{collection: r.db.Collection(catalogCollectionName)}
}

// Store implements repository.Store.
type Store struct {
	repos
	client *mongo.Client
}

// NewStore binds the repositories to the named database of client.
func NewStore(client *mongo.Client, dbName string) *Store {
	return &Store{repos: repos{db: client.Database(dbName)}, client: client}
}

// WithinTx runs fn in a session transaction. Repositories are shared between
// the store and the transaction; operations join the transaction through the
// session context handed to fn. The transaction is detached from ctx
// cancellation so it always commits or aborts as a whole.
func (s *Store) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	ctx = context.WithoutCancel(ctx)
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, s.repos)
	})
	return err
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection. The unique index on
// workout_copies is what rejects a second copy of the same workout by the same
// user, so a failure here is fatal. Creating the indexes also creates the
// collections, which transactions cannot do on older servers.
func EnsureIndexes(ctx context.Context, s *Store) error {
	for name, indexes := range map[string][]mongo.IndexModel{
		userCollectionName:     userIndexes(),
		workoutCollectionName:  workoutIndexes(),
		exerciseCollectionName: exerciseIndexes(),
		setCollectionName:      setIndexes(),
		copyCollectionName:     copyIndexes(),
		followCollectionName:   followIndexes(),
		catalogCollectionName:  catalogIndexes(),
	} {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("create indexes for %s: %w", name, err)
		}
	}
	return nil
}

var lastSeq atomic.Int64

// nextSeq returns a strictly increasing insertion sequence. BSON dates only
// keep milliseconds, so documents created in the same millisecond are ordered
// by seq instead.
func nextSeq() int64 {
	for {
		prev := lastSeq.Load()
		next := time.Now().UnixNano()
		if next <= prev {
			next = prev + 1
		}
		if lastSeq.CompareAndSwap(prev, next) {
			return next
		}
	}
}

func mapWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}
