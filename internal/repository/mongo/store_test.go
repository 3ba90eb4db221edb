package mongo

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftlog/workout-engine/internal/domain"
	"liftlog/workout-engine/internal/repository"
)

func TestNextSeqStrictlyIncreasing(t *testing.T) {
	const workers, perWorker = 8, 500
	seen := make(chan int64, workers*perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prev := int64(0)
			for j := 0; j < perWorker; j++ {
				s := nextSeq()
				assert.Greater(t, s, prev)
				prev = s
				seen <- s
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[int64]struct{})
	for s := range seen {
		unique[s] = struct{}{}
	}
	assert.Len(t, unique, workers*perWorker)
}

// newTestStore connects to the replica set named by WORKOUT_ENGINE_MONGO_URI
// and uses a throwaway database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("WORKOUT_ENGINE_MONGO_URI")
	if uri == "" {
		t.Skip("WORKOUT_ENGINE_MONGO_URI not set")
	}
	client, err := ConnectDB(uri)
	require.NoError(t, err)

	store := NewStore(client, "workout_engine_test_"+uuid.NewString()[:8])
	ctx := context.Background()
	require.NoError(t, EnsureIndexes(ctx, store))
	t.Cleanup(func() {
		_ = store.db.Drop(ctx)
		_ = DisconnectDB(client)
	})
	return store
}

func TestMongoAggregateRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Users().Ensure(ctx, "u1"))
	require.NoError(t, store.Users().Ensure(ctx, "u1"))

	w := &domain.Workout{UserID: "u1", Name: "Pull"}
	require.NoError(t, store.Workouts().Create(ctx, w))
	for _, name := range []string{"Row", "Chin-up"} {
		e := &domain.Exercise{WorkoutID: w.ID, Name: name}
		require.NoError(t, store.Exercises().Create(ctx, e))
		require.NoError(t, store.Sets().CreateBatch(ctx, e.ID, []domain.Set{{Reps: 8, Weight: 40}, {Reps: 6, Weight: 45}}))
	}

	exercises, err := store.Exercises().ListByWorkout(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, exercises, 2)
	assert.Equal(t, "Row", exercises[0].Name)
	require.Len(t, exercises[0].Sets, 2)
	assert.Equal(t, 45.0, exercises[0].Sets[1].Weight)

	require.NoError(t, store.Workouts().IncrementCopyCount(ctx, w.ID))
	got, err := store.Workouts().GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CopyCount)

	require.NoError(t, store.Workouts().Delete(ctx, w.ID))
	_, err = store.Workouts().GetByID(ctx, w.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	exercises, err = store.Exercises().ListByWorkout(ctx, w.ID)
	require.NoError(t, err)
	assert.Empty(t, exercises)
}

func TestMongoProvenanceDuplicateAbortsTx(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	rec := domain.CopyRecord{UserID: "u2", SourceWorkoutID: "src", CopyWorkoutID: "c1"}
	require.NoError(t, store.Provenance().Add(ctx, &rec))

	err := store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		if err := tx.Users().Ensure(ctx, "u2"); err != nil {
			return err
		}
		dup := domain.CopyRecord{UserID: "u2", SourceWorkoutID: "src", CopyWorkoutID: "c2"}
		return tx.Provenance().Add(ctx, &dup)
	})
	require.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = store.Users().GetByID(ctx, "u2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
