package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftlog/workout-engine/internal/domain"
	"liftlog/workout-engine/internal/repository"
	"liftlog/workout-engine/internal/repository/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "workouts.db"))
	require.NoError(t, err)
	require.NoError(t, sqlite.ApplyMigrations(db))
	store := sqlite.NewStore(db)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func seedWorkout(t *testing.T, store *sqlite.Store, userID string, exercises map[string]int) *domain.Workout {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Users().Ensure(ctx, userID))
	w := &domain.Workout{UserID: userID, Name: "Leg Day"}
	require.NoError(t, store.Workouts().Create(ctx, w))
	for name, sets := range exercises {
		e := &domain.Exercise{WorkoutID: w.ID, Name: name}
		require.NoError(t, store.Exercises().Create(ctx, e))
		batch := make([]domain.Set, sets)
		for i := range batch {
			batch[i] = domain.Set{Reps: 8, Weight: 60}
		}
		require.NoError(t, store.Sets().CreateBatch(ctx, e.ID, batch))
	}
	return w
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, sqlite.ApplyMigrations(db))
	require.NoError(t, sqlite.ApplyMigrations(db))

	v, err := sqlite.SchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestWorkoutCRUD(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	w := seedWorkout(t, store, "u1", nil)

	got, err := store.Workouts().GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Leg Day", got.Name)
	assert.Nil(t, got.Description)
	assert.Nil(t, got.CopyID)

	notes := "slow eccentrics"
	got.Name = "Legs"
	got.Notes = &notes
	got.CopyCount = 3
	require.NoError(t, store.Workouts().UpdateHeader(ctx, got))

	got, err = store.Workouts().GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Legs", got.Name)
	require.NotNil(t, got.Notes)
	assert.Equal(t, notes, *got.Notes)
	assert.Equal(t, 3, got.CopyCount)

	require.NoError(t, store.Workouts().IncrementCopyCount(ctx, w.ID))
	got, err = store.Workouts().GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.CopyCount)

	_, err = store.Workouts().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, store.Workouts().UpdateHeader(ctx, &domain.Workout{ID: "missing", UserID: "u1", Name: "x"}), repository.ErrNotFound)
	assert.ErrorIs(t, store.Workouts().IncrementCopyCount(ctx, "missing"), repository.ErrNotFound)
	assert.ErrorIs(t, store.Workouts().Delete(ctx, "missing"), repository.ErrNotFound)
}

func TestDeleteWorkoutCascades(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	w := seedWorkout(t, store, "u1", map[string]int{"Squat": 3, "Lunge": 2})

	exercises, err := store.Exercises().ListByWorkout(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, exercises, 2)

	require.NoError(t, store.Workouts().Delete(ctx, w.ID))

	exercises, err = store.Exercises().ListByWorkout(ctx, w.ID)
	require.NoError(t, err)
	assert.Empty(t, exercises)
}

func TestListByWorkoutGroupsSets(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Users().Ensure(ctx, "u1"))
	w := &domain.Workout{UserID: "u1", Name: "Push"}
	require.NoError(t, store.Workouts().Create(ctx, w))

	bench := &domain.Exercise{WorkoutID: w.ID, Name: "Bench", EquipmentNeeded: true}
	require.NoError(t, store.Exercises().Create(ctx, bench))
	rest := 90
	require.NoError(t, store.Sets().CreateBatch(ctx, bench.ID, []domain.Set{{Reps: 5, Weight: 100, Rest: &rest}, {Reps: 5, Weight: 102.5}}))
	dips := &domain.Exercise{WorkoutID: w.ID, Name: "Dips"}
	require.NoError(t, store.Exercises().Create(ctx, dips))

	exercises, err := store.Exercises().ListByWorkout(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, exercises, 2)
	assert.Equal(t, "Bench", exercises[0].Name)
	assert.True(t, exercises[0].EquipmentNeeded)
	require.Len(t, exercises[0].Sets, 2)
	assert.Equal(t, 102.5, exercises[0].Sets[1].Weight)
	require.NotNil(t, exercises[0].Sets[0].Rest)
	assert.Equal(t, 90, *exercises[0].Sets[0].Rest)
	assert.Empty(t, exercises[1].Sets)

	names, err := store.Exercises().FirstNames(ctx, w.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bench"}, names)

	require.NoError(t, store.Exercises().DeleteByIDs(ctx, []string{dips.ID}))
	exercises, err = store.Exercises().ListByWorkout(ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, exercises, 1)
}

func TestListByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Users().Ensure(ctx, "u1"))
	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, store.Workouts().Create(ctx, &domain.Workout{UserID: "u1", Name: name}))
	}

	workouts, err := store.Workouts().ListByUser(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, workouts, 2)
	assert.Equal(t, "third", workouts[0].Name)
	assert.Equal(t, "second", workouts[1].Name)

	workouts, err = store.Workouts().ListByUser(ctx, "nobody", 4)
	require.NoError(t, err)
	assert.Empty(t, workouts)
}

func TestProvenanceUniquePerUserAndSource(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	src := seedWorkout(t, store, "owner", nil)
	cp := seedWorkout(t, store, "copier", nil)

	rec := &domain.CopyRecord{UserID: "copier", SourceWorkoutID: src.ID, CopyWorkoutID: cp.ID}
	require.NoError(t, store.Provenance().Add(ctx, rec))

	err := store.Provenance().Add(ctx, &domain.CopyRecord{UserID: "copier", SourceWorkoutID: src.ID, CopyWorkoutID: cp.ID})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	ok, err := store.Provenance().Exists(ctx, "copier", src.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := store.Provenance().ListSourceIDs(ctx, "copier")
	require.NoError(t, err)
	assert.Equal(t, []string{src.ID}, ids)

	require.NoError(t, store.Provenance().RemoveByCopy(ctx, cp.ID))
	ok, err = store.Provenance().Exists(ctx, "copier", src.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		require.NoError(t, tx.Users().Ensure(ctx, "u1"))
		require.NoError(t, tx.Workouts().Create(ctx, &domain.Workout{UserID: "u1", Name: "ghost"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Users().GetByID(ctx, "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	workouts, err := store.Workouts().ListByUser(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Empty(t, workouts)
}

func TestWithinTxCommits(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		if err := tx.Users().Ensure(ctx, "u1"); err != nil {
			return err
		}
		return tx.Workouts().Create(ctx, &domain.Workout{UserID: "u1", Name: "kept"})
	})
	require.NoError(t, err)

	workouts, err := store.Workouts().ListByUser(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, workouts, 1)
	assert.Equal(t, "kept", workouts[0].Name)
}

func TestCatalogUpsertAndList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	curl := &domain.Exercise{Name: "Hammer Curl", Muscle: "biceps", Difficulty: "beginner"}
	require.NoError(t, store.Catalog().Upsert(ctx, curl))
	firstID := curl.ID

	again := &domain.Exercise{Name: "Hammer Curl", Muscle: "biceps", Difficulty: "intermediate"}
	require.NoError(t, store.Catalog().Upsert(ctx, again))
	assert.Equal(t, firstID, again.ID)
	require.NoError(t, store.Catalog().Upsert(ctx, &domain.Exercise{Name: "Squat", Muscle: "quadriceps"}))

	list, err := store.Catalog().ListByMuscle(ctx, "Biceps", 5)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "intermediate", list[0].Difficulty)
	assert.Empty(t, list[0].WorkoutID)
}

func TestFollowsUniqueAndOrdered(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Users().Ensure(ctx, id))
	}

	require.NoError(t, store.Follows().Add(ctx, "b", "a"))
	require.NoError(t, store.Follows().Add(ctx, "c", "a"))
	assert.ErrorIs(t, store.Follows().Add(ctx, "b", "a"), repository.ErrDuplicate)
	assert.Error(t, store.Follows().Add(ctx, "a", "a"))

	followers, err := store.Follows().ListFollowers(ctx, "a")
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "b", followers[0].ID)
	assert.Equal(t, "c", followers[1].ID)

	following, err := store.Follows().ListFollowing(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, following)

	require.NoError(t, store.Follows().Remove(ctx, "b", "a"))
	assert.ErrorIs(t, store.Follows().Remove(ctx, "b", "a"), repository.ErrNotFound)
}
