package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftlog/workout-engine/internal/domain"
)

func TestCatalogService(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	m := NewMetrics(prometheus.NewRegistry())
	svc := NewCatalogService(store.Catalog(), m)

	_, err := svc.UpsertExercise(ctx, domain.Exercise{Name: "  "})
	assert.Equal(t, KindValidationFailed, ErrorKind(err))

	squat, err := svc.UpsertExercise(ctx, domain.Exercise{Name: "Squat", Muscle: " Quadriceps ", WorkoutID: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "quadriceps", squat.Muscle)
	assert.Empty(t, squat.WorkoutID)
	assert.NotEmpty(t, squat.ID)

	again, err := svc.UpsertExercise(ctx, domain.Exercise{Name: "Squat", Muscle: "quadriceps", Difficulty: "intermediate"})
	require.NoError(t, err)
	assert.Equal(t, squat.ID, again.ID)

	list, err := svc.ListExercises(ctx, "QUADRICEPS", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "intermediate", list[0].Difficulty)

	_, err = svc.ListExercises(ctx, "", 5)
	assert.Equal(t, KindValidationFailed, ErrorKind(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("list_catalog", string(KindValidationFailed))))
}
