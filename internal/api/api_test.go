package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftlog/workout-engine/internal/config"
	"liftlog/workout-engine/internal/domain"
	"liftlog/workout-engine/internal/repository/sqlite"
	"liftlog/workout-engine/internal/service"
)

const testSecret = "test-secret"

type fakeSigner struct{}

func (fakeSigner) SignImageURL(_ context.Context, ref string) (string, error) {
	return "https://signed.example.com/" + ref, nil
}

type testServer struct {
	router *gin.Engine
	store  *sqlite.Store
}

func newTestServer(t *testing.T, limiter *RateLimiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	require.NoError(t, sqlite.ApplyMigrations(db))
	store := sqlite.NewStore(db)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	reg := prometheus.NewRegistry()
	metrics := service.NewMetrics(reg)
	svc := service.NewWorkoutService(store, service.WithMetrics(metrics))
	catalogSvc := service.NewCatalogService(store.Catalog(), metrics)
	followSvc := service.NewFollowService(store, metrics)

	router := gin.New()
	SetupRoutes(router, testSecret, limiter, svc, catalogSvc, followSvc, fakeSigner{}, reg)
	return &testServer{router: router, store: store}
}

func token(t *testing.T, userID string, ttl time.Duration) string {
	t.Helper()
	claims := jwtClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, user, time.Hour))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/v1/me/workouts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/workouts", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "u1", -time.Minute))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")

	w = s.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWorkoutLifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	// Create
	w := s.do(t, http.MethodPost, "/api/v1/workouts", "u1", CreateWorkoutRequest{Name: "Upper"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[WorkoutResponse](t, w)
	assert.Equal(t, "u1", created.UserID)
	path := "/api/v1/workouts/" + created.ID

	// Reconcile
	reps := 6
	image := "catalog/row.jpg"
	w = s.do(t, http.MethodPut, path, "u1", ReconcileWorkoutRequest{
		Name: "Upper A",
		Exercises: []ExerciseRequest{
			{Name: "Row", Image: &image, Sets: []SetRequest{{Reps: &reps}, {}}},
			{Name: "Skipped"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reconciled := decode[WorkoutResponse](t, w)
	require.Len(t, reconciled.Exercises, 1)
	assert.Equal(t, "https://signed.example.com/catalog/row.jpg", *reconciled.Exercises[0].Image)
	require.Len(t, reconciled.Exercises[0].Sets, 2)
	assert.Equal(t, 6, reconciled.Exercises[0].Sets[0].Reps)
	assert.Equal(t, float64(domain.DefaultSetWeight), reconciled.Exercises[0].Sets[1].Weight)

	// Another user cannot edit or delete it
	w = s.do(t, http.MethodPut, path, "u2", ReconcileWorkoutRequest{Name: "mine now"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodDelete, path, "u2", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Copy, then copy again
	w = s.do(t, http.MethodPost, path+"/copy", "u2", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	clone := decode[WorkoutResponse](t, w)
	assert.Equal(t, "Upper A - Copy", clone.Name)
	require.NotNil(t, clone.CopyID)
	assert.Equal(t, created.ID, *clone.CopyID)

	w = s.do(t, http.MethodPost, path+"/copy", "u2", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	errBody := decode[map[string]string](t, w)
	assert.Equal(t, string(service.KindAlreadyCopied), errBody["kind"])

	w = s.do(t, http.MethodGet, "/api/v1/users/u2", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{created.ID}, decode[UserResponse](t, w).WorkoutsCopied)

	// Lists
	w = s.do(t, http.MethodGet, "/api/v1/users/u1/workouts?limit=2", "u2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summaries := decode[[]WorkoutSummaryResponse](t, w)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].CopyCount)
	assert.Equal(t, []string{"Row"}, summaries[0].ExerciseNames)

	w = s.do(t, http.MethodGet, "/api/v1/me/workouts", "u2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]WorkoutSummaryResponse](t, w), 1)

	w = s.do(t, http.MethodGet, "/api/v1/users/u1/workouts?limit=abc", "u2", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Delete the copy; provenance is cleared
	w = s.do(t, http.MethodDelete, "/api/v1/workouts/"+clone.ID, "u2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, clone.ID, decode[WorkoutResponse](t, w).ID)

	w = s.do(t, http.MethodGet, "/api/v1/users/u2", "u2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[UserResponse](t, w).WorkoutsCopied)

	w = s.do(t, http.MethodGet, "/api/v1/workouts/"+clone.ID, "u2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(service.KindNotFound), decode[map[string]string](t, w)["kind"])
}

func TestValidationErrors(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/workouts", "u1", map[string]any{"copyCount": -2})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/workouts/examples", "u1", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/workouts/examples", "u1", CreateExampleWorkoutRequest{Muscle: "neck"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(service.KindValidationFailed), decode[map[string]string](t, w)["kind"])

	w = s.do(t, http.MethodGet, "/api/v1/users/ghost", "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateExampleWorkout(t *testing.T) {
	s := newTestServer(t, nil)
	require.NoError(t, s.store.Catalog().Upsert(context.Background(), &domain.Exercise{Name: "Plank", Muscle: "abdominals"}))

	w := s.do(t, http.MethodPost, "/api/v1/workouts/examples", "u1", CreateExampleWorkoutRequest{Muscle: "abdominals"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	got := decode[WorkoutResponse](t, w)
	assert.Equal(t, "abdominals Workout", got.Name)
	require.Len(t, got.Exercises, 1)
	assert.Len(t, got.Exercises[0].Sets, 3)
}

func TestExerciseCatalog(t *testing.T) {
	s := newTestServer(t, nil)

	image := "catalog/curl.png"
	w := s.do(t, http.MethodPost, "/api/v1/exercises", "u1", UpsertCatalogExerciseRequest{Name: "Curl", Muscle: "Biceps", Image: &image})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[CatalogExerciseResponse](t, w)
	assert.Equal(t, "biceps", first.Muscle)
	assert.Equal(t, "https://signed.example.com/catalog/curl.png", *first.Image)

	w = s.do(t, http.MethodPost, "/api/v1/exercises", "u1", UpsertCatalogExerciseRequest{Name: "Curl", Muscle: "biceps", Difficulty: "beginner"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, first.ID, decode[CatalogExerciseResponse](t, w).ID)

	w = s.do(t, http.MethodGet, "/api/v1/exercises?muscle=BICEPS", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]CatalogExerciseResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "beginner", list[0].Difficulty)

	w = s.do(t, http.MethodGet, "/api/v1/exercises", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/exercises", "u1", map[string]string{"name": "Curl"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBodyUserIDMustMatchToken(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/workouts", "u1", CreateWorkoutRequest{Name: "Sneaky", UserID: "u2"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodGet, "/api/v1/users/u2/workouts", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]WorkoutSummaryResponse](t, w))

	w = s.do(t, http.MethodPost, "/api/v1/workouts", "u1", CreateWorkoutRequest{Name: "Mine", UserID: "u1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[WorkoutResponse](t, w)

	path := "/api/v1/workouts/" + created.ID
	w = s.do(t, http.MethodPut, path, "u1", ReconcileWorkoutRequest{Name: "Gift", UserID: "u2"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, path, "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[WorkoutResponse](t, w)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "Mine", got.Name)
}

func TestFollowEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/workouts", "alice", CreateWorkoutRequest{}).Code)

	w := s.do(t, http.MethodGet, "/api/v1/users/alice/followers", "bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]FollowUserResponse](t, w))

	w = s.do(t, http.MethodPost, "/api/v1/users/alice/follow", "bob", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/users/alice/followers", "bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	followers := decode[[]FollowUserResponse](t, w)
	require.Len(t, followers, 1)
	assert.Equal(t, "bob", followers[0].ID)

	w = s.do(t, http.MethodGet, "/api/v1/users/bob/following", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	following := decode[[]FollowUserResponse](t, w)
	require.Len(t, following, 1)
	assert.Equal(t, "alice", following[0].ID)

	w = s.do(t, http.MethodPost, "/api/v1/users/bob/follow", "bob", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodPost, "/api/v1/users/ghost/follow", "bob", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/users/alice/follow", "bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, "/api/v1/users/alice/follow", "bob", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, NewRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 2}))

	for i := 0; i < 2; i++ {
		w := s.do(t, http.MethodGet, "/api/v1/me/workouts", "u1", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := s.do(t, http.MethodGet, "/api/v1/me/workouts", "u1", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Buckets are per user.
	w = s.do(t, http.MethodGet, "/api/v1/me/workouts", "u2", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodGet, "/api/v1/workouts/missing", "u1", nil)

	w := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `workout_engine_operations_total{kind="NotFound",operation="get"} 1`))
}
