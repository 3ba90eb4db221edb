package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"liftlog/workout-engine/internal/domain"
	"liftlog/workout-engine/internal/repository"
)

// DefaultCatalogLimit bounds catalog listings when the caller gives no limit.
const DefaultCatalogLimit = 20

// CatalogService manages the reference exercise library that example
// workouts are built from.
type CatalogService interface {
	ListExercises(ctx context.Context, muscle string, limit int) ([]domain.Exercise, error)
	UpsertExercise(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error)
}

type catalogService struct {
	repo    repository.CatalogRepository
	metrics *Metrics
}

// NewCatalogService creates a CatalogService. m may be nil.
func NewCatalogService(repo repository.CatalogRepository, m *Metrics) CatalogService {
	return &catalogService{repo: repo, metrics: m}
}

// ListExercises returns catalog entries for a muscle, matched case-insensitively.
func (s *catalogService) ListExercises(ctx context.Context, muscle string, limit int) (list []domain.Exercise, err error) {
	start := time.Now()
	defer func() { s.metrics.observe("list_catalog", start, err) }()

	muscle = strings.TrimSpace(muscle)
	if muscle == "" {
		return nil, fmt.Errorf("%w: muscle is required", ErrValidationFailed)
	}
	if limit <= 0 {
		limit = DefaultCatalogLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	list, err = s.repo.ListByMuscle(ctx, strings.ToLower(muscle), limit)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	return list, nil
}

// UpsertExercise adds an entry to the catalog or refreshes the one with the same name and muscle.
func (s *catalogService) UpsertExercise(ctx context.Context, exercise domain.Exercise) (_ *domain.Exercise, err error) {
	start := time.Now()
	defer func() { s.metrics.observe("upsert_catalog", start, err) }()

	exercise.Name = strings.TrimSpace(exercise.Name)
	exercise.Muscle = strings.ToLower(strings.TrimSpace(exercise.Muscle))
	if exercise.Name == "" || exercise.Muscle == "" {
		return nil, fmt.Errorf("%w: catalog exercise needs a name and a muscle", ErrValidationFailed)
	}
	exercise.ID = ""
	exercise.WorkoutID = ""
	exercise.Sets = nil
	if err = s.repo.Upsert(ctx, &exercise); err != nil {
		return nil, fmt.Errorf("upsert catalog exercise: %w", err)
	}
	return &exercise, nil
}
