package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"liftlog/workout-engine/internal/domain"
	"liftlog/workout-engine/internal/repository"
)

// List limits.
const (
	DefaultListLimit = 4
	RecentListLimit  = 8
	MaxListLimit     = 50
)

const (
	summaryExerciseNames = 2
	exampleExerciseLimit = 5
	exampleSetCount      = 3
)

// --- Service Interface ---

// WorkoutService synchronizes the workout aggregate: a workout, its exercises
// and their sets, plus the copier's provenance entries.
type WorkoutService interface {
	CreateWorkout(ctx context.Context, header domain.WorkoutHeader) (*domain.Workout, error)
	CreateExampleWorkout(ctx context.Context, userID, muscle string) (*domain.Workout, error)
	GetWorkout(ctx context.Context, workoutID string) (*domain.Workout, error)
	ReconcileWorkout(ctx context.Context, workoutID string, header domain.WorkoutHeader, exercises []domain.ExerciseSpec) (*domain.Workout, error)
	CopyWorkout(ctx context.Context, sourceWorkoutID, userID string) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, workoutID string) (*domain.Workout, error)
	ListWorkoutsByUser(ctx context.Context, userID string, limit int) ([]domain.WorkoutSummary, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

// --- Service Implementation ---

// Option configures the workout service.
type Option func(*workoutService)

// WithClock sets the clock used for default workout names.
func WithClock(now func() time.Time) Option {
	return func(s *workoutService) { s.now = now }
}

// WithMetrics records operation outcomes on m.
func WithMetrics(m *Metrics) Option {
	return func(s *workoutService) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *workoutService) { s.log = l }
}

type workoutService struct {
	store   repository.Store
	now     func() time.Time
	metrics *Metrics
	log     zerolog.Logger
}

// NewWorkoutService creates the workout service on top of store.
func NewWorkoutService(store repository.Store, opts ...Option) WorkoutService {
	s := &workoutService{
		store: store,
		now:   time.Now,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// finish records the outcome of one operation.
func (s *workoutService) finish(op string, start time.Time, err error) {
	s.metrics.observe(op, start, err)
	kind := ErrorKind(err)
	switch kind {
	case KindOK:
		s.log.Debug().Str("op", op).Dur("took", time.Since(start)).Msg("workout operation done")
	case KindInternal, KindCloneIncomplete:
		s.log.Error().Err(err).Str("op", op).Str("kind", string(kind)).Msg("workout operation failed")
	default:
		s.log.Debug().Err(err).Str("op", op).Str("kind", string(kind)).Msg("workout operation rejected")
	}
}

// CreateWorkout creates a bare quick workout with no exercises.
func (s *workoutService) CreateWorkout(ctx context.Context, header domain.WorkoutHeader) (w *domain.Workout, err error) {
	start := time.Now()
	defer func() { s.finish("create", start, err) }()

	// 1. Validate Input
	userID := strings.TrimSpace(header.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrValidationFailed)
	}
	copyCount := 0
	if header.CopyCount != nil {
		if *header.CopyCount < 0 {
			return nil, fmt.Errorf("%w: copyCount must not be negative", ErrValidationFailed)
		}
		copyCount = *header.CopyCount
	}

	w = &domain.Workout{
		UserID:      userID,
		Name:        s.nameOrDefault(header.Name),
		Description: header.Description,
		Notes:       header.Notes,
		CopyCount:   copyCount,
	}

	// 2. Persist owner and header together
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		if err := tx.Users().Ensure(ctx, userID); err != nil {
			return err
		}
		return tx.Workouts().Create(ctx, w)
	})
	if err != nil {
		return nil, fmt.Errorf("create workout: %w", err)
	}
	w.Exercises = []domain.Exercise{}
	return w, nil
}

// CreateExampleWorkout builds a workout for muscle from the exercise catalog.
// Every cloned exercise gets the default set scheme so it survives reconciliation.
func (s *workoutService) CreateExampleWorkout(ctx context.Context, userID, muscle string) (w *domain.Workout, err error) {
	start := time.Now()
	defer func() { s.finish("create_example", start, err) }()

	userID = strings.TrimSpace(userID)
	muscle = strings.TrimSpace(muscle)
	if userID == "" || muscle == "" {
		return nil, fmt.Errorf("%w: userId and muscle are required", ErrValidationFailed)
	}

	blurb := domain.ExampleWorkoutBlurb(muscle)
	w = &domain.Workout{
		UserID:      userID,
		Name:        domain.ExampleWorkoutName(muscle),
		Description: &blurb,
		Notes:       &blurb,
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		catalog, err := tx.Catalog().ListByMuscle(ctx, muscle, exampleExerciseLimit)
		if err != nil {
			return err
		}
		if len(catalog) == 0 {
			return fmt.Errorf("%w: no catalog exercises for muscle %q", ErrValidationFailed, muscle)
		}
		if err := tx.Users().Ensure(ctx, userID); err != nil {
			return err
		}
		if err := tx.Workouts().Create(ctx, w); err != nil {
			return err
		}

		w.Exercises = make([]domain.Exercise, 0, len(catalog))
		for _, src := range catalog {
			e := src.CloneInto(w.ID)
			if err := tx.Exercises().Create(ctx, &e); err != nil {
				return err
			}
			e.Sets = make([]domain.Set, exampleSetCount)
			for i := range e.Sets {
				e.Sets[i] = domain.SetSpec{}.Set()
			}
			if err := tx.Sets().CreateBatch(ctx, e.ID, e.Sets); err != nil {
				return err
			}
			w.Exercises = append(w.Exercises, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create example workout: %w", err)
	}
	return w, nil
}

// GetWorkout returns the workout tree. Exercises without sets are not part of
// a saved workout and are left out.
func (s *workoutService) GetWorkout(ctx context.Context, workoutID string) (w *domain.Workout, err error) {
	start := time.Now()
	defer func() { s.finish("get", start, err) }()

	w, err = loadTree(ctx, s.store, workoutID)
	if err != nil {
		return nil, err
	}
	w.Exercises = w.WithoutEmptyExercises()
	return w, nil
}

// ReconcileWorkout updates the header, adds every exercise spec that carries
// sets, and then prunes all exercises of the workout left without sets.
// The three steps commit together.
func (s *workoutService) ReconcileWorkout(ctx context.Context, workoutID string, header domain.WorkoutHeader, exercises []domain.ExerciseSpec) (w *domain.Workout, err error) {
	start := time.Now()
	defer func() { s.finish("reconcile", start, err) }()

	// 1. Validate Input
	if header.CopyCount != nil && *header.CopyCount < 0 {
		return nil, fmt.Errorf("%w: copyCount must not be negative", ErrValidationFailed)
	}
	for i, spec := range exercises {
		if len(spec.Sets) > 0 && strings.TrimSpace(spec.Name) == "" {
			return nil, fmt.Errorf("%w: exercise %d has no name", ErrValidationFailed, i)
		}
	}

	var pruned int
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		// 2. Header, unconditionally
		current, err := getWorkoutHeader(ctx, tx, workoutID)
		if err != nil {
			return err
		}
		current.Name = s.nameOrDefault(header.Name)
		current.Description = header.Description
		current.Notes = header.Notes
		if header.CopyCount != nil {
			current.CopyCount = *header.CopyCount
		}
		if owner := strings.TrimSpace(header.UserID); owner != "" && owner != current.UserID {
			if err := tx.Users().Ensure(ctx, owner); err != nil {
				return err
			}
			current.UserID = owner
		}
		if err := tx.Workouts().UpdateHeader(ctx, current); err != nil {
			return err
		}

		// 3. Add exercises that carry sets
		for _, spec := range exercises {
			if len(spec.Sets) == 0 {
				continue
			}
			e := spec.Exercise(current.ID)
			if err := tx.Exercises().Create(ctx, &e); err != nil {
				return err
			}
			sets := make([]domain.Set, len(spec.Sets))
			for i, ss := range spec.Sets {
				sets[i] = ss.Set()
			}
			if err := tx.Sets().CreateBatch(ctx, e.ID, sets); err != nil {
				return err
			}
		}

		// 4. Prune every exercise without sets
		all, err := tx.Exercises().ListByWorkout(ctx, current.ID)
		if err != nil {
			return err
		}
		current.Exercises = all
		var empty []string
		for _, e := range all {
			if len(e.Sets) == 0 {
				empty = append(empty, e.ID)
			}
		}
		if err := tx.Exercises().DeleteByIDs(ctx, empty); err != nil {
			return err
		}
		pruned = len(empty)
		current.Exercises = current.WithoutEmptyExercises()
		w = current
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reconcile workout %s: %w", workoutID, err)
	}

	s.metrics.addPruned(pruned)
	s.log.Info().Str("workout_id", w.ID).Int("exercises", len(w.Exercises)).Int("pruned", pruned).Msg("workout reconciled")
	return w, nil
}

// CopyWorkout deep-clones the source workout for userID. A user copies a given
// workout at most once. The clone, the source's copy count and the provenance
// entry are written in one transaction.
func (s *workoutService) CopyWorkout(ctx context.Context, sourceWorkoutID, userID string) (w *domain.Workout, err error) {
	start := time.Now()
	defer func() { s.finish("copy", start, err) }()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrValidationFailed)
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		// 1. Source must exist
		src, err := getWorkoutHeader(ctx, tx, sourceWorkoutID)
		if err != nil {
			return err
		}
		if err := tx.Users().Ensure(ctx, userID); err != nil {
			return err
		}

		// 2. Idempotency check
		copied, err := tx.Provenance().Exists(ctx, userID, src.ID)
		if err != nil {
			return err
		}
		if copied {
			return ErrAlreadyCopied
		}
		exercises, err := tx.Exercises().ListByWorkout(ctx, src.ID)
		if err != nil {
			return err
		}

		// 3. Clone header
		sourceID := src.ID
		clone := &domain.Workout{
			UserID:      userID,
			Name:        domain.CopyName(src.Name),
			Description: src.Description,
			Notes:       src.Notes,
			CopyID:      &sourceID,
		}
		if err := tx.Workouts().Create(ctx, clone); err != nil {
			return fmt.Errorf("%w: %w", ErrCloneIncomplete, err)
		}

		// 4. Bookkeeping; the unique provenance key rejects a concurrent duplicate
		if err := tx.Workouts().IncrementCopyCount(ctx, src.ID); err != nil {
			return err
		}
		record := &domain.CopyRecord{UserID: userID, SourceWorkoutID: src.ID, CopyWorkoutID: clone.ID}
		if err := tx.Provenance().Add(ctx, record); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyCopied
			}
			return err
		}

		// 5. Deep copy
		clone.Exercises = make([]domain.Exercise, 0, len(exercises))
		for _, se := range exercises {
			e := se.CloneInto(clone.ID)
			if err := tx.Exercises().Create(ctx, &e); err != nil {
				return fmt.Errorf("%w: exercise %q: %w", ErrCloneIncomplete, se.Name, err)
			}
			e.Sets = domain.CloneSets(se.Sets)
			if err := tx.Sets().CreateBatch(ctx, e.ID, e.Sets); err != nil {
				return fmt.Errorf("%w: sets of exercise %q: %w", ErrCloneIncomplete, se.Name, err)
			}
			clone.Exercises = append(clone.Exercises, e)
		}
		w = clone
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("copy workout %s: %w", sourceWorkoutID, err)
	}

	s.metrics.incCopies()
	s.log.Info().Str("source_id", sourceWorkoutID).Str("copy_id", w.ID).Str("user_id", userID).Msg("workout copied")
	return w, nil
}

// DeleteWorkout removes the workout tree and returns it as it was. When the
// workout is a copy, the provenance entry that created it goes too, keyed by
// the copy itself since ownership may have moved since.
func (s *workoutService) DeleteWorkout(ctx context.Context, workoutID string) (w *domain.Workout, err error) {
	start := time.Now()
	defer func() { s.finish("delete", start, err) }()

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		snapshot, err := loadTree(ctx, tx, workoutID)
		if err != nil {
			return err
		}
		if err := tx.Workouts().Delete(ctx, snapshot.ID); err != nil {
			return mapWorkoutErr(err)
		}
		if snapshot.IsCopy() {
			if err := tx.Provenance().RemoveByCopy(ctx, snapshot.ID); err != nil {
				return err
			}
		}
		w = snapshot
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete workout %s: %w", workoutID, err)
	}

	s.log.Info().Str("workout_id", w.ID).Bool("was_copy", w.IsCopy()).Msg("workout deleted")
	return w, nil
}

// ListWorkoutsByUser returns the user's workouts newest first. A user without
// workouts gets an empty list.
func (s *workoutService) ListWorkoutsByUser(ctx context.Context, userID string, limit int) (list []domain.WorkoutSummary, err error) {
	start := time.Now()
	defer func() { s.finish("list", start, err) }()

	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrValidationFailed)
	}
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	workouts, err := s.store.Workouts().ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	list = make([]domain.WorkoutSummary, 0, len(workouts))
	for _, w := range workouts {
		names, err := s.store.Exercises().FirstNames(ctx, w.ID, summaryExerciseNames)
		if err != nil {
			return nil, fmt.Errorf("list workouts: %w", err)
		}
		list = append(list, domain.WorkoutSummary{
			ID:            w.ID,
			Name:          w.Name,
			CopyCount:     w.CopyCount,
			ExerciseNames: names,
			CreatedAt:     w.CreatedAt,
		})
	}
	return list, nil
}

// GetUser returns the user with the ids of the workouts they copied.
func (s *workoutService) GetUser(ctx context.Context, userID string) (u *domain.User, err error) {
	start := time.Now()
	defer func() { s.finish("get_user", start, err) }()

	u, err = s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u.WorkoutsCopied, err = s.store.Provenance().ListSourceIDs(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *workoutService) nameOrDefault(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return domain.DefaultWorkoutName(s.now())
}

func getWorkoutHeader(ctx context.Context, repos repository.Repositories, workoutID string) (*domain.Workout, error) {
	if workoutID == "" {
		return nil, ErrWorkoutNotFound
	}
	w, err := repos.Workouts().GetByID(ctx, workoutID)
	if err != nil {
		return nil, mapWorkoutErr(err)
	}
	return w, nil
}

// loadTree reads the workout and all of its exercises and sets.
func loadTree(ctx context.Context, repos repository.Repositories, workoutID string) (*domain.Workout, error) {
	w, err := getWorkoutHeader(ctx, repos, workoutID)
	if err != nil {
		return nil, err
	}
	if w.Exercises, err = repos.Exercises().ListByWorkout(ctx, w.ID); err != nil {
		return nil, err
	}
	return w, nil
}

func mapWorkoutErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrWorkoutNotFound
	}
	return err
}
