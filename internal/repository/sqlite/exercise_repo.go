package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"liftlog/workout-engine/internal/domain"
)

const exerciseColumns = `id, workout_id, name, instructions, type, muscle, equipment, equipment_needed, difficulty, time_seconds, image, created_at`

type exerciseRepository struct {
	q querier
}

// Create inserts an exercise linked to its workout.
func (r *exerciseRepository) Create(ctx context.Context, e *domain.Exercise) error {
	if e.WorkoutID == "" || e.Name == "" {
		return errors.New("create exercise: workout id and name are required")
	}
	e.ID = uuid.NewString()
	e.CreatedAt = now()

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO exercises (`+exerciseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.WorkoutID, e.Name, e.Instructions, e.Type, e.Muscle, e.Equipment, boolToInt(e.EquipmentNeeded),
		e.Difficulty, nullInt(e.Time), nullString(e.Image), formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("create exercise: %w", err)
	}
	return nil
}

// ListByWorkout returns the exercises of the workout in creation order, each with its sets.
func (r *exerciseRepository) ListByWorkout(ctx context.Context, workoutID string) ([]domain.Exercise, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+exerciseColumns+` FROM exercises
		WHERE workout_id = ?
		ORDER BY created_at, rowid
	`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	exercises := []domain.Exercise{}
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		exercises = append(exercises, *e)
	}
	// Close before the next query: the pool has a single connection.
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	if len(exercises) == 0 {
		return exercises, nil
	}

	sets, err := setsByWorkout(ctx, r.q, workoutID)
	if err != nil {
		return nil, err
	}
	for i := range exercises {
		exercises[i].Sets = sets[exercises[i].ID]
		if exercises[i].Sets == nil {
			exercises[i].Sets = []domain.Set{}
		}
	}
	return exercises, nil
}

// FirstNames returns the names of the first n exercises of the workout.
func (r *exerciseRepository) FirstNames(ctx context.Context, workoutID string, n int) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT name FROM exercises WHERE workout_id = ? ORDER BY created_at, rowid LIMIT ?
	`, workoutID, n)
	if err != nil {
		return nil, fmt.Errorf("list exercise names: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan exercise name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteByIDs removes the given exercises; their sets cascade.
func (r *exerciseRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := r.q.ExecContext(ctx, `DELETE FROM exercises WHERE id IN (`+placeholders(len(ids))+`)`, args...); err != nil {
		return fmt.Errorf("delete exercises: %w", err)
	}
	return nil
}

func scanExercise(s rowScanner) (*domain.Exercise, error) {
	var (
		e         domain.Exercise
		needed    int
		timeSecs  sql.NullInt64
		image     sql.NullString
		createdAt string
	)
	if err := s.Scan(&e.ID, &e.WorkoutID, &e.Name, &e.Instructions, &e.Type, &e.Muscle, &e.Equipment, &needed,
		&e.Difficulty, &timeSecs, &image, &createdAt); err != nil {
		return nil, err
	}
	e.EquipmentNeeded = needed != 0
	e.Time = intPtr(timeSecs)
	e.Image = stringPtr(image)

	var err error
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &e, nil
}
