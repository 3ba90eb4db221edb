package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"liftlog/workout-engine/internal/domain"
)

type setRepository struct {
	q querier
}

// CreateBatch inserts all sets of one exercise with a single statement.
func (r *setRepository) CreateBatch(ctx context.Context, exerciseID string, sets []domain.Set) error {
	if len(sets) == 0 {
		return nil
	}
	ts := now()
	var sb strings.Builder
	sb.WriteString(`INSERT INTO sets (id, exercise_id, reps, weight, time_seconds, rest_seconds, created_at) VALUES `)
	args := make([]any, 0, len(sets)*7)
	for i := range sets {
		s := &sets[i]
		s.ID = uuid.NewString()
		s.ExerciseID = exerciseID
		s.CreatedAt = ts
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(" + placeholders(7) + ")")
		args = append(args, s.ID, exerciseID, s.Reps, s.Weight, nullInt(s.Time), nullInt(s.Rest), formatTime(ts))
	}
	if _, err := r.q.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("create sets: %w", err)
	}
	return nil
}

// setsByWorkout loads every set of the workout grouped by exercise id, in creation order.
func setsByWorkout(ctx context.Context, q querier, workoutID string) (map[string][]domain.Set, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT s.id, s.exercise_id, s.reps, s.weight, s.time_seconds, s.rest_seconds, s.created_at
		FROM sets s
		JOIN exercises e ON e.id = s.exercise_id
		WHERE e.workout_id = ?
		ORDER BY s.created_at, s.rowid
	`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	defer rows.Close()

	byExercise := make(map[string][]domain.Set)
	for rows.Next() {
		var (
			s         domain.Set
			timeSecs  sql.NullInt64
			restSecs  sql.NullInt64
			createdAt string
		)
		if err := rows.Scan(&s.ID, &s.ExerciseID, &s.Reps, &s.Weight, &timeSecs, &restSecs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		s.Time = intPtr(timeSecs)
		s.Rest = intPtr(restSecs)
		if s.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		byExercise[s.ExerciseID] = append(byExercise[s.ExerciseID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	return byExercise, nil
}
