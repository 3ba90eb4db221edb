package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"liftlog/workout-engine/internal/domain"
)

type catalogRepository struct {
	q querier
}

// Upsert inserts a catalog exercise or refreshes the one with the same name and muscle.
func (r *catalogRepository) Upsert(ctx context.Context, e *domain.Exercise) error {
	if e.Name == "" || e.Muscle == "" {
		return errors.New("upsert catalog exercise: name and muscle are required")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.WorkoutID = ""
	e.CreatedAt = now()

	err := r.q.QueryRowContext(ctx, `
		INSERT INTO catalog_exercises
		(id, name, instructions, type, muscle, equipment, equipment_needed, difficulty, time_seconds, image, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name, muscle) DO UPDATE SET
		  instructions = excluded.instructions,
		  type = excluded.type,
		  equipment = excluded.equipment,
		  equipment_needed = excluded.equipment_needed,
		  difficulty = excluded.difficulty,
		  time_seconds = excluded.time_seconds,
		  image = excluded.image
		RETURNING id
	`, e.ID, e.Name, e.Instructions, e.Type, e.Muscle, e.Equipment, boolToInt(e.EquipmentNeeded), e.Difficulty,
		nullInt(e.Time), nullString(e.Image), formatTime(e.CreatedAt)).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("upsert catalog exercise: %w", err)
	}
	return nil
}

// ListByMuscle returns up to limit catalog exercises for muscle (case-insensitive), by name.
func (r *catalogRepository) ListByMuscle(ctx context.Context, muscle string, limit int) ([]domain.Exercise, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, '', name, instructions, type, muscle, equipment, equipment_needed, difficulty, time_seconds, image, created_at
		FROM catalog_exercises
		WHERE muscle = ? COLLATE NOCASE
		ORDER BY name
		LIMIT ?
	`, muscle, limit)
	if err != nil {
		return nil, fmt.Errorf("list catalog exercises: %w", err)
	}
	defer rows.Close()

	exercises := []domain.Exercise{}
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog exercise: %w", err)
		}
		exercises = append(exercises, *e)
	}
	return exercises, rows.Err()
}
