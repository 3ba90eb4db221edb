package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"liftlog/workout-engine/internal/domain"
)

const workoutColumns = `id, user_id, name, description, notes, copy_count, copy_id, created_at, updated_at`

type workoutRepository struct {
	q querier
}

// Create inserts a new workout header. ID and timestamps are assigned here.
func (r *workoutRepository) Create(ctx context.Context, w *domain.Workout) error {
	if w.UserID == "" || w.Name == "" {
		return errors.New("create workout: user id and name are required")
	}
	w.ID = uuid.NewString()
	ts := now()
	w.CreatedAt = ts
	w.UpdatedAt = ts

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO workouts (`+workoutColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, w.ID, w.UserID, w.Name, nullString(w.Description), nullString(w.Notes), w.CopyCount, nullString(w.CopyID),
		formatTime(ts), formatTime(ts))
	if err != nil {
		return fmt.Errorf("create workout: %w", err)
	}
	return nil
}

// GetByID retrieves a workout header by id.
func (r *workoutRepository) GetByID(ctx context.Context, id string) (*domain.Workout, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id)
	w, err := scanWorkout(row)
	if err != nil {
		return nil, notFoundIfNoRows(err)
	}
	return w, nil
}

// UpdateHeader overwrites the editable header fields.
func (r *workoutRepository) UpdateHeader(ctx context.Context, w *domain.Workout) error {
	w.UpdatedAt = now()
	res, err := r.q.ExecContext(ctx, `
		UPDATE workouts
		SET name = ?, description = ?, notes = ?, copy_count = ?, user_id = ?, updated_at = ?
		WHERE id = ?
	`, w.Name, nullString(w.Description), nullString(w.Notes), w.CopyCount, w.UserID, formatTime(w.UpdatedAt), w.ID)
	if err != nil {
		return fmt.Errorf("update workout: %w", err)
	}
	return requireAffected(res)
}

// IncrementCopyCount bumps copy_count by exactly one.
func (r *workoutRepository) IncrementCopyCount(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE workouts SET copy_count = copy_count + 1, updated_at = ? WHERE id = ?
	`, formatTime(now()), id)
	if err != nil {
		return fmt.Errorf("increment copy count: %w", err)
	}
	return requireAffected(res)
}

// Delete removes the workout; exercises and sets go with it via ON DELETE CASCADE.
func (r *workoutRepository) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	return requireAffected(res)
}

// ListByUser returns the user's workouts newest first.
func (r *workoutRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Workout, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+workoutColumns+` FROM workouts
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	workouts := []domain.Workout{}
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		workouts = append(workouts, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return workouts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkout(s rowScanner) (*domain.Workout, error) {
	var (
		w                    domain.Workout
		description, notes   sql.NullString
		copyID               sql.NullString
		createdAt, updatedAt string
	)
	if err := s.Scan(&w.ID, &w.UserID, &w.Name, &description, &notes, &w.CopyCount, &copyID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	w.Description = stringPtr(description)
	w.Notes = stringPtr(notes)
	w.CopyID = stringPtr(copyID)

	var err error
	if w.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if w.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}
