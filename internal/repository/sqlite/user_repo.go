package sqlite

import (
	"context"
	"errors"
	"fmt"

	"liftlog/workout-engine/internal/domain"
	"liftlog/workout-engine/internal/repository"
)

type userRepository struct {
	q querier
}

// Ensure creates the user row if it does not exist yet.
func (r *userRepository) Ensure(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("ensure user: id is required")
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (id, created_at) VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, formatTime(now()))
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id.
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var (
		u         domain.User
		createdAt string
	)
	err := r.q.QueryRowContext(ctx, `SELECT id, created_at FROM users WHERE id = ?`, id).Scan(&u.ID, &createdAt)
	if err != nil {
		return nil, notFoundIfNoRows(err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

type provenanceRepository struct {
	q querier
}

// Exists reports whether userID already copied sourceWorkoutID.
func (r *provenanceRepository) Exists(ctx context.Context, userID, sourceWorkoutID string) (bool, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM workout_copies WHERE user_id = ? AND source_workout_id = ?
	`, userID, sourceWorkoutID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check workout copy: %w", err)
	}
	return n > 0, nil
}

// Add records a copy. A second record for the same (user, source) is rejected
// with repository.ErrDuplicate.
func (r *provenanceRepository) Add(ctx context.Context, rec *domain.CopyRecord) error {
	rec.CreatedAt = now()
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO workout_copies (user_id, source_workout_id, copy_workout_id, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, source_workout_id) DO NOTHING
	`, rec.UserID, rec.SourceWorkoutID, rec.CopyWorkoutID, formatTime(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("add workout copy: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("add workout copy: rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrDuplicate
	}
	return nil
}

// RemoveByCopy deletes the provenance entry of a copy; a missing entry is not an error.
func (r *provenanceRepository) RemoveByCopy(ctx context.Context, copyWorkoutID string) error {
	_, err := r.q.ExecContext(ctx, `
		DELETE FROM workout_copies WHERE copy_workout_id = ?
	`, copyWorkoutID)
	if err != nil {
		return fmt.Errorf("remove workout copy: %w", err)
	}
	return nil
}

// ListSourceIDs returns the source workouts userID has copied, oldest first.
func (r *provenanceRepository) ListSourceIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT source_workout_id FROM workout_copies WHERE user_id = ? ORDER BY created_at, rowid
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list workout copies: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan workout copy: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
