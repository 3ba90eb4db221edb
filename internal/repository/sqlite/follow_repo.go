package sqlite

import (
	"context"
	"fmt"

	"liftlog/workout-engine/internal/domain"
	"liftlog/workout-engine/internal/repository"
)

type followRepository struct {
	q querier
}

// Add records that followerID follows followingID.
func (r *followRepository) Add(ctx context.Context, followerID, followingID string) error {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO follows (follower_id, following_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(follower_id, following_id) DO NOTHING
	`, followerID, followingID, formatTime(now()))
	if err != nil {
		return fmt.Errorf("add follow: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("add follow: rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrDuplicate
	}
	return nil
}

func (r *followRepository) Remove(ctx context.Context, followerID, followingID string) error {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM follows WHERE follower_id = ? AND following_id = ?
	`, followerID, followingID)
	if err != nil {
		return fmt.Errorf("remove follow: %w", err)
	}
	return requireAffected(res)
}

func (r *followRepository) ListFollowers(ctx context.Context, userID string) ([]domain.User, error) {
	return r.list(ctx, `
		SELECT u.id, u.created_at FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.following_id = ?
		ORDER BY f.created_at, f.rowid
	`, userID)
}

func (r *followRepository) ListFollowing(ctx context.Context, userID string) ([]domain.User, error) {
	return r.list(ctx, `
		SELECT u.id, u.created_at FROM follows f
		JOIN users u ON u.id = f.following_id
		WHERE f.follower_id = ?
		ORDER BY f.created_at, f.rowid
	`, userID)
}

func (r *followRepository) list(ctx context.Context, query, userID string) ([]domain.User, error) {
	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var (
			u         domain.User
			createdAt string
		)
		if err := rows.Scan(&u.ID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan follow: %w", err)
		}
		if u.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
