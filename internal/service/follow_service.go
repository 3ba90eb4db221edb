package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"liftlog/workout-engine/internal/domain"
	"liftlog/workout-engine/internal/repository"
)

// FollowService maintains the follower graph between users.
type FollowService interface {
	Follow(ctx context.Context, followerID, followingID string) error
	Unfollow(ctx context.Context, followerID, followingID string) error
	ListFollowers(ctx context.Context, userID string) ([]domain.User, error)
	ListFollowing(ctx context.Context, userID string) ([]domain.User, error)
}

type followService struct {
	store   repository.Store
	metrics *Metrics
}

// NewFollowService creates a FollowService. m may be nil.
func NewFollowService(store repository.Store, m *Metrics) FollowService {
	return &followService{store: store, metrics: m}
}

func followPair(followerID, followingID string) (string, string, error) {
	followerID, followingID = strings.TrimSpace(followerID), strings.TrimSpace(followingID)
	if followerID == "" || followingID == "" {
		return "", "", fmt.Errorf("%w: both user ids are required", ErrValidationFailed)
	}
	if followerID == followingID {
		return "", "", fmt.Errorf("%w: users cannot follow themselves", ErrValidationFailed)
	}
	return followerID, followingID, nil
}

// Follow makes followerID follow followingID. Following someone twice is a no-op.
// The followed user must already exist.
func (s *followService) Follow(ctx context.Context, followerID, followingID string) (err error) {
	start := time.Now()
	defer func() { s.metrics.observe("follow", start, err) }()

	if followerID, followingID, err = followPair(followerID, followingID); err != nil {
		return err
	}
	// Steps are idempotent and run outside a transaction; a duplicate key
	// aborts a mongo transaction.
	if _, err = s.store.Users().GetByID(ctx, followingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("follow user: %w", err)
	}
	if err = s.store.Users().Ensure(ctx, followerID); err != nil {
		return fmt.Errorf("follow user: %w", err)
	}
	if err = s.store.Follows().Add(ctx, followerID, followingID); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("follow user: %w", err)
	}
	return nil
}

// Unfollow removes the edge; ErrNotFollowing when there is none.
func (s *followService) Unfollow(ctx context.Context, followerID, followingID string) (err error) {
	start := time.Now()
	defer func() { s.metrics.observe("unfollow", start, err) }()

	if followerID, followingID, err = followPair(followerID, followingID); err != nil {
		return err
	}
	if err = s.store.Follows().Remove(ctx, followerID, followingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFollowing
		}
		return fmt.Errorf("unfollow user: %w", err)
	}
	return nil
}

// ListFollowers returns who follows userID. Nobody following is an empty list.
func (s *followService) ListFollowers(ctx context.Context, userID string) (users []domain.User, err error) {
	start := time.Now()
	defer func() { s.metrics.observe("list_followers", start, err) }()

	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrValidationFailed)
	}
	if users, err = s.store.Follows().ListFollowers(ctx, userID); err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	return users, nil
}

// ListFollowing returns who userID follows. Following nobody is an empty list.
func (s *followService) ListFollowing(ctx context.Context, userID string) (users []domain.User, err error) {
	start := time.Now()
	defer func() { s.metrics.observe("list_following", start, err) }()

	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrValidationFailed)
	}
	if users, err = s.store.Follows().ListFollowing(ctx, userID); err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	return users, nil
}
