package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"liftlog/workout-engine/internal/domain"
	"liftlog/workout-engine/internal/repository"
)

type followDocument struct {
	FollowerID  string    `bson:"followerId"`
	FollowingID string    `bson:"followingId"`
	CreatedAt   time.Time `bson:"createdAt"`
	Seq         int64     `bson:"seq"`
}

// mongoFollowRepository implements repository.FollowRepository; users are
// resolved from the users collection.
type mongoFollowRepository struct {
	collection *mongo.Collection
	users      *mongo.Collection
}

func (r *mongoFollowRepository) Add(ctx context.Context, followerID, followingID string) error {
	doc := followDocument{
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   time.Now().UTC(),
		Seq:         nextSeq(),
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mapped := mapWriteError(err); errors.Is(mapped, repository.ErrDuplicate) {
			return mapped
		}
		return fmt.Errorf("add follow: %w", err)
	}
	return nil
}

func (r *mongoFollowRepository) Remove(ctx context.Context, followerID, followingID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"followerId": followerID, "followingId": followingID})
	if err != nil {
		return fmt.Errorf("remove follow: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoFollowRepository) ListFollowers(ctx context.Context, userID string) ([]domain.User, error) {
	return r.list(ctx, bson.M{"followingId": userID}, func(d followDocument) string { return d.FollowerID })
}

func (r *mongoFollowRepository) ListFollowing(ctx context.Context, userID string) ([]domain.User, error) {
	return r.list(ctx, bson.M{"followerId": userID}, func(d followDocument) string { return d.FollowingID })
}

func (r *mongoFollowRepository) list(ctx context.Context, filter bson.M, other func(followDocument) string) ([]domain.User, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	var edges []followDocument
	if err = cursor.All(ctx, &edges); err != nil {
		return nil, fmt.Errorf("decode follows: %w", err)
	}
	if len(edges) == 0 {
		return []domain.User{}, nil
	}

	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = other(e)
	}
	cursor, err = r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("list followed users: %w", err)
	}
	var found []domain.User
	if err = cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("decode followed users: %w", err)
	}
	byID := make(map[string]domain.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}

	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func followIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "followerId", Value: 1}, {Key: "followingId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "followingId", Value: 1}, {Key: "seq", Value: 1}},
		},
	}
}
