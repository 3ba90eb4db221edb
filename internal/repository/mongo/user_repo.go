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

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// Ensure upserts the user document; an existing user is left untouched.
func (r *mongoUserRepository) Ensure(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("user id is required")
	}
	update := bson.M{"$setOnInsert": bson.M{"createdAt": time.Now().UTC()}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id.
func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// mongoProvenanceRepository implements repository.ProvenanceRepository on the
// workout_copies collection.
type mongoProvenanceRepository struct {
	collection *mongo.Collection
}

func (r *mongoProvenanceRepository) Exists(ctx context.Context, userID, sourceWorkoutID string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx,
		bson.M{"userId": userID, "sourceWorkoutId": sourceWorkoutID},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check workout copy: %w", err)
	}
	return n > 0, nil
}

// Add inserts the record; the unique (userId, sourceWorkoutId) index turns a
// second copy into repository.ErrDuplicate.
func (r *mongoProvenanceRepository) Add(ctx context.Context, record *domain.CopyRecord) error {
	record.CreatedAt = time.Now().UTC()
	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		if mapped := mapWriteError(err); errors.Is(mapped, repository.ErrDuplicate) {
			return mapped
		}
		return fmt.Errorf("add workout copy: %w", err)
	}
	return nil
}

func (r *mongoProvenanceRepository) RemoveByCopy(ctx context.Context, copyWorkoutID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"copyWorkoutId": copyWorkoutID})
	if err != nil {
		return fmt.Errorf("remove workout copy: %w", err)
	}
	return nil
}

// ListSourceIDs returns the source workouts userID has copied, oldest first.
func (r *mongoProvenanceRepository) ListSourceIDs(ctx context.Context, userID string) ([]string, error) {
	// ObjectIDs assigned by the driver grow with insertion time.
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list workout copies: %w", err)
	}
	defer cursor.Close(ctx)

	var records []domain.CopyRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode workout copies: %w", err)
	}
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.SourceWorkoutID
	}
	return ids, nil
}

func copyIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "sourceWorkoutId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "copyWorkoutId", Value: 1}},
		},
	}
}

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
	}
}
