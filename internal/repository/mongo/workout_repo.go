// internal/repository/mongo/workout_repo.go
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"liftlog/workout-engine/internal/domain"
	"liftlog/workout-engine/internal/repository"
)

// workoutDocument is the stored form of a workout header.
type workoutDocument struct {
	domain.Workout `bson:",inline"`
	Seq            int64 `bson:"seq"`
}

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
	exercises  *mongo.Collection
	sets       *mongo.Collection
	copies     *mongo.Collection
}

// Create inserts a new workout header.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) error {
	if workout.UserID == "" || workout.Name == "" {
		return errors.New("workout requires userId and name")
	}
	workout.ID = uuid.NewString()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	doc := workoutDocument{Workout: *workout, Seq: nextSeq()}
	doc.Exercises = nil
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert workout: %w", mapWriteError(err))
	}
	return nil
}

// GetByID retrieves a single workout header by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id string) (*domain.Workout, error) {
	var doc workoutDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &doc.Workout, nil
}

// UpdateHeader overwrites the editable header fields.
func (r *mongoWorkoutRepository) UpdateHeader(ctx context.Context, workout *domain.Workout) error {
	workout.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":      workout.Name,
		"userId":    workout.UserID,
		"copyCount": workout.CopyCount,
		"updatedAt": workout.UpdatedAt,
	}
	unset := bson.M{}
	if workout.Description != nil {
		set["description"] = *workout.Description
	} else {
		unset["description"] = ""
	}
	if workout.Notes != nil {
		set["notes"] = *workout.Notes
	} else {
		unset["notes"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": workout.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// IncrementCopyCount bumps copyCount by exactly one with $inc.
func (r *mongoWorkoutRepository) IncrementCopyCount(ctx context.Context, id string) error {
	update := bson.M{
		"$inc": bson.M{"copyCount": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the workout, its exercises and their sets, and any provenance
// entries that point at it as the copy.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}

	exerciseIDs, err := r.exercises.Distinct(ctx, "_id", bson.M{"workoutId": id})
	if err != nil {
		return fmt.Errorf("list exercises of workout: %w", err)
	}
	if len(exerciseIDs) > 0 {
		if _, err := r.sets.DeleteMany(ctx, bson.M{"exerciseId": bson.M{"$in": exerciseIDs}}); err != nil {
			return fmt.Errorf("delete sets: %w", err)
		}
		if _, err := r.exercises.DeleteMany(ctx, bson.M{"workoutId": id}); err != nil {
			return fmt.Errorf("delete exercises: %w", err)
		}
	}
	if _, err := r.copies.DeleteMany(ctx, bson.M{"copyWorkoutId": id}); err != nil {
		return fmt.Errorf("delete workout copies: %w", err)
	}
	return nil
}

// ListByUser returns the user's workouts newest first.
func (r *mongoWorkoutRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Workout, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "seq", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []workoutDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	workouts := make([]domain.Workout, len(docs))
	for i := range docs {
		workouts[i] = docs[i].Workout
	}
	return workouts, nil
}

func workoutIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			// Newest-first listing per user
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}, {Key: "seq", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "copyId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
}
