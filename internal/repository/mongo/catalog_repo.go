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
)

// Case-insensitive comparison for muscle lookups.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// mongoCatalogRepository implements repository.CatalogRepository
type mongoCatalogRepository struct {
	collection *mongo.Collection
}

// Upsert inserts a catalog exercise or refreshes the one with the same name and muscle.
func (r *mongoCatalogRepository) Upsert(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.Name == "" || exercise.Muscle == "" {
		return errors.New("catalog exercise requires name and muscle")
	}
	exercise.WorkoutID = ""

	filter := bson.M{"name": exercise.Name, "muscle": exercise.Muscle}
	update := bson.M{
		"$set": bson.M{
			"instructions":    exercise.Instructions,
			"type":            exercise.Type,
			"equipment":       exercise.Equipment,
			"equipmentNeeded": exercise.EquipmentNeeded,
			"difficulty":      exercise.Difficulty,
			"time":            exercise.Time,
			"image":           exercise.Image,
		},
		"$setOnInsert": bson.M{
			"_id":       uuid.NewString(),
			"workoutId": "",
			"createdAt": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored domain.Exercise
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return fmt.Errorf("upsert catalog exercise: %w", err)
	}
	exercise.ID = stored.ID
	exercise.CreatedAt = stored.CreatedAt
	return nil
}

// ListByMuscle returns up to limit catalog exercises for muscle (case-insensitive), by name.
func (r *mongoCatalogRepository) ListByMuscle(ctx context.Context, muscle string, limit int) ([]domain.Exercise, error) {
	findOptions := options.Find().
		SetCollation(caseInsensitive).
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"muscle": muscle}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	exercises := []domain.Exercise{}
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

func catalogIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}, {Key: "muscle", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "muscle", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetCollation(caseInsensitive),
		},
	}
}
