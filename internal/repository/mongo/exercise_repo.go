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

type exerciseDocument struct {
	domain.Exercise `bson:",inline"`
	Seq             int64 `bson:"seq"`
}

type setDocument struct {
	domain.Set `bson:",inline"`
	Seq        int64 `bson:"seq"`
}

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
	sets       *mongo.Collection
}

// Create inserts an exercise linked to its workout.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.WorkoutID == "" || exercise.Name == "" {
		return errors.New("exercise requires workoutId and name")
	}
	exercise.ID = uuid.NewString()
	exercise.CreatedAt = time.Now().UTC()

	doc := exerciseDocument{Exercise: *exercise, Seq: nextSeq()}
	doc.Sets = nil
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert exercise: %w", mapWriteError(err))
	}
	return nil
}

// ListByWorkout returns the workout's exercises in creation order with their sets.
func (r *mongoExerciseRepository) ListByWorkout(ctx context.Context, workoutID string) ([]domain.Exercise, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"workoutId": workoutID},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []exerciseDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	exercises := make([]domain.Exercise, len(docs))
	if len(docs) == 0 {
		return exercises, nil
	}
	ids := make([]string, len(docs))
	for i := range docs {
		exercises[i] = docs[i].Exercise
		ids[i] = docs[i].ID
	}

	byExercise, err := r.setsByExercise(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range exercises {
		exercises[i].Sets = byExercise[exercises[i].ID]
		if exercises[i].Sets == nil {
			exercises[i].Sets = []domain.Set{}
		}
	}
	return exercises, nil
}

func (r *mongoExerciseRepository) setsByExercise(ctx context.Context, exerciseIDs []string) (map[string][]domain.Set, error) {
	cursor, err := r.sets.Find(ctx, bson.M{"exerciseId": bson.M{"$in": exerciseIDs}},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []setDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode sets: %w", err)
	}
	byExercise := make(map[string][]domain.Set, len(exerciseIDs))
	for _, d := range docs {
		byExercise[d.ExerciseID] = append(byExercise[d.ExerciseID], d.Set)
	}
	return byExercise, nil
}

// FirstNames returns the names of the first n exercises of the workout.
func (r *mongoExerciseRepository) FirstNames(ctx context.Context, workoutID string, n int) ([]string, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "seq", Value: 1}}).
		SetLimit(int64(n)).
		SetProjection(bson.M{"name": 1})

	cursor, err := r.collection.Find(ctx, bson.M{"workoutId": workoutID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Name string `bson:"name"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = row.Name
	}
	return names, nil
}

// DeleteByIDs removes the exercises and their sets.
func (r *mongoExerciseRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.sets.DeleteMany(ctx, bson.M{"exerciseId": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("delete sets: %w", err)
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("delete exercises: %w", err)
	}
	return nil
}

// mongoSetRepository implements repository.SetRepository
type mongoSetRepository struct {
	collection *mongo.Collection
}

// CreateBatch inserts all sets of one exercise with InsertMany.
func (r *mongoSetRepository) CreateBatch(ctx context.Context, exerciseID string, sets []domain.Set) error {
	if len(sets) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(sets))
	for i := range sets {
		sets[i].ID = uuid.NewString()
		sets[i].ExerciseID = exerciseID
		sets[i].CreatedAt = now
		docs[i] = setDocument{Set: sets[i], Seq: nextSeq()}
	}
	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert sets: %w", mapWriteError(err))
	}
	return nil
}

func exerciseIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "workoutId", Value: 1}, {Key: "seq", Value: 1}}},
	}
}

func setIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "exerciseId", Value: 1}, {Key: "seq", Value: 1}}},
	}
}
