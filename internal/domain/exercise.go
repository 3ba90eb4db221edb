// internal/domain/exercise.go
package domain

import (
	"time"
)

// Exercise is a single exercise inside a workout.
type Exercise struct {
	ID              string    `bson:"_id" json:"id"`
	WorkoutID       string    `bson:"workoutId" json:"workoutId"`
	Name            string    `bson:"name" json:"name"`
	Instructions    string    `bson:"instructions" json:"instructions"`
	Type            string    `bson:"type" json:"type"`           // e.g., "strength", "cardio"
	Muscle          string    `bson:"muscle" json:"muscle"`       // e.g., "biceps", "quadriceps"
	Equipment       string    `bson:"equipment" json:"equipment"` // e.g., "dumbbell"
	EquipmentNeeded bool      `bson:"equipmentNeeded" json:"equipmentNeeded"`
	Difficulty      string    `bson:"difficulty" json:"difficulty"` // e.g., "beginner", "intermediate"
	Time            *int      `bson:"time,omitempty" json:"time"`   // seconds
	Image           *string   `bson:"image,omitempty" json:"image"` // object key or absolute URL
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`

	Sets []Set `bson:"-" json:"sets"`
}

// CloneInto returns a copy of the descriptive fields owned by workoutID.
// IDs, timestamps and sets are not carried over.
func (e Exercise) CloneInto(workoutID string) Exercise {
	return Exercise{
		WorkoutID:       workoutID,
		Name:            e.Name,
		Instructions:    e.Instructions,
		Type:            e.Type,
		Muscle:          e.Muscle,
		Equipment:       e.Equipment,
		EquipmentNeeded: e.EquipmentNeeded,
		Difficulty:      e.Difficulty,
		Time:            e.Time,
		Image:           e.Image,
	}
}

// ExerciseSpec is the caller's desired state for one exercise of a workout.
type ExerciseSpec struct {
	Name            string
	Instructions    string
	Type            string
	Muscle          string
	Equipment       string
	EquipmentNeeded bool
	Difficulty      string
	Time            *int
	Image           *string
	Sets            []SetSpec
}

// Exercise converts the spec into an unsaved exercise owned by workoutID.
func (s ExerciseSpec) Exercise(workoutID string) Exercise {
	return Exercise{
		WorkoutID:       workoutID,
		Name:            s.Name,
		Instructions:    s.Instructions,
		Type:            s.Type,
		Muscle:          s.Muscle,
		Equipment:       s.Equipment,
		EquipmentNeeded: s.EquipmentNeeded,
		Difficulty:      s.Difficulty,
		Time:            s.Time,
		Image:           s.Image,
	}
}
