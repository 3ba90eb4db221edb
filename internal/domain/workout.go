// internal/domain/workout.go
package domain

import (
	"time"
)

// Workout is the root of the workout aggregate. It owns its Exercises,
// which in turn own their Sets.
type Workout struct {
	ID          string    `bson:"_id" json:"id"`
	UserID      string    `bson:"userId" json:"userId"` // Owner
	Name        string    `bson:"name" json:"name"`
	Description *string   `bson:"description,omitempty" json:"description"`
	Notes       *string   `bson:"notes,omitempty" json:"notes"`
	CopyCount   int       `bson:"copyCount" json:"copyCount"`               // Accepted copies of this workout, the owner's own included
	CopyID      *string   `bson:"copyId,omitempty" json:"copyId,omitempty"` // Source workout when this one is a copy
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`

	// Exercises is populated by tree reads only; it is never persisted on the workout row.
	Exercises []Exercise `bson:"-" json:"exercises,omitempty"`
}

// IsCopy reports whether the workout was cloned from another workout.
func (w *Workout) IsCopy() bool {
	return w.CopyID != nil && *w.CopyID != ""
}

// WithoutEmptyExercises returns the exercises that carry at least one set.
func (w *Workout) WithoutEmptyExercises() []Exercise {
	kept := make([]Exercise, 0, len(w.Exercises))
	for _, e := range w.Exercises {
		if len(e.Sets) > 0 {
			kept = append(kept, e)
		}
	}
	return kept
}

// WorkoutHeader carries the caller-editable header fields of a workout.
type WorkoutHeader struct {
	Name        string
	Description *string
	Notes       *string
	CopyCount   *int // nil keeps the stored value
	UserID      string
}

// WorkoutSummary is the list view of a workout.
type WorkoutSummary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CopyCount     int       `json:"copyCount"`
	ExerciseNames []string  `json:"exerciseNames"` // first two exercises
	CreatedAt     time.Time `json:"createdAt"`
}
