package domain

import (
	"time"
)

// User is the owner of workouts. Identity and credentials live in the external
// auth provider; this record only anchors ownership and copy provenance.
type User struct {
	ID        string    `bson:"_id" json:"id"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`

	// WorkoutsCopied holds the ids of source workouts this user has copied.
	// Loaded from the provenance relation, never stored on the user row.
	WorkoutsCopied []string `bson:"-" json:"workoutsCopied"`
}

// CopyRecord is one provenance entry: UserID copied SourceWorkoutID into CopyWorkoutID.
// (UserID, SourceWorkoutID) is unique.
type CopyRecord struct {
	UserID          string    `bson:"userId" json:"userId"`
	SourceWorkoutID string    `bson:"sourceWorkoutId" json:"sourceWorkoutId"`
	CopyWorkoutID   string    `bson:"copyWorkoutId" json:"copyWorkoutId"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
}
