package domain

import "time"

// Defaults applied to set specs that omit reps or weight.
const (
	DefaultSetReps   = 10
	DefaultSetWeight = 20
)

// Set is one set of an exercise.
type Set struct {
	ID         string    `bson:"_id" json:"id"`
	ExerciseID string    `bson:"exerciseId" json:"exerciseId"`
	Reps       int       `bson:"reps" json:"reps"`
	Weight     float64   `bson:"weight" json:"weight"`
	Time       *int      `bson:"time,omitempty" json:"time"` // seconds
	Rest       *int      `bson:"rest,omitempty" json:"rest"` // seconds
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// SetSpec is the caller's desired state for one set. Nil reps/weight take the defaults.
type SetSpec struct {
	Reps   *int
	Weight *float64
	Time   *int
	Rest   *int
}

// Set converts the spec into an unsaved set.
func (s SetSpec) Set() Set {
	set := Set{
		Reps:   DefaultSetReps,
		Weight: DefaultSetWeight,
		Time:   s.Time,
		Rest:   s.Rest,
	}
	if s.Reps != nil {
		set.Reps = *s.Reps
	}
	if s.Weight != nil {
		set.Weight = *s.Weight
	}
	return set
}

// CloneSets copies reps, weight, time and rest of each set. IDs are dropped.
func CloneSets(sets []Set) []Set {
	out := make([]Set, len(sets))
	for i, s := range sets {
		out[i] = Set{Reps: s.Reps, Weight: s.Weight, Time: s.Time, Rest: s.Rest}
	}
	return out
}
