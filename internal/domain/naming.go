package domain

import (
	"strings"
	"time"
)

// CopySuffix is appended to the name of a cloned workout.
const CopySuffix = " - Copy"

// TimeOfDay returns "Morning", "Afternoon" or "Evening" for t's local hour.
func TimeOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Morning"
	case h < 17:
		return "Afternoon"
	default:
		return "Evening"
	}
}

// DefaultWorkoutName is the quick-workout name used when none is given.
func DefaultWorkoutName(t time.Time) string {
	return TimeOfDay(t) + " Workout"
}

// CopyName is the name given to a copy of a workout called name.
func CopyName(name string) string {
	return name + CopySuffix
}

// ExampleWorkoutName is the name of a generated example workout for muscle.
func ExampleWorkoutName(muscle string) string {
	return strings.TrimSpace(muscle) + " Workout"
}

// ExampleWorkoutBlurb is the description and notes of a generated example workout.
func ExampleWorkoutBlurb(muscle string) string {
	return "This is an example " + strings.TrimSpace(muscle) + " workout"
}
