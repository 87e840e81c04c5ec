package domain

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NoRest is the rest value that means "do not display a rest period".
const NoRest = "0s"

// Rating is the post-workout (AAR) feedback value.
type Rating string

const (
	RatingGood Rating = "good"
	RatingHard Rating = "hard"
)

// Ratings lists the closed set of accepted ratings in display order.
var Ratings = []Rating{RatingGood, RatingHard}

var ErrInvalidRating = errors.New("rating must be one of: good, hard")

// Valid reports whether r belongs to the closed rating set.
func (r Rating) Valid() bool {
	return r == RatingGood || r == RatingHard
}

// ParseRating converts user input into a Rating.
func ParseRating(s string) (Rating, error) {
	r := Rating(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrInvalidRating
	}
	return r, nil
}

var ErrInvalidReps = errors.New("reps must be a string or a positive integer")

// Reps is the display-formatted repetition count. It accepts either a JSON
// string ("8-12", "AMRAP") or a positive JSON integer on input.
type Reps string

func (r *Reps) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = Reps(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return ErrInvalidReps
	}
	i, err := n.Int64()
	if err != nil || i < 1 {
		return ErrInvalidReps
	}
	*r = Reps(n.String())
	return nil
}

// RepsFromInt formats an integer rep count.
func RepsFromInt(n int) Reps {
	return Reps(strconv.Itoa(n))
}

// Prescription is the sets/reps/rest/notes attached to one exercise in a block.
type Prescription struct {
	Sets  int    `bson:"sets" json:"sets"`
	Reps  Reps   `bson:"reps" json:"reps"`
	Rest  string `bson:"rest" json:"rest"`                       // Duration string, e.g., "45s", "1m30s"; "0s" hides rest
	Notes string `bson:"notes,omitempty" json:"notes,omitempty"` // Optional coaching notes
}

// ShowsRest reports whether the rest period should be displayed.
func (p Prescription) ShowsRest() bool {
	return p.Rest != "" && p.Rest != NoRest
}

// BlockExercise pairs an exercise snapshot with its prescription.
type BlockExercise struct {
	Exercise     Exercise     `bson:"exercise" json:"exercise"`
	Prescription Prescription `bson:"prescription" json:"prescription"`
}

// Block is a named, ordered group of exercises (e.g., "Warm-up", "Main Set").
type Block struct {
	Name      string          `bson:"name" json:"name"`
	Exercises []BlockExercise `bson:"exercises" json:"exercises"`
}

// Feedback is the write-once AAR captured after a workout.
type Feedback struct {
	Rating      Rating    `bson:"rating" json:"rating"`
	SubmittedAt time.Time `bson:"submittedAt" json:"submittedAt"`
}

// Workout is an ordered sequence of blocks owned by a single user.
type Workout struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Title     string             `bson:"title" json:"title"`
	Blocks    []Block            `bson:"blocks" json:"blocks"`
	Feedback  *Feedback          `bson:"feedback" json:"feedback"` // nil until submitted; never cleared
	Saved     bool               `bson:"saved" json:"saved"`
	SavedAt   *time.Time         `bson:"savedAt,omitempty" json:"savedAt,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ExerciseAt returns the entry at a positional reference, or false when the
// reference is out of range.
func (w *Workout) ExerciseAt(blockIndex, exerciseIndex int) (*BlockExercise, bool) {
	if blockIndex < 0 || blockIndex >= len(w.Blocks) {
		return nil, false
	}
	exs := w.Blocks[blockIndex].Exercises
	if exerciseIndex < 0 || exerciseIndex >= len(exs) {
		return nil, false
	}
	return &exs[exerciseIndex], true
}

// Contains reports whether any block already uses the exercise.
func (w *Workout) Contains(exerciseID primitive.ObjectID) bool {
	for _, b := range w.Blocks {
		for _, be := range b.Exercises {
			if be.Exercise.ID == exerciseID {
				return true
			}
		}
	}
	return false
}

// Summary formats the prescription for documents and printouts,
// e.g. "3 x 10, rest 45s". Rest is omitted when it is not displayed.
func (p Prescription) Summary() string {
	s := strconv.Itoa(p.Sets) + " x " + string(p.Reps)
	if p.ShowsRest() {
		s += ", rest " + p.Rest
	}
	return s
}
