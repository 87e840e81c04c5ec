// Package card implements the workout card: rendering a workout snapshot into a
// view, the per-card export menu, and the after-action review (feedback) flow.
package card

import "fieldready/pt-coach/internal/domain"

// Phase is the feedback panel state of a card.
type Phase string

const (
	PhaseHidden     Phase = "hidden"
	PhaseCollecting Phase = "collecting"
	PhaseSubmitted  Phase = "submitted"
)

// DerivePhase computes the feedback phase. Feedback present on the workout
// always wins over the local request flag.
func DerivePhase(w *domain.Workout, requested bool) Phase {
	switch {
	case w != nil && w.Feedback != nil:
		return PhaseSubmitted
	case requested:
		return PhaseCollecting
	default:
		return PhaseHidden
	}
}

// RatingLabel is the button text for a rating.
func RatingLabel(r domain.Rating) string {
	switch r {
	case domain.RatingGood:
		return "Good to Go"
	case domain.RatingHard:
		return "That Was Hard"
	}
	return string(r)
}
