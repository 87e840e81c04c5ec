package card

import (
	"fmt"

	"fieldready/pt-coach/internal/domain"
	"fieldready/pt-coach/internal/export"
)

// View is the render output of a card.
type View struct {
	WorkoutID  string       `json:"workoutId"`
	Title      string       `json:"title"`
	Saved      bool         `json:"saved"`
	Blocks     []BlockView  `json:"blocks"`
	ExportMenu MenuView     `json:"exportMenu"`
	Feedback   FeedbackView `json:"feedback"`
	Notice     *Notice      `json:"notice,omitempty"`
}

type BlockView struct {
	Index     int           `json:"index"`
	Name      string        `json:"name"`
	Exercises []ExerciseRow `json:"exercises"`
}

// ExerciseRow is one exercise line. BlockIndex and ExerciseIndex are the
// positional reference used by swap requests.
type ExerciseRow struct {
	BlockIndex    int    `json:"blockIndex"`
	ExerciseIndex int    `json:"exerciseIndex"`
	ExerciseID    string `json:"exerciseId"`
	Name          string `json:"name"`
	Category      string `json:"category,omitempty"`
	Equipment     string `json:"equipment,omitempty"`
	Sets          int    `json:"sets"`
	Reps          string `json:"reps"`
	Rest          string `json:"rest,omitempty"`
	Notes         string `json:"notes,omitempty"`
	DemoURL       string `json:"demoUrl,omitempty"`
}

type MenuView struct {
	Open    bool            `json:"open"`
	Formats []export.Format `json:"formats,omitempty"`
}

type FeedbackOption struct {
	Rating domain.Rating `json:"rating"`
	Label  string        `json:"label"`
}

type FeedbackView struct {
	Phase       Phase            `json:"phase"`
	CanComplete bool             `json:"canComplete"`
	Options     []FeedbackOption `json:"options,omitempty"`
	Rating      domain.Rating    `json:"rating,omitempty"`
	Message     string           `json:"message,omitempty"`
}

// Render builds the view for snapshot w and the card's local state.
func (c *Card) Render(w *domain.Workout) View {
	c.mu.Lock()
	menuOpen := c.menuOpen
	requested := c.feedbackRequested
	notice := c.notice
	c.mu.Unlock()

	v := View{
		WorkoutID: w.ID.Hex(),
		Title:     w.Title,
		Saved:     w.Saved,
		Blocks:    renderBlocks(w.Blocks),
		ExportMenu: MenuView{
			Open: menuOpen,
		},
		Feedback: renderFeedback(w, requested),
		Notice:   notice,
	}
	if menuOpen {
		v.ExportMenu.Formats = export.Formats
	}
	return v
}

func renderBlocks(blocks []domain.Block) []BlockView {
	out := make([]BlockView, len(blocks))
	for bi, b := range blocks {
		rows := make([]ExerciseRow, len(b.Exercises))
		for ei, be := range b.Exercises {
			row := ExerciseRow{
				BlockIndex:    bi,
				ExerciseIndex: ei,
				ExerciseID:    be.Exercise.ID.Hex(),
				Name:          be.Exercise.Name,
				Category:      be.Exercise.Category,
				Equipment:     be.Exercise.Equipment,
				Sets:          be.Prescription.Sets,
				Reps:          string(be.Prescription.Reps),
				Notes:         be.Prescription.Notes,
			}
			if be.Prescription.ShowsRest() {
				row.Rest = be.Prescription.Rest
			}
			if be.Exercise.HasDemo() {
				row.DemoURL = be.Exercise.DemoURL
			}
			rows[ei] = row
		}
		out[bi] = BlockView{Index: bi, Name: b.Name, Exercises: rows}
	}
	return out
}

func renderFeedback(w *domain.Workout, requested bool) FeedbackView {
	phase := DerivePhase(w, requested)
	fv := FeedbackView{Phase: phase}
	switch phase {
	case PhaseHidden:
		fv.CanComplete = true
	case PhaseCollecting:
		for _, r := range domain.Ratings {
			fv.Options = append(fv.Options, FeedbackOption{Rating: r, Label: RatingLabel(r)})
		}
	case PhaseSubmitted:
		fv.Rating = w.Feedback.Rating
		fv.Message = fmt.Sprintf("AAR recorded: %s.", RatingLabel(w.Feedback.Rating))
	}
	return fv
}
