package card

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fieldready/pt-coach/internal/domain"
	"fieldready/pt-coach/internal/export"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var ErrFeedbackUnavailable = errors.New("feedback is not being collected for this workout")

// Controller owns workouts. The card never mutates a workout itself; it asks
// the controller and renders whatever snapshot comes back.
type Controller interface {
	SaveWorkout(ctx context.Context, workoutID primitive.ObjectID) (*domain.Workout, error)
	SwapExercise(ctx context.Context, workoutID primitive.ObjectID, blockIndex, exerciseIndex int) (*domain.Workout, error)
	SubmitFeedback(ctx context.Context, workoutID primitive.ObjectID, rating domain.Rating) (*domain.Workout, error)
}

// Exporter produces downloadable documents for a workout.
type Exporter interface {
	ExportPDF(ctx context.Context, w *domain.Workout) (*export.Result, error)
	ExportExcel(ctx context.Context, w *domain.Workout) (*export.Result, error)
	ExportWord(ctx context.Context, w *domain.Workout) (*export.Result, error)
}

// Notice is a user-facing message shown until dismissed.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Outcome reports a settled export. Exactly one of Result and Notice is set.
type Outcome struct {
	Format export.Format  `json:"format"`
	Result *export.Result `json:"result,omitempty"`
	Notice *Notice        `json:"notice,omitempty"`
}

// Card holds the transient state of one workout card. It is safe for
// concurrent use.
type Card struct {
	workoutID primitive.ObjectID
	ctrl      Controller
	exporter  Exporter
	logger    *zap.Logger

	mu                sync.Mutex
	menuOpen          bool
	feedbackRequested bool
	notice            *Notice
}

// New creates the card for workoutID.
func New(workoutID primitive.ObjectID, ctrl Controller, exporter Exporter, logger *zap.Logger) *Card {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Card{
		workoutID: workoutID,
		ctrl:      ctrl,
		exporter:  exporter,
		logger:    logger.With(zap.String("workoutId", workoutID.Hex())),
	}
}

func (c *Card) WorkoutID() primitive.ObjectID {
	return c.workoutID
}

// ToggleExportMenu flips the export menu and returns whether it is now open.
func (c *Card) ToggleExportMenu() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.menuOpen = !c.menuOpen
	return c.menuOpen
}

func (c *Card) MenuOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.menuOpen
}

func (c *Card) closeMenu() {
	c.mu.Lock()
	c.menuOpen = false
	c.mu.Unlock()
}

// Phase returns the feedback phase for the given snapshot.
func (c *Card) Phase(w *domain.Workout) Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return DerivePhase(w, c.feedbackRequested)
}

// CompleteWorkout opens the feedback panel. It has no effect once feedback
// has been submitted and does not touch the workout.
func (c *Card) CompleteWorkout(w *domain.Workout) Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	if DerivePhase(w, c.feedbackRequested) == PhaseHidden {
		c.feedbackRequested = true
	}
	return DerivePhase(w, c.feedbackRequested)
}

// SubmitFeedback forwards the rating to the controller while the panel is
// collecting. The returned workout is the controller's new snapshot.
func (c *Card) SubmitFeedback(ctx context.Context, w *domain.Workout, rating domain.Rating) (*domain.Workout, error) {
	if !rating.Valid() {
		return nil, domain.ErrInvalidRating
	}
	if c.Phase(w) != PhaseCollecting {
		return nil, ErrFeedbackUnavailable
	}
	return c.ctrl.SubmitFeedback(ctx, c.workoutID, rating)
}

// Swap asks the controller to replace the exercise at a position.
func (c *Card) Swap(ctx context.Context, blockIndex, exerciseIndex int) (*domain.Workout, error) {
	return c.ctrl.SwapExercise(ctx, c.workoutID, blockIndex, exerciseIndex)
}

func (c *Card) Save(ctx context.Context) (*domain.Workout, error) {
	return c.ctrl.SaveWorkout(ctx, c.workoutID)
}

// Export runs one export and closes the menu when it settles, whether it
// succeeded or not. Failures are logged and turned into a Notice; they never
// reach the caller as an error. A successful export clears any earlier
// failure notice. Concurrent calls are allowed.
func (c *Card) Export(ctx context.Context, w *domain.Workout, f export.Format) Outcome {
	defer c.closeMenu()

	res, err := c.dispatch(ctx, w, f)
	if err != nil {
		c.logger.Error("workout export failed", zap.String("format", string(f)), zap.Error(err))
		n := &Notice{Kind: "error", Message: fmt.Sprintf("Export to %s failed. Please try again.", f.Label())}
		c.mu.Lock()
		c.notice = n
		c.mu.Unlock()
		return Outcome{Format: f, Notice: n}
	}
	c.mu.Lock()
	c.notice = nil
	c.mu.Unlock()
	return Outcome{Format: f, Result: res}
}

func (c *Card) dispatch(ctx context.Context, w *domain.Workout, f export.Format) (res *export.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("export panicked: %v", r)
		}
	}()

	switch f {
	case export.FormatPDF:
		res, err = c.exporter.ExportPDF(ctx, w)
	case export.FormatExcel:
		res, err = c.exporter.ExportExcel(ctx, w)
	case export.FormatWord:
		res, err = c.exporter.ExportWord(ctx, w)
	default:
		return nil, fmt.Errorf("%w: %q", export.ErrUnknownFormat, f)
	}
	if err == nil && res == nil {
		err = errors.New("exporter returned no result")
	}
	return res, err
}

// Notice returns the pending notice, if any.
func (c *Card) Notice() *Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notice
}

// DismissNotice clears the pending notice.
func (c *Card) DismissNotice() {
	c.mu.Lock()
	c.notice = nil
	c.mu.Unlock()
}
