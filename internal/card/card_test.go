package card

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fieldready/pt-coach/internal/domain"
	"fieldready/pt-coach/internal/export"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type swapCall struct {
	workoutID    primitive.ObjectID
	block, exIdx int
}

type fakeController struct {
	mu        sync.Mutex
	workout   *domain.Workout
	saves     int
	swaps     []swapCall
	feedbacks []domain.Rating
}

func (f *fakeController) SaveWorkout(_ context.Context, _ primitive.ObjectID) (*domain.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	w := *f.workout
	w.Saved = true
	return &w, nil
}

func (f *fakeController) SwapExercise(_ context.Context, id primitive.ObjectID, b, e int) (*domain.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.swaps = append(f.swaps, swapCall{id, b, e})
	return f.workout, nil
}

func (f *fakeController) SubmitFeedback(_ context.Context, _ primitive.ObjectID, r domain.Rating) (*domain.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedbacks = append(f.feedbacks, r)
	w := *f.workout
	w.Feedback = &domain.Feedback{Rating: r, SubmittedAt: time.Now()}
	return &w, nil
}

type fakeExporter struct {
	mu    sync.Mutex
	calls map[export.Format]int
	err   error
	panic bool
	delay time.Duration
}

func (f *fakeExporter) run(ctx context.Context, fm export.Format) (*export.Result, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[export.Format]int{}
	}
	f.calls[fm]++
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.panic {
		panic("renderer exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return &export.Result{Format: fm, FileName: "w." + string(fm), DownloadURL: "https://files.example.test/w." + string(fm)}, nil
}

func (f *fakeExporter) ExportPDF(ctx context.Context, _ *domain.Workout) (*export.Result, error) {
	return f.run(ctx, export.FormatPDF)
}

func (f *fakeExporter) ExportExcel(ctx context.Context, _ *domain.Workout) (*export.Result, error) {
	return f.run(ctx, export.FormatExcel)
}

func (f *fakeExporter) ExportWord(ctx context.Context, _ *domain.Workout) (*export.Result, error) {
	return f.run(ctx, export.FormatWord)
}

func (f *fakeExporter) count(fm export.Format) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[fm]
}

func testWorkout() *domain.Workout {
	return &domain.Workout{
		ID:    primitive.NewObjectID(),
		Title: "Day 1: Lower",
		Blocks: []domain.Block{
			{Name: "Warm-up", Exercises: []domain.BlockExercise{
				{Exercise: domain.Exercise{ID: primitive.NewObjectID(), Name: "Hip Opener"}, Prescription: domain.Prescription{Sets: 1, Reps: "10", Rest: "0s"}},
			}},
			{Name: "Main Set", Exercises: []domain.BlockExercise{
				{Exercise: domain.Exercise{ID: primitive.NewObjectID(), Name: "Deadlift", DemoURL: "https://video.example.test/dl"}, Prescription: domain.Prescription{Sets: 3, Reps: "5", Rest: "45s", Notes: "Hex bar"}},
				{Exercise: domain.Exercise{ID: primitive.NewObjectID(), Name: "Sprint"}, Prescription: domain.Prescription{Sets: 6, Reps: "50m", Rest: "1m"}},
			}},
		},
	}
}

func newTestCard(t *testing.T, w *domain.Workout, exp *fakeExporter) (*Card, *fakeController, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	ctrl := &fakeController{workout: w}
	return New(w.ID, ctrl, exp, zap.New(core)), ctrl, logs
}

func TestDerivePhase(t *testing.T) {
	with := &domain.Workout{Feedback: &domain.Feedback{Rating: domain.RatingHard}}
	without := &domain.Workout{}

	assert.Equal(t, PhaseHidden, DerivePhase(without, false))
	assert.Equal(t, PhaseCollecting, DerivePhase(without, true))
	assert.Equal(t, PhaseSubmitted, DerivePhase(with, false))
	assert.Equal(t, PhaseSubmitted, DerivePhase(with, true))
}

func TestFeedbackFlow(t *testing.T) {
	w := testWorkout()
	c, ctrl, _ := newTestCard(t, w, &fakeExporter{})
	ctx := context.Background()

	v := c.Render(w)
	assert.Equal(t, PhaseHidden, v.Feedback.Phase)
	assert.True(t, v.Feedback.CanComplete)
	assert.Empty(t, v.Feedback.Options)

	_, err := c.SubmitFeedback(ctx, w, domain.RatingGood)
	assert.ErrorIs(t, err, ErrFeedbackUnavailable, "buttons are not shown before completing")

	assert.Equal(t, PhaseCollecting, c.CompleteWorkout(w))
	assert.Nil(t, w.Feedback, "completing must not touch the workout")
	v = c.Render(w)
	require.Len(t, v.Feedback.Options, 2)
	assert.Equal(t, FeedbackOption{Rating: domain.RatingGood, Label: "Good to Go"}, v.Feedback.Options[0])

	updated, err := c.SubmitFeedback(ctx, w, domain.RatingGood)
	require.NoError(t, err)
	assert.Equal(t, []domain.Rating{domain.RatingGood}, ctrl.feedbacks)

	v = c.Render(updated)
	assert.Equal(t, PhaseSubmitted, v.Feedback.Phase)
	assert.Equal(t, domain.RatingGood, v.Feedback.Rating)
	assert.Equal(t, "AAR recorded: Good to Go.", v.Feedback.Message)
	assert.Empty(t, v.Feedback.Options)
	assert.False(t, v.Feedback.CanComplete)

	// Once submitted, nothing brings the collecting buttons back.
	assert.Equal(t, PhaseSubmitted, c.CompleteWorkout(updated))
	_, err = c.SubmitFeedback(ctx, updated, domain.RatingHard)
	assert.ErrorIs(t, err, ErrFeedbackUnavailable)
	assert.Len(t, ctrl.feedbacks, 1)
	assert.Empty(t, c.Render(updated).Feedback.Options)
}

func TestFeedbackSubmittedElsewhere(t *testing.T) {
	w := testWorkout()
	c, _, _ := newTestCard(t, w, &fakeExporter{})
	c.CompleteWorkout(w)

	w.Feedback = &domain.Feedback{Rating: domain.RatingHard}
	assert.Equal(t, PhaseSubmitted, c.Phase(w))
}

func TestSubmitInvalidRating(t *testing.T) {
	w := testWorkout()
	c, ctrl, _ := newTestCard(t, w, &fakeExporter{})
	c.CompleteWorkout(w)

	_, err := c.SubmitFeedback(context.Background(), w, domain.Rating("fine"))
	assert.ErrorIs(t, err, domain.ErrInvalidRating)
	assert.Empty(t, ctrl.feedbacks)
}

func TestSwapAndSave(t *testing.T) {
	w := testWorkout()
	c, ctrl, _ := newTestCard(t, w, &fakeExporter{})

	_, err := c.Swap(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []swapCall{{w.ID, 1, 0}}, ctrl.swaps)

	saved, err := c.Save(context.Background())
	require.NoError(t, err)
	assert.True(t, saved.Saved)
	assert.Equal(t, 1, ctrl.saves)
	assert.False(t, c.MenuOpen())
}

func TestToggleExportMenu(t *testing.T) {
	w := testWorkout()
	c, _, _ := newTestCard(t, w, &fakeExporter{})

	assert.True(t, c.ToggleExportMenu())
	assert.Equal(t, export.Formats, c.Render(w).ExportMenu.Formats)
	assert.False(t, c.ToggleExportMenu())
	assert.Empty(t, c.Render(w).ExportMenu.Formats)
}

func TestExportSuccess(t *testing.T) {
	w := testWorkout()
	exp := &fakeExporter{}
	c, _, logs := newTestCard(t, w, exp)
	c.ToggleExportMenu()

	out := c.Export(context.Background(), w, export.FormatWord)

	require.NotNil(t, out.Result)
	assert.Nil(t, out.Notice)
	assert.Equal(t, 1, exp.count(export.FormatWord))
	assert.Zero(t, exp.count(export.FormatPDF))
	assert.False(t, c.MenuOpen())
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestExportFailure(t *testing.T) {
	w := testWorkout()
	exp := &fakeExporter{err: errors.New("storage offline")}
	c, _, logs := newTestCard(t, w, exp)
	c.ToggleExportMenu()

	out := c.Export(context.Background(), w, export.FormatPDF)

	assert.False(t, c.MenuOpen())
	assert.Nil(t, out.Result)
	require.NotNil(t, out.Notice)
	assert.Equal(t, "Export to PDF failed. Please try again.", out.Notice.Message)
	assert.Equal(t, 1, exp.count(export.FormatPDF))

	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "workout export failed", entries[0].Message)

	assert.Equal(t, out.Notice, c.Render(w).Notice)
	c.DismissNotice()
	assert.Nil(t, c.Render(w).Notice)
}

func TestExportSuccessClearsEarlierFailureNotice(t *testing.T) {
	w := testWorkout()
	exp := &fakeExporter{err: errors.New("storage offline")}
	c, _, _ := newTestCard(t, w, exp)

	failed := c.Export(context.Background(), w, export.FormatPDF)
	require.NotNil(t, failed.Notice)
	require.NotNil(t, c.Render(w).Notice)

	exp.err = nil
	ok := c.Export(context.Background(), w, export.FormatExcel)
	require.NotNil(t, ok.Result)
	assert.Nil(t, ok.Notice)
	assert.Nil(t, c.Render(w).Notice)
	assert.Nil(t, c.Notice())
}

func TestExportPanicIsContained(t *testing.T) {
	w := testWorkout()
	c, _, logs := newTestCard(t, w, &fakeExporter{panic: true})
	c.ToggleExportMenu()

	var out Outcome
	require.NotPanics(t, func() { out = c.Export(context.Background(), w, export.FormatExcel) })
	assert.NotNil(t, out.Notice)
	assert.False(t, c.MenuOpen())
	assert.Equal(t, 1, logs.Len())
}

func TestExportUnknownFormat(t *testing.T) {
	w := testWorkout()
	exp := &fakeExporter{}
	c, _, _ := newTestCard(t, w, exp)
	c.ToggleExportMenu()

	out := c.Export(context.Background(), w, export.Format("odt"))
	assert.NotNil(t, out.Notice)
	assert.False(t, c.MenuOpen())
	assert.Zero(t, exp.count(export.FormatPDF)+exp.count(export.FormatExcel)+exp.count(export.FormatWord))
}

func TestConcurrentExports(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := testWorkout()
	exp := &fakeExporter{delay: 5 * time.Millisecond}
	c, _, _ := newTestCard(t, w, exp)
	c.ToggleExportMenu()

	const clicks = 8
	var wg sync.WaitGroup
	outcomes := make([]Outcome, clicks)
	for i := 0; i < clicks; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = c.Export(context.Background(), w, export.FormatPDF)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, clicks, exp.count(export.FormatPDF))
	assert.False(t, c.MenuOpen())
	for _, o := range outcomes {
		assert.NotNil(t, o.Result)
	}
}
