package api

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"fieldready/pt-coach/internal/card"
	"fieldready/pt-coach/internal/domain"
	"fieldready/pt-coach/internal/export"
	"fieldready/pt-coach/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testSecret = "api-test-secret"

type fakeAuth struct{}

func (fakeAuth) Register(_ context.Context, name, email, _ string, role domain.Role) (*domain.User, error) {
	if email == "taken@example.test" {
		return nil, service.ErrUserAlreadyExists
	}
	return &domain.User{ID: primitive.NewObjectID(), Name: name, Email: email, Role: role}, nil
}

func (fakeAuth) Login(_ context.Context, email, password string) (string, *domain.User, error) {
	if password != "correct-horse" {
		return "", nil, service.ErrAuthenticationFailed
	}
	return "token", &domain.User{ID: primitive.NewObjectID(), Email: email, Role: domain.RoleMember}, nil
}

type fakeCatalog struct {
	mu        sync.Mutex
	exercises []domain.Exercise
}

func (f *fakeCatalog) CreateExercise(_ context.Context, coachID primitive.ObjectID, in service.ExerciseInput) (*domain.Exercise, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.exercises {
		if e.Name == in.Name {
			return nil, service.ErrExerciseExists
		}
	}
	ex := domain.Exercise{ID: primitive.NewObjectID(), Name: in.Name, Category: in.Category, Equipment: in.Equipment, DemoURL: in.DemoURL, CreatedBy: coachID}
	f.exercises = append(f.exercises, ex)
	return &ex, nil
}

func (f *fakeCatalog) GetExercise(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.exercises {
		if e.ID == id {
			cp := e
			return &cp, nil
		}
	}
	return nil, service.ErrExerciseNotFound
}

func (f *fakeCatalog) ListExercises(context.Context) ([]domain.Exercise, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Exercise(nil), f.exercises...), nil
}

func (f *fakeCatalog) ImportExercises(context.Context, []service.ExerciseInput) (service.ImportReport, error) {
	return service.ImportReport{}, errors.New("not supported")
}

type fakeWorkouts struct {
	mu       sync.Mutex
	workouts map[primitive.ObjectID]*domain.Workout
	catalog  *fakeCatalog
}

func (f *fakeWorkouts) put(w domain.Workout) *domain.Workout {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.ID = primitive.NewObjectID()
	f.workouts[w.ID] = &w
	cp := w
	return &cp
}

func (f *fakeWorkouts) get(id primitive.ObjectID) (*domain.Workout, error) {
	w, ok := f.workouts[id]
	if !ok {
		return nil, service.ErrWorkoutNotFound
	}
	cp := *w
	cp.Blocks = make([]domain.Block, len(w.Blocks))
	for i, b := range w.Blocks {
		cp.Blocks[i] = domain.Block{Name: b.Name, Exercises: append([]domain.BlockExercise(nil), b.Exercises...)}
	}
	return &cp, nil
}

func (f *fakeWorkouts) CreateWorkout(ctx context.Context, ownerID primitive.ObjectID, title string, blocks []service.BlockInput) (*domain.Workout, error) {
	if strings.TrimSpace(title) == "" {
		return nil, service.ErrInvalidWorkout
	}
	w := domain.Workout{OwnerID: ownerID, Title: title}
	for _, b := range blocks {
		block := domain.Block{Name: b.Name}
		for _, e := range b.Exercises {
			ex, err := f.catalog.GetExercise(ctx, e.ExerciseID)
			if err != nil {
				return nil, err
			}
			block.Exercises = append(block.Exercises, domain.BlockExercise{Exercise: *ex, Prescription: e.Prescription})
		}
		w.Blocks = append(w.Blocks, block)
	}
	return f.put(w), nil
}

func (f *fakeWorkouts) GetWorkout(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(id)
}

func (f *fakeWorkouts) GetWorkoutForUser(ctx context.Context, userID, id primitive.ObjectID) (*domain.Workout, error) {
	w, err := f.GetWorkout(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.OwnerID != userID {
		return nil, service.ErrWorkoutAccessDenied
	}
	return w, nil
}

func (f *fakeWorkouts) ListWorkouts(_ context.Context, ownerID primitive.ObjectID) ([]domain.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Workout{}
	for id, w := range f.workouts {
		if w.OwnerID == ownerID {
			cp, _ := f.get(id)
			out = append(out, *cp)
		}
	}
	return out, nil
}

func (f *fakeWorkouts) SaveWorkout(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workouts[id]
	if !ok {
		return nil, service.ErrWorkoutNotFound
	}
	now := time.Now()
	w.Saved, w.SavedAt = true, &now
	return f.get(id)
}

func (f *fakeWorkouts) SwapExercise(_ context.Context, id primitive.ObjectID, b, e int) (*domain.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workouts[id]
	if !ok {
		return nil, service.ErrWorkoutNotFound
	}
	entry, ok := w.ExerciseAt(b, e)
	if !ok {
		return nil, service.ErrPositionOutOfRange
	}
	entry.Exercise.Name += " (swapped)"
	return f.get(id)
}

func (f *fakeWorkouts) AddExercise(_ context.Context, id primitive.ObjectID, blockIndex int, ex domain.Exercise) (*domain.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workouts[id]
	if !ok {
		return nil, service.ErrWorkoutNotFound
	}
	if blockIndex < 0 || blockIndex >= len(w.Blocks) {
		return nil, service.ErrBlockOutOfRange
	}
	w.Blocks[blockIndex].Exercises = append(w.Blocks[blockIndex].Exercises,
		domain.BlockExercise{Exercise: ex, Prescription: service.DefaultPrescription})
	return f.get(id)
}

func (f *fakeWorkouts) SubmitFeedback(_ context.Context, id primitive.ObjectID, r domain.Rating) (*domain.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workouts[id]
	if !ok {
		return nil, service.ErrWorkoutNotFound
	}
	if w.Feedback != nil {
		return nil, service.ErrFeedbackAlreadySet
	}
	w.Feedback = &domain.Feedback{Rating: r, SubmittedAt: time.Now()}
	return f.get(id)
}

type fakeExporter struct {
	err   error
	calls int
	mu    sync.Mutex
}

func (f *fakeExporter) do(w *domain.Workout, format export.Format) (*export.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &export.Result{
		Format:      format,
		FileName:    export.FileName(w.Title, format),
		DownloadURL: "https://files.example.test/" + w.ID.Hex(),
		Size:        128,
	}, nil
}

func (f *fakeExporter) ExportPDF(_ context.Context, w *domain.Workout) (*export.Result, error) {
	return f.do(w, export.FormatPDF)
}

func (f *fakeExporter) ExportExcel(_ context.Context, w *domain.Workout) (*export.Result, error) {
	return f.do(w, export.FormatExcel)
}

func (f *fakeExporter) ExportWord(_ context.Context, w *domain.Workout) (*export.Result, error) {
	return f.do(w, export.FormatWord)
}

type testServer struct {
	router   *gin.Engine
	catalog  *fakeCatalog
	workouts *fakeWorkouts
	exporter *fakeExporter
	byName   map[string]domain.Exercise
	member   primitive.ObjectID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat := &fakeCatalog{}
	byName := map[string]domain.Exercise{}
	for _, in := range []service.ExerciseInput{
		{Name: "Back Squat", Category: "Strength", Equipment: "Barbell"},
		{Name: "Goblet Squat", Category: "Strength", Equipment: "Kettlebell", DemoURL: "https://video.example.test/goblet"},
		{Name: "Shuttle Run", Category: "Cardio"},
	} {
		ex, err := cat.CreateExercise(context.Background(), primitive.NewObjectID(), in)
		require.NoError(t, err)
		byName[ex.Name] = *ex
	}

	workouts := &fakeWorkouts{workouts: map[primitive.ObjectID]*domain.Workout{}, catalog: cat}
	exporter := &fakeExporter{}
	board := card.NewBoard(workouts, exporter, zap.NewNop())

	router := gin.New()
	SetupRoutes(router, testSecret, fakeAuth{}, cat, workouts, board)

	return &testServer{
		router:   router,
		catalog:  cat,
		workouts: workouts,
		exporter: exporter,
		byName:   byName,
		member:   primitive.NewObjectID(),
	}
}

// seedWorkout stores a workout owned by the test member.
func (s *testServer) seedWorkout() *domain.Workout {
	return s.workouts.put(domain.Workout{
		OwnerID: s.member,
		Title:   "Leg Day",
		Blocks: []domain.Block{{
			Name: "Main Set",
			Exercises: []domain.BlockExercise{
				{Exercise: s.byName["Back Squat"], Prescription: domain.Prescription{Sets: 5, Reps: "5", Rest: "45s"}},
				{Exercise: s.byName["Shuttle Run"], Prescription: domain.Prescription{Sets: 4, Reps: "1", Rest: domain.NoRest}},
			},
		}},
	})
}

func signToken(t *testing.T, userID primitive.ObjectID, role domain.Role) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwtClaims{
		UserID: userID.Hex(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}
