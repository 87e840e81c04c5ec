package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"fieldready/pt-coach/internal/domain"
	"fieldready/pt-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound     = errors.New("workout not found")
	ErrWorkoutAccessDenied = errors.New("access denied to this workout")
	ErrInvalidWorkout      = errors.New("workout validation failed")
	ErrBlockOutOfRange     = errors.New("no block at that index")
	ErrPositionOutOfRange  = errors.New("no exercise at that position")
	ErrNoSwapCandidate     = errors.New("no alternative exercise in this category")
	ErrFeedbackAlreadySet  = errors.New("feedback has already been recorded for this workout")
)

// DefaultPrescription is applied to exercises added from the picker.
var DefaultPrescription = domain.Prescription{Sets: 3, Reps: "10", Rest: "60s"}

// DefaultBlockName names the block created when adding to an empty workout.
const DefaultBlockName = "Main Set"

// EntryInput references a catalog exercise with its prescription.
type EntryInput struct {
	ExerciseID   primitive.ObjectID
	Prescription domain.Prescription
}

type BlockInput struct {
	Name      string
	Exercises []EntryInput
}

// WorkoutService owns workouts: it is the only component that mutates them.
type WorkoutService interface {
	CreateWorkout(ctx context.Context, ownerID primitive.ObjectID, title string, blocks []BlockInput) (*domain.Workout, error)
	GetWorkout(ctx context.Context, workoutID primitive.ObjectID) (*domain.Workout, error)
	GetWorkoutForUser(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error)
	ListWorkouts(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Workout, error)
	SaveWorkout(ctx context.Context, workoutID primitive.ObjectID) (*domain.Workout, error)
	SwapExercise(ctx context.Context, workoutID primitive.ObjectID, blockIndex, exerciseIndex int) (*domain.Workout, error)
	AddExercise(ctx context.Context, workoutID primitive.ObjectID, blockIndex int, exercise domain.Exercise) (*domain.Workout, error)
	SubmitFeedback(ctx context.Context, workoutID primitive.ObjectID, rating domain.Rating) (*domain.Workout, error)
}

// workoutService implements the WorkoutService interface.
type workoutService struct {
	workoutRepo  repository.WorkoutRepository
	exerciseRepo repository.ExerciseRepository
	now          func() time.Time

	// Serialises read-modify-write of block lists within this process.
	blocksMu sync.Mutex
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(workoutRepo repository.WorkoutRepository, exerciseRepo repository.ExerciseRepository) WorkoutService {
	return &workoutService{
		workoutRepo:  workoutRepo,
		exerciseRepo: exerciseRepo,
		now:          time.Now,
	}
}

// validatePrescription checks and normalises a prescription. An empty rest
// becomes domain.NoRest.
func validatePrescription(p domain.Prescription) (domain.Prescription, error) {
	if p.Sets < 1 {
		return p, fmt.Errorf("%w: sets must be at least 1", ErrInvalidWorkout)
	}
	p.Reps = domain.Reps(strings.TrimSpace(string(p.Reps)))
	if p.Reps == "" {
		return p, fmt.Errorf("%w: reps are required", ErrInvalidWorkout)
	}
	p.Rest = strings.TrimSpace(p.Rest)
	if p.Rest == "" {
		p.Rest = domain.NoRest
	}
	d, err := time.ParseDuration(p.Rest)
	if err != nil || d < 0 {
		return p, fmt.Errorf("%w: rest %q is not a duration", ErrInvalidWorkout, p.Rest)
	}
	p.Notes = strings.TrimSpace(p.Notes)
	return p, nil
}

// CreateWorkout resolves every exercise against the catalog and stores the workout.
func (s *workoutService) CreateWorkout(ctx context.Context, ownerID primitive.ObjectID, title string, blocks []BlockInput) (*domain.Workout, error) {
	title = strings.TrimSpace(title)
	if ownerID == primitive.NilObjectID || title == "" {
		return nil, fmt.Errorf("%w: owner and title are required", ErrInvalidWorkout)
	}

	workout := &domain.Workout{
		OwnerID: ownerID,
		Title:   title,
		Blocks:  make([]domain.Block, 0, len(blocks)),
	}
	for bi, in := range blocks {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: block %d needs a name", ErrInvalidWorkout, bi)
		}
		block := domain.Block{Name: name, Exercises: make([]domain.BlockExercise, 0, len(in.Exercises))}
		for _, entry := range in.Exercises {
			exercise, err := s.exerciseRepo.GetByID(ctx, entry.ExerciseID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, fmt.Errorf("%w: %s", ErrExerciseNotFound, entry.ExerciseID.Hex())
				}
				return nil, err
			}
			p, err := validatePrescription(entry.Prescription)
			if err != nil {
				return nil, err
			}
			block.Exercises = append(block.Exercises, domain.BlockExercise{Exercise: *exercise, Prescription: p})
		}
		workout.Blocks = append(workout.Blocks, block)
	}

	if _, err := s.workoutRepo.Create(ctx, workout); err != nil {
		return nil, err
	}
	return workout, nil
}

func (s *workoutService) GetWorkout(ctx context.Context, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

// GetWorkoutForUser returns the workout only if userID owns it.
func (s *workoutService) GetWorkoutForUser(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.OwnerID != userID {
		return nil, ErrWorkoutAccessDenied
	}
	return workout, nil
}

func (s *workoutService) ListWorkouts(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Workout, error) {
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID is required")
	}
	return s.workoutRepo.GetByOwnerID(ctx, ownerID)
}

// SaveWorkout marks the workout as saved to the owner's plan list.
func (s *workoutService) SaveWorkout(ctx context.Context, workoutID primitive.ObjectID) (*domain.Workout, error) {
	if err := s.workoutRepo.MarkSaved(ctx, workoutID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return s.GetWorkout(ctx, workoutID)
}

// SwapExercise replaces the exercise at a position with the first catalog
// exercise of the same category that the workout does not already use. The
// prescription stays as it was.
func (s *workoutService) SwapExercise(ctx context.Context, workoutID primitive.ObjectID, blockIndex, exerciseIndex int) (*domain.Workout, error) {
	s.blocksMu.Lock()
	defer s.blocksMu.Unlock()

	workout, err := s.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	entry, ok := workout.ExerciseAt(blockIndex, exerciseIndex)
	if !ok {
		return nil, ErrPositionOutOfRange
	}

	catalog, err := s.exerciseRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	var replacement *domain.Exercise
	for i := range catalog {
		ex := &catalog[i]
		if ex.Category == entry.Exercise.Category && ex.ID != entry.Exercise.ID && !workout.Contains(ex.ID) {
			replacement = ex
			break
		}
	}
	if replacement == nil {
		return nil, ErrNoSwapCandidate
	}

	entry.Exercise = *replacement
	if err := s.workoutRepo.UpdateBlocks(ctx, workoutID, workout.Blocks); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

// AddExercise appends exercise to a block with DefaultPrescription. Adding to
// block 0 of a workout without blocks creates DefaultBlockName.
func (s *workoutService) AddExercise(ctx context.Context, workoutID primitive.ObjectID, blockIndex int, exercise domain.Exercise) (*domain.Workout, error) {
	s.blocksMu.Lock()
	defer s.blocksMu.Unlock()

	workout, err := s.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if len(workout.Blocks) == 0 && blockIndex == 0 {
		workout.Blocks = append(workout.Blocks, domain.Block{Name: DefaultBlockName})
	}
	if blockIndex < 0 || blockIndex >= len(workout.Blocks) {
		return nil, ErrBlockOutOfRange
	}

	block := &workout.Blocks[blockIndex]
	block.Exercises = append(block.Exercises, domain.BlockExercise{Exercise: exercise, Prescription: DefaultPrescription})
	if err := s.workoutRepo.UpdateBlocks(ctx, workoutID, workout.Blocks); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

// SubmitFeedback records the AAR. Feedback is write-once.
func (s *workoutService) SubmitFeedback(ctx context.Context, workoutID primitive.ObjectID, rating domain.Rating) (*domain.Workout, error) {
	if !rating.Valid() {
		return nil, domain.ErrInvalidRating
	}

	err := s.workoutRepo.SetFeedback(ctx, workoutID, domain.Feedback{Rating: rating, SubmittedAt: s.now().UTC()})
	switch {
	case errors.Is(err, repository.ErrFeedbackAlreadySet):
		return nil, ErrFeedbackAlreadySet
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrWorkoutNotFound
	case err != nil:
		return nil, err
	}
	return s.GetWorkout(ctx, workoutID)
}
