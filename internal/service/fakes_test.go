package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fieldready/pt-coach/internal/domain"
	"fieldready/pt-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[primitive.ObjectID]*domain.User{}}
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	r.users[u.ID] = &cp
	return u.ID, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type memExerciseRepo struct {
	mu        sync.Mutex
	exercises []domain.Exercise
}

func (r *memExerciseRepo) Create(_ context.Context, ex *domain.Exercise) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.exercises {
		if e.Name == ex.Name {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	ex.ID = primitive.NewObjectID()
	ex.CreatedAt = time.Now().UTC()
	r.exercises = append(r.exercises, *ex)
	return ex.ID, nil
}

func (r *memExerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.exercises {
		if e.ID == id {
			cp := e
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memExerciseRepo) GetByName(_ context.Context, name string) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.exercises {
		if e.Name == name {
			cp := e
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memExerciseRepo) List(_ context.Context) ([]domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]domain.Exercise(nil), r.exercises...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memWorkoutRepo struct {
	mu       sync.Mutex
	workouts map[primitive.ObjectID]domain.Workout
}

func newMemWorkoutRepo() *memWorkoutRepo {
	return &memWorkoutRepo{workouts: map[primitive.ObjectID]domain.Workout{}}
}

// clone deep-copies blocks so callers never alias stored state.
func clone(w domain.Workout) *domain.Workout {
	blocks := make([]domain.Block, len(w.Blocks))
	for i, b := range w.Blocks {
		blocks[i] = domain.Block{Name: b.Name, Exercises: append([]domain.BlockExercise(nil), b.Exercises...)}
	}
	w.Blocks = blocks
	if w.Feedback != nil {
		fb := *w.Feedback
		w.Feedback = &fb
	}
	return &w
}

func (r *memWorkoutRepo) Create(_ context.Context, w *domain.Workout) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w.ID = primitive.NewObjectID()
	w.Feedback = nil
	r.workouts[w.ID] = *clone(*w)
	return w.ID, nil
}

func (r *memWorkoutRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(w), nil
}

func (r *memWorkoutRepo) GetByOwnerID(_ context.Context, ownerID primitive.ObjectID) ([]domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Workout{}
	for _, w := range r.workouts {
		if w.OwnerID == ownerID {
			out = append(out, *clone(w))
		}
	}
	return out, nil
}

func (r *memWorkoutRepo) UpdateBlocks(_ context.Context, id primitive.ObjectID, blocks []domain.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok {
		return repository.ErrNotFound
	}
	w.Blocks = blocks
	r.workouts[id] = *clone(w)
	return nil
}

func (r *memWorkoutRepo) MarkSaved(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	w.Saved, w.SavedAt = true, &now
	r.workouts[id] = w
	return nil
}

func (r *memWorkoutRepo) SetFeedback(_ context.Context, id primitive.ObjectID, fb domain.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok {
		return repository.ErrNotFound
	}
	if w.Feedback != nil {
		return repository.ErrFeedbackAlreadySet
	}
	w.Feedback = &fb
	r.workouts[id] = w
	return nil
}
