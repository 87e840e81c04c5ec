package repository

import (
	"context"

	"fieldready/pt-coach/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound           = RepositoryError("not found")
	ErrConflict           = RepositoryError("already exists")
	ErrFeedbackAlreadySet = RepositoryError("feedback already recorded")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ExerciseRepository defines the interface for the exercise catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByName(ctx context.Context, name string) (*domain.Exercise, error)
	// List returns the whole catalog sorted by name.
	List(ctx context.Context) ([]domain.Exercise, error)
}

// WorkoutRepository defines the interface for interacting with workout data.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Workout, error)
	// UpdateBlocks replaces the block list of a workout.
	UpdateBlocks(ctx context.Context, id primitive.ObjectID, blocks []domain.Block) error
	MarkSaved(ctx context.Context, id primitive.ObjectID) error
	// SetFeedback records feedback once. A second call returns ErrFeedbackAlreadySet.
	SetFeedback(ctx context.Context, id primitive.ObjectID, feedback domain.Feedback) error
}
