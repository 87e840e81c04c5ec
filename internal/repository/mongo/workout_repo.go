// internal/repository/mongo/workout_repo.go
package mongo

import (
	"context"
	"errors"
	"time"

	"fieldready/pt-coach/internal/domain"
	"fieldready/pt-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout. Feedback is never accepted on create.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.OwnerID == primitive.NilObjectID || workout.Title == "" {
		return primitive.NilObjectID, errors.New("workout requires ownerId and title")
	}
	workout.ID = primitive.NewObjectID()
	workout.Feedback = nil
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, workout); err != nil {
		return primitive.NilObjectID, err
	}
	return workout.ID, nil
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// GetByOwnerID retrieves a user's workouts, newest first.
func (r *mongoWorkoutRepository) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Workout, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workouts := []domain.Workout{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// UpdateBlocks replaces the workout's blocks as a whole so order is kept as given.
func (r *mongoWorkoutRepository) UpdateBlocks(ctx context.Context, id primitive.ObjectID, blocks []domain.Block) error {
	return r.update(ctx, bson.M{"_id": id}, bson.M{
		"blocks":    blocks,
		"updatedAt": time.Now().UTC(),
	})
}

func (r *mongoWorkoutRepository) MarkSaved(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	return r.update(ctx, bson.M{"_id": id}, bson.M{
		"saved":     true,
		"savedAt":   now,
		"updatedAt": now,
	})
}

// SetFeedback writes feedback only while the stored value is still null.
func (r *mongoWorkoutRepository) SetFeedback(ctx context.Context, id primitive.ObjectID, feedback domain.Feedback) error {
	err := r.update(ctx, bson.M{"_id": id, "feedback": nil}, bson.M{
		"feedback":  feedback,
		"updatedAt": time.Now().UTC(),
	})
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	// Distinguish a missing workout from one that already has feedback.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return getErr
	}
	return repository.ErrFeedbackAlreadySet
}

func (r *mongoWorkoutRepository) update(ctx context.Context, filter bson.M, set bson.M) error {
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
