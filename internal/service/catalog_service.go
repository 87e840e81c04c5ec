package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"fieldready/pt-coach/internal/domain"
	"fieldready/pt-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrExerciseExists   = errors.New("an exercise with this name already exists")
	ErrValidationFailed = errors.New("exercise validation failed")
	ErrInvalidDemoURL   = errors.New("demo URL must be an absolute http(s) URL")
)

// ExerciseInput is the data needed to add an exercise to the catalog.
type ExerciseInput struct {
	Name      string `yaml:"name"`
	Category  string `yaml:"category"`
	Equipment string `yaml:"equipment"`
	DemoURL   string `yaml:"demoUrl"`
}

// ImportReport summarises a bulk catalog import.
type ImportReport struct {
	Created int
	Skipped int
}

type CatalogService interface {
	CreateExercise(ctx context.Context, coachID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	GetExercise(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	ListExercises(ctx context.Context) ([]domain.Exercise, error)
	// ImportExercises adds each input whose name is not yet in the catalog.
	ImportExercises(ctx context.Context, inputs []ExerciseInput) (ImportReport, error)
}

// catalogService implements the CatalogService interface.
type catalogService struct {
	exerciseRepo repository.ExerciseRepository
}

// NewCatalogService creates a new instance of catalogService.
func NewCatalogService(exerciseRepo repository.ExerciseRepository) CatalogService {
	return &catalogService{exerciseRepo: exerciseRepo}
}

func (in ExerciseInput) normalize() (ExerciseInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Equipment = strings.TrimSpace(in.Equipment)
	in.DemoURL = strings.TrimSpace(in.DemoURL)
	if in.Name == "" || in.Category == "" {
		return in, ErrValidationFailed
	}
	if in.DemoURL != "" {
		u, err := url.Parse(in.DemoURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return in, ErrInvalidDemoURL
		}
	}
	return in, nil
}

// CreateExercise validates and stores a new catalog entry.
func (s *catalogService) CreateExercise(ctx context.Context, coachID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	exercise := &domain.Exercise{
		Name:      in.Name,
		Category:  in.Category,
		Equipment: in.Equipment,
		DemoURL:   in.DemoURL,
		CreatedBy: coachID,
	}
	if _, err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrExerciseExists
		}
		return nil, err
	}
	return exercise, nil
}

// GetExercise retrieves a single exercise.
func (s *catalogService) GetExercise(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// ListExercises returns the full catalog in name order.
func (s *catalogService) ListExercises(ctx context.Context) ([]domain.Exercise, error) {
	return s.exerciseRepo.List(ctx)
}

func (s *catalogService) ImportExercises(ctx context.Context, inputs []ExerciseInput) (ImportReport, error) {
	var report ImportReport
	seen := make(map[string]bool, len(inputs))
	for _, raw := range inputs {
		in, err := raw.normalize()
		if err != nil {
			return report, err
		}
		if seen[in.Name] {
			report.Skipped++
			continue
		}
		seen[in.Name] = true

		_, err = s.exerciseRepo.GetByName(ctx, in.Name)
		if err == nil {
			report.Skipped++
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return report, err
		}

		if _, err := s.CreateExercise(ctx, primitive.NilObjectID, in); err != nil {
			if errors.Is(err, ErrExerciseExists) {
				report.Skipped++
				continue
			}
			return report, err
		}
		report.Created++
	}
	return report, nil
}
