package api

import (
	"errors"
	"net/http"
	"time"

	"fieldready/pt-coach/internal/catalog"
	"fieldready/pt-coach/internal/domain"
	"fieldready/pt-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler serves the exercise catalog and picker.
type ExerciseHandler struct {
	catalogService service.CatalogService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(catalogService service.CatalogService) *ExerciseHandler {
	return &ExerciseHandler{catalogService: catalogService}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateExerciseRequest defines the expected JSON for creating an exercise.
type CreateExerciseRequest struct {
	Name      string `json:"name" binding:"required"`
	Category  string `json:"category" binding:"required"` // e.g. "Strength", "Cardio"
	Equipment string `json:"equipment" binding:"omitempty"`
	DemoURL   string `json:"demoUrl" binding:"omitempty,url"` // Optional, validated as URL if provided
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Equipment string    `json:"equipment,omitempty"`
	DemoURL   string    `json:"demoUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PickerResponse is the exercise picker's view.
type PickerResponse struct {
	Query        string             `json:"query"`
	Category     string             `json:"category"`
	Categories   []string           `json:"categories"`
	Exercises    []ExerciseResponse `json:"exercises"`
	Empty        bool               `json:"empty"`
	EmptyMessage string             `json:"emptyMessage,omitempty"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:        ex.ID.Hex(),
		Name:      ex.Name,
		Category:  ex.Category,
		Equipment: ex.Equipment,
		DemoURL:   ex.DemoURL,
		CreatedAt: ex.CreatedAt,
		UpdatedAt: ex.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to a slice of ExerciseResponse DTO.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

// MapPickerViewToResponse converts a picker view to its DTO.
func MapPickerViewToResponse(v catalog.PickerView) PickerResponse {
	categories := v.Categories
	if categories == nil {
		categories = []string{}
	}
	return PickerResponse{
		Query:        v.Query,
		Category:     v.Category,
		Categories:   categories,
		Exercises:    MapExercisesToResponse(v.Exercises),
		Empty:        v.Empty,
		EmptyMessage: v.EmptyMessage,
	}
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Add an exercise to the catalog
// @Description Creates a new catalog exercise. Coaches only.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body CreateExerciseRequest true "Exercise details"
// @Success 201 {object} ExerciseResponse "Exercise created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (not a coach)"
// @Failure 409 {object} gin.H "Conflict (name already in catalog)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /pt-coach/exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify coach from token.")
		return
	}

	exercise, err := h.catalogService.CreateExercise(c.Request.Context(), coachID, service.ExerciseInput{
		Name:      req.Name,
		Category:  req.Category,
		Equipment: req.Equipment,
		DemoURL:   req.DemoURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidationFailed), errors.Is(err, service.ErrInvalidDemoURL):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrExerciseExists):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			_ = c.Error(err)
			abortWithError(c, http.StatusInternalServerError, "Failed to create exercise.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// ListExercises godoc
// @Summary Browse the exercise catalog
// @Description Returns the picker view of the catalog filtered by name text and category.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param q query string false "Case-insensitive name search"
// @Param category query string false "Exact category"
// @Success 200 {object} PickerResponse "Visible exercises and categories"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /pt-coach/exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	exercises, err := h.catalogService.ListExercises(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises.")
		return
	}

	picker := catalog.NewPicker(exercises, nil, nil)
	picker.SetQuery(c.Query("q"))
	picker.SetCategory(c.Query("category"))
	c.JSON(http.StatusOK, MapPickerViewToResponse(picker.View()))
}
