package api

import (
	"errors"
	"net/http"
	"time"

	"fieldready/pt-coach/internal/card"
	"fieldready/pt-coach/internal/catalog"
	"fieldready/pt-coach/internal/domain"
	"fieldready/pt-coach/internal/export"
	"fieldready/pt-coach/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler serves workouts and their cards.
type WorkoutHandler struct {
	workoutService service.WorkoutService
	catalogService service.CatalogService
	board          *card.Board
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService, catalogService service.CatalogService, board *card.Board) *WorkoutHandler {
	return &WorkoutHandler{
		workoutService: workoutService,
		catalogService: catalogService,
		board:          board,
	}
}

// --- DTOs ---

type EntryRequest struct {
	ExerciseID string      `json:"exerciseId" binding:"required"`
	Sets       int         `json:"sets" binding:"required,min=1"`
	Reps       domain.Reps `json:"reps" binding:"required"` // number or string, e.g. 10 or "AMRAP"
	Rest       string      `json:"rest"`                    // Go duration, "0s" hides rest
	Notes      string      `json:"notes"`
}

type BlockRequest struct {
	Name      string         `json:"name" binding:"required"`
	Exercises []EntryRequest `json:"exercises" binding:"dive"`
}

type CreateWorkoutRequest struct {
	Title  string         `json:"title" binding:"required"`
	Blocks []BlockRequest `json:"blocks" binding:"dive"`
}

type PickerSelectRequest struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
	BlockIndex *int   `json:"blockIndex" binding:"required,min=0"`
	Query      string `json:"query"`
	Category   string `json:"category"`
}

type SwapRequest struct {
	BlockIndex    *int `json:"blockIndex" binding:"required,min=0"`
	ExerciseIndex *int `json:"exerciseIndex" binding:"required,min=0"`
}

type FeedbackRequest struct {
	Rating string `json:"rating" binding:"required"` // good or hard, case-insensitive
}

type BlockExerciseResponse struct {
	Exercise ExerciseResponse `json:"exercise"`
	Sets     int              `json:"sets"`
	Reps     string           `json:"reps"`
	Rest     string           `json:"rest"`
	Notes    string           `json:"notes,omitempty"`
}

type BlockResponse struct {
	Name      string                  `json:"name"`
	Exercises []BlockExerciseResponse `json:"exercises"`
}

type FeedbackResponse struct {
	Rating      domain.Rating `json:"rating"`
	SubmittedAt time.Time     `json:"submittedAt"`
}

type WorkoutResponse struct {
	ID        string            `json:"id"`
	OwnerID   string            `json:"ownerId"`
	Title     string            `json:"title"`
	Blocks    []BlockResponse   `json:"blocks"`
	Feedback  *FeedbackResponse `json:"feedback,omitempty"`
	Saved     bool              `json:"saved"`
	SavedAt   *time.Time        `json:"savedAt,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type PickerSelectResponse struct {
	Added  ExerciseResponse `json:"added"`
	Picker PickerResponse   `json:"picker"`
	Card   card.View        `json:"card"`
}

type ExportResponse struct {
	Outcome card.Outcome `json:"outcome"`
	Card    card.View    `json:"card"`
}

// MapWorkoutToResponse converts a domain.Workout to WorkoutResponse DTO.
func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	if w == nil {
		return WorkoutResponse{}
	}
	resp := WorkoutResponse{
		ID:        w.ID.Hex(),
		OwnerID:   w.OwnerID.Hex(),
		Title:     w.Title,
		Blocks:    make([]BlockResponse, len(w.Blocks)),
		Saved:     w.Saved,
		SavedAt:   w.SavedAt,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
	for i, b := range w.Blocks {
		block := BlockResponse{Name: b.Name, Exercises: make([]BlockExerciseResponse, len(b.Exercises))}
		for j := range b.Exercises {
			entry := &b.Exercises[j]
			block.Exercises[j] = BlockExerciseResponse{
				Exercise: MapExerciseToResponse(&entry.Exercise),
				Sets:     entry.Prescription.Sets,
				Reps:     string(entry.Prescription.Reps),
				Rest:     entry.Prescription.Rest,
				Notes:    entry.Prescription.Notes,
			}
		}
		resp.Blocks[i] = block
	}
	if w.Feedback != nil {
		resp.Feedback = &FeedbackResponse{Rating: w.Feedback.Rating, SubmittedAt: w.Feedback.SubmittedAt}
	}
	return resp
}

// --- Helpers ---

// handleWorkoutError maps service errors to HTTP responses.
func handleWorkoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkoutNotFound), errors.Is(err, service.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrWorkoutAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidWorkout), errors.Is(err, domain.ErrInvalidRating):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrBlockOutOfRange), errors.Is(err, service.ErrPositionOutOfRange):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrNoSwapCandidate),
		errors.Is(err, service.ErrFeedbackAlreadySet),
		errors.Is(err, card.ErrFeedbackUnavailable):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}

// loadWorkout resolves :id to a workout owned by the caller. On failure the
// response has already been written.
func (h *WorkoutHandler) loadWorkout(c *gin.Context) (*domain.Workout, bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return nil, false
	}
	workoutID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format.")
		return nil, false
	}
	workout, err := h.workoutService.GetWorkoutForUser(c.Request.Context(), userID, workoutID)
	if err != nil {
		handleWorkoutError(c, err)
		return nil, false
	}
	return workout, true
}

// --- Workout Handlers ---

// CreateWorkout godoc
// @Summary Create a workout
// @Description Creates a workout for the authenticated user from catalog exercises.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workout body CreateWorkoutRequest true "Workout plan"
// @Success 201 {object} WorkoutResponse "Workout created"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Unknown exercise"
// @Router /pt-coach/workouts [post]
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	blocks := make([]service.BlockInput, len(req.Blocks))
	for i, b := range req.Blocks {
		blocks[i] = service.BlockInput{Name: b.Name, Exercises: make([]service.EntryInput, len(b.Exercises))}
		for j, e := range b.Exercises {
			exerciseID, err := primitive.ObjectIDFromHex(e.ExerciseID)
			if err != nil {
				abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format: "+e.ExerciseID)
				return
			}
			blocks[i].Exercises[j] = service.EntryInput{
				ExerciseID:   exerciseID,
				Prescription: domain.Prescription{Sets: e.Sets, Reps: e.Reps, Rest: e.Rest, Notes: e.Notes},
			}
		}
	}

	workout, err := h.workoutService.CreateWorkout(c.Request.Context(), ownerID, req.Title, blocks)
	if err != nil {
		handleWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

// ListWorkouts godoc
// @Summary List my workouts
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} WorkoutResponse "Workouts, newest first"
// @Router /pt-coach/workouts [get]
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	workouts, err := h.workoutService.ListWorkouts(c.Request.Context(), ownerID)
	if err != nil {
		handleWorkoutError(c, err)
		return
	}
	resp := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		resp[i] = MapWorkoutToResponse(&workouts[i])
	}
	c.JSON(http.StatusOK, resp)
}

// GetWorkout godoc
// @Summary Get a workout
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {object} WorkoutResponse
// @Failure 403 {object} gin.H "Not your workout"
// @Failure 404 {object} gin.H "Workout not found"
// @Router /pt-coach/workouts/{id} [get]
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	workout, ok := h.loadWorkout(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// SelectFromPicker godoc
// @Summary Add an exercise from the picker
// @Description Rebuilds the picker from the caller's query and category, selects the exercise and appends it to the block.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param selection body PickerSelectRequest true "Picker state and selection"
// @Success 200 {object} PickerSelectResponse
// @Failure 404 {object} gin.H "Exercise not visible with this filter"
// @Failure 422 {object} gin.H "Block out of range"
// @Router /pt-coach/workouts/{id}/picker/select [post]
func (h *WorkoutHandler) SelectFromPicker(c *gin.Context) {
	var req PickerSelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(req.ExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}
	workout, ok := h.loadWorkout(c)
	if !ok {
		return
	}
	exercises, err := h.catalogService.ListExercises(c.Request.Context())
	if err != nil {
		handleWorkoutError(c, err)
		return
	}

	var (
		updated *domain.Workout
		addErr  error
	)
	picker := catalog.NewPicker(exercises, func(ex domain.Exercise) {
		updated, addErr = h.workoutService.AddExercise(c.Request.Context(), workout.ID, *req.BlockIndex, ex)
	}, nil)
	picker.SetQuery(req.Query)
	picker.SetCategory(req.Category)

	added, err := picker.Select(exerciseID)
	if errors.Is(err, catalog.ErrNotVisible) {
		abortWithError(c, http.StatusNotFound, err.Error())
		return
	}
	if addErr != nil {
		handleWorkoutError(c, addErr)
		return
	}

	c.JSON(http.StatusOK, PickerSelectResponse{
		Added:  MapExerciseToResponse(&added),
		Picker: MapPickerViewToResponse(picker.View()),
		Card:   h.board.Card(workout.ID).Render(updated),
	})
}

// --- Card Handlers ---

// GetCard godoc
// @Summary Render the workout card
// @Tags Cards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {object} card.View
// @Router /pt-coach/workouts/{id}/card [get]
func (h *WorkoutHandler) GetCard(c *gin.Context) {
	workout, ok := h.loadWorkout(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.board.Card(workout.ID).Render(workout))
}

// ToggleExportMenu godoc
// @Summary Open or close the export menu
// @Tags Cards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {object} card.View
// @Router /pt-coach/workouts/{id}/card/export-menu [post]
func (h *WorkoutHandler) ToggleExportMenu(c *gin.Context) {
	workout, ok := h.loadWorkout(c)
	if !ok {
		return
	}
	wc := h.board.Card(workout.ID)
	wc.ToggleExportMenu()
	c.JSON(http.StatusOK, wc.Render(workout))
}

// CompleteWorkout godoc
// @Summary Mark the workout complete and show the AAR prompt
// @Tags Cards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {object} card.View
// @Router /pt-coach/workouts/{id}/card/complete [post]
func (h *WorkoutHandler) CompleteWorkout(c *gin.Context) {
	workout, ok := h.loadWorkout(c)
	if !ok {
		return
	}
	wc := h.board.Card(workout.ID)
	wc.CompleteWorkout(workout)
	c.JSON(http.StatusOK, wc.Render(workout))
}

// SubmitFeedback godoc
// @Summary Submit the AAR rating
// @Tags Cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param feedback body FeedbackRequest true "good or hard"
// @Success 200 {object} card.View
// @Failure 400 {object} gin.H "Unknown rating"
// @Failure 409 {object} gin.H "Feedback not open or already recorded"
// @Router /pt-coach/workouts/{id}/card/feedback [post]
func (h *WorkoutHandler) SubmitFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	rating, err := domain.ParseRating(req.Rating)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	workout, ok := h.loadWorkout(c)
	if !ok {
		return
	}
	wc := h.board.Card(workout.ID)
	updated, err := wc.SubmitFeedback(c.Request.Context(), workout, rating)
	if err != nil {
		handleWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, wc.Render(updated))
}

// SwapExercise godoc
// @Summary Swap the exercise at a position
// @Tags Cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param position body SwapRequest true "Block and exercise index"
// @Success 200 {object} card.View
// @Failure 409 {object} gin.H "No alternative in this category"
// @Failure 422 {object} gin.H "Position out of range"
// @Router /pt-coach/workouts/{id}/card/swap [post]
func (h *WorkoutHandler) SwapExercise(c *gin.Context) {
	var req SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	workout, ok := h.loadWorkout(c)
	if !ok {
		return
	}
	wc := h.board.Card(workout.ID)
	updated, err := wc.Swap(c.Request.Context(), *req.BlockIndex, *req.ExerciseIndex)
	if err != nil {
		handleWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, wc.Render(updated))
}

// SaveWorkout godoc
// @Summary Save the workout to my plans
// @Tags Cards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {object} card.View
// @Router /pt-coach/workouts/{id}/card/save [post]
func (h *WorkoutHandler) SaveWorkout(c *gin.Context) {
	workout, ok := h.loadWorkout(c)
	if !ok {
		return
	}
	wc := h.board.Card(workout.ID)
	updated, err := wc.Save(c.Request.Context())
	if err != nil {
		handleWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, wc.Render(updated))
}

// ExportWorkout godoc
// @Summary Export the workout card
// @Description Renders the card as pdf, xlsx or docx and returns a download link. Export failures are reported as a notice on the card, not as an HTTP error.
// @Tags Cards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Param format path string true "pdf, xlsx or docx"
// @Success 200 {object} ExportResponse
// @Router /pt-coach/workouts/{id}/card/export/{format} [post]
func (h *WorkoutHandler) ExportWorkout(c *gin.Context) {
	workout, ok := h.loadWorkout(c)
	if !ok {
		return
	}
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		// The card reports unknown formats as a failed export.
		format = export.Format(c.Param("format"))
	}
	wc := h.board.Card(workout.ID)
	outcome := wc.Export(c.Request.Context(), workout, format)
	c.JSON(http.StatusOK, ExportResponse{Outcome: outcome, Card: wc.Render(workout)})
}

// DismissNotice godoc
// @Summary Dismiss the card's notice
// @Tags Cards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {object} card.View
// @Router /pt-coach/workouts/{id}/card/notice [delete]
func (h *WorkoutHandler) DismissNotice(c *gin.Context) {
	workout, ok := h.loadWorkout(c)
	if !ok {
		return
	}
	wc := h.board.Card(workout.ID)
	wc.DismissNotice()
	c.JSON(http.StatusOK, wc.Render(workout))
}

// PrintCard godoc
// @Summary Printable workout card
// @Tags Cards
// @Produce plain
// @Security BearerAuth
// @Param id path string true "Workout ID"
// @Success 200 {string} string "Plain-text card"
// @Router /pt-coach/workouts/{id}/card/print [get]
func (h *WorkoutHandler) PrintCard(c *gin.Context) {
	workout, ok := h.loadWorkout(c)
	if !ok {
		return
	}
	view := h.board.Card(workout.ID).Render(workout)
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	if err := card.WritePrintable(c.Writer, view); err != nil {
		_ = c.Error(err)
	}
}
