package api

import (
	"net/http"

	"fieldready/pt-coach/internal/card"
	"fieldready/pt-coach/internal/domain"
	"fieldready/pt-coach/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	catalogService service.CatalogService,
	workoutService service.WorkoutService,
	board *card.Board,
) {
	authHandler := NewAuthHandler(authService)
	exerciseHandler := NewExerciseHandler(catalogService)
	workoutHandler := NewWorkoutHandler(workoutService, catalogService, board)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		apiV1.GET("/nav", Nav)
		apiV1.GET("/sections/:slug", GetSection)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex(), "role": role})
		})

		coach := protected.Group("/pt-coach")
		{
			// --- Catalog / picker ---
			coach.GET("/exercises", exerciseHandler.ListExercises)
			coach.POST("/exercises", RoleMiddleware(domain.RoleCoach), exerciseHandler.CreateExercise)

			// --- Workouts ---
			coach.POST("/workouts", workoutHandler.CreateWorkout)
			coach.GET("/workouts", workoutHandler.ListWorkouts)
			coach.GET("/workouts/:id", workoutHandler.GetWorkout)
			coach.POST("/workouts/:id/picker/select", workoutHandler.SelectFromPicker)

			// --- Workout card ---
			cardGroup := coach.Group("/workouts/:id/card")
			{
				cardGroup.GET("", workoutHandler.GetCard)
				cardGroup.GET("/print", workoutHandler.PrintCard)
				cardGroup.POST("/export-menu", workoutHandler.ToggleExportMenu)
				cardGroup.POST("/export/:format", workoutHandler.ExportWorkout)
				cardGroup.POST("/complete", workoutHandler.CompleteWorkout)
				cardGroup.POST("/feedback", workoutHandler.SubmitFeedback)
				cardGroup.POST("/swap", workoutHandler.SwapExercise)
				cardGroup.POST("/save", workoutHandler.SaveWorkout)
				cardGroup.DELETE("/notice", workoutHandler.DismissNotice)
			}
		}
	}
}
