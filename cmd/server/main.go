package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldready/pt-coach/internal/api"
	"fieldready/pt-coach/internal/card"
	"fieldready/pt-coach/internal/config"
	"fieldready/pt-coach/internal/export"
	"fieldready/pt-coach/internal/logging"
	"fieldready/pt-coach/internal/repository/mongo"
	"fieldready/pt-coach/internal/service"
	"fieldready/pt-coach/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title PT Coach API
// @version 1.0
// @description Workout cards, exercise catalog, exports and AAR feedback.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	// --- Logging ---
	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting PT Coach server", zap.String("address", cfg.Server.Address))

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		logger.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
			logger.Error("index creation failed", zap.Error(err))
			return
		}
		logger.Info("database indexes ensured")
	}()

	// --- Initialize Storage ---
	storageCtx, cancelStorage := context.WithTimeout(context.Background(), 30*time.Second)
	fileStorage, err := storage.NewS3Storage(storageCtx, cfg.S3, logger)
	cancelStorage()
	if err != nil {
		logger.Fatal("failed to initialize S3 storage", zap.Error(err))
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	catalogService := service.NewCatalogService(exerciseRepo)
	workoutService := service.NewWorkoutService(workoutRepo, exerciseRepo)
	exportService := export.NewService(fileStorage, cfg.Export, logger)
	board := card.NewBoard(workoutService, exportService, logger.Named("card"))

	boardCtx, stopBoard := context.WithCancel(context.Background())
	defer stopBoard()
	if idle := cfg.Server.CardIdleTimeout; idle > 0 {
		go board.Run(boardCtx, idle/2, idle)
	}

	// --- Initialize Gin Engine ---
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(logger.Named("http")))

	api.SetupRoutes(router, cfg.JWT.Secret, authService, catalogService, workoutService, board)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exiting")
}
