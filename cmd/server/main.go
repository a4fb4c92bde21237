package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/materiku/materiku-backend/internal/authz"
	"github.com/materiku/materiku-backend/internal/config"
	"github.com/materiku/materiku-backend/internal/database"
	"github.com/materiku/materiku-backend/internal/handler"
	"github.com/materiku/materiku-backend/internal/logger"
	"github.com/materiku/materiku-backend/internal/repository"
	"github.com/materiku/materiku-backend/internal/router"
	"github.com/materiku/materiku-backend/internal/service"
	"github.com/materiku/materiku-backend/internal/validator"
	"github.com/materiku/materiku-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Materiku Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	materialRepo := repository.NewMaterialRepository(pool)
	ratingRepo := repository.NewRatingRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)
	tagRepo := repository.NewTagRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	perms := authz.NewPermissionService(authz.NewLogObserver(log), log)
	authService := service.NewAuthService(cfg, rdb)
	materialCache := service.NewMaterialCache(rdb, cfg.MaterialCacheTTL, log)
	materialService := service.NewMaterialService(materialRepo, courseRepo, materialCache, perms, log)
	courseService := service.NewCourseService(courseRepo, perms, log)
	ratingService := service.NewRatingService(ratingRepo, materialRepo, perms, log)
	reviewService := service.NewReviewService(reviewRepo, materialRepo, perms, log)
	tagService := service.NewTagService(tagRepo, materialRepo, perms, log)
	roleService := service.NewRoleService(roleRepo)
	userService := service.NewUserService(userRepo, roleRepo, authService, perms, log)
	mediaService := service.NewMediaService(cfg)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService, userService, userRepo),
		Course:    handler.NewCourseHandler(courseService),
		Material:  handler.NewMaterialHandler(materialService, mediaService, cfg, log),
		Rating:    handler.NewRatingHandler(ratingService),
		Review:    handler.NewReviewHandler(reviewService),
		Tag:       handler.NewTagHandler(tagService),
		AdminRole: handler.NewAdminRoleHandler(roleService),
		AdminUser: handler.NewAdminUserHandler(userService),
		WS:        handler.NewWSHandler(rdb, courseService, perms, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	statsWorker := worker.NewStatsWorker(pool, rdb, log)
	go statsWorker.Start(workerCtx)

	// ─── Sync Capability Catalog ──────────────────────────────────────
	// The catalog is code-defined; make sure every known code exists in
	// PostgreSQL before traffic arrives.
	if err := roleRepo.SyncCapabilityCatalog(ctx); err != nil {
		log.Fatal().Err(err).Msg("Capability catalog sync failed")
	}

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Warm the approved-material listings BEFORE accepting traffic so the
	// first readers do not stampede PostgreSQL.
	if courses, _, err := courseRepo.ListPaginated(ctx, 1000, 0); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	} else {
		for _, course := range courses {
			if _, err := materialService.ListApproved(ctx, course.ID); err != nil {
				log.Warn().Err(err).Str("course_id", course.ID.String()).Msg("Listing prewarm failed")
			}
		}
		log.Info().Int("courses", len(courses)).Msg("Approved-material listings prewarmed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, userRepo, perms, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the stats worker and wait for the queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
