package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/Rackosdra/kt-ex/config"
	"github.com/Rackosdra/kt-ex/db"
	"github.com/Rackosdra/kt-ex/handlers"
	"github.com/Rackosdra/kt-ex/kickertool"
	"github.com/Rackosdra/kt-ex/live"
	"github.com/Rackosdra/kt-ex/models"
	"github.com/Rackosdra/kt-ex/repositories"
	api "github.com/Rackosdra/kt-ex/routes"
	"github.com/Rackosdra/kt-ex/services"
	"github.com/Rackosdra/kt-ex/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(context.Background(), dbConn); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("schema migrations applied")

	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("snapshot archiving to R2 enabled", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Info("snapshot archiving disabled (R2 not configured)")
	}

	wsHub := live.NewHub(logger)
	go wsHub.Run()

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	disciplineRepo := repositories.NewPostgresDisciplineRepository(dbConn)
	stageRepo := repositories.NewPostgresStageRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	entryRepo := repositories.NewPostgresEntryRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	courtRepo := repositories.NewPostgresCourtRepository(dbConn)
	webhookLogRepo := repositories.NewPostgresWebhookLogRepository(dbConn)

	ktClient := kickertool.NewClient(cfg.KickertoolAPIBase, cfg.KickertoolAPIKey, logger)

	syncService := services.NewSyncService(services.SyncServiceDeps{
		DB:          dbConn,
		Client:      ktClient,
		Tournaments: tournamentRepo,
		Disciplines: disciplineRepo,
		Stages:      stageRepo,
		Groups:      groupRepo,
		Entries:     entryRepo,
		Standings:   standingRepo,
		Matches:     matchRepo,
		Courts:      courtRepo,
		Hub:         wsHub,
		Uploader:    uploader,
		Logger:      logger,
	})
	webhookService := services.NewWebhookService(syncService, webhookLogRepo, cfg.WebhookIdempotency, logger)
	matchService := services.NewMatchService(ktClient, matchRepo, wsHub, logger)
	queryService := services.NewQueryService(
		tournamentRepo, disciplineRepo, stageRepo, groupRepo,
		entryRepo, standingRepo, matchRepo, courtRepo, webhookLogRepo,
	)

	var authService *services.AuthService
	if cfg.AdminEnabled() {
		authService = services.NewAuthService(cfg.JWTSecretKey, cfg.AdminPasswordHash)
		logger.Info("admin surface enabled")
	} else {
		logger.Info("admin surface disabled (JWT secret or admin password hash not set)")
	}

	// Fallback resync scheduler: webhooks can be lost, so running
	// tournaments are fully resynced on an interval.
	if cfg.ResyncInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.ResyncInterval)
			defer ticker.Stop()
			logger.Info("resync scheduler started", slog.Duration("interval", cfg.ResyncInterval))

			for range ticker.C {
				ids, err := tournamentRepo.ListIDsByState(context.Background(), nil, models.TournamentStateRunning)
				if err != nil {
					logger.Error("scheduler: failed to list running tournaments", slog.Any("error", err))
					continue
				}
				for _, id := range ids {
					if err := syncService.FullSync(context.Background(), id); err != nil {
						logger.Error("scheduler: resync failed",
							slog.String("tournament_id", id), slog.Any("error", err))
					}
				}
			}
		}()
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Health:     handlers.NewHealthHandler(dbConn),
		Webhook:    handlers.NewWebhookHandler(webhookService, logger),
		Tournament: handlers.NewTournamentHandler(queryService),
		Group:      handlers.NewGroupHandler(queryService),
		Match:      handlers.NewMatchHandler(queryService, matchService),
		Court:      handlers.NewCourtHandler(queryService),
		Admin:      handlers.NewAdminHandler(authService, syncService, tournamentRepo, webhookLogRepo, logger),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, logger),
		AdminAuth:  authService,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		}
		logger.Info("server stopped")
	}
}
