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

	"github.com/dojoverse/dojo-system/config"
	"github.com/dojoverse/dojo-system/db"
	"github.com/dojoverse/dojo-system/handlers"
	"github.com/dojoverse/dojo-system/middleware"
	"github.com/dojoverse/dojo-system/realtime"
	"github.com/dojoverse/dojo-system/repositories"
	api "github.com/dojoverse/dojo-system/routes"
	"github.com/dojoverse/dojo-system/services"
	"github.com/dojoverse/dojo-system/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-co-op/gocron/v2"
	_ "github.com/lib/pq"
)

// How often lapsed memberships are swept to expired.
const expirySweepInterval = time.Hour

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2)
	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
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
	logger.Info("Cloudflare R2 uploader initialized")

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	txRunner := repositories.NewTxRunner(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	memberRepo := repositories.NewPostgresMemberRepository(dbConn)
	classRepo := repositories.NewPostgresClassRepository(dbConn)
	paymentRepo := repositories.NewPostgresPaymentRepository(dbConn)
	accessRepo := repositories.NewPostgresAccessRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	emailService := services.NewEmailService(cfg.ResendAPIKey, cfg.ResendFromEmail, logger)
	authService := services.NewAuthService(userRepo)
	memberService := services.NewMemberService(memberRepo, cloudflareUploader, emailService, logger)
	classService := services.NewClassService(classRepo)
	paymentService := services.NewPaymentService(txRunner, paymentRepo, memberRepo, emailService, wsHub, logger)
	accessService := services.NewAccessService(memberRepo, accessRepo, wsHub, logger)
	tournamentService := services.NewTournamentService(tournamentRepo, teamRepo, matchRepo, logger)
	teamService := services.NewTeamService(txRunner, teamRepo, tournamentRepo, cloudflareUploader, logger)
	bracketService := services.NewBracketService(txRunner, tournamentRepo, teamRepo, matchRepo, nil, wsHub, logger)
	dashboardService := services.NewDashboardService(memberRepo, classRepo, paymentRepo, accessRepo, tournamentRepo, matchRepo)
	logger.Info("services initialized")

	// Планировщик: перевод просроченных членств в статус expired
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(expirySweepInterval),
		gocron.NewTask(func() {
			expired, err := memberService.ExpireLapsedMembers(context.Background())
			if err != nil {
				logger.Error("expiry sweep failed", slog.Any("error", err))
				return
			}
			if expired > 0 {
				logger.Info("expiry sweep finished", slog.Int64("members_expired", expired))
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		logger.Error("failed to schedule expiry sweep", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Error("failed to shut down scheduler", slog.Any("error", err))
		}
	}()
	logger.Info("membership expiry scheduler started", slog.Duration("interval", expirySweepInterval))

	// Инициализация обработчиков HTTP
	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	memberHandler := handlers.NewMemberHandler(memberService)
	classHandler := handlers.NewClassHandler(classService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	accessHandler := handlers.NewAccessHandler(accessService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	teamHandler := handlers.NewTeamHandler(teamService)
	bracketHandler := handlers.NewBracketHandler(bracketService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authenticator,
		cfg.CORSAllowedOrigins,
		authHandler,
		memberHandler,
		classHandler,
		paymentHandler,
		accessHandler,
		tournamentHandler,
		teamHandler,
		bracketHandler,
		dashboardHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
