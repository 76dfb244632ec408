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

	"civicreport/internal/auth"
	"civicreport/internal/config"
	"civicreport/internal/database"
	"civicreport/internal/email"
	"civicreport/internal/handlers"
	"civicreport/internal/logger"
	"civicreport/internal/middleware"
	"civicreport/internal/queue"
	"civicreport/internal/realtime"
	"civicreport/internal/repository"
	"civicreport/internal/scheduler"
	"civicreport/internal/service"
	"civicreport/internal/vault"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Setup(logger.Config{
		Level: cfg.Log.Level,
	})

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
		"log_level", cfg.Log.Level,
	)

	// Optional Vault secret source for JWT secret and database password
	if cfg.Vault.Enabled {
		vaultClient, err := vault.NewClient(&cfg.Vault)
		if err != nil {
			slog.Error("Failed to create vault client", "error", err)
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		secrets, err := vaultClient.Secrets(ctx)
		cancel()
		if err != nil {
			slog.Error("Failed to read secrets from vault", "error", err)
			os.Exit(1)
		}
		if secret, ok := secrets["jwt_secret"]; ok {
			cfg.JWT.Secret = secret
		}
		if password, ok := secrets["db_password"]; ok {
			cfg.Database.Password = password
		}
		slog.Info("Secrets loaded from vault")
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func(db *database.Database) {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}(db)

	slog.Info("Database connection established")

	migrator := database.NewMigrationExecutor(db.DB)
	if err := migrator.RunMigrations("./migrations"); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	// Repositories
	userRepo := repository.NewUserRepository(db.DB)
	officerRepo := repository.NewOfficerRepository(db.DB)
	maintainerRepo := repository.NewMaintainerRepository(db.DB)
	reportRepo := repository.NewReportRepository(db.DB)
	internalMsgRepo := repository.NewInternalMessageRepository(db.DB)
	publicMsgRepo := repository.NewPublicMessageRepository(db.DB)
	notificationRepo := repository.NewNotificationRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)

	// Optional push queue for external notification delivery
	var publisher service.PushPublisher
	if cfg.AMQP.Enabled {
		amqpPublisher, err := queue.Connect(cfg.AMQP.URI, cfg.AMQP.Queue)
		if err != nil {
			slog.Error("Failed to connect to message broker", "error", err)
			os.Exit(1)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		slog.Info("Message broker connected", "queue", cfg.AMQP.Queue)
	}

	// Services
	hub := realtime.NewHub()
	authService := auth.NewService(&cfg.JWT)
	emailService := email.NewService(&cfg.Email)
	notificationService := service.NewNotificationService(notificationRepo, followRepo, publisher, hub, userRepo, emailService)
	assignmentService := service.NewAssignmentService(reportRepo, officerRepo, maintainerRepo, notificationService)
	lifecycleService := service.NewLifecycleService(reportRepo, officerRepo, assignmentService, notificationService)
	messagingService := service.NewMessagingService(reportRepo, officerRepo, maintainerRepo, userRepo, internalMsgRepo, publicMsgRepo, hub, notificationService)
	reportService := service.NewReportService(reportRepo, followRepo)
	officerService := service.NewOfficerService(officerRepo, reportRepo, authService)
	maintainerService := service.NewMaintainerService(maintainerRepo, reportRepo, authService)
	authSvc := service.NewAuthService(userRepo, officerRepo, maintainerRepo, authService, emailService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authSvc)
	reportHandler := handlers.NewReportHandler(reportService, lifecycleService, assignmentService)
	messageHandler := handlers.NewMessageHandler(messagingService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	officerHandler := handlers.NewOfficerHandler(officerService)
	maintainerHandler := handlers.NewMaintainerHandler(maintainerService)
	streamHandler := handlers.NewStreamHandler(hub)

	// Middleware
	authMw := middleware.NewAuthMiddleware(authService)
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)

	citizen := middleware.RequireActor(auth.ActorCitizen)
	officer := middleware.RequireActor(auth.ActorOfficer)
	admin := middleware.RequireOfficerRole("ADMINISTRATOR")
	publicRelations := middleware.RequireOfficerRole("PUBLIC_RELATIONS")

	authed := func(h http.HandlerFunc) http.Handler {
		return authMw.Authenticate(h)
	}
	gated := func(gate func(http.Handler) http.Handler, h http.HandlerFunc) http.Handler {
		return authMw.Authenticate(gate(h))
	}

	mux := http.NewServeMux()

	// Auth
	mux.Handle("POST /api/auth/register", http.HandlerFunc(authHandler.Register))
	mux.Handle("POST /api/auth/login", http.HandlerFunc(authHandler.Login))

	// Reports
	mux.Handle("GET /api/reports", http.HandlerFunc(reportHandler.List))
	mux.Handle("GET /api/reports/{id}", http.HandlerFunc(reportHandler.Get))
	mux.Handle("POST /api/reports", gated(citizen, reportHandler.Create))
	mux.Handle("GET /api/reports/mine", gated(citizen, reportHandler.ListMine))
	mux.Handle("GET /api/reports/pending", gated(publicRelations, reportHandler.ListPending))
	mux.Handle("GET /api/reports/assigned", authed(reportHandler.ListAssigned))
	mux.Handle("POST /api/reports/{id}/review", gated(publicRelations, reportHandler.Review))
	mux.Handle("POST /api/reports/{id}/assign-officer", gated(publicRelations, reportHandler.AssignOfficer))
	mux.Handle("POST /api/reports/{id}/assign-maintainer", gated(officer, reportHandler.AssignMaintainer))
	mux.Handle("PATCH /api/reports/{id}/status", authed(reportHandler.UpdateStatus))
	mux.Handle("POST /api/reports/{id}/follow", gated(citizen, reportHandler.Follow))
	mux.Handle("DELETE /api/reports/{id}/follow", gated(citizen, reportHandler.Unfollow))

	// Messaging
	mux.Handle("POST /api/reports/{id}/messages/internal", authed(messageHandler.SendInternal))
	mux.Handle("GET /api/reports/{id}/messages/internal", authed(messageHandler.ListInternal))
	mux.Handle("POST /api/reports/{id}/messages/public", authed(messageHandler.SendPublic))
	mux.Handle("GET /api/reports/{id}/messages/public", http.HandlerFunc(messageHandler.ListPublic))
	mux.Handle("GET /api/reports/{id}/stream", http.HandlerFunc(streamHandler.Subscribe))

	// Notifications
	mux.Handle("GET /api/notifications", authed(notificationHandler.List))
	mux.Handle("POST /api/notifications/{id}/read", authed(notificationHandler.MarkRead))
	mux.Handle("POST /api/notifications/read-all", authed(notificationHandler.MarkAllRead))

	// Directories
	mux.Handle("GET /api/officers", authed(officerHandler.List))
	mux.Handle("GET /api/officers/{id}", authed(officerHandler.Get))
	mux.Handle("POST /api/officers", gated(admin, officerHandler.Create))
	mux.Handle("PUT /api/officers/{id}", gated(admin, officerHandler.Update))
	mux.Handle("DELETE /api/officers/{id}", gated(admin, officerHandler.Delete))
	mux.Handle("GET /api/maintainers", authed(maintainerHandler.List))
	mux.Handle("GET /api/maintainers/{id}", authed(maintainerHandler.Get))
	mux.Handle("POST /api/maintainers", gated(admin, maintainerHandler.Create))
	mux.Handle("PUT /api/maintainers/{id}", gated(admin, maintainerHandler.Update))
	mux.Handle("DELETE /api/maintainers/{id}", gated(admin, maintainerHandler.Delete))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.HealthCheck(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, err := w.Write([]byte(`{"status":"unhealthy","error":"database unreachable"}`)); err != nil {
				slog.Error("Failed to write health check response", "error", err)
			}
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"healthy","version":"` + cfg.App.Version + `"}`)); err != nil {
			slog.Error("Failed to write health check response", "error", err)
		}
	})

	// Notification digest
	digest := scheduler.NewScheduler(notificationRepo, userRepo, emailService, &cfg.Scheduler)
	digest.Start()
	defer digest.Stop()

	handler := middleware.LoggingMiddleware(
		middleware.SecurityHeaders(
			corsMw.Handler(
				rateLimiter.Limit(mux),
			),
		),
	)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped")
}
