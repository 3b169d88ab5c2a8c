package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/jobportal/jobportal/api"
	"github.com/jobportal/jobportal/approval"
	"github.com/jobportal/jobportal/auth"
	"github.com/jobportal/jobportal/config"
	"github.com/jobportal/jobportal/datastore"
	"github.com/jobportal/jobportal/notify"
	rh "github.com/jobportal/jobportal/route-handlers"
	"github.com/jobportal/jobportal/scheduler"
	"github.com/jobportal/jobportal/storage"
)

const (
	dbPingTimeout     = 5 * time.Second
	shutdownTimeout   = 15 * time.Second
	dbMaxOpenConns    = 25
	dbMaxIdleConns    = 25
	dbConnMaxLifetime = 5 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal("Configuration load failed", err)
	}
	setupLogging(cfg.App.LogFormat)

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		slog.Warn(w)
	}
	if err != nil {
		fatal("Invalid configuration", err)
	}

	db, err := setupDatabase(cfg.Database.URL)
	if err != nil {
		fatal("Database setup failed", err)
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = datastore.Migrate(migrateCtx, db)
	cancelMigrate()
	if err != nil {
		fatal("Database migration failed", err)
	}

	userRepo := datastore.NewUserRepository(db)
	companyRepo := datastore.NewCompanyProfileRepository(db)
	jobRepo := datastore.NewJobPostRepository(db)
	applicationRepo := datastore.NewJobApplicationRepository(db)
	savedRepo := datastore.NewSavedCandidateRepository(db)
	collegeRepo := datastore.NewCollegeApplicationRepository(db)
	revokedRepo := datastore.NewRevokedTokenRepository(db)

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	files := storage.NewLocalFileStorer(cfg.App.UploadDir)

	providers := []notify.Provider{notify.LogProvider{}}
	if cfg.Notify.SendGridAPIKey != "" {
		providers = append(providers, notify.NewEmailProvider(cfg.Notify.SendGridAPIKey, cfg.Notify.SendGridFromEmail, cfg.Notify.SendGridFromName))
	}
	var publisher *notify.AMQPPublisher
	if cfg.Notify.AMQPURL != "" {
		publisher, err = notify.NewAMQPPublisher(cfg.Notify.AMQPURL, cfg.Notify.AMQPQueue)
		if err != nil {
			slog.Warn("AMQP publisher unavailable, events will not be published", "error", err)
		} else {
			providers = append(providers, publisher)
		}
	}
	dispatcher := notify.NewDispatcher(providers...)

	approvals := approval.NewService(userRepo, companyRepo, dispatcher)
	maintenance := scheduler.New(jobRepo, revokedRepo)

	handlers := api.Handlers{
		Auth:           rh.NewAuthHandler(userRepo, tokens, revokedRepo),
		Profile:        rh.NewProfileHandler(userRepo, jobRepo, applicationRepo, files),
		CompanyProfile: rh.NewCompanyProfileHandler(companyRepo, userRepo, files),
		Admin:          rh.NewAdminHandler(userRepo, companyRepo, approvals),
		Jobs:           rh.NewJobHandler(jobRepo, userRepo, applicationRepo),
		Applications:   rh.NewApplicationHandler(applicationRepo, jobRepo, userRepo, dispatcher),
		Saved:          rh.NewSavedCandidateHandler(savedRepo, userRepo),
		Admissions:     rh.NewAdmissionHandler(collegeRepo, dispatcher),
		Scheduler:      maintenance,
	}

	var limiter api.Limiter = api.NewLocalLimiter()
	if cfg.RateLimit.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RateLimit.RedisURL)
		if err != nil {
			fatal("Invalid REDIS_URL", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		limiter = api.NewRedisLimiter(client)
	}

	router := api.SetupRoutes(handlers, api.Options{
		Authenticator:  api.NewAuthenticator(tokens, userRepo),
		Limiter:        limiter,
		AuthPerMinute:  cfg.RateLimit.AuthPerMinute,
		ApplyPerMinute: cfg.RateLimit.ApplyPerMinute,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		TrustProxy:     cfg.RateLimit.TrustProxy,
	})

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	go maintenance.Run(schedulerCtx, cfg.Scheduler.Interval)

	startServer(cfg.App.Port, router)

	stopScheduler()
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelDrain()
	if err := dispatcher.Wait(drainCtx); err != nil {
		slog.Warn("Pending notifications dropped", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			slog.Warn("Failed to close AMQP publisher", "error", err)
		}
	}
}

func setupLogging(format string) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func setupDatabase(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Database connection successful")
	return db, nil
}

// startServer blocks until SIGINT/SIGTERM and then shuts the server down gracefully.
func startServer(port string, router http.Handler) {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("Server error", err)
		}
	}()

	<-shutdownSignal
	slog.Info("Shutdown signal received, initiating graceful shutdown")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}

	slog.Info("Server gracefully stopped")
}
