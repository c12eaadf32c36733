package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/mohammadpnp/contact-sync/internal/application/upload"
	"github.com/mohammadpnp/contact-sync/internal/bootstrap"
	"github.com/mohammadpnp/contact-sync/internal/infrastructure/crm"
	"github.com/mohammadpnp/contact-sync/internal/infrastructure/db/models"
	infrafile "github.com/mohammadpnp/contact-sync/internal/infrastructure/file"
	"github.com/mohammadpnp/contact-sync/internal/infrastructure/repository"
	"github.com/mohammadpnp/contact-sync/internal/infrastructure/stream"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	crmBaseURL := os.Getenv("CRM_BASE_URL")
	if crmBaseURL == "" {
		log.Fatal("CRM_BASE_URL is required")
	}

	port := getEnv("PORT", "8080")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Company{},
		&models.Location{},
		&models.SyncJob{},
		&models.UploadQueueJob{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		log.Fatalf("failed to create pgx pool: %v", err)
	}
	defer pool.Close()

	crmClient := crm.NewClient(crmBaseURL, logger)
	oauthClient := crm.NewOAuthClient(crmClient, crm.OAuthConfig{
		ClientID:     os.Getenv("CRM_CLIENT_ID"),
		ClientSecret: os.Getenv("CRM_CLIENT_SECRET"),
		AppID:        os.Getenv("CRM_APP_ID"),
	})

	queueRepo := repository.NewUploadQueueRepository(pool)
	jobRepo := repository.NewSyncJobRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	files := infrafile.NewLocalStore(getEnv("UPLOAD_DIR", "uploads"))
	broadcaster := stream.NewBroadcaster()

	server := bootstrap.NewHTTPServer(bootstrap.ServerDeps{
		DB:          db,
		Queue:       queueRepo,
		Files:       files,
		CRM:         crmClient,
		OAuth:       oauthClient,
		Broadcaster: broadcaster,
		Log:         logger,
	})

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	worker := upload.NewWorker(queueRepo, jobRepo, crmClient, files, broadcaster, tenantRepo, upload.WorkerConfig{
		Workers:           parseIntEnv("SYNC_WORKERS", 1),
		PollInterval:      time.Duration(parseIntEnv("SYNC_POLL_INTERVAL_MS", 500)) * time.Millisecond,
		UploadConcurrency: parseIntEnv("UPLOAD_CONCURRENCY", 3),
	}, logger)
	worker.Start(workerCtx)

	go func() {
		if err := server.Start(":" + port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
}

func parseIntEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
