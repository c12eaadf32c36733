package bootstrap

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mohammadpnp/contact-sync/internal/application/automation"
	"github.com/mohammadpnp/contact-sync/internal/application/auth"
	"github.com/mohammadpnp/contact-sync/internal/application/upload"
	"github.com/mohammadpnp/contact-sync/internal/infrastructure/crm"
	"github.com/mohammadpnp/contact-sync/internal/infrastructure/file"
	"github.com/mohammadpnp/contact-sync/internal/infrastructure/repository"
	"github.com/mohammadpnp/contact-sync/internal/infrastructure/stream"
	httpecho "github.com/mohammadpnp/contact-sync/internal/interfaces/http/echo"
	"gorm.io/gorm"
)

// ServerDeps carries the shared infrastructure the HTTP layer is wired
// from. The broadcaster and queue are shared with the upload worker.
type ServerDeps struct {
	DB          *gorm.DB
	Queue       *repository.UploadQueueRepository
	Files       *file.LocalStore
	CRM         *crm.Client
	OAuth       *crm.OAuthClient
	Broadcaster *stream.Broadcaster
	Log         *slog.Logger
}

func NewHTTPServer(deps ServerDeps) *echo.Echo {
	server := echo.New()
	server.HideBanner = true

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(middleware.BodyLimit("10M"))

	tenantRepo := repository.NewTenantRepository(deps.DB)
	jobRepo := repository.NewSyncJobRepository(deps.DB)

	authService := auth.NewService(deps.OAuth, tenantRepo, deps.Log)
	provisioner := upload.NewProvisioner(deps.CRM, deps.Log)
	startUpload := upload.NewStartUpload(tenantRepo, provisioner, deps.Queue, jobRepo, deps.Log)
	workflowService := automation.NewWorkflowService(authService, deps.CRM, deps.Log)

	httpecho.RegisterRoutes(
		server,
		httpecho.NewUploadHandler(startUpload, deps.Files),
		httpecho.NewJobHandler(jobRepo),
		httpecho.NewProgressHandler(deps.Broadcaster),
		httpecho.NewCatalogHandler(deps.CRM, tenantRepo),
		httpecho.NewWorkflowHandler(workflowService),
		httpecho.NewOAuthHandler(authService),
	)

	server.GET("/healthz", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	return server
}
