package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"readable/docs"
	"readable/internal/config"
	"readable/internal/database"
	"readable/internal/database/migration"
	"readable/internal/extract"
	handlers "readable/internal/http/handler"
	"readable/internal/http/middleware"
	"readable/internal/logging"
	"readable/internal/otel"
	"readable/internal/readability"
	"readable/internal/repository/postgres"
	"readable/internal/service"
	"readable/internal/simplify"
	"readable/internal/speech"
	"readable/internal/storage"
)

// @title ReadAble API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.New(os.Stdout, logging.Location(cfg.Timezone))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, otel.SettingsFromEnv(), log)
	if err != nil {
		fatal(log, "tracing_init_failed", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		fatal(log, "metrics_init_failed", err)
	}

	// Outbound API calls share one traced client; the service bounds each call.
	apiClient := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

	deps := service.TextDeps{
		Extractor: extract.New(),
		Scorer:    readability.Flesch,
		Observer:  promMiddleware,
		Logger:    log,
		Limits: service.Limits{
			MaxUploadBytes: cfg.Upload.MaxBytes,
			MaxTextBytes:   cfg.Upload.MaxTextBytes,
		},
		UpstreamTimeout: time.Duration(cfg.UpstreamTimeoutSec) * time.Second,
	}

	simplifier, err := simplify.New(simplify.Config{
		APIKey:      cfg.Simplifier.APIKey,
		BaseURL:     cfg.Simplifier.BaseURL,
		Model:       cfg.Simplifier.Model,
		Temperature: cfg.Simplifier.Temperature,
	}, apiClient)
	switch {
	case err == nil:
		deps.Simplifier = simplifier
	case errors.Is(err, simplify.ErrAPIKeyRequired):
		log.Warn("simplifier_disabled", "detail", "MISTRAL_API_KEY is not set")
	default:
		fatal(log, "simplifier_init_failed", err)
	}

	synthesizer, err := speech.New(speech.Config{
		APIKey:  cfg.Speech.APIKey,
		BaseURL: cfg.Speech.BaseURL,
		Model:   cfg.Speech.Model,
		Voice:   cfg.Speech.Voice,
	}, apiClient)
	switch {
	case err == nil:
		deps.Synthesizer = synthesizer
	case errors.Is(err, speech.ErrAPIKeyRequired):
		log.Warn("speech_disabled", "detail", "OPENAI_API_KEY is not set")
	default:
		fatal(log, "speech_init_failed", err)
	}

	var archive service.ArchiveService
	if cfg.ArchiveEnabled() {
		var db *sql.DB
		archive, db = newArchive(ctx, cfg, log)
		defer db.Close()
		deps.Archive = archive
	} else {
		log.Info("archive_disabled", "detail", "DB_HOST and MINIO_ENDPOINT are required to archive uploads")
	}

	fiberCfg := fiber.Config{ErrorHandler: handlers.ErrorHandler(log)}
	if cfg.Upload.MaxBytes > 0 {
		// Leave room for multipart framing around the file itself.
		fiberCfg.BodyLimit = int(cfg.Upload.MaxBytes) + 1<<20
	}
	app := fiber.New(fiberCfg)

	app.Use(otelfiber.Middleware())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())
	app.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, handlers.Deps{
		Text:    service.NewTextService(deps),
		Archive: archive,
		Logger:  log,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			log.Error("server_shutdown_failed", "error_message", err.Error())
		}
	}()

	addr := ":" + cfg.Port
	log.Info("server_starting", "addr", addr, "app_host", cfg.AppHost)
	if err := app.Listen(addr); err != nil {
		fatal(log, "server_failed", err)
	}
	log.Info("server_stopped")
}

// newArchive connects PostgreSQL and the object store, runs migrations and
// returns the archive service with its database handle.
func newArchive(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) (service.ArchiveService, *sql.DB) {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		fatal(log, "db_connect_failed", err)
	}

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		_ = db.Close()
		fatal(log, "db_migration_failed", err)
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		_ = db.Close()
		fatal(log, "storage_init_failed", err)
	}

	repo := postgres.NewUploadPostgres(db)
	log.Info("archive_enabled", "bucket", cfg.MinIO.Bucket, "db_host", cfg.Database.Host)
	return service.NewArchiveService(objStore, repo, db), db
}

func fatal(log *slog.Logger, event string, err error) {
	log.Error(event, "error_message", err.Error())
	os.Exit(1)
}
