// cmd/api/main.go
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

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/mcardoso/brecho-be/internal/adapters/db"
	redis_a "github.com/mcardoso/brecho-be/internal/adapters/redis_adapter"
	"github.com/mcardoso/brecho-be/internal/adapters/storage"
	"github.com/mcardoso/brecho-be/internal/core/services"
	"github.com/mcardoso/brecho-be/internal/handlers"
	"github.com/mcardoso/brecho-be/internal/handlers/middleware"
	"github.com/mcardoso/brecho-be/internal/pkg/config"
	"github.com/mcardoso/brecho-be/internal/pkg/logger"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting brecho management system",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	slogger.Info("loading configuration")
	cfg, err := config.Load(slogger.Logger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx := context.Background()

	deps, err := initializeDependencies(ctx, cfg, slogger.Logger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	// Run database migrations if enabled
	if cfg.App.Environment != "production" {
		if err := runMigrations(ctx, cfg, slogger.Logger); err != nil {
			slogger.Error("failed to run migrations", slog.String("error", err.Error()))
			// Don't exit in development, just warn
		}
	}

	server := setupHTTPServer(cfg, deps, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
			slog.Bool("tls", cfg.Server.TLSEnabled),
		)

		if cfg.Server.TLSEnabled {
			serverErrors <- server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		if deps.asynqClient != nil {
			if err := deps.asynqClient.Close(); err != nil {
				slogger.Error("failed to close Asynq client", slog.String("error", err.Error()))
			}
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database       *db.Database
	redisClient    *redis.Client
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector

	itemHandler        *handlers.ItemHandler
	clientHandler      *handlers.ClientHandler
	consignmentHandler *handlers.ConsignmentHandler
	saleHandler        *handlers.SaleHandler
	imageHandler       *handlers.ImageHandler
	importHandler      *handlers.ImportHandler
	exportHandler      *handlers.ExportHandler
	dashboardHandler   *handlers.DashboardHandler
	healthHandler      *handlers.HealthHandler
}

func (d *dependencies) cleanup() {
	if d.database != nil {
		d.database.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	logger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		StatementCacheMode: cfg.Database.StatementCacheMode,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	logger.Info("connecting to Redis",
		slog.String("host", cfg.Redis.Host),
		slog.String("port", cfg.Redis.Port),
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:            fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		ConnMaxLifetime: cfg.Redis.MaxConnAge,
		PoolTimeout:     cfg.Redis.PoolTimeout,
		ConnMaxIdleTime: cfg.Redis.IdleTimeout,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	deps.redisClient = redisClient

	redisCache := redis_a.NewCache(redisClient, cfg.Redis.TTL, logger)

	logger.Info("initializing Asynq client")

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	asynqClient := asynq.NewClient(asynqRedisOpt)
	deps.asynqClient = asynqClient

	asynqInspector := asynq.NewInspector(asynqRedisOpt)
	deps.asynqInspector = asynqInspector

	// Object storage for item images
	var store storage.StorageClient
	s3Store, err := storage.NewS3Storage(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.S3Bucket,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.S3Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, logger)
	if err != nil {
		if cfg.App.Environment == "production" {
			return nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		logger.Warn("object storage unavailable, using local filesystem",
			slog.String("error", err.Error()))
		store = storage.NewLocalStorage(cfg.FileProcessing.TempDir, logger)
	} else {
		store = s3Store
	}

	// Repositories
	itemRepo := db.NewItemRepository(database, logger)
	clientRepo := db.NewClientRepository(database, logger)
	consignmentRepo := db.NewConsignmentRepository(database, logger)
	saleRepo := db.NewSaleRepository(database, logger)

	// Services
	itemService := services.NewItemService(itemRepo, database.Pool(), logger)
	clientService := services.NewClientService(clientRepo, database.Pool(), logger)
	consignmentService := services.NewConsignmentService(
		consignmentRepo, itemRepo, clientRepo, redisCache, database.Pool(), logger)
	saleService := services.NewSaleService(saleRepo, itemRepo, redisCache, logger)

	// Handlers
	deps.itemHandler = handlers.NewItemHandler(itemService, logger)
	deps.clientHandler = handlers.NewClientHandler(clientService, logger)
	deps.consignmentHandler = handlers.NewConsignmentHandler(consignmentService, logger)
	deps.saleHandler = handlers.NewSaleHandler(saleService, logger)
	deps.imageHandler = handlers.NewImageHandler(itemService, store, logger, cfg.FileProcessing.ImageMaxSizeMB)
	deps.exportHandler = handlers.NewExportHandler(database, redisCache, logger)
	deps.dashboardHandler = handlers.NewDashboardHandler(database, redisCache, logger)
	deps.healthHandler = handlers.NewHealthHandler(database, redisClient, asynqInspector, cfg, logger)

	maxExcelSize := int64(cfg.FileProcessing.ExcelMaxSizeMB) * 1024 * 1024
	deps.importHandler = handlers.NewImportHandler(
		asynqClient, database, logger, maxExcelSize, cfg.FileProcessing.TempDir)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, slogger *logger.Logger) *http.Server {
	mux := http.NewServeMux()

	var handler http.Handler = mux

	// Apply middleware in reverse order (innermost first)
	if cfg.App.Environment != "test" {
		handler = middleware.RequestID(handler)
		handler = middleware.Logger(slogger)(handler)
		handler = middleware.Recovery(slogger.Logger)(handler)
	}

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}

	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}

	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}

	registerRoutes(mux, deps, cfg)

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(slogger.Handler(), slog.LevelError),
	}
}

func registerRoutes(mux *http.ServeMux, deps *dependencies, cfg *config.Config) {
	apiV1 := "/api/v1"

	if cfg.Server.EnableHealthCheck {
		mux.HandleFunc("GET /health", deps.healthHandler.Health)
		mux.HandleFunc("GET /ready", deps.healthHandler.Readiness)
		mux.HandleFunc("GET "+apiV1+"/health", deps.healthHandler.Health)
	}

	// Catalog
	mux.HandleFunc("GET "+apiV1+"/roupas", deps.itemHandler.ListItems)
	mux.HandleFunc("GET "+apiV1+"/roupas/{id}", deps.itemHandler.GetItem)
	mux.HandleFunc("POST "+apiV1+"/roupas", deps.itemHandler.CreateItem)
	mux.HandleFunc("POST "+apiV1+"/roupas/lote", deps.itemHandler.CreateItems)
	mux.HandleFunc("PUT "+apiV1+"/roupas/{id}", deps.itemHandler.UpdateItem)
	mux.HandleFunc("DELETE "+apiV1+"/roupas/{id}", deps.itemHandler.DeleteItem)

	// Item images
	mux.HandleFunc("POST "+apiV1+"/roupas/{id}/imagens", deps.imageHandler.UploadImage)
	mux.HandleFunc("DELETE "+apiV1+"/roupas/{id}/imagens/{imageId}", deps.imageHandler.DeleteImage)

	// Clients
	mux.HandleFunc("GET "+apiV1+"/clientes", deps.clientHandler.ListClients)
	mux.HandleFunc("GET "+apiV1+"/clientes/{id}", deps.clientHandler.GetClient)
	mux.HandleFunc("POST "+apiV1+"/clientes", deps.clientHandler.CreateClient)
	mux.HandleFunc("PUT "+apiV1+"/clientes/{id}", deps.clientHandler.UpdateClient)
	mux.HandleFunc("DELETE "+apiV1+"/clientes/{id}", deps.clientHandler.DeleteClient)

	// Consignments
	mux.HandleFunc("GET "+apiV1+"/condicionais", deps.consignmentHandler.ListConsignments)
	mux.HandleFunc("GET "+apiV1+"/condicionais/{id}", deps.consignmentHandler.GetConsignment)
	mux.HandleFunc("POST "+apiV1+"/condicionais", deps.consignmentHandler.CreateConsignment)
	mux.HandleFunc("POST "+apiV1+"/condicionais/{id}/converter-venda", deps.consignmentHandler.ConvertToSale)
	mux.HandleFunc("POST "+apiV1+"/condicionais/{id}/finalizar", deps.consignmentHandler.ReturnAll)
	mux.HandleFunc("DELETE "+apiV1+"/condicionais/{id}", deps.consignmentHandler.DeleteConsignment)

	// Sales
	mux.HandleFunc("GET "+apiV1+"/vendas/historico", deps.saleHandler.SalesHistory)
	mux.HandleFunc("GET "+apiV1+"/vendas/{id}", deps.saleHandler.GetSale)
	mux.HandleFunc("POST "+apiV1+"/vendas", deps.saleHandler.RecordSale)

	// Imports
	mux.HandleFunc("POST "+apiV1+"/import/excel", deps.importHandler.ImportExcel)
	mux.HandleFunc("GET "+apiV1+"/import/status/{jobId}", deps.importHandler.ImportStatus)

	// Exports
	mux.HandleFunc("GET "+apiV1+"/export/excel", deps.exportHandler.ExportExcel)
	mux.HandleFunc("GET "+apiV1+"/export/vendas", deps.exportHandler.ExportSalesExcel)
	mux.HandleFunc("GET "+apiV1+"/export/json", deps.exportHandler.ExportJSON)

	// Dashboard
	mux.HandleFunc("GET "+apiV1+"/dashboard", deps.dashboardHandler.GetDashboard)

	// pprof endpoints (development only)
	if cfg.Server.EnablePprof && cfg.IsDevelopment() {
		mux.HandleFunc("GET /debug/pprof/", http.HandlerFunc(http.DefaultServeMux.ServeHTTP))
	}
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}

	return db.RunMigrationsWithRetry(ctx, migrationConfig, logger, 3)
}
