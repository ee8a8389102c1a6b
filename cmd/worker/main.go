// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mcardoso/brecho-be/internal/adapters/db"
	"github.com/mcardoso/brecho-be/internal/core/services"
	"github.com/mcardoso/brecho-be/internal/pkg/config"
	"github.com/mcardoso/brecho-be/internal/pkg/logger"
	"github.com/mcardoso/brecho-be/internal/workers"
)

func main() {
	slogger := logger.SetupLogger("info", "json")

	cfg, err := config.Load(slogger.Logger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr))

	ctx := context.Background()
	database, err := initDatabase(ctx, cfg, slogger.Logger)
	if err != nil {
		slogger.Error("failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	// Repositories and services shared by the processors
	itemRepo := db.NewItemRepository(database, slogger.Logger)
	clientRepo := db.NewClientRepository(database, slogger.Logger)
	consignmentRepo := db.NewConsignmentRepository(database, slogger.Logger)
	itemService := services.NewItemService(itemRepo, database.Pool(), slogger.Logger)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:     cfg.Asynq.Concurrency,
			Queues:          cfg.Asynq.Queues,
			StrictPriority:  cfg.Asynq.StrictPriority,
			ErrorHandler:    asynq.ErrorHandlerFunc(handleError),
			RetryDelayFunc:  exponentialBackoff,
			ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
			HealthCheckFunc: healthCheck,
			Logger:          newAsynqLogger(slogger.Logger),
		},
	)

	mux := asynq.NewServeMux()

	// Catalog spreadsheet imports
	excelProcessor := workers.NewExcelProcessor(itemService, database, slogger.Logger)
	mux.HandleFunc(workers.TypeExcelImport, excelProcessor.ProcessExcel)

	// Overdue consignment reminders
	overdueProcessor := workers.NewOverdueProcessor(consignmentRepo, clientRepo, asynqClient, slogger.Logger)
	mux.HandleFunc(workers.TypeOverdueCheck, overdueProcessor.CheckOverdue)

	// Sales analytics refresh
	analyticsProcessor := workers.NewAnalyticsProcessor(database, slogger.Logger)
	mux.HandleFunc(workers.TypeAnalyticsRefresh, analyticsProcessor.RefreshAnalytics)

	// Email notifications
	notificationProcessor := workers.NewNotificationProcessor(cfg, slogger.Logger)
	mux.HandleFunc(workers.TypeEmailNotify, notificationProcessor.SendEmail)

	// Housekeeping
	cleanupProcessor := workers.NewCleanupProcessor(database, cfg, slogger.Logger)
	mux.HandleFunc(workers.TypeCleanupOldData, cleanupProcessor.CleanupOldData)
	mux.HandleFunc(workers.TypeCleanupTempFiles, cleanupProcessor.CleanupTempFiles)

	scheduler := newScheduler(redisOpt, slogger.Logger)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(mux); err != nil {
			slogger.Error("failed to run worker server", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	go func() {
		if err := scheduler.Run(); err != nil {
			slogger.Error("failed to run scheduler", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues))

	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	scheduler.Shutdown()
	srv.Shutdown()
	slogger.Info("worker shutdown complete")
}

// newScheduler registers the periodic tasks: daily overdue scan, nightly
// analytics refresh and housekeeping.
func newScheduler(redisOpt asynq.RedisClientOpt, slogger *slog.Logger) *asynq.Scheduler {
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Logger: newAsynqLogger(slogger),
	})

	entries := []struct {
		cronspec string
		task     *asynq.Task
	}{
		{"0 9 * * *", asynq.NewTask(workers.TypeOverdueCheck, nil)},
		{"0 3 * * *", asynq.NewTask(workers.TypeAnalyticsRefresh, nil)},
		{"30 3 * * *", asynq.NewTask(workers.TypeCleanupOldData, nil)},
		{"0 */6 * * *", asynq.NewTask(workers.TypeCleanupTempFiles, nil)},
	}

	for _, e := range entries {
		if _, err := scheduler.Register(e.cronspec, e.task, asynq.Queue("low")); err != nil {
			slogger.Error("failed to register scheduled task",
				slog.String("task", e.task.Type()),
				slog.String("error", err.Error()))
		}
	}

	return scheduler
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*db.Database, error) {
	dbConfig := &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     10, // Fewer connections for worker
		MinConnections:     2,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		StatementCacheMode: cfg.Database.StatementCacheMode,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}

	return db.NewDatabase(ctx, dbConfig, logger)
}

func handleError(ctx context.Context, task *asynq.Task, err error) {
	slog.ErrorContext(ctx, "task processing failed",
		slog.String("type", task.Type()),
		slog.String("payload", string(task.Payload())),
		slog.String("error", err.Error()))
}

func exponentialBackoff(n int, e error, t *asynq.Task) time.Duration {
	baseDelay := time.Second
	maxDelay := 10 * time.Minute
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func healthCheck(err error) {
	if err != nil {
		slog.Error("worker health check failed", slog.String("error", err.Error()))
	}
}

// asynqLogger adapts slog for Asynq
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) *asynqLogger {
	return &asynqLogger{
		logger: logger.With(slog.String("component", "asynq")),
	}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
