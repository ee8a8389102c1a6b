// test/helpers/test_helpers.go
package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mcardoso/brecho-be/internal/adapters/db"
	"github.com/mcardoso/brecho-be/internal/core/domain"
	"github.com/mcardoso/brecho-be/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupTestDB creates a PostgreSQL container for integration tests
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_brecho",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_brecho",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		StatementCacheMode: "describe",
		EnableQueryLogging: testing.Verbose(),
	}

	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")

	ctx := context.Background()
	migrationConfig := &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
		SourcePath: "../../migrations",
		TableName:  "schema_migrations",
		SchemaName: "public",
	}

	err = db.RunMigrationsWithRetry(ctx, migrationConfig, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// SetupMockDB creates a mock database for unit testing
func SetupMockDB(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock DB")

	t.Cleanup(func() {
		db.Close()
	})

	return mock, db
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-api",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:               "localhost",
			Port:               "5432",
			User:               "test",
			Password:           "test",
			Name:               "test_brecho",
			SSLMode:            "disable",
			MaxConnections:     10,
			MinConnections:     2,
			EnableQueryLogging: true,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      time.Hour,
			PoolSize: 10,
		},
		FileProcessing: config.FileProcessingConfig{
			ExcelMaxSizeMB:    100,
			ImageMaxSizeMB:    10,
			ProcessingTimeout: 5 * time.Minute,
			TempDir:           "/tmp",
		},
		Security: config.SecurityConfig{
			JWTSecret:         "test-secret",
			JWTExpiration:     24 * time.Hour,
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
			SecureHeaders:     false,
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// CreateTestItem creates a test catalog item
func CreateTestItem(overrides ...func(*domain.Item)) *domain.Item {
	item := &domain.Item{
		ID:         1,
		Nome:       "Vestido Floral Midi",
		Descricao:  "Vestido midi estampado, tecido leve, pouco uso",
		Tipo:       "vestido",
		Tamanho:    "M",
		Cor:        "floral",
		Preco:      decimal.NewFromFloat(89.90),
		Quantidade: 3,
		CriadoEm:   time.Now(),
	}

	for _, override := range overrides {
		override(item)
	}

	return item
}

// CreateTestItems creates multiple test items
func CreateTestItems(count int) []domain.Item {
	tipos := []string{"vestido", "blusa", "calça", "saia", "casaco"}
	tamanhos := []string{"P", "M", "G", "GG"}

	items := make([]domain.Item, count)
	for i := 0; i < count; i++ {
		items[i] = *CreateTestItem(func(item *domain.Item) {
			item.ID = int64(i + 1)
			item.Nome = fmt.Sprintf("Peça de Teste %d", i+1)
			item.Tipo = tipos[i%len(tipos)]
			item.Tamanho = tamanhos[i%len(tamanhos)]
			item.Preco = decimal.NewFromFloat(float64(20 + i*10))
		})
	}

	return items
}

// CreateTestClient creates a test client
func CreateTestClient(overrides ...func(*domain.Client)) *domain.Client {
	client := &domain.Client{
		ID:       1,
		Nome:     "Maria da Silva",
		Email:    "maria@example.com",
		Telefone: "11 91234-5678",
		CriadoEm: time.Now(),
	}

	for _, override := range overrides {
		override(client)
	}

	return client
}

// CreateTestConsignment creates an active test consignment with two lines
func CreateTestConsignment(overrides ...func(*domain.Consignment)) *domain.Consignment {
	preco1 := decimal.NewFromFloat(89.90)
	preco2 := decimal.NewFromFloat(45.00)

	c := &domain.Consignment{
		ID:            1,
		ClienteID:     1,
		ClienteNome:   "Maria da Silva",
		Data:          time.Now(),
		DataDevolucao: time.Now().AddDate(0, 0, 7),
		Itens: []domain.ConsignmentItem{
			{ID: 1, CondicionalID: 1, RoupaID: 10, NomeItem: "Vestido Floral Midi",
				Quantidade: 2, ValorEstimado: &preco1},
			{ID: 2, CondicionalID: 1, RoupaID: 11, NomeItem: "Blusa de Seda",
				Quantidade: 1, ValorEstimado: &preco2},
		},
	}

	for _, override := range overrides {
		override(c)
	}

	return c
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}

// TruncateAllTables truncates all tables in the test database
func TruncateAllTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	tables := []string{
		"async_jobs",
		"vendas_itens",
		"vendas",
		"condicionais_itens",
		"condicionais",
		"imagens",
		"roupas",
		"clientes",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "Failed to truncate table: %s", table)
	}
}

// SeedTestItems seeds the database with catalog items
func SeedTestItems(t *testing.T, db *pgxpool.Pool, items []domain.Item) {
	t.Helper()

	ctx := context.Background()

	for _, item := range items {
		query := `
			INSERT INTO roupas (
				nome, descricao, tipo, tamanho, cor, preco, quantidade,
				criado_em, atualizado_em
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`

		_, err := db.Exec(ctx, query,
			item.Nome, item.Descricao, item.Tipo, item.Tamanho, item.Cor,
			item.Preco, item.Quantidade, item.CriadoEm, item.CriadoEm,
		)
		require.NoError(t, err, "Failed to seed test data")
	}
}

// CreateTempFile creates a temporary file for testing
func CreateTempFile(t *testing.T, content []byte, extension string) string {
	t.Helper()

	file, err := os.CreateTemp("", fmt.Sprintf("test-*%s", extension))
	require.NoError(t, err, "Failed to create temp file")

	_, err = file.Write(content)
	require.NoError(t, err, "Failed to write to temp file")

	file.Close()

	t.Cleanup(func() {
		os.Remove(file.Name())
	})

	return file.Name()
}
