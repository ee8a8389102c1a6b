package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"
)

// CatalogRow is one spreadsheet line of the clothing catalog.
type CatalogRow struct {
	Nome       string
	Descricao  string
	Tipo       string
	Tamanho    string
	Cor        string
	Preco      decimal.Decimal
	Quantidade int
}

// ClientRow is one spreadsheet line of the client list.
type ClientRow struct {
	Nome     string
	Email    string
	CPF      string
	Telefone string
	Endereco string
}

// TipoNormalizer maps free-text garment descriptions to the canonical
// tipo values used by the catalog filters.
type TipoNormalizer struct {
	aliases map[string][]string
}

func NewTipoNormalizer() *TipoNormalizer {
	return &TipoNormalizer{
		aliases: map[string][]string{
			"vestido":   {"vestido", "vestidinho", "dress"},
			"blusa":     {"blusa", "blusinha", "camisa", "top", "cropped", "regata"},
			"camiseta":  {"camiseta", "t-shirt", "tshirt", "baby look"},
			"calça":     {"calça", "calca", "jeans", "legging", "pantalona"},
			"shorts":    {"shorts", "short", "bermuda"},
			"saia":      {"saia", "sainha"},
			"casaco":    {"casaco", "jaqueta", "blazer", "cardigan", "moletom", "sobretudo"},
			"macacão":   {"macacão", "macacao", "macaquinho", "jardineira"},
			"acessório": {"acessório", "acessorio", "bolsa", "cinto", "lenço", "bijuteria", "óculos"},
			"calçado":   {"calçado", "sapato", "sandália", "sandalia", "tênis", "tenis", "bota", "sapatilha"},
		},
	}
}

// Normalize returns the canonical tipo for a free-text value, or the
// lowercased input when no alias matches.
func (n *TipoNormalizer) Normalize(raw string) string {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return "outro"
	}
	for canonical, words := range n.aliases {
		for _, w := range words {
			if strings.Contains(text, w) {
				return canonical
			}
		}
	}
	return text
}

func normalizeTamanho(raw string) string {
	t := strings.ToUpper(strings.TrimSpace(raw))
	switch t {
	case "PP", "P", "M", "G", "GG", "XG":
		return t
	}
	// Numeric sizes (36, 38...) pass through
	if _, err := strconv.Atoi(t); err == nil {
		return t
	}
	switch strings.ToLower(t) {
	case "pequeno", "small", "s":
		return "P"
	case "médio", "medio", "medium":
		return "M"
	case "grande", "large", "l":
		return "G"
	}
	return "único"
}

// CatalogSeeder loads spreadsheet data into the catalog tables.
type CatalogSeeder struct {
	db         *pgxpool.Pool
	normalizer *TipoNormalizer
	logger     *slog.Logger
}

func NewCatalogSeeder(db *pgxpool.Pool, logger *slog.Logger) *CatalogSeeder {
	return &CatalogSeeder{
		db:         db,
		normalizer: NewTipoNormalizer(),
		logger:     logger,
	}
}

// LoadCatalog parses the catalog spreadsheet. Expected columns:
// nome, descricao, tipo, tamanho, cor, preco, quantidade.
func (s *CatalogSeeder) LoadCatalog(path string) ([]CatalogRow, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in catalog file")
	}

	var rows []CatalogRow
	rowIdx := 0

	err = file.Sheets[0].ForEachRow(func(r *xlsx.Row) error {
		// Skip header
		if rowIdx == 0 {
			rowIdx++
			return nil
		}
		rowIdx++

		get := func(i int) string {
			c := r.GetCell(i)
			if c == nil {
				return ""
			}
			if v, err := c.FormattedValue(); err == nil {
				return strings.TrimSpace(v)
			}
			return strings.TrimSpace(c.String())
		}

		nome := get(0)
		if nome == "" {
			return nil
		}

		preco, err := decimal.NewFromString(strings.TrimPrefix(get(5), "R$"))
		if err != nil {
			s.logger.Warn("invalid price, defaulting to zero",
				slog.String("nome", nome),
				slog.String("preco", get(5)))
			preco = decimal.Zero
		}

		quantidade, err := strconv.Atoi(get(6))
		if err != nil || quantidade < 1 {
			quantidade = 1
		}

		rows = append(rows, CatalogRow{
			Nome:       nome,
			Descricao:  get(1),
			Tipo:       s.normalizer.Normalize(get(2)),
			Tamanho:    normalizeTamanho(get(3)),
			Cor:        strings.ToLower(get(4)),
			Preco:      preco,
			Quantidade: quantidade,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	s.logger.Info("loaded catalog spreadsheet",
		slog.String("file", path),
		slog.Int("rows", len(rows)))
	return rows, nil
}

// LoadClients parses the client spreadsheet. Expected columns:
// nome, email, cpf, telefone, endereco.
func (s *CatalogSeeder) LoadClients(path string) ([]ClientRow, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open client file: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in client file")
	}

	var rows []ClientRow
	rowIdx := 0

	err = file.Sheets[0].ForEachRow(func(r *xlsx.Row) error {
		if rowIdx == 0 {
			rowIdx++
			return nil
		}
		rowIdx++

		get := func(i int) string {
			c := r.GetCell(i)
			if c == nil {
				return ""
			}
			return strings.TrimSpace(c.String())
		}

		nome := get(0)
		if nome == "" {
			return nil
		}

		cpf := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, get(2))

		rows = append(rows, ClientRow{
			Nome:     nome,
			Email:    strings.ToLower(get(1)),
			CPF:      cpf,
			Telefone: get(3),
			Endereco: get(4),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	s.logger.Info("loaded client spreadsheet",
		slog.String("file", path),
		slog.Int("rows", len(rows)))
	return rows, nil
}

// SaveCatalog persists catalog rows in one transaction.
func (s *CatalogSeeder) SaveCatalog(ctx context.Context, rows []CatalogRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`
			INSERT INTO roupas (nome, descricao, tipo, tamanho, cor, preco, quantidade, criado_em, atualizado_em)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
			ON CONFLICT DO NOTHING`,
			row.Nome, row.Descricao, row.Tipo, row.Tamanho, row.Cor, row.Preco, row.Quantidade,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range rows {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("saved catalog items", slog.Int("count", len(rows)))
	return nil
}

// SaveClients persists client rows in one transaction.
func (s *CatalogSeeder) SaveClients(ctx context.Context, rows []ClientRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`
			INSERT INTO clientes (nome, email, cpf, telefone, endereco, criado_em)
			VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, NOW())
			ON CONFLICT DO NOTHING`,
			row.Nome, row.Email, row.CPF, row.Telefone, row.Endereco,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range rows {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert client: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("saved clients", slog.Int("count", len(rows)))
	return nil
}

// SeederState tracks which files have already been imported.
type SeederState struct {
	ProcessedFiles []string  `json:"processed_files"`
	LastUpdate     time.Time `json:"last_update"`
}

func (s *SeederState) processed(file string) bool {
	for _, f := range s.ProcessedFiles {
		if f == file {
			return true
		}
	}
	return false
}

func main() {
	var (
		catalogFile = flag.String("catalogo", "./catalogo.xlsx", "Excel file with catalog items")
		clientFile  = flag.String("clientes", "", "Optional Excel file with clients")
		stateFile   = flag.String("state", "./.seed_state.json", "State file for tracking progress")
		logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun      = flag.Bool("dry-run", false, "Preview changes without modifying database")
		force       = flag.Bool("force", false, "Reprocess files already recorded in the state file")
	)
	flag.Parse()

	var slogLevel slog.Level
	switch *logLevel {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(logger)

	dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("DB_USER", "brecho"),
		getEnv("DB_PASSWORD", "brecho_dev_2025"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "brecho"),
		getEnv("DB_SSL_MODE", "disable"),
	)

	ctx := context.Background()

	var db *pgxpool.Pool
	var err error

	if !*dryRun {
		db, err = pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer db.Close()
	}

	seeder := NewCatalogSeeder(db, logger)

	var state SeederState
	if !*force {
		if stateData, err := os.ReadFile(*stateFile); err == nil {
			json.Unmarshal(stateData, &state)
		}
	}

	totalItems := 0
	totalClients := 0

	// Catalog
	catalogPath, _ := filepath.Abs(*catalogFile)
	if *force || !state.processed(catalogPath) {
		rows, err := seeder.LoadCatalog(*catalogFile)
		if err != nil {
			logger.Error("failed to load catalog", slog.String("error", err.Error()))
			os.Exit(1)
		}

		if !*dryRun {
			if err := seeder.SaveCatalog(ctx, rows); err != nil {
				logger.Error("failed to save catalog", slog.String("error", err.Error()))
				os.Exit(1)
			}
			state.ProcessedFiles = append(state.ProcessedFiles, catalogPath)
		}
		totalItems = len(rows)
	} else {
		logger.Info("catalog file already processed, skipping",
			slog.String("file", catalogPath))
	}

	// Clients (optional)
	if *clientFile != "" {
		clientPath, _ := filepath.Abs(*clientFile)
		if *force || !state.processed(clientPath) {
			rows, err := seeder.LoadClients(*clientFile)
			if err != nil {
				logger.Error("failed to load clients", slog.String("error", err.Error()))
				os.Exit(1)
			}

			if !*dryRun {
				if err := seeder.SaveClients(ctx, rows); err != nil {
					logger.Error("failed to save clients", slog.String("error", err.Error()))
					os.Exit(1)
				}
				state.ProcessedFiles = append(state.ProcessedFiles, clientPath)
			}
			totalClients = len(rows)
		} else {
			logger.Info("client file already processed, skipping",
				slog.String("file", clientPath))
		}
	}

	if !*dryRun {
		state.LastUpdate = time.Now()
		if stateData, err := json.MarshalIndent(state, "", "  "); err == nil {
			os.WriteFile(*stateFile, stateData, 0644)
		}
	}

	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("SEEDING SUMMARY")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Catalog items: %d\n", totalItems)
	fmt.Printf("Clients:       %d\n", totalClients)
	if *dryRun {
		fmt.Println("\n[DRY RUN] No changes were made to the database")
	}

	logger.Info("seed operation completed",
		slog.Int("items", totalItems),
		slog.Int("clients", totalClients))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
