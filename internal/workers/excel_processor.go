// internal/workers/excel_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/mcardoso/brecho-be/internal/core/domain"
	"github.com/mcardoso/brecho-be/internal/core/ports"
)

// ExcelProcessor imports catalog spreadsheets queued by the API.
// Expected columns: nome, descricao, tipo, tamanho, cor, preco, quantidade.
type ExcelProcessor struct {
	items  ports.ItemService
	db     ports.Database
	logger *slog.Logger
}

// NewExcelProcessor creates a new Excel processor
func NewExcelProcessor(items ports.ItemService, database ports.Database, logger *slog.Logger) *ExcelProcessor {
	return &ExcelProcessor{
		items:  items,
		db:     database,
		logger: logger.With(slog.String("processor", "excel")),
	}
}

// ProcessExcel processes a spreadsheet and upserts the parsed items.
func (p *ExcelProcessor) ProcessExcel(ctx context.Context, t *asynq.Task) error {
	var payload ExcelJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	p.logger.InfoContext(ctx, "processing Excel file",
		slog.String("job_id", payload.JobID),
		slog.String("file_path", payload.FilePath))

	p.markJobRunning(ctx, payload.JobID)

	items, skipped, err := p.parseFile(payload.FilePath)
	if err != nil {
		p.markJobFailed(ctx, payload.JobID, err)
		return fmt.Errorf("failed to parse Excel file: %w", err)
	}

	if len(items) > 0 {
		if err := p.items.BulkUpsert(ctx, items); err != nil {
			p.markJobFailed(ctx, payload.JobID, err)
			return fmt.Errorf("failed to save items: %w", err)
		}
	}

	p.markJobCompleted(ctx, payload.JobID)

	// Temp uploads are only kept until the import finishes
	os.Remove(payload.FilePath)

	p.logger.InfoContext(ctx, "Excel processing completed",
		slog.String("job_id", payload.JobID),
		slog.Int("items_imported", len(items)),
		slog.Int("rows_skipped", skipped))

	return nil
}

func (p *ExcelProcessor) parseFile(path string) ([]domain.Item, int, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, 0, err
	}

	if len(file.Sheets) == 0 {
		return nil, 0, fmt.Errorf("spreadsheet has no sheets")
	}

	var items []domain.Item
	skipped := 0
	rowIdx := 0

	sheet := file.Sheets[0]
	err = sheet.ForEachRow(func(r *xlsx.Row) error {
		// Skip header row
		if rowIdx == 0 {
			rowIdx++
			return nil
		}
		rowIdx++

		item := p.parseRow(r)
		if item == nil {
			skipped++
			return nil
		}
		if err := item.Validate(); err != nil {
			skipped++
			return nil
		}
		items = append(items, *item)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return items, skipped, nil
}

func (p *ExcelProcessor) parseRow(r *xlsx.Row) *domain.Item {
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

	preco, err := decimal.NewFromString(strings.TrimPrefix(get(5), "R$"))
	if err != nil {
		preco = decimal.Zero
	}

	quantidade, err := strconv.Atoi(get(6))
	if err != nil || quantidade < 1 {
		quantidade = 1
	}

	return &domain.Item{
		Nome:       nome,
		Descricao:  get(1),
		Tipo:       strings.ToLower(get(2)),
		Tamanho:    strings.ToUpper(get(3)),
		Cor:        strings.ToLower(get(4)),
		Preco:      preco,
		Quantidade: quantidade,
	}
}

func (p *ExcelProcessor) markJobRunning(ctx context.Context, jobID string) {
	_, err := p.db.Exec(ctx, `
		UPDATE async_jobs SET status = 'running', started_at = NOW()
		WHERE job_id = $1`, jobID)
	if err != nil {
		p.logger.WarnContext(ctx, "failed to mark job running",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
	}
}

func (p *ExcelProcessor) markJobCompleted(ctx context.Context, jobID string) {
	_, err := p.db.Exec(ctx, `
		UPDATE async_jobs SET status = 'completed', completed_at = NOW()
		WHERE job_id = $1`, jobID)
	if err != nil {
		p.logger.WarnContext(ctx, "failed to mark job completed",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
	}
}

func (p *ExcelProcessor) markJobFailed(ctx context.Context, jobID string, cause error) {
	_, err := p.db.Exec(ctx, `
		UPDATE async_jobs SET status = 'failed', error = $2, completed_at = NOW()
		WHERE job_id = $1`, jobID, cause.Error())
	if err != nil {
		p.logger.WarnContext(ctx, "failed to mark job failed",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
	}
}
