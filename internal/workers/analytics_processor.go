// internal/workers/analytics_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/mcardoso/brecho-be/internal/core/ports"
)

// AnalyticsProcessor refreshes the precomputed sales reporting view.
type AnalyticsProcessor struct {
	db     ports.Database
	logger *slog.Logger
}

// NewAnalyticsProcessor creates a new analytics processor
func NewAnalyticsProcessor(database ports.Database, logger *slog.Logger) *AnalyticsProcessor {
	return &AnalyticsProcessor{
		db:     database,
		logger: logger.With(slog.String("processor", "analytics")),
	}
}

// RefreshAnalytics refreshes the daily sales materialized view.
func (p *AnalyticsProcessor) RefreshAnalytics(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "refreshing sales analytics")

	query := `REFRESH MATERIALIZED VIEW CONCURRENTLY vendas_resumo_diario`

	if _, err := p.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to refresh materialized view: %w", err)
	}

	p.logger.InfoContext(ctx, "sales analytics refreshed")
	return nil
}
