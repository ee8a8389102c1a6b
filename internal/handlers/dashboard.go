package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	redis_a "github.com/mcardoso/brecho-be/internal/adapters/redis_adapter"
	"github.com/mcardoso/brecho-be/internal/core/ports"
)

// DashboardHandler serves the aggregated storefront dashboard
type DashboardHandler struct {
	db     ports.Database
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(database ports.Database, cache ports.CacheRepository, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		db:     database,
		cache:  cache,
		logger: logger.With(slog.String("handler", "dashboard")),
	}
}

// GetDashboard handles GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cacheKey := redis_a.BuildKey(redis_a.PrefixDashboard, "main")
	var dashboard DashboardData

	err := h.cache.GetOrSet(ctx, cacheKey, &dashboard, func() (interface{}, error) {
		return h.loadDashboardData(ctx)
	}, 5*time.Minute)

	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load dashboard",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, dashboard)
}

func (h *DashboardHandler) loadDashboardData(ctx context.Context) (*DashboardData, error) {
	dashboard := &DashboardData{
		Timestamp: time.Now(),
	}

	stockQuery := `
		SELECT
			COUNT(*),
			COALESCE(SUM(quantidade), 0),
			COALESCE(SUM(preco * quantidade), 0)
		FROM roupas
		WHERE deleted_at IS NULL
	`
	err := h.db.QueryRow(ctx, stockQuery).Scan(
		&dashboard.Estoque.TotalItens,
		&dashboard.Estoque.TotalPecas,
		&dashboard.Estoque.ValorEstoque,
	)
	if err != nil {
		return nil, err
	}

	consignmentQuery := `
		SELECT
			COUNT(*) FILTER (WHERE devolvido = FALSE),
			COUNT(*) FILTER (WHERE devolvido = FALSE AND data_devolucao < NOW()),
			COALESCE(SUM(ci.quantidade) FILTER (WHERE c.devolvido = FALSE), 0)
		FROM condicionais c
		LEFT JOIN condicionais_itens ci ON ci.condicional_id = c.id
	`
	err = h.db.QueryRow(ctx, consignmentQuery).Scan(
		&dashboard.Condicionais.Ativas,
		&dashboard.Condicionais.Atrasadas,
		&dashboard.Condicionais.PecasEmprestadas,
	)
	if err != nil {
		return nil, err
	}

	salesQuery := `
		SELECT
			COUNT(*) FILTER (WHERE data >= date_trunc('day', NOW())),
			COALESCE(SUM(valor_liquido) FILTER (WHERE data >= date_trunc('day', NOW())), 0),
			COUNT(*) FILTER (WHERE data >= date_trunc('month', NOW())),
			COALESCE(SUM(valor_liquido) FILTER (WHERE data >= date_trunc('month', NOW())), 0)
		FROM vendas
	`
	err = h.db.QueryRow(ctx, salesQuery).Scan(
		&dashboard.Vendas.VendasHoje,
		&dashboard.Vendas.TotalHoje,
		&dashboard.Vendas.VendasMes,
		&dashboard.Vendas.TotalMes,
	)
	if err != nil {
		return nil, err
	}

	tipoQuery := `
		SELECT tipo, COUNT(*), COALESCE(SUM(quantidade), 0), COALESCE(SUM(preco * quantidade), 0)
		FROM roupas
		WHERE deleted_at IS NULL
		GROUP BY tipo
		ORDER BY COUNT(*) DESC
		LIMIT 10
	`
	rows, err := h.db.Query(ctx, tipoQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t TipoBreakdown
		if err := rows.Scan(&t.Tipo, &t.Itens, &t.Pecas, &t.Valor); err != nil {
			continue
		}
		dashboard.PorTipo = append(dashboard.PorTipo, t)
	}

	return dashboard, nil
}

// Type definitions

type DashboardData struct {
	Estoque      StockSummary       `json:"estoque"`
	Condicionais ConsignmentSummary `json:"condicionais"`
	Vendas       SalesSummary       `json:"vendas"`
	PorTipo      []TipoBreakdown    `json:"por_tipo"`
	Timestamp    time.Time          `json:"timestamp"`
}

type StockSummary struct {
	TotalItens   int64           `json:"total_itens"`
	TotalPecas   int64           `json:"total_pecas"`
	ValorEstoque decimal.Decimal `json:"valor_estoque"`
}

type ConsignmentSummary struct {
	Ativas           int64 `json:"ativas"`
	Atrasadas        int64 `json:"atrasadas"`
	PecasEmprestadas int64 `json:"pecas_emprestadas"`
}

type SalesSummary struct {
	VendasHoje int64           `json:"vendas_hoje"`
	TotalHoje  decimal.Decimal `json:"total_hoje"`
	VendasMes  int64           `json:"vendas_mes"`
	TotalMes   decimal.Decimal `json:"total_mes"`
}

type TipoBreakdown struct {
	Tipo  string          `json:"tipo"`
	Itens int64           `json:"itens"`
	Pecas int64           `json:"pecas"`
	Valor decimal.Decimal `json:"valor"`
}
