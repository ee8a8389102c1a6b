// internal/core/ports/sale_service.go
package ports

import (
	"context"
	"time"

	"github.com/mcardoso/brecho-be/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SaleService defines the application service port for the sales ledger.
type SaleService interface {
	// RecordDirect records a sale from free stock, outside any
	// consignment.
	RecordDirect(ctx context.Context, sale *domain.Sale) error

	GetByID(ctx context.Context, id int64) (*domain.Sale, error)

	// History returns the sales for a period, newest first, capped at
	// the service's history limit.
	History(ctx context.Context, params SaleHistoryParams) (*SaleHistoryResult, error)
}

// SaleHistoryParams selects the reporting window. Period is one of
// "dia", "semana", "mes", "ano" or "personalizado"; the custom period
// reads From and To.
type SaleHistoryParams struct {
	Period string
	From   time.Time
	To     time.Time
}

// SaleHistoryResult is the aggregated view of a sales period.
type SaleHistoryResult struct {
	Sales         []domain.Sale   `json:"vendas"`
	TotalBruto    decimal.Decimal `json:"total_bruto"`
	TotalDesconto decimal.Decimal `json:"total_desconto"`
	TotalLiquido  decimal.Decimal `json:"total_liquido"`
	TotalPecas    int             `json:"total_pecas"`
	From          time.Time       `json:"inicio"`
	To            time.Time       `json:"fim"`
}
