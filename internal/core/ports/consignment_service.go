// internal/core/ports/consignment_service.go
package ports

import (
	"context"

	"github.com/mcardoso/brecho-be/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ConsignmentService defines the application service port for the
// consignment lifecycle.
type ConsignmentService interface {
	// Create validates the loan, snapshots item prices and persists it,
	// reserving stock atomically.
	Create(ctx context.Context, c *domain.Consignment) error

	GetByID(ctx context.Context, id int64) (*domain.Consignment, error)

	List(ctx context.Context, params ConsignmentListParams) (*ConsignmentListResult, error)

	// ConvertToSale closes the consignment as sold and returns the
	// recorded sale. Selection semantics and payment rules are described
	// on ConvertSaleParams.
	ConvertToSale(ctx context.Context, id int64, params ConvertSaleParams) (*domain.Sale, error)

	// ReturnAll closes the consignment with every unit back in stock.
	ReturnAll(ctx context.Context, id int64) error

	Delete(ctx context.Context, id int64) error
}

// SaleSelection picks a quantity of one loaned item for conversion.
type SaleSelection struct {
	RoupaID    int64 `json:"roupas_id"`
	Quantidade int   `json:"quantidade"`
}

// ConvertSaleParams carries a conversion request. When Todos is true the
// whole loan is sold and Itens is ignored; otherwise Itens selects what
// sold and the remainder is returned to stock.
type ConvertSaleParams struct {
	Todos            bool
	Itens            []SaleSelection
	FormaPagamento   string
	Desconto         decimal.Decimal
	Observacoes      string
	DescricaoPermuta string
}

// ConsignmentListParams holds parameters for listing consignments.
type ConsignmentListParams struct {
	Search    string
	ClienteID int64
	Status    string
	Page      int
	PageSize  int
}

// ConsignmentListResult holds the result of listing consignments.
type ConsignmentListResult struct {
	Consignments []*domain.Consignment `json:"consignments"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"page_size"`
	TotalCount   int64                 `json:"total_count"`
	TotalPages   int                   `json:"total_pages"`
}
