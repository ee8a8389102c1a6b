// internal/core/ports/sale_repository.go
package ports

import (
	"context"
	"time"

	"github.com/mcardoso/brecho-be/internal/core/domain"
)

// SaleRepository defines the persistence port for the sales ledger.
type SaleRepository interface {
	// Save inserts a direct sale and decrements stock for every sold
	// unit in the same transaction. Returns domain.ErrInsufficientStock
	// when stock cannot cover a line.
	Save(ctx context.Context, sale *domain.Sale) error

	FindByID(ctx context.Context, id int64) (*domain.Sale, error)

	// FindInPeriod returns sales whose date falls in [from, to), newest
	// first, capped at limit.
	FindInPeriod(ctx context.Context, from, to time.Time, limit int) ([]domain.Sale, error)
}
