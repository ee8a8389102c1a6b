// internal/core/ports/consignment_repository.go
package ports

import (
	"context"

	"github.com/mcardoso/brecho-be/internal/core/domain"
)

// LineDisposition tells the repository how many units of one loaned line
// were sold and how many go back to stock when a consignment is closed.
// Vendida + Devolvida always equals the quantity originally loaned.
type LineDisposition struct {
	RoupaID   int64
	Vendida   int
	Devolvida int
}

// ConsignmentRepository defines the persistence port for consignments.
// Lifecycle operations (Save, FinalizeSale, CloseReturned, Delete) are
// transactional: stock movements and status changes commit or roll back
// as a unit.
type ConsignmentRepository interface {
	// Save inserts the consignment with its lines and decrements stock
	// for every loaned unit in the same transaction. Returns
	// domain.ErrInsufficientStock when any line asks for more units than
	// the item has available.
	Save(ctx context.Context, c *domain.Consignment) error

	FindByID(ctx context.Context, id int64) (*domain.Consignment, error)

	// FinalizeSale closes an active consignment as sold: it records the
	// per-line dispositions, restocks every returned unit, and inserts
	// the sale with its lines. The close is guarded so only the first
	// caller succeeds; later callers get domain.ErrConsignmentClosed.
	FinalizeSale(ctx context.Context, id int64, dispositions []LineDisposition, sale *domain.Sale) error

	// CloseReturned closes an active consignment as fully returned,
	// restocking every loaned unit. Guarded like FinalizeSale.
	CloseReturned(ctx context.Context, id int64) error

	// Delete removes the consignment. When it is still active the loaned
	// units go back to stock in the same transaction.
	Delete(ctx context.Context, id int64) error

	// FindOverdue lists active consignments whose return deadline has
	// passed, for the reminder worker.
	FindOverdue(ctx context.Context) ([]domain.Consignment, error)
}
