// internal/core/ports/item_service.go
package ports

import (
	"context"

	"github.com/mcardoso/brecho-be/internal/core/domain"
)

// ItemService defines the application service port for the item catalog.
// This interface is implemented by the application service.
type ItemService interface {
	SaveItem(ctx context.Context, item *domain.Item) error
	SaveItems(ctx context.Context, items []domain.Item) error
	BulkUpsert(ctx context.Context, items []domain.Item) error
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	UpdateItem(ctx context.Context, id int64, item *domain.Item) error
	DeleteItem(ctx context.Context, id int64, permanent bool) error
	AttachImage(ctx context.Context, img *domain.Imagem) error
	RemoveImage(ctx context.Context, imageID int64) (*domain.Imagem, error)
	// ListParams and ListResult live here to avoid circular dependencies.
	List(ctx context.Context, params ItemListParams) (*ItemListResult, error)
}

// ItemListParams holds parameters for listing items.
type ItemListParams struct {
	Search        string
	Tipo          string
	Tamanho       string
	Cor           string
	OnlyAvailable bool
	SortBy        string
	SortOrder     string
	Page          int
	PageSize      int
}

// ItemListResult holds the result of listing items.
type ItemListResult struct {
	Items      []*domain.Item `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalCount int64          `json:"total_count"`
	TotalPages int            `json:"total_pages"`
}
