// internal/core/ports/item_repository.go
package ports

import (
	"context"

	"github.com/mcardoso/brecho-be/internal/core/domain"
)

// ItemRepository defines the persistence port for the inventory of items.
// This interface is implemented by the database adapter.
type ItemRepository interface {
	Save(ctx context.Context, item *domain.Item) error
	SaveBatch(ctx context.Context, items []domain.Item) error
	Update(ctx context.Context, item *domain.Item) error
	FindByID(ctx context.Context, id int64) (*domain.Item, error)
	Delete(ctx context.Context, id int64) error
	SoftDelete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	Exists(ctx context.Context, id int64) (bool, error)
	SaveImage(ctx context.Context, img *domain.Imagem) error
	DeleteImage(ctx context.Context, imageID int64) (*domain.Imagem, error)
}
