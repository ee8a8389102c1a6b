// internal/core/ports/client_repository.go
package ports

import (
	"context"

	"github.com/mcardoso/brecho-be/internal/core/domain"
)

// ClientRepository defines the persistence port for clients.
type ClientRepository interface {
	Save(ctx context.Context, client *domain.Client) error
	Update(ctx context.Context, client *domain.Client) error
	FindByID(ctx context.Context, id int64) (*domain.Client, error)
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}
