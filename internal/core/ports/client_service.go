// internal/core/ports/client_service.go
package ports

import (
	"context"

	"github.com/mcardoso/brecho-be/internal/core/domain"
)

// ClientService defines the application service port for clients.
type ClientService interface {
	Create(ctx context.Context, client *domain.Client) error
	Update(ctx context.Context, id int64, client *domain.Client) error
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params ClientListParams) (*ClientListResult, error)
}

// ClientListParams holds parameters for listing clients.
type ClientListParams struct {
	Search   string
	Page     int
	PageSize int
}

// ClientListResult holds the result of listing clients.
type ClientListResult struct {
	Clients    []*domain.Client `json:"clients"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalCount int64            `json:"total_count"`
	TotalPages int              `json:"total_pages"`
}
