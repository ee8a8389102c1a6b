// internal/core/services/clients.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcardoso/brecho-be/internal/core/domain"
	"github.com/mcardoso/brecho-be/internal/core/ports"
)

// ClientService handles client registry business logic
type ClientService struct {
	repo   ports.ClientRepository
	db     PgxPool
	logger *slog.Logger
}

var _ ports.ClientService = (*ClientService)(nil)

// NewClientService creates a new client service
func NewClientService(repo ports.ClientRepository, db PgxPool, logger *slog.Logger) *ClientService {
	return &ClientService{
		repo:   repo,
		db:     db,
		logger: logger.With(slog.String("service", "clients")),
	}
}

// Create registers a new client
func (s *ClientService) Create(ctx context.Context, client *domain.Client) error {
	if err := client.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := s.repo.Save(ctx, client); err != nil {
		return fmt.Errorf("failed to save client: %w", err)
	}

	s.logger.InfoContext(ctx, "created client",
		slog.Int64("id", client.ID),
		slog.String("nome", client.Nome))

	return nil
}

// Update updates an existing client
func (s *ClientService) Update(ctx context.Context, id int64, client *domain.Client) error {
	client.ID = id

	if err := client.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check client existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("client %d: %w", id, domain.ErrNotFound)
	}

	if err := s.repo.Update(ctx, client); err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	s.logger.InfoContext(ctx, "updated client", slog.Int64("id", id))

	return nil
}

// GetByID retrieves a client by ID
func (s *ClientService) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("client %d: %w", id, domain.ErrNotFound)
	}
	return client, nil
}

// Delete removes a client
func (s *ClientService) Delete(ctx context.Context, id int64) error {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check client existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("client %d: %w", id, domain.ErrNotFound)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	s.logger.InfoContext(ctx, "deleted client", slog.Int64("id", id))

	return nil
}

// List retrieves clients with search and pagination
func (s *ClientService) List(ctx context.Context, params ports.ClientListParams) (*ports.ClientListResult, error) {
	baseQuery := `
		SELECT id, nome, email, cpf, telefone, endereco, criado_em
		FROM clientes
	`

	var conditions []string
	var args []interface{}
	argCount := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(nome ILIKE $%d OR email ILIKE $%d OR cpf = $%d)", argCount, argCount, argCount+1))
		args = append(args, "%"+params.Search+"%", params.Search)
		argCount += 2
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM (" + baseQuery + ") as t"
	var totalCount int64
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}

	baseQuery += fmt.Sprintf(" ORDER BY nome ASC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	rows, err := s.db.Query(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		client := &domain.Client{}
		var email, cpf, telefone, endereco *string

		if err := rows.Scan(&client.ID, &client.Nome, &email, &cpf,
			&telefone, &endereco, &client.CriadoEm); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}

		if email != nil {
			client.Email = *email
		}
		if cpf != nil {
			client.CPF = *cpf
		}
		if telefone != nil {
			client.Telefone = *telefone
		}
		if endereco != nil {
			client.Endereco = *endereco
		}

		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read clients: %w", err)
	}

	var totalPages int
	if params.PageSize > 0 {
		totalPages = int(totalCount) / params.PageSize
		if int(totalCount)%params.PageSize > 0 {
			totalPages++
		}
	}

	return &ports.ClientListResult{
		Clients:    clients,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}
