// internal/adapters/db/client_repository.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/mcardoso/brecho-be/internal/core/domain"
	"github.com/mcardoso/brecho-be/internal/core/ports"
)

// clientRepository implements ports.ClientRepository
type clientRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *Database, logger *slog.Logger) ports.ClientRepository {
	return &clientRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "clients")),
	}
}

// Save registers a new client
func (r *clientRepository) Save(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO clientes (nome, email, cpf, telefone, endereco, criado_em)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, criado_em`

	err := r.db.QueryRow(ctx, query,
		client.Nome, nullIfEmpty(client.Email), nullIfEmpty(client.CPF),
		nullIfEmpty(client.Telefone), nullIfEmpty(client.Endereco),
	).Scan(&client.ID, &client.CriadoEm)

	if err != nil {
		return fmt.Errorf("failed to save client: %w", err)
	}

	r.logger.DebugContext(ctx, "client saved",
		slog.Int64("id", client.ID),
		slog.String("nome", client.Nome))

	return nil
}

// Update updates an existing client
func (r *clientRepository) Update(ctx context.Context, client *domain.Client) error {
	query := `
		UPDATE clientes SET
			nome = $2, email = $3, cpf = $4, telefone = $5, endereco = $6
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		client.ID, client.Nome, nullIfEmpty(client.Email), nullIfEmpty(client.CPF),
		nullIfEmpty(client.Telefone), nullIfEmpty(client.Endereco),
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client %d: %w", client.ID, domain.ErrNotFound)
	}

	return nil
}

// FindByID retrieves a client by ID
func (r *clientRepository) FindByID(ctx context.Context, id int64) (*domain.Client, error) {
	query := `
		SELECT id, nome, email, cpf, telefone, endereco, criado_em
		FROM clientes
		WHERE id = $1`

	client := &domain.Client{}
	var email, cpf, telefone, endereco sql.NullString

	err := r.db.QueryRow(ctx, query, id).Scan(
		&client.ID, &client.Nome, &email, &cpf, &telefone, &endereco, &client.CriadoEm,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}

	client.Email = email.String
	client.CPF = cpf.String
	client.Telefone = telefone.String
	client.Endereco = endereco.String

	return client, nil
}

// Delete removes a client
func (r *clientRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clientes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client %d: %w", id, domain.ErrNotFound)
	}

	r.logger.InfoContext(ctx, "client deleted", slog.Int64("id", id))

	return nil
}

// Exists checks if a client exists
func (r *clientRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM clientes WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return exists, nil
}
