// internal/core/services/items.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mcardoso/brecho-be/internal/core/domain"
	"github.com/mcardoso/brecho-be/internal/core/ports"
)

// PgxPool interface defines the contract for database operations
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// ItemService handles item catalog business logic
type ItemService struct {
	repo   ports.ItemRepository
	db     PgxPool
	logger *slog.Logger
}

// Statically assert that *ItemService implements the ItemService interface.
var _ ports.ItemService = (*ItemService)(nil)

// NewItemService creates a new item service
func NewItemService(repo ports.ItemRepository, db PgxPool, logger *slog.Logger) *ItemService {
	return &ItemService{
		repo:   repo,
		db:     db,
		logger: logger.With(slog.String("service", "items")),
	}
}

// SaveItem saves a single catalog item
func (s *ItemService) SaveItem(ctx context.Context, item *domain.Item) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	item.PrepareForStorage()

	if err := s.repo.Save(ctx, item); err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}

	s.logger.InfoContext(ctx, "saved item",
		slog.Int64("id", item.ID),
		slog.String("nome", item.Nome))

	return nil
}

// SaveItems saves multiple items with transaction support
func (s *ItemService) SaveItems(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		s.logger.InfoContext(ctx, "no items to save")
		return nil
	}

	for i := range items {
		if err := items[i].Validate(); err != nil {
			return fmt.Errorf("validation failed for item %s: %w", items[i].Nome, err)
		}
		items[i].PrepareForStorage()
	}

	if err := s.repo.SaveBatch(ctx, items); err != nil {
		return fmt.Errorf("failed to save items batch: %w", err)
	}

	s.logger.InfoContext(ctx, "saved items",
		slog.Int("count", len(items)))

	return nil
}

// BulkUpsert performs a bulk upsert operation in fixed-size batches
func (s *ItemService) BulkUpsert(ctx context.Context, items []domain.Item) error {
	const batchSize = 100

	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}

		batch := items[i:end]
		if err := s.SaveItems(ctx, batch); err != nil {
			return fmt.Errorf("failed to save batch %d-%d: %w", i, end, err)
		}
	}

	return nil
}

// GetByID retrieves an item by ID
func (s *ItemService) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	if item == nil {
		return nil, fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}

	return item, nil
}

// UpdateItem updates an existing item
func (s *ItemService) UpdateItem(ctx context.Context, id int64, item *domain.Item) error {
	item.ID = id

	if err := item.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	s.logger.InfoContext(ctx, "updated item",
		slog.Int64("id", id))

	return nil
}

// DeleteItem deletes an item (soft delete by default)
func (s *ItemService) DeleteItem(ctx context.Context, id int64, permanent bool) error {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check item existence: %w", err)
	}

	if !exists {
		return fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}

	if permanent {
		err = s.repo.Delete(ctx, id)
	} else {
		err = s.repo.SoftDelete(ctx, id)
	}

	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	s.logger.InfoContext(ctx, "deleted item",
		slog.Int64("id", id),
		slog.Bool("permanent", permanent))

	return nil
}

// AttachImage links an uploaded image URL to an item
func (s *ItemService) AttachImage(ctx context.Context, img *domain.Imagem) error {
	exists, err := s.repo.Exists(ctx, img.RoupaID)
	if err != nil {
		return fmt.Errorf("failed to check item existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("item %d: %w", img.RoupaID, domain.ErrNotFound)
	}

	if err := s.repo.SaveImage(ctx, img); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}

	s.logger.InfoContext(ctx, "attached image",
		slog.Int64("roupas_id", img.RoupaID),
		slog.Int64("image_id", img.ID))

	return nil
}

// RemoveImage unlinks an image and returns its record so the caller can
// remove the object from storage.
func (s *ItemService) RemoveImage(ctx context.Context, imageID int64) (*domain.Imagem, error) {
	img, err := s.repo.DeleteImage(ctx, imageID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete image: %w", err)
	}
	return img, nil
}

// List retrieves items with filtering and pagination
func (s *ItemService) List(ctx context.Context, params ports.ItemListParams) (*ports.ItemListResult, error) {
	items, totalCount, err := s.getFilteredItems(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	var totalPages int
	if params.PageSize > 0 {
		totalPages = int(totalCount) / params.PageSize
		if int(totalCount)%params.PageSize > 0 {
			totalPages++
		}
	}

	result := &ports.ItemListResult{
		Items:      items,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}

	return result, nil
}

// getFilteredItems is a helper method that queries the database directly
func (s *ItemService) getFilteredItems(ctx context.Context, params ports.ItemListParams) ([]*domain.Item, int64, error) {
	baseQuery := `
		SELECT
			id, nome, descricao, tipo, tamanho, cor,
			preco, quantidade, usuario_id, criado_em, atualizado_em
		FROM roupas
		WHERE deleted_at IS NULL
	`

	var conditions []string
	var args []interface{}
	argCount := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(nome ILIKE $%d OR descricao ILIKE $%d)", argCount, argCount))
		args = append(args, "%"+params.Search+"%")
		argCount++
	}

	if params.Tipo != "" {
		conditions = append(conditions, fmt.Sprintf("tipo = $%d", argCount))
		args = append(args, params.Tipo)
		argCount++
	}

	if params.Tamanho != "" {
		conditions = append(conditions, fmt.Sprintf("tamanho = $%d", argCount))
		args = append(args, params.Tamanho)
		argCount++
	}

	if params.Cor != "" {
		conditions = append(conditions, fmt.Sprintf("cor = $%d", argCount))
		args = append(args, params.Cor)
		argCount++
	}

	if params.OnlyAvailable {
		conditions = append(conditions, "quantidade > 0")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM (" + baseQuery + ") as t"
	var totalCount int64
	err := s.db.QueryRow(ctx, countQuery, args...).Scan(&totalCount)
	if err != nil {
		return nil, 0, err
	}

	orderBy := "criado_em DESC"
	switch params.SortBy {
	case "nome", "preco", "quantidade", "criado_em":
		direction := "ASC"
		if params.SortOrder == "desc" {
			direction = "DESC"
		}
		orderBy = fmt.Sprintf("%s %s", params.SortBy, direction)
	}

	baseQuery += fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", orderBy, argCount, argCount+1)
	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	rows, err := s.db.Query(ctx, baseQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		item := &domain.Item{}
		var descricao, tipo, tamanho, cor *string

		err := rows.Scan(
			&item.ID, &item.Nome, &descricao, &tipo, &tamanho, &cor,
			&item.Preco, &item.Quantidade, &item.UsuarioID,
			&item.CriadoEm, &item.AtualizadoEm,
		)
		if err != nil {
			return nil, 0, err
		}

		if descricao != nil {
			item.Descricao = *descricao
		}
		if tipo != nil {
			item.Tipo = *tipo
		}
		if tamanho != nil {
			item.Tamanho = *tamanho
		}
		if cor != nil {
			item.Cor = *cor
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return items, totalCount, nil
}
