// internal/adapters/db/item_repository.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mcardoso/brecho-be/internal/core/domain"
	"github.com/mcardoso/brecho-be/internal/core/ports"
)

// itemRepository implements ports.ItemRepository
type itemRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *Database, logger *slog.Logger) ports.ItemRepository {
	return &itemRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "items")),
	}
}

// Save creates a new catalog item
func (r *itemRepository) Save(ctx context.Context, item *domain.Item) error {
	query := `
		INSERT INTO roupas (
			nome, descricao, tipo, tamanho, cor, preco, quantidade,
			usuario_id, criado_em, atualizado_em
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING id, criado_em, atualizado_em`

	err := r.db.QueryRow(ctx, query,
		item.Nome, nullIfEmpty(item.Descricao), nullIfEmpty(item.Tipo),
		nullIfEmpty(item.Tamanho), nullIfEmpty(item.Cor),
		item.Preco, item.Quantidade, nullIfZero(item.UsuarioID),
		item.CriadoEm, item.AtualizadoEm,
	).Scan(&item.ID, &item.CriadoEm, &item.AtualizadoEm)

	if err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}

	r.logger.DebugContext(ctx, "item saved",
		slog.Int64("id", item.ID),
		slog.String("nome", item.Nome))

	return nil
}

// SaveBatch saves multiple items in a transaction
func (r *itemRepository) SaveBatch(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}

	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}

		query := `
			INSERT INTO roupas (
				nome, descricao, tipo, tamanho, cor, preco, quantidade,
				usuario_id, criado_em, atualizado_em
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
			) RETURNING id`

		for i := range items {
			batch.Queue(query,
				items[i].Nome, nullIfEmpty(items[i].Descricao), nullIfEmpty(items[i].Tipo),
				nullIfEmpty(items[i].Tamanho), nullIfEmpty(items[i].Cor),
				items[i].Preco, items[i].Quantidade, nullIfZero(items[i].UsuarioID),
				items[i].CriadoEm, items[i].AtualizadoEm,
			)
		}

		br := tx.SendBatch(ctx, batch)
		defer br.Close()

		for i := range items {
			if err := br.QueryRow().Scan(&items[i].ID); err != nil {
				return fmt.Errorf("failed to save item %d: %w", i, err)
			}
		}

		return nil
	})
}

// Update updates an existing item
func (r *itemRepository) Update(ctx context.Context, item *domain.Item) error {
	query := `
		UPDATE roupas SET
			nome = $2, descricao = $3, tipo = $4, tamanho = $5, cor = $6,
			preco = $7, quantidade = $8, atualizado_em = $9
		WHERE id = $1 AND deleted_at IS NULL`

	item.AtualizadoEm = time.Now()

	tag, err := r.db.Exec(ctx, query,
		item.ID, item.Nome, nullIfEmpty(item.Descricao), nullIfEmpty(item.Tipo),
		nullIfEmpty(item.Tamanho), nullIfEmpty(item.Cor),
		item.Preco, item.Quantidade, item.AtualizadoEm,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %d: %w", item.ID, domain.ErrNotFound)
	}

	r.logger.DebugContext(ctx, "item updated",
		slog.Int64("id", item.ID))

	return nil
}

// FindByID retrieves an item with its images
func (r *itemRepository) FindByID(ctx context.Context, id int64) (*domain.Item, error) {
	query := `
		SELECT id, nome, descricao, tipo, tamanho, cor,
		       preco, quantidade, usuario_id, criado_em, atualizado_em
		FROM roupas
		WHERE id = $1 AND deleted_at IS NULL`

	item := &domain.Item{}
	var descricao, tipo, tamanho, cor sql.NullString
	var usuarioID sql.NullInt64

	err := r.db.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.Nome, &descricao, &tipo, &tamanho, &cor,
		&item.Preco, &item.Quantidade, &usuarioID,
		&item.CriadoEm, &item.AtualizadoEm,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}

	item.Descricao = descricao.String
	item.Tipo = tipo.String
	item.Tamanho = tamanho.String
	item.Cor = cor.String
	item.UsuarioID = usuarioID.Int64

	if err := r.loadImages(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (r *itemRepository) loadImages(ctx context.Context, item *domain.Item) error {
	rows, err := r.db.Query(ctx, `
		SELECT id, roupas_id, url, criado_em
		FROM imagens
		WHERE roupas_id = $1
		ORDER BY id`, item.ID)
	if err != nil {
		return fmt.Errorf("failed to load images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img domain.Imagem
		if err := rows.Scan(&img.ID, &img.RoupaID, &img.URL, &img.CriadoEm); err != nil {
			return fmt.Errorf("failed to scan image: %w", err)
		}
		item.Imagens = append(item.Imagens, img)
	}
	return rows.Err()
}

// Delete performs a hard delete
func (r *itemRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM roupas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}

	r.logger.InfoContext(ctx, "item deleted", slog.Int64("id", id))

	return nil
}

// SoftDelete marks an item as deleted
func (r *itemRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE roupas SET deleted_at = $2, atualizado_em = $2 WHERE id = $1 AND deleted_at IS NULL`

	now := time.Now()
	tag, err := r.db.Exec(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("failed to soft delete item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}

	r.logger.InfoContext(ctx, "item soft deleted", slog.Int64("id", id))

	return nil
}

// Count returns the total number of items
func (r *itemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM roupas WHERE deleted_at IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// Exists checks if an item exists
func (r *itemRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM roupas WHERE id = $1 AND deleted_at IS NULL)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return exists, nil
}

// SaveImage links an image URL to an item
func (r *itemRepository) SaveImage(ctx context.Context, img *domain.Imagem) error {
	query := `
		INSERT INTO imagens (roupas_id, url, criado_em)
		VALUES ($1, $2, NOW())
		RETURNING id, criado_em`

	if err := r.db.QueryRow(ctx, query, img.RoupaID, img.URL).Scan(&img.ID, &img.CriadoEm); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}

	return nil
}

// DeleteImage removes an image link and returns the removed record
func (r *itemRepository) DeleteImage(ctx context.Context, imageID int64) (*domain.Imagem, error) {
	query := `
		DELETE FROM imagens
		WHERE id = $1
		RETURNING id, roupas_id, url, criado_em`

	img := &domain.Imagem{}
	err := r.db.QueryRow(ctx, query, imageID).Scan(&img.ID, &img.RoupaID, &img.URL, &img.CriadoEm)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("image %d: %w", imageID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to delete image: %w", err)
	}

	return img, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(v int64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}
