// internal/adapters/db/sale_repository.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/mcardoso/brecho-be/internal/core/domain"
	"github.com/mcardoso/brecho-be/internal/core/ports"
)

// saleRepository implements ports.SaleRepository
type saleRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *Database, logger *slog.Logger) ports.SaleRepository {
	return &saleRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "sales")),
	}
}

// Save records a direct sale, decrementing stock per line in the same
// transaction. A line that would drive stock negative fails the whole
// sale with ErrInsufficientStock.
func (r *saleRepository) Save(ctx context.Context, sale *domain.Sale) error {
	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		for i := range sale.Itens {
			line := &sale.Itens[i]
			tag, err := tx.Exec(ctx, `
				UPDATE roupas
				SET quantidade = quantidade - $2, atualizado_em = NOW()
				WHERE id = $1 AND quantidade >= $2 AND deleted_at IS NULL`,
				line.RoupaID, line.Quantidade)
			if err != nil {
				return fmt.Errorf("failed to decrement stock for item %d: %w", line.RoupaID, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("item %d: %w", line.RoupaID, domain.ErrInsufficientStock)
			}
		}

		if err := insertSale(ctx, tx, sale); err != nil {
			return err
		}

		r.logger.InfoContext(ctx, "direct sale recorded",
			slog.Int64("venda_id", sale.ID))

		return nil
	})
}

// FindByID retrieves a sale with its lines
func (r *saleRepository) FindByID(ctx context.Context, id int64) (*domain.Sale, error) {
	sale := &domain.Sale{}
	var clienteNome, observacoes, descricaoPermuta sql.NullString
	var formaPagamento string

	err := r.db.QueryRow(ctx, `
		SELECT id, condicional_id, cliente_id, cliente_nome, forma_pagamento,
		       valor_bruto, desconto, valor_liquido, observacoes,
		       descricao_permuta, data
		FROM vendas
		WHERE id = $1`, id,
	).Scan(&sale.ID, &sale.CondicionalID, &sale.ClienteID, &clienteNome,
		&formaPagamento, &sale.ValorBruto, &sale.Desconto, &sale.ValorLiquido,
		&observacoes, &descricaoPermuta, &sale.Data)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find sale: %w", err)
	}

	sale.ClienteNome = clienteNome.String
	sale.FormaPagamento = domain.PaymentMethod(formaPagamento)
	sale.Observacoes = observacoes.String
	sale.DescricaoPermuta = descricaoPermuta.String

	if err := r.loadLines(ctx, []*domain.Sale{sale}); err != nil {
		return nil, err
	}

	return sale, nil
}

// FindInPeriod returns sales in [from, to), newest first, capped at limit.
func (r *saleRepository) FindInPeriod(ctx context.Context, from, to time.Time, limit int) ([]domain.Sale, error) {
	qb := squirrel.Select(
		"id", "condicional_id", "cliente_id", "cliente_nome", "forma_pagamento",
		"valor_bruto", "desconto", "valor_liquido", "observacoes",
		"descricao_permuta", "data",
	).From("vendas").
		Where(squirrel.GtOrEq{"data": from}).
		Where(squirrel.Lt{"data": to}).
		OrderBy("data DESC", "id DESC").
		PlaceholderFormat(squirrel.Dollar)

	if limit > 0 {
		qb = qb.Limit(uint64(limit))
	}

	sqlQuery, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []domain.Sale
	for rows.Next() {
		var sale domain.Sale
		var clienteNome, observacoes, descricaoPermuta sql.NullString
		var formaPagamento string

		if err := rows.Scan(&sale.ID, &sale.CondicionalID, &sale.ClienteID,
			&clienteNome, &formaPagamento, &sale.ValorBruto, &sale.Desconto,
			&sale.ValorLiquido, &observacoes, &descricaoPermuta, &sale.Data); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}

		sale.ClienteNome = clienteNome.String
		sale.FormaPagamento = domain.PaymentMethod(formaPagamento)
		sale.Observacoes = observacoes.String
		sale.DescricaoPermuta = descricaoPermuta.String

		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	refs := make([]*domain.Sale, len(sales))
	for i := range sales {
		refs[i] = &sales[i]
	}
	if err := r.loadLines(ctx, refs); err != nil {
		return nil, err
	}

	return sales, nil
}

// loadLines fetches the item lines for the given sales in one query.
func (r *saleRepository) loadLines(ctx context.Context, sales []*domain.Sale) error {
	if len(sales) == 0 {
		return nil
	}

	ids := make([]int64, len(sales))
	byID := make(map[int64]*domain.Sale, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
		byID[s.ID] = s
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, venda_id, roupas_id, nome_item, quantidade,
		       preco_unitario, subtotal
		FROM vendas_itens
		WHERE venda_id = ANY($1)
		ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("failed to load sale lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.SaleItem
		if err := rows.Scan(&line.ID, &line.VendaID, &line.RoupaID,
			&line.NomeItem, &line.Quantidade, &line.PrecoUnitario,
			&line.Subtotal); err != nil {
			return fmt.Errorf("failed to scan sale line: %w", err)
		}
		if s, ok := byID[line.VendaID]; ok {
			s.Itens = append(s.Itens, line)
		}
	}
	return rows.Err()
}
