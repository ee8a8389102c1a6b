// internal/adapters/db/consignment_repository.go
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

// consignmentRepository implements ports.ConsignmentRepository.
//
// Stock is the reconciliation point for the whole lifecycle: units leave
// roupas.quantidade when a loan is created and come back only through a
// return disposition. Every lifecycle operation here runs in a single
// transaction so quantities are conserved even when requests race.
type consignmentRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewConsignmentRepository creates a new consignment repository
func NewConsignmentRepository(db *Database, logger *slog.Logger) ports.ConsignmentRepository {
	return &consignmentRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "consignments")),
	}
}

// Save inserts the consignment with its lines and reserves stock.
func (r *consignmentRepository) Save(ctx context.Context, c *domain.Consignment) error {
	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO condicionais (cliente_id, cliente_nome, data, data_devolucao, devolvido)
			VALUES ($1, $2, $3, $4, FALSE)
			RETURNING id`,
			c.ClienteID, c.ClienteNome, c.Data, c.DataDevolucao,
		).Scan(&c.ID)
		if err != nil {
			return fmt.Errorf("failed to insert consignment: %w", err)
		}

		for i := range c.Itens {
			line := &c.Itens[i]

			// Conditional decrement: the WHERE clause is the stock check,
			// so concurrent loans cannot oversell an item.
			tag, err := tx.Exec(ctx, `
				UPDATE roupas
				SET quantidade = quantidade - $2, atualizado_em = NOW()
				WHERE id = $1 AND quantidade >= $2 AND deleted_at IS NULL`,
				line.RoupaID, line.Quantidade)
			if err != nil {
				return fmt.Errorf("failed to reserve stock for item %d: %w", line.RoupaID, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("item %d: %w", line.RoupaID, domain.ErrInsufficientStock)
			}

			err = tx.QueryRow(ctx, `
				INSERT INTO condicionais_itens
					(condicional_id, roupas_id, nome_item, quantidade, valor_estimado)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id`,
				c.ID, line.RoupaID, line.NomeItem, line.Quantidade, line.ValorEstimado,
			).Scan(&line.ID)
			if err != nil {
				return fmt.Errorf("failed to insert consignment line: %w", err)
			}
			line.CondicionalID = c.ID
		}

		return nil
	})
}

// FindByID retrieves a consignment with its lines
func (r *consignmentRepository) FindByID(ctx context.Context, id int64) (*domain.Consignment, error) {
	c := &domain.Consignment{}
	var desfecho sql.NullString

	err := r.db.QueryRow(ctx, `
		SELECT id, cliente_id, cliente_nome, data, data_devolucao, devolvido, desfecho
		FROM condicionais
		WHERE id = $1`, id,
	).Scan(&c.ID, &c.ClienteID, &c.ClienteNome, &c.Data, &c.DataDevolucao,
		&c.Devolvido, &desfecho)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find consignment: %w", err)
	}
	c.Desfecho = domain.Disposition(desfecho.String)

	if err := r.loadLines(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (r *consignmentRepository) loadLines(ctx context.Context, c *domain.Consignment) error {
	rows, err := r.db.Query(ctx, `
		SELECT id, condicional_id, roupas_id, nome_item, quantidade,
		       valor_estimado, quantidade_vendida, quantidade_devolvida
		FROM condicionais_itens
		WHERE condicional_id = $1
		ORDER BY id`, c.ID)
	if err != nil {
		return fmt.Errorf("failed to load consignment lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.ConsignmentItem
		if err := rows.Scan(&line.ID, &line.CondicionalID, &line.RoupaID,
			&line.NomeItem, &line.Quantidade, &line.ValorEstimado,
			&line.QuantidadeVendida, &line.QuantidadeDevolvida); err != nil {
			return fmt.Errorf("failed to scan consignment line: %w", err)
		}
		c.Itens = append(c.Itens, line)
	}
	return rows.Err()
}

// FinalizeSale closes the consignment as sold and records the sale.
func (r *consignmentRepository) FinalizeSale(ctx context.Context, id int64, dispositions []ports.LineDisposition, sale *domain.Sale) error {
	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		if err := r.close(ctx, tx, id, domain.DispositionSold); err != nil {
			return err
		}

		for _, d := range dispositions {
			tag, err := tx.Exec(ctx, `
				UPDATE condicionais_itens
				SET quantidade_vendida = $3, quantidade_devolvida = $4
				WHERE condicional_id = $1 AND roupas_id = $2`,
				id, d.RoupaID, d.Vendida, d.Devolvida)
			if err != nil {
				return fmt.Errorf("failed to record disposition for item %d: %w", d.RoupaID, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("item %d: %w", d.RoupaID, domain.ErrItemNotInConsignment)
			}

			if d.Devolvida > 0 {
				if err := restock(ctx, tx, d.RoupaID, d.Devolvida); err != nil {
					return err
				}
			}
		}

		if err := insertSale(ctx, tx, sale); err != nil {
			return err
		}

		r.logger.InfoContext(ctx, "consignment finalized as sold",
			slog.Int64("condicional_id", id),
			slog.Int64("venda_id", sale.ID))

		return nil
	})
}

// CloseReturned closes the consignment with every unit back in stock.
func (r *consignmentRepository) CloseReturned(ctx context.Context, id int64) error {
	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		if err := r.close(ctx, tx, id, domain.DispositionReturned); err != nil {
			return err
		}

		rows, err := tx.Query(ctx, `
			SELECT roupas_id, quantidade
			FROM condicionais_itens
			WHERE condicional_id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to load consignment lines: %w", err)
		}

		type lineQty struct {
			roupaID int64
			qty     int
		}
		var lines []lineQty
		for rows.Next() {
			var l lineQty
			if err := rows.Scan(&l.roupaID, &l.qty); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan consignment line: %w", err)
			}
			lines = append(lines, l)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, l := range lines {
			if err := restock(ctx, tx, l.roupaID, l.qty); err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx, `
			UPDATE condicionais_itens
			SET quantidade_vendida = 0, quantidade_devolvida = quantidade
			WHERE condicional_id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to record return dispositions: %w", err)
		}

		r.logger.InfoContext(ctx, "consignment returned",
			slog.Int64("condicional_id", id))

		return nil
	})
}

// close flips the devolvido flag. The WHERE clause makes the transition
// first-writer-wins: a consignment already closed affects zero rows and
// the caller gets ErrConsignmentClosed.
func (r *consignmentRepository) close(ctx context.Context, tx pgx.Tx, id int64, desfecho domain.Disposition) error {
	tag, err := tx.Exec(ctx, `
		UPDATE condicionais
		SET devolvido = TRUE, desfecho = $2
		WHERE id = $1 AND devolvido = FALSE`,
		id, string(desfecho))
	if err != nil {
		return fmt.Errorf("failed to close consignment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM condicionais WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check consignment existence: %w", err)
		}
		if !exists {
			return domain.ErrConsignmentNotFound
		}
		return domain.ErrConsignmentClosed
	}

	return nil
}

// Delete removes a consignment, restocking the loaned units first when
// the loan is still open.
func (r *consignmentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		var devolvido bool
		err := tx.QueryRow(ctx,
			`SELECT devolvido FROM condicionais WHERE id = $1 FOR UPDATE`, id,
		).Scan(&devolvido)
		if err != nil {
			if err == pgx.ErrNoRows {
				return domain.ErrConsignmentNotFound
			}
			return fmt.Errorf("failed to lock consignment: %w", err)
		}

		if !devolvido {
			rows, err := tx.Query(ctx, `
				SELECT roupas_id, quantidade
				FROM condicionais_itens
				WHERE condicional_id = $1`, id)
			if err != nil {
				return fmt.Errorf("failed to load consignment lines: %w", err)
			}
			type lineQty struct {
				roupaID int64
				qty     int
			}
			var lines []lineQty
			for rows.Next() {
				var l lineQty
				if err := rows.Scan(&l.roupaID, &l.qty); err != nil {
					rows.Close()
					return fmt.Errorf("failed to scan consignment line: %w", err)
				}
				lines = append(lines, l)
			}
			rows.Close()
			if err := rows.Err(); err != nil {
				return err
			}

			for _, l := range lines {
				if err := restock(ctx, tx, l.roupaID, l.qty); err != nil {
					return err
				}
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM condicionais WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete consignment: %w", err)
		}

		r.logger.InfoContext(ctx, "consignment deleted",
			slog.Int64("condicional_id", id),
			slog.Bool("was_active", !devolvido))

		return nil
	})
}

// FindOverdue lists active consignments past their return deadline.
func (r *consignmentRepository) FindOverdue(ctx context.Context) ([]domain.Consignment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, cliente_id, cliente_nome, data, data_devolucao, devolvido, desfecho
		FROM condicionais
		WHERE devolvido = FALSE AND data_devolucao < NOW()
		ORDER BY data_devolucao ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue consignments: %w", err)
	}
	defer rows.Close()

	var result []domain.Consignment
	for rows.Next() {
		var c domain.Consignment
		var desfecho sql.NullString
		if err := rows.Scan(&c.ID, &c.ClienteID, &c.ClienteNome, &c.Data,
			&c.DataDevolucao, &c.Devolvido, &desfecho); err != nil {
			return nil, fmt.Errorf("failed to scan consignment: %w", err)
		}
		c.Desfecho = domain.Disposition(desfecho.String)
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		if err := r.loadLines(ctx, &result[i]); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// restock returns units of an item to available stock.
func restock(ctx context.Context, tx pgx.Tx, roupaID int64, qty int) error {
	_, err := tx.Exec(ctx, `
		UPDATE roupas
		SET quantidade = quantidade + $2, atualizado_em = NOW()
		WHERE id = $1`,
		roupaID, qty)
	if err != nil {
		return fmt.Errorf("failed to restock item %d: %w", roupaID, err)
	}
	return nil
}

// insertSale writes a sale header and its lines inside the caller's
// transaction.
func insertSale(ctx context.Context, tx pgx.Tx, sale *domain.Sale) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO vendas (
			condicional_id, cliente_id, cliente_nome, forma_pagamento,
			valor_bruto, desconto, valor_liquido, observacoes,
			descricao_permuta, data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		sale.CondicionalID, sale.ClienteID, nullIfEmpty(sale.ClienteNome),
		string(sale.FormaPagamento), sale.ValorBruto, sale.Desconto,
		sale.ValorLiquido, nullIfEmpty(sale.Observacoes),
		nullIfEmpty(sale.DescricaoPermuta), sale.Data,
	).Scan(&sale.ID)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range sale.Itens {
		batch.Queue(`
			INSERT INTO vendas_itens
				(venda_id, roupas_id, nome_item, quantidade, preco_unitario, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			sale.ID, sale.Itens[i].RoupaID, sale.Itens[i].NomeItem,
			sale.Itens[i].Quantidade, sale.Itens[i].PrecoUnitario,
			sale.Itens[i].Subtotal)
	}

	br := tx.SendBatch(ctx, batch)
	defer br.Close()

	for i := range sale.Itens {
		if err := br.QueryRow().Scan(&sale.Itens[i].ID); err != nil {
			return fmt.Errorf("failed to insert sale line %d: %w", i, err)
		}
		sale.Itens[i].VendaID = sale.ID
	}

	return nil
}
