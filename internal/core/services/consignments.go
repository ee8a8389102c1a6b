// internal/core/services/consignments.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcardoso/brecho-be/internal/core/domain"
	"github.com/mcardoso/brecho-be/internal/core/ports"
)

// ConsignmentService drives the consignment lifecycle: loan creation,
// conversion to sale and return. All stock movements happen inside the
// repository's transactions; this service owns the business rules.
type ConsignmentService struct {
	repo    ports.ConsignmentRepository
	items   ports.ItemRepository
	clients ports.ClientRepository
	cache   ports.CacheRepository
	db      PgxPool
	logger  *slog.Logger
}

var _ ports.ConsignmentService = (*ConsignmentService)(nil)

// NewConsignmentService creates a new consignment service
func NewConsignmentService(
	repo ports.ConsignmentRepository,
	items ports.ItemRepository,
	clients ports.ClientRepository,
	cache ports.CacheRepository,
	db PgxPool,
	logger *slog.Logger,
) *ConsignmentService {
	return &ConsignmentService{
		repo:    repo,
		items:   items,
		clients: clients,
		cache:   cache,
		db:      db,
		logger:  logger.With(slog.String("service", "consignments")),
	}
}

// Create validates the loan, snapshots each item's current price and name
// into the lines, and persists the consignment. Stock for every loaned
// unit is reserved in the same transaction; a line that asks for more
// units than available fails the whole loan with ErrInsufficientStock.
func (s *ConsignmentService) Create(ctx context.Context, c *domain.Consignment) error {
	if err := c.Validate(time.Now()); err != nil {
		return err
	}

	client, err := s.clients.FindByID(ctx, c.ClienteID)
	if err != nil {
		return fmt.Errorf("failed to load client: %w", err)
	}
	if client == nil {
		return fmt.Errorf("client %d: %w", c.ClienteID, domain.ErrNotFound)
	}
	c.ClienteNome = client.Nome

	for i := range c.Itens {
		item, err := s.items.FindByID(ctx, c.Itens[i].RoupaID)
		if err != nil {
			return fmt.Errorf("failed to load item %d: %w", c.Itens[i].RoupaID, err)
		}
		if item == nil {
			return fmt.Errorf("item %d: %w", c.Itens[i].RoupaID, domain.ErrNotFound)
		}
		c.Itens[i].NomeItem = item.Nome
		preco := item.Preco
		c.Itens[i].ValorEstimado = &preco
	}

	if c.Data.IsZero() {
		c.Data = time.Now()
	}

	if err := s.repo.Save(ctx, c); err != nil {
		return fmt.Errorf("failed to save consignment: %w", err)
	}

	s.logger.InfoContext(ctx, "created consignment",
		slog.Int64("id", c.ID),
		slog.Int64("cliente_id", c.ClienteID),
		slog.Int("pecas", c.TotalPecas()))

	return nil
}

// GetByID retrieves a consignment with its lines
func (s *ConsignmentService) GetByID(ctx context.Context, id int64) (*domain.Consignment, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get consignment: %w", err)
	}
	if c == nil {
		return nil, domain.ErrConsignmentNotFound
	}
	return c, nil
}

// ConvertToSale closes an active consignment as sold. The selection
// resolves either to the whole loan (Todos) or to explicit per-item
// quantities; whatever was loaned and not selected goes back to stock in
// the same transaction. Concurrent conversions of the same consignment
// are arbitrated by the repository's guarded close, so at most one sale
// is ever recorded per consignment.
func (s *ConsignmentService) ConvertToSale(ctx context.Context, id int64, params ports.ConvertSaleParams) (*domain.Sale, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load consignment: %w", err)
	}
	if c == nil {
		return nil, domain.ErrConsignmentNotFound
	}
	if !c.IsActive() {
		return nil, domain.ErrConsignmentClosed
	}

	method, err := domain.ParsePaymentMethod(params.FormaPagamento)
	if err != nil {
		return nil, err
	}

	sold, err := resolveSelection(c, params)
	if err != nil {
		return nil, err
	}

	sale := &domain.Sale{
		CondicionalID:    &c.ID,
		ClienteID:        &c.ClienteID,
		ClienteNome:      c.ClienteNome,
		FormaPagamento:   method,
		Observacoes:      params.Observacoes,
		DescricaoPermuta: params.DescricaoPermuta,
	}

	bruto := decimal.Zero
	dispositions := make([]ports.LineDisposition, 0, len(c.Itens))
	for i := range c.Itens {
		line := &c.Itens[i]
		qty := sold[line.RoupaID]

		dispositions = append(dispositions, ports.LineDisposition{
			RoupaID:   line.RoupaID,
			Vendida:   qty,
			Devolvida: line.Quantidade - qty,
		})

		if qty == 0 {
			continue
		}

		unit := line.LineValue()
		sale.Itens = append(sale.Itens, domain.SaleItem{
			RoupaID:       line.RoupaID,
			NomeItem:      line.NomeItem,
			Quantidade:    qty,
			PrecoUnitario: unit,
		})
		bruto = bruto.Add(unit.Mul(decimal.NewFromInt(int64(qty))))
	}

	applied, liquido := domain.ApplyDiscount(bruto, params.Desconto, method)
	sale.ValorBruto = bruto
	sale.Desconto = applied
	sale.ValorLiquido = liquido

	if err := sale.Validate(); err != nil {
		return nil, err
	}
	sale.PrepareForStorage()

	if err := s.repo.FinalizeSale(ctx, id, dispositions, sale); err != nil {
		return nil, err
	}

	s.invalidateSalesCaches(ctx)

	s.logger.InfoContext(ctx, "converted consignment to sale",
		slog.Int64("condicional_id", id),
		slog.Int64("venda_id", sale.ID),
		slog.String("forma_pagamento", string(method)),
		slog.String("valor_liquido", liquido.String()))

	return sale, nil
}

// resolveSelection turns the request's item selection into a map of
// quantities sold, keyed by item id. Selections referencing items outside
// the loan or exceeding a line's loaned quantity are rejected.
func resolveSelection(c *domain.Consignment, params ports.ConvertSaleParams) (map[int64]int, error) {
	sold := make(map[int64]int, len(c.Itens))

	if params.Todos {
		for i := range c.Itens {
			sold[c.Itens[i].RoupaID] = c.Itens[i].Quantidade
		}
		return sold, nil
	}

	for _, sel := range params.Itens {
		if sel.Quantidade <= 0 {
			continue
		}
		line := c.LineByRoupaID(sel.RoupaID)
		if line == nil {
			return nil, fmt.Errorf("item %d: %w", sel.RoupaID, domain.ErrItemNotInConsignment)
		}
		sold[sel.RoupaID] += sel.Quantidade
		if sold[sel.RoupaID] > line.Quantidade {
			return nil, fmt.Errorf("item %d: %w", sel.RoupaID, domain.ErrQuantityExceedsLoan)
		}
	}

	if len(sold) == 0 {
		return nil, domain.ErrEmptySelection
	}
	return sold, nil
}

// ReturnAll closes an active consignment with every loaned unit back in
// stock. No sale is recorded.
func (s *ConsignmentService) ReturnAll(ctx context.Context, id int64) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load consignment: %w", err)
	}
	if c == nil {
		return domain.ErrConsignmentNotFound
	}
	if !c.IsActive() {
		return domain.ErrConsignmentClosed
	}

	if err := s.repo.CloseReturned(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "returned consignment",
		slog.Int64("condicional_id", id),
		slog.Int("pecas", c.TotalPecas()))

	return nil
}

// Delete removes a consignment record. Active loans have their units
// restocked by the repository before the record goes away.
func (s *ConsignmentService) Delete(ctx context.Context, id int64) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load consignment: %w", err)
	}
	if c == nil {
		return domain.ErrConsignmentNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete consignment: %w", err)
	}

	s.logger.InfoContext(ctx, "deleted consignment",
		slog.Int64("condicional_id", id),
		slog.Bool("was_active", c.IsActive()))

	return nil
}

// List retrieves consignments with filtering and pagination
func (s *ConsignmentService) List(ctx context.Context, params ports.ConsignmentListParams) (*ports.ConsignmentListResult, error) {
	baseQuery := `
		SELECT id, cliente_id, cliente_nome, data, data_devolucao,
		       devolvido, desfecho
		FROM condicionais
	`

	var conditions []string
	var args []interface{}
	argCount := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf("cliente_nome ILIKE $%d", argCount))
		args = append(args, "%"+params.Search+"%")
		argCount++
	}

	if params.ClienteID > 0 {
		conditions = append(conditions, fmt.Sprintf("cliente_id = $%d", argCount))
		args = append(args, params.ClienteID)
		argCount++
	}

	switch params.Status {
	case string(domain.ConsignmentActive):
		conditions = append(conditions, "devolvido = FALSE")
	case string(domain.ConsignmentSold):
		conditions = append(conditions, "devolvido = TRUE AND desfecho = 'vendido'")
	case string(domain.ConsignmentReturned):
		conditions = append(conditions, "devolvido = TRUE AND desfecho = 'devolvido'")
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM (" + baseQuery + ") as t"
	var totalCount int64
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count consignments: %w", err)
	}

	baseQuery += fmt.Sprintf(" ORDER BY data DESC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	rows, err := s.db.Query(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list consignments: %w", err)
	}
	defer rows.Close()

	var consignments []*domain.Consignment
	ids := make([]int64, 0)
	for rows.Next() {
		c := &domain.Consignment{}
		var desfecho *string
		if err := rows.Scan(&c.ID, &c.ClienteID, &c.ClienteNome, &c.Data,
			&c.DataDevolucao, &c.Devolvido, &desfecho); err != nil {
			return nil, fmt.Errorf("failed to scan consignment: %w", err)
		}
		if desfecho != nil {
			c.Desfecho = domain.Disposition(*desfecho)
		}
		consignments = append(consignments, c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read consignments: %w", err)
	}

	if err := s.loadLines(ctx, consignments, ids); err != nil {
		return nil, err
	}

	var totalPages int
	if params.PageSize > 0 {
		totalPages = int(totalCount) / params.PageSize
		if int(totalCount)%params.PageSize > 0 {
			totalPages++
		}
	}

	return &ports.ConsignmentListResult{
		Consignments: consignments,
		Page:         params.Page,
		PageSize:     params.PageSize,
		TotalCount:   totalCount,
		TotalPages:   totalPages,
	}, nil
}

// loadLines fetches the item lines for a page of consignments in one query.
func (s *ConsignmentService) loadLines(ctx context.Context, consignments []*domain.Consignment, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Consignment, len(consignments))
	for _, c := range consignments {
		byID[c.ID] = c
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, condicional_id, roupas_id, nome_item, quantidade,
		       valor_estimado, quantidade_vendida, quantidade_devolvida
		FROM condicionais_itens
		WHERE condicional_id = ANY($1)
		ORDER BY id`, ids)
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
		if c, ok := byID[line.CondicionalID]; ok {
			c.Itens = append(c.Itens, line)
		}
	}
	return rows.Err()
}

// invalidateSalesCaches drops cached sales history and dashboard views
// after a mutation. Cache failures are logged, never fatal.
func (s *ConsignmentService) invalidateSalesCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, pattern := range []string{"vendas:*", "dashboard:*"} {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate cache",
				slog.String("pattern", pattern),
				slog.Any("error", err))
		}
	}
}
