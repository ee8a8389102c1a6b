// internal/core/services/sales.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcardoso/brecho-be/internal/core/domain"
	"github.com/mcardoso/brecho-be/internal/core/ports"
)

// historyLimit caps how many sales a single history request returns.
const historyLimit = 200

// historyCacheTTL bounds staleness of the cached history between
// invalidations.
const historyCacheTTL = 5 * time.Minute

// SaleService handles the sales ledger: direct sales and period reports.
type SaleService struct {
	repo   ports.SaleRepository
	items  ports.ItemRepository
	cache  ports.CacheRepository
	logger *slog.Logger
}

var _ ports.SaleService = (*SaleService)(nil)

// NewSaleService creates a new sale service
func NewSaleService(repo ports.SaleRepository, items ports.ItemRepository,
	cache ports.CacheRepository, logger *slog.Logger) *SaleService {
	return &SaleService{
		repo:   repo,
		items:  items,
		cache:  cache,
		logger: logger.With(slog.String("service", "sales")),
	}
}

// RecordDirect records a sale straight from free stock. Prices and names
// are snapshotted from the catalog at sale time; client-provided values
// are ignored. Stock is decremented atomically by the repository.
func (s *SaleService) RecordDirect(ctx context.Context, sale *domain.Sale) error {
	method, err := domain.ParsePaymentMethod(string(sale.FormaPagamento))
	if err != nil {
		return err
	}
	if len(sale.Itens) == 0 {
		return domain.ErrEmptySelection
	}

	bruto := decimal.Zero
	for i := range sale.Itens {
		line := &sale.Itens[i]
		if line.Quantidade <= 0 {
			return domain.ErrEmptySelection
		}

		item, err := s.items.FindByID(ctx, line.RoupaID)
		if err != nil {
			return fmt.Errorf("failed to load item %d: %w", line.RoupaID, err)
		}
		if item == nil {
			return fmt.Errorf("item %d: %w", line.RoupaID, domain.ErrNotFound)
		}

		line.NomeItem = item.Nome
		line.PrecoUnitario = item.Preco
		bruto = bruto.Add(item.Preco.Mul(decimal.NewFromInt(int64(line.Quantidade))))
	}

	applied, liquido := domain.ApplyDiscount(bruto, sale.Desconto, method)
	sale.ValorBruto = bruto
	sale.Desconto = applied
	sale.ValorLiquido = liquido

	if err := sale.Validate(); err != nil {
		return err
	}
	sale.PrepareForStorage()

	if err := s.repo.Save(ctx, sale); err != nil {
		return err
	}

	s.invalidateCaches(ctx)

	s.logger.InfoContext(ctx, "recorded direct sale",
		slog.Int64("venda_id", sale.ID),
		slog.String("forma_pagamento", string(method)),
		slog.String("valor_liquido", liquido.String()))

	return nil
}

// GetByID retrieves a sale with its lines
func (s *SaleService) GetByID(ctx context.Context, id int64) (*domain.Sale, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	if sale == nil {
		return nil, fmt.Errorf("sale %d: %w", id, domain.ErrNotFound)
	}
	return sale, nil
}

// History returns the sales for a reporting period, newest first, capped
// at historyLimit, with period totals. Results are served through the
// cache; mutations invalidate it.
func (s *SaleService) History(ctx context.Context, params ports.SaleHistoryParams) (*ports.SaleHistoryResult, error) {
	from, to, err := resolvePeriod(params, time.Now())
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("vendas:history:%s:%d:%d", params.Period, from.Unix(), to.Unix())

	var result ports.SaleHistoryResult
	if s.cache != nil {
		err := s.cache.GetOrSet(ctx, key, &result, func() (interface{}, error) {
			return s.buildHistory(ctx, from, to)
		}, historyCacheTTL)
		if err == nil {
			return &result, nil
		}
		s.logger.WarnContext(ctx, "cache unavailable, reading history from database",
			slog.Any("error", err))
	}

	built, err := s.buildHistory(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return built, nil
}

func (s *SaleService) buildHistory(ctx context.Context, from, to time.Time) (*ports.SaleHistoryResult, error) {
	sales, err := s.repo.FindInPeriod(ctx, from, to, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	result := &ports.SaleHistoryResult{
		Sales:         sales,
		TotalBruto:    decimal.Zero,
		TotalDesconto: decimal.Zero,
		TotalLiquido:  decimal.Zero,
		From:          from,
		To:            to,
	}
	for i := range sales {
		result.TotalBruto = result.TotalBruto.Add(sales[i].ValorBruto)
		result.TotalDesconto = result.TotalDesconto.Add(sales[i].Desconto)
		result.TotalLiquido = result.TotalLiquido.Add(sales[i].ValorLiquido)
		result.TotalPecas += sales[i].TotalQuantidade()
	}
	return result, nil
}

// resolvePeriod maps a named period onto a [from, to) window.
func resolvePeriod(params ports.SaleHistoryParams, now time.Time) (time.Time, time.Time, error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch params.Period {
	case "", "dia":
		return startOfDay, startOfDay.AddDate(0, 0, 1), nil
	case "semana":
		return startOfDay.AddDate(0, 0, -6), startOfDay.AddDate(0, 0, 1), nil
	case "mes":
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()),
			startOfDay.AddDate(0, 0, 1), nil
	case "ano":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()),
			startOfDay.AddDate(0, 0, 1), nil
	case "personalizado":
		if params.From.IsZero() || params.To.IsZero() || !params.To.After(params.From) {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: custom period needs inicio < fim", domain.ErrInvalidPeriod)
		}
		return params.From, params.To, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidPeriod, params.Period)
	}
}

func (s *SaleService) invalidateCaches(ctx context.Context) {
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
