// internal/core/services/sale_service_test.go
package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mcardoso/brecho-be/internal/core/domain"
	"github.com/mcardoso/brecho-be/internal/core/ports"
	"github.com/mcardoso/brecho-be/internal/core/services"
	"github.com/mcardoso/brecho-be/test/helpers"
	"github.com/mcardoso/brecho-be/test/mocks"
)

type saleMocks struct {
	repo  *mocks.MockSaleRepository
	items *mocks.MockItemRepository
	cache *mocks.MockCacheRepository
}

func newSaleService(t *testing.T) (*services.SaleService, *saleMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := &saleMocks{
		repo:  mocks.NewMockSaleRepository(ctrl),
		items: mocks.NewMockItemRepository(ctrl),
		cache: mocks.NewMockCacheRepository(ctrl),
	}

	svc := services.NewSaleService(m.repo, m.items, m.cache, helpers.TestLogger())
	return svc, m
}

func TestSaleService_RecordDirect(t *testing.T) {
	t.Run("snapshots_catalog_prices", func(t *testing.T) {
		svc, m := newSaleService(t)

		m.items.EXPECT().
			FindByID(gomock.Any(), int64(10)).
			Return(helpers.CreateTestItem(func(i *domain.Item) {
				i.ID = 10
				i.Preco = decimal.NewFromFloat(89.90)
			}), nil)
		m.repo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, sale *domain.Sale) error {
				assert.True(t, sale.ValorBruto.Equal(decimal.NewFromFloat(179.80)))
				assert.True(t, sale.ValorLiquido.Equal(decimal.NewFromFloat(159.80)))
				assert.Equal(t, "Vestido Floral Midi", sale.Itens[0].NomeItem)
				return nil
			})
		m.cache.EXPECT().DeletePattern(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		sale := &domain.Sale{
			FormaPagamento: domain.PaymentPix,
			Desconto:       decimal.NewFromFloat(20),
			Itens: []domain.SaleItem{
				// client-provided price is ignored
				{RoupaID: 10, Quantidade: 2, PrecoUnitario: decimal.NewFromFloat(1)},
			},
		}

		require.NoError(t, svc.RecordDirect(context.Background(), sale))
	})

	t.Run("insufficient_stock", func(t *testing.T) {
		svc, m := newSaleService(t)

		m.items.EXPECT().
			FindByID(gomock.Any(), int64(10)).
			Return(helpers.CreateTestItem(func(i *domain.Item) { i.ID = 10 }), nil)
		m.repo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			Return(domain.ErrInsufficientStock)

		sale := &domain.Sale{
			FormaPagamento: domain.PaymentCash,
			Itens:          []domain.SaleItem{{RoupaID: 10, Quantidade: 99}},
		}

		err := svc.RecordDirect(context.Background(), sale)
		require.ErrorIs(t, err, domain.ErrInsufficientStock)
	})

	t.Run("unknown_item", func(t *testing.T) {
		svc, m := newSaleService(t)

		m.items.EXPECT().
			FindByID(gomock.Any(), int64(404)).
			Return(nil, nil)

		sale := &domain.Sale{
			FormaPagamento: domain.PaymentPix,
			Itens:          []domain.SaleItem{{RoupaID: 404, Quantidade: 1}},
		}

		err := svc.RecordDirect(context.Background(), sale)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("empty_items", func(t *testing.T) {
		svc, _ := newSaleService(t)

		err := svc.RecordDirect(context.Background(), &domain.Sale{
			FormaPagamento: domain.PaymentPix,
		})
		require.ErrorIs(t, err, domain.ErrEmptySelection)
	})
}

func TestSaleService_History(t *testing.T) {
	sales := []domain.Sale{
		{
			ID:           1,
			ValorBruto:   decimal.NewFromFloat(100),
			Desconto:     decimal.NewFromFloat(10),
			ValorLiquido: decimal.NewFromFloat(90),
			Itens:        []domain.SaleItem{{RoupaID: 10, Quantidade: 2}},
		},
		{
			ID:           2,
			ValorBruto:   decimal.NewFromFloat(45),
			Desconto:     decimal.Zero,
			ValorLiquido: decimal.NewFromFloat(45),
			Itens:        []domain.SaleItem{{RoupaID: 11, Quantidade: 1}},
		},
	}

	t.Run("aggregates_period_totals", func(t *testing.T) {
		svc, m := newSaleService(t)

		// simulate a cache miss by executing the fetch callback
		m.cache.EXPECT().
			GetOrSet(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, key string, dest interface{},
				fetch func() (interface{}, error), ttl time.Duration) error {
				fetched, err := fetch()
				if err != nil {
					return err
				}
				*dest.(*ports.SaleHistoryResult) = *fetched.(*ports.SaleHistoryResult)
				return nil
			})
		m.repo.EXPECT().
			FindInPeriod(gomock.Any(), gomock.Any(), gomock.Any(), 200).
			Return(sales, nil)

		result, err := svc.History(context.Background(), ports.SaleHistoryParams{Period: "dia"})

		require.NoError(t, err)
		assert.Len(t, result.Sales, 2)
		assert.True(t, result.TotalBruto.Equal(decimal.NewFromFloat(145)))
		assert.True(t, result.TotalDesconto.Equal(decimal.NewFromFloat(10)))
		assert.True(t, result.TotalLiquido.Equal(decimal.NewFromFloat(135)))
		assert.Equal(t, 3, result.TotalPecas)
	})

	t.Run("falls_back_to_database_when_cache_fails", func(t *testing.T) {
		svc, m := newSaleService(t)

		m.cache.EXPECT().
			GetOrSet(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("redis: connection refused"))
		m.repo.EXPECT().
			FindInPeriod(gomock.Any(), gomock.Any(), gomock.Any(), 200).
			Return(sales, nil)

		result, err := svc.History(context.Background(), ports.SaleHistoryParams{Period: "semana"})
		require.NoError(t, err)
		assert.Len(t, result.Sales, 2)
	})

	t.Run("rejects_unknown_period", func(t *testing.T) {
		svc, _ := newSaleService(t)

		_, err := svc.History(context.Background(), ports.SaleHistoryParams{Period: "trimestre"})
		require.Error(t, err)
	})

	t.Run("rejects_inverted_custom_period", func(t *testing.T) {
		svc, _ := newSaleService(t)

		now := time.Now()
		_, err := svc.History(context.Background(), ports.SaleHistoryParams{
			Period: "personalizado",
			From:   now,
			To:     now.AddDate(0, 0, -7),
		})
		require.Error(t, err)
	})
}
