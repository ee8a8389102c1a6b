// internal/core/services/consignment_service_test.go
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

type consignmentMocks struct {
	repo    *mocks.MockConsignmentRepository
	items   *mocks.MockItemRepository
	clients *mocks.MockClientRepository
	cache   *mocks.MockCacheRepository
}

func newConsignmentService(t *testing.T) (*services.ConsignmentService, *consignmentMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := &consignmentMocks{
		repo:    mocks.NewMockConsignmentRepository(ctrl),
		items:   mocks.NewMockItemRepository(ctrl),
		clients: mocks.NewMockClientRepository(ctrl),
		cache:   mocks.NewMockCacheRepository(ctrl),
	}
	m.cache.EXPECT().DeletePattern(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := services.NewConsignmentService(m.repo, m.items, m.clients, m.cache, nil, helpers.TestLogger())
	return svc, m
}

func TestConsignmentService_Create(t *testing.T) {
	tests := []struct {
		name          string
		consignment   *domain.Consignment
		setupMocks    func(*consignmentMocks)
		expectedError error
	}{
		{
			name: "successful_create_snapshots_prices",
			consignment: &domain.Consignment{
				ClienteID:     1,
				DataDevolucao: time.Now().AddDate(0, 0, 7),
				Itens: []domain.ConsignmentItem{
					{RoupaID: 10, Quantidade: 2},
				},
			},
			setupMocks: func(m *consignmentMocks) {
				m.clients.EXPECT().
					FindByID(gomock.Any(), int64(1)).
					Return(helpers.CreateTestClient(), nil)
				m.items.EXPECT().
					FindByID(gomock.Any(), int64(10)).
					Return(helpers.CreateTestItem(func(i *domain.Item) {
						i.ID = 10
						i.Preco = decimal.NewFromFloat(89.90)
					}), nil)
				m.repo.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, c *domain.Consignment) error {
						require.NotNil(t, c.Itens[0].ValorEstimado)
						assert.True(t, c.Itens[0].ValorEstimado.Equal(decimal.NewFromFloat(89.90)))
						assert.Equal(t, "Maria da Silva", c.ClienteNome)
						return nil
					})
			},
		},
		{
			name: "empty_selection_rejected",
			consignment: &domain.Consignment{
				ClienteID:     1,
				DataDevolucao: time.Now().AddDate(0, 0, 7),
			},
			setupMocks:    func(m *consignmentMocks) {},
			expectedError: domain.ErrEmptySelection,
		},
		{
			name: "unknown_client",
			consignment: &domain.Consignment{
				ClienteID:     42,
				DataDevolucao: time.Now().AddDate(0, 0, 7),
				Itens: []domain.ConsignmentItem{
					{RoupaID: 10, Quantidade: 1},
				},
			},
			setupMocks: func(m *consignmentMocks) {
				m.clients.EXPECT().
					FindByID(gomock.Any(), int64(42)).
					Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name: "insufficient_stock_fails_whole_loan",
			consignment: &domain.Consignment{
				ClienteID:     1,
				DataDevolucao: time.Now().AddDate(0, 0, 7),
				Itens: []domain.ConsignmentItem{
					{RoupaID: 10, Quantidade: 99},
				},
			},
			setupMocks: func(m *consignmentMocks) {
				m.clients.EXPECT().
					FindByID(gomock.Any(), int64(1)).
					Return(helpers.CreateTestClient(), nil)
				m.items.EXPECT().
					FindByID(gomock.Any(), int64(10)).
					Return(helpers.CreateTestItem(func(i *domain.Item) { i.ID = 10 }), nil)
				m.repo.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					Return(domain.ErrInsufficientStock)
			},
			expectedError: domain.ErrInsufficientStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newConsignmentService(t)
			tt.setupMocks(m)

			err := svc.Create(context.Background(), tt.consignment)

			if tt.expectedError != nil {
				require.ErrorIs(t, err, tt.expectedError)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConsignmentService_ConvertToSale_Todos(t *testing.T) {
	svc, m := newConsignmentService(t)

	// 2x 89.90 + 1x 45.00 = 224.80 gross
	m.repo.EXPECT().
		FindByID(gomock.Any(), int64(1)).
		Return(helpers.CreateTestConsignment(), nil)
	m.repo.EXPECT().
		FinalizeSale(gomock.Any(), int64(1), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, id int64, dispositions []ports.LineDisposition, sale *domain.Sale) error {
			require.Len(t, dispositions, 2)
			for _, d := range dispositions {
				assert.Equal(t, 0, d.Devolvida)
			}
			assert.True(t, sale.ValorBruto.Equal(decimal.NewFromFloat(224.80)))
			assert.True(t, sale.Desconto.Equal(decimal.NewFromFloat(24.80)))
			assert.True(t, sale.ValorLiquido.Equal(decimal.NewFromFloat(200.00)))
			sale.ID = 77
			return nil
		})

	sale, err := svc.ConvertToSale(context.Background(), 1, ports.ConvertSaleParams{
		Todos:          true,
		FormaPagamento: "Pix",
		Desconto:       decimal.NewFromFloat(24.80),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(77), sale.ID)
	assert.Equal(t, 3, sale.TotalQuantidade())
	require.NotNil(t, sale.CondicionalID)
	assert.Equal(t, int64(1), *sale.CondicionalID)
}

func TestConsignmentService_ConvertToSale_PartialReturnsRemainder(t *testing.T) {
	svc, m := newConsignmentService(t)

	m.repo.EXPECT().
		FindByID(gomock.Any(), int64(1)).
		Return(helpers.CreateTestConsignment(), nil)
	m.repo.EXPECT().
		FinalizeSale(gomock.Any(), int64(1), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, id int64, dispositions []ports.LineDisposition, sale *domain.Sale) error {
			byItem := make(map[int64]ports.LineDisposition)
			for _, d := range dispositions {
				byItem[d.RoupaID] = d
			}
			// one of two loaned units sold, one back to stock
			assert.Equal(t, 1, byItem[10].Vendida)
			assert.Equal(t, 1, byItem[10].Devolvida)
			// untouched line fully returned
			assert.Equal(t, 0, byItem[11].Vendida)
			assert.Equal(t, 1, byItem[11].Devolvida)

			assert.True(t, sale.ValorBruto.Equal(decimal.NewFromFloat(89.90)))
			return nil
		})

	sale, err := svc.ConvertToSale(context.Background(), 1, ports.ConvertSaleParams{
		Itens:          []ports.SaleSelection{{RoupaID: 10, Quantidade: 1}},
		FormaPagamento: "Dinheiro",
	})

	require.NoError(t, err)
	require.Len(t, sale.Itens, 1)
	assert.Equal(t, int64(10), sale.Itens[0].RoupaID)
}

func TestConsignmentService_ConvertToSale_Barter(t *testing.T) {
	t.Run("requires_description", func(t *testing.T) {
		svc, m := newConsignmentService(t)
		m.repo.EXPECT().
			FindByID(gomock.Any(), int64(1)).
			Return(helpers.CreateTestConsignment(), nil)

		_, err := svc.ConvertToSale(context.Background(), 1, ports.ConvertSaleParams{
			Todos:          true,
			FormaPagamento: "Permuta",
		})
		require.ErrorIs(t, err, domain.ErrBarterDescriptionRequired)
	})

	t.Run("discount_is_forced_to_zero", func(t *testing.T) {
		svc, m := newConsignmentService(t)
		m.repo.EXPECT().
			FindByID(gomock.Any(), int64(1)).
			Return(helpers.CreateTestConsignment(), nil)
		m.repo.EXPECT().
			FinalizeSale(gomock.Any(), int64(1), gomock.Any(), gomock.Any()).
			Return(nil)

		sale, err := svc.ConvertToSale(context.Background(), 1, ports.ConvertSaleParams{
			Todos:            true,
			FormaPagamento:   "Permuta",
			Desconto:         decimal.NewFromFloat(50),
			DescricaoPermuta: "Troca por casaco de lã",
		})

		require.NoError(t, err)
		assert.True(t, sale.Desconto.IsZero())
		assert.True(t, sale.ValorLiquido.Equal(sale.ValorBruto))
	})
}

func TestConsignmentService_ConvertToSale_Errors(t *testing.T) {
	tests := []struct {
		name          string
		params        ports.ConvertSaleParams
		setupMocks    func(*consignmentMocks)
		expectedError error
	}{
		{
			name:   "consignment_not_found",
			params: ports.ConvertSaleParams{Todos: true, FormaPagamento: "Pix"},
			setupMocks: func(m *consignmentMocks) {
				m.repo.EXPECT().FindByID(gomock.Any(), int64(1)).Return(nil, nil)
			},
			expectedError: domain.ErrConsignmentNotFound,
		},
		{
			name:   "already_closed",
			params: ports.ConvertSaleParams{Todos: true, FormaPagamento: "Pix"},
			setupMocks: func(m *consignmentMocks) {
				m.repo.EXPECT().
					FindByID(gomock.Any(), int64(1)).
					Return(helpers.CreateTestConsignment(func(c *domain.Consignment) {
						c.Devolvido = true
						c.Desfecho = domain.DispositionSold
					}), nil)
			},
			expectedError: domain.ErrConsignmentClosed,
		},
		{
			name:   "unknown_payment_method",
			params: ports.ConvertSaleParams{Todos: true, FormaPagamento: "Criptomoeda"},
			setupMocks: func(m *consignmentMocks) {
				m.repo.EXPECT().
					FindByID(gomock.Any(), int64(1)).
					Return(helpers.CreateTestConsignment(), nil)
			},
			expectedError: domain.ErrUnknownPaymentMethod,
		},
		{
			name: "item_not_in_consignment",
			params: ports.ConvertSaleParams{
				Itens:          []ports.SaleSelection{{RoupaID: 999, Quantidade: 1}},
				FormaPagamento: "Pix",
			},
			setupMocks: func(m *consignmentMocks) {
				m.repo.EXPECT().
					FindByID(gomock.Any(), int64(1)).
					Return(helpers.CreateTestConsignment(), nil)
			},
			expectedError: domain.ErrItemNotInConsignment,
		},
		{
			name: "quantity_exceeds_loan",
			params: ports.ConvertSaleParams{
				Itens:          []ports.SaleSelection{{RoupaID: 10, Quantidade: 5}},
				FormaPagamento: "Pix",
			},
			setupMocks: func(m *consignmentMocks) {
				m.repo.EXPECT().
					FindByID(gomock.Any(), int64(1)).
					Return(helpers.CreateTestConsignment(), nil)
			},
			expectedError: domain.ErrQuantityExceedsLoan,
		},
		{
			name: "empty_effective_selection",
			params: ports.ConvertSaleParams{
				Itens:          []ports.SaleSelection{{RoupaID: 10, Quantidade: 0}},
				FormaPagamento: "Pix",
			},
			setupMocks: func(m *consignmentMocks) {
				m.repo.EXPECT().
					FindByID(gomock.Any(), int64(1)).
					Return(helpers.CreateTestConsignment(), nil)
			},
			expectedError: domain.ErrEmptySelection,
		},
		{
			name:   "lost_race_against_concurrent_close",
			params: ports.ConvertSaleParams{Todos: true, FormaPagamento: "Pix"},
			setupMocks: func(m *consignmentMocks) {
				m.repo.EXPECT().
					FindByID(gomock.Any(), int64(1)).
					Return(helpers.CreateTestConsignment(), nil)
				m.repo.EXPECT().
					FinalizeSale(gomock.Any(), int64(1), gomock.Any(), gomock.Any()).
					Return(domain.ErrConsignmentClosed)
			},
			expectedError: domain.ErrConsignmentClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newConsignmentService(t)
			tt.setupMocks(m)

			_, err := svc.ConvertToSale(context.Background(), 1, tt.params)
			require.ErrorIs(t, err, tt.expectedError)
		})
	}
}

func TestConsignmentService_ReturnAll(t *testing.T) {
	t.Run("closes_active_consignment", func(t *testing.T) {
		svc, m := newConsignmentService(t)
		m.repo.EXPECT().
			FindByID(gomock.Any(), int64(1)).
			Return(helpers.CreateTestConsignment(), nil)
		m.repo.EXPECT().
			CloseReturned(gomock.Any(), int64(1)).
			Return(nil)

		require.NoError(t, svc.ReturnAll(context.Background(), 1))
	})

	t.Run("rejects_already_closed", func(t *testing.T) {
		svc, m := newConsignmentService(t)
		m.repo.EXPECT().
			FindByID(gomock.Any(), int64(1)).
			Return(helpers.CreateTestConsignment(func(c *domain.Consignment) {
				c.Devolvido = true
				c.Desfecho = domain.DispositionReturned
			}), nil)

		err := svc.ReturnAll(context.Background(), 1)
		require.ErrorIs(t, err, domain.ErrConsignmentClosed)
	})

	t.Run("not_found", func(t *testing.T) {
		svc, m := newConsignmentService(t)
		m.repo.EXPECT().FindByID(gomock.Any(), int64(9)).Return(nil, nil)

		err := svc.ReturnAll(context.Background(), 9)
		require.ErrorIs(t, err, domain.ErrConsignmentNotFound)
	})
}

func TestConsignmentService_Delete(t *testing.T) {
	svc, m := newConsignmentService(t)
	m.repo.EXPECT().
		FindByID(gomock.Any(), int64(1)).
		Return(helpers.CreateTestConsignment(), nil)
	m.repo.EXPECT().
		Delete(gomock.Any(), int64(1)).
		Return(errors.New("connection reset"))

	err := svc.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
