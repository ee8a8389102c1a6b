// internal/handlers/sales_handler_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mcardoso/brecho-be/internal/core/domain"
	"github.com/mcardoso/brecho-be/internal/core/ports"
	"github.com/mcardoso/brecho-be/internal/handlers"
	"github.com/mcardoso/brecho-be/test/helpers"
	"github.com/mcardoso/brecho-be/test/mocks"
)

func TestSaleHandler_RecordSale(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(*mocks.MockSaleService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name: "records_direct_sale",
			body: `{"forma_pagamento":"Pix","desconto":"5.00","itens":[{"roupas_id":42,"quantidade":1}]}`,
			setupMocks: func(svc *mocks.MockSaleService) {
				svc.EXPECT().
					RecordDirect(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, sale *domain.Sale) error {
						assert.Equal(t, domain.PaymentPix, sale.FormaPagamento)
						require.Len(t, sale.Itens, 1)
						assert.Equal(t, int64(42), sale.Itens[0].RoupaID)
						sale.ID = 77
						sale.ValorBruto = decimal.NewFromFloat(89.90)
						sale.ValorLiquido = decimal.NewFromFloat(84.90)
						return nil
					})
			},
			expectedStatus: http.StatusCreated,
			validateBody: func(t *testing.T, body []byte) {
				var sale domain.Sale
				require.NoError(t, json.Unmarshal(body, &sale))
				assert.Equal(t, int64(77), sale.ID)
				assert.True(t, sale.ValorLiquido.Equal(decimal.NewFromFloat(84.90)))
			},
		},
		{
			name: "rejects_unknown_payment_method",
			body: `{"forma_pagamento":"Bitcoin","desconto":"0","itens":[{"roupas_id":42,"quantidade":1}]}`,
			setupMocks: func(svc *mocks.MockSaleService) {
				svc.EXPECT().
					RecordDirect(gomock.Any(), gomock.Any()).
					Return(domain.ErrUnknownPaymentMethod)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "rejects_barter_with_discount",
			body: `{"forma_pagamento":"Permuta","desconto":"5.00","descricao_permuta":"troca por casaco","itens":[{"roupas_id":42,"quantidade":1}]}`,
			setupMocks: func(svc *mocks.MockSaleService) {
				svc.EXPECT().
					RecordDirect(gomock.Any(), gomock.Any()).
					Return(domain.ErrBarterDiscountNotAllowed)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "returns_409_when_stock_is_gone",
			body: `{"forma_pagamento":"Dinheiro","desconto":"0","itens":[{"roupas_id":42,"quantidade":10}]}`,
			setupMocks: func(svc *mocks.MockSaleService) {
				svc.EXPECT().
					RecordDirect(gomock.Any(), gomock.Any()).
					Return(domain.ErrInsufficientStock)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "rejects_malformed_body",
			body:           `{broken`,
			setupMocks:     func(svc *mocks.MockSaleService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockSaleService(ctrl)
			tt.setupMocks(mockService)

			handler := handlers.NewSaleHandler(mockService, helpers.TestLogger())

			req := httptest.NewRequest("POST", "/api/v1/vendas",
				bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.RecordSale(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestSaleHandler_GetSale(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockSaleService(ctrl)
	handler := handlers.NewSaleHandler(mockService, helpers.TestLogger())

	mockService.EXPECT().
		GetByID(gomock.Any(), int64(55)).
		Return(&domain.Sale{
			ID:             55,
			FormaPagamento: domain.PaymentPix,
			ValorLiquido:   decimal.NewFromFloat(169.80),
		}, nil)

	req := httptest.NewRequest("GET", "/api/v1/vendas/55", nil)
	req.SetPathValue("id", "55")
	w := httptest.NewRecorder()

	handler.GetSale(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var sale domain.Sale
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sale))
	assert.Equal(t, int64(55), sale.ID)
}

func TestSaleHandler_GetSale_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockSaleService(ctrl)
	handler := handlers.NewSaleHandler(mockService, helpers.TestLogger())

	mockService.EXPECT().
		GetByID(gomock.Any(), int64(99)).
		Return(nil, fmt.Errorf("sale 99: %w", domain.ErrNotFound))

	req := httptest.NewRequest("GET", "/api/v1/vendas/99", nil)
	req.SetPathValue("id", "99")
	w := httptest.NewRecorder()

	handler.GetSale(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaleHandler_SalesHistory(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		setupMocks     func(*mocks.MockSaleService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name:  "returns_daily_history",
			query: "periodo=dia",
			setupMocks: func(svc *mocks.MockSaleService) {
				svc.EXPECT().
					History(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, params ports.SaleHistoryParams) (*ports.SaleHistoryResult, error) {
						assert.Equal(t, "dia", params.Period)
						return &ports.SaleHistoryResult{
							Sales:        []domain.Sale{{ID: 55}},
							TotalBruto:   decimal.NewFromFloat(179.80),
							TotalLiquido: decimal.NewFromFloat(169.80),
							TotalPecas:   2,
						}, nil
					})
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				var result ports.SaleHistoryResult
				require.NoError(t, json.Unmarshal(body, &result))
				assert.Len(t, result.Sales, 1)
				assert.Equal(t, 2, result.TotalPecas)
			},
		},
		{
			name:  "passes_custom_period_bounds",
			query: "periodo=personalizado&inicio=2026-08-01T00:00:00Z&fim=2026-08-28T23:59:59Z",
			setupMocks: func(svc *mocks.MockSaleService) {
				svc.EXPECT().
					History(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, params ports.SaleHistoryParams) (*ports.SaleHistoryResult, error) {
						assert.Equal(t, "personalizado", params.Period)
						assert.Equal(t, 2026, params.From.Year())
						assert.Equal(t, time.August, params.To.Month())
						return &ports.SaleHistoryResult{}, nil
					})
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "returns_400_for_unknown_period",
			query: "periodo=quinzena",
			setupMocks: func(svc *mocks.MockSaleService) {
				svc.EXPECT().
					History(gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrInvalidPeriod)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "rejects_malformed_inicio",
			query:          "periodo=personalizado&inicio=28-08-2026",
			setupMocks:     func(svc *mocks.MockSaleService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockSaleService(ctrl)
			tt.setupMocks(mockService)

			handler := handlers.NewSaleHandler(mockService, helpers.TestLogger())

			req := httptest.NewRequest("GET", "/api/v1/vendas/historico?"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.SalesHistory(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}
