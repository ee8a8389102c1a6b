// internal/handlers/consignments_handler_test.go
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

func activeConsignment() *domain.Consignment {
	price := decimal.NewFromFloat(89.90)
	return &domain.Consignment{
		ID:            10,
		ClienteID:     3,
		ClienteNome:   "Maria Souza",
		Data:          time.Now(),
		DataDevolucao: time.Now().Add(7 * 24 * time.Hour),
		Itens: []domain.ConsignmentItem{
			{ID: 1, CondicionalID: 10, RoupaID: 42, NomeItem: "Vestido Floral",
				Quantidade: 2, ValorEstimado: &price},
		},
	}
}

func TestConsignmentHandler_CreateConsignment(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(*mocks.MockConsignmentService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name: "creates_consignment_and_derives_status",
			body: fmt.Sprintf(
				`{"cliente_id":3,"data_devolucao":%q,"itens":[{"roupas_id":42,"quantidade":2}]}`,
				time.Now().Add(7*24*time.Hour).Format(time.RFC3339)),
			setupMocks: func(svc *mocks.MockConsignmentService) {
				svc.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, c *domain.Consignment) error {
						assert.Equal(t, int64(3), c.ClienteID)
						require.Len(t, c.Itens, 1)
						assert.Equal(t, int64(42), c.Itens[0].RoupaID)
						assert.Equal(t, 2, c.Itens[0].Quantidade)
						c.ID = 10
						c.ClienteNome = "Maria Souza"
						return nil
					})
			},
			expectedStatus: http.StatusCreated,
			validateBody: func(t *testing.T, body []byte) {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, "ativo", resp["status"])
				assert.Equal(t, float64(2), resp["total_pecas"])
			},
		},
		{
			name: "returns_409_when_stock_is_gone",
			body: fmt.Sprintf(
				`{"cliente_id":3,"data_devolucao":%q,"itens":[{"roupas_id":42,"quantidade":5}]}`,
				time.Now().Add(24*time.Hour).Format(time.RFC3339)),
			setupMocks: func(svc *mocks.MockConsignmentService) {
				svc.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Return(domain.ErrInsufficientStock)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "returns_400_for_past_deadline",
			body: fmt.Sprintf(
				`{"cliente_id":3,"data_devolucao":%q,"itens":[{"roupas_id":42,"quantidade":1}]}`,
				time.Now().Add(-24*time.Hour).Format(time.RFC3339)),
			setupMocks: func(svc *mocks.MockConsignmentService) {
				svc.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Return(domain.ErrPastDeadline)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "rejects_malformed_body",
			body:           `{broken`,
			setupMocks:     func(svc *mocks.MockConsignmentService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockConsignmentService(ctrl)
			tt.setupMocks(mockService)

			handler := handlers.NewConsignmentHandler(mockService, helpers.TestLogger())

			req := httptest.NewRequest("POST", "/api/v1/condicionais",
				bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.CreateConsignment(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestConsignmentHandler_GetConsignment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockConsignmentService(ctrl)
	handler := handlers.NewConsignmentHandler(mockService, helpers.TestLogger())

	mockService.EXPECT().
		GetByID(gomock.Any(), int64(10)).
		Return(activeConsignment(), nil)

	req := httptest.NewRequest("GET", "/api/v1/condicionais/10", nil)
	req.SetPathValue("id", "10")
	w := httptest.NewRecorder()

	handler.GetConsignment(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ativo", resp["status"])
	assert.Equal(t, "Maria Souza", resp["cliente_nome"])
	assert.InDelta(t, 179.80, mustFloat(t, resp["valor_estimado_total"]), 0.001)
}

func TestConsignmentHandler_GetConsignment_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockConsignmentService(ctrl)
	handler := handlers.NewConsignmentHandler(mockService, helpers.TestLogger())

	mockService.EXPECT().
		GetByID(gomock.Any(), int64(99)).
		Return(nil, fmt.Errorf("consignment 99: %w", domain.ErrConsignmentNotFound))

	req := httptest.NewRequest("GET", "/api/v1/condicionais/99", nil)
	req.SetPathValue("id", "99")
	w := httptest.NewRecorder()

	handler.GetConsignment(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConsignmentHandler_ConvertToSale(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(*mocks.MockConsignmentService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name: "converts_whole_loan",
			body: `{"itens_vendidos":"todos","forma_pagamento":"Pix","desconto":"10.00"}`,
			setupMocks: func(svc *mocks.MockConsignmentService) {
				condID := int64(10)
				svc.EXPECT().
					ConvertToSale(gomock.Any(), int64(10), gomock.Any()).
					DoAndReturn(func(_ any, _ int64, params ports.ConvertSaleParams) (*domain.Sale, error) {
						assert.True(t, params.Todos)
						assert.Equal(t, "Pix", params.FormaPagamento)
						assert.True(t, params.Desconto.Equal(decimal.NewFromFloat(10.00)))
						return &domain.Sale{
							ID:             55,
							CondicionalID:  &condID,
							FormaPagamento: domain.PaymentPix,
							ValorBruto:     decimal.NewFromFloat(179.80),
							Desconto:       decimal.NewFromFloat(10.00),
							ValorLiquido:   decimal.NewFromFloat(169.80),
						}, nil
					})
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				var sale domain.Sale
				require.NoError(t, json.Unmarshal(body, &sale))
				assert.Equal(t, int64(55), sale.ID)
				assert.True(t, sale.ValorLiquido.Equal(decimal.NewFromFloat(169.80)))
			},
		},
		{
			name: "converts_partial_selection",
			body: `{"itens_vendidos":[{"roupas_id":42,"quantidade":1}],"forma_pagamento":"Dinheiro","desconto":"0"}`,
			setupMocks: func(svc *mocks.MockConsignmentService) {
				svc.EXPECT().
					ConvertToSale(gomock.Any(), int64(10), gomock.Any()).
					DoAndReturn(func(_ any, _ int64, params ports.ConvertSaleParams) (*domain.Sale, error) {
						assert.False(t, params.Todos)
						require.Len(t, params.Itens, 1)
						assert.Equal(t, int64(42), params.Itens[0].RoupaID)
						assert.Equal(t, 1, params.Itens[0].Quantidade)
						return &domain.Sale{ID: 56, FormaPagamento: domain.PaymentCash}, nil
					})
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "returns_409_when_already_closed",
			body: `{"itens_vendidos":"todos","forma_pagamento":"Pix","desconto":"0"}`,
			setupMocks: func(svc *mocks.MockConsignmentService) {
				svc.EXPECT().
					ConvertToSale(gomock.Any(), int64(10), gomock.Any()).
					Return(nil, domain.ErrConsignmentClosed)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "returns_400_for_barter_without_description",
			body: `{"itens_vendidos":"todos","forma_pagamento":"Permuta","desconto":"0"}`,
			setupMocks: func(svc *mocks.MockConsignmentService) {
				svc.EXPECT().
					ConvertToSale(gomock.Any(), int64(10), gomock.Any()).
					Return(nil, domain.ErrBarterDescriptionRequired)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "returns_400_when_selection_exceeds_loan",
			body: `{"itens_vendidos":[{"roupas_id":42,"quantidade":9}],"forma_pagamento":"Pix","desconto":"0"}`,
			setupMocks: func(svc *mocks.MockConsignmentService) {
				svc.EXPECT().
					ConvertToSale(gomock.Any(), int64(10), gomock.Any()).
					Return(nil, domain.ErrQuantityExceedsLoan)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "rejects_unknown_sentinel",
			body:           `{"itens_vendidos":"alguns","forma_pagamento":"Pix","desconto":"0"}`,
			setupMocks:     func(svc *mocks.MockConsignmentService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "treats_missing_selection_as_empty",
			body: `{"forma_pagamento":"Pix","desconto":"0"}`,
			setupMocks: func(svc *mocks.MockConsignmentService) {
				svc.EXPECT().
					ConvertToSale(gomock.Any(), int64(10), gomock.Any()).
					DoAndReturn(func(_ any, _ int64, params ports.ConvertSaleParams) (*domain.Sale, error) {
						assert.False(t, params.Todos)
						assert.Empty(t, params.Itens)
						return nil, domain.ErrEmptySelection
					})
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockConsignmentService(ctrl)
			tt.setupMocks(mockService)

			handler := handlers.NewConsignmentHandler(mockService, helpers.TestLogger())

			req := httptest.NewRequest("POST", "/api/v1/condicionais/10/converter-venda",
				bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("id", "10")
			w := httptest.NewRecorder()

			handler.ConvertToSale(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestConsignmentHandler_ReturnAll(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(*mocks.MockConsignmentService)
		expectedStatus int
	}{
		{
			name: "closes_consignment_as_returned",
			setupMocks: func(svc *mocks.MockConsignmentService) {
				svc.EXPECT().
					ReturnAll(gomock.Any(), int64(10)).
					Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "returns_409_when_already_closed",
			setupMocks: func(svc *mocks.MockConsignmentService) {
				svc.EXPECT().
					ReturnAll(gomock.Any(), int64(10)).
					Return(domain.ErrConsignmentClosed)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "returns_404_when_missing",
			setupMocks: func(svc *mocks.MockConsignmentService) {
				svc.EXPECT().
					ReturnAll(gomock.Any(), int64(10)).
					Return(domain.ErrConsignmentNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockConsignmentService(ctrl)
			tt.setupMocks(mockService)

			handler := handlers.NewConsignmentHandler(mockService, helpers.TestLogger())

			req := httptest.NewRequest("POST", "/api/v1/condicionais/10/finalizar", nil)
			req.SetPathValue("id", "10")
			w := httptest.NewRecorder()

			handler.ReturnAll(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func mustFloat(t *testing.T, v any) float64 {
	t.Helper()
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := decimal.NewFromString(n)
		require.NoError(t, err)
		res, _ := f.Float64()
		return res
	default:
		t.Fatalf("unexpected numeric type %T", v)
		return 0
	}
}
