// internal/handlers/items_handler_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

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

func TestItemHandler_GetItem(t *testing.T) {
	tests := []struct {
		name           string
		itemID         string
		setupMocks     func(*mocks.MockItemService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name:   "returns_item_when_found",
			itemID: "42",
			setupMocks: func(svc *mocks.MockItemService) {
				svc.EXPECT().
					GetByID(gomock.Any(), int64(42)).
					Return(&domain.Item{
						ID:         42,
						Nome:       "Vestido Floral",
						Tipo:       "vestido",
						Tamanho:    "M",
						Cor:        "azul",
						Preco:      decimal.NewFromFloat(89.90),
						Quantidade: 3,
					}, nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				var item domain.Item
				require.NoError(t, json.Unmarshal(body, &item))
				assert.Equal(t, int64(42), item.ID)
				assert.Equal(t, "Vestido Floral", item.Nome)
			},
		},
		{
			name:   "returns_404_when_missing",
			itemID: "99",
			setupMocks: func(svc *mocks.MockItemService) {
				svc.EXPECT().
					GetByID(gomock.Any(), int64(99)).
					Return(nil, fmt.Errorf("item 99: %w", domain.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "rejects_invalid_id",
			itemID:         "abc",
			setupMocks:     func(svc *mocks.MockItemService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockItemService(ctrl)
			tt.setupMocks(mockService)

			handler := handlers.NewItemHandler(mockService, helpers.TestLogger())

			req := httptest.NewRequest("GET", "/api/v1/roupas/"+tt.itemID, nil)
			req.SetPathValue("id", tt.itemID)
			w := httptest.NewRecorder()

			handler.GetItem(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestItemHandler_ListItems(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockItemService(ctrl)
	handler := handlers.NewItemHandler(mockService, helpers.TestLogger())

	mockService.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, params ports.ItemListParams) (*ports.ItemListResult, error) {
			assert.Equal(t, "vestido", params.Tipo)
			assert.Equal(t, 2, params.Page)
			assert.Equal(t, 10, params.PageSize)
			assert.True(t, params.OnlyAvailable)
			return &ports.ItemListResult{
				Items:      []*domain.Item{{ID: 1, Nome: "Vestido Floral"}},
				Page:       params.Page,
				PageSize:   params.PageSize,
				TotalCount: 1,
				TotalPages: 1,
			}, nil
		})

	req := httptest.NewRequest("GET",
		"/api/v1/roupas?tipo=vestido&page=2&limit=10&disponiveis=true", nil)
	w := httptest.NewRecorder()

	handler.ListItems(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result ports.ItemListResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Len(t, result.Items, 1)
	assert.Equal(t, int64(1), result.TotalCount)
}

func TestItemHandler_CreateItem(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(*mocks.MockItemService)
		expectedStatus int
	}{
		{
			name: "creates_valid_item",
			body: `{"nome":"Blusa de Seda","tipo":"blusa","tamanho":"P","cor":"branco","preco":"45.00","quantidade":2}`,
			setupMocks: func(svc *mocks.MockItemService) {
				svc.EXPECT().
					SaveItem(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, item *domain.Item) error {
						assert.Equal(t, "Blusa de Seda", item.Nome)
						assert.Equal(t, 2, item.Quantidade)
						item.ID = 7
						return nil
					})
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "rejects_missing_nome",
			body:           `{"tipo":"blusa","tamanho":"P","cor":"branco","preco":"45.00"}`,
			setupMocks:     func(svc *mocks.MockItemService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "rejects_malformed_body",
			body:           `{not json`,
			setupMocks:     func(svc *mocks.MockItemService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockItemService(ctrl)
			tt.setupMocks(mockService)

			handler := handlers.NewItemHandler(mockService, helpers.TestLogger())

			req := httptest.NewRequest("POST", "/api/v1/roupas",
				bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.CreateItem(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestItemHandler_DeleteItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockItemService(ctrl)
	handler := handlers.NewItemHandler(mockService, helpers.TestLogger())

	mockService.EXPECT().
		DeleteItem(gomock.Any(), int64(5), true).
		Return(nil)

	req := httptest.NewRequest("DELETE", "/api/v1/roupas/5?permanent=true", nil)
	req.SetPathValue("id", "5")
	w := httptest.NewRecorder()

	handler.DeleteItem(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["permanent"])
}
