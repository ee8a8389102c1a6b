//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcardoso/brecho-be/internal/adapters/db"
	redis_a "github.com/mcardoso/brecho-be/internal/adapters/redis_adapter"
	"github.com/mcardoso/brecho-be/internal/core/services"
	"github.com/mcardoso/brecho-be/internal/handlers"
	"github.com/mcardoso/brecho-be/test/helpers"
)

type ConsignmentE2ESuite struct {
	suite.Suite
	server    *httptest.Server
	client    *http.Client
	baseURL   string
	testDB    *helpers.TestDB
	testRedis *helpers.TestRedis
}

func (s *ConsignmentE2ESuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.testRedis = helpers.SetupTestRedis(s.T())

	s.server = s.startTestServer()
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.server.URL + "/api/v1"
}

func (s *ConsignmentE2ESuite) TearDownSuite() {
	s.server.Close()
}

func (s *ConsignmentE2ESuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

func (s *ConsignmentE2ESuite) startTestServer() *httptest.Server {
	logger := helpers.TestLogger()
	database := s.testDB.Database

	cache := redis_a.NewCache(s.testRedis.Client, time.Hour, logger)

	itemRepo := db.NewItemRepository(database, logger)
	clientRepo := db.NewClientRepository(database, logger)
	consignmentRepo := db.NewConsignmentRepository(database, logger)
	saleRepo := db.NewSaleRepository(database, logger)

	itemService := services.NewItemService(itemRepo, database.Pool(), logger)
	clientService := services.NewClientService(clientRepo, database.Pool(), logger)
	consignmentService := services.NewConsignmentService(
		consignmentRepo, itemRepo, clientRepo, cache, database.Pool(), logger)
	saleService := services.NewSaleService(saleRepo, itemRepo, cache, logger)

	itemHandler := handlers.NewItemHandler(itemService, logger)
	clientHandler := handlers.NewClientHandler(clientService, logger)
	consignmentHandler := handlers.NewConsignmentHandler(consignmentService, logger)
	saleHandler := handlers.NewSaleHandler(saleService, logger)
	exportHandler := handlers.NewExportHandler(database, cache, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/roupas", itemHandler.ListItems)
	mux.HandleFunc("POST /api/v1/roupas", itemHandler.CreateItem)
	mux.HandleFunc("GET /api/v1/roupas/{id}", itemHandler.GetItem)
	mux.HandleFunc("PUT /api/v1/roupas/{id}", itemHandler.UpdateItem)
	mux.HandleFunc("DELETE /api/v1/roupas/{id}", itemHandler.DeleteItem)

	mux.HandleFunc("POST /api/v1/clientes", clientHandler.CreateClient)
	mux.HandleFunc("GET /api/v1/clientes/{id}", clientHandler.GetClient)

	mux.HandleFunc("GET /api/v1/condicionais", consignmentHandler.ListConsignments)
	mux.HandleFunc("POST /api/v1/condicionais", consignmentHandler.CreateConsignment)
	mux.HandleFunc("GET /api/v1/condicionais/{id}", consignmentHandler.GetConsignment)
	mux.HandleFunc("POST /api/v1/condicionais/{id}/converter-venda", consignmentHandler.ConvertToSale)
	mux.HandleFunc("POST /api/v1/condicionais/{id}/finalizar", consignmentHandler.ReturnAll)

	mux.HandleFunc("GET /api/v1/vendas/historico", saleHandler.SalesHistory)
	mux.HandleFunc("GET /api/v1/vendas/{id}", saleHandler.GetSale)
	mux.HandleFunc("POST /api/v1/vendas", saleHandler.RecordSale)

	mux.HandleFunc("GET /api/v1/export/excel", exportHandler.ExportExcel)
	mux.HandleFunc("GET /api/v1/export/vendas", exportHandler.ExportSalesExcel)

	return httptest.NewServer(mux)
}

func (s *ConsignmentE2ESuite) TestConsignmentToSaleWorkflow() {
	// 1. Register an item with three units in stock
	itemID := s.createItem(map[string]interface{}{
		"nome":       "Vestido Floral Midi",
		"tipo":       "vestido",
		"tamanho":    "M",
		"cor":        "floral",
		"preco":      "89.90",
		"quantidade": 3,
	})

	// 2. Register the client taking the loan
	clientID := s.createClient("Maria da Silva")

	// 3. Open a consignment for two units
	createReq := map[string]interface{}{
		"cliente_id":     clientID,
		"data_devolucao": time.Now().AddDate(0, 0, 7).Format(time.RFC3339),
		"itens": []map[string]interface{}{
			{"roupas_id": itemID, "quantidade": 2},
		},
	}
	resp := s.makeRequest("POST", "/condicionais", createReq)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var created map[string]interface{}
	s.decodeResponse(resp, &created)
	s.Equal("ativo", created["status"])
	condID := int64(created["id"].(float64))

	// 4. Stock was reserved at loan time
	s.Equal(1, s.getItemQuantity(itemID))

	// 5. Convert part of the loan: one sold, the rest returned
	convertReq := map[string]interface{}{
		"itens_vendidos": []map[string]interface{}{
			{"roupas_id": itemID, "quantidade": 1},
		},
		"forma_pagamento": "Pix",
		"desconto":        "9.90",
	}
	resp = s.makeRequest("POST", fmt.Sprintf("/condicionais/%d/converter-venda", condID), convertReq)
	s.Equal(http.StatusOK, resp.StatusCode)

	var sale map[string]interface{}
	s.decodeResponse(resp, &sale)
	s.Equal("Pix", sale["forma_pagamento"])
	s.Equal("89.9", sale["valor_bruto"])
	s.Equal("80", sale["valor_liquido"])

	// 6. The unsold unit is back in stock
	s.Equal(2, s.getItemQuantity(itemID))

	// 7. The consignment is now terminal
	resp = s.makeRequest("GET", fmt.Sprintf("/condicionais/%d", condID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var closed map[string]interface{}
	s.decodeResponse(resp, &closed)
	s.Equal("vendido", closed["status"])

	// 8. Converting again is rejected
	resp = s.makeRequest("POST", fmt.Sprintf("/condicionais/%d/converter-venda", condID),
		map[string]interface{}{"itens_vendidos": "todos", "forma_pagamento": "Pix", "desconto": "0"})
	s.Equal(http.StatusConflict, resp.StatusCode)

	// 9. The sale shows up in the daily history
	resp = s.makeRequest("GET", "/vendas/historico?periodo=dia", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var history map[string]interface{}
	s.decodeResponse(resp, &history)
	vendas := history["vendas"].([]interface{})
	s.Len(vendas, 1)
	s.Equal("80", history["total_liquido"])
}

func (s *ConsignmentE2ESuite) TestReturnAllWorkflow() {
	itemID := s.createItem(map[string]interface{}{
		"nome":       "Blusa de Seda",
		"tipo":       "blusa",
		"tamanho":    "P",
		"cor":        "branco",
		"preco":      "45.00",
		"quantidade": 2,
	})
	clientID := s.createClient("Joana Prado")

	resp := s.makeRequest("POST", "/condicionais", map[string]interface{}{
		"cliente_id":     clientID,
		"data_devolucao": time.Now().AddDate(0, 0, 5).Format(time.RFC3339),
		"itens": []map[string]interface{}{
			{"roupas_id": itemID, "quantidade": 2},
		},
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	var created map[string]interface{}
	s.decodeResponse(resp, &created)
	condID := int64(created["id"].(float64))

	s.Equal(0, s.getItemQuantity(itemID))

	resp = s.makeRequest("POST", fmt.Sprintf("/condicionais/%d/finalizar", condID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	// Every unit back in stock, consignment closed as returned
	s.Equal(2, s.getItemQuantity(itemID))

	resp = s.makeRequest("GET", fmt.Sprintf("/condicionais/%d", condID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var closed map[string]interface{}
	s.decodeResponse(resp, &closed)
	s.Equal("devolvido", closed["status"])

	// Closing twice is rejected
	resp = s.makeRequest("POST", fmt.Sprintf("/condicionais/%d/finalizar", condID), nil)
	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *ConsignmentE2ESuite) TestBarterRules() {
	itemID := s.createItem(map[string]interface{}{
		"nome":       "Casaco de Lã",
		"tipo":       "casaco",
		"tamanho":    "G",
		"cor":        "cinza",
		"preco":      "120.00",
		"quantidade": 1,
	})

	// Permuta without a description is rejected
	resp := s.makeRequest("POST", "/vendas", map[string]interface{}{
		"forma_pagamento": "Permuta",
		"desconto":        "0",
		"itens": []map[string]interface{}{
			{"roupas_id": itemID, "quantidade": 1},
		},
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// With the description it goes through, at full price
	resp = s.makeRequest("POST", "/vendas", map[string]interface{}{
		"forma_pagamento":   "Permuta",
		"desconto":          "0",
		"descricao_permuta": "troca por duas calças jeans",
		"itens": []map[string]interface{}{
			{"roupas_id": itemID, "quantidade": 1},
		},
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	var sale map[string]interface{}
	s.decodeResponse(resp, &sale)
	s.Equal("120", sale["valor_liquido"])
	s.Equal(0, s.getItemQuantity(itemID))
}

func (s *ConsignmentE2ESuite) TestConcurrentConversions() {
	itemID := s.createItem(map[string]interface{}{
		"nome":       "Saia Plissada",
		"tipo":       "saia",
		"tamanho":    "M",
		"cor":        "preto",
		"preco":      "60.00",
		"quantidade": 1,
	})
	clientID := s.createClient("Ana Lima")

	resp := s.makeRequest("POST", "/condicionais", map[string]interface{}{
		"cliente_id":     clientID,
		"data_devolucao": time.Now().AddDate(0, 0, 3).Format(time.RFC3339),
		"itens": []map[string]interface{}{
			{"roupas_id": itemID, "quantidade": 1},
		},
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	var created map[string]interface{}
	s.decodeResponse(resp, &created)
	condID := int64(created["id"].(float64))

	// Race a conversion against a return; exactly one writer wins
	results := make(chan int, 2)
	go func() {
		r := s.makeRequest("POST", fmt.Sprintf("/condicionais/%d/converter-venda", condID),
			map[string]interface{}{"itens_vendidos": "todos", "forma_pagamento": "Dinheiro", "desconto": "0"})
		r.Body.Close()
		results <- r.StatusCode
	}()
	go func() {
		r := s.makeRequest("POST", fmt.Sprintf("/condicionais/%d/finalizar", condID), nil)
		r.Body.Close()
		results <- r.StatusCode
	}()

	codes := []int{<-results, <-results}
	s.Contains(codes, http.StatusOK)
	s.Contains(codes, http.StatusConflict)
}

// Helper methods

func (s *ConsignmentE2ESuite) createItem(body map[string]interface{}) int64 {
	resp := s.makeRequest("POST", "/roupas", body)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var item map[string]interface{}
	s.decodeResponse(resp, &item)
	return int64(item["id"].(float64))
}

func (s *ConsignmentE2ESuite) createClient(nome string) int64 {
	resp := s.makeRequest("POST", "/clientes", map[string]interface{}{
		"nome":     nome,
		"telefone": "11 91234-5678",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var client map[string]interface{}
	s.decodeResponse(resp, &client)
	return int64(client["id"].(float64))
}

func (s *ConsignmentE2ESuite) getItemQuantity(id int64) int {
	resp := s.makeRequest("GET", fmt.Sprintf("/roupas/%d", id), nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var item map[string]interface{}
	s.decodeResponse(resp, &item)
	return int(item["quantidade"].(float64))
}

func (s *ConsignmentE2ESuite) makeRequest(method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.NoError(err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	s.NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	s.NoError(err)

	return resp
}

func (s *ConsignmentE2ESuite) decodeResponse(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	s.NoError(err)
}

func TestConsignmentE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(ConsignmentE2ESuite))
}
