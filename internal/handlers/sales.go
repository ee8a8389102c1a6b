// internal/handlers/sales.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcardoso/brecho-be/internal/core/domain"
	"github.com/mcardoso/brecho-be/internal/core/ports"
)

// SaleHandler handles sales ledger HTTP requests
type SaleHandler struct {
	service ports.SaleService
	logger  *slog.Logger
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(service ports.SaleService, logger *slog.Logger) *SaleHandler {
	return &SaleHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "sales")),
	}
}

// GetSale handles GET /api/v1/vendas/{id}
func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid sale ID")
		return
	}

	sale, err := h.service.GetByID(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get sale",
			slog.Int64("venda_id", id),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to retrieve sale")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, sale)
}

// RecordSale handles POST /api/v1/vendas for direct sales
func (h *SaleHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RecordSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	sale := req.ToDomain()

	if err := h.service.RecordDirect(ctx, sale); err != nil {
		h.logger.ErrorContext(ctx, "failed to record sale",
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to record sale")
		return
	}

	h.logger.InfoContext(ctx, "direct sale recorded",
		slog.Int64("venda_id", sale.ID),
		slog.String("forma_pagamento", string(sale.FormaPagamento)),
		slog.String("valor_liquido", sale.ValorLiquido.String()))

	respondJSON(w, h.logger, http.StatusCreated, sale)
}

// SalesHistory handles GET /api/v1/vendas/historico
func (h *SaleHandler) SalesHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := ports.SaleHistoryParams{
		Period: r.URL.Query().Get("periodo"),
	}

	if from := r.URL.Query().Get("inicio"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			respondError(w, h.logger, http.StatusBadRequest, "Invalid inicio date, expected RFC 3339")
			return
		}
		params.From = t
	}
	if to := r.URL.Query().Get("fim"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			respondError(w, h.logger, http.StatusBadRequest, "Invalid fim date, expected RFC 3339")
			return
		}
		params.To = t
	}

	result, err := h.service.History(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load sales history",
			slog.String("periodo", params.Period),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to load sales history")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// RecordSaleRequest represents the request body for a direct sale.
// Unit prices are resolved server-side from the catalog; any price sent
// by the client is ignored.
type RecordSaleRequest struct {
	ClienteID        *int64            `json:"cliente_id,omitempty"`
	FormaPagamento   string            `json:"forma_pagamento"`
	Desconto         decimal.Decimal   `json:"desconto"`
	Observacoes      string            `json:"observacoes,omitempty"`
	DescricaoPermuta string            `json:"descricao_permuta,omitempty"`
	Itens            []SaleLineRequest `json:"itens"`
}

// SaleLineRequest is one requested sale line
type SaleLineRequest struct {
	RoupaID    int64 `json:"roupas_id"`
	Quantidade int   `json:"quantidade"`
}

// ToDomain converts the request to a domain model
func (r *RecordSaleRequest) ToDomain() *domain.Sale {
	sale := &domain.Sale{
		ClienteID:        r.ClienteID,
		FormaPagamento:   domain.PaymentMethod(r.FormaPagamento),
		Desconto:         r.Desconto,
		Observacoes:      r.Observacoes,
		DescricaoPermuta: r.DescricaoPermuta,
	}
	for _, line := range r.Itens {
		sale.Itens = append(sale.Itens, domain.SaleItem{
			RoupaID:    line.RoupaID,
			Quantidade: line.Quantidade,
		})
	}
	return sale
}
