// internal/handlers/consignments.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcardoso/brecho-be/internal/core/domain"
	"github.com/mcardoso/brecho-be/internal/core/ports"
)

// ConsignmentHandler handles consignment lifecycle HTTP requests
type ConsignmentHandler struct {
	service ports.ConsignmentService
	logger  *slog.Logger
}

// NewConsignmentHandler creates a new consignment handler
func NewConsignmentHandler(service ports.ConsignmentService, logger *slog.Logger) *ConsignmentHandler {
	return &ConsignmentHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "consignments")),
	}
}

// GetConsignment handles GET /api/v1/condicionais/{id}
func (h *ConsignmentHandler) GetConsignment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid consignment ID")
		return
	}

	c, err := h.service.GetByID(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get consignment",
			slog.Int64("condicional_id", id),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to retrieve consignment")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, newConsignmentResponse(c))
}

// ListConsignments handles GET /api/v1/condicionais
func (h *ConsignmentHandler) ListConsignments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := ports.ConsignmentListParams{Page: 1, PageSize: 50}
	if page := r.URL.Query().Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			params.Page = p
		}
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 && l <= 100 {
			params.PageSize = l
		}
	}
	params.Search = r.URL.Query().Get("search")
	params.Status = r.URL.Query().Get("status")
	if clienteID := r.URL.Query().Get("cliente_id"); clienteID != "" {
		if cid, err := strconv.ParseInt(clienteID, 10, 64); err == nil && cid > 0 {
			params.ClienteID = cid
		}
	}

	result, err := h.service.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list consignments",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to list consignments")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// CreateConsignment handles POST /api/v1/condicionais
func (h *ConsignmentHandler) CreateConsignment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateConsignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	c := req.ToDomain()

	if err := h.service.Create(ctx, c); err != nil {
		h.logger.ErrorContext(ctx, "failed to create consignment",
			slog.Int64("cliente_id", req.ClienteID),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to create consignment")
		return
	}

	h.logger.InfoContext(ctx, "consignment created",
		slog.Int64("condicional_id", c.ID),
		slog.Int64("cliente_id", c.ClienteID),
		slog.Int("total_pecas", c.TotalPecas()))

	respondJSON(w, h.logger, http.StatusCreated, newConsignmentResponse(c))
}

// ConvertToSale handles POST /api/v1/condicionais/{id}/converter-venda
func (h *ConsignmentHandler) ConvertToSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid consignment ID")
		return
	}

	var req ConvertSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	sale, err := h.service.ConvertToSale(ctx, id, ports.ConvertSaleParams{
		Todos:            req.Todos,
		Itens:            req.Itens,
		FormaPagamento:   req.FormaPagamento,
		Desconto:         req.Desconto,
		Observacoes:      req.Observacoes,
		DescricaoPermuta: req.DescricaoPermuta,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to convert consignment to sale",
			slog.Int64("condicional_id", id),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to convert consignment")
		return
	}

	h.logger.InfoContext(ctx, "consignment converted to sale",
		slog.Int64("condicional_id", id),
		slog.Int64("venda_id", sale.ID),
		slog.String("valor_liquido", sale.ValorLiquido.String()))

	respondJSON(w, h.logger, http.StatusOK, sale)
}

// ReturnAll handles POST /api/v1/condicionais/{id}/finalizar
func (h *ConsignmentHandler) ReturnAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid consignment ID")
		return
	}

	if err := h.service.ReturnAll(ctx, id); err != nil {
		h.logger.ErrorContext(ctx, "failed to close consignment as returned",
			slog.Int64("condicional_id", id),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to close consignment")
		return
	}

	h.logger.InfoContext(ctx, "consignment closed as returned",
		slog.Int64("condicional_id", id))

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message": "Consignment closed, all items returned to stock",
		"id":      id,
	})
}

// DeleteConsignment handles DELETE /api/v1/condicionais/{id}
func (h *ConsignmentHandler) DeleteConsignment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid consignment ID")
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete consignment",
			slog.Int64("condicional_id", id),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to delete consignment")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message": "Consignment deleted",
		"id":      id,
	})
}

// CreateConsignmentRequest represents the request body for creating a consignment
type CreateConsignmentRequest struct {
	ClienteID     int64                    `json:"cliente_id"`
	Data          *time.Time               `json:"data,omitempty"`
	DataDevolucao time.Time                `json:"data_devolucao"`
	Itens         []ConsignmentLineRequest `json:"itens"`
}

// ConsignmentLineRequest is one requested loan line
type ConsignmentLineRequest struct {
	RoupaID    int64 `json:"roupas_id"`
	Quantidade int   `json:"quantidade"`
}

// ToDomain converts the request to a domain model
func (r *CreateConsignmentRequest) ToDomain() *domain.Consignment {
	c := &domain.Consignment{
		ClienteID:     r.ClienteID,
		DataDevolucao: r.DataDevolucao,
	}
	if r.Data != nil {
		c.Data = *r.Data
	}
	for _, line := range r.Itens {
		c.Itens = append(c.Itens, domain.ConsignmentItem{
			RoupaID:    line.RoupaID,
			Quantidade: line.Quantidade,
		})
	}
	return c
}

// ConvertSaleRequest represents the request body for converting a consignment.
// The itens_vendidos field is either the string sentinel "todos" (sell the
// whole remaining loan) or an explicit selection array, so decoding is done
// by hand.
type ConvertSaleRequest struct {
	Todos            bool
	Itens            []ports.SaleSelection
	FormaPagamento   string
	Desconto         decimal.Decimal
	Observacoes      string
	DescricaoPermuta string
}

// UnmarshalJSON accepts itens_vendidos as "todos" or [{roupas_id, quantidade}].
func (r *ConvertSaleRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		ItensVendidos    json.RawMessage `json:"itens_vendidos"`
		FormaPagamento   string          `json:"forma_pagamento"`
		Desconto         decimal.Decimal `json:"desconto"`
		Observacoes      string          `json:"observacoes"`
		DescricaoPermuta string          `json:"descricao_permuta"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.FormaPagamento = raw.FormaPagamento
	r.Desconto = raw.Desconto
	r.Observacoes = raw.Observacoes
	r.DescricaoPermuta = raw.DescricaoPermuta
	r.Todos = false
	r.Itens = nil

	if len(raw.ItensVendidos) == 0 || string(raw.ItensVendidos) == "null" {
		return nil
	}

	switch raw.ItensVendidos[0] {
	case '"':
		var sentinel string
		if err := json.Unmarshal(raw.ItensVendidos, &sentinel); err != nil {
			return err
		}
		if sentinel != "todos" {
			return fmt.Errorf("invalid itens_vendidos value %q", sentinel)
		}
		r.Todos = true
	case '[':
		if err := json.Unmarshal(raw.ItensVendidos, &r.Itens); err != nil {
			return err
		}
	default:
		return fmt.Errorf(`itens_vendidos must be "todos" or a selection array`)
	}

	return nil
}

// consignmentResponse augments the domain record with derived fields the
// storefront renders directly.
type consignmentResponse struct {
	*domain.Consignment
	Status             domain.ConsignmentStatus `json:"status"`
	TotalPecas         int                      `json:"total_pecas"`
	ValorEstimadoTotal decimal.Decimal          `json:"valor_estimado_total"`
}

func newConsignmentResponse(c *domain.Consignment) consignmentResponse {
	return consignmentResponse{
		Consignment:        c,
		Status:             c.Status(),
		TotalPecas:         c.TotalPecas(),
		ValorEstimadoTotal: c.ValorEstimadoTotal(),
	}
}
