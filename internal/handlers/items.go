// internal/handlers/items.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mcardoso/brecho-be/internal/core/domain"
	"github.com/mcardoso/brecho-be/internal/core/ports"
)

// ItemHandler handles catalog-related HTTP requests
type ItemHandler struct {
	service ports.ItemService
	logger  *slog.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(service ports.ItemService, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "items")),
	}
}

// GetItem handles GET /api/v1/roupas/{id}
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID")
		return
	}

	item, err := h.service.GetByID(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get item",
			slog.Int64("roupa_id", id),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to retrieve item")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, item)
}

// ListItems handles GET /api/v1/roupas
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseListParams(r)

	result, err := h.service.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list items",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to list items")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// CreateItem handles POST /api/v1/roupas
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	item := req.ToDomain()
	if err := item.Validate(); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.SaveItem(ctx, item); err != nil {
		h.logger.ErrorContext(ctx, "failed to create item",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to create item")
		return
	}

	h.logger.InfoContext(ctx, "item created",
		slog.Int64("roupa_id", item.ID),
		slog.String("nome", item.Nome))

	respondJSON(w, h.logger, http.StatusCreated, item)
}

// CreateItems handles POST /api/v1/roupas/lote for batch registration
func (h *ItemHandler) CreateItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqs []ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(reqs) == 0 {
		respondError(w, h.logger, http.StatusBadRequest, "At least one item is required")
		return
	}

	items := make([]domain.Item, 0, len(reqs))
	for i := range reqs {
		item := reqs[i].ToDomain()
		if err := item.Validate(); err != nil {
			respondError(w, h.logger, http.StatusBadRequest,
				fmt.Sprintf("item %d: %s", i, err.Error()))
			return
		}
		items = append(items, *item)
	}

	if err := h.service.SaveItems(ctx, items); err != nil {
		h.logger.ErrorContext(ctx, "failed to create items",
			slog.Int("count", len(items)),
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to create items")
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, map[string]interface{}{
		"message": "Items created successfully",
		"count":   len(items),
	})
}

// UpdateItem handles PUT /api/v1/roupas/{id}
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	item := req.ToDomain()
	if err := item.Validate(); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.UpdateItem(ctx, id, item); err != nil {
		h.logger.ErrorContext(ctx, "failed to update item",
			slog.Int64("roupa_id", id),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to update item")
		return
	}

	updated, err := h.service.GetByID(ctx, id)
	if err != nil || updated == nil {
		respondJSON(w, h.logger, http.StatusOK, map[string]string{"message": "Item updated successfully"})
		return
	}

	respondJSON(w, h.logger, http.StatusOK, updated)
}

// DeleteItem handles DELETE /api/v1/roupas/{id}
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID")
		return
	}

	permanent := r.URL.Query().Get("permanent") == "true"

	if err := h.service.DeleteItem(ctx, id, permanent); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete item",
			slog.Int64("roupa_id", id),
			slog.Bool("permanent", permanent),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to delete item")
		return
	}

	h.logger.InfoContext(ctx, "item deleted",
		slog.Int64("roupa_id", id),
		slog.Bool("permanent", permanent))

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message":   "Item deleted successfully",
		"id":        id,
		"permanent": permanent,
	})
}

// parseListParams parses query parameters for listing items
func (h *ItemHandler) parseListParams(r *http.Request) ports.ItemListParams {
	params := ports.ItemListParams{
		Page:      1,
		PageSize:  50,
		SortBy:    "criado_em",
		SortOrder: "desc",
	}

	if page := r.URL.Query().Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			params.Page = p
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			if l > 100 {
				params.PageSize = 100
			} else {
				params.PageSize = l
			}
		}
	}

	params.Search = r.URL.Query().Get("search")
	params.Tipo = r.URL.Query().Get("tipo")
	params.Tamanho = r.URL.Query().Get("tamanho")
	params.Cor = r.URL.Query().Get("cor")
	params.OnlyAvailable = r.URL.Query().Get("disponiveis") == "true"

	if sortBy := r.URL.Query().Get("sort"); sortBy != "" {
		params.SortBy = sortBy
	}
	if order := r.URL.Query().Get("order"); order == "asc" || order == "desc" {
		params.SortOrder = order
	}

	return params
}

// ItemRequest represents the request body for creating or updating an item
type ItemRequest struct {
	Nome       string          `json:"nome"`
	Descricao  string          `json:"descricao,omitempty"`
	Tipo       string          `json:"tipo"`
	Tamanho    string          `json:"tamanho"`
	Cor        string          `json:"cor"`
	Preco      decimal.Decimal `json:"preco"`
	Quantidade int             `json:"quantidade"`
	UsuarioID  int64           `json:"usuarios_id,omitempty"`
}

// ToDomain converts the request to a domain model
func (r *ItemRequest) ToDomain() *domain.Item {
	return &domain.Item{
		Nome:       r.Nome,
		Descricao:  r.Descricao,
		Tipo:       r.Tipo,
		Tamanho:    r.Tamanho,
		Cor:        r.Cor,
		Preco:      r.Preco,
		Quantidade: r.Quantidade,
		UsuarioID:  r.UsuarioID,
	}
}
