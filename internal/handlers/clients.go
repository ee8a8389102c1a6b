// internal/handlers/clients.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mcardoso/brecho-be/internal/core/domain"
	"github.com/mcardoso/brecho-be/internal/core/ports"
)

// ClientHandler handles client-related HTTP requests
type ClientHandler struct {
	service ports.ClientService
	logger  *slog.Logger
}

// NewClientHandler creates a new client handler
func NewClientHandler(service ports.ClientService, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "clients")),
	}
}

// GetClient handles GET /api/v1/clientes/{id}
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid client ID")
		return
	}

	client, err := h.service.GetByID(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get client",
			slog.Int64("cliente_id", id),
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve client")
		return
	}
	if client == nil {
		respondError(w, h.logger, http.StatusNotFound, "Client not found")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, client)
}

// ListClients handles GET /api/v1/clientes
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := ports.ClientListParams{Page: 1, PageSize: 50}
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

	result, err := h.service.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list clients",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to list clients")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// CreateClient handles POST /api/v1/clientes
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var client domain.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := client.Validate(); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Create(ctx, &client); err != nil {
		h.logger.ErrorContext(ctx, "failed to create client",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to create client")
		return
	}

	h.logger.InfoContext(ctx, "client created",
		slog.Int64("cliente_id", client.ID),
		slog.String("nome", client.Nome))

	respondJSON(w, h.logger, http.StatusCreated, client)
}

// UpdateClient handles PUT /api/v1/clientes/{id}
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid client ID")
		return
	}

	var client domain.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := client.Validate(); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Update(ctx, id, &client); err != nil {
		h.logger.ErrorContext(ctx, "failed to update client",
			slog.Int64("cliente_id", id),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to update client")
		return
	}

	client.ID = id
	respondJSON(w, h.logger, http.StatusOK, client)
}

// DeleteClient handles DELETE /api/v1/clientes/{id}
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid client ID")
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete client",
			slog.Int64("cliente_id", id),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to delete client")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message": "Client deleted successfully",
		"id":      id,
	})
}
