// internal/handlers/export.go
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	redis_a "github.com/mcardoso/brecho-be/internal/adapters/redis_adapter"
	"github.com/mcardoso/brecho-be/internal/core/ports"
)

// ExportParams defines parameters for export operations
type ExportParams struct {
	IncludeDeleted bool       `json:"include_deleted"`
	DateFrom       *time.Time `json:"date_from"`
	DateTo         *time.Time `json:"date_to"`
}

// CatalogExportRow is one catalog line in the export
type CatalogExportRow struct {
	ID           int64
	Nome         string
	Descricao    string
	Tipo         string
	Tamanho      string
	Cor          string
	Preco        decimal.Decimal
	Quantidade   int
	CriadoEm     time.Time
	AtualizadoEm time.Time
}

// SalesExportRow is one sale in the export, one row per sale
type SalesExportRow struct {
	ID             int64
	Data           time.Time
	ClienteNome    string
	FormaPagamento string
	ValorBruto     decimal.Decimal
	Desconto       decimal.Decimal
	ValorLiquido   decimal.Decimal
	TotalPecas     int
	CondicionalID  *int64
}

// ExportMetadata contains metadata about the export
type ExportMetadata struct {
	ExportDate     time.Time `json:"export_date"`
	TotalItems     int       `json:"total_items"`
	IncludeDeleted bool      `json:"include_deleted"`
}

// ExportHandler handles catalog and sales exports
type ExportHandler struct {
	db     ports.Database
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(db ports.Database, cache ports.CacheRepository, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		db:     db,
		cache:  cache,
		logger: logger.With(slog.String("handler", "export")),
	}
}

// ExportExcel handles GET /api/v1/export/excel with the full catalog
func (h *ExportHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseExportParams(r)

	data, err := h.getCatalogData(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to retrieve catalog data",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	excelData, err := h.generateCatalogFile(data)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate Excel file",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("estoque_%s.xlsx", time.Now().Format("20060102_150405"))
	h.writeFile(w, excelData, filename,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	h.logger.InfoContext(ctx, "catalog export completed",
		slog.Int("total_rows", len(data)),
		slog.String("filename", filename))
}

// ExportSalesExcel handles GET /api/v1/export/vendas
func (h *ExportHandler) ExportSalesExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseExportParams(r)

	data, err := h.getSalesData(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to retrieve sales data",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	excelData, err := h.generateSalesFile(data)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate Excel file",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("vendas_%s.xlsx", time.Now().Format("20060102_150405"))
	h.writeFile(w, excelData, filename,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	h.logger.InfoContext(ctx, "sales export completed",
		slog.Int("total_rows", len(data)),
		slog.String("filename", filename))
}

// ExportJSON handles GET /api/v1/export/json with the full catalog
func (h *ExportHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseExportParams(r)

	cacheKey := redis_a.BuildKey(redis_a.PrefixExport, "json", h.cacheKeyFromParams(params))
	var cachedData []byte
	if err := h.cache.Get(ctx, cacheKey, &cachedData); err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.Header().Set("Content-Length", strconv.Itoa(len(cachedData)))
		if _, err := w.Write(cachedData); err != nil {
			h.logger.ErrorContext(ctx, "failed to write cached JSON response",
				slog.String("error", err.Error()))
		}
		return
	}

	data, err := h.getCatalogData(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to retrieve catalog data",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	rows := make([]map[string]any, 0, len(data))
	for i := range data {
		item := &data[i]
		rows = append(rows, map[string]any{
			"id":            item.ID,
			"nome":          item.Nome,
			"descricao":     item.Descricao,
			"tipo":          item.Tipo,
			"tamanho":       item.Tamanho,
			"cor":           item.Cor,
			"preco":         item.Preco,
			"quantidade":    item.Quantidade,
			"criado_em":     item.CriadoEm,
			"atualizado_em": item.AtualizadoEm,
		})
	}

	response := map[string]any{
		"roupas": rows,
		"metadata": ExportMetadata{
			ExportDate:     time.Now(),
			TotalItems:     len(rows),
			IncludeDeleted: params.IncludeDeleted,
		},
	}

	responseData, err := json.Marshal(response)
	if err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to generate JSON")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.Header().Set("Content-Length", strconv.Itoa(len(responseData)))
	if _, err := w.Write(responseData); err != nil {
		h.logger.ErrorContext(ctx, "failed to write JSON response",
			slog.String("error", err.Error()))
		return
	}

	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.cache.Set(cacheCtx, cacheKey, responseData); err != nil {
			h.logger.WarnContext(cacheCtx, "failed to cache JSON export",
				slog.String("error", err.Error()))
		}
	}()

	h.logger.InfoContext(ctx, "JSON export completed",
		slog.Int("total_rows", len(data)))
}

// Helper methods

func (h *ExportHandler) parseExportParams(r *http.Request) *ExportParams {
	params := &ExportParams{}

	params.IncludeDeleted = r.URL.Query().Get("include_deleted") == "true"

	if from := r.URL.Query().Get("date_from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			params.DateFrom = &t
		}
	}
	if to := r.URL.Query().Get("date_to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			params.DateTo = &t
		}
	}

	return params
}

func (h *ExportHandler) getCatalogData(ctx context.Context, params *ExportParams) ([]CatalogExportRow, error) {
	query := `
		SELECT id, nome, COALESCE(descricao, ''), tipo, tamanho, cor,
		       preco, quantidade, criado_em, atualizado_em
		FROM roupas
		WHERE 1=1`
	var args []any

	if !params.IncludeDeleted {
		query += " AND deleted_at IS NULL"
	}
	if params.DateFrom != nil {
		args = append(args, *params.DateFrom)
		query += fmt.Sprintf(" AND criado_em >= $%d", len(args))
	}
	if params.DateTo != nil {
		args = append(args, *params.DateTo)
		query += fmt.Sprintf(" AND criado_em <= $%d", len(args))
	}
	query += " ORDER BY criado_em DESC"

	rows, err := h.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog data: %w", err)
	}
	defer rows.Close()

	var data []CatalogExportRow
	for rows.Next() {
		var item CatalogExportRow
		if err := rows.Scan(&item.ID, &item.Nome, &item.Descricao, &item.Tipo,
			&item.Tamanho, &item.Cor, &item.Preco, &item.Quantidade,
			&item.CriadoEm, &item.AtualizadoEm); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		data = append(data, item)
	}
	return data, rows.Err()
}

func (h *ExportHandler) getSalesData(ctx context.Context, params *ExportParams) ([]SalesExportRow, error) {
	query := `
		SELECT v.id, v.data, v.cliente_nome, v.forma_pagamento,
		       v.valor_bruto, v.desconto, v.valor_liquido,
		       COALESCE(SUM(vi.quantidade), 0), v.condicional_id
		FROM vendas v
		LEFT JOIN vendas_itens vi ON vi.venda_id = v.id
		WHERE 1=1`
	var args []any

	if params.DateFrom != nil {
		args = append(args, *params.DateFrom)
		query += fmt.Sprintf(" AND v.data >= $%d", len(args))
	}
	if params.DateTo != nil {
		args = append(args, *params.DateTo)
		query += fmt.Sprintf(" AND v.data <= $%d", len(args))
	}
	query += " GROUP BY v.id ORDER BY v.data DESC"

	rows, err := h.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales data: %w", err)
	}
	defer rows.Close()

	var data []SalesExportRow
	for rows.Next() {
		var sale SalesExportRow
		var clienteNome sql.NullString
		if err := rows.Scan(&sale.ID, &sale.Data, &clienteNome, &sale.FormaPagamento,
			&sale.ValorBruto, &sale.Desconto, &sale.ValorLiquido,
			&sale.TotalPecas, &sale.CondicionalID); err != nil {
			return nil, fmt.Errorf("failed to scan sales row: %w", err)
		}
		sale.ClienteNome = clienteNome.String
		data = append(data, sale)
	}
	return data, rows.Err()
}

func (h *ExportHandler) generateCatalogFile(data []CatalogExportRow) ([]byte, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Estoque")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headers := []string{
		"ID", "Nome", "Descrição", "Tipo", "Tamanho", "Cor",
		"Preço", "Quantidade", "Criado Em", "Atualizado Em",
	}
	addHeaderRow(sheet, headers)

	for i := range data {
		item := &data[i]
		addRow(sheet,
			strconv.FormatInt(item.ID, 10),
			item.Nome,
			item.Descricao,
			item.Tipo,
			item.Tamanho,
			item.Cor,
			item.Preco.StringFixed(2),
			strconv.Itoa(item.Quantidade),
			item.CriadoEm.Format("2006-01-02 15:04:05"),
			item.AtualizadoEm.Format("2006-01-02 15:04:05"),
		)
	}

	// Column indexes are 1-based
	for i := 1; i <= len(headers); i++ {
		sheet.SetColWidth(i, i, 15)
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}
	return buffer.Bytes(), nil
}

func (h *ExportHandler) generateSalesFile(data []SalesExportRow) ([]byte, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Vendas")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headers := []string{
		"ID", "Data", "Cliente", "Forma de Pagamento",
		"Valor Bruto", "Desconto", "Valor Líquido", "Peças", "Condicional",
	}
	addHeaderRow(sheet, headers)

	for i := range data {
		sale := &data[i]
		condicional := ""
		if sale.CondicionalID != nil {
			condicional = strconv.FormatInt(*sale.CondicionalID, 10)
		}
		addRow(sheet,
			strconv.FormatInt(sale.ID, 10),
			sale.Data.Format("2006-01-02 15:04:05"),
			sale.ClienteNome,
			sale.FormaPagamento,
			sale.ValorBruto.StringFixed(2),
			sale.Desconto.StringFixed(2),
			sale.ValorLiquido.StringFixed(2),
			strconv.Itoa(sale.TotalPecas),
			condicional,
		)
	}

	for i := 1; i <= len(headers); i++ {
		sheet.SetColWidth(i, i, 15)
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}
	return buffer.Bytes(), nil
}

func addHeaderRow(sheet *xlsx.Sheet, headers []string) {
	headerRow := sheet.AddRow()
	for _, header := range headers {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, value := range values {
		cell := row.AddCell()
		cell.Value = value
	}
}

func (h *ExportHandler) writeFile(w http.ResponseWriter, data []byte, filename, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write export response",
			slog.String("error", err.Error()))
	}
}

func (h *ExportHandler) cacheKeyFromParams(params *ExportParams) string {
	key := fmt.Sprintf("del_%t", params.IncludeDeleted)
	if params.DateFrom != nil {
		key += fmt.Sprintf("_from_%s", params.DateFrom.Format("20060102"))
	}
	if params.DateTo != nil {
		key += fmt.Sprintf("_to_%s", params.DateTo.Format("20060102"))
	}
	return key
}
