// internal/handlers/images.go
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mcardoso/brecho-be/internal/adapters/storage"
	"github.com/mcardoso/brecho-be/internal/core/domain"
	"github.com/mcardoso/brecho-be/internal/core/ports"
)

// ImageHandler handles item image uploads. Binaries go to object storage;
// only the resulting URL is recorded against the item.
type ImageHandler struct {
	items       ports.ItemService
	storage     storage.StorageClient
	logger      *slog.Logger
	maxFileSize int64
}

// NewImageHandler creates a new image handler
func NewImageHandler(items ports.ItemService, st storage.StorageClient, logger *slog.Logger, maxSizeMB int) *ImageHandler {
	return &ImageHandler{
		items:       items,
		storage:     st,
		logger:      logger.With(slog.String("handler", "images")),
		maxFileSize: int64(maxSizeMB) << 20,
	}
}

// UploadImage handles POST /api/v1/roupas/{id}/imagens
func (h *ImageHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := parseID(r, "id")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid item ID")
		return
	}

	item, err := h.items.GetByID(ctx, itemID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load item for image upload",
			slog.Int64("roupa_id", itemID),
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to load item")
		return
	}
	if item == nil {
		respondError(w, h.logger, http.StatusNotFound, "Item not found")
		return
	}

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(w, h.logger, http.StatusBadRequest, "Only image files are allowed")
		return
	}

	key := fmt.Sprintf("roupas/%d/%s%s", itemID, uuid.New().String(), filepath.Ext(header.Filename))
	url, err := h.storage.Upload(ctx, key, file, contentType)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to upload image",
			slog.Int64("roupa_id", itemID),
			slog.String("key", key),
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to store image")
		return
	}

	img := &domain.Imagem{RoupaID: itemID, URL: url}
	if err := h.items.AttachImage(ctx, img); err != nil {
		// Best effort: don't leave orphaned objects behind
		if delErr := h.storage.Delete(ctx, key); delErr != nil {
			h.logger.WarnContext(ctx, "failed to remove orphaned image object",
				slog.String("key", key),
				slog.String("error", delErr.Error()))
		}
		h.logger.ErrorContext(ctx, "failed to attach image",
			slog.Int64("roupa_id", itemID),
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to attach image")
		return
	}

	h.logger.InfoContext(ctx, "image uploaded",
		slog.Int64("roupa_id", itemID),
		slog.Int64("imagem_id", img.ID),
		slog.String("url", url))

	respondJSON(w, h.logger, http.StatusCreated, img)
}

// DeleteImage handles DELETE /api/v1/roupas/{id}/imagens/{imageId}
func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	imageID, err := parseID(r, "imageId")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid image ID")
		return
	}

	img, err := h.items.RemoveImage(ctx, imageID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to remove image",
			slog.Int64("imagem_id", imageID),
			slog.String("error", err.Error()))
		respondDomainError(w, h.logger, err, "Failed to remove image")
		return
	}

	if key := storageKeyFromURL(img.URL); key != "" {
		if err := h.storage.Delete(ctx, key); err != nil {
			h.logger.WarnContext(ctx, "failed to delete image object",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message": "Image removed",
		"id":      imageID,
	})
}

// storageKeyFromURL extracts the object key from a stored image URL. Keys
// always start with the "roupas/" prefix used at upload time.
func storageKeyFromURL(url string) string {
	idx := strings.Index(url, "/roupas/")
	if idx < 0 {
		return ""
	}
	return url[idx+1:]
}
