// internal/handlers/import.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"

	"github.com/mcardoso/brecho-be/internal/core/ports"
	"github.com/mcardoso/brecho-be/internal/workers"
)

// ImportHandler handles spreadsheet imports of the catalog
type ImportHandler struct {
	asynqClient *asynq.Client
	db          ports.Database
	logger      *slog.Logger
	maxFileSize int64
	uploadDir   string
}

// NewImportHandler creates a new import handler
func NewImportHandler(asynqClient *asynq.Client, database ports.Database, logger *slog.Logger, maxFileSize int64, uploadDir string) *ImportHandler {
	return &ImportHandler{
		asynqClient: asynqClient,
		db:          database,
		logger:      logger.With(slog.String("handler", "import")),
		maxFileSize: maxFileSize,
		uploadDir:   uploadDir,
	}
}

// ImportExcel handles POST /api/v1/import/excel
func (h *ImportHandler) ImportExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

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
	if contentType != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" &&
		contentType != "application/vnd.ms-excel" {
		respondError(w, h.logger, http.StatusBadRequest, "Only Excel files are allowed")
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		h.logger.ErrorContext(ctx, "failed to create upload directory",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to prepare upload")
		return
	}

	tempFile := filepath.Join(h.uploadDir, fmt.Sprintf("%s_%s", uuid.New().String(), header.Filename))
	dst, err := os.Create(tempFile)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create temp file",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to save upload")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(tempFile)
		h.logger.ErrorContext(ctx, "failed to save file",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to save upload")
		return
	}

	jobID := uuid.New().String()
	if err := h.createAsyncJob(ctx, jobID, workers.TypeExcelImport, map[string]interface{}{
		"file_path": tempFile,
		"filename":  header.Filename,
	}); err != nil {
		os.Remove(tempFile)
		h.logger.ErrorContext(ctx, "failed to create job record",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to create import job")
		return
	}

	payload := workers.ExcelJobPayload{
		JobID:    jobID,
		FilePath: tempFile,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		os.Remove(tempFile)
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to queue import job")
		return
	}

	info, err := h.asynqClient.Enqueue(asynq.NewTask(workers.TypeExcelImport, b),
		asynq.Queue("default"),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour))
	if err != nil {
		os.Remove(tempFile)
		h.logger.ErrorContext(ctx, "failed to enqueue task",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to queue import job")
		return
	}

	h.logger.InfoContext(ctx, "Excel import queued",
		slog.String("job_id", jobID),
		slog.String("task_id", info.ID),
		slog.String("filename", header.Filename))

	respondJSON(w, h.logger, http.StatusAccepted, map[string]interface{}{
		"job_id":  jobID,
		"status":  "queued",
		"message": "Excel import has been queued for processing",
	})
}

// ImportStatus handles GET /api/v1/import/status/{jobId}
func (h *ImportHandler) ImportStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := r.PathValue("jobId")

	if _, err := uuid.Parse(jobID); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid job ID")
		return
	}

	status, err := h.getJobStatus(ctx, jobID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get job status",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to get job status")
		return
	}

	if status == nil {
		respondError(w, h.logger, http.StatusNotFound, "Job not found")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, status)
}

// JobStatus is the persisted state of an asynchronous import job
type JobStatus struct {
	JobID       string     `json:"job_id"`
	JobType     string     `json:"job_type"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (h *ImportHandler) createAsyncJob(ctx context.Context, jobID, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal job payload: %w", err)
	}

	_, err = h.db.Exec(ctx, `
		INSERT INTO async_jobs (job_id, job_type, status, payload, created_at)
		VALUES ($1, $2, 'queued', $3, NOW())`,
		jobID, jobType, data)
	if err != nil {
		return fmt.Errorf("failed to insert job record: %w", err)
	}
	return nil
}

func (h *ImportHandler) getJobStatus(ctx context.Context, jobID string) (*JobStatus, error) {
	status := &JobStatus{}
	var errMsg *string

	err := h.db.QueryRow(ctx, `
		SELECT job_id, job_type, status, error, created_at, started_at, completed_at
		FROM async_jobs
		WHERE job_id = $1`, jobID,
	).Scan(&status.JobID, &status.JobType, &status.Status, &errMsg,
		&status.CreatedAt, &status.StartedAt, &status.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query job: %w", err)
	}

	if errMsg != nil {
		status.Error = *errMsg
	}
	return status, nil
}
