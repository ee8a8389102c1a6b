// internal/workers/tasks.go
package workers

// Task type names registered on the asynq mux. Producers and the worker
// binary must agree on these strings.
const (
	TypeExcelImport      = "import:excel"
	TypeOverdueCheck     = "consignments:check_overdue"
	TypeEmailNotify      = "notifications:email"
	TypeAnalyticsRefresh = "analytics:refresh"
	TypeCleanupOldData   = "cleanup:old_data"
	TypeCleanupTempFiles = "cleanup:temp_files"
)

// ExcelJobPayload is the payload for catalog import tasks. JobID matches a
// row in async_jobs so the API can report progress.
type ExcelJobPayload struct {
	JobID    string `json:"job_id"`
	FilePath string `json:"file_path"`
}

// EmailPayload is the payload for email notification tasks.
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
