// internal/handlers/import.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"

	"github.com/ovalles/posledger-be/internal/adapters/storage"
	"github.com/ovalles/posledger-be/internal/core/ports"
	"github.com/ovalles/posledger-be/internal/workers"
)

// ImportHandler accepts supplier documents and queues them for background
// processing. The upload only lands the file and records a job; all ledger
// writes happen in the workers.
type ImportHandler struct {
	asynqClient *asynq.Client
	db          ports.Database
	store       storage.DocumentStore
	logger      *slog.Logger
	pdfMaxSize  int64
	xlsxMaxSize int64
	tempDir     string
}

// NewImportHandler creates a new import handler. store may be nil, in which
// case uploads are not archived.
func NewImportHandler(
	asynqClient *asynq.Client,
	db ports.Database,
	store storage.DocumentStore,
	logger *slog.Logger,
	pdfMaxSizeMB, xlsxMaxSizeMB int,
	tempDir string,
) *ImportHandler {
	return &ImportHandler{
		asynqClient: asynqClient,
		db:          db,
		store:       store,
		logger:      logger.With(slog.String("handler", "import")),
		pdfMaxSize:  int64(pdfMaxSizeMB) << 20,
		xlsxMaxSize: int64(xlsxMaxSizeMB) << 20,
		tempDir:     tempDir,
	}
}

// ImportInvoicePDF handles POST /api/v1/import/invoice-pdf
func (h *ImportHandler) ImportInvoicePDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(h.pdfMaxSize); err != nil {
		h.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	if header.Header.Get("Content-Type") != "application/pdf" {
		h.respondError(w, http.StatusBadRequest, "Only PDF files are allowed")
		return
	}

	supplierID, err := strconv.ParseInt(r.FormValue("supplier_id"), 10, 64)
	if err != nil || supplierID <= 0 {
		h.respondError(w, http.StatusBadRequest, "supplier_id is required")
		return
	}

	invoiceNumber := r.FormValue("invoice_number")
	if invoiceNumber == "" {
		h.respondError(w, http.StatusBadRequest, "invoice_number is required")
		return
	}

	invoiceDate := r.FormValue("invoice_date")
	if invoiceDate == "" {
		invoiceDate = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", invoiceDate); err != nil {
		h.respondError(w, http.StatusBadRequest, "invoice_date must be YYYY-MM-DD")
		return
	}

	tempFile, err := h.saveUpload(ctx, file, header.Filename)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to save upload",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to save upload")
		return
	}

	documentKey := h.archiveDocument(ctx, tempFile, invoiceNumber, header.Filename, "application/pdf")

	payload := workers.InvoicePDFPayload{
		JobID:         uuid.New().String(),
		FilePath:      tempFile,
		SupplierID:    supplierID,
		InvoiceNumber: invoiceNumber,
		InvoiceDate:   invoiceDate,
		DocumentKey:   documentKey,
	}

	if err := h.queueJob(ctx, payload.JobID, workers.TypeInvoicePDF, payload, asynq.Queue("default")); err != nil {
		os.Remove(tempFile)
		h.logger.ErrorContext(ctx, "failed to queue invoice import",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to queue import job")
		return
	}

	h.logger.InfoContext(ctx, "invoice PDF import queued",
		slog.String("job_id", payload.JobID),
		slog.String("invoice_number", invoiceNumber))

	h.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":  payload.JobID,
		"status":  "queued",
		"message": "Invoice PDF has been queued for processing",
	})
}

// ImportPriceList handles POST /api/v1/import/price-list
func (h *ImportHandler) ImportPriceList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(h.xlsxMaxSize); err != nil {
		h.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" &&
		contentType != "application/vnd.ms-excel" {
		h.respondError(w, http.StatusBadRequest, "Only Excel files are allowed")
		return
	}

	var supplierID int64
	if s := r.FormValue("supplier_id"); s != "" {
		if supplierID, err = strconv.ParseInt(s, 10, 64); err != nil || supplierID <= 0 {
			h.respondError(w, http.StatusBadRequest, "supplier_id must be a positive integer")
			return
		}
	}

	tempFile, err := h.saveUpload(ctx, file, header.Filename)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to save upload",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to save upload")
		return
	}

	payload := workers.PriceListPayload{
		JobID:      uuid.New().String(),
		FilePath:   tempFile,
		SupplierID: supplierID,
	}

	if err := h.queueJob(ctx, payload.JobID, workers.TypePriceListImport, payload, asynq.Queue("low")); err != nil {
		os.Remove(tempFile)
		h.logger.ErrorContext(ctx, "failed to queue price list import",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to queue import job")
		return
	}

	h.logger.InfoContext(ctx, "price list import queued",
		slog.String("job_id", payload.JobID),
		slog.Int64("supplier_id", supplierID))

	h.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":  payload.JobID,
		"status":  "queued",
		"message": "Price list has been queued for processing",
	})
}

// ImportStatus handles GET /api/v1/import/status/{jobId}
func (h *ImportHandler) ImportStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := r.PathValue("jobId")

	if _, err := uuid.Parse(jobID); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	status, err := h.getJobStatus(ctx, jobID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get job status",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to get job status")
		return
	}

	h.respondJSON(w, http.StatusOK, status)
}

// Helper methods

func (h *ImportHandler) saveUpload(ctx context.Context, file io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(h.tempDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	tempFile := filepath.Join(h.tempDir, fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(filename)))
	dst, err := os.Create(tempFile)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return tempFile, nil
}

// archiveDocument uploads the original document so it survives the temp
// file cleanup. Archival failures are logged and tolerated; the import
// itself must not depend on S3 being up.
func (h *ImportHandler) archiveDocument(ctx context.Context, tempFile, invoiceNumber, filename, contentType string) string {
	if h.store == nil {
		return ""
	}

	src, err := os.Open(tempFile)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to reopen upload for archival",
			slog.String("error", err.Error()))
		return ""
	}
	defer src.Close()

	key := storage.DocumentKey(invoiceNumber, filename)
	if _, err := h.store.Upload(ctx, key, src, contentType); err != nil {
		h.logger.WarnContext(ctx, "failed to archive document",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return ""
	}

	return key
}

func (h *ImportHandler) queueJob(ctx context.Context, jobID, taskType string, payload interface{}, opts ...asynq.Option) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err := h.createAsyncJob(ctx, jobID, taskType, b); err != nil {
		return fmt.Errorf("failed to create job record: %w", err)
	}

	opts = append(opts, asynq.MaxRetry(3), asynq.Retention(24*time.Hour))
	info, err := h.asynqClient.EnqueueContext(ctx, asynq.NewTask(taskType, b), opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	h.logger.DebugContext(ctx, "import task enqueued",
		slog.String("job_id", jobID),
		slog.String("task_id", info.ID))

	return nil
}

func (h *ImportHandler) createAsyncJob(ctx context.Context, jobID, jobType string, payload json.RawMessage) error {
	query := `
		INSERT INTO async_jobs (id, job_type, status, payload)
		VALUES ($1, $2, 'queued', $3)`

	_, err := h.db.Exec(ctx, query, jobID, jobType, payload)
	return err
}

func (h *ImportHandler) getJobStatus(ctx context.Context, jobID string) (map[string]interface{}, error) {
	query := `
		SELECT job_type, status, result, error, created_at, updated_at
		FROM async_jobs
		WHERE id = $1`

	var (
		jobType   string
		status    string
		result    json.RawMessage
		errMsg    *string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := h.db.QueryRow(ctx, query, jobID).Scan(&jobType, &status, &result, &errMsg, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	out := map[string]interface{}{
		"job_id":     jobID,
		"job_type":   jobType,
		"status":     status,
		"created_at": createdAt,
		"updated_at": updatedAt,
	}
	if len(result) > 0 {
		out["result"] = result
	}
	if errMsg != nil {
		out["error"] = *errMsg
	}

	return out, nil
}

func (h *ImportHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *ImportHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
