// internal/workers/invoice_pdf_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/ledongthuc/pdf"
	"github.com/shopspring/decimal"

	"github.com/ovalles/posledger-be/internal/core/domain"
	"github.com/ovalles/posledger-be/internal/core/ports"
)

const (
	TypeInvoicePDF      = "invoice:pdf"
	TypePriceListImport = "pricelist:import"
	TypeCleanupTempData = "cleanup:temp_data"
)

// InvoicePDFPayload is the task payload for supplier invoice PDF ingestion.
type InvoicePDFPayload struct {
	JobID         string `json:"job_id"`
	FilePath      string `json:"file_path"`
	SupplierID    int64  `json:"supplier_id"`
	InvoiceNumber string `json:"invoice_number"`
	InvoiceDate   string `json:"invoice_date"`
	DocumentKey   string `json:"document_key,omitempty"`
}

// InvoicePDFResult is stored on the job record after processing.
type InvoicePDFResult struct {
	InvoiceID      int64    `json:"invoice_id,omitempty"`
	LinesExtracted int      `json:"lines_extracted"`
	Errors         []string `json:"errors,omitempty"`
	ProcessingTime string   `json:"processing_time"`
}

// InvoicePDFProcessor parses supplier invoice PDFs and feeds them through
// the settlement service, so a PDF ingestion follows the exact same atomic
// path as a hand-entered invoice.
type InvoicePDFProcessor struct {
	service ports.SettlementService
	db      ports.Database
	logger  *slog.Logger
}

// NewInvoicePDFProcessor creates a new invoice PDF processor
func NewInvoicePDFProcessor(service ports.SettlementService, db ports.Database, logger *slog.Logger) *InvoicePDFProcessor {
	return &InvoicePDFProcessor{
		service: service,
		db:      db,
		logger:  logger.With(slog.String("processor", "invoice_pdf")),
	}
}

// ProcessInvoicePDF handles an invoice:pdf task
func (p *InvoicePDFProcessor) ProcessInvoicePDF(ctx context.Context, t *asynq.Task) error {
	start := time.Now()

	var payload InvoicePDFPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	p.logger.InfoContext(ctx, "processing supplier invoice PDF",
		slog.String("job_id", payload.JobID),
		slog.String("invoice_number", payload.InvoiceNumber))

	_ = p.updateJobStatus(ctx, payload.JobID, "processing", nil)

	req, err := p.buildInvoiceRequest(ctx, payload)
	if err != nil {
		errMsg := fmt.Sprintf("failed to extract invoice lines: %v", err)
		_ = p.updateJobStatus(ctx, payload.JobID, "failed", &errMsg)
		return fmt.Errorf("%s", errMsg)
	}

	receipt, err := p.service.ProcessPurchaseInvoice(ctx, *req)

	var errors []string
	status := "completed"
	result := InvoicePDFResult{
		LinesExtracted: len(req.Items),
		ProcessingTime: time.Since(start).String(),
	}
	if err != nil {
		status = "failed"
		errors = append(errors, err.Error())
	} else {
		result.InvoiceID = receipt.InvoiceID
	}
	result.Errors = errors

	resultJSON, _ := json.Marshal(result)
	_ = p.updateJobResult(ctx, payload.JobID, status, resultJSON)

	if strings.HasPrefix(payload.FilePath, os.TempDir()) {
		_ = os.Remove(payload.FilePath)
	}

	p.logger.InfoContext(ctx, "invoice PDF processing finished",
		slog.String("job_id", payload.JobID),
		slog.String("status", status),
		slog.Int("lines", len(req.Items)))

	return err
}

func (p *InvoicePDFProcessor) buildInvoiceRequest(ctx context.Context, payload InvoicePDFPayload) (*ports.PurchaseInvoiceRequest, error) {
	f, r, err := pdf.Open(payload.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var textLines []string
	totalPages := r.NumPage()

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			p.logger.WarnContext(ctx, "failed to extract text from page",
				slog.Int("page", pageNum),
				slog.String("error", err.Error()))
			continue
		}

		textLines = append(textLines, strings.Split(text, "\n")...)
	}

	items, total := ParseInvoiceLines(textLines)

	invoiceDate, err := time.Parse("2006-01-02", payload.InvoiceDate)
	if err != nil {
		invoiceDate = time.Now().UTC()
	}

	p.logger.InfoContext(ctx, "extracted invoice lines",
		slog.String("invoice_number", payload.InvoiceNumber),
		slog.Int("count", len(items)))

	return &ports.PurchaseInvoiceRequest{
		SupplierID:    payload.SupplierID,
		InvoiceNumber: payload.InvoiceNumber,
		InvoiceDate:   invoiceDate,
		TotalAmount:   total,
		Items:         items,
	}, nil
}

var (
	invoiceHeaderRe = regexp.MustCompile(`(?i)(BARCODE.*(QTY|QUANTITY)|EAN.*COST|ITEM.*UNIT\s*COST)`)
	invoiceFooterRe = regexp.MustCompile(`(?i)(SUBTOTAL|TOTAL\s*(DUE|NET)?|Payment\s+(due|terms))`)

	// barcode, description, quantity, unit cost, optional suggested sale price
	invoiceLineRe = regexp.MustCompile(`^(\d{8,14})\s+(.+?)\s+(\d+)\s*[xX@]\s*\$?\s*(\d{1,3}(?:,\d{3})*\.\d{2})(?:\s+\$?\s*(\d{1,3}(?:,\d{3})*\.\d{2}))?\s*$`)
)

// ParseInvoiceLines scans extracted PDF text for supplier invoice lines and
// returns them together with the summed line total in minor currency units.
// Lines it cannot match are skipped; totals printed on the document are
// ignored in favor of the recomputed sum.
func ParseInvoiceLines(lines []string) ([]domain.InvoiceItemInput, int64) {
	var items []domain.InvoiceItemInput
	var total int64

	startIdx := 0
	for i, line := range lines {
		if invoiceHeaderRe.MatchString(line) {
			startIdx = i + 1
			break
		}
	}

	for i := startIdx; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if invoiceFooterRe.MatchString(line) {
			break
		}

		m := invoiceLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		qty := 0
		fmt.Sscanf(m[3], "%d", &qty)
		if qty <= 0 {
			continue
		}

		cost := parseMinorUnits(m[4])
		sale := parseMinorUnits(m[5])
		if sale == 0 {
			// no suggested retail on the line, keep a standard markup
			sale = decimal.NewFromInt(cost).Mul(decimal.NewFromFloat(1.5)).Round(0).IntPart()
		}

		items = append(items, domain.InvoiceItemInput{
			Barcode:      m[1],
			Name:         cleanInvoiceDescription(m[2]),
			CostPriceNet: cost,
			NewSalePrice: sale,
			Quantity:     qty,
		})
		total += cost * int64(qty)
	}

	return items, total
}

// parseMinorUnits converts a printed money amount like "1,234.50" to minor
// currency units. Malformed amounts come back as zero.
func parseMinorUnits(val string) int64 {
	cleaned := strings.ReplaceAll(val, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0
	}
	return d.Mul(decimal.NewFromInt(100)).IntPart()
}

func cleanInvoiceDescription(desc string) string {
	desc = regexp.MustCompile(`\s+`).ReplaceAllString(desc, " ")
	desc = regexp.MustCompile(`-{3,}`).ReplaceAllString(desc, "")
	return strings.TrimSpace(desc)
}

func (p *InvoicePDFProcessor) updateJobStatus(ctx context.Context, jobID string, status string, errorMsg *string) error {
	query := `
		UPDATE async_jobs
		SET status = $2, error = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	_, err := p.db.Exec(ctx, query, jobID, status, errorMsg)
	return err
}

func (p *InvoicePDFProcessor) updateJobResult(ctx context.Context, jobID string, status string, result json.RawMessage) error {
	query := `
		UPDATE async_jobs
		SET status = $2, result = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	_, err := p.db.Exec(ctx, query, jobID, status, result)
	return err
}
