package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/splitpay/internal/domain/models"
	"github.com/mamadbah2/splitpay/internal/ledger"
	"github.com/mamadbah2/splitpay/internal/service/reporting"
	"github.com/mamadbah2/splitpay/internal/transfer"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Ledger is the write side of the sales ledger.
type Ledger interface {
	Upsert(ctx context.Context, date string, amount decimal.Decimal) (models.SaleRecord, error)
	Delete(ctx context.Context, date string) error
	ToggleReceived(ctx context.Context, date string) (models.SaleRecord, error)
	Clear(ctx context.Context) error
}

// Reporter serves the settlement table.
type Reporter interface {
	Table(month string) (reporting.Table, error)
	View(date string) (models.SettlementView, bool)
	Months() []string
}

// Transfer runs spreadsheet imports and exports.
type Transfer interface {
	ExportXLSX(w io.Writer) error
	ImportXLSX(ctx context.Context, r io.Reader) (models.ImportSummary, error)
	PushSheet(ctx context.Context) (int, error)
	PullSheet(ctx context.Context) (models.ImportSummary, error)
}

type createSaleRequest struct {
	Date   string           `json:"date" binding:"required,isodate"`
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

type updateSaleRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

// SalesHandler exposes the ledger over HTTP. Every row action is keyed by date.
type SalesHandler struct {
	ledger   Ledger
	reporter Reporter
	transfer Transfer
	logger   *zap.Logger
}

// NewSalesHandler constructs the HTTP handler adapter.
func NewSalesHandler(l Ledger, reporter Reporter, t Transfer, logger *zap.Logger) *SalesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesHandler{ledger: l, reporter: reporter, transfer: t, logger: logger}
}

// List returns the settlement table filtered by the month query parameter.
func (h *SalesHandler) List(c *gin.Context) {
	table, err := h.reporter.Table(c.DefaultQuery("month", models.MonthAll))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// Months returns the month keys available for filtering.
func (h *SalesHandler) Months(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"months": h.reporter.Months()})
}

// Get returns the settlement view of one day.
func (h *SalesHandler) Get(c *gin.Context) {
	date, err := models.NormalizeDate(c.Param("date"))
	if err != nil {
		h.writeError(c, fmt.Errorf("%w: %v", ledger.ErrInvalidInput, err))
		return
	}

	view, ok := h.reporter.View(date)
	if !ok {
		h.writeError(c, ledger.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Create records a sale, updating the amount when the date already exists.
func (h *SalesHandler) Create(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sale payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "date and amount are required"})
		return
	}

	record, err := h.ledger.Upsert(c.Request.Context(), req.Date, *req.Amount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Update replaces the amount recorded for the date in the path.
func (h *SalesHandler) Update(c *gin.Context) {
	var req updateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid amount payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is required"})
		return
	}

	record, err := h.ledger.Upsert(c.Request.Context(), c.Param("date"), *req.Amount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Delete removes the record for the date in the path.
func (h *SalesHandler) Delete(c *gin.Context) {
	if err := h.ledger.Delete(c.Request.Context(), c.Param("date")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleReceived flips the received flag for the date in the path.
func (h *SalesHandler) ToggleReceived(c *gin.Context) {
	record, err := h.ledger.ToggleReceived(c.Request.Context(), c.Param("date"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Clear removes every record.
func (h *SalesHandler) Clear(c *gin.Context) {
	if err := h.ledger.Clear(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Export streams the settlement table as an xlsx workbook.
func (h *SalesHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.transfer.ExportXLSX(&buf); err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="sales_export.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Import applies an uploaded xlsx workbook sent as the "file" form field.
func (h *SalesHandler) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := header.Open()
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer file.Close()

	summary, err := h.transfer.ImportXLSX(c.Request.Context(), file)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// PushSheet publishes the settlement table to Google Sheets.
func (h *SalesHandler) PushSheet(c *gin.Context) {
	n, err := h.transfer.PushSheet(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": n})
}

// PullSheet imports the configured Google Sheets range.
func (h *SalesHandler) PullSheet(c *gin.Context) {
	summary, err := h.transfer.PullSheet(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *SalesHandler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrInvalidInput),
		errors.Is(err, reporting.ErrInvalidMonth),
		errors.Is(err, transfer.ErrMissingColumns),
		errors.Is(err, transfer.ErrInvalidWorkbook):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, transfer.ErrNothingToExport),
		errors.Is(err, transfer.ErrSheetsDisabled):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrStorageFailure):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		h.logger.Debug("request rejected", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
