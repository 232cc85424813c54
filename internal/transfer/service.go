package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/mamadbah2/splitpay/internal/domain/models"
)

var (
	// ErrNothingToExport is returned when the ledger holds no records.
	ErrNothingToExport = errors.New("no sales to export")

	// ErrSheetsDisabled is returned when Google Sheets sync was not configured.
	ErrSheetsDisabled = errors.New("google sheets sync is not configured")
)

// Ledger is the subset of the sales ledger used for bulk transfer.
type Ledger interface {
	Views() []models.SettlementView
	BulkUpsert(ctx context.Context, records []models.SaleRecord) (int, error)
}

// SheetGateway reads and overwrites a spreadsheet range.
type SheetGateway interface {
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
	OverwriteRange(ctx context.Context, sheetRange string, rows [][]interface{}) error
}

// Service runs spreadsheet imports and exports against the ledger.
type Service struct {
	ledger     Ledger
	sheets     SheetGateway
	sheetRange string
	logger     *zap.Logger
}

// NewService wires a transfer service. sheets may be nil to disable Google Sheets sync.
func NewService(ledger Ledger, sheets SheetGateway, sheetRange string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ledger: ledger, sheets: sheets, sheetRange: sheetRange, logger: logger}
}

// SheetsEnabled reports whether Google Sheets sync is available.
func (s *Service) SheetsEnabled() bool {
	return s.sheets != nil
}

// ExportXLSX writes the full settlement table as a workbook.
func (s *Service) ExportXLSX(w io.Writer) error {
	rows := ExportRows(s.ledger.Views())
	if len(rows) == 0 {
		return ErrNothingToExport
	}
	if err := EncodeXLSX(w, rows); err != nil {
		return err
	}
	s.logger.Info("xlsx exported", zap.Int("rows", len(rows)))
	return nil
}

// ImportXLSX applies every usable row of the workbook's first sheet.
func (s *Service) ImportXLSX(ctx context.Context, r io.Reader) (models.ImportSummary, error) {
	table, err := DecodeXLSX(r)
	if err != nil {
		return models.ImportSummary{}, err
	}
	return s.apply(ctx, table, "xlsx")
}

// PushSheet overwrites the configured Google Sheet range with the settlement table.
func (s *Service) PushSheet(ctx context.Context) (int, error) {
	if s.sheets == nil {
		return 0, ErrSheetsDisabled
	}

	rows := ExportRows(s.ledger.Views())
	values := make([][]interface{}, 0, len(rows)+1)

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	values = append(values, header)
	for _, row := range rows {
		values = append(values, row.Values())
	}

	if err := s.sheets.OverwriteRange(ctx, s.sheetRange, values); err != nil {
		return 0, fmt.Errorf("push sheet: %w", err)
	}

	s.logger.Info("sheet pushed", zap.String("range", s.sheetRange), zap.Int("rows", len(rows)))
	return len(rows), nil
}

// PullSheet imports the configured Google Sheet range.
func (s *Service) PullSheet(ctx context.Context) (models.ImportSummary, error) {
	if s.sheets == nil {
		return models.ImportSummary{}, ErrSheetsDisabled
	}

	values, err := s.sheets.ReadRange(ctx, s.sheetRange)
	if err != nil {
		return models.ImportSummary{}, fmt.Errorf("pull sheet: %w", err)
	}

	table := make([][]string, len(values))
	for i, line := range values {
		table[i] = make([]string, len(line))
		for j, cell := range line {
			table[i][j] = fmt.Sprint(cell)
		}
	}
	return s.apply(ctx, table, "sheets")
}

func (s *Service) apply(ctx context.Context, table [][]string, source string) (models.ImportSummary, error) {
	records, skipped, err := DecodeRows(table)
	if err != nil {
		return models.ImportSummary{}, err
	}

	for _, row := range skipped {
		s.logger.Debug("skip import row", zap.String("source", source), zap.Int("row", row.Row), zap.String("reason", row.Reason))
	}

	applied, err := s.ledger.BulkUpsert(ctx, records)
	if err != nil {
		return models.ImportSummary{}, err
	}

	summary := models.ImportSummary{Applied: applied, Skipped: skipped}
	if summary.Skipped == nil {
		summary.Skipped = []models.SkippedRow{}
	}

	s.logger.Info("import applied", zap.String("source", source), zap.Int("applied", applied), zap.Int("skipped", len(skipped)))
	return summary, nil
}
