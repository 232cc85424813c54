// Package transfer maps settlement views to spreadsheet rows and back.
package transfer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/splitpay/internal/domain/models"
)

// Export column headers, in sheet order.
const (
	HeaderDate   = "Date"
	HeaderAmount = "Sale Amount"
	HeaderSplitA = "Next-Day Payment (50%)"
	HeaderSplitB = "Remaining Balance (50%)"
	HeaderActual = "Actual Payment Today"
	HeaderStatus = "Status"
)

// Status labels written to and matched from the status column.
const (
	ReceivedLabel = "received"
	PendingLabel  = "pending"
)

// Headers is the header row of every export.
var Headers = []string{HeaderDate, HeaderAmount, HeaderSplitA, HeaderSplitB, HeaderActual, HeaderStatus}

// ErrMissingColumns is returned when an import sheet lacks the date or amount column.
var ErrMissingColumns = errors.New("import sheet must contain date and sale amount columns")

// Workbooks exported by the earlier browser version of the tracker use Thai headers.
var headerAliases = map[string]string{
	strings.ToLower(HeaderDate):   HeaderDate,
	strings.ToLower(HeaderAmount): HeaderAmount,
	strings.ToLower(HeaderStatus): HeaderStatus,
	"amount":                      HeaderAmount,
	"วันที่":                      HeaderDate,
	"ยอดขายคนละครึ่ง (บาท)": HeaderAmount,
	"สถานะการรับเงิน":       HeaderStatus,
}

var receivedLabels = map[string]bool{
	ReceivedLabel: true,
	"ได้รับแล้ว":  true,
}

// Row is one exported settlement line.
type Row struct {
	Date               string
	Amount             decimal.Decimal
	SplitA             decimal.Decimal
	SplitB             decimal.Decimal
	ActualPaymentToday decimal.Decimal
	Status             string
}

// Values returns the row as spreadsheet cells, amounts as numbers.
func (r Row) Values() []interface{} {
	return []interface{}{
		r.Date,
		r.Amount.InexactFloat64(),
		r.SplitA.InexactFloat64(),
		r.SplitB.InexactFloat64(),
		r.ActualPaymentToday.InexactFloat64(),
		r.Status,
	}
}

// StatusLabel renders the received flag.
func StatusLabel(received bool) string {
	if received {
		return ReceivedLabel
	}
	return PendingLabel
}

// ExportRows maps settlement views to export rows.
func ExportRows(views []models.SettlementView) []Row {
	rows := make([]Row, len(views))
	for i, v := range views {
		rows[i] = Row{
			Date:               v.Date,
			Amount:             v.Amount,
			SplitA:             v.SplitA,
			SplitB:             v.SplitB,
			ActualPaymentToday: v.ActualPaymentToday,
			Status:             StatusLabel(v.IsReceived),
		}
	}
	return rows
}

// DecodeRows reads sale records from a header-first table. Rows with a
// missing date or an unusable amount are reported as skipped. Row numbers
// are 1-based spreadsheet rows, the header being row 1.
func DecodeRows(table [][]string) ([]models.SaleRecord, []models.SkippedRow, error) {
	if len(table) == 0 {
		return nil, nil, ErrMissingColumns
	}

	columns := make(map[string]int)
	for i, cell := range table[0] {
		if canonical, ok := headerAliases[strings.ToLower(strings.TrimSpace(cell))]; ok {
			if _, seen := columns[canonical]; !seen {
				columns[canonical] = i
			}
		}
	}

	dateCol, hasDate := columns[HeaderDate]
	amountCol, hasAmount := columns[HeaderAmount]
	if !hasDate || !hasAmount {
		return nil, nil, ErrMissingColumns
	}
	statusCol, hasStatus := columns[HeaderStatus]

	var records []models.SaleRecord
	var skipped []models.SkippedRow

	for i, line := range table[1:] {
		rowNo := i + 2
		if isBlank(line) {
			continue
		}

		date, err := parseDateCell(cellAt(line, dateCol))
		if err != nil {
			skipped = append(skipped, models.SkippedRow{Row: rowNo, Reason: err.Error()})
			continue
		}

		amount, err := ParseAmount(cellAt(line, amountCol))
		if err != nil {
			skipped = append(skipped, models.SkippedRow{Row: rowNo, Reason: err.Error()})
			continue
		}
		if amount.IsNegative() {
			skipped = append(skipped, models.SkippedRow{Row: rowNo, Reason: "amount must not be negative"})
			continue
		}

		received := false
		if hasStatus {
			received = receivedLabels[strings.ToLower(strings.TrimSpace(cellAt(line, statusCol)))]
		}

		records = append(records, models.SaleRecord{Date: date, Amount: amount, IsReceived: received})
	}

	return records, skipped, nil
}

// ParseAmount accepts plain and user formatted amounts such as "1,200",
// "฿ 1,200.50", "1200 บาท" or "1.2E+3". Anything left after the grouping
// commas, currency labels and spaces are removed must be a decimal number.
func ParseAmount(value string) (decimal.Decimal, error) {
	s := strings.TrimSpace(value)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "฿", "")
	s = strings.ReplaceAll(s, "บาท", "")
	s = strings.ReplaceAll(s, "THB", "")
	s = strings.ReplaceAll(s, "thb", "")
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount %q is not numeric", value)
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount %q is not numeric", value)
	}
	return amount, nil
}

// Spreadsheet serial day numbers accepted in the date column: 1950-01-01
// through 9999-12-31. Bare years such as 2024 fall below the range.
const (
	minDateSerial = 18264
	maxDateSerial = 2958465
)

// parseDateCell handles text dates and whole spreadsheet serial day numbers.
func parseDateCell(value string) (string, error) {
	date, err := models.NormalizeDate(value)
	if err == nil {
		return date, nil
	}
	if errors.Is(err, models.ErrEmptyDate) {
		return "", err
	}

	serial, perr := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if perr != nil {
		return "", err
	}
	if serial != math.Trunc(serial) || serial < minDateSerial || serial > maxDateSerial {
		return "", fmt.Errorf("date serial %q is out of range", value)
	}
	t, perr := excelize.ExcelDateToTime(serial, false)
	if perr != nil {
		return "", fmt.Errorf("date serial %q: %w", value, perr)
	}
	return t.Format(models.DateLayout), nil
}

func cellAt(line []string, idx int) string {
	if idx < len(line) {
		return line[idx]
	}
	return ""
}

func isBlank(line []string) bool {
	for _, cell := range line {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
