package reporting

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/splitpay/internal/domain/models"
	"github.com/mamadbah2/splitpay/internal/settlement"
)

// ErrInvalidMonth indicates a month filter that is neither "all" nor YYYY-MM.
var ErrInvalidMonth = errors.New("month must be \"all\" or YYYY-MM")

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// LedgerReader exposes the read side of the sales ledger.
type LedgerReader interface {
	Records() []models.SaleRecord
}

// Table is one filtered page of the settlement table.
type Table struct {
	Month  string                  `json:"month"`
	Label  string                  `json:"label"`
	Rows   []models.SettlementView `json:"rows"`
	Totals models.Totals           `json:"totals"`
	Empty  bool                    `json:"empty"`
}

// Service exposes the settlement table and digests built from the ledger.
type Service struct {
	ledger LedgerReader
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(ledger LedgerReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ledger: ledger, logger: logger}
}

// Table recomputes the settlement views and keeps those inside month.
func (s *Service) Table(month string) (Table, error) {
	month = strings.TrimSpace(month)
	if month == "" {
		month = models.MonthAll
	}

	views := settlement.Compute(s.ledger.Records())
	rows, err := Filter(views, month)
	if err != nil {
		return Table{}, err
	}

	return Table{
		Month:  month,
		Label:  MonthLabel(month),
		Rows:   rows,
		Totals: settlement.Summarize(rows),
		Empty:  len(rows) == 0,
	}, nil
}

// View returns the settlement view for a normalized date.
func (s *Service) View(date string) (models.SettlementView, bool) {
	for _, v := range settlement.Compute(s.ledger.Records()) {
		if v.Date == date {
			return v, true
		}
	}
	return models.SettlementView{}, false
}

// Months lists the distinct months present in the ledger, newest first.
func (s *Service) Months() []string {
	return Months(s.ledger.Records())
}

// DailyDigest describes the expected payment for day and the older
// payments still waiting for confirmation.
func (s *Service) DailyDigest(day time.Time) models.DailyDigest {
	date := day.Format(models.DateLayout)
	views := settlement.Compute(s.ledger.Records())

	digest := models.DailyDigest{Date: date, OutstandingDays: []string{}}
	for _, v := range views {
		switch {
		case v.Date == date:
			digest.HasRecord = true
			digest.SaleAmount = v.Amount
			digest.ExpectedPayment = v.ActualPaymentToday
			digest.IsReceived = v.IsReceived
		case v.Date < date && !v.IsReceived && v.ActualPaymentToday.IsPositive():
			digest.OutstandingDays = append(digest.OutstandingDays, v.Date)
		}
	}

	s.logger.Debug("digest built", zap.String("date", date), zap.Bool("has_record", digest.HasRecord), zap.Int("outstanding", len(digest.OutstandingDays)))
	return digest
}

// FormatDigest renders a digest as a short text message.
func FormatDigest(d models.DailyDigest) string {
	var b strings.Builder
	display := models.FormatDisplayDate(d.Date)

	if !d.HasRecord {
		fmt.Fprintf(&b, "Sales digest %s: no sale recorded yet.", display)
	} else {
		status := "pending"
		if d.IsReceived {
			status = "received"
		}
		fmt.Fprintf(&b, "Sales digest %s: sale %s, expected payment today %s (%s).",
			display, d.SaleAmount.StringFixed(2), d.ExpectedPayment.StringFixed(2), status)
	}

	if n := len(d.OutstandingDays); n > 0 {
		fmt.Fprintf(&b, "\n%d earlier payment(s) not confirmed yet, oldest %s.", n, models.FormatDisplayDate(d.OutstandingDays[0]))
	}
	return b.String()
}

// Filter keeps the views dated inside month. Filtering happens after the
// settlement computation so lookback crosses month boundaries.
func Filter(views []models.SettlementView, month string) ([]models.SettlementView, error) {
	if month != models.MonthAll && !monthPattern.MatchString(month) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}

	out := make([]models.SettlementView, 0, len(views))
	for _, v := range views {
		if models.HasMonth(v.Date, month) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Months returns the distinct YYYY-MM keys of records, newest first.
func Months(records []models.SaleRecord) []string {
	seen := make(map[string]struct{})
	months := make([]string, 0)
	for _, r := range records {
		m := models.MonthOf(r.Date)
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		months = append(months, m)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months
}

// MonthLabel renders a month key for display, e.g. "March 2025".
func MonthLabel(month string) string {
	if month == models.MonthAll {
		return "All"
	}
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return t.Format("January 2006")
}
