package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SaleRecord captures the gross sale recorded for one calendar day.
type SaleRecord struct {
	Date       string          `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	IsReceived bool            `json:"isReceived"`
}

// SettlementView is the derived split breakdown of a SaleRecord together with
// the cash expected to land on the record's date. It is never persisted.
type SettlementView struct {
	Date               string          `json:"date"`
	Amount             decimal.Decimal `json:"amount"`
	SplitA             decimal.Decimal `json:"nextDayPayment"`
	SplitB             decimal.Decimal `json:"remainingBalance"`
	ActualPaymentToday decimal.Decimal `json:"actualPaymentToday"`
	IsReceived         bool            `json:"isReceived"`
}

// Month returns the YYYY-MM key of the view's date.
func (v SettlementView) Month() string {
	return MonthOf(v.Date)
}

// Totals aggregates a set of settlement views.
type Totals struct {
	Amount          decimal.Decimal `json:"amount"`
	SplitA          decimal.Decimal `json:"nextDayPayment"`
	SplitB          decimal.Decimal `json:"remainingBalance"`
	ActualPayment   decimal.Decimal `json:"actualPayment"`
	ReceivedPayment decimal.Decimal `json:"receivedPayment"`
	ReceivedCount   int             `json:"receivedCount"`
	PendingCount    int             `json:"pendingCount"`
	Days            int             `json:"days"`
}

// MonthAll selects every record regardless of month.
const MonthAll = "all"

// MonthOf extracts the YYYY-MM key from a normalized date.
func MonthOf(date string) string {
	if len(date) < 7 {
		return ""
	}
	return date[:7]
}

// HasMonth reports whether the date falls inside the given month key.
func HasMonth(date, month string) bool {
	return month == MonthAll || strings.HasPrefix(date, month+"-")
}
