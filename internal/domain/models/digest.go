package models

import "github.com/shopspring/decimal"

// DailyDigest summarises what the ledger expects to happen on one day.
type DailyDigest struct {
	Date            string          `json:"date"`
	HasRecord       bool            `json:"has_record"`
	SaleAmount      decimal.Decimal `json:"sale_amount"`
	ExpectedPayment decimal.Decimal `json:"expected_payment"`
	IsReceived      bool            `json:"is_received"`
	OutstandingDays []string        `json:"outstanding_days"`
}
