// Package settlement derives the split-payment schedule of a sales ledger.
//
// Every recorded sale is paid out in two halves. The first half matures on
// the next recorded day, the second half on the recorded day after that, so
// the cash landing on day i is splitA(i-1) + splitB(i-2).
//
// Adjacency is positional: the previous entry in the date-sorted slice is
// "yesterday" even when calendar days are missing in between. Callers must
// pass records sorted ascending by date; Compute does not sort.
package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/splitpay/internal/domain/models"
)

var two = decimal.NewFromInt(2)

// Compute returns one SettlementView per record, in input order.
func Compute(records []models.SaleRecord) []models.SettlementView {
	views := make([]models.SettlementView, len(records))

	for i, record := range records {
		splitA, splitB := Split(record.Amount)

		actual := decimal.Zero
		if i >= 1 {
			actual = actual.Add(views[i-1].SplitA)
		}
		if i >= 2 {
			actual = actual.Add(views[i-2].SplitB)
		}

		views[i] = models.SettlementView{
			Date:               record.Date,
			Amount:             record.Amount,
			SplitA:             splitA,
			SplitB:             splitB,
			ActualPaymentToday: actual,
			IsReceived:         record.IsReceived,
		}
	}

	return views
}

// Split halves a sale amount. The second half is the remainder of the first
// so the two always sum to the amount. Negative amounts contribute nothing.
func Split(amount decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if amount.IsNegative() {
		return decimal.Zero, decimal.Zero
	}
	splitA := amount.Div(two)
	return splitA, amount.Sub(splitA)
}

// Summarize aggregates the views into a Totals footer.
func Summarize(views []models.SettlementView) models.Totals {
	totals := models.Totals{
		Amount:          decimal.Zero,
		SplitA:          decimal.Zero,
		SplitB:          decimal.Zero,
		ActualPayment:   decimal.Zero,
		ReceivedPayment: decimal.Zero,
	}

	for _, v := range views {
		totals.Amount = totals.Amount.Add(v.Amount)
		totals.SplitA = totals.SplitA.Add(v.SplitA)
		totals.SplitB = totals.SplitB.Add(v.SplitB)
		totals.ActualPayment = totals.ActualPayment.Add(v.ActualPaymentToday)
		if v.IsReceived {
			totals.ReceivedPayment = totals.ReceivedPayment.Add(v.ActualPaymentToday)
			totals.ReceivedCount++
		} else {
			totals.PendingCount++
		}
		totals.Days++
	}

	return totals
}
