package settlement

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/splitpay/internal/domain/models"
)

func sale(date string, amount float64) models.SaleRecord {
	return models.SaleRecord{Date: date, Amount: decimal.NewFromFloat(amount)}
}

func actuals(views []models.SettlementView) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.ActualPaymentToday.String()
	}
	return out
}

func TestComputeEmpty(t *testing.T) {
	views := Compute(nil)
	if len(views) != 0 {
		t.Fatalf("views: got %d, want 0", len(views))
	}
}

func TestSplitsAlwaysSumToAmount(t *testing.T) {
	records := []models.SaleRecord{
		sale("2025-03-01", 1000),
		sale("2025-03-02", 1001),
		sale("2025-03-03", 0.01),
		sale("2025-03-04", 0),
		sale("2025-03-05", 333.33),
	}

	for _, v := range Compute(records) {
		if !v.SplitA.Add(v.SplitB).Equal(v.Amount) {
			t.Errorf("%s: splitA %s + splitB %s != amount %s", v.Date, v.SplitA, v.SplitB, v.Amount)
		}
	}
}

func TestSingleRecordHasNoPayment(t *testing.T) {
	views := Compute([]models.SaleRecord{sale("2025-03-01", 1000)})
	if !views[0].ActualPaymentToday.IsZero() {
		t.Errorf("actual[0]: got %s, want 0", views[0].ActualPaymentToday)
	}
	if !views[0].SplitA.Equal(decimal.NewFromInt(500)) {
		t.Errorf("splitA[0]: got %s, want 500", views[0].SplitA)
	}
}

func TestTwoRecordsPayFirstHalf(t *testing.T) {
	views := Compute([]models.SaleRecord{
		sale("2025-03-01", 1000),
		sale("2025-03-02", 1200),
	})
	if !views[1].ActualPaymentToday.Equal(decimal.NewFromInt(500)) {
		t.Errorf("actual[1]: got %s, want 500", views[1].ActualPaymentToday)
	}
}

func TestThreeRecordsSteadyState(t *testing.T) {
	views := Compute([]models.SaleRecord{
		sale("2025-03-01", 1000),
		sale("2025-03-02", 1200),
		sale("2025-03-03", 1300),
	})

	want := []string{"0", "500", "1100"}
	got := actuals(views)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("actual[%d]: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestComputeUsesPositionNotCalendar(t *testing.T) {
	views := Compute([]models.SaleRecord{
		sale("2025-03-01", 1000),
		sale("2025-03-10", 1200),
	})
	if !views[1].ActualPaymentToday.Equal(decimal.NewFromInt(500)) {
		t.Errorf("actual[1] across a gap: got %s, want 500", views[1].ActualPaymentToday)
	}
}

func TestComputeRequiresSortedInput(t *testing.T) {
	sorted := []models.SaleRecord{
		sale("2025-03-01", 1000),
		sale("2025-03-02", 1200),
		sale("2025-03-03", 1300),
	}
	unsorted := []models.SaleRecord{sorted[2], sorted[0], sorted[1]}

	a := actuals(Compute(sorted))
	b := actuals(Compute(unsorted))

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
		}
	}
	if same {
		t.Fatalf("expected different payment sequences, both were %v", a)
	}
}

func TestComputeKeepsReceivedFlag(t *testing.T) {
	records := []models.SaleRecord{
		{Date: "2025-03-01", Amount: decimal.NewFromInt(10), IsReceived: true},
		{Date: "2025-03-02", Amount: decimal.NewFromInt(20)},
	}
	views := Compute(records)
	if !views[0].IsReceived || views[1].IsReceived {
		t.Errorf("received flags: got %v/%v, want true/false", views[0].IsReceived, views[1].IsReceived)
	}
}

func TestNegativeAmountContributesNothing(t *testing.T) {
	views := Compute([]models.SaleRecord{
		sale("2025-03-01", -400),
		sale("2025-03-02", 100),
		sale("2025-03-03", 100),
	})
	if !views[1].ActualPaymentToday.IsZero() {
		t.Errorf("actual[1]: got %s, want 0", views[1].ActualPaymentToday)
	}
	if !views[2].ActualPaymentToday.Equal(decimal.NewFromInt(50)) {
		t.Errorf("actual[2]: got %s, want 50", views[2].ActualPaymentToday)
	}
}

func TestSummarize(t *testing.T) {
	views := Compute([]models.SaleRecord{
		sale("2025-03-01", 1000),
		{Date: "2025-03-02", Amount: decimal.NewFromInt(1200), IsReceived: true},
		sale("2025-03-03", 1300),
	})

	totals := Summarize(views)
	if !totals.Amount.Equal(decimal.NewFromInt(3500)) {
		t.Errorf("amount: got %s, want 3500", totals.Amount)
	}
	if !totals.ActualPayment.Equal(decimal.NewFromInt(1600)) {
		t.Errorf("actual: got %s, want 1600", totals.ActualPayment)
	}
	if !totals.ReceivedPayment.Equal(decimal.NewFromInt(500)) {
		t.Errorf("received payment: got %s, want 500", totals.ReceivedPayment)
	}
	if totals.ReceivedCount != 1 || totals.PendingCount != 2 || totals.Days != 3 {
		t.Errorf("counts: got %d/%d/%d, want 1/2/3", totals.ReceivedCount, totals.PendingCount, totals.Days)
	}
}
