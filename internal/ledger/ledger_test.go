package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/splitpay/internal/domain/models"
	"github.com/mamadbah2/splitpay/internal/repository/memory"
)

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newLedger(t *testing.T, records ...models.SaleRecord) (*Ledger, *memory.Store) {
	t.Helper()
	store := memory.NewStore(records...)
	l := New(store, nil)
	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return l, store
}

func TestLoadSortsAndNormalizes(t *testing.T) {
	l, _ := newLedger(t,
		models.SaleRecord{Date: "2025-03-03", Amount: amount(3)},
		models.SaleRecord{Date: "1/3/2025", Amount: amount(1)},
		models.SaleRecord{Date: "2025-03-02", Amount: amount(2)},
		models.SaleRecord{Date: "", Amount: amount(9)},
	)

	records := l.Records()
	if len(records) != 3 {
		t.Fatalf("records: got %d, want 3", len(records))
	}
	want := []string{"2025-03-01", "2025-03-02", "2025-03-03"}
	for i, r := range records {
		if r.Date != want[i] {
			t.Errorf("records[%d].Date: got %s, want %s", i, r.Date, want[i])
		}
	}
}

func TestUnreadableStoredDateSurvivesMutations(t *testing.T) {
	l, store := newLedger(t,
		models.SaleRecord{Date: "2025-03-01", Amount: amount(100)},
		models.SaleRecord{Date: "03/15/2025", Amount: amount(999)},
	)

	if got := len(l.Records()); got != 1 {
		t.Fatalf("records: got %d, want 1", got)
	}
	if _, err := l.Upsert(context.Background(), "2025-03-02", amount(50)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	persisted, _ := store.LoadAll(context.Background())
	if len(persisted) != 3 {
		t.Fatalf("persisted: got %+v, want 3 records", persisted)
	}
	kept := persisted[2]
	if kept.Date != "03/15/2025" || !kept.Amount.Equal(amount(999)) {
		t.Errorf("unreadable record: got %+v, want 03/15/2025 999", kept)
	}

	if err := l.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	persisted, _ = store.LoadAll(context.Background())
	if len(persisted) != 0 {
		t.Errorf("after Clear: got %d records, want 0", len(persisted))
	}
}

func TestLoadStorageFailure(t *testing.T) {
	store := memory.NewStore()
	store.FailLoads(errors.New("disk gone"))
	l := New(store, nil)

	err := l.Load(context.Background())
	if !errors.Is(err, ErrStorageFailure) {
		t.Fatalf("Load: got %v, want ErrStorageFailure", err)
	}
}

func TestUpsertInsertsSorted(t *testing.T) {
	l, store := newLedger(t)
	ctx := context.Background()

	for _, d := range []string{"2025-03-05", "2025-03-01", "2025-03-03"} {
		if _, err := l.Upsert(ctx, d, amount(100)); err != nil {
			t.Fatalf("Upsert(%s): %v", d, err)
		}
	}

	records := l.Records()
	if records[0].Date != "2025-03-01" || records[2].Date != "2025-03-05" {
		t.Errorf("records not sorted: %+v", records)
	}
	if store.Saves() != 3 {
		t.Errorf("saves: got %d, want 3", store.Saves())
	}

	persisted, _ := store.LoadAll(ctx)
	if persisted[0].Date != "2025-03-01" {
		t.Errorf("persisted order: got %s first, want 2025-03-01", persisted[0].Date)
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	if _, err := l.Upsert(ctx, "2025-03-01", amount(1000)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	once := l.Records()

	if _, err := l.Upsert(ctx, "2025-03-01", amount(1000)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	twice := l.Records()

	if len(once) != 1 || len(twice) != 1 {
		t.Fatalf("records: got %d then %d, want 1 and 1", len(once), len(twice))
	}
	if once[0].Date != twice[0].Date || !once[0].Amount.Equal(twice[0].Amount) || once[0].IsReceived != twice[0].IsReceived {
		t.Errorf("collection changed: %+v vs %+v", once[0], twice[0])
	}
}

func TestUpsertPreservesReceivedFlag(t *testing.T) {
	l, _ := newLedger(t, models.SaleRecord{Date: "2025-03-01", Amount: amount(1000), IsReceived: true})

	saved, err := l.Upsert(context.Background(), "2025-03-01", amount(1500))
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !saved.Amount.Equal(amount(1500)) {
		t.Errorf("amount: got %s, want 1500", saved.Amount)
	}
	if !saved.IsReceived {
		t.Error("expected received flag to survive an amount edit")
	}
}

func TestUpsertRejectsInvalidInput(t *testing.T) {
	l, store := newLedger(t)
	ctx := context.Background()

	cases := []struct {
		date   string
		amount decimal.Decimal
	}{
		{"", amount(10)},
		{"not-a-date", amount(10)},
		{"2025-03-01", amount(-1)},
	}
	for _, tc := range cases {
		if _, err := l.Upsert(ctx, tc.date, tc.amount); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Upsert(%q, %s): got %v, want ErrInvalidInput", tc.date, tc.amount, err)
		}
	}
	if store.Saves() != 0 {
		t.Errorf("saves: got %d, want 0", store.Saves())
	}
}

func TestUpsertAllowsZero(t *testing.T) {
	l, _ := newLedger(t)
	if _, err := l.Upsert(context.Background(), "2025-03-01", decimal.Zero); err != nil {
		t.Fatalf("Upsert zero: %v", err)
	}
}

func TestDeleteAndReAddResetsReceived(t *testing.T) {
	l, _ := newLedger(t, models.SaleRecord{Date: "2025-03-01", Amount: amount(1000), IsReceived: true})
	ctx := context.Background()

	if err := l.Delete(ctx, "2025-03-01"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := l.Get("2025-03-01"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete: got %v, want ErrNotFound", err)
	}

	saved, err := l.Upsert(ctx, "2025-03-01", amount(1000))
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if saved.IsReceived {
		t.Error("re-added record must start as not received")
	}
}

func TestDeleteMissing(t *testing.T) {
	l, store := newLedger(t)
	if err := l.Delete(context.Background(), "2025-03-01"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete: got %v, want ErrNotFound", err)
	}
	if store.Saves() != 0 {
		t.Errorf("saves: got %d, want 0", store.Saves())
	}
}

func TestToggleReceived(t *testing.T) {
	l, _ := newLedger(t, models.SaleRecord{Date: "2025-03-01", Amount: amount(1000)})
	ctx := context.Background()

	saved, err := l.ToggleReceived(ctx, "2025-03-01")
	if err != nil {
		t.Fatalf("ToggleReceived: %v", err)
	}
	if !saved.IsReceived {
		t.Error("expected received after first toggle")
	}

	saved, err = l.ToggleReceived(ctx, "2025-03-01")
	if err != nil {
		t.Fatalf("ToggleReceived: %v", err)
	}
	if saved.IsReceived {
		t.Error("expected pending after second toggle")
	}

	if _, err := l.ToggleReceived(ctx, "2025-04-01"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ToggleReceived missing: got %v, want ErrNotFound", err)
	}
}

func TestBulkUpsertReplacesWholeRecord(t *testing.T) {
	l, _ := newLedger(t,
		models.SaleRecord{Date: "2025-03-01", Amount: amount(1000), IsReceived: true},
		models.SaleRecord{Date: "2025-03-02", Amount: amount(1200)},
	)

	applied, err := l.BulkUpsert(context.Background(), []models.SaleRecord{
		{Date: "2025-03-01", Amount: amount(10)},
		{Date: "2025-03-03", Amount: amount(30), IsReceived: true},
		{Date: "2025-03-03", Amount: amount(31)},
	})
	if err != nil {
		t.Fatalf("BulkUpsert: %v", err)
	}
	if applied != 3 {
		t.Errorf("applied: got %d, want 3", applied)
	}

	first, _ := l.Get("2025-03-01")
	if !first.Amount.Equal(amount(10)) || first.IsReceived {
		t.Errorf("2025-03-01: got %+v, want amount 10 and not received", first)
	}

	third, _ := l.Get("2025-03-03")
	if !third.Amount.Equal(amount(31)) || third.IsReceived {
		t.Errorf("2025-03-03: got %+v, want later batch entry to win", third)
	}

	if n := len(l.Records()); n != 3 {
		t.Errorf("records: got %d, want 3", n)
	}
}

func TestBulkUpsertValidatesWholeBatch(t *testing.T) {
	l, store := newLedger(t)

	_, err := l.BulkUpsert(context.Background(), []models.SaleRecord{
		{Date: "2025-03-01", Amount: amount(10)},
		{Date: "2025-03-02", Amount: amount(-5)},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("BulkUpsert: got %v, want ErrInvalidInput", err)
	}
	if len(l.Records()) != 0 || store.Saves() != 0 {
		t.Error("expected no partial mutation")
	}
}

func TestStorageFailureLeavesMemoryUntouched(t *testing.T) {
	l, store := newLedger(t, models.SaleRecord{Date: "2025-03-01", Amount: amount(1000)})
	store.FailSaves(errors.New("write refused"))
	ctx := context.Background()

	if _, err := l.Upsert(ctx, "2025-03-02", amount(5)); !errors.Is(err, ErrStorageFailure) {
		t.Errorf("Upsert: got %v, want ErrStorageFailure", err)
	}
	if _, err := l.ToggleReceived(ctx, "2025-03-01"); !errors.Is(err, ErrStorageFailure) {
		t.Errorf("ToggleReceived: got %v, want ErrStorageFailure", err)
	}
	if err := l.Clear(ctx); !errors.Is(err, ErrStorageFailure) {
		t.Errorf("Clear: got %v, want ErrStorageFailure", err)
	}

	records := l.Records()
	if len(records) != 1 || records[0].IsReceived {
		t.Errorf("memory changed after failed writes: %+v", records)
	}
}

func TestClear(t *testing.T) {
	l, store := newLedger(t, models.SaleRecord{Date: "2025-03-01", Amount: amount(1000)})
	if err := l.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(l.Records()) != 0 {
		t.Error("expected empty ledger")
	}
	persisted, _ := store.LoadAll(context.Background())
	if len(persisted) != 0 {
		t.Errorf("persisted: got %d, want 0", len(persisted))
	}
}

func TestViewsRecomputeAfterMutation(t *testing.T) {
	l, _ := newLedger(t,
		models.SaleRecord{Date: "2025-03-01", Amount: amount(1000)},
		models.SaleRecord{Date: "2025-03-02", Amount: amount(1200)},
		models.SaleRecord{Date: "2025-03-03", Amount: amount(1300)},
	)

	views := l.Views()
	if !views[2].ActualPaymentToday.Equal(amount(1100)) {
		t.Fatalf("actual[2]: got %s, want 1100", views[2].ActualPaymentToday)
	}

	if err := l.Delete(context.Background(), "2025-03-02"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	views = l.Views()
	if !views[1].ActualPaymentToday.Equal(amount(500)) {
		t.Errorf("actual[1] after delete: got %s, want 500", views[1].ActualPaymentToday)
	}
}
