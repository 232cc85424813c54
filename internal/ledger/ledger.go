// Package ledger owns the collection of daily sale records and the mutations
// applied to it. Every mutation is persisted through the injected Store before
// it becomes visible in memory.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/splitpay/internal/domain/models"
	"github.com/mamadbah2/splitpay/internal/settlement"
)

// Store persists the full record collection.
type Store interface {
	LoadAll(ctx context.Context) ([]models.SaleRecord, error)
	SaveAll(ctx context.Context, records []models.SaleRecord) error
}

// Ledger is the single writer over the sales collection.
type Ledger struct {
	mu      sync.Mutex
	store   Store
	records []models.SaleRecord
	// stored rows whose date cannot be read; written back untouched on every save
	unparsed []models.SaleRecord
	logger   *zap.Logger
}

// New creates an empty ledger backed by store. Call Load to read persisted records.
func New(store Store, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{store: store, logger: logger}
}

// Load replaces the in-memory collection with the store's contents.
func (l *Ledger) Load(ctx context.Context) error {
	records, err := l.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: load records: %v", ErrStorageFailure, err)
	}

	normalized := make([]models.SaleRecord, 0, len(records))
	var unparsed []models.SaleRecord
	for _, r := range records {
		date, err := models.NormalizeDate(r.Date)
		if err != nil {
			l.logger.Warn("keeping stored record with invalid date out of the ledger", zap.String("date", r.Date), zap.Error(err))
			unparsed = append(unparsed, r)
			continue
		}
		r.Date = date
		normalized = upsertRecord(normalized, r)
	}
	sortRecords(normalized)

	l.mu.Lock()
	l.records = normalized
	l.unparsed = unparsed
	l.mu.Unlock()

	l.logger.Info("ledger loaded", zap.Int("records", len(normalized)), zap.Int("unparsed", len(unparsed)))
	return nil
}

// Records returns a copy of the date-sorted collection.
func (l *Ledger) Records() []models.SaleRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneRecords(l.records)
}

// Views recomputes the settlement view of the whole collection.
func (l *Ledger) Views() []models.SettlementView {
	return settlement.Compute(l.Records())
}

// Get returns the record stored for date.
func (l *Ledger) Get(date string) (models.SaleRecord, error) {
	key, err := normalizeKey(date)
	if err != nil {
		return models.SaleRecord{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := indexOf(l.records, key)
	if idx < 0 {
		return models.SaleRecord{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return l.records[idx], nil
}

// Upsert sets the sale amount for date. An existing record keeps its received
// flag; a new record starts as not received.
func (l *Ledger) Upsert(ctx context.Context, date string, amount decimal.Decimal) (models.SaleRecord, error) {
	key, err := normalizeKey(date)
	if err != nil {
		return models.SaleRecord{}, err
	}
	if amount.IsNegative() {
		return models.SaleRecord{}, fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}

	var saved models.SaleRecord
	err = l.mutate(ctx, func(records []models.SaleRecord) ([]models.SaleRecord, error) {
		if idx := indexOf(records, key); idx >= 0 {
			records[idx].Amount = amount
			saved = records[idx]
			return records, nil
		}
		saved = models.SaleRecord{Date: key, Amount: amount}
		return append(records, saved), nil
	})
	if err != nil {
		return models.SaleRecord{}, err
	}

	l.logger.Info("sale upserted", zap.String("date", key), zap.String("amount", amount.String()))
	return saved, nil
}

// Delete removes the record for date.
func (l *Ledger) Delete(ctx context.Context, date string) error {
	key, err := normalizeKey(date)
	if err != nil {
		return err
	}

	err = l.mutate(ctx, func(records []models.SaleRecord) ([]models.SaleRecord, error) {
		idx := indexOf(records, key)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return append(records[:idx], records[idx+1:]...), nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("sale deleted", zap.String("date", key))
	return nil
}

// ToggleReceived flips the received flag of the record for date.
func (l *Ledger) ToggleReceived(ctx context.Context, date string) (models.SaleRecord, error) {
	key, err := normalizeKey(date)
	if err != nil {
		return models.SaleRecord{}, err
	}

	var saved models.SaleRecord
	err = l.mutate(ctx, func(records []models.SaleRecord) ([]models.SaleRecord, error) {
		idx := indexOf(records, key)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		records[idx].IsReceived = !records[idx].IsReceived
		saved = records[idx]
		return records, nil
	})
	if err != nil {
		return models.SaleRecord{}, err
	}

	l.logger.Info("received flag toggled", zap.String("date", key), zap.Bool("is_received", saved.IsReceived))
	return saved, nil
}

// BulkUpsert writes every incoming record, replacing any stored record with
// the same date entirely. Later entries in the batch win. The whole batch is
// validated before anything is written.
func (l *Ledger) BulkUpsert(ctx context.Context, incoming []models.SaleRecord) (int, error) {
	batch := make([]models.SaleRecord, 0, len(incoming))
	for i, r := range incoming {
		key, err := normalizeKey(r.Date)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		if r.Amount.IsNegative() {
			return 0, fmt.Errorf("record %d: %w: amount must not be negative", i, ErrInvalidInput)
		}
		r.Date = key
		batch = append(batch, r)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	err := l.mutate(ctx, func(records []models.SaleRecord) ([]models.SaleRecord, error) {
		for _, r := range batch {
			records = upsertRecord(records, r)
		}
		return records, nil
	})
	if err != nil {
		return 0, err
	}

	l.logger.Info("bulk upsert applied", zap.Int("records", len(batch)))
	return len(batch), nil
}

// Clear removes every record, including stored rows whose date could not be read.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.SaveAll(ctx, []models.SaleRecord{}); err != nil {
		l.logger.Error("failed to persist sales", zap.Error(err))
		return fmt.Errorf("%w: save records: %v", ErrStorageFailure, err)
	}

	l.records = []models.SaleRecord{}
	l.unparsed = nil
	l.logger.Info("ledger cleared")
	return nil
}

// mutate applies fn to a copy of the collection, sorts and persists the
// result, and only then swaps it in.
func (l *Ledger) mutate(ctx context.Context, fn func([]models.SaleRecord) ([]models.SaleRecord, error)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next, err := fn(cloneRecords(l.records))
	if err != nil {
		return err
	}
	sortRecords(next)

	persisted := append(cloneRecords(next), l.unparsed...)
	if err := l.store.SaveAll(ctx, persisted); err != nil {
		l.logger.Error("failed to persist sales", zap.Error(err))
		return fmt.Errorf("%w: save records: %v", ErrStorageFailure, err)
	}

	l.records = next
	return nil
}

func normalizeKey(date string) (string, error) {
	key, err := models.NormalizeDate(date)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return key, nil
}

func upsertRecord(records []models.SaleRecord, r models.SaleRecord) []models.SaleRecord {
	if idx := indexOf(records, r.Date); idx >= 0 {
		records[idx] = r
		return records
	}
	return append(records, r)
}

func indexOf(records []models.SaleRecord, date string) int {
	for i := range records {
		if records[i].Date == date {
			return i
		}
	}
	return -1
}

func sortRecords(records []models.SaleRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date < records[j].Date
	})
}

func cloneRecords(records []models.SaleRecord) []models.SaleRecord {
	out := make([]models.SaleRecord, len(records))
	copy(out, records)
	return out
}
