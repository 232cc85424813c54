package memory

import (
	"context"
	"sync"

	"github.com/mamadbah2/splitpay/internal/domain/models"
)

// Store keeps the record collection in process memory.
type Store struct {
	mu      sync.Mutex
	records []models.SaleRecord
	saveErr error
	loadErr error
	saves   int
}

// NewStore creates a store primed with records.
func NewStore(records ...models.SaleRecord) *Store {
	return &Store{records: clone(records)}
}

// LoadAll returns a copy of the stored records.
func (s *Store) LoadAll(_ context.Context) ([]models.SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return clone(s.records), nil
}

// SaveAll replaces the stored records.
func (s *Store) SaveAll(_ context.Context, records []models.SaleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records = clone(records)
	s.saves++
	return nil
}

// FailSaves makes every subsequent SaveAll return err. Pass nil to recover.
func (s *Store) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// FailLoads makes every subsequent LoadAll return err. Pass nil to recover.
func (s *Store) FailLoads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

// Saves reports how many writes succeeded.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func clone(records []models.SaleRecord) []models.SaleRecord {
	out := make([]models.SaleRecord, len(records))
	copy(out, records)
	return out
}
