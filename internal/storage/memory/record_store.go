package memory

import (
	"context"
	"sync"

	"solana-wallet-ledger/internal/domain"
	"solana-wallet-ledger/internal/storage"
)

// RecordStore is an in-memory implementation of storage.RecordStore.
type RecordStore struct {
	mu      sync.RWMutex
	records []*domain.Record
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{}
}

// LoadRecords returns a copy of the canonical record set.
func (s *RecordStore) LoadRecords(_ context.Context) ([]*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Record, len(s.records))
	for i, r := range s.records {
		out[i] = copyRecord(r)
	}
	return out, nil
}

// SaveRecords replaces the canonical record set.
func (s *RecordStore) SaveRecords(_ context.Context, records []*domain.Record) error {
	for _, r := range records {
		if r == nil || r.ID == "" {
			return storage.ErrInvalidInput
		}
	}

	copied := make([]*domain.Record, len(records))
	for i, r := range records {
		copied[i] = copyRecord(r)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = copied
	return nil
}

// Reset removes all records.
func (s *RecordStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

// copyRecord deep-copies a record, including the optional note.
func copyRecord(r *domain.Record) *domain.Record {
	cp := *r
	if r.Note != nil {
		note := *r.Note
		cp.Note = &note
	}
	if r.Asset.IconURL != nil {
		icon := *r.Asset.IconURL
		cp.Asset.IconURL = &icon
	}
	return &cp
}

var _ storage.RecordStore = (*RecordStore)(nil)
