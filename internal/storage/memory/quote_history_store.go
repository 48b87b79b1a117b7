package memory

import (
	"context"
	"sort"
	"sync"

	"solana-wallet-ledger/internal/domain"
	"solana-wallet-ledger/internal/storage"
)

// QuoteHistoryStore is an in-memory implementation of storage.QuoteHistoryStore.
type QuoteHistoryStore struct {
	mu        sync.RWMutex
	snapshots []*domain.QuoteSnapshot
}

// NewQuoteHistoryStore creates a new in-memory quote history store.
func NewQuoteHistoryStore() *QuoteHistoryStore {
	return &QuoteHistoryStore{}
}

// InsertSnapshots appends a batch of snapshots.
func (s *QuoteHistoryStore) InsertSnapshots(_ context.Context, snapshots []*domain.QuoteSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	for _, snap := range snapshots {
		if snap == nil || snap.Symbol == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, snap := range snapshots {
		cp := *snap
		s.snapshots = append(s.snapshots, &cp)
	}
	return nil
}

// GetBySymbol returns snapshots for a symbol within [start, end] ms,
// ordered by fetched_at ASC.
func (s *QuoteHistoryStore) GetBySymbol(_ context.Context, symbol string, start, end int64) ([]*domain.QuoteSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.QuoteSnapshot
	for _, snap := range s.snapshots {
		if snap.Symbol == symbol && snap.FetchedAt >= start && snap.FetchedAt <= end {
			cp := *snap
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].FetchedAt < out[j].FetchedAt
	})

	return out, nil
}

var _ storage.QuoteHistoryStore = (*QuoteHistoryStore)(nil)
