package memory

import (
	"context"
	"sort"
	"sync"

	"solana-wallet-ledger/internal/domain"
	"solana-wallet-ledger/internal/storage"
)

// WalletStore is an in-memory implementation of storage.WalletStore.
type WalletStore struct {
	mu          sync.RWMutex
	wallets     map[string]*domain.Wallet
	autoRefresh bool
}

// NewWalletStore creates a new in-memory wallet store.
func NewWalletStore() *WalletStore {
	return &WalletStore{
		wallets: make(map[string]*domain.Wallet),
	}
}

// ListWallets returns all wallets ordered by added time, then address.
func (s *WalletStore) ListWallets(_ context.Context) ([]*domain.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Wallet, 0, len(s.wallets))
	for _, w := range s.wallets {
		cp := *w
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AddedAt != out[j].AddedAt {
			return out[i].AddedAt < out[j].AddedAt
		}
		return out[i].Address < out[j].Address
	})

	return out, nil
}

// AddWallet registers an address. Returns ErrDuplicateKey if it exists.
func (s *WalletStore) AddWallet(_ context.Context, w *domain.Wallet) error {
	if w == nil || w.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.wallets[w.Address]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *w
	s.wallets[w.Address] = &cp
	return nil
}

// RemoveWallet deletes an address. Returns ErrNotFound if absent.
func (s *WalletStore) RemoveWallet(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.wallets[address]; !exists {
		return storage.ErrNotFound
	}

	delete(s.wallets, address)
	return nil
}

// SetActive toggles monitoring of an address. Returns ErrNotFound if absent.
func (s *WalletStore) SetActive(_ context.Context, address string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, exists := s.wallets[address]
	if !exists {
		return storage.ErrNotFound
	}

	w.Active = active
	return nil
}

// AutoRefreshEnabled reports the persisted auto-refresh flag.
func (s *WalletStore) AutoRefreshEnabled(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autoRefresh, nil
}

// SetAutoRefresh persists the auto-refresh flag.
func (s *WalletStore) SetAutoRefresh(_ context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoRefresh = enabled
	return nil
}

var _ storage.WalletStore = (*WalletStore)(nil)
