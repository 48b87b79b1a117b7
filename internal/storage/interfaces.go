package storage

import (
	"context"

	"solana-wallet-ledger/internal/domain"
)

// RecordStore persists the canonical record set. Saves are wholesale: the
// reconciler always produces the complete new set, so the store replaces
// rather than patches.
type RecordStore interface {
	// LoadRecords returns the full canonical record set.
	LoadRecords(ctx context.Context) ([]*domain.Record, error)

	// SaveRecords replaces the canonical record set.
	SaveRecords(ctx context.Context, records []*domain.Record) error

	// Reset removes all records. Only a wholesale data reset deletes
	// records; refreshes never do.
	Reset(ctx context.Context) error
}

// WalletStore persists the monitored-address list and refresh settings.
type WalletStore interface {
	// ListWallets returns all wallets, active and inactive.
	ListWallets(ctx context.Context) ([]*domain.Wallet, error)

	// AddWallet registers an address. Returns ErrDuplicateKey if it exists.
	AddWallet(ctx context.Context, w *domain.Wallet) error

	// RemoveWallet deletes an address. Returns ErrNotFound if absent.
	RemoveWallet(ctx context.Context, address string) error

	// SetActive toggles monitoring of an address. Returns ErrNotFound if absent.
	SetActive(ctx context.Context, address string, active bool) error

	// AutoRefreshEnabled reports the persisted auto-refresh flag.
	AutoRefreshEnabled(ctx context.Context) (bool, error)

	// SetAutoRefresh persists the auto-refresh flag.
	SetAutoRefresh(ctx context.Context, enabled bool) error
}

// QuoteHistoryStore appends observed price snapshots for valuation history.
type QuoteHistoryStore interface {
	// InsertSnapshots appends a batch of snapshots.
	InsertSnapshots(ctx context.Context, snapshots []*domain.QuoteSnapshot) error

	// GetBySymbol returns snapshots for a symbol within [start, end] ms,
	// ordered by fetched_at ASC.
	GetBySymbol(ctx context.Context, symbol string, start, end int64) ([]*domain.QuoteSnapshot, error)
}
