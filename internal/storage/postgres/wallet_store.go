package postgres

import (
	"context"
	"fmt"

	"solana-wallet-ledger/internal/domain"
	"solana-wallet-ledger/internal/storage"
)

// settingAutoRefresh is the settings-table key for the auto-refresh flag.
const settingAutoRefresh = "auto_refresh"

// WalletStore implements storage.WalletStore using PostgreSQL.
type WalletStore struct {
	pool *Pool
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(pool *Pool) *WalletStore {
	return &WalletStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

// ListWallets returns all wallets ordered by when they were added.
func (s *WalletStore) ListWallets(ctx context.Context) ([]*domain.Wallet, error) {
	query := `
		SELECT address, label, active, added_at
		FROM wallets
		ORDER BY added_at ASC, address ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query wallets: %w", err)
	}
	defer rows.Close()

	var wallets []*domain.Wallet
	for rows.Next() {
		var w domain.Wallet
		if err := rows.Scan(&w.Address, &w.Label, &w.Active, &w.AddedAt); err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}

	return wallets, nil
}

// AddWallet registers an address. Returns ErrDuplicateKey if it exists.
func (s *WalletStore) AddWallet(ctx context.Context, w *domain.Wallet) error {
	query := `
		INSERT INTO wallets (address, label, active, added_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query, w.Address, w.Label, w.Active, w.AddedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// RemoveWallet deletes an address. Returns ErrNotFound if absent.
func (s *WalletStore) RemoveWallet(ctx context.Context, address string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM wallets WHERE address = $1`, address)
	if err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetActive toggles monitoring of an address. Returns ErrNotFound if absent.
func (s *WalletStore) SetActive(ctx context.Context, address string, active bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE wallets SET active = $2 WHERE address = $1`, address, active)
	if err != nil {
		return fmt.Errorf("update wallet active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AutoRefreshEnabled reports the persisted auto-refresh flag. A missing
// setting means the flag was never enabled.
func (s *WalletStore) AutoRefreshEnabled(ctx context.Context) (bool, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM settings WHERE key = $1`, settingAutoRefresh,
	).Scan(&value)
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("query auto-refresh setting: %w", err)
	}
	return value == "true", nil
}

// SetAutoRefresh persists the auto-refresh flag.
func (s *WalletStore) SetAutoRefresh(ctx context.Context, enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}

	query := `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`

	if _, err := s.pool.Exec(ctx, query, settingAutoRefresh, value); err != nil {
		return fmt.Errorf("upsert auto-refresh setting: %w", err)
	}
	return nil
}
