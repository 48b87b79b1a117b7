package postgres

import (
	"context"
	"fmt"

	"solana-wallet-ledger/internal/domain"
	"solana-wallet-ledger/internal/storage"
)

// RecordStore implements storage.RecordStore using PostgreSQL.
//
// The reconciler always produces the complete canonical set, so SaveRecords
// replaces the table contents inside one transaction rather than patching
// individual rows.
type RecordStore struct {
	pool *Pool
}

// NewRecordStore creates a new RecordStore.
func NewRecordStore(pool *Pool) *RecordStore {
	return &RecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RecordStore = (*RecordStore)(nil)

// LoadRecords returns the full canonical record set, newest first.
func (s *RecordStore) LoadRecords(ctx context.Context) ([]*domain.Record, error) {
	query := `
		SELECT id, tx_signature, direction, quantity,
			asset_id, asset_symbol, asset_name, asset_decimals, asset_icon_url,
			category, note, user_classified,
			block_time, status, wallet_address
		FROM records
		ORDER BY block_time DESC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []*domain.Record
	for rows.Next() {
		var r domain.Record
		var direction, status string

		err := rows.Scan(
			&r.ID, &r.TxSignature, &direction, &r.Quantity,
			&r.Asset.ID, &r.Asset.Symbol, &r.Asset.Name, &r.Asset.Decimals, &r.Asset.IconURL,
			&r.Category, &r.Note, &r.UserClassified,
			&r.BlockTime, &status, &r.WalletAddress,
		)
		if err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}

		r.Direction = domain.Direction(direction)
		r.Status = domain.Status(status)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record rows: %w", err)
	}

	return records, nil
}

// SaveRecords atomically replaces the canonical record set.
func (s *RecordStore) SaveRecords(ctx context.Context, records []*domain.Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	query := `
		INSERT INTO records (
			id, tx_signature, direction, quantity,
			asset_id, asset_symbol, asset_name, asset_decimals, asset_icon_url,
			category, note, user_classified,
			block_time, status, wallet_address
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9,
			$10, $11, $12,
			$13, $14, $15
		)
	`

	for _, r := range records {
		_, err := tx.Exec(ctx, query,
			r.ID, r.TxSignature, string(r.Direction), r.Quantity,
			r.Asset.ID, r.Asset.Symbol, r.Asset.Name, r.Asset.Decimals, r.Asset.IconURL,
			r.Category, r.Note, r.UserClassified,
			r.BlockTime, string(r.Status), r.WalletAddress,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// Reset removes all records.
func (s *RecordStore) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("reset records: %w", err)
	}
	return nil
}
