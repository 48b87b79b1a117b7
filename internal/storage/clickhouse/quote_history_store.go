package clickhouse

import (
	"context"
	"fmt"

	"solana-wallet-ledger/internal/domain"
	"solana-wallet-ledger/internal/storage"
)

// QuoteHistoryStore implements storage.QuoteHistoryStore using ClickHouse.
// Snapshots are append-only; MergeTree does not enforce uniqueness and the
// store does not need it.
type QuoteHistoryStore struct {
	conn *Conn
}

// NewQuoteHistoryStore creates a new QuoteHistoryStore.
func NewQuoteHistoryStore(conn *Conn) *QuoteHistoryStore {
	return &QuoteHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.QuoteHistoryStore = (*QuoteHistoryStore)(nil)

// InsertSnapshots appends a batch of price snapshots.
func (s *QuoteHistoryStore) InsertSnapshots(ctx context.Context, snapshots []*domain.QuoteSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO quote_history (
			symbol, price, source, fetched_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		err = batch.Append(snap.Symbol, snap.Price, snap.Source, uint64(snap.FetchedAt))
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetBySymbol retrieves snapshots for a symbol within [start, end] (inclusive,
// unix ms), ordered by fetched_at ASC.
func (s *QuoteHistoryStore) GetBySymbol(ctx context.Context, symbol string, start, end int64) ([]*domain.QuoteSnapshot, error) {
	query := `
		SELECT symbol, price, source, fetched_at
		FROM quote_history
		WHERE symbol = ? AND fetched_at >= ? AND fetched_at <= ?
		ORDER BY fetched_at ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by symbol: %w", err)
	}
	defer rows.Close()

	var snapshots []*domain.QuoteSnapshot
	for rows.Next() {
		var snap domain.QuoteSnapshot
		var fetchedAt uint64

		if err := rows.Scan(&snap.Symbol, &snap.Price, &snap.Source, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scan quote history row: %w", err)
		}

		snap.FetchedAt = int64(fetchedAt)
		snapshots = append(snapshots, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quote history rows: %w", err)
	}

	return snapshots, nil
}
