package fetcher

import (
	"context"
	"fmt"

	"solana-wallet-ledger/internal/domain"
	"solana-wallet-ledger/internal/idhash"
	"solana-wallet-ledger/internal/observability"
	"solana-wallet-ledger/internal/solana"
)

// FetchNative returns native SOL movement records for the address.
func (f *Fetcher) FetchNative(ctx context.Context, address string) ([]*domain.Record, error) {
	sigs, err := f.client.GetSignaturesForAddress(ctx, address, &solana.SignaturesOpts{
		Limit: f.config.SignatureLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("get signatures for %s: %w", address, err)
	}

	unseen := f.unseenSignatures(address, sigs)
	txs := f.fetchTransactions(ctx, unseen)

	var records []*domain.Record
	for _, tx := range txs {
		rec := f.buildNativeRecord(tx, address)
		// Dust and irrelevant transactions are marked seen too: they
		// will not become interesting later.
		f.markSeen(address, tx.Signature)
		if rec == nil {
			continue
		}
		records = append(records, rec)
		observability.RecordEmitted("native")
	}

	return records, nil
}

// buildNativeRecord converts one transaction into a native movement
// record, or nil when the address did not move a meaningful amount.
func (f *Fetcher) buildNativeRecord(tx *solana.Transaction, address string) *domain.Record {
	if tx.Meta == nil || tx.Message == nil {
		return nil
	}

	idx := -1
	for i, key := range tx.Message.AccountKeys {
		if key == address {
			idx = i
			break
		}
	}
	if idx < 0 || idx >= len(tx.Meta.PreBalances) || idx >= len(tx.Meta.PostBalances) {
		return nil
	}

	delta := int64(tx.Meta.PostBalances[idx]) - int64(tx.Meta.PreBalances[idx])
	abs := delta
	if abs < 0 {
		abs = -abs
	}
	// Fee-only movements fall under the dust threshold.
	if uint64(abs) < f.config.NativeDustLamports {
		return nil
	}

	direction := domain.DirectionInflow
	if delta < 0 {
		direction = domain.DirectionOutflow
	}

	status := domain.StatusConfirmed
	if tx.Meta.Err != nil {
		status = domain.StatusFailed
	}

	return &domain.Record{
		ID:            idhash.ComputeRecordID(tx.Signature, domain.NativeAssetID),
		TxSignature:   tx.Signature,
		Direction:     direction,
		Quantity:      float64(abs) / float64(domain.LamportsPerSOL),
		Asset:         domain.NativeAsset(),
		Category:      domain.DefaultCategory,
		BlockTime:     tx.BlockTime * 1000,
		Status:        status,
		WalletAddress: address,
	}
}
