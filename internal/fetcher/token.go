package fetcher

import (
	"context"
	"fmt"
	"math"

	"solana-wallet-ledger/internal/domain"
	"solana-wallet-ledger/internal/idhash"
	"solana-wallet-ledger/internal/observability"
	"solana-wallet-ledger/internal/solana"
)

// FetchToken returns SPL token movement records for the address.
func (f *Fetcher) FetchToken(ctx context.Context, address string) ([]*domain.Record, error) {
	accounts, err := f.client.GetTokenAccountsByOwner(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("get token accounts for %s: %w", address, err)
	}

	if len(accounts) > f.config.MaxTokenAccounts {
		f.logger.Printf("address %s has %d token accounts, scanning first %d",
			address, len(accounts), f.config.MaxTokenAccounts)
		accounts = accounts[:f.config.MaxTokenAccounts]
	}

	var records []*domain.Record
	for _, account := range accounts {
		recs, err := f.fetchTokenAccount(ctx, address, account)
		if err != nil {
			// One busted token account does not sink the address.
			f.logger.Printf("token account %s: %v", account.Pubkey, err)
			observability.RecordTransactionFailed("token_account")
			continue
		}
		records = append(records, recs...)
	}

	return records, nil
}

func (f *Fetcher) fetchTokenAccount(ctx context.Context, owner string, account solana.TokenAccount) ([]*domain.Record, error) {
	sigs, err := f.client.GetSignaturesForAddress(ctx, account.Pubkey, &solana.SignaturesOpts{
		Limit: f.config.SignatureLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("get signatures for %s: %w", account.Pubkey, err)
	}

	unseen := f.unseenSignatures(account.Pubkey, sigs)
	txs := f.fetchTransactions(ctx, unseen)

	var records []*domain.Record
	for _, tx := range txs {
		recs := f.buildTokenRecords(tx, owner, account)
		f.markSeen(account.Pubkey, tx.Signature)
		records = append(records, recs...)
	}

	return records, nil
}

// buildTokenRecords extracts per-mint movements of one token account
// from a transaction.
func (f *Fetcher) buildTokenRecords(tx *solana.Transaction, owner string, account solana.TokenAccount) []*domain.Record {
	var records []*domain.Record

	for _, d := range extractDeltas(tx, account) {
		abs := math.Abs(d.amount)
		if abs < f.config.TokenDustUnits {
			continue
		}
		if abs > f.config.MaxPlausibleAmount {
			observability.RecordTransactionFailed("implausible")
			continue
		}

		asset, ok := domain.LookupAsset(d.mint)
		if !ok {
			asset = domain.PlaceholderAsset(d.mint, d.decimals, f.config.MaxDecimals)
		}

		direction := domain.DirectionInflow
		if d.amount < 0 {
			direction = domain.DirectionOutflow
		}

		status := domain.StatusConfirmed
		if tx.Meta != nil && tx.Meta.Err != nil {
			status = domain.StatusFailed
		}

		records = append(records, &domain.Record{
			ID:            idhash.ComputeRecordID(tx.Signature, asset.ID),
			TxSignature:   tx.Signature,
			Direction:     direction,
			Quantity:      abs,
			Asset:         asset,
			Category:      domain.DefaultCategory,
			BlockTime:     tx.BlockTime * 1000,
			Status:        status,
			WalletAddress: owner,
		})
		observability.RecordEmitted("token")
	}

	return records
}
