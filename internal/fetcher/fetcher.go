// Package fetcher derives candidate ledger records from on-chain
// activity: native SOL movements read from balance deltas, and SPL
// token movements attributed per token account.
package fetcher

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"solana-wallet-ledger/internal/domain"
	"solana-wallet-ledger/internal/observability"
	"solana-wallet-ledger/internal/sigcache"
	"solana-wallet-ledger/internal/solana"
)

// Fetcher turns transaction history into candidate records.
type Fetcher struct {
	client solana.RPCClient
	seen   *sigcache.Cache
	config Config
	logger *log.Logger
}

// New creates a Fetcher. A nil logger falls back to stdout.
func New(client solana.RPCClient, seen *sigcache.Cache, config Config, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.New(os.Stdout, "[fetcher] ", log.LstdFlags|log.Lshortfile)
	}
	return &Fetcher{
		client: client,
		seen:   seen,
		config: config.withDefaults(),
		logger: logger,
	}
}

// FetchAddress returns candidate records for one wallet address,
// combining native and token movements. An error here is address-level
// (signature listing or account enumeration failed) and the caller may
// retry the whole address; per-transaction failures are swallowed and
// picked up by a later refresh.
func (f *Fetcher) FetchAddress(ctx context.Context, address string) ([]*domain.Record, error) {
	native, err := f.FetchNative(ctx, address)
	if err != nil {
		return nil, err
	}

	token, err := f.FetchToken(ctx, address)
	if err != nil {
		return nil, err
	}

	return append(native, token...), nil
}

// markSeen records a processed signature under a scope. Seen keys are
// scoped per listed history (wallet address or token account pubkey):
// one transaction can touch several monitored histories, and each must
// process it once.
func (f *Fetcher) markSeen(scope, signature string) {
	f.seen.Record(scope+"|"+signature, time.Now())
}

// unseenSignatures filters out signatures already processed under the
// scope.
func (f *Fetcher) unseenSignatures(scope string, sigs []solana.SignatureInfo) []string {
	var out []string
	for _, s := range sigs {
		if f.seen.Has(scope + "|" + s.Signature) {
			observability.RecordSignatureSkipped()
			continue
		}
		out = append(out, s.Signature)
	}
	return out
}

// fetchTransactions retrieves transactions in bounded batches.
// Concurrency within a batch equals the batch size; batches are
// separated by a delay. Failed and not-yet-indexed signatures are
// dropped from the result and left unseen so a later refresh retries
// them.
func (f *Fetcher) fetchTransactions(ctx context.Context, sigs []string) []*solana.Transaction {
	var (
		out   []*solana.Transaction
		outMu sync.Mutex
	)

	for start := 0; start < len(sigs); start += f.config.BatchSize {
		end := start + f.config.BatchSize
		if end > len(sigs) {
			end = len(sigs)
		}

		var wg sync.WaitGroup
		for _, sig := range sigs[start:end] {
			wg.Add(1)
			go func(sig string) {
				defer wg.Done()

				txCtx, cancel := context.WithTimeout(ctx, f.config.TxTimeout)
				defer cancel()

				tx, err := f.client.GetTransaction(txCtx, sig)
				if err != nil {
					f.logger.Printf("get transaction %s: %v", sig, err)
					observability.RecordTransactionFailed("rpc")
					return
				}
				if tx == nil {
					observability.RecordTransactionFailed("not_found")
					return
				}

				outMu.Lock()
				out = append(out, tx)
				outMu.Unlock()
			}(sig)
		}
		wg.Wait()

		if end < len(sigs) {
			select {
			case <-ctx.Done():
				return out
			case <-time.After(f.config.BatchDelay):
			}
		}
	}

	return out
}
