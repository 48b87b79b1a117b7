// Package refresh orchestrates a ledger refresh cycle: enumerate
// monitored wallets, fetch candidate records serially per address,
// refresh prices, and reconcile into the canonical record set. At most
// one refresh runs at a time; a second request while one is in flight
// is a no-op.
package refresh

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"solana-wallet-ledger/internal/domain"
	"solana-wallet-ledger/internal/fetcher"
	"solana-wallet-ledger/internal/observability"
	"solana-wallet-ledger/internal/pricing"
	"solana-wallet-ledger/internal/queue"
	"solana-wallet-ledger/internal/reconcile"
	"solana-wallet-ledger/internal/solana"
	"solana-wallet-ledger/internal/storage"
)

// Service is the ledger refresh entry point.
type Service struct {
	records storage.RecordStore
	wallets storage.WalletStore
	fetcher *fetcher.Fetcher
	prices  *pricing.Service
	queue   *queue.Queue
	logger  *log.Logger

	inProgress atomic.Bool
}

// ServiceOptions configures a refresh Service.
type ServiceOptions struct {
	Records storage.RecordStore
	Wallets storage.WalletStore
	Fetcher *fetcher.Fetcher
	Prices  *pricing.Service
	Queue   *queue.Queue
	Logger  *log.Logger
}

// NewService creates a refresh service. A nil logger falls back to stdout.
func NewService(opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[refresh] ", log.LstdFlags|log.Lshortfile)
	}
	return &Service{
		records: opts.Records,
		wallets: opts.Wallets,
		fetcher: opts.Fetcher,
		prices:  opts.Prices,
		queue:   opts.Queue,
		logger:  logger,
	}
}

// Result summarizes one refresh cycle.
type Result struct {
	// Started is false when another refresh was already in flight and
	// this call was a no-op.
	Started bool

	Addresses  queue.Stats
	Candidates int
	Total      int // canonical set size after reconcile
	Rates      map[string]float64
}

// Refresh runs one full cycle. Per-address and price failures are
// absorbed (retried, then skipped); only storage failures surface as
// errors, since without storage there is no ledger to update.
func (s *Service) Refresh(ctx context.Context) (*Result, error) {
	if !s.inProgress.CompareAndSwap(false, true) {
		s.logger.Printf("refresh already in progress, skipping")
		observability.RecordRefresh("skipped", 0)
		return &Result{}, nil
	}
	defer s.inProgress.Store(false)

	start := time.Now()

	wallets, err := s.wallets.ListWallets(ctx)
	if err != nil {
		observability.RecordRefresh("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("list wallets: %w", err)
	}

	for _, w := range wallets {
		if !w.Active {
			observability.RecordAddressSkipped("inactive")
			continue
		}
		if err := solana.ValidateWalletAddress(w.Address); err != nil {
			s.logger.Printf("skipping invalid address %q: %v", w.Address, err)
			observability.RecordAddressSkipped("invalid_address")
			continue
		}
		s.queue.Enqueue(w.Address)
	}

	var (
		candMu     sync.Mutex
		candidates []*domain.Record
	)

	stats := s.queue.Drain(ctx, func(ctx context.Context, address string) error {
		recs, err := s.fetcher.FetchAddress(ctx, address)
		if err != nil {
			return err
		}
		candMu.Lock()
		candidates = append(candidates, recs...)
		candMu.Unlock()
		return nil
	})

	rates := s.prices.GetRates(ctx)

	existing, err := s.records.LoadRecords(ctx)
	if err != nil {
		observability.RecordRefresh("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("load records: %w", err)
	}

	merged := reconcile.Merge(candidates, existing)

	if err := s.records.SaveRecords(ctx, merged); err != nil {
		observability.RecordRefresh("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("save records: %w", err)
	}

	elapsed := time.Since(start)
	observability.RecordRefresh("success", elapsed.Seconds())
	s.logger.Printf("refresh done in %v: %d addresses, %d candidates, %d records",
		elapsed.Round(time.Millisecond), stats.Processed, len(candidates), len(merged))

	return &Result{
		Started:    true,
		Addresses:  stats,
		Candidates: len(candidates),
		Total:      len(merged),
		Rates:      rates,
	}, nil
}

// Classify assigns a category and note to a record and marks it
// user-classified, surviving all future refreshes.
func (s *Service) Classify(ctx context.Context, recordID, category string, note *string) error {
	if recordID == "" || category == "" {
		return storage.ErrInvalidInput
	}

	records, err := s.records.LoadRecords(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	found := false
	for _, r := range records {
		if r.ID != recordID {
			continue
		}
		r.Category = category
		if note != nil {
			n := *note
			r.Note = &n
		} else {
			r.Note = nil
		}
		r.UserClassified = true
		found = true
		break
	}
	if !found {
		return storage.ErrNotFound
	}

	return s.records.SaveRecords(ctx, records)
}

// Records returns the canonical record set, newest first.
func (s *Service) Records(ctx context.Context) ([]*domain.Record, error) {
	return s.records.LoadRecords(ctx)
}

// AddWallet validates and registers an address for monitoring.
// Program-derived addresses are rejected: they cannot be wallets.
func (s *Service) AddWallet(ctx context.Context, address, label string) error {
	if err := solana.ValidateWalletAddress(address); err != nil {
		return err
	}
	return s.wallets.AddWallet(ctx, &domain.Wallet{
		Address: address,
		Label:   label,
		Active:  true,
		AddedAt: time.Now().UnixMilli(),
	})
}
