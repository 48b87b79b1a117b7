package refresh

import (
	"context"
	"log"
	"os"
	"time"

	"solana-wallet-ledger/internal/solana"
	"solana-wallet-ledger/internal/storage"
)

// DefaultInterval is the periodic refresh cadence.
const DefaultInterval = 2 * time.Minute

// Runner triggers refreshes on a timer and, when a WebSocket client is
// provided, on observed wallet activity. Both triggers honor the
// persisted auto-refresh flag, and both collapse into the service's
// in-progress guard.
type Runner struct {
	service  *Service
	wallets  storage.WalletStore
	ws       solana.WSClient
	interval time.Duration
	logger   *log.Logger

	stop chan struct{}
	done chan struct{}
}

// RunnerOptions configures a Runner. WS is optional.
type RunnerOptions struct {
	Service  *Service
	Wallets  storage.WalletStore
	WS       solana.WSClient
	Interval time.Duration
	Logger   *log.Logger
}

// NewRunner creates a Runner.
func NewRunner(opts RunnerOptions) *Runner {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[runner] ", log.LstdFlags|log.Lshortfile)
	}
	return &Runner{
		service:  opts.Service,
		wallets:  opts.Wallets,
		ws:       opts.WS,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start subscribes to wallet activity (when a WS client is configured)
// and launches the trigger loop. The loop runs until Stop or until ctx
// is done.
func (r *Runner) Start(ctx context.Context) error {
	var notifCh <-chan solana.LogNotification

	if r.ws != nil {
		mentions, err := r.activeAddresses(ctx)
		if err != nil {
			return err
		}

		ch, err := r.ws.SubscribeLogs(ctx, solana.LogsFilter{Mentions: mentions})
		if err != nil {
			// Degrade to interval-only refreshes.
			r.logger.Printf("activity subscription failed, falling back to interval only: %v", err)
		} else {
			notifCh = ch
		}
	}

	go r.loop(ctx, notifCh)
	return nil
}

// Stop halts the trigger loop and waits for it to exit.
func (r *Runner) Stop() {
	close(r.stop)
	<-r.done
}

func (r *Runner) activeAddresses(ctx context.Context) ([]string, error) {
	wallets, err := r.wallets.ListWallets(ctx)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, w := range wallets {
		if w.Active {
			out = append(out, w.Address)
		}
	}
	return out, nil
}

func (r *Runner) loop(ctx context.Context, notifCh <-chan solana.LogNotification) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.maybeRefresh(ctx, "interval")
		case notif, ok := <-notifCh:
			if !ok {
				// Subscription closed; the ticker keeps us alive.
				notifCh = nil
				continue
			}
			r.logger.Printf("wallet activity observed (sig %s), triggering refresh", notif.Signature)
			r.maybeRefresh(ctx, "activity")
		}
	}
}

func (r *Runner) maybeRefresh(ctx context.Context, trigger string) {
	enabled, err := r.wallets.AutoRefreshEnabled(ctx)
	if err != nil {
		r.logger.Printf("auto-refresh flag lookup failed: %v", err)
		return
	}
	if !enabled {
		return
	}

	res, err := r.service.Refresh(ctx)
	if err != nil {
		r.logger.Printf("%s refresh failed: %v", trigger, err)
		return
	}
	if !res.Started {
		r.logger.Printf("%s refresh skipped, another in progress", trigger)
	}
}
