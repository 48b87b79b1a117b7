// Package queue serializes per-address ledger fetches. Addresses are
// processed strictly one at a time with deduplication, bounded retry,
// and a pacing delay between addresses that grows with queue depth.
// Serial processing keeps the aggregate RPC request rate predictable
// no matter how many wallets are monitored.
package queue

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"solana-wallet-ledger/internal/backoff"
	"solana-wallet-ledger/internal/observability"
)

// Default configuration values.
const (
	DefaultMaxAttempts       = 3
	DefaultBaseDelay         = 1 * time.Second
	DefaultMaxDelay          = 30 * time.Second
	DefaultInterAddressDelay = 750 * time.Millisecond
	DefaultDepthPenalty      = 250 * time.Millisecond
	DefaultMaxInterDelay     = 5 * time.Second
)

// Handler processes one address. A returned error triggers a retry
// with backoff until attempts are exhausted.
type Handler func(ctx context.Context, address string) error

// Config tunes retry and pacing behavior. Zero values fall back to
// defaults.
type Config struct {
	// MaxAttempts is the number of handler invocations per address
	// before it is dropped.
	MaxAttempts int

	// BaseDelay and MaxDelay bound the backoff between retries of the
	// same address.
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// InterAddressDelay paces consecutive addresses. Each queued
	// address still waiting adds DepthPenalty, capped at MaxInterDelay.
	InterAddressDelay time.Duration
	DepthPenalty      time.Duration
	MaxInterDelay     time.Duration
}

// DefaultConfig returns the default queue configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       DefaultMaxAttempts,
		BaseDelay:         DefaultBaseDelay,
		MaxDelay:          DefaultMaxDelay,
		InterAddressDelay: DefaultInterAddressDelay,
		DepthPenalty:      DefaultDepthPenalty,
		MaxInterDelay:     DefaultMaxInterDelay,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	if c.InterAddressDelay <= 0 {
		c.InterAddressDelay = DefaultInterAddressDelay
	}
	if c.DepthPenalty <= 0 {
		c.DepthPenalty = DefaultDepthPenalty
	}
	if c.MaxInterDelay <= 0 {
		c.MaxInterDelay = DefaultMaxInterDelay
	}
	return c
}

// Stats summarizes one drain pass.
type Stats struct {
	Processed int // addresses handled successfully
	Dropped   int // addresses dropped after retry exhaustion or cancellation
	Attempts  int // total handler invocations
}

// Queue is a serial, deduplicating address queue.
type Queue struct {
	config Config
	logger *log.Logger

	mu      sync.Mutex
	pending []string
	queued  map[string]bool

	// sleep is injectable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Queue. A nil logger falls back to stdout.
func New(config Config, logger *log.Logger) *Queue {
	if logger == nil {
		logger = log.New(os.Stdout, "[queue] ", log.LstdFlags|log.Lshortfile)
	}
	return &Queue{
		config: config.withDefaults(),
		logger: logger,
		queued: make(map[string]bool),
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Enqueue adds an address unless it is already queued.
func (q *Queue) Enqueue(address string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.queued[address] {
		return false
	}

	q.queued[address] = true
	q.pending = append(q.pending, address)
	observability.UpdateQueueDepth(len(q.pending))
	return true
}

// Len returns the number of queued addresses.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// pop removes and returns the head of the queue.
func (q *Queue) pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return "", false
	}

	address := q.pending[0]
	q.pending = q.pending[1:]
	delete(q.queued, address)
	observability.UpdateQueueDepth(len(q.pending))
	return address, true
}

// Drain processes queued addresses strictly serially until the queue
// is empty or the context is done. Addresses enqueued mid-drain are
// picked up in the same pass.
func (q *Queue) Drain(ctx context.Context, handler Handler) Stats {
	var stats Stats

	for {
		if ctx.Err() != nil {
			return stats
		}

		address, ok := q.pop()
		if !ok {
			return stats
		}

		q.process(ctx, address, handler, &stats)

		depth := q.Len()
		if depth == 0 {
			continue
		}

		delay := q.config.InterAddressDelay + time.Duration(depth)*q.config.DepthPenalty
		if delay > q.config.MaxInterDelay {
			delay = q.config.MaxInterDelay
		}
		if err := q.sleep(ctx, delay); err != nil {
			return stats
		}
	}
}

// process runs the handler for one address with bounded retries.
func (q *Queue) process(ctx context.Context, address string, handler Handler, stats *Stats) {
	for attempt := 1; ; attempt++ {
		stats.Attempts++

		err := handler(ctx, address)
		if err == nil {
			stats.Processed++
			observability.RecordAddressProcessed()
			return
		}

		if ctx.Err() != nil {
			stats.Dropped++
			return
		}

		if attempt >= q.config.MaxAttempts {
			q.logger.Printf("address %s dropped after %d attempts: %v", address, attempt, err)
			stats.Dropped++
			observability.RecordQueueDrop()
			return
		}

		q.logger.Printf("address %s attempt %d failed, retrying: %v", address, attempt, err)
		observability.RecordQueueRetry()

		if err := q.sleep(ctx, backoff.Delay(attempt-1, q.config.BaseDelay, q.config.MaxDelay)); err != nil {
			stats.Dropped++
			return
		}
	}
}
