package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"solana-wallet-ledger/internal/backoff"
	"solana-wallet-ledger/internal/domain"
	"solana-wallet-ledger/internal/observability"
	"solana-wallet-ledger/internal/storage"
)

// Default fetcher configuration values.
const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryBase      = 1 * time.Second
	DefaultRetryMax       = 15 * time.Second

	// Accepted price range; anything outside is replaced per-asset with
	// its fallback value.
	MinPrice = 1e-12
	MaxPrice = 1e9
)

// Service fetches oracle quotes into a Cache, degrading to FallbackRates.
// GetRates never returns an error: total fetch failure is absorbed into the
// static fallback table.
type Service struct {
	endpoint   string
	client     *http.Client
	cache      *Cache
	history    storage.QuoteHistoryStore // optional
	maxRetries int
	retryBase  time.Duration
	retryMax   time.Duration
	logger     *log.Logger
	nowFn      func() time.Time

	// single-flight guard: one oracle fetch at a time
	mu sync.Mutex
}

// ServiceOptions configures a pricing Service.
type ServiceOptions struct {
	Endpoint       string
	HTTPClient     *http.Client
	Cache          *Cache
	History        storage.QuoteHistoryStore
	MaxRetries     int
	RetryBase      time.Duration
	RetryMax       time.Duration
	RequestTimeout time.Duration
	Logger         *log.Logger
}

// NewService creates a pricing service. Zero option values take defaults.
func NewService(opts ServiceOptions) *Service {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.RequestTimeout
		if timeout == 0 {
			timeout = DefaultRequestTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	cache := opts.Cache
	if cache == nil {
		cache = NewCache(0, 0)
	}

	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}

	retryBase := opts.RetryBase
	if retryBase == 0 {
		retryBase = DefaultRetryBase
	}

	retryMax := opts.RetryMax
	if retryMax == 0 {
		retryMax = DefaultRetryMax
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		endpoint:   opts.Endpoint,
		client:     client,
		cache:      cache,
		history:    opts.History,
		maxRetries: maxRetries,
		retryBase:  retryBase,
		retryMax:   retryMax,
		logger:     logger,
		nowFn:      time.Now,
	}
}

// GetRates returns the current symbol→price map. A fresh cache is returned
// unchanged; otherwise the oracle is queried with retries, and on exhaustion
// the full static fallback table is installed instead.
func (s *Service) GetRates(ctx context.Context) map[string]float64 {
	if s.cache.Fresh() {
		return s.cache.Snapshot()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have refreshed while we waited on the lock.
	if s.cache.Fresh() {
		return s.cache.Snapshot()
	}

	rates, source := s.fetchWithRetry(ctx)
	s.cache.Replace(rates)
	s.recordHistory(ctx, rates, source)
	observability.RecordPriceFetch(source)

	return s.cache.Snapshot()
}

// fetchWithRetry queries the oracle up to maxRetries+1 times, backing off
// between attempts, and degrades to the fallback table on exhaustion.
func (s *Service) fetchWithRetry(ctx context.Context) (map[string]float64, string) {
	if s.endpoint == "" {
		return fallbackTable(), domain.QuoteSourceFallback
	}

	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			delay := backoff.Delay(attempt-1, s.retryBase, s.retryMax)
			select {
			case <-ctx.Done():
				s.logger.Printf("Price fetch cancelled, using fallback rates: %v", ctx.Err())
				return fallbackTable(), domain.QuoteSourceFallback
			case <-time.After(delay):
			}
		}

		rates, err := s.fetchOnce(ctx)
		if err != nil {
			lastErr = err
			continue
		}

		return rates, domain.QuoteSourceOracle
	}

	s.logger.Printf("Price oracle exhausted after %d retries, using fallback rates: %v", s.maxRetries, lastErr)
	return fallbackTable(), domain.QuoteSourceFallback
}

// oracleQuote is one entry of the oracle response.
type oracleQuote struct {
	Price float64 `json:"price"`
}

// fetchOnce performs a single oracle request for the full basket and
// validates every returned price. Out-of-range or missing entries are
// replaced per-asset with their fallback value (partial trust), not
// discarded wholesale.
func (s *Service) fetchOnce(ctx context.Context) (map[string]float64, error) {
	reqURL, err := s.buildURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("rate limited (429)")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var quotes map[string]oracleQuote
	if err := json.Unmarshal(body, &quotes); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	rates := make(map[string]float64, len(FallbackRates))
	for _, sym := range Basket() {
		quote, ok := quotes[sym]
		if !ok || !validPrice(quote.Price) {
			s.logger.Printf("Price for %s missing or out of range, substituting fallback", sym)
			rates[sym] = FallbackRates[sym]
			continue
		}
		rates[sym] = quote.Price
	}

	return rates, nil
}

// buildURL assembles the batch GET URL: {endpoint}?symbols=SOL,USDC,...
func (s *Service) buildURL() (string, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse oracle endpoint: %w", err)
	}

	q := u.Query()
	q.Set("symbols", strings.Join(Basket(), ","))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// recordHistory appends a snapshot row per symbol to the optional history
// sink. Failures are logged, never propagated.
func (s *Service) recordHistory(ctx context.Context, rates map[string]float64, source string) {
	if s.history == nil {
		return
	}

	now := s.nowFn().UnixMilli()
	snapshots := make([]*domain.QuoteSnapshot, 0, len(rates))
	for _, sym := range Basket() {
		price, ok := rates[sym]
		if !ok {
			continue
		}
		snapshots = append(snapshots, &domain.QuoteSnapshot{
			Symbol:    sym,
			Price:     price,
			Source:    source,
			FetchedAt: now,
		})
	}

	if err := s.history.InsertSnapshots(ctx, snapshots); err != nil {
		s.logger.Printf("Error storing quote snapshots: %v", err)
	}
}

// validPrice reports whether p is a finite number within [MinPrice, MaxPrice].
func validPrice(p float64) bool {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return false
	}
	return p >= MinPrice && p <= MaxPrice
}
