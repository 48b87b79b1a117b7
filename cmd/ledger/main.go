package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solana-wallet-ledger/internal/domain"
	"solana-wallet-ledger/internal/fetcher"
	"solana-wallet-ledger/internal/observability"
	"solana-wallet-ledger/internal/pricing"
	"solana-wallet-ledger/internal/queue"
	"solana-wallet-ledger/internal/refresh"
	"solana-wallet-ledger/internal/sigcache"
	"solana-wallet-ledger/internal/solana"
	"solana-wallet-ledger/internal/storage"
	chstore "solana-wallet-ledger/internal/storage/clickhouse"
	"solana-wallet-ledger/internal/storage/memory"
	"solana-wallet-ledger/internal/storage/migrations"
	pgstore "solana-wallet-ledger/internal/storage/postgres"
)

func main() {
	// Parse flags
	mode := flag.String("mode", "watch", "Mode: watch, refresh, records, classify, add-wallet, remove-wallet, auto-refresh")
	rpcEndpoint := flag.String("rpc-endpoint", "", "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", "", "Solana WebSocket endpoint (optional, enables activity-triggered refreshes)")
	priceEndpoint := flag.String("price-endpoint", "", "Price oracle HTTP endpoint (empty uses the built-in fallback table)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for quote history (optional)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")
	interval := flag.Duration("interval", refresh.DefaultInterval, "Periodic refresh interval for watch mode")

	address := flag.String("address", "", "Wallet address for add-wallet/remove-wallet")
	label := flag.String("label", "", "Wallet label for add-wallet")
	recordID := flag.String("record-id", "", "Record ID for classify")
	category := flag.String("category", "", "Category for classify")
	note := flag.String("note", "", "Note for classify (optional)")
	enable := flag.Bool("enable", true, "Flag value for auto-refresh mode")

	flag.Parse()

	logger := log.New(os.Stdout, "[ledger] ", log.LstdFlags|log.Lshortfile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
			cancel()

			select {
			case sig := <-sigCh:
				logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
				os.Exit(1)
			case <-time.After(30 * time.Second):
				logger.Println("Graceful shutdown timed out after 30s, forcing exit")
				os.Exit(1)
			case <-done:
			}
		case <-done:
		}
	}()

	var err error
	switch *mode {
	case "watch":
		err = runWatch(ctx, logger, *rpcEndpoint, *wsEndpoint, *priceEndpoint, *postgresDSN, *clickhouseDSN, *useMemory, *metricsAddr, *interval)
	case "refresh":
		err = runRefresh(ctx, logger, *rpcEndpoint, *priceEndpoint, *postgresDSN, *clickhouseDSN, *useMemory)
	case "records":
		err = runRecords(ctx, logger, *postgresDSN, *useMemory)
	case "classify":
		err = runClassify(ctx, logger, *postgresDSN, *useMemory, *recordID, *category, *note)
	case "add-wallet":
		err = runAddWallet(ctx, logger, *postgresDSN, *useMemory, *address, *label)
	case "remove-wallet":
		err = runRemoveWallet(ctx, logger, *postgresDSN, *useMemory, *address)
	case "auto-refresh":
		err = runSetAutoRefresh(ctx, logger, *postgresDSN, *useMemory, *enable)
	default:
		logger.Fatalf("Unknown mode: %s", *mode)
	}

	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}
}

// stores bundles the storage backends plus their cleanup.
type stores struct {
	records storage.RecordStore
	wallets storage.WalletStore
	history storage.QuoteHistoryStore
	close   func()
}

// openStores connects the configured backends. In-memory stores are the
// explicit opt-in; otherwise PostgreSQL is required and ClickHouse is
// optional quote history.
func openStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*stores, error) {
	if useMemory {
		return &stores{
			records: memory.NewRecordStore(),
			wallets: memory.NewWalletStore(),
			history: memory.NewQuoteHistoryStore(),
			close:   func() {},
		}, nil
	}

	if postgresDSN == "" {
		return nil, fmt.Errorf("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	s := &stores{
		records: pgstore.NewRecordStore(pool),
		wallets: pgstore.NewWalletStore(pool),
		close:   pool.Close,
	}

	if clickhouseDSN != "" {
		var conn *chstore.Conn
		conn, err = migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("run clickhouse migrations: %w", err)
		}
		s.history = chstore.NewQuoteHistoryStore(conn)
		s.close = func() {
			conn.Close()
			pool.Close()
		}
	}

	return s, nil
}

// newService wires the refresh service on top of the opened stores.
func newService(logger *log.Logger, s *stores, rpcEndpoint, priceEndpoint string) (*refresh.Service, error) {
	if rpcEndpoint == "" {
		return nil, fmt.Errorf("--rpc-endpoint is required")
	}

	rpc := solana.NewHTTPClient(rpcEndpoint)
	f := fetcher.New(rpc, sigcache.New(0), fetcher.DefaultConfig(), logger)
	q := queue.New(queue.Config{}, logger)

	prices := pricing.NewService(pricing.ServiceOptions{
		Endpoint: priceEndpoint,
		History:  s.history,
		Logger:   logger,
	})

	return refresh.NewService(refresh.ServiceOptions{
		Records: s.records,
		Wallets: s.wallets,
		Fetcher: f,
		Prices:  prices,
		Queue:   q,
		Logger:  logger,
	}), nil
}

// runWatch runs the long-lived refresh loop with optional activity triggers.
func runWatch(ctx context.Context, logger *log.Logger, rpcEndpoint, wsEndpoint, priceEndpoint, postgresDSN, clickhouseDSN string, useMemory bool, metricsAddr string, interval time.Duration) error {
	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", metricsAddr)
			if err := http.ListenAndServe(metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	s, err := openStores(ctx, postgresDSN, clickhouseDSN, useMemory)
	if err != nil {
		return err
	}
	defer s.close()

	svc, err := newService(logger, s, rpcEndpoint, priceEndpoint)
	if err != nil {
		return err
	}

	var ws solana.WSClient
	if wsEndpoint != "" {
		wsClient, err := solana.NewWSClient(ctx, wsEndpoint, nil)
		if err != nil {
			return fmt.Errorf("create websocket client: %w", err)
		}
		defer wsClient.Close()
		ws = wsClient
	}

	runner := refresh.NewRunner(refresh.RunnerOptions{
		Service:  svc,
		Wallets:  s.wallets,
		WS:       ws,
		Interval: interval,
		Logger:   logger,
	})

	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start runner: %w", err)
	}
	logger.Printf("Watching (interval %v, activity triggers %v)", interval, ws != nil)

	<-ctx.Done()
	runner.Stop()
	logger.Println("Shutdown complete")
	return nil
}

// runRefresh runs a single refresh cycle and prints the summary.
func runRefresh(ctx context.Context, logger *log.Logger, rpcEndpoint, priceEndpoint, postgresDSN, clickhouseDSN string, useMemory bool) error {
	s, err := openStores(ctx, postgresDSN, clickhouseDSN, useMemory)
	if err != nil {
		return err
	}
	defer s.close()

	svc, err := newService(logger, s, rpcEndpoint, priceEndpoint)
	if err != nil {
		return err
	}

	res, err := svc.Refresh(ctx)
	if err != nil {
		return err
	}

	logger.Printf("Refresh: %d addresses processed, %d dropped, %d candidates, %d records total",
		res.Addresses.Processed, res.Addresses.Dropped, res.Candidates, res.Total)
	return nil
}

// runRecords prints the canonical record set, newest first.
func runRecords(ctx context.Context, logger *log.Logger, postgresDSN string, useMemory bool) error {
	s, err := openStores(ctx, postgresDSN, "", useMemory)
	if err != nil {
		return err
	}
	defer s.close()

	records, err := s.records.LoadRecords(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	for _, r := range records {
		note := ""
		if r.Note != nil {
			note = " note=" + *r.Note
		}
		fmt.Printf("%s  %s %-7s %.9g %-6s %s %s%s\n",
			time.UnixMilli(r.BlockTime).UTC().Format(time.RFC3339),
			r.ID[:8], r.Direction, r.Quantity, r.Asset.Symbol, r.Status, r.Category, note)
	}
	logger.Printf("%d records", len(records))
	return nil
}

// runClassify assigns a category (and optional note) to one record.
func runClassify(ctx context.Context, logger *log.Logger, postgresDSN string, useMemory bool, recordID, category, note string) error {
	s, err := openStores(ctx, postgresDSN, "", useMemory)
	if err != nil {
		return err
	}
	defer s.close()

	if recordID == "" || category == "" {
		return fmt.Errorf("--record-id and --category are required")
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
		if note != "" {
			n := note
			r.Note = &n
		}
		r.UserClassified = true
		found = true
		break
	}
	if !found {
		return fmt.Errorf("record %s not found", recordID)
	}

	if err := s.records.SaveRecords(ctx, records); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	logger.Printf("Classified %s as %q", recordID, category)
	return nil
}

// runAddWallet validates and registers a monitored address.
func runAddWallet(ctx context.Context, logger *log.Logger, postgresDSN string, useMemory bool, address, label string) error {
	if address == "" {
		return fmt.Errorf("--address is required")
	}
	if err := solana.ValidateWalletAddress(address); err != nil {
		return err
	}

	s, err := openStores(ctx, postgresDSN, "", useMemory)
	if err != nil {
		return err
	}
	defer s.close()

	err = s.wallets.AddWallet(ctx, &domain.Wallet{
		Address: address,
		Label:   label,
		Active:  true,
		AddedAt: time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("add wallet: %w", err)
	}
	logger.Printf("Added wallet %s", address)
	return nil
}

// runRemoveWallet removes a monitored address.
func runRemoveWallet(ctx context.Context, logger *log.Logger, postgresDSN string, useMemory bool, address string) error {
	if address == "" {
		return fmt.Errorf("--address is required")
	}

	s, err := openStores(ctx, postgresDSN, "", useMemory)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.wallets.RemoveWallet(ctx, address); err != nil {
		return fmt.Errorf("remove wallet: %w", err)
	}
	logger.Printf("Removed wallet %s", address)
	return nil
}

// runSetAutoRefresh persists the auto-refresh flag.
func runSetAutoRefresh(ctx context.Context, logger *log.Logger, postgresDSN string, useMemory bool, enable bool) error {
	s, err := openStores(ctx, postgresDSN, "", useMemory)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.wallets.SetAutoRefresh(ctx, enable); err != nil {
		return fmt.Errorf("set auto-refresh: %w", err)
	}
	logger.Printf("Auto-refresh set to %v", enable)
	return nil
}
