package refresh

import (
	"context"
	"testing"
	"time"

	"solana-wallet-ledger/internal/domain"
	"solana-wallet-ledger/internal/solana"
	"solana-wallet-ledger/internal/solana/stub"
)

type fakeWS struct {
	ch chan solana.LogNotification
}

func (f *fakeWS) SubscribeLogs(_ context.Context, _ solana.LogsFilter) (<-chan solana.LogNotification, error) {
	return f.ch, nil
}

func (f *fakeWS) Close() error { return nil }

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestRunner_IntervalTriggersRefresh(t *testing.T) {
	addr := walletAddr(1)
	client := stub.NewRPCClient()

	svc, _, wallets := newTestService(t, client)
	ctx := context.Background()

	wallets.AddWallet(ctx, &domain.Wallet{Address: addr, Active: true, AddedAt: 1})
	wallets.SetAutoRefresh(ctx, true)

	runner := NewRunner(RunnerOptions{
		Service:  svc,
		Wallets:  wallets,
		Interval: 10 * time.Millisecond,
	})
	if err := runner.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer runner.Stop()

	if !waitUntil(t, 2*time.Second, func() bool {
		return client.CallCount("getSignaturesForAddress") > 0
	}) {
		t.Fatal("expected interval tick to trigger a refresh")
	}
}

func TestRunner_ActivityTriggersRefresh(t *testing.T) {
	addr := walletAddr(1)
	client := stub.NewRPCClient()
	ws := &fakeWS{ch: make(chan solana.LogNotification, 1)}

	svc, _, wallets := newTestService(t, client)
	ctx := context.Background()

	wallets.AddWallet(ctx, &domain.Wallet{Address: addr, Active: true, AddedAt: 1})
	wallets.SetAutoRefresh(ctx, true)

	runner := NewRunner(RunnerOptions{
		Service:  svc,
		Wallets:  wallets,
		WS:       ws,
		Interval: time.Hour, // only activity should trigger
	})
	if err := runner.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer runner.Stop()

	ws.ch <- solana.LogNotification{Signature: "activity-sig", Slot: 100}

	if !waitUntil(t, 2*time.Second, func() bool {
		return client.CallCount("getSignaturesForAddress") > 0
	}) {
		t.Fatal("expected activity notification to trigger a refresh")
	}
}

func TestRunner_AutoRefreshDisabled(t *testing.T) {
	addr := walletAddr(1)
	client := stub.NewRPCClient()

	svc, _, wallets := newTestService(t, client)
	ctx := context.Background()

	wallets.AddWallet(ctx, &domain.Wallet{Address: addr, Active: true, AddedAt: 1})
	// Auto-refresh left disabled.

	runner := NewRunner(RunnerOptions{
		Service:  svc,
		Wallets:  wallets,
		Interval: 10 * time.Millisecond,
	})
	if err := runner.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer runner.Stop()

	time.Sleep(100 * time.Millisecond)

	if n := client.CallCount("getSignaturesForAddress"); n != 0 {
		t.Errorf("expected no refreshes while disabled, got %d RPC calls", n)
	}
}
