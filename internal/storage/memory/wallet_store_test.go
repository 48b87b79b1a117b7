package memory

import (
	"context"
	"errors"
	"testing"

	"solana-wallet-ledger/internal/domain"
	"solana-wallet-ledger/internal/storage"
)

func TestWalletStore_AddAndList(t *testing.T) {
	s := NewWalletStore()
	ctx := context.Background()

	err := s.AddWallet(ctx, &domain.Wallet{Address: "addr1", Label: "Main", Active: true, AddedAt: 1})
	if err != nil {
		t.Fatalf("AddWallet: %v", err)
	}
	s.AddWallet(ctx, &domain.Wallet{Address: "addr2", Label: "Cold", Active: false, AddedAt: 2})

	wallets, err := s.ListWallets(ctx)
	if err != nil {
		t.Fatalf("ListWallets: %v", err)
	}

	if len(wallets) != 2 {
		t.Fatalf("expected 2 wallets, got %d", len(wallets))
	}
	if wallets[0].Address != "addr1" || wallets[1].Address != "addr2" {
		t.Errorf("expected ordering by added time, got %s, %s", wallets[0].Address, wallets[1].Address)
	}
}

func TestWalletStore_DuplicateRejected(t *testing.T) {
	s := NewWalletStore()
	ctx := context.Background()

	s.AddWallet(ctx, &domain.Wallet{Address: "addr1", AddedAt: 1})
	err := s.AddWallet(ctx, &domain.Wallet{Address: "addr1", AddedAt: 2})

	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestWalletStore_RemoveAndSetActive(t *testing.T) {
	s := NewWalletStore()
	ctx := context.Background()

	s.AddWallet(ctx, &domain.Wallet{Address: "addr1", Active: true, AddedAt: 1})

	if err := s.SetActive(ctx, "addr1", false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	wallets, _ := s.ListWallets(ctx)
	if wallets[0].Active {
		t.Error("expected wallet to be inactive")
	}

	if err := s.RemoveWallet(ctx, "addr1"); err != nil {
		t.Fatalf("RemoveWallet: %v", err)
	}
	if err := s.RemoveWallet(ctx, "addr1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.SetActive(ctx, "missing", true); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestWalletStore_AutoRefreshFlag(t *testing.T) {
	s := NewWalletStore()
	ctx := context.Background()

	enabled, err := s.AutoRefreshEnabled(ctx)
	if err != nil {
		t.Fatalf("AutoRefreshEnabled: %v", err)
	}
	if enabled {
		t.Error("expected auto-refresh to default to false")
	}

	if err := s.SetAutoRefresh(ctx, true); err != nil {
		t.Fatalf("SetAutoRefresh: %v", err)
	}

	enabled, _ = s.AutoRefreshEnabled(ctx)
	if !enabled {
		t.Error("expected auto-refresh to be enabled")
	}
}
