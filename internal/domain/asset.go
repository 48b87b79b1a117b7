package domain

import "fmt"

// Asset describes the unit a record is denominated in.
// ID is the SPL mint address, or NativeAssetID for SOL itself.
type Asset struct {
	ID       string
	Symbol   string
	Name     string
	Decimals int
	IconURL  *string
}

// NativeAssetID identifies the chain's native asset.
const NativeAssetID = "SOL"

// LamportsPerSOL is the native asset's base-unit scale.
const LamportsPerSOL = 1_000_000_000

// NativeAsset returns the descriptor for SOL.
func NativeAsset() Asset {
	return Asset{
		ID:       NativeAssetID,
		Symbol:   "SOL",
		Name:     "Solana",
		Decimals: 9,
	}
}

// wellKnownMints maps mint addresses to curated descriptors.
var wellKnownMints = map[string]Asset{
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": {Symbol: "USDC", Name: "USD Coin", Decimals: 6},
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": {Symbol: "USDT", Name: "Tether USD", Decimals: 6},
	"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263": {Symbol: "BONK", Name: "Bonk", Decimals: 5},
	"JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN":  {Symbol: "JUP", Name: "Jupiter", Decimals: 6},
	"4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R": {Symbol: "RAY", Name: "Raydium", Decimals: 6},
	"mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So":  {Symbol: "mSOL", Name: "Marinade Staked SOL", Decimals: 9},
}

// LookupAsset resolves a mint to a curated descriptor, if one is registered.
func LookupAsset(mint string) (Asset, bool) {
	a, ok := wellKnownMints[mint]
	if !ok {
		return Asset{}, false
	}
	a.ID = mint
	return a, true
}

// PlaceholderAsset synthesizes a descriptor for an unknown mint using its
// on-chain decimal precision, clamped to maxDecimals.
func PlaceholderAsset(mint string, decimals, maxDecimals int) Asset {
	if decimals < 0 {
		decimals = 0
	}
	if decimals > maxDecimals {
		decimals = maxDecimals
	}

	short := mint
	if len(short) > 4 {
		short = short[:4]
	}

	return Asset{
		ID:       mint,
		Symbol:   short,
		Name:     fmt.Sprintf("Unknown Token (%s…)", short),
		Decimals: decimals,
	}
}
