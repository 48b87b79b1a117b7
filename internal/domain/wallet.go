package domain

// Wallet is a monitored address with user-facing metadata.
type Wallet struct {
	Address string
	Label   string
	Active  bool
	AddedAt int64 // unix ms
}

// QuoteSnapshot is one observed unit price for an asset symbol,
// recorded whenever the price cache is refreshed.
type QuoteSnapshot struct {
	Symbol    string
	Price     float64
	Source    string // "oracle" or "fallback"
	FetchedAt int64  // unix ms
}

// Quote sources.
const (
	QuoteSourceOracle   = "oracle"
	QuoteSourceFallback = "fallback"
)
