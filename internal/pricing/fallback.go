package pricing

// FallbackRates are static unit prices (in the reference currency) used when
// the oracle is unreachable or returns garbage for an asset. Deliberately
// coarse: a stale-but-plausible display value beats an empty screen.
var FallbackRates = map[string]float64{
	"SOL":  150.0,
	"USDC": 1.0,
	"USDT": 1.0,
	"BONK": 0.00002,
	"JUP":  0.8,
	"RAY":  2.5,
	"mSOL": 170.0,
}

// Basket returns the fixed set of symbols requested from the oracle,
// in deterministic order.
func Basket() []string {
	return []string{"SOL", "USDC", "USDT", "BONK", "JUP", "RAY", "mSOL"}
}

// fallbackTable returns a fresh copy of the complete fallback map.
func fallbackTable() map[string]float64 {
	out := make(map[string]float64, len(FallbackRates))
	for sym, price := range FallbackRates {
		out[sym] = price
	}
	return out
}
