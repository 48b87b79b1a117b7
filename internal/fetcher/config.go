package fetcher

import "time"

// Default configuration values.
const (
	DefaultSignatureLimit     = 50
	DefaultBatchSize          = 5
	DefaultBatchDelay         = 500 * time.Millisecond
	DefaultTxTimeout          = 10 * time.Second
	DefaultNativeDustLamports = 10_000
	DefaultTokenDustUnits     = 1e-6
	DefaultMaxDecimals        = 18
	DefaultMaxPlausibleAmount = 1e15
	DefaultMaxTokenAccounts   = 25
)

// Config bounds fetch fan-out and filters noise. Zero values fall back
// to defaults.
type Config struct {
	// SignatureLimit caps how far back one refresh looks per address.
	SignatureLimit int

	// BatchSize is the number of transactions fetched concurrently.
	BatchSize int

	// BatchDelay separates consecutive batches to stay under provider
	// rate limits.
	BatchDelay time.Duration

	// TxTimeout bounds a single getTransaction call.
	TxTimeout time.Duration

	// NativeDustLamports filters fee-only and dust SOL movements.
	NativeDustLamports uint64

	// TokenDustUnits filters dust token movements, in display units.
	TokenDustUnits float64

	// MaxDecimals clamps on-chain decimal precision for unknown mints.
	MaxDecimals int

	// MaxPlausibleAmount discards movements too large to be real.
	MaxPlausibleAmount float64

	// MaxTokenAccounts bounds token account enumeration per address.
	MaxTokenAccounts int
}

// DefaultConfig returns the default fetch configuration.
func DefaultConfig() Config {
	return Config{
		SignatureLimit:     DefaultSignatureLimit,
		BatchSize:          DefaultBatchSize,
		BatchDelay:         DefaultBatchDelay,
		TxTimeout:          DefaultTxTimeout,
		NativeDustLamports: DefaultNativeDustLamports,
		TokenDustUnits:     DefaultTokenDustUnits,
		MaxDecimals:        DefaultMaxDecimals,
		MaxPlausibleAmount: DefaultMaxPlausibleAmount,
		MaxTokenAccounts:   DefaultMaxTokenAccounts,
	}
}

func (c Config) withDefaults() Config {
	if c.SignatureLimit <= 0 {
		c.SignatureLimit = DefaultSignatureLimit
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.BatchDelay <= 0 {
		c.BatchDelay = DefaultBatchDelay
	}
	if c.TxTimeout <= 0 {
		c.TxTimeout = DefaultTxTimeout
	}
	if c.NativeDustLamports == 0 {
		c.NativeDustLamports = DefaultNativeDustLamports
	}
	if c.TokenDustUnits <= 0 {
		c.TokenDustUnits = DefaultTokenDustUnits
	}
	if c.MaxDecimals <= 0 {
		c.MaxDecimals = DefaultMaxDecimals
	}
	if c.MaxPlausibleAmount <= 0 {
		c.MaxPlausibleAmount = DefaultMaxPlausibleAmount
	}
	if c.MaxTokenAccounts <= 0 {
		c.MaxTokenAccounts = DefaultMaxTokenAccounts
	}
	return c
}
