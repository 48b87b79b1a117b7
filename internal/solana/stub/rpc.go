package stub

import (
	"context"
	"errors"
	"sync"

	"solana-wallet-ledger/internal/solana"
)

// ErrInjected is returned by injected failures.
var ErrInjected = errors.New("injected failure")

// RPCClient implements solana.RPCClient for testing. Failure counters
// let a test make the first N calls for an address fail before the
// stub data is served.
type RPCClient struct {
	mu sync.Mutex

	Transactions  map[string]*solana.Transaction
	Signatures    map[string][]solana.SignatureInfo
	TokenAccounts map[string][]solana.TokenAccount

	// SignatureFailures maps address to remaining GetSignaturesForAddress failures.
	SignatureFailures map[string]int
	// TransactionFailures maps signature to remaining GetTransaction failures.
	TransactionFailures map[string]int

	// Calls records every call as "method address-or-signature".
	Calls []string
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Transactions:        make(map[string]*solana.Transaction),
		Signatures:          make(map[string][]solana.SignatureInfo),
		TokenAccounts:       make(map[string][]solana.TokenAccount),
		SignatureFailures:   make(map[string]int),
		TransactionFailures: make(map[string]int),
	}
}

// GetSignaturesForAddress retrieves signatures for an address from the stub store.
func (c *RPCClient) GetSignaturesForAddress(_ context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Calls = append(c.Calls, "getSignaturesForAddress "+address)

	if c.SignatureFailures[address] > 0 {
		c.SignatureFailures[address]--
		return nil, ErrInjected
	}

	sigs := c.Signatures[address]
	if opts != nil && opts.Limit > 0 && opts.Limit < len(sigs) {
		sigs = sigs[:opts.Limit]
	}

	out := make([]solana.SignatureInfo, len(sigs))
	copy(out, sigs)
	return out, nil
}

// GetTransaction retrieves a transaction by signature from the stub
// store. Unknown signatures return (nil, nil), matching HTTPClient.
func (c *RPCClient) GetTransaction(_ context.Context, signature string) (*solana.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Calls = append(c.Calls, "getTransaction "+signature)

	if c.TransactionFailures[signature] > 0 {
		c.TransactionFailures[signature]--
		return nil, ErrInjected
	}

	return c.Transactions[signature], nil
}

// GetTokenAccountsByOwner retrieves token accounts from the stub store.
func (c *RPCClient) GetTokenAccountsByOwner(_ context.Context, owner string) ([]solana.TokenAccount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Calls = append(c.Calls, "getTokenAccountsByOwner "+owner)

	out := make([]solana.TokenAccount, len(c.TokenAccounts[owner]))
	copy(out, c.TokenAccounts[owner])
	return out, nil
}

// AddTransaction adds a transaction to the stub store.
func (c *RPCClient) AddTransaction(tx *solana.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Transactions[tx.Signature] = tx
}

// AddSignatures adds signatures for an address to the stub store.
func (c *RPCClient) AddSignatures(address string, sigs []solana.SignatureInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Signatures[address] = sigs
}

// AddTokenAccount adds a token account for an owner to the stub store.
func (c *RPCClient) AddTokenAccount(owner string, account solana.TokenAccount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.TokenAccounts[owner] = append(c.TokenAccounts[owner], account)
}

// CallCount returns the number of recorded calls with the given prefix.
func (c *RPCClient) CallCount(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, call := range c.Calls {
		if len(call) >= len(prefix) && call[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

var _ solana.RPCClient = (*RPCClient)(nil)
