package solana

import "context"

// RPCClient defines Solana RPC HTTP interface.
type RPCClient interface {
	// GetSignaturesForAddress retrieves signatures for an address with pagination.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)

	// GetTransaction retrieves a transaction by signature.
	// Returns (nil, nil) when the transaction is not found.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetTokenAccountsByOwner retrieves SPL token accounts owned by an address.
	GetTokenAccountsByOwner(ctx context.Context, owner string) ([]TokenAccount, error)
}

// Transaction represents a Solana transaction.
type Transaction struct {
	Slot      int64
	Signature string
	BlockTime int64 // Unix timestamp (seconds)
	Meta      *TransactionMeta
	Message   *TransactionMessage
}

// TransactionMeta contains transaction metadata.
type TransactionMeta struct {
	Err               interface{}
	Fee               uint64
	PreBalances       []uint64
	PostBalances      []uint64
	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance
	LogMessages       []string
}

// TransactionMessage contains parsed transaction message.
type TransactionMessage struct {
	AccountKeys  []string
	Instructions []ParsedInstruction
}

// ParsedInstruction is a jsonParsed instruction. Program and Type are
// empty for instructions the RPC node could not parse.
type ParsedInstruction struct {
	Program   string // e.g. "spl-token", "system"
	ProgramID string
	Type      string // e.g. "transfer", "transferChecked"
	Info      InstructionInfo
}

// InstructionInfo holds the fields of a parsed instruction that matter
// for transfer attribution. Unused fields are left at zero values.
type InstructionInfo struct {
	Source      string
	Destination string
	Authority   string
	Mint        string
	Amount      string // raw base units as decimal string
	Lamports    uint64
	TokenAmount *TokenAmount
}
