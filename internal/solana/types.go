package solana

// TokenProgramID is the SPL token program address.
const TokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

// SignatureInfo from getSignaturesForAddress.
type SignatureInfo struct {
	Signature string
	Slot      int64
	BlockTime *int64
	Err       interface{}
}

// SignaturesOpts defines optional pagination parameters for getSignaturesForAddress.
type SignaturesOpts struct {
	Before string // Start searching backwards from this signature
	Until  string // Search until this signature
	Limit  int    // Maximum number of signatures to return
}

// TokenAmount is a raw token quantity with its decimal scale.
type TokenAmount struct {
	Amount         string // base units as decimal string
	Decimals       int
	UIAmountString string
}

// TokenBalance is a pre/post token balance entry from transaction meta.
type TokenBalance struct {
	AccountIndex  int
	Mint          string
	Owner         string
	UITokenAmount TokenAmount
}

// TokenAccount from getTokenAccountsByOwner.
type TokenAccount struct {
	Pubkey   string
	Mint     string
	Owner    string
	Amount   string // base units as decimal string
	Decimals int
}
