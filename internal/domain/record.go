package domain

// Direction indicates whether a record moves value into or out of a wallet.
type Direction string

const (
	DirectionInflow  Direction = "inflow"
	DirectionOutflow Direction = "outflow"
)

// Status reflects the on-chain processing state of the underlying transaction.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// DefaultCategory is assigned to records the user has not classified yet.
const DefaultCategory = "Uncategorized"

// Record is a canonical, user-classifiable ledger entry derived from one
// asset movement within one transaction. A transaction that moves both SOL
// and a token yields two records with distinct IDs.
type Record struct {
	ID          string // deterministic hash of (tx_signature, asset_id)
	TxSignature string

	Direction Direction
	Quantity  float64 // display units, always >= 0
	Asset     Asset

	Category       string  // user-owned
	Note           *string // user-owned
	UserClassified bool    // user-owned

	BlockTime     int64 // unix ms when the transaction was finalized
	Status        Status
	WalletAddress string
}

// RecordKey is the uniqueness key of the canonical set.
type RecordKey struct {
	TxSignature string
	AssetID     string
}

// Key returns the record's uniqueness key.
func (r *Record) Key() RecordKey {
	return RecordKey{TxSignature: r.TxSignature, AssetID: r.Asset.ID}
}

// CopyUserFields copies the user-owned classification fields from src.
// Fetch-derived fields are left untouched.
func (r *Record) CopyUserFields(src *Record) {
	r.Category = src.Category
	r.UserClassified = src.UserClassified
	if src.Note != nil {
		note := *src.Note
		r.Note = &note
	} else {
		r.Note = nil
	}
}
