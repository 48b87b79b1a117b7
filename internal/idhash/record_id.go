package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeRecordID computes a deterministic record ID using SHA256.
// Formula: SHA256(tx_signature|asset_id)
// Returns hex-encoded hash (64 characters).
//
// Keying by both fields keeps the native and token movements of a single
// transaction as distinct records.
func ComputeRecordID(txSignature, assetID string) string {
	data := fmt.Sprintf("%s|%s", txSignature, assetID)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
