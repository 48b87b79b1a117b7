package solana

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ErrInvalidAddress is returned for strings that are not valid Solana
// public keys.
var ErrInvalidAddress = errors.New("invalid address")

// ValidateAddress checks that an address is base58 and decodes to a
// 32-byte public key.
func ValidateAddress(address string) error {
	raw, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("%w: decoded to %d bytes", ErrInvalidAddress, len(raw))
	}
	return nil
}

// IsOnCurve reports whether the address decodes to a point on the
// ed25519 curve. Wallet addresses are on-curve; program-derived
// addresses are not.
func IsOnCurve(address string) bool {
	raw, err := base58.Decode(address)
	if err != nil || len(raw) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}

// ValidateWalletAddress checks that an address is a plausible wallet:
// a valid public key that lies on the curve.
func ValidateWalletAddress(address string) error {
	if err := ValidateAddress(address); err != nil {
		return err
	}
	if !IsOnCurve(address) {
		return fmt.Errorf("%w: not on curve", ErrInvalidAddress)
	}
	return nil
}
