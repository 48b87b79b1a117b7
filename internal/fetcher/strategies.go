package fetcher

import (
	"math"
	"strconv"

	"solana-wallet-ledger/internal/solana"
)

// tokenDelta is one signed per-mint movement in display units.
type tokenDelta struct {
	mint     string
	decimals int
	amount   float64
}

// deltaStrategy extracts movements of a token account from a
// transaction. Strategies return nil rather than an error when they
// cannot attribute anything; the next one gets a shot.
type deltaStrategy func(tx *solana.Transaction, account solana.TokenAccount) []tokenDelta

// deltaStrategies are tried in order, first non-empty result wins.
// Instruction attribution is precise but only understands plain
// transfers; the balance diff fallback covers swaps, burns and
// anything routed through another program.
var deltaStrategies = []deltaStrategy{
	instructionDeltas,
	balanceDiffDeltas,
}

func extractDeltas(tx *solana.Transaction, account solana.TokenAccount) []tokenDelta {
	for _, strategy := range deltaStrategies {
		if deltas := strategy(tx, account); len(deltas) > 0 {
			return deltas
		}
	}
	return nil
}

// instructionDeltas sums spl-token transfer instructions that name the
// token account as source or destination.
func instructionDeltas(tx *solana.Transaction, account solana.TokenAccount) []tokenDelta {
	if tx.Message == nil {
		return nil
	}

	var (
		total float64
		found bool
	)

	for _, ins := range tx.Message.Instructions {
		if ins.Program != "spl-token" {
			continue
		}
		if ins.Type != "transfer" && ins.Type != "transferChecked" {
			continue
		}
		if ins.Info.Mint != "" && ins.Info.Mint != account.Mint {
			continue
		}

		var (
			amount float64
			ok     bool
		)
		if ins.Info.TokenAmount != nil {
			amount, ok = parseUnits(ins.Info.TokenAmount.Amount, ins.Info.TokenAmount.Decimals)
		} else {
			amount, ok = parseUnits(ins.Info.Amount, account.Decimals)
		}
		if !ok {
			continue
		}

		switch account.Pubkey {
		case ins.Info.Destination:
			total += amount
			found = true
		case ins.Info.Source:
			total -= amount
			found = true
		}
	}

	if !found || total == 0 {
		return nil
	}

	return []tokenDelta{{mint: account.Mint, decimals: account.Decimals, amount: total}}
}

// balanceDiffDeltas reads the account's pre/post token balances from
// transaction meta. A missing pre balance means the account was created
// in this transaction and starts at zero.
func balanceDiffDeltas(tx *solana.Transaction, account solana.TokenAccount) []tokenDelta {
	if tx.Meta == nil || tx.Message == nil {
		return nil
	}

	idx := -1
	for i, key := range tx.Message.AccountKeys {
		if key == account.Pubkey {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	var (
		pre, post          float64
		havePre, havePost  bool
		mint               = account.Mint
		decimals           = account.Decimals
	)

	for _, b := range tx.Meta.PreTokenBalances {
		if b.AccountIndex != idx {
			continue
		}
		if v, ok := parseUnits(b.UITokenAmount.Amount, b.UITokenAmount.Decimals); ok {
			pre = v
			havePre = true
			if b.Mint != "" {
				mint = b.Mint
			}
			decimals = b.UITokenAmount.Decimals
		}
	}
	for _, b := range tx.Meta.PostTokenBalances {
		if b.AccountIndex != idx {
			continue
		}
		if v, ok := parseUnits(b.UITokenAmount.Amount, b.UITokenAmount.Decimals); ok {
			post = v
			havePost = true
			if b.Mint != "" {
				mint = b.Mint
			}
			decimals = b.UITokenAmount.Decimals
		}
	}

	if !havePre && !havePost {
		return nil
	}

	delta := post - pre
	if delta == 0 {
		return nil
	}

	return []tokenDelta{{mint: mint, decimals: decimals, amount: delta}}
}

// parseUnits converts a raw base-unit decimal string into display units.
func parseUnits(raw string, decimals int) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v / math.Pow10(decimals), true
}
