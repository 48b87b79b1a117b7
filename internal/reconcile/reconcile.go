// Package reconcile merges freshly fetched candidate records into the
// canonical record set. Fetch-derived fields always come from the
// newest fetch; user classification always survives from the existing
// set. The merge is idempotent: feeding the same candidates twice
// yields the same canonical set.
package reconcile

import (
	"sort"

	"solana-wallet-ledger/internal/domain"
)

// Merge combines candidates with the existing canonical set, keyed by
// (tx signature, asset). Existing records with no matching candidate
// are retained: history never silently disappears because one refresh
// looked back a shorter distance.
func Merge(candidates, existing []*domain.Record) []*domain.Record {
	existingByKey := make(map[domain.RecordKey]*domain.Record, len(existing))
	for _, r := range existing {
		existingByKey[r.Key()] = r
	}

	merged := make([]*domain.Record, 0, len(existing)+len(candidates))
	taken := make(map[domain.RecordKey]bool, len(candidates))

	for _, c := range candidates {
		key := c.Key()
		if taken[key] {
			continue
		}
		taken[key] = true

		cp := clone(c)
		if old, ok := existingByKey[key]; ok {
			cp.CopyUserFields(old)
		}
		merged = append(merged, cp)
	}

	for _, r := range existing {
		if taken[r.Key()] {
			continue
		}
		merged = append(merged, clone(r))
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].BlockTime != merged[j].BlockTime {
			return merged[i].BlockTime > merged[j].BlockTime
		}
		return merged[i].ID < merged[j].ID
	})

	return merged
}

func clone(r *domain.Record) *domain.Record {
	cp := *r
	if r.Note != nil {
		note := *r.Note
		cp.Note = &note
	}
	if r.Asset.IconURL != nil {
		icon := *r.Asset.IconURL
		cp.Asset.IconURL = &icon
	}
	return &cp
}
