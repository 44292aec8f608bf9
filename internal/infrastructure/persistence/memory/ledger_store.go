package memory

import (
	"context"
	"sync"

	"github.com/forgeline/reward-engine/internal/domain/ledger"
	"github.com/forgeline/reward-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEDGER STORE
// ══════════════════════════════════════════════════════════════════════════════

// LedgerStore is an in-memory append-only ledger.Store. Appends from
// concurrent activities interleave in arbitrary order; sums do not
// depend on order.
type LedgerStore struct {
	mu      sync.RWMutex
	entries []ledger.Entry
}

// NewLedgerStore creates an empty in-memory ledger.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{}
}

// Append stores a copy of the entry. Entries are never updated or
// deleted afterwards.
func (s *LedgerStore) Append(ctx context.Context, entry *ledger.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, *entry)
	return nil
}

// SumByCreditAccount sums entry amounts credited to an account in one
// currency. Reconciliation compares this against the wallet projection.
func (s *LedgerStore) SumByCreditAccount(ctx context.Context, account ledger.Account, currency shared.Currency) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum float64
	for i := range s.entries {
		if s.entries[i].CreditAccount == account && s.entries[i].Currency == currency {
			sum += s.entries[i].Amount
		}
	}
	return sum, nil
}

// ByReference returns the entries created for one reference id, in
// append order.
func (s *LedgerStore) ByReference(referenceID string) []ledger.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ledger.Entry
	for i := range s.entries {
		if s.entries[i].ReferenceID == referenceID {
			out = append(out, s.entries[i])
		}
	}
	return out
}

// Len returns the total number of entries.
func (s *LedgerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
