package ledger

import (
	"context"

	"github.com/forgeline/reward-engine/internal/domain/shared"
)

// Store is the append-only ledger contract. Appends are independent and
// commutative, so implementations need no per-key serialization. The
// settlement path only appends; the sum query exists for reconciliation.
type Store interface {
	// Append persists an entry. Entries are immutable once appended.
	Append(ctx context.Context, entry *Entry) error

	// SumByCreditAccount returns the sum of credits minus debits for an
	// account in one currency across the whole ledger.
	SumByCreditAccount(ctx context.Context, account Account, currency shared.Currency) (float64, error)
}
