package postgres

import (
	"context"

	"github.com/forgeline/reward-engine/internal/domain/ledger"
	"github.com/forgeline/reward-engine/internal/domain/shared"
	"github.com/forgeline/reward-engine/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEDGER REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// LedgerRepository is a PostgreSQL ledger.Store. Rows are append-only;
// there is no update or delete path.
type LedgerRepository struct {
	conn *Connection
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(conn *Connection) *LedgerRepository {
	return &LedgerRepository{conn: conn}
}

// Append inserts one entry. The entry id is generated by the domain, so
// a duplicate insert surfaces as a unique violation instead of a
// silent double-credit.
func (r *LedgerRepository) Append(ctx context.Context, entry *ledger.Entry) error {
	const query = `
		INSERT INTO ledger_entries (id, debit_account, credit_account, amount, currency, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query,
		entry.ID,
		string(entry.DebitAccount),
		string(entry.CreditAccount),
		entry.Amount,
		entry.Currency.String(),
		entry.ReferenceID,
		entry.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.WrapError("ledger", "Append", shared.ErrAlreadyExists, "duplicate entry id", err)
		}
		return shared.WrapError("ledger", "Append", shared.ErrStoreUnavailable, "insert entry", err)
	}
	return nil
}

// SumByCreditAccount sums entry amounts credited to an account in one
// currency. Reconciliation compares this against the wallet projection.
func (r *LedgerRepository) SumByCreditAccount(ctx context.Context, account ledger.Account, currency shared.Currency) (float64, error) {
	const query = `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE credit_account = $1 AND currency = $2
	`

	return retry.DoWithData(ctx, func(ctx context.Context) (float64, error) {
		var sum float64
		err := r.conn.QueryRow(ctx, query, string(account), currency.String()).Scan(&sum)
		if err != nil {
			return 0, retry.Retryable(shared.WrapError("ledger", "SumByCreditAccount", shared.ErrStoreUnavailable, "sum entries", err))
		}
		return sum, nil
	})
}
