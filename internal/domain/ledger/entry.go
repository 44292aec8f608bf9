// Package ledger defines the append-only double-entry record of value
// movement. The ledger is the system of record: wallet balances are a
// derived projection reconciled against it out of band.
package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forgeline/reward-engine/internal/domain/shared"
)

// Account names value holders on either side of an entry.
type Account string

// SystemMint is the source account every reward is debited from.
const SystemMint Account = "system:mint"

// UserAccount returns the ledger account for a user's wallet.
func UserAccount(id shared.UserID) Account {
	return Account("user:" + id.String())
}

// IsValid checks if the account is non-empty.
func (a Account) IsValid() bool {
	return strings.TrimSpace(string(a)) != ""
}

// String returns the string representation.
func (a Account) String() string {
	return string(a)
}

// Entry is one immutable double-entry record. Once created it is never
// updated or deleted; corrections are new entries.
type Entry struct {
	ID            string
	DebitAccount  Account
	CreditAccount Account
	Amount        float64
	Currency      shared.Currency
	ReferenceID   string
	CreatedAt     time.Time
}

// NewEntry creates a ledger entry with a generated id. The amount must
// be strictly positive: this ledger records only flows into user
// accounts, non-positive rewards never reach it.
func NewEntry(debit, credit Account, amount shared.Money, referenceID string) (*Entry, error) {
	if !debit.IsValid() || !credit.IsValid() {
		return nil, shared.ErrEmptyAccount
	}
	if !amount.Currency.IsValid() {
		return nil, shared.ErrUnknownCurrency
	}
	if !amount.IsPositive() {
		return nil, shared.ErrNonPositiveEntry
	}
	return &Entry{
		ID:            uuid.NewString(),
		DebitAccount:  debit,
		CreditAccount: credit,
		Amount:        amount.Amount,
		Currency:      amount.Currency,
		ReferenceID:   referenceID,
		CreatedAt:     time.Now().UTC(),
	}, nil
}
