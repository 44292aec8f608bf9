// Package user holds the mutable user aggregate: the derived snapshot of
// a user's wallet, level, badges, and activity streak. The aggregate is
// mutated exclusively by the reward orchestrator while it holds the
// store's per-user lock.
package user

import (
	"fmt"
	"time"

	"github.com/forgeline/reward-engine/internal/domain/shared"
	"github.com/forgeline/reward-engine/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: USER AGGREGATE
// ══════════════════════════════════════════════════════════════════════════════

// Aggregate is the latest snapshot of one user's reward state. It is
// created lazily on the first activity for an unknown id and never
// deleted. Wallet balances are a projection of the ledger; the ledger
// stays the system of record.
type Aggregate struct {
	// ID is the opaque user identifier.
	ID shared.UserID

	// DisplayName is the human-readable name, defaults to the id.
	DisplayName string

	// Level starts at 1 and advances at most one step per activity.
	Level shared.Level

	// Wallet maps each currency to its accumulated non-negative amount.
	Wallet map[shared.Currency]float64

	// Badges is the set of earned badge identifiers.
	Badges map[BadgeID]time.Time

	// StreakDays counts consecutive days with at least one activity.
	StreakDays int

	// LastActivityAt is when the user last submitted an activity.
	LastActivityAt time.Time

	// CreatedAt is when the aggregate was lazily created.
	CreatedAt time.Time

	// UpdatedAt is the last mutation time.
	UpdatedAt time.Time
}

// New creates a fresh aggregate for a first-seen user.
func New(id shared.UserID) (*Aggregate, error) {
	if !id.IsValid() {
		return nil, shared.ErrInvalidUserID
	}
	now := time.Now().UTC()
	return &Aggregate{
		ID:          id,
		DisplayName: id.String(),
		Level:       shared.MinLevel,
		Wallet:      map[shared.Currency]float64{},
		Badges:      map[BadgeID]time.Time{},
		StreakDays:  0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// Balance returns the wallet balance for one currency.
func (a *Aggregate) Balance(c shared.Currency) float64 {
	return a.Wallet[c]
}

// Deposit adds a positive amount to the wallet. Non-positive deposits
// are rejected: settlement filters those out before they reach here.
func (a *Aggregate) Deposit(m shared.Money) error {
	if !m.Currency.IsValid() {
		return shared.ErrUnknownCurrency
	}
	if !m.IsPositive() {
		return shared.WrapError("user", "Deposit", shared.ErrNegativeValue,
			fmt.Sprintf("deposit must be positive, got %s", m), nil)
	}
	a.Wallet[m.Currency] += m.Amount
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// CanLevelUp reports whether accumulated experience has reached the
// current level's threshold (100 * level^1.8).
func (a *Aggregate) CanLevelUp() bool {
	return a.Balance(shared.CurrencyXP) >= a.Level.RequiredXP()
}

// LevelUp advances the level by exactly one step and returns the old and
// new levels. Callers check CanLevelUp first; advancing is idempotent
// per activity because the orchestrator calls it at most once.
func (a *Aggregate) LevelUp() (old, next shared.Level) {
	old = a.Level
	a.Level = a.Level.Next()
	a.UpdatedAt = time.Now().UTC()
	return old, a.Level
}

// GrantBadge records a badge if the user does not already hold it.
// Returns true when the badge is newly granted.
func (a *Aggregate) GrantBadge(id BadgeID) bool {
	if _, ok := a.Badges[id]; ok {
		return false
	}
	a.Badges[id] = time.Now().UTC()
	a.UpdatedAt = a.Badges[id]
	return true
}

// HasBadge reports whether the user holds a badge.
func (a *Aggregate) HasBadge(id BadgeID) bool {
	_, ok := a.Badges[id]
	return ok
}

// RecordActivityAt updates the streak counter and last-activity stamp.
// Same-day activity keeps the streak, next-day activity extends it, a
// gap resets it to 1.
func (a *Aggregate) RecordActivityAt(at time.Time) {
	switch {
	case a.LastActivityAt.IsZero():
		a.StreakDays = 1
	case timeutil.IsSameDay(a.LastActivityAt, at):
		// same day, streak unchanged
	case timeutil.IsConsecutiveDay(a.LastActivityAt, at):
		a.StreakDays++
	default:
		a.StreakDays = 1
	}

	a.LastActivityAt = at.UTC()
	a.UpdatedAt = a.LastActivityAt
}

// String returns a compact representation for logging.
func (a *Aggregate) String() string {
	return fmt.Sprintf("User{ID: %s, Level: %d, XP: %.2f, Coins: %.2f, Karma: %.2f, Streak: %d}",
		a.ID, a.Level.Int(),
		a.Balance(shared.CurrencyXP),
		a.Balance(shared.CurrencyCoins),
		a.Balance(shared.CurrencyKarma),
		a.StreakDays,
	)
}

// Clone creates a deep copy of the aggregate.
func (a *Aggregate) Clone() *Aggregate {
	if a == nil {
		return nil
	}

	clone := *a
	clone.Wallet = make(map[shared.Currency]float64, len(a.Wallet))
	for c, v := range a.Wallet {
		clone.Wallet[c] = v
	}
	clone.Badges = make(map[BadgeID]time.Time, len(a.Badges))
	for b, t := range a.Badges {
		clone.Badges[b] = t
	}
	return &clone
}
