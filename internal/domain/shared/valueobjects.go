// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"math"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// UserID represents an opaque, externally assigned user identifier.
// The engine never interprets it; it only keys aggregates and accounts.
type UserID string

// IsValid checks if the user ID is non-empty after trimming.
func (u UserID) IsValid() bool {
	return strings.TrimSpace(string(u)) != ""
}

// String returns the string representation.
func (u UserID) String() string {
	return string(u)
}

// IsEmpty checks if the ID is empty.
func (u UserID) IsEmpty() bool {
	return u == ""
}

// NewUserID creates a new UserID with validation.
func NewUserID(id string) (UserID, error) {
	uid := UserID(strings.TrimSpace(id))
	if !uid.IsValid() {
		return "", ErrInvalidUserID
	}
	return uid, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Currency Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Currency tags a reward amount. The set is closed; extending it means
// adding a new constant, never parsing free-form strings.
type Currency string

const (
	// CurrencyXP is leveling fuel.
	CurrencyXP Currency = "xp"
	// CurrencyCoins is the spendable currency.
	CurrencyCoins Currency = "coins"
	// CurrencyKarma is social reputation.
	CurrencyKarma Currency = "karma"
)

// IsValid checks if the currency is one of the known tags.
func (c Currency) IsValid() bool {
	switch c {
	case CurrencyXP, CurrencyCoins, CurrencyKarma:
		return true
	}
	return false
}

// String returns the string representation.
func (c Currency) String() string {
	return string(c)
}

// AllCurrencies returns every known currency tag.
func AllCurrencies() []Currency {
	return []Currency{CurrencyXP, CurrencyCoins, CurrencyKarma}
}

// ═══════════════════════════════════════════════════════════════════════════
// Money Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Money pairs an amount with a currency tag. Money is immutable: every
// operation produces a new value. Arithmetic is only defined within one
// currency; mixing currencies is a programming error surfaced as
// ErrCurrencyMismatch, never silently coerced.
type Money struct {
	Amount   float64
	Currency Currency
}

// NewMoney creates a Money value with currency validation.
func NewMoney(amount float64, currency Currency) (Money, error) {
	if !currency.IsValid() {
		return Money{}, ErrUnknownCurrency
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// MustMoney creates a Money value and panics on an unknown currency.
// For compile-time-constant currencies only.
func MustMoney(amount float64, currency Currency) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// XP is shorthand for an experience-point amount.
func XP(amount float64) Money {
	return Money{Amount: amount, Currency: CurrencyXP}
}

// Coins is shorthand for a coin amount.
func Coins(amount float64) Money {
	return Money{Amount: amount, Currency: CurrencyCoins}
}

// Karma is shorthand for a karma amount.
func Karma(amount float64) Money {
	return Money{Amount: amount, Currency: CurrencyKarma}
}

// Add returns the sum of two amounts of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, WrapError("reward", "Add", ErrMixedCurrencies,
			fmt.Sprintf("cannot add %s to %s", other.Currency, m.Currency), nil)
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Scale returns the amount multiplied by factor, same currency.
func (m Money) Scale(factor float64) Money {
	return Money{Amount: m.Amount * factor, Currency: m.Currency}
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Amount > 0
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// String returns a human-readable representation, e.g. "196.06 xp".
func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", m.Amount, m.Currency)
}

// ═══════════════════════════════════════════════════════════════════════════
// Level Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Level represents a user's level. Levels start at 1 and only ever grow.
type Level int

const (
	// MinLevel is the level every user starts at.
	MinLevel Level = 1
)

// IsValid checks if the level is within valid range.
func (l Level) IsValid() bool {
	return l >= MinLevel
}

// Int returns the underlying int value.
func (l Level) Int() int {
	return int(l)
}

// RequiredXP returns the accumulated experience needed to advance past
// this level: 100 * level^1.8.
func (l Level) RequiredXP() float64 {
	return 100 * math.Pow(float64(l), 1.8)
}

// Next returns the level one step up. Advancement is always single-step:
// crossing several thresholds in one grant still advances one level.
func (l Level) Next() Level {
	return l + 1
}

// NewLevel creates a new Level with validation.
func NewLevel(v int) (Level, error) {
	l := Level(v)
	if !l.IsValid() {
		return 0, ErrInvalidLevel
	}
	return l, nil
}
