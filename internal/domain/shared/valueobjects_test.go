package shared

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserID(t *testing.T) {
	t.Run("trims whitespace", func(t *testing.T) {
		id, err := NewUserID("  u1  ")
		require.NoError(t, err)
		assert.Equal(t, "u1", id.String())
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := NewUserID("   ")
		assert.ErrorIs(t, err, ErrInvalidUserID)
	})
}

func TestMoney(t *testing.T) {
	t.Run("add same currency", func(t *testing.T) {
		sum, err := XP(10).Add(XP(5.5))
		require.NoError(t, err)
		assert.InDelta(t, 15.5, sum.Amount, 1e-9)
		assert.Equal(t, CurrencyXP, sum.Currency)
	})

	t.Run("add never coerces across currencies", func(t *testing.T) {
		_, err := XP(10).Add(Coins(10))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMixedCurrencies)
		assert.True(t, IsCurrencyMismatch(err))
	})

	t.Run("scale keeps currency", func(t *testing.T) {
		scaled := Karma(20).Scale(1.10)
		assert.InDelta(t, 22, scaled.Amount, 1e-9)
		assert.Equal(t, CurrencyKarma, scaled.Currency)
	})

	t.Run("new money validates currency", func(t *testing.T) {
		_, err := NewMoney(1, Currency("gold"))
		assert.ErrorIs(t, err, ErrUnknownCurrency)

		m, err := NewMoney(-3, CurrencyCoins)
		require.NoError(t, err)
		assert.False(t, m.IsPositive())
	})

	t.Run("positivity", func(t *testing.T) {
		assert.True(t, XP(0.01).IsPositive())
		assert.False(t, XP(0).IsPositive())
		assert.True(t, XP(0).IsZero())
		assert.False(t, XP(-1).IsPositive())
	})

	t.Run("string format", func(t *testing.T) {
		assert.Equal(t, "196.06 xp", XP(196.059).String())
	})
}

func TestLevel(t *testing.T) {
	t.Run("required xp follows the curve", func(t *testing.T) {
		assert.InDelta(t, 100, Level(1).RequiredXP(), 1e-9)
		assert.InDelta(t, 100*math.Pow(2, 1.8), Level(2).RequiredXP(), 1e-9)
		assert.InDelta(t, 100*math.Pow(5, 1.8), Level(5).RequiredXP(), 1e-9)
	})

	t.Run("next is single step", func(t *testing.T) {
		assert.Equal(t, Level(2), Level(1).Next())
		assert.Equal(t, Level(10), Level(9).Next())
	})

	t.Run("validation", func(t *testing.T) {
		_, err := NewLevel(0)
		assert.ErrorIs(t, err, ErrInvalidLevel)

		l, err := NewLevel(3)
		require.NoError(t, err)
		assert.Equal(t, 3, l.Int())
	})
}

func TestAllCurrencies(t *testing.T) {
	all := AllCurrencies()
	assert.Len(t, all, 3)
	for _, c := range all {
		assert.True(t, c.IsValid())
	}
}
