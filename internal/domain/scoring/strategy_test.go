package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeline/reward-engine/internal/domain/reward"
	"github.com/forgeline/reward-engine/internal/domain/shared"
)

func findAmount(t *testing.T, rewards []shared.Money, c shared.Currency) float64 {
	t.Helper()
	for _, r := range rewards {
		if r.Currency == c {
			return r.Amount
		}
	}
	t.Fatalf("no %s reward in %v", c, rewards)
	return 0
}

func TestCodingStrategy(t *testing.T) {
	strategy := NewCodingStrategy()

	t.Run("code merge yields logarithmic xp", func(t *testing.T) {
		rewards := strategy.Calculate(Context{
			Kind: reward.KindCodeMerge,
			Metadata: reward.Metadata{
				reward.MetaLinesOfCode:          120,
				reward.MetaCyclomaticComplexity: 2,
			},
		})

		require.Len(t, rewards, 1)
		assert.InDelta(t, 10*math.Log(121)*2, findAmount(t, rewards, shared.CurrencyXP), 1e-9)
	})

	t.Run("missing metadata falls back to defaults", func(t *testing.T) {
		rewards := strategy.Calculate(Context{Kind: reward.KindCodeMerge, Metadata: reward.Metadata{}})

		// loc defaults to 0, complexity to 1: ln(1) = 0.
		require.Len(t, rewards, 1)
		assert.Zero(t, findAmount(t, rewards, shared.CurrencyXP))
	})

	t.Run("negative metadata clamps to zero", func(t *testing.T) {
		rewards := strategy.Calculate(Context{
			Kind:     reward.KindCodeMerge,
			Metadata: reward.Metadata{reward.MetaLinesOfCode: -500},
		})

		assert.Zero(t, findAmount(t, rewards, shared.CurrencyXP))
	})

	t.Run("critical bug fix adds coins", func(t *testing.T) {
		rewards := strategy.Calculate(Context{
			Kind: reward.KindCriticalBugFix,
			Metadata: reward.Metadata{
				reward.MetaLinesOfCode:          50,
				reward.MetaCyclomaticComplexity: 5,
			},
		})

		require.Len(t, rewards, 2)
		assert.InDelta(t, 10*math.Log(51)*5, findAmount(t, rewards, shared.CurrencyXP), 1e-9)
		assert.InDelta(t, 250, findAmount(t, rewards, shared.CurrencyCoins), 1e-9)
	})
}

func TestSocialStrategy(t *testing.T) {
	strategy := NewSocialStrategy()

	t.Run("karma scales with attendees and hours", func(t *testing.T) {
		rewards := strategy.Calculate(Context{
			Kind: reward.KindMentorshipSession,
			Metadata: reward.Metadata{
				reward.MetaAttendeeCount: 4,
				reward.MetaDurationHours: 1.5,
			},
		})

		require.Len(t, rewards, 2)
		karma := findAmount(t, rewards, shared.CurrencyKarma)
		assert.InDelta(t, 4*1.5*5, karma, 1e-9)
		assert.InDelta(t, 0.5*karma, findAmount(t, rewards, shared.CurrencyXP), 1e-9)
	})

	t.Run("no attendees means no reward amounts", func(t *testing.T) {
		rewards := strategy.Calculate(Context{Kind: reward.KindKnowledgeShare, Metadata: reward.Metadata{}})

		assert.Zero(t, findAmount(t, rewards, shared.CurrencyKarma))
		assert.Zero(t, findAmount(t, rewards, shared.CurrencyXP))
	})
}

func TestStrategyPurity(t *testing.T) {
	strategy := NewCodingStrategy()
	ctx := Context{
		Kind: reward.KindCriticalBugFix,
		Metadata: reward.Metadata{
			reward.MetaLinesOfCode:          50,
			reward.MetaCyclomaticComplexity: 5,
		},
	}

	first := strategy.Calculate(ctx)
	second := strategy.Calculate(ctx)

	assert.Equal(t, first, second, "same context always scores the same")
}

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry()

	t.Run("coding kinds resolve", func(t *testing.T) {
		for _, kind := range []reward.ActivityKind{reward.KindCodeMerge, reward.KindCriticalBugFix} {
			reg, ok := registry.Resolve(kind)
			require.True(t, ok, "kind %s", kind)
			assert.NotNil(t, reg.Strategy)
			assert.NotNil(t, reg.Eligibility)
		}
	})

	t.Run("social kinds resolve", func(t *testing.T) {
		for _, kind := range []reward.ActivityKind{reward.KindMentorshipSession, reward.KindKnowledgeShare} {
			_, ok := registry.Resolve(kind)
			assert.True(t, ok, "kind %s", kind)
		}
	})

	t.Run("unbound kind does not resolve", func(t *testing.T) {
		_, ok := registry.Resolve(reward.KindArchitectureProposal)
		assert.False(t, ok)

		_, ok = registry.Resolve("made-up-kind")
		assert.False(t, ok)
	})
}
