package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureFlagDefaults(t *testing.T) {
	ff := LoadFeatureFlags()

	for _, name := range []string{
		FeatureWeekendBonus,
		FeatureBadgeAwards,
		FeatureWalletProjection,
		FeatureReconciliation,
	} {
		assert.True(t, ff.IsEnabled(name, nil), "feature %s enabled by default", name)
	}

	assert.False(t, ff.IsEnabled("engine.unknown", nil))
}

func TestFeatureFlagEnvironmentOverride(t *testing.T) {
	t.Setenv("FEATURE_ENGINE_WEEKEND_BONUS", "false")
	t.Setenv("FEATURE_ENGINE_BADGE_AWARDS", "0")

	ff := LoadFeatureFlags()

	assert.False(t, ff.IsEnabled(FeatureWeekendBonus, nil))
	assert.False(t, ff.IsEnabled(FeatureBadgeAwards, nil))
	assert.True(t, ff.IsEnabled(FeatureReconciliation, nil))
}

func TestFeatureFlagRollout(t *testing.T) {
	ff := LoadFeatureFlags()

	t.Run("partial rollout buckets are consistent", func(t *testing.T) {
		require.NoError(t, ff.SetRolloutPercent(FeatureWeekendBonus, 50))

		ctx := &FeatureContext{UserID: "u1"}
		first := ff.IsEnabled(FeatureWeekendBonus, ctx)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, ff.IsEnabled(FeatureWeekendBonus, ctx),
				"same user always lands in the same bucket")
		}
	})

	t.Run("zero percent disables everyone", func(t *testing.T) {
		require.NoError(t, ff.SetRolloutPercent(FeatureWeekendBonus, 0))
		assert.False(t, ff.IsEnabled(FeatureWeekendBonus, &FeatureContext{UserID: "u1"}))
		assert.False(t, ff.IsEnabled(FeatureWeekendBonus, nil))
	})

	t.Run("hundred percent enables everyone", func(t *testing.T) {
		require.NoError(t, ff.EnableFeature(FeatureWeekendBonus))
		assert.True(t, ff.IsEnabled(FeatureWeekendBonus, &FeatureContext{UserID: "u1"}))
	})

	t.Run("out-of-range percent is rejected", func(t *testing.T) {
		assert.ErrorIs(t, ff.SetRolloutPercent(FeatureWeekendBonus, 101), ErrInvalidRolloutPercent)
		assert.ErrorIs(t, ff.SetRolloutPercent("engine.unknown", 50), ErrFeatureNotFound)
	})
}

func TestFeatureFlagUserOverrides(t *testing.T) {
	ff := LoadFeatureFlags()
	ctx := &FeatureContext{UserID: "u1"}

	ff.SetUserOverride("u1", FeatureWeekendBonus, false)
	assert.False(t, ff.IsEnabled(FeatureWeekendBonus, ctx))
	assert.True(t, ff.IsEnabled(FeatureWeekendBonus, &FeatureContext{UserID: "u2"}),
		"override scoped to one user")

	ff.ClearUserOverrides("u1")
	assert.True(t, ff.IsEnabled(FeatureWeekendBonus, ctx))
}

func TestGetAllFeaturesReturnsCopies(t *testing.T) {
	ff := LoadFeatureFlags()

	all := ff.GetAllFeatures()
	require.Contains(t, all, FeatureWeekendBonus)
	all[FeatureWeekendBonus].Enabled = false

	assert.True(t, ff.IsEnabled(FeatureWeekendBonus, nil), "mutating the copy does not affect the flags")
}
