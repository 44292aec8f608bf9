package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadataGet(t *testing.T) {
	m := Metadata{
		"lines-of-code": 50,
		"broken":        -7,
	}

	assert.Equal(t, 50.0, m.Get("lines-of-code", 0))
	assert.Equal(t, 1.0, m.Get("cyclomatic-complexity", 1), "absent key falls back to default")
	assert.Equal(t, 0.0, m.Get("broken", 1), "negative values clamp to zero")
}

func TestSpecifications(t *testing.T) {
	t.Run("always eligible", func(t *testing.T) {
		assert.True(t, AlwaysEligible().IsSatisfiedBy(nil))
		assert.True(t, AlwaysEligible().IsSatisfiedBy(Metadata{"x": 1}))
	})

	t.Run("minimum metadata", func(t *testing.T) {
		spec := MinimumMetadata(MetaLinesOfCode, 10, 0)

		assert.True(t, spec.IsSatisfiedBy(Metadata{MetaLinesOfCode: 10}))
		assert.False(t, spec.IsSatisfiedBy(Metadata{MetaLinesOfCode: 9}))
		assert.False(t, spec.IsSatisfiedBy(Metadata{}), "absent key uses default")
		assert.False(t, spec.IsSatisfiedBy(Metadata{MetaLinesOfCode: -50}), "negative clamps below threshold")
	})

	t.Run("conjunction requires all", func(t *testing.T) {
		spec := And(
			MinimumMetadata(MetaAttendeeCount, 2, 0),
			MinimumMetadata(MetaDurationHours, 1, 0),
		)

		assert.True(t, spec.IsSatisfiedBy(Metadata{MetaAttendeeCount: 3, MetaDurationHours: 2}))
		assert.False(t, spec.IsSatisfiedBy(Metadata{MetaAttendeeCount: 3}))
		assert.False(t, spec.IsSatisfiedBy(Metadata{MetaDurationHours: 2}))
	})

	t.Run("empty conjunction accepts", func(t *testing.T) {
		assert.True(t, And().IsSatisfiedBy(Metadata{}))
	})
}

func TestNewActivity(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		a, err := NewActivity("u1", KindCodeMerge, Metadata{MetaLinesOfCode: 10})
		assert.NoError(t, err)
		assert.Equal(t, KindCodeMerge, a.Kind)
	})

	t.Run("nil metadata becomes empty", func(t *testing.T) {
		a, err := NewActivity("u1", KindCodeMerge, nil)
		assert.NoError(t, err)
		assert.NotNil(t, a.Metadata)
	})

	t.Run("rejects empty user", func(t *testing.T) {
		_, err := NewActivity("", KindCodeMerge, nil)
		assert.Error(t, err)
	})

	t.Run("rejects empty kind", func(t *testing.T) {
		_, err := NewActivity("u1", "", nil)
		assert.Error(t, err)
	})
}
