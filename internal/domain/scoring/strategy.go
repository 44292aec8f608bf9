// Package scoring turns activity metadata into reward amounts. Strategies
// are pure functions of their context: stateless, safe to share across
// concurrent activities, and registered once at startup.
package scoring

import (
	"github.com/forgeline/reward-engine/internal/domain/reward"
	"github.com/forgeline/reward-engine/internal/domain/shared"
)

// Context is the input to a strategy calculation.
type Context struct {
	Kind     reward.ActivityKind
	Metadata reward.Metadata
}

// Strategy computes the raw reward list for an activity.
type Strategy interface {
	// Calculate maps the context to zero or more rewards. Identical
	// contexts always produce identical reward lists.
	Calculate(ctx Context) []shared.Money
}

// Registration pairs a strategy with its eligibility gate.
type Registration struct {
	Strategy    Strategy
	Eligibility reward.Specification
}

// Registry maps activity kinds to strategies. The mapping is built at
// startup and read-only afterwards; no locking is needed.
type Registry struct {
	entries map[reward.ActivityKind]Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[reward.ActivityKind]Registration{}}
}

// Register binds a strategy to an activity kind. A nil spec defaults to
// AlwaysEligible. Re-registering a kind replaces the previous binding.
func (r *Registry) Register(kind reward.ActivityKind, strategy Strategy, spec reward.Specification) {
	if spec == nil {
		spec = reward.AlwaysEligible()
	}
	r.entries[kind] = Registration{Strategy: strategy, Eligibility: spec}
}

// Resolve returns the registration for a kind. An absent kind is an
// intentionally unscored activity, not an error.
func (r *Registry) Resolve(kind reward.ActivityKind) (Registration, bool) {
	reg, ok := r.entries[kind]
	return reg, ok
}

// DefaultRegistry builds the standard registry: coding strategies for
// code work, the social strategy for people-facing activities.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	coding := NewCodingStrategy()
	social := NewSocialStrategy()

	r.Register(reward.KindCodeMerge, coding, nil)
	r.Register(reward.KindCriticalBugFix, coding, nil)
	r.Register(reward.KindMentorshipSession, social, nil)
	r.Register(reward.KindKnowledgeShare, social, nil)
	return r
}
