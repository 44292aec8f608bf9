package scoring

import (
	"time"

	"github.com/forgeline/reward-engine/internal/domain/shared"
	"github.com/forgeline/reward-engine/pkg/timeutil"
)

// Modifier is a pure transformation over a reward list, applied in
// sequence before settlement. Modifiers never mutate their input.
type Modifier interface {
	Apply(rewards []shared.Money) []shared.Money
}

// ModifierFunc adapts a plain function to a Modifier.
type ModifierFunc func(rewards []shared.Money) []shared.Money

// Apply implements Modifier.
func (f ModifierFunc) Apply(rewards []shared.Money) []shared.Money {
	return f(rewards)
}

// Pipeline applies modifiers in registration order. The shape
// anticipates more modifiers (streak bonus, first-of-day bonus) without
// any orchestrator change.
type Pipeline struct {
	modifiers []Modifier
}

// NewPipeline creates a pipeline over the given modifiers.
func NewPipeline(modifiers ...Modifier) *Pipeline {
	return &Pipeline{modifiers: modifiers}
}

// Run passes the reward list through every modifier in order.
func (p *Pipeline) Run(rewards []shared.Money) []shared.Money {
	out := rewards
	for _, m := range p.modifiers {
		out = m.Apply(out)
	}
	return out
}

// WeekendBonusMultiplier is the default weekend scaling factor.
const WeekendBonusMultiplier = 1.10

// WeekendBonus scales every reward when the processing wall-clock date
// falls on a Saturday or Sunday. The clock is injected so tests can pin
// the date.
type WeekendBonus struct {
	multiplier float64
	now        func() time.Time
}

// NewWeekendBonus creates the weekend modifier with the default
// multiplier. A nil clock falls back to time.Now.
func NewWeekendBonus(multiplier float64, now func() time.Time) *WeekendBonus {
	if now == nil {
		now = time.Now
	}
	return &WeekendBonus{multiplier: multiplier, now: now}
}

// Apply implements Modifier.
func (w *WeekendBonus) Apply(rewards []shared.Money) []shared.Money {
	if !timeutil.IsWeekend(w.now()) {
		return rewards
	}
	out := make([]shared.Money, len(rewards))
	for i, r := range rewards {
		out[i] = r.Scale(w.multiplier)
	}
	return out
}
