package scoring

import (
	"math"

	"github.com/forgeline/reward-engine/internal/domain/reward"
	"github.com/forgeline/reward-engine/internal/domain/shared"
)

// Coding reward constants.
const (
	codingXPBase     = 10.0
	bugFixCoinFactor = 50.0
)

// CodingStrategy scores code-centric activities. Experience scales
// logarithmically with change size so huge diffs do not dominate:
// XP = 10 * ln(linesOfCode + 1) * complexityFactor. Critical bug fixes
// additionally grant 50 * complexityFactor coins.
type CodingStrategy struct{}

// NewCodingStrategy creates a CodingStrategy.
func NewCodingStrategy() *CodingStrategy {
	return &CodingStrategy{}
}

// Calculate implements Strategy.
func (s *CodingStrategy) Calculate(ctx Context) []shared.Money {
	loc := ctx.Metadata.Get(reward.MetaLinesOfCode, 0)
	complexity := ctx.Metadata.Get(reward.MetaCyclomaticComplexity, 1)

	xp := codingXPBase * math.Log(loc+1) * complexity
	rewards := []shared.Money{shared.XP(xp)}

	if ctx.Kind == reward.KindCriticalBugFix {
		rewards = append(rewards, shared.Coins(bugFixCoinFactor*complexity))
	}
	return rewards
}
