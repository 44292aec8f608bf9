package scoring

import (
	"github.com/forgeline/reward-engine/internal/domain/reward"
	"github.com/forgeline/reward-engine/internal/domain/shared"
)

// Social reward constants.
const (
	karmaPerAttendeeHour = 5.0
	socialXPShare        = 0.5
)

// SocialStrategy scores people-facing activities (mentorship, knowledge
// sharing). Karma = attendees * durationHours * 5; experience rides
// along at half the karma amount.
type SocialStrategy struct{}

// NewSocialStrategy creates a SocialStrategy.
func NewSocialStrategy() *SocialStrategy {
	return &SocialStrategy{}
}

// Calculate implements Strategy.
func (s *SocialStrategy) Calculate(ctx Context) []shared.Money {
	attendees := ctx.Metadata.Get(reward.MetaAttendeeCount, 0)
	hours := ctx.Metadata.Get(reward.MetaDurationHours, 0)

	karma := attendees * hours * karmaPerAttendeeHour
	return []shared.Money{
		shared.Karma(karma),
		shared.XP(socialXPShare * karma),
	}
}
