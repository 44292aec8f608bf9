// Package reward holds the engine's core domain: activity input, the
// closed set of domain events produced by the settlement pipeline, and
// eligibility rule specifications.
package reward

import (
	"github.com/forgeline/reward-engine/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// Activity Kind
// ═══════════════════════════════════════════════════════════════════════════

// ActivityKind identifies the family of work an activity describes.
// The set is closed; an unknown kind is an intentionally unscored
// activity, not an error.
type ActivityKind string

const (
	KindCodeMerge            ActivityKind = "code-merge"
	KindCriticalBugFix       ActivityKind = "critical-bug-fix"
	KindMentorshipSession    ActivityKind = "mentorship-session"
	KindKnowledgeShare       ActivityKind = "knowledge-share"
	KindArchitectureProposal ActivityKind = "architecture-proposal"
)

// IsValid checks if the kind is non-empty.
func (k ActivityKind) IsValid() bool {
	return k != ""
}

// String returns the string representation.
func (k ActivityKind) String() string {
	return string(k)
}

// ═══════════════════════════════════════════════════════════════════════════
// Activity Metadata
// ═══════════════════════════════════════════════════════════════════════════

// Well-known metadata keys consumed by the shipped strategies.
const (
	MetaLinesOfCode          = "lines-of-code"
	MetaCyclomaticComplexity = "cyclomatic-complexity"
	MetaAttendeeCount        = "attendee-count"
	MetaDurationHours        = "duration-hours"
)

// Metadata is the free-form context attached to an activity. Strategies
// read from it; nothing writes back.
type Metadata map[string]float64

// Get returns the value for key, or def when the key is absent.
// Negative values are clamped to 0 before use.
func (m Metadata) Get(key string, def float64) float64 {
	v, ok := m[key]
	if !ok {
		v = def
	}
	if v < 0 {
		return 0
	}
	return v
}

// ═══════════════════════════════════════════════════════════════════════════
// Activity
// ═══════════════════════════════════════════════════════════════════════════

// Activity is the ephemeral input to the engine. It is consumed and
// converted into ledger entries and events, never persisted as its own
// entity.
type Activity struct {
	UserID   shared.UserID
	Kind     ActivityKind
	Metadata Metadata
}

// NewActivity creates a validated activity.
func NewActivity(userID shared.UserID, kind ActivityKind, metadata Metadata) (Activity, error) {
	if !userID.IsValid() {
		return Activity{}, shared.ErrInvalidUserID
	}
	if !kind.IsValid() {
		return Activity{}, shared.ErrEmptyActivityKind
	}
	if metadata == nil {
		metadata = Metadata{}
	}
	return Activity{UserID: userID, Kind: kind, Metadata: metadata}, nil
}
