package reward

import (
	"github.com/forgeline/reward-engine/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// Activity Submitted
// ═══════════════════════════════════════════════════════════════════════════

// ActivitySubmittedEvent is emitted as soon as the engine accepts an
// activity, before any scoring happens.
type ActivitySubmittedEvent struct {
	shared.BaseEvent
	UserID   string             `json:"user_id"`
	Kind     string             `json:"kind"`
	Metadata map[string]float64 `json:"metadata,omitempty"`
}

// Payload implements the Event interface.
func (e ActivitySubmittedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":  e.UserID,
		"kind":     e.Kind,
		"metadata": map[string]float64(e.Metadata),
	}
}

// NewActivitySubmittedEvent creates a new ActivitySubmittedEvent.
func NewActivitySubmittedEvent(activity Activity) ActivitySubmittedEvent {
	return ActivitySubmittedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventActivitySubmitted, activity.UserID.String()),
		UserID:    activity.UserID.String(),
		Kind:      activity.Kind.String(),
		Metadata:  activity.Metadata,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Transaction Recorded
// ═══════════════════════════════════════════════════════════════════════════

// TransactionRecordedEvent is emitted after a reward has been settled:
// the ledger entry is appended and the wallet deposit applied.
type TransactionRecordedEvent struct {
	shared.BaseEvent
	UserID      string  `json:"user_id"`
	EntryID     string  `json:"entry_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	ReferenceID string  `json:"reference_id"`
}

// Payload implements the Event interface.
func (e TransactionRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":      e.UserID,
		"entry_id":     e.EntryID,
		"amount":       e.Amount,
		"currency":     e.Currency,
		"reference_id": e.ReferenceID,
	}
}

// NewTransactionRecordedEvent creates a new TransactionRecordedEvent.
func NewTransactionRecordedEvent(userID shared.UserID, entryID string, amount shared.Money, referenceID string) TransactionRecordedEvent {
	return TransactionRecordedEvent{
		BaseEvent:   shared.NewBaseEvent(shared.EventTransactionRecorded, userID.String()),
		UserID:      userID.String(),
		EntryID:     entryID,
		Amount:      amount.Amount,
		Currency:    amount.Currency.String(),
		ReferenceID: referenceID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Level Up
// ═══════════════════════════════════════════════════════════════════════════

// LevelUpEvent is emitted when an activity pushes a user past their
// current level's experience threshold.
type LevelUpEvent struct {
	shared.BaseEvent
	UserID   string  `json:"user_id"`
	OldLevel int     `json:"old_level"`
	NewLevel int     `json:"new_level"`
	Bonus    float64 `json:"bonus"`
}

// Payload implements the Event interface.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"old_level": e.OldLevel,
		"new_level": e.NewLevel,
		"bonus":     e.Bonus,
	}
}

// NewLevelUpEvent creates a new LevelUpEvent.
func NewLevelUpEvent(userID shared.UserID, oldLevel, newLevel shared.Level, bonus shared.Money) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventLevelUp, userID.String()),
		UserID:    userID.String(),
		OldLevel:  oldLevel.Int(),
		NewLevel:  newLevel.Int(),
		Bonus:     bonus.Amount,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Badge Earned (downstream only)
// ═══════════════════════════════════════════════════════════════════════════

// BadgeEarnedEvent is emitted by the gamification observer. It never
// feeds back into the settlement pipeline.
type BadgeEarnedEvent struct {
	shared.BaseEvent
	UserID  string `json:"user_id"`
	BadgeID string `json:"badge_id"`
	Reason  string `json:"reason,omitempty"`
}

// Payload implements the Event interface.
func (e BadgeEarnedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":  e.UserID,
		"badge_id": e.BadgeID,
		"reason":   e.Reason,
	}
}

// NewBadgeEarnedEvent creates a new BadgeEarnedEvent.
func NewBadgeEarnedEvent(userID shared.UserID, badgeID, reason string) BadgeEarnedEvent {
	return BadgeEarnedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventBadgeEarned, userID.String()),
		UserID:    userID.String(),
		BadgeID:   badgeID,
		Reason:    reason,
	}
}
