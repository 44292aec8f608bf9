// Package eventhandler contains domain event subscribers.
package eventhandler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/forgeline/reward-engine/internal/domain/reward"
	"github.com/forgeline/reward-engine/internal/domain/shared"
	"github.com/forgeline/reward-engine/internal/domain/user"
)

// ═══════════════════════════════════════════════════════════════════════════
// GAMIFICATION OBSERVER
// Awards the big-earner badge from settlement events. Level milestone
// badges are granted on the aggregate by the settlement path itself;
// this observer runs strictly downstream and never writes back through
// the aggregate store, so it can never affect or block the activity
// that triggered it. Its awards are non-authoritative annotations, not
// balances.
// ═══════════════════════════════════════════════════════════════════════════

// GamificationObserver subscribes to TransactionRecorded.
type GamificationObserver struct {
	bus    shared.EventPublisher
	logger *slog.Logger
	config GamificationConfig

	mu      sync.Mutex
	awarded map[string]map[user.BadgeID]time.Time
}

// GamificationConfig contains configuration for the observer.
type GamificationConfig struct {
	// CoinBadgeThreshold is the coin amount a single transaction must
	// exceed to earn the big-earner badge.
	CoinBadgeThreshold float64
}

// DefaultGamificationConfig returns the default configuration.
func DefaultGamificationConfig() GamificationConfig {
	return GamificationConfig{
		CoinBadgeThreshold: 100,
	}
}

// NewGamificationObserver creates a new observer.
func NewGamificationObserver(bus shared.EventPublisher, logger *slog.Logger, config GamificationConfig) *GamificationObserver {
	if logger == nil {
		logger = slog.Default()
	}
	if config.CoinBadgeThreshold <= 0 {
		config = DefaultGamificationConfig()
	}

	return &GamificationObserver{
		bus:     bus,
		logger:  logger.With("handler", "gamification"),
		config:  config,
		awarded: make(map[string]map[user.BadgeID]time.Time),
	}
}

// Register subscribes the observer's handlers on the bus.
func (o *GamificationObserver) Register(bus shared.EventSubscriber) error {
	return bus.Subscribe(shared.EventTransactionRecorded, o.HandleTransactionRecorded)
}

// HandleTransactionRecorded awards the big-earner badge for a coin
// transaction above the threshold. Implements shared.EventHandler.
func (o *GamificationObserver) HandleTransactionRecorded(event shared.Event) error {
	tx, ok := event.(reward.TransactionRecordedEvent)
	if !ok {
		o.logger.Warn("received non-TransactionRecordedEvent", "event_type", event.EventType())
		return nil
	}

	if tx.Currency != shared.CurrencyCoins.String() || tx.Amount <= o.config.CoinBadgeThreshold {
		return nil
	}

	o.award(shared.UserID(tx.UserID), user.BadgeBigEarner, "coin transaction over threshold")
	return nil
}

// award records the badge signal once per user and fans out BadgeEarned.
func (o *GamificationObserver) award(userID shared.UserID, badge user.BadgeID, reason string) {
	o.mu.Lock()
	byUser, ok := o.awarded[userID.String()]
	if !ok {
		byUser = make(map[user.BadgeID]time.Time)
		o.awarded[userID.String()] = byUser
	}
	if _, already := byUser[badge]; already {
		o.mu.Unlock()
		return
	}
	byUser[badge] = time.Now().UTC()
	o.mu.Unlock()

	o.logger.Info("badge earned",
		"user_id", userID.String(),
		"badge_id", string(badge),
		"reason", reason,
	)

	if o.bus != nil {
		_ = o.bus.Publish(reward.NewBadgeEarnedEvent(userID, string(badge), reason))
	}
}

// Awards returns the badges recorded for a user, for read-side queries.
func (o *GamificationObserver) Awards(userID shared.UserID) []user.BadgeID {
	o.mu.Lock()
	defer o.mu.Unlock()

	byUser := o.awarded[userID.String()]
	badges := make([]user.BadgeID, 0, len(byUser))
	for b := range byUser {
		badges = append(badges, b)
	}
	return badges
}
