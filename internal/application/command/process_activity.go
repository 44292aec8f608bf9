// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/forgeline/reward-engine/internal/domain/ledger"
	"github.com/forgeline/reward-engine/internal/domain/reward"
	"github.com/forgeline/reward-engine/internal/domain/scoring"
	"github.com/forgeline/reward-engine/internal/domain/shared"
	"github.com/forgeline/reward-engine/internal/domain/user"
	"github.com/forgeline/reward-engine/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROCESS ACTIVITY COMMAND
// The core write path: score an activity, settle rewards through the
// ledger and wallet, check leveling, publish domain events.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultLevelUpBonus is the fixed coin bonus deposited on level up.
const DefaultLevelUpBonus = 500.0

// ProcessActivityCommand contains the data to process one activity.
type ProcessActivityCommand struct {
	// UserID identifies the user, created lazily on first sight.
	UserID string

	// Kind is the activity kind.
	Kind string

	// Metadata is the free-form activity context.
	Metadata map[string]float64

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c ProcessActivityCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("process_activity: user_id is required")
	}
	if c.Kind == "" {
		return errors.New("process_activity: kind is required")
	}
	return nil
}

// ProcessActivityResult contains the outcome of processing an activity.
type ProcessActivityResult struct {
	// Success indicates the full pipeline completed.
	Success bool

	// UserID is the processed user.
	UserID string

	// Kind is the activity kind.
	Kind string

	// ActivityID is the generated reference id linking ledger entries
	// back to this activity.
	ActivityID string

	// Scored indicates a strategy was resolved and eligible.
	Scored bool

	// UserCreated indicates the aggregate was created lazily.
	UserCreated bool

	// Settled lists the rewards that produced ledger entries.
	Settled []shared.Money

	// EntryIDs are the ledger entry ids created, in settlement order.
	EntryIDs []string

	// SkippedRewards counts computed rewards with amount <= 0.
	SkippedRewards int

	// LeveledUp indicates the level advanced (always by exactly one).
	LeveledUp bool

	// BadgesGranted lists milestone badges newly granted on the aggregate.
	BadgesGranted []string

	// OldLevel and NewLevel bracket the level check.
	OldLevel int
	NewLevel int

	// StreakDays is the streak after this activity.
	StreakDays int

	// ProcessedAt is when processing finished.
	ProcessedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ProcessActivityHandler orchestrates the per-activity state machine:
// Received -> Scored -> Modified -> Settled -> LevelChecked -> Persisted.
// Each activity is a single linear pass; there is no suspension other
// than at store and publish boundaries, and no mid-pipeline cancellation.
type ProcessActivityHandler struct {
	users    user.Store
	ledger   ledger.Store
	registry *scoring.Registry
	pipeline *scoring.Pipeline
	bus      shared.EventPublisher
	log      *logger.Logger

	levelUpBonus float64
}

// ProcessActivityHandlerConfig contains configuration for the handler.
type ProcessActivityHandlerConfig struct {
	// LevelUpBonus is the coin amount deposited on level up.
	LevelUpBonus float64
}

// DefaultProcessActivityHandlerConfig returns default configuration.
func DefaultProcessActivityHandlerConfig() ProcessActivityHandlerConfig {
	return ProcessActivityHandlerConfig{
		LevelUpBonus: DefaultLevelUpBonus,
	}
}

// NewProcessActivityHandler creates a new ProcessActivityHandler.
func NewProcessActivityHandler(
	users user.Store,
	ledgerStore ledger.Store,
	registry *scoring.Registry,
	pipeline *scoring.Pipeline,
	bus shared.EventPublisher,
	log *logger.Logger,
	config ProcessActivityHandlerConfig,
) *ProcessActivityHandler {
	if config.LevelUpBonus <= 0 {
		config = DefaultProcessActivityHandlerConfig()
	}
	if log == nil {
		log = logger.Default()
	}

	return &ProcessActivityHandler{
		users:        users,
		ledger:       ledgerStore,
		registry:     registry,
		pipeline:     pipeline,
		bus:          bus,
		log:          log.With(logger.Component("process_activity")),
		levelUpBonus: config.LevelUpBonus,
	}
}

// Handle executes the process activity command. Any ledger or aggregate
// store failure aborts the activity and surfaces to the caller; events
// already published for earlier steps are not retracted.
func (h *ProcessActivityHandler) Handle(ctx context.Context, cmd ProcessActivityCommand) (*ProcessActivityResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	activity, err := reward.NewActivity(shared.UserID(cmd.UserID), reward.ActivityKind(cmd.Kind), cmd.Metadata)
	if err != nil {
		return nil, fmt.Errorf("process_activity: %w", err)
	}

	result := &ProcessActivityResult{
		UserID:     cmd.UserID,
		Kind:       cmd.Kind,
		ActivityID: uuid.NewString(),
	}

	// Received: load or lazily create the aggregate. Get acquires the
	// per-user lock; every path below must end in Save or Release.
	aggregate, err := h.users.Get(ctx, activity.UserID)
	switch {
	case err == nil:
	case shared.IsNotFound(err):
		aggregate, err = user.New(activity.UserID)
		if err != nil {
			h.users.Release(activity.UserID)
			return nil, fmt.Errorf("process_activity: create aggregate: %w", err)
		}
		result.UserCreated = true
	default:
		h.users.Release(activity.UserID)
		return nil, fmt.Errorf("process_activity: load aggregate: %w", err)
	}

	submitted := reward.NewActivitySubmittedEvent(activity)
	if cmd.CorrelationID != "" {
		submitted.BaseEvent = submitted.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	h.publish(submitted)

	// Scored: an unregistered kind is a configuration gap, not an error.
	registration, ok := h.registry.Resolve(activity.Kind)
	if !ok {
		h.log.Info("no strategy for activity kind, skipping",
			logger.UserID(cmd.UserID), logger.ActivityKind(cmd.Kind))
		return h.finish(ctx, aggregate, result)
	}
	if !registration.Eligibility.IsSatisfiedBy(activity.Metadata) {
		h.log.Info("activity not eligible for scoring",
			logger.UserID(cmd.UserID), logger.ActivityKind(cmd.Kind))
		return h.finish(ctx, aggregate, result)
	}

	result.Scored = true
	now := time.Now().UTC()
	aggregate.RecordActivityAt(now)

	rewards := registration.Strategy.Calculate(scoring.Context{
		Kind:     activity.Kind,
		Metadata: activity.Metadata,
	})

	// Modified: cross-cutting adjustments before settlement.
	rewards = h.pipeline.Run(rewards)

	// Settled: one ledger entry plus wallet deposit per positive reward.
	for _, r := range rewards {
		if !r.IsPositive() {
			result.SkippedRewards++
			continue
		}
		entryID, err := h.settle(ctx, aggregate, r, result.ActivityID, cmd.CorrelationID)
		if err != nil {
			h.users.Release(activity.UserID)
			return nil, fmt.Errorf("process_activity: settle %s: %w", r, err)
		}
		result.Settled = append(result.Settled, r)
		result.EntryIDs = append(result.EntryIDs, entryID)
	}

	// LevelChecked: advance at most one level per activity.
	result.OldLevel = aggregate.Level.Int()
	result.NewLevel = result.OldLevel
	if aggregate.CanLevelUp() {
		bonus := shared.Coins(h.levelUpBonus)
		entryID, err := h.settle(ctx, aggregate, bonus, result.ActivityID, cmd.CorrelationID)
		if err != nil {
			h.users.Release(activity.UserID)
			return nil, fmt.Errorf("process_activity: settle level bonus: %w", err)
		}
		result.EntryIDs = append(result.EntryIDs, entryID)

		old, next := aggregate.LevelUp()
		result.LeveledUp = true
		result.OldLevel = old.Int()
		result.NewLevel = next.Int()

		levelUp := reward.NewLevelUpEvent(activity.UserID, old, next, bonus)
		if cmd.CorrelationID != "" {
			levelUp.BaseEvent = levelUp.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		}
		h.publish(levelUp)
		h.log.Info("level up",
			logger.UserID(cmd.UserID),
			logger.LevelValue(next.Int()),
			logger.Amount(bonus.Amount))

		// Milestone badges live on the aggregate, granted here while the
		// per-user lock is held so the grant persists with the level.
		if badge, ok := user.LevelBadge(next); ok && aggregate.GrantBadge(badge) {
			result.BadgesGranted = append(result.BadgesGranted, string(badge))
			earned := reward.NewBadgeEarnedEvent(activity.UserID, string(badge), "level milestone")
			if cmd.CorrelationID != "" {
				earned.BaseEvent = earned.BaseEvent.WithCorrelationID(cmd.CorrelationID)
			}
			h.publish(earned)
		}
	}

	return h.finish(ctx, aggregate, result)
}

// settle appends a ledger entry, applies the wallet deposit, and
// publishes TransactionRecorded. The ledger write comes first: the
// wallet is the projection, the ledger is the record.
func (h *ProcessActivityHandler) settle(
	ctx context.Context,
	aggregate *user.Aggregate,
	amount shared.Money,
	referenceID string,
	correlationID string,
) (string, error) {
	entry, err := ledger.NewEntry(ledger.SystemMint, ledger.UserAccount(aggregate.ID), amount, referenceID)
	if err != nil {
		return "", err
	}
	if err := h.ledger.Append(ctx, entry); err != nil {
		return "", shared.WrapError("ledger", "Append", shared.ErrStoreUnavailable, "append failed", err)
	}
	if err := aggregate.Deposit(amount); err != nil {
		return "", err
	}

	recorded := reward.NewTransactionRecordedEvent(aggregate.ID, entry.ID, amount, referenceID)
	if correlationID != "" {
		recorded.BaseEvent = recorded.BaseEvent.WithCorrelationID(correlationID)
	}
	h.publish(recorded)
	return entry.ID, nil
}

// finish persists the aggregate (last-writer-wins) and completes the
// result. Save releases the per-user lock on every outcome.
func (h *ProcessActivityHandler) finish(
	ctx context.Context,
	aggregate *user.Aggregate,
	result *ProcessActivityResult,
) (*ProcessActivityResult, error) {
	if err := h.users.Save(ctx, aggregate); err != nil {
		return nil, fmt.Errorf("process_activity: save aggregate: %w", err)
	}

	result.Success = true
	result.StreakDays = aggregate.StreakDays
	result.ProcessedAt = time.Now().UTC()
	if result.NewLevel == 0 {
		result.OldLevel = aggregate.Level.Int()
		result.NewLevel = result.OldLevel
	}
	return result, nil
}

// publish fans an event out through the bus. Subscriber failures are
// isolated inside the bus and never reach this path.
func (h *ProcessActivityHandler) publish(event shared.Event) {
	if h.bus == nil {
		return
	}
	_ = h.bus.Publish(event)
}
