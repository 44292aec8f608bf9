// Package jobs contains the scheduled background jobs of the reward
// engine.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/forgeline/reward-engine/internal/domain/ledger"
	"github.com/forgeline/reward-engine/internal/domain/shared"
	"github.com/forgeline/reward-engine/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECONCILE WALLETS
// ══════════════════════════════════════════════════════════════════════════════

// ReconcileWalletsJob compares every wallet balance against the sum of
// ledger credits for that account. The ledger is the record and the
// wallet is the projection, so drift means the projection is wrong.
// The job reports drift; it never rewrites balances on its own.
type ReconcileWalletsJob struct {
	users     user.Store
	ledger    ledger.Store
	bus       shared.EventPublisher
	logger    *slog.Logger
	tolerance float64
}

// ReconcileWalletsConfig contains configuration for the job.
type ReconcileWalletsConfig struct {
	// Tolerance is the absolute drift below which a wallet counts as
	// in sync. Balances are floating point, exact equality is too
	// strict after many settlements.
	Tolerance float64
}

// DefaultReconcileWalletsConfig returns default configuration.
func DefaultReconcileWalletsConfig() ReconcileWalletsConfig {
	return ReconcileWalletsConfig{
		Tolerance: 1e-6,
	}
}

// NewReconcileWalletsJob creates a new ReconcileWalletsJob.
func NewReconcileWalletsJob(
	users user.Store,
	ledgerStore ledger.Store,
	bus shared.EventPublisher,
	logger *slog.Logger,
	config ReconcileWalletsConfig,
) *ReconcileWalletsJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Tolerance <= 0 {
		config = DefaultReconcileWalletsConfig()
	}

	return &ReconcileWalletsJob{
		users:     users,
		ledger:    ledgerStore,
		bus:       bus,
		logger:    logger.With("job", "reconcile_wallets"),
		tolerance: config.Tolerance,
	}
}

// Name implements scheduler.Job.
func (j *ReconcileWalletsJob) Name() string {
	return "reconcile_wallets"
}

// Description implements scheduler.Job.
func (j *ReconcileWalletsJob) Description() string {
	return "Compares wallet balances against ledger credit sums and reports drift"
}

// Run implements scheduler.Job.
func (j *ReconcileWalletsJob) Run(ctx context.Context) error {
	ids, err := j.users.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("reconcile_wallets: list users: %w", err)
	}

	var checked, drifted int
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		drift, err := j.reconcileUser(ctx, id)
		if err != nil {
			j.logger.Warn("reconciliation skipped user", "user_id", id.String(), "error", err)
			continue
		}
		checked++
		if drift {
			drifted++
		}
	}

	j.logger.Info("reconciliation completed", "checked", checked, "drifted", drifted)

	if j.bus != nil {
		_ = j.bus.Publish(NewReconciliationCompletedEvent(checked, drifted))
	}
	return nil
}

// reconcileUser checks all currencies for one user. It takes the
// per-user lock for the read so the balance and the ledger sum come
// from a quiet moment, then releases without saving.
func (j *ReconcileWalletsJob) reconcileUser(ctx context.Context, id shared.UserID) (bool, error) {
	aggregate, err := j.users.Get(ctx, id)
	if err != nil {
		j.users.Release(id)
		return false, err
	}
	defer j.users.Release(id)

	account := ledger.UserAccount(id)
	var drifted bool
	for _, currency := range shared.AllCurrencies() {
		sum, err := j.ledger.SumByCreditAccount(ctx, account, currency)
		if err != nil {
			return false, fmt.Errorf("sum %s: %w", currency, err)
		}

		balance := aggregate.Balance(currency)
		if math.Abs(balance-sum) > j.tolerance {
			drifted = true
			j.logger.Warn("wallet drift detected",
				"user_id", id.String(),
				"currency", currency.String(),
				"wallet", balance,
				"ledger", sum,
			)
		}
	}
	return drifted, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENT
// ══════════════════════════════════════════════════════════════════════════════

// ReconciliationCompletedEvent reports one reconciliation sweep.
type ReconciliationCompletedEvent struct {
	shared.BaseEvent
	Checked int `json:"checked"`
	Drifted int `json:"drifted"`
}

// Payload implements the Event interface.
func (e ReconciliationCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"checked": e.Checked,
		"drifted": e.Drifted,
	}
}

// NewReconciliationCompletedEvent creates a new event.
func NewReconciliationCompletedEvent(checked, drifted int) ReconciliationCompletedEvent {
	return ReconciliationCompletedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventReconciliationCompleted, "system"),
		Checked:   checked,
		Drifted:   drifted,
	}
}
