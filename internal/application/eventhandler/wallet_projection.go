package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"github.com/forgeline/reward-engine/internal/domain/reward"
	"github.com/forgeline/reward-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// WALLET PROJECTION
// ══════════════════════════════════════════════════════════════════════════════

// WalletSink receives balance increments for the read-side projection.
type WalletSink interface {
	Increment(ctx context.Context, userID string, currency shared.Currency, amount float64) error
}

// WalletProjection mirrors settled transactions into a hot balance
// cache. Best effort: a sink failure is returned to the bus, which
// logs and isolates it; settlement is never affected.
type WalletProjection struct {
	sink    WalletSink
	logger  *slog.Logger
	timeout time.Duration
}

// NewWalletProjection creates a new WalletProjection.
func NewWalletProjection(sink WalletSink, logger *slog.Logger) *WalletProjection {
	if logger == nil {
		logger = slog.Default()
	}
	return &WalletProjection{
		sink:    sink,
		logger:  logger.With("handler", "wallet_projection"),
		timeout: 2 * time.Second,
	}
}

// Register subscribes the projection on the bus.
func (p *WalletProjection) Register(bus shared.EventSubscriber) error {
	return bus.Subscribe(shared.EventTransactionRecorded, p.HandleTransactionRecorded)
}

// HandleTransactionRecorded applies one settled transaction to the
// cache. Implements shared.EventHandler.
func (p *WalletProjection) HandleTransactionRecorded(event shared.Event) error {
	tx, ok := event.(reward.TransactionRecordedEvent)
	if !ok {
		p.logger.Warn("received non-TransactionRecordedEvent", "event_type", event.EventType())
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.sink.Increment(ctx, tx.UserID, shared.Currency(tx.Currency), tx.Amount); err != nil {
		p.logger.Warn("wallet projection write failed",
			"user_id", tx.UserID,
			"currency", tx.Currency,
			"error", err,
		)
		return err
	}
	return nil
}
