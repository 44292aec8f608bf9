package eventhandler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeline/reward-engine/internal/domain/reward"
	"github.com/forgeline/reward-engine/internal/domain/shared"
)

type fakeSink struct {
	mu       sync.Mutex
	balances map[string]map[shared.Currency]float64
	err      error
}

func newFakeSink() *fakeSink {
	return &fakeSink{balances: make(map[string]map[shared.Currency]float64)}
}

func (s *fakeSink) Increment(ctx context.Context, userID string, currency shared.Currency, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.balances[userID]; !ok {
		s.balances[userID] = make(map[shared.Currency]float64)
	}
	s.balances[userID][currency] += amount
	return nil
}

func (s *fakeSink) balance(userID string, currency shared.Currency) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[userID][currency]
}

func TestWalletProjectionAppliesTransactions(t *testing.T) {
	sink := newFakeSink()
	projection := NewWalletProjection(sink, nil)

	tx := reward.NewTransactionRecordedEvent("u1", "e1", shared.XP(100), "ref")
	require.NoError(t, projection.HandleTransactionRecorded(tx))
	tx = reward.NewTransactionRecordedEvent("u1", "e2", shared.XP(50), "ref")
	require.NoError(t, projection.HandleTransactionRecorded(tx))
	tx = reward.NewTransactionRecordedEvent("u1", "e3", shared.Coins(250), "ref")
	require.NoError(t, projection.HandleTransactionRecorded(tx))

	assert.InDelta(t, 150, sink.balance("u1", shared.CurrencyXP), 1e-9)
	assert.InDelta(t, 250, sink.balance("u1", shared.CurrencyCoins), 1e-9)
}

func TestWalletProjectionSurfacesSinkErrors(t *testing.T) {
	sink := newFakeSink()
	sink.err = errors.New("cache down")
	projection := NewWalletProjection(sink, nil)

	tx := reward.NewTransactionRecordedEvent("u1", "e1", shared.XP(100), "ref")
	err := projection.HandleTransactionRecorded(tx)

	// The bus isolates this error; the projection just reports it.
	assert.Error(t, err)
}

func TestWalletProjectionIgnoresWrongEventTypes(t *testing.T) {
	sink := newFakeSink()
	projection := NewWalletProjection(sink, nil)

	activity, err := reward.NewActivity("u1", reward.KindCodeMerge, nil)
	require.NoError(t, err)

	assert.NoError(t, projection.HandleTransactionRecorded(reward.NewActivitySubmittedEvent(activity)))
	assert.Zero(t, sink.balance("u1", shared.CurrencyXP))
}
