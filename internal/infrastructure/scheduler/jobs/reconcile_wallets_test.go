package jobs

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeline/reward-engine/internal/domain/ledger"
	"github.com/forgeline/reward-engine/internal/domain/shared"
	"github.com/forgeline/reward-engine/internal/domain/user"
	"github.com/forgeline/reward-engine/internal/infrastructure/persistence/memory"
)

type capturingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *capturingPublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) completions() []ReconciliationCompletedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []ReconciliationCompletedEvent
	for _, e := range p.events {
		if c, ok := e.(ReconciliationCompletedEvent); ok {
			out = append(out, c)
		}
	}
	return out
}

// seedUser stores an aggregate and appends matching ledger entries so the
// wallet and the ledger agree.
func seedUser(t *testing.T, users *memory.UserStore, entries *memory.LedgerStore, id shared.UserID, amounts ...shared.Money) {
	t.Helper()
	ctx := context.Background()

	a, err := user.New(id)
	require.NoError(t, err)
	for _, m := range amounts {
		require.NoError(t, a.Deposit(m))
		e, err := ledger.NewEntry(ledger.SystemMint, ledger.UserAccount(id), m, "seed")
		require.NoError(t, err)
		require.NoError(t, entries.Append(ctx, e))
	}

	_, err = users.Get(ctx, id)
	require.True(t, shared.IsNotFound(err))
	require.NoError(t, users.Save(ctx, a))
}

func TestReconcileCleanWallets(t *testing.T) {
	users := memory.NewUserStore()
	entries := memory.NewLedgerStore()
	pub := &capturingPublisher{}

	seedUser(t, users, entries, "u1", shared.XP(100), shared.Coins(250))
	seedUser(t, users, entries, "u2", shared.Karma(30))

	job := NewReconcileWalletsJob(users, entries, pub, nil, DefaultReconcileWalletsConfig())
	require.NoError(t, job.Run(context.Background()))

	completions := pub.completions()
	require.Len(t, completions, 1)
	assert.Equal(t, 2, completions[0].Checked)
	assert.Zero(t, completions[0].Drifted)
}

func TestReconcileDetectsDrift(t *testing.T) {
	users := memory.NewUserStore()
	entries := memory.NewLedgerStore()
	pub := &capturingPublisher{}
	ctx := context.Background()

	seedUser(t, users, entries, "u1", shared.XP(100))

	// Ledger entry with no matching wallet deposit: the projection is
	// now behind the record.
	extra, err := ledger.NewEntry(ledger.SystemMint, ledger.UserAccount("u1"), shared.Coins(50), "orphan")
	require.NoError(t, err)
	require.NoError(t, entries.Append(ctx, extra))

	job := NewReconcileWalletsJob(users, entries, pub, nil, DefaultReconcileWalletsConfig())
	require.NoError(t, job.Run(ctx))

	completions := pub.completions()
	require.Len(t, completions, 1)
	assert.Equal(t, 1, completions[0].Checked)
	assert.Equal(t, 1, completions[0].Drifted)
}

func TestReconcileNeverRewritesWallets(t *testing.T) {
	users := memory.NewUserStore()
	entries := memory.NewLedgerStore()
	ctx := context.Background()

	seedUser(t, users, entries, "u1", shared.XP(100))
	extra, err := ledger.NewEntry(ledger.SystemMint, ledger.UserAccount("u1"), shared.XP(999), "orphan")
	require.NoError(t, err)
	require.NoError(t, entries.Append(ctx, extra))

	job := NewReconcileWalletsJob(users, entries, nil, nil, DefaultReconcileWalletsConfig())
	require.NoError(t, job.Run(ctx))

	snap, ok := users.Snapshot("u1")
	require.True(t, ok)
	assert.InDelta(t, 100, snap.Balance(shared.CurrencyXP), 1e-9, "drift is reported, not repaired")
}

func TestReconcileReleasesLocks(t *testing.T) {
	users := memory.NewUserStore()
	entries := memory.NewLedgerStore()
	ctx := context.Background()

	seedUser(t, users, entries, "u1", shared.XP(10))

	job := NewReconcileWalletsJob(users, entries, nil, nil, DefaultReconcileWalletsConfig())
	require.NoError(t, job.Run(ctx))
	require.NoError(t, job.Run(ctx), "a second sweep must not deadlock on held locks")

	// The per-user lock is free afterwards.
	_, err := users.Get(ctx, "u1")
	require.NoError(t, err)
	users.Release("u1")
}

func TestReconcileEmptyStore(t *testing.T) {
	pub := &capturingPublisher{}
	job := NewReconcileWalletsJob(memory.NewUserStore(), memory.NewLedgerStore(), pub, nil, DefaultReconcileWalletsConfig())

	require.NoError(t, job.Run(context.Background()))

	completions := pub.completions()
	require.Len(t, completions, 1)
	assert.Zero(t, completions[0].Checked)
}
