package postgres

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/forgeline/reward-engine/internal/domain/shared"
	"github.com/forgeline/reward-engine/internal/domain/user"
	"github.com/forgeline/reward-engine/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository is a PostgreSQL user.Store. Per-user mutual exclusion
// is enforced in process with a keyed mutex, same contract as the
// in-memory store: Get acquires, Save and Release free. The database
// write itself is last-writer-wins.
type UserRepository struct {
	conn *Connection

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{
		conn:  conn,
		locks: make(map[string]*sync.Mutex),
	}
}

func (r *UserRepository) lockFor(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}
	return l
}

// Get acquires the per-user lock and loads the aggregate with its
// wallet and badges. Returns ErrNotFound with the lock still held for
// an unknown user, so the caller can create and Save under the lock.
func (r *UserRepository) Get(ctx context.Context, id shared.UserID) (*user.Aggregate, error) {
	r.lockFor(id.String()).Lock()

	aggregate, err := retry.DoWithData(ctx, func(ctx context.Context) (*user.Aggregate, error) {
		a, loadErr := r.load(ctx, id)
		if loadErr != nil && !shared.IsNotFound(loadErr) {
			return nil, retry.Retryable(loadErr)
		}
		return a, loadErr
	})
	if err != nil {
		return nil, err
	}
	return aggregate, nil
}

func (r *UserRepository) load(ctx context.Context, id shared.UserID) (*user.Aggregate, error) {
	const query = `
		SELECT id, display_name, level, streak_days, last_activity_at, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	aggregate := &user.Aggregate{
		Wallet: make(map[shared.Currency]float64),
		Badges: make(map[user.BadgeID]time.Time),
	}
	var (
		rawID          string
		level          int
		lastActivityAt *time.Time
	)
	err := r.conn.QueryRow(ctx, query, id.String()).Scan(
		&rawID,
		&aggregate.DisplayName,
		&level,
		&aggregate.StreakDays,
		&lastActivityAt,
		&aggregate.CreatedAt,
		&aggregate.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("user", "Get", shared.ErrUserNotFound, "user not found")
		}
		return nil, shared.WrapError("user", "Get", shared.ErrStoreUnavailable, "query user", err)
	}

	aggregate.ID = shared.UserID(rawID)
	aggregate.Level = shared.Level(level)
	if lastActivityAt != nil {
		aggregate.LastActivityAt = *lastActivityAt
	}

	if err := r.loadWallet(ctx, aggregate); err != nil {
		return nil, err
	}
	if err := r.loadBadges(ctx, aggregate); err != nil {
		return nil, err
	}
	return aggregate, nil
}

func (r *UserRepository) loadWallet(ctx context.Context, aggregate *user.Aggregate) error {
	const query = `SELECT currency, balance FROM wallets WHERE user_id = $1`

	rows, err := r.conn.Query(ctx, query, aggregate.ID.String())
	if err != nil {
		return shared.WrapError("user", "Get", shared.ErrStoreUnavailable, "query wallet", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			currency string
			balance  float64
		)
		if err := rows.Scan(&currency, &balance); err != nil {
			return shared.WrapError("user", "Get", shared.ErrStoreUnavailable, "scan wallet row", err)
		}
		aggregate.Wallet[shared.Currency(currency)] = balance
	}
	return rows.Err()
}

func (r *UserRepository) loadBadges(ctx context.Context, aggregate *user.Aggregate) error {
	const query = `SELECT badge_id, earned_at FROM badges WHERE user_id = $1`

	rows, err := r.conn.Query(ctx, query, aggregate.ID.String())
	if err != nil {
		return shared.WrapError("user", "Get", shared.ErrStoreUnavailable, "query badges", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			badgeID  string
			earnedAt time.Time
		)
		if err := rows.Scan(&badgeID, &earnedAt); err != nil {
			return shared.WrapError("user", "Get", shared.ErrStoreUnavailable, "scan badge row", err)
		}
		aggregate.Badges[user.BadgeID(badgeID)] = earnedAt
	}
	return rows.Err()
}

// Save upserts the aggregate, wallet, and badges in one transaction and
// releases the per-user lock.
func (r *UserRepository) Save(ctx context.Context, aggregate *user.Aggregate) error {
	defer r.lockFor(aggregate.ID.String()).Unlock()

	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		const upsertUser = `
			INSERT INTO users (id, display_name, level, streak_days, last_activity_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			ON CONFLICT (id) DO UPDATE SET
				display_name = EXCLUDED.display_name,
				level = EXCLUDED.level,
				streak_days = EXCLUDED.streak_days,
				last_activity_at = EXCLUDED.last_activity_at,
				updated_at = NOW()
		`
		var lastActivityAt *time.Time
		if !aggregate.LastActivityAt.IsZero() {
			t := aggregate.LastActivityAt
			lastActivityAt = &t
		}
		if _, err := tx.Exec(ctx, upsertUser,
			aggregate.ID.String(),
			aggregate.DisplayName,
			aggregate.Level.Int(),
			aggregate.StreakDays,
			lastActivityAt,
			aggregate.CreatedAt,
		); err != nil {
			return err
		}

		const upsertWallet = `
			INSERT INTO wallets (user_id, currency, balance)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, currency) DO UPDATE SET balance = EXCLUDED.balance
		`
		for currency, balance := range aggregate.Wallet {
			if _, err := tx.Exec(ctx, upsertWallet, aggregate.ID.String(), currency.String(), balance); err != nil {
				return err
			}
		}

		const insertBadge = `
			INSERT INTO badges (user_id, badge_id, earned_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, badge_id) DO NOTHING
		`
		for badgeID, earnedAt := range aggregate.Badges {
			if _, err := tx.Exec(ctx, insertBadge, aggregate.ID.String(), string(badgeID), earnedAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return shared.WrapError("user", "Save", shared.ErrStoreUnavailable, "save aggregate", err)
	}
	return nil
}

// Release frees the per-user lock without saving. Used on abort paths.
func (r *UserRepository) Release(id shared.UserID) {
	r.lockFor(id.String()).Unlock()
}

// ListIDs returns the ids of every stored user, for reconciliation.
func (r *UserRepository) ListIDs(ctx context.Context) ([]shared.UserID, error) {
	return retry.DoWithData(ctx, func(ctx context.Context) ([]shared.UserID, error) {
		rows, err := r.conn.Query(ctx, `SELECT id FROM users ORDER BY id`)
		if err != nil {
			return nil, retry.Retryable(shared.WrapError("user", "ListIDs", shared.ErrStoreUnavailable, "query ids", err))
		}
		defer rows.Close()

		var ids []shared.UserID
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return nil, shared.WrapError("user", "ListIDs", shared.ErrStoreUnavailable, "scan id", err)
			}
			ids = append(ids, shared.UserID(id))
		}
		return ids, rows.Err()
	})
}
