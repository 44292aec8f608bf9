package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE USERS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- User aggregates. Wallet balances and badges live in child tables so
-- currencies and badges can grow without schema changes.

CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    display_name TEXT NOT NULL DEFAULT '',
    level INTEGER NOT NULL DEFAULT 1,
    streak_days INTEGER NOT NULL DEFAULT 0,
    last_activity_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_level CHECK (level >= 1),
    CONSTRAINT valid_streak CHECK (streak_days >= 0)
);

CREATE TABLE IF NOT EXISTS wallets (
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    currency TEXT NOT NULL,
    balance DOUBLE PRECISION NOT NULL DEFAULT 0,

    PRIMARY KEY (user_id, currency),
    CONSTRAINT valid_currency CHECK (currency IN ('xp', 'coins', 'karma')),
    CONSTRAINT non_negative_balance CHECK (balance >= 0)
);

CREATE TABLE IF NOT EXISTS badges (
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    badge_id TEXT NOT NULL,
    earned_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (user_id, badge_id)
);

CREATE INDEX IF NOT EXISTS idx_badges_user ON badges(user_id);
`

const migration001Down = `
DROP TABLE IF EXISTS badges;
DROP TABLE IF EXISTS wallets;
DROP TABLE IF EXISTS users;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE LEDGER
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Append-only ledger. Rows are inserted and never updated or deleted;
-- wallet balances are a projection reconciled against credit sums.

CREATE TABLE IF NOT EXISTS ledger_entries (
    id UUID PRIMARY KEY,
    debit_account TEXT NOT NULL,
    credit_account TEXT NOT NULL,
    amount DOUBLE PRECISION NOT NULL,
    currency TEXT NOT NULL,
    reference_id TEXT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT positive_amount CHECK (amount > 0),
    CONSTRAINT valid_entry_currency CHECK (currency IN ('xp', 'coins', 'karma'))
);

CREATE INDEX IF NOT EXISTS idx_ledger_credit_currency ON ledger_entries(credit_account, currency);
CREATE INDEX IF NOT EXISTS idx_ledger_reference ON ledger_entries(reference_id);
CREATE INDEX IF NOT EXISTS idx_ledger_created_at ON ledger_entries(created_at DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS ledger_entries;
`

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_users",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_ledger",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
	}
}
