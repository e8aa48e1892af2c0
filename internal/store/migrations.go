package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
//
// Timestamps are TEXT in model.TimestampLayout so they round-trip as the
// strings the hosted backend returns.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	id         TEXT PRIMARY KEY,
	member_id  TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	amount     REAL NOT NULL DEFAULT 0,
	due_date   TEXT,
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transaction_notifications (
	id             TEXT PRIMARY KEY,
	transaction_id TEXT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
	category       TEXT NOT NULL,
	title          TEXT NOT NULL,
	body           TEXT NOT NULL DEFAULT '',
	payload        TEXT,
	is_read        INTEGER NOT NULL DEFAULT 0 CHECK(is_read IN (0, 1)),
	created_at     TEXT NOT NULL,
	updated_at     TEXT
);

CREATE TABLE IF NOT EXISTS global_notifications (
	id         TEXT PRIMARY KEY,
	category   TEXT,
	title      TEXT NOT NULL,
	body       TEXT NOT NULL DEFAULT '',
	payload    TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT
);

CREATE TABLE IF NOT EXISTS global_notification_read_status (
	id                     TEXT PRIMARY KEY,
	global_notification_id TEXT NOT NULL REFERENCES global_notifications(id) ON DELETE CASCADE,
	member_id              TEXT NOT NULL,
	is_read                INTEGER NOT NULL DEFAULT 0 CHECK(is_read IN (0, 1)),
	created_at             TEXT NOT NULL,
	updated_at             TEXT,
	UNIQUE(global_notification_id, member_id)
);

CREATE INDEX IF NOT EXISTS idx_transactions_member_id ON transactions(member_id);
CREATE INDEX IF NOT EXISTS idx_txn_notifications_transaction_id ON transaction_notifications(transaction_id);
CREATE INDEX IF NOT EXISTS idx_txn_notifications_created ON transaction_notifications(created_at);
CREATE INDEX IF NOT EXISTS idx_global_notifications_created ON global_notifications(created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_txn_notifications_category
	ON transaction_notifications(category, created_at);

CREATE INDEX IF NOT EXISTS idx_txn_notifications_unread
	ON transaction_notifications(is_read);

CREATE INDEX IF NOT EXISTS idx_read_status_member
	ON global_notification_read_status(member_id, is_read);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
