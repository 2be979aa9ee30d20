// Package sqlite is the persistence collaborator: drafts, committed orders,
// the product catalog and the append-only audit trail, all in one database.
//
// WAL mode is enabled on Open so readers never block the writer. The pool
// is capped at a single connection because SQLite performs best with one
// writer, and a single connection also makes the compare-and-delete commit
// in submit.go trivially serialised.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Register the pure-Go SQLite driver; no CGO, builds anywhere.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS drafts (
    -- Draft id, stable across edits.
    id          TEXT PRIMARY KEY,

    owner_id    TEXT    NOT NULL,
    name        TEXT    NOT NULL,

    -- Line items as a JSON object {sku: quantity}. Quantities are >= 1;
    -- zero-quantity entries are removed before the row is written.
    items       TEXT    NOT NULL DEFAULT '{}',

    -- Optimistic-concurrency counter, incremented on every mutation.
    version     INTEGER NOT NULL DEFAULT 0,

    -- RFC3339 stored as TEXT (SQLite idiom).
    created_at  TEXT    NOT NULL,
    updated_at  TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_drafts_owner ON drafts(owner_id, created_at);

CREATE TABLE IF NOT EXISTS orders (
    id              TEXT PRIMARY KEY,

    -- The draft this order was committed from, for audit trace-back.
    draft_id        TEXT    NOT NULL,

    owner_id        TEXT    NOT NULL,
    name            TEXT    NOT NULL,

    -- Snapshot of the draft's items at submission time.
    items           TEXT    NOT NULL,

    total_cents     INTEGER NOT NULL DEFAULT 0,
    total_units     INTEGER NOT NULL DEFAULT 0,
    status          TEXT    NOT NULL,

    -- Correlation id of the submitting request.
    correlation_id  TEXT    NOT NULL DEFAULT '',

    submitted_at    TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_owner ON orders(owner_id, submitted_at);

CREATE TABLE IF NOT EXISTS products (
    sku              TEXT PRIMARY KEY,
    product_name     TEXT    NOT NULL DEFAULT '',
    available        INTEGER NOT NULL DEFAULT 0,
    unit_price_cents INTEGER NOT NULL DEFAULT 0,
    active           INTEGER NOT NULL DEFAULT 1,
    updated_at       TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    correlation_id  TEXT NOT NULL DEFAULT '',
    actor_id        TEXT NOT NULL DEFAULT '',
    entity_kind     TEXT NOT NULL,
    entity_id       TEXT NOT NULL,
    operation       TEXT NOT NULL,
    before_summary  TEXT NOT NULL DEFAULT '',
    after_summary   TEXT NOT NULL DEFAULT '',
    trace_id        TEXT NOT NULL DEFAULT '',
    span_id         TEXT NOT NULL DEFAULT '',
    created_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_logs(entity_kind, entity_id, created_at);
CREATE INDEX IF NOT EXISTS idx_audit_correlation ON audit_logs(correlation_id);
`

// Store implements the draft, order, catalog and audit ports over a single
// SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	// busy_timeout waits for locks instead of failing immediately;
	// foreign_keys is on for integrity.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (s *Store) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.999999999Z")
}

// parseTime parses the timestamp strings stored in SQLite. There is no
// native datetime type; we store RFC3339 TEXT.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}

// begin starts a transaction on the single writer connection.
func (s *Store) begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	return tx, nil
}
