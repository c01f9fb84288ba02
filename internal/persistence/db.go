// Package persistence provides the SQLite journal: domain events, each
// agent's chosen goal per tick, periodic needs snapshots and run metadata.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/needsim/internal/agents"
	"github.com/talgya/needsim/internal/events"
	"github.com/talgya/needsim/internal/needs"
)

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// EventRow is a journaled domain event.
type EventRow struct {
	ID      int64   `db:"id"`
	Tick    uint64  `db:"tick"`
	Kind    string  `db:"kind"`
	AgentID uint64  `db:"agent_id"`
	Need    string  `db:"need"`
	Value   float64 `db:"value"`
	Cause   string  `db:"cause"`
	Payload string  `db:"payload"`
	At      int64   `db:"at"` // unix millis
}

// Decision is the goal an agent committed to on a tick.
type Decision struct {
	Tick     uint64  `db:"tick"`
	AgentID  uint64  `db:"agent_id"`
	GoalID   string  `db:"goal_id"`
	GoalType string  `db:"goal_type"`
	Tier     string  `db:"tier"`
	Domain   string  `db:"domain"`
	Priority float64 `db:"priority"`
	Score    float64 `db:"score"`
	Options  int     `db:"options"` // candidates considered
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		kind TEXT NOT NULL,
		agent_id INTEGER NOT NULL,
		need TEXT NOT NULL,
		value REAL NOT NULL,
		cause TEXT NOT NULL,
		payload TEXT NOT NULL,
		at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		agent_id INTEGER NOT NULL,
		goal_id TEXT NOT NULL,
		goal_type TEXT NOT NULL,
		tier TEXT NOT NULL,
		domain TEXT NOT NULL,
		priority REAL NOT NULL,
		score REAL NOT NULL,
		options INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS needs (
		agent_id INTEGER PRIMARY KEY,
		tick INTEGER NOT NULL,
		needs_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
	CREATE INDEX IF NOT EXISTS idx_decisions_agent ON decisions(agent_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveEvents appends events observed on tick.
func (db *DB) SaveEvents(tick uint64, evs []events.Event) error {
	if len(evs) == 0 {
		return nil
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO events
		(tick, kind, agent_id, need, value, cause, payload, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range evs {
		payload, err := eventPayload(e)
		if err != nil {
			return fmt.Errorf("encode %s event: %w", e.Kind, err)
		}
		if _, err := stmt.Exec(tick, string(e.Kind), e.AgentID, e.Need, e.Value, e.Cause, payload, e.Timestamp.UnixMilli()); err != nil {
			return fmt.Errorf("insert %s event: %w", e.Kind, err)
		}
	}
	return tx.Commit()
}

func eventPayload(e events.Event) (string, error) {
	var body any
	switch {
	case e.Snapshot != nil:
		body = e.Snapshot
	case e.Config != nil:
		body = e.Config
	default:
		return "{}", nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SaveDecisions appends audit rows.
func (db *DB) SaveDecisions(ds []Decision) error {
	if len(ds) == 0 {
		return nil
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, d := range ds {
		_, err := tx.NamedExec(`INSERT INTO decisions
			(tick, agent_id, goal_id, goal_type, tier, domain, priority, score, options)
			VALUES (:tick, :agent_id, :goal_id, :goal_type, :tier, :domain, :priority, :score, :options)`, d)
		if err != nil {
			return fmt.Errorf("insert decision for agent %d: %w", d.AgentID, err)
		}
	}
	return tx.Commit()
}

// SaveNeeds replaces the needs snapshot.
func (db *DB) SaveNeeds(tick uint64, snap map[agents.AgentID]needs.EntityNeeds) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM needs"); err != nil {
		return err
	}
	for id, n := range snap {
		data, _ := json.Marshal(n)
		if _, err := tx.Exec("INSERT INTO needs (agent_id, tick, needs_json) VALUES (?, ?, ?)", id, tick, string(data)); err != nil {
			return fmt.Errorf("insert needs %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// LoadNeeds reads the last snapshot.
func (db *DB) LoadNeeds() (map[agents.AgentID]needs.EntityNeeds, error) {
	var rows []struct {
		AgentID uint64 `db:"agent_id"`
		JSON    string `db:"needs_json"`
	}
	if err := db.conn.Select(&rows, "SELECT agent_id, needs_json FROM needs"); err != nil {
		return nil, err
	}
	out := make(map[agents.AgentID]needs.EntityNeeds, len(rows))
	for _, r := range rows {
		var n needs.EntityNeeds
		if err := json.Unmarshal([]byte(r.JSON), &n); err != nil {
			return nil, fmt.Errorf("decode needs %d: %w", r.AgentID, err)
		}
		out[agents.AgentID(r.AgentID)] = n
	}
	return out, nil
}

// SaveMeta stores a key-value pair in run metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// LastTick returns the last flushed tick, or false for a fresh journal.
func (db *DB) LastTick() (uint64, bool, error) {
	v, err := db.GetMeta("last_tick")
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	t, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("last_tick %q: %w", v, err)
	}
	return t, true, nil
}

// Flush writes one tick's worth of journal entries in the order the
// simulation produced them, then records the tick.
func (db *DB) Flush(tick uint64, evs []events.Event, ds []Decision) error {
	start := time.Now()
	if err := db.SaveEvents(tick, evs); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveDecisions(ds); err != nil {
		return fmt.Errorf("save decisions: %w", err)
	}
	if err := db.SaveMeta("last_tick", strconv.FormatUint(tick, 10)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	slog.Debug("journal flushed", "tick", tick, "events", len(evs), "decisions", len(ds), "took", time.Since(start))
	return nil
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]EventRow, error) {
	var rows []EventRow
	err := db.conn.Select(&rows,
		"SELECT id, tick, kind, agent_id, need, value, cause, payload, at FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return rows, err
}

// CountEvents returns how many events of kind were journaled.
func (db *DB) CountEvents(kind events.Kind) (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM events WHERE kind = ?", string(kind))
	return n, err
}

// Decisions returns an agent's most recent decisions, newest first.
func (db *DB) Decisions(id agents.AgentID, limit int) ([]Decision, error) {
	var out []Decision
	err := db.conn.Select(&out,
		`SELECT tick, agent_id, goal_id, goal_type, tier, domain, priority, score, options
		FROM decisions WHERE agent_id = ? ORDER BY id DESC LIMIT ?`,
		uint64(id), limit,
	)
	return out, err
}

// GoalTypeCounts tallies committed goal types across the journal.
func (db *DB) GoalTypeCounts() (map[string]int, error) {
	var rows []struct {
		GoalType string `db:"goal_type"`
		N        int    `db:"n"`
	}
	if err := db.conn.Select(&rows, "SELECT goal_type, COUNT(*) AS n FROM decisions GROUP BY goal_type"); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.GoalType] = r.N
	}
	return out, nil
}
