package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists ledger and allocation history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS contributions (
			id        TEXT PRIMARY KEY,
			timestamp INTEGER NOT NULL,
			student   TEXT NOT NULL,
			kind      TEXT,
			amount    REAL,
			credits   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contrib_student ON contributions(student, timestamp)`,

		`CREATE TABLE IF NOT EXISTS redemptions (
			id        TEXT PRIMARY KEY,
			timestamp INTEGER NOT NULL,
			student   TEXT NOT NULL,
			reward    TEXT,
			cost      REAL,
			result    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_redeem_student ON redemptions(student, timestamp)`,

		`CREATE TABLE IF NOT EXISTS spins (
			id        TEXT PRIMARY KEY,
			timestamp INTEGER NOT NULL,
			student   TEXT NOT NULL,
			prize     TEXT,
			cost      REAL,
			result    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_spin_student ON spins(student, timestamp)`,

		`CREATE TABLE IF NOT EXISTS allocation_runs (
			id        TEXT PRIMARY KEY,
			timestamp INTEGER NOT NULL,
			seq       INTEGER,
			target    REAL,
			events    TEXT,
			counts    TEXT,
			remaining REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alloc_ts ON allocation_runs(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordContribution(evt *ContributionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO contributions
		(id, timestamp, student, kind, amount, credits)
		VALUES (?,?,?,?,?,?)`,
		uuid.NewString(), time.Now().UnixMilli(), evt.Student, evt.Kind, evt.Amount, evt.Credits,
	)
	return err
}

func (r *SQLiteRecorder) RecordRedemption(evt *RedemptionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO redemptions
		(id, timestamp, student, reward, cost, result)
		VALUES (?,?,?,?,?,?)`,
		uuid.NewString(), time.Now().UnixMilli(), evt.Student, evt.Reward, evt.Cost, evt.Result,
	)
	return err
}

func (r *SQLiteRecorder) RecordSpin(evt *SpinEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO spins
		(id, timestamp, student, prize, cost, result)
		VALUES (?,?,?,?,?,?)`,
		uuid.NewString(), time.Now().UnixMilli(), evt.Student, evt.Prize, evt.Cost, evt.Result,
	)
	return err
}

func (r *SQLiteRecorder) RecordAllocation(evt *AllocationEvent) error {
	events, err := json.Marshal(evt.Events)
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}
	counts, err := json.Marshal(evt.Counts)
	if err != nil {
		return fmt.Errorf("marshal counts: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.Exec(`INSERT INTO allocation_runs
		(id, timestamp, seq, target, events, counts, remaining)
		VALUES (?,?,?,?,?,?,?)`,
		uuid.NewString(), time.Now().UnixMilli(), evt.Seq, evt.Target,
		string(events), string(counts), evt.Remaining,
	)
	return err
}

// StudentHistory returns the most recent activity of a student, newest first.
func (r *SQLiteRecorder) StudentHistory(student string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`
		SELECT id, timestamp, 'CONTRIBUTION', kind || ' ' || printf('%.2f', amount), credits
			FROM contributions WHERE student = ?
		UNION ALL
		SELECT id, timestamp, 'REDEMPTION', reward || ' ' || result,
			CASE WHEN result = 'OK' THEN -cost ELSE 0 END
			FROM redemptions WHERE student = ?
		UNION ALL
		SELECT id, timestamp, 'SPIN', COALESCE(prize, '') || ' ' || result,
			CASE WHEN result = 'OK' THEN -cost ELSE 0 END
			FROM spins WHERE student = ?
		ORDER BY 2 DESC
		LIMIT ?`,
		student, student, student, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var (
			e  HistoryEntry
			ts int64
		)
		if err := rows.Scan(&e.ID, &ts, &e.Kind, &e.Detail, &e.Credits); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
