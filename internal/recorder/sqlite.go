package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"RuleBadge/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
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
		`CREATE TABLE IF NOT EXISTS runs (
			id             TEXT PRIMARY KEY,
			timestamp      INTEGER NOT NULL,
			count          INTEGER NOT NULL,
			previous_count INTEGER,
			appended       INTEGER NOT NULL,
			history_len    INTEGER NOT NULL,
			chart_rendered INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS list_counts (
			run_id TEXT NOT NULL REFERENCES runs(id),
			name   TEXT NOT NULL,
			count  INTEGER NOT NULL,
			PRIMARY KEY (run_id, name)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores one run and its list counts in a single transaction.
func (r *SQLiteRecorder) RecordRun(res *model.RunResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	runAt := res.RunAt
	if runAt.IsZero() {
		runAt = time.Now()
	}
	var prev sql.NullInt64
	if res.Previous != nil {
		prev = sql.NullInt64{Int64: int64(res.Previous.Count), Valid: true}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	if _, err := tx.Exec(`INSERT INTO runs
		(id, timestamp, count, previous_count, appended, history_len, chart_rendered)
		VALUES (?,?,?,?,?,?,?)`,
		id, runAt.Unix(), res.Count, prev, res.Appended, res.HistoryLen, res.ChartRendered,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	names := make([]string, 0, len(res.ListCounts))
	for name := range res.ListCounts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := tx.Exec(`INSERT INTO list_counts (run_id, name, count) VALUES (?,?,?)`,
			id, name, res.ListCounts[name]); err != nil {
			return fmt.Errorf("insert list count: %w", err)
		}
	}
	return tx.Commit()
}

// LastRun returns the count and time of the most recent recorded run.
func (r *SQLiteRecorder) LastRun() (count int, at time.Time, ok bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ts int64
	err = r.db.QueryRow(`SELECT count, timestamp FROM runs ORDER BY timestamp DESC, rowid DESC LIMIT 1`).Scan(&count, &ts)
	if err == sql.ErrNoRows {
		return 0, time.Time{}, false, nil
	}
	if err != nil {
		return 0, time.Time{}, false, err
	}
	return count, time.Unix(ts, 0), true, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
