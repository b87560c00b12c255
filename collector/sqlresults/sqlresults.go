// Package sqlresults stores test results in a SQL database. SQLite,
// PostgreSQL, and MySQL are supported. Each execution of a program is a run
// with a random identifier, so that a history of runs accumulates in one
// database.
package sqlresults

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/zephyrtronium/hslang"
)

// Store is a ResultCollector recording results into a database. It is safe
// for concurrent use.
type Store struct {
	db     *sql.DB
	driver string
	// Log receives errors from AddResult, which has no other way to report
	// them.
	Log zerolog.Logger

	mu  sync.Mutex
	run uuid.UUID
	seq int
	err error
}

// Run describes one recorded run.
type Run struct {
	ID       uuid.UUID
	Label    string
	Started  time.Time
	Finished time.Time // zero if the run never finished
	Passed   int
	Failed   int
}

// ErrNoRun is returned when results are added before StartRun.
var ErrNoRun = errors.New("no run started")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS hs_runs (
		id VARCHAR(36) PRIMARY KEY,
		label VARCHAR(255) NOT NULL,
		started BIGINT NOT NULL,
		finished BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS hs_results (
		run_id VARCHAR(36) NOT NULL,
		seq INTEGER NOT NULL,
		name VARCHAR(1024) NOT NULL,
		passed INTEGER NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,
}

// DriverName maps a configured driver to the database/sql driver name.
func DriverName(driver string) (string, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		return "sqlite", nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	}
	return "", fmt.Errorf("unsupported database type: %s", driver)
}

// Open connects to a database and prepares its tables.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	name, err := DriverName(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if name == "sqlite" {
		// SQLite allows one writer at a time.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	s, err := New(ctx, db, name)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New creates a store using an existing connection pool. driver is the
// database/sql driver name, used to select the query placeholder style.
func New(ctx context.Context, db *sql.DB, driver string) (*Store, error) {
	s := &Store{db: db, driver: driver, Log: zerolog.Nop()}
	for _, q := range schema {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}
	return s, nil
}

// rebind converts ? placeholders to the style of the store's driver.
func (s *Store) rebind(q string) string {
	if s.driver != "postgres" {
		return q
	}
	var b strings.Builder
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// StartRun begins a new run. Results added afterward belong to it.
func (s *Store) StartRun(ctx context.Context, label string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO hs_runs (id, label, started) VALUES (?, ?, ?)`), id.String(), label, time.Now().UnixNano())
	if err != nil {
		return uuid.Nil, fmt.Errorf("couldn't start run: %w", err)
	}
	s.mu.Lock()
	s.run, s.seq, s.err = id, 0, nil
	s.mu.Unlock()
	return id, nil
}

// FinishRun marks the current run finished and returns the first error that
// occurred while adding its results.
func (s *Store) FinishRun(ctx context.Context) error {
	s.mu.Lock()
	id, rerr := s.run, s.err
	s.run = uuid.Nil
	s.mu.Unlock()
	if id == uuid.Nil {
		return ErrNoRun
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`UPDATE hs_runs SET finished = ? WHERE id = ?`), time.Now().UnixNano(), id.String())
	if err != nil {
		return fmt.Errorf("couldn't finish run: %w", err)
	}
	return rerr
}

// AddResult records a result in the current run. Errors are logged and
// reported by Err and FinishRun.
func (s *Store) AddResult(name string, passed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == uuid.Nil {
		s.fail(ErrNoRun, name)
		return
	}
	s.seq++
	p := 0
	if passed {
		p = 1
	}
	_, err := s.db.Exec(s.rebind(`INSERT INTO hs_results (run_id, seq, name, passed) VALUES (?, ?, ?, ?)`), s.run.String(), s.seq, name, p)
	if err != nil {
		s.fail(err, name)
	}
}

// fail records an error from AddResult. s.mu must be held.
func (s *Store) fail(err error, name string) {
	s.Log.Error().Err(err).Str("test", name).Msg("couldn't record result")
	if s.err == nil {
		s.err = fmt.Errorf("couldn't record result of %q: %w", name, err)
	}
}

// Err returns the first error that occurred while adding results to the
// current run.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Results returns the results of a run in the order they were added.
func (s *Store) Results(ctx context.Context, run uuid.UUID) ([]hslang.Result, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT name, passed FROM hs_results WHERE run_id = ? ORDER BY seq`), run.String())
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()
	var r []hslang.Result
	for rows.Next() {
		var name string
		var passed int
		if err := rows.Scan(&name, &passed); err != nil {
			return nil, fmt.Errorf("couldn't read result: %w", err)
		}
		r = append(r, hslang.Result{Name: name, Passed: passed != 0})
	}
	return r, rows.Err()
}

// Runs returns up to limit runs, most recent first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT r.id, r.label, r.started, r.finished, COALESCE(SUM(res.passed), 0), COUNT(res.seq)
		FROM hs_runs r LEFT JOIN hs_results res ON res.run_id = r.id
		GROUP BY r.id, r.label, r.started, r.finished
		ORDER BY r.started DESC
		LIMIT ?`
	rows, err := s.db.QueryContext(ctx, s.rebind(q), limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		var (
			id       string
			run      Run
			started  int64
			finished sql.NullInt64
			total    int
		)
		if err := rows.Scan(&id, &run.Label, &started, &finished, &run.Passed, &total); err != nil {
			return nil, fmt.Errorf("couldn't read run: %w", err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("bad run id %q: %w", id, err)
		}
		run.Started = time.Unix(0, started)
		if finished.Valid {
			run.Finished = time.Unix(0, finished.Int64)
		}
		run.Failed = total - run.Passed
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
