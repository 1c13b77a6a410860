package replay

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ResultStore persists run records and their trades.
type ResultStore struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

func NewResultStore(root string) (*ResultStore, error) {
	if root == "" {
		return nil, fmt.Errorf("result store root cannot be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(root, "runs.db")
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := ensureResultSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &ResultStore{db: db, path: path}, nil
}

func (s *ResultStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func ensureResultSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS replay_runs (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			timeframe TEXT NOT NULL,
			status TEXT NOT NULL,
			start_ts INTEGER,
			end_ts INTEGER,
			seed INTEGER,
			initial_equity REAL,
			message TEXT,
			chart_path TEXT,
			request_json TEXT,
			stats_json TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS replay_trades (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES replay_runs(id) ON DELETE CASCADE,
			entry_ts INTEGER,
			exit_ts INTEGER,
			entry_price REAL,
			exit_price REAL,
			quantity REAL,
			profit REAL,
			reason TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_replay_trades_run ON replay_trades(run_id);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init result schema failed: %w", err)
		}
	}
	return nil
}

// SaveRun inserts or replaces the run record.
func (s *ResultStore) SaveRun(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("result store closed")
	}
	reqJSON, err := json.Marshal(run.Request)
	if err != nil {
		return err
	}
	statsJSON, err := json.Marshal(run.Stats)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO replay_runs
			(id, symbol, timeframe, status, start_ts, end_ts, seed, initial_equity,
			 message, chart_path, request_json, stats_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status=excluded.status,
			message=excluded.message,
			chart_path=excluded.chart_path,
			stats_json=excluded.stats_json,
			updated_at=excluded.updated_at`,
		run.ID, run.Symbol, run.Timeframe, run.Status, run.StartTS, run.EndTS,
		int64(run.Seed), run.InitialEquity, run.Message, run.ChartPath,
		string(reqJSON), string(statsJSON),
		run.CreatedAt.UnixMilli(), time.Now().UnixMilli())
	return err
}

// InsertTrades appends booked trades for the run.
func (s *ResultStore) InsertTrades(ctx context.Context, trades []Trade) error {
	if len(trades) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("result store closed")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO replay_trades (run_id, entry_ts, exit_ts, entry_price, exit_price, quantity, profit, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, t := range trades {
		if _, err := stmt.ExecContext(ctx, t.RunID, t.EntryTS, t.ExitTS, t.EntryPrice, t.ExitPrice, t.Quantity, t.Profit, t.Reason); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// GetRun loads one run by id.
func (s *ResultStore) GetRun(ctx context.Context, id string) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return Run{}, fmt.Errorf("result store closed")
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, symbol, timeframe, status, start_ts, end_ts, seed, initial_equity,
		       message, chart_path, request_json, stats_json, created_at, updated_at
		FROM replay_runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns the most recent runs, newest first.
func (s *ResultStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("result store closed")
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, symbol, timeframe, status, start_ts, end_ts, seed, initial_equity,
		       message, chart_path, request_json, stats_json, created_at, updated_at
		FROM replay_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// Trades returns the booked trades of one run, oldest first.
func (s *ResultStore) Trades(ctx context.Context, runID string) ([]Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("result store closed")
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, entry_ts, exit_ts, entry_price, exit_price, quantity, profit, reason
		FROM replay_trades WHERE run_id = ? ORDER BY entry_ts`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Trade
	for rows.Next() {
		var t Trade
		if err := rows.Scan(&t.RunID, &t.EntryTS, &t.ExitTS, &t.EntryPrice, &t.ExitPrice, &t.Quantity, &t.Profit, &t.Reason); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var seed int64
	var reqJSON, statsJSON string
	var createdAt, updatedAt int64
	err := row.Scan(&run.ID, &run.Symbol, &run.Timeframe, &run.Status,
		&run.StartTS, &run.EndTS, &seed, &run.InitialEquity,
		&run.Message, &run.ChartPath, &reqJSON, &statsJSON, &createdAt, &updatedAt)
	if err != nil {
		return Run{}, err
	}
	run.Seed = uint64(seed)
	run.CreatedAt = time.UnixMilli(createdAt)
	run.UpdatedAt = time.UnixMilli(updatedAt)
	if reqJSON != "" {
		if err := json.Unmarshal([]byte(reqJSON), &run.Request); err != nil {
			return Run{}, err
		}
	}
	if statsJSON != "" {
		if err := json.Unmarshal([]byte(statsJSON), &run.Stats); err != nil {
			return Run{}, err
		}
	}
	return run, nil
}
