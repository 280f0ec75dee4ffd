package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"taskforge-hq/taskforge/pkg/cost"
)

// Record is a usage record as persisted by the ledger, with a stable
// identifier assigned at write time.
type Record struct {
	// ID is the record's unique identifier (UUID v4).
	ID string

	// Usage is the metered call the row was written from.
	Usage cost.UsageRecord
}

// StoreConfig configures the SQLite store.
type StoreConfig struct {
	// Path is the path to the SQLite database file.
	Path string

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	CheckpointInterval time.Duration

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// Store persists usage records in a SQLite database.
//
// Store uses a write-ahead log (WAL) with periodic checkpointing and a
// single connection, since SQLite only supports one writer.
type Store struct {
	db                 *sql.DB
	path               string
	checkpointInterval time.Duration
	done               chan struct{}
	mu                 sync.Mutex
	closeOnce          sync.Once

	insertStmt *sql.Stmt
	pruneStmt  *sql.Stmt
}

// OpenStore opens (or creates) a ledger database with default settings.
func OpenStore(path string) (*Store, error) {
	return OpenStoreWithConfig(StoreConfig{Path: path})
}

// OpenStoreWithConfig opens a ledger database with custom configuration.
func OpenStoreWithConfig(cfg StoreConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("ledger path cannot be empty")
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = 5 * time.Minute
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{
		db:                 db,
		path:               cfg.Path,
		checkpointInterval: cfg.CheckpointInterval,
		done:               make(chan struct{}),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	go s.checkpointLoop()

	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS usage_records (
		id TEXT PRIMARY KEY,
		recorded_at INTEGER NOT NULL,
		model TEXT NOT NULL,
		input_tokens INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		cost_cents INTEGER NOT NULL,
		task_id TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_recorded_at ON usage_records(recorded_at);
	CREATE INDEX IF NOT EXISTS idx_model ON usage_records(model);
	CREATE INDEX IF NOT EXISTS idx_task_id ON usage_records(task_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) prepareStatements() error {
	var err error

	s.insertStmt, err = s.db.Prepare(`
		INSERT INTO usage_records (id, recorded_at, model, input_tokens, output_tokens, cost_cents, task_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	s.pruneStmt, err = s.db.Prepare(`
		DELETE FROM usage_records
		WHERE recorded_at < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare prune statement: %w", err)
	}

	return nil
}

// Append writes records to the ledger in a single transaction.
func (s *Store) Append(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt := tx.StmtContext(ctx, s.insertStmt)
	for _, r := range records {
		if r.ID == "" {
			tx.Rollback()
			return fmt.Errorf("record id cannot be empty")
		}
		_, err := stmt.ExecContext(ctx,
			r.ID,
			r.Usage.Timestamp.UnixMilli(),
			r.Usage.Model,
			r.Usage.InputTokens,
			r.Usage.OutputTokens,
			int64(r.Usage.CostCents),
			r.Usage.TaskID,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Query filters ledger reads. Zero values mean no constraint.
type Query struct {
	// Model restricts results to one model identifier.
	Model string

	// TaskID restricts results to one task.
	TaskID string

	// Since restricts results to records at or after this time.
	Since time.Time

	// Limit caps the number of returned records. 0 means no cap.
	Limit int
}

// Records reads records matching the query, newest first.
func (s *Store) Records(ctx context.Context, q Query) ([]Record, error) {
	query := `
		SELECT id, recorded_at, model, input_tokens, output_tokens, cost_cents, task_id
		FROM usage_records
		WHERE 1=1
	`
	var args []any
	if q.Model != "" {
		query += " AND model = ?"
		args = append(args, q.Model)
	}
	if q.TaskID != "" {
		query += " AND task_id = ?"
		args = append(args, q.TaskID)
	}
	if !q.Since.IsZero() {
		query += " AND recorded_at >= ?"
		args = append(args, q.Since.UnixMilli())
	}
	query += " ORDER BY recorded_at DESC, id"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r          Record
			recordedAt int64
			costCents  int64
		)
		if err := rows.Scan(&r.ID, &recordedAt, &r.Usage.Model,
			&r.Usage.InputTokens, &r.Usage.OutputTokens, &costCents, &r.Usage.TaskID); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r.Usage.Timestamp = time.UnixMilli(recordedAt).UTC()
		r.Usage.CostCents = uint64(costCents)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// ModelSummary aggregates ledger rows for one model.
type ModelSummary struct {
	Model        string
	Calls        int64
	InputTokens  int64
	OutputTokens int64
	CostCents    int64
}

// Summarize aggregates records at or after since, grouped by model and
// ordered by descending cost.
func (s *Store) Summarize(ctx context.Context, since time.Time) ([]ModelSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT model, COUNT(*), SUM(input_tokens), SUM(output_tokens), SUM(cost_cents)
		FROM usage_records
		WHERE recorded_at >= ?
		GROUP BY model
		ORDER BY SUM(cost_cents) DESC, model
	`, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to summarize: %w", err)
	}
	defer rows.Close()

	var summaries []ModelSummary
	for rows.Next() {
		var m ModelSummary
		if err := rows.Scan(&m.Model, &m.Calls, &m.InputTokens, &m.OutputTokens, &m.CostCents); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		summaries = append(summaries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return summaries, nil
}

// Count returns the total number of ledger rows.
func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM usage_records").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// Prune deletes records older than the given time and returns how many
// rows were removed.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.pruneStmt.ExecContext(ctx, olderThan.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// Close releases the store's resources. Close is idempotent.
func (s *Store) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		if s.insertStmt != nil {
			s.insertStmt.Close()
		}
		if s.pruneStmt != nil {
			s.pruneStmt.Close()
		}
		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

func (s *Store) checkpointLoop() {
	ticker := time.NewTicker(s.checkpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}
