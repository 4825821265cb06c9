package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/contract-analyzer/internal/entity"
)

// Store persists completed comparison runs in an embedded SQLite database so
// past analyses can be reviewed and exported without re-running the pipeline.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Run is one persisted pipeline invocation.
type Run struct {
	ID            string
	SessionID     string
	OriginalFile  string
	AmendmentFile string
	Success       bool
	ResultJSON    string
	DurationMS    int64
	CreatedAt     time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS comparison_runs (
	id             TEXT PRIMARY KEY,
	session_id     TEXT NOT NULL,
	original_file  TEXT NOT NULL,
	amendment_file TEXT NOT NULL,
	success        INTEGER NOT NULL,
	result_json    TEXT NOT NULL,
	duration_ms    INTEGER NOT NULL,
	created_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comparison_runs_session ON comparison_runs(session_id);
`

// Open opens (and bootstraps) the store at path. Use ":memory:" for tests.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// One connection: sqlite serializes writers anyway, and a pooled second
	// connection to a ":memory:" DSN would see a different database.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap history schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveResult records one completed (or failed) run.
func (s *Store) SaveResult(ctx context.Context, originalFile, amendmentFile string, result entity.ComparisonResult, success bool) (string, error) {
	id := uuid.New().String()
	sessionID, _ := result.ProcessingMetadata["session_id"].(string)
	var durationMS int64
	if d, ok := result.ProcessingMetadata["total_duration_ms"].(int64); ok {
		durationMS = d
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO comparison_runs (id, session_id, original_file, amendment_file, success, result_json, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, sessionID, originalFile, amendmentFile, boolToInt(success), string(encoded), durationMS,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	s.logger.Info("history.save.ok", "run_id", id, "session_id", sessionID, "success", success)
	return id, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, original_file, amendment_file, success, result_json, duration_ms, created_at
		 FROM comparison_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var success int
		var createdAt string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.OriginalFile, &r.AmendmentFile, &success, &r.ResultJSON, &r.DurationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Success = success != 0
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			r.CreatedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun loads one run by id.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	var r Run
	var success int
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, original_file, amendment_file, success, result_json, duration_ms, created_at
		 FROM comparison_runs WHERE id = ?`, id).
		Scan(&r.ID, &r.SessionID, &r.OriginalFile, &r.AmendmentFile, &success, &r.ResultJSON, &r.DurationMS, &createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("load run %s: %w", id, err)
	}
	r.Success = success != 0
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		r.CreatedAt = t
	}
	return r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
