package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages conversion journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Entry is one recorded conversion.
type Entry struct {
	ID           int64         `json:"id"`
	RequestID    string        `json:"request_id"`
	SourceFormat string        `json:"source_format"`
	Backend      string        `json:"backend"`
	Filename     string        `json:"filename,omitempty"`
	Opset        int           `json:"opset"`
	Outcome      string        `json:"outcome"`
	Detail       string        `json:"detail,omitempty"`
	InputBytes   int64         `json:"input_bytes"`
	OutputBytes  int64         `json:"output_bytes"`
	Duration     time.Duration `json:"duration_ms"`
	CreatedAt    time.Time     `json:"created_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS conversions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    request_id TEXT NOT NULL,
    source_format TEXT NOT NULL,
    backend TEXT NOT NULL,
    filename TEXT,
    opset INTEGER NOT NULL,
    outcome TEXT NOT NULL,
    detail TEXT,
    input_bytes INTEGER NOT NULL DEFAULT 0,
    output_bytes INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions (created_at DESC);
`

// Open initializes or connects to the journal database.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts one conversion entry. A nil store is a no-op so callers
// can record unconditionally whether or not the journal is enabled.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if s == nil || s.db == nil {
		return nil
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO conversions (
            request_id, source_format, backend, filename, opset,
            outcome, detail, input_bytes, output_bytes, duration_ms, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RequestID,
		entry.SourceFormat,
		entry.Backend,
		nullableString(entry.Filename),
		entry.Opset,
		entry.Outcome,
		nullableString(entry.Detail),
		entry.InputBytes,
		entry.OutputBytes,
		entry.Duration.Milliseconds(),
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert conversion: %w", err)
	}
	return nil
}

// Recent returns the newest entries, newest first. A nil store returns
// an empty slice.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, request_id, source_format, backend, filename, opset,
                outcome, detail, input_bytes, output_bytes, duration_ms, created_at
         FROM conversions ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry      Entry
			filename   sql.NullString
			detail     sql.NullString
			durationMS int64
			createdAt  string
		)
		if err := rows.Scan(
			&entry.ID, &entry.RequestID, &entry.SourceFormat, &entry.Backend,
			&filename, &entry.Opset, &entry.Outcome, &detail,
			&entry.InputBytes, &entry.OutputBytes, &durationMS, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		entry.Filename = filename.String
		entry.Detail = detail.String
		entry.Duration = time.Duration(durationMS) * time.Millisecond
		if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			entry.CreatedAt = ts
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
