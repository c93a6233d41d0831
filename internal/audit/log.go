package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Event types recorded for each pipeline run.
const (
	RunStarted          = "run_started"
	PlanCreated         = "plan_created"
	DataReady           = "data_ready"
	DataFailed          = "data_failed"
	InsightGenerated    = "insight_generated"
	EvaluationCompleted = "evaluation_completed"
	ReflectionRetried   = "reflection_retried"
	CreativesGenerated  = "creatives_generated"
	ReportPersisted     = "report_persisted"
	RunFinished         = "run_finished"
)

// Event is one row of the audit trail.
type Event struct {
	ID      int64
	TS      time.Time
	RunID   string
	Actor   string
	Type    string
	Payload json.RawMessage
}

// Logger writes audit events to a SQLite database.
type Logger struct {
	DBPath string
}

// NewLogger returns a Logger bound to the provided DB path.
func NewLogger(dbPath string) *Logger {
	return &Logger{DBPath: dbPath}
}

// LogEvent appends an event for runID. A nil Logger discards events.
func (l *Logger) LogEvent(ctx context.Context, runID, actor, eventType string, payload any) error {
	if l == nil || l.DBPath == "" {
		return nil
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	db, err := l.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	_, err = db.ExecContext(ctx,
		"INSERT INTO events (ts, run_id, actor, type, payload_json) VALUES (?, ?, ?, ?, ?)",
		time.Now().UTC().Format(time.RFC3339Nano),
		runID,
		actor,
		eventType,
		string(payloadJSON),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// Events returns the events of runID in insertion order. An empty runID
// returns every event.
func (l *Logger) Events(ctx context.Context, runID string) ([]Event, error) {
	db, err := l.open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = db.Close()
	}()

	query := "SELECT id, ts, run_id, actor, type, payload_json FROM events"
	var args []any
	if runID != "" {
		query += " WHERE run_id = ?"
		args = append(args, runID)
	}
	rows, err := db.QueryContext(ctx, query+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var events []Event
	for rows.Next() {
		var (
			ev      Event
			ts      string
			payload string
		)
		if err := rows.Scan(&ev.ID, &ts, &ev.RunID, &ev.Actor, &ev.Type, &payload); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if ev.TS, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse audit ts %q: %w", ts, err)
		}
		ev.Payload = json.RawMessage(payload)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

func (l *Logger) open(ctx context.Context) (*sql.DB, error) {
	if l == nil || l.DBPath == "" {
		return nil, fmt.Errorf("audit db path is required")
	}
	absPath, err := filepath.Abs(l.DBPath)
	if err != nil {
		return nil, fmt.Errorf("resolve audit db path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure audit db dir: %w", err)
	}
	db, err := sql.Open("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts TEXT NOT NULL,
			run_id TEXT NOT NULL,
			actor TEXT NOT NULL,
			type TEXT NOT NULL,
			payload_json TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}
