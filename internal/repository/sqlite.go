package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/imageone/agentpress/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			taste TEXT NOT NULL,
			stage TEXT NOT NULL,
			status TEXT NOT NULL,
			iteration INTEGER NOT NULL,
			max_iterations INTEGER NOT NULL,
			research TEXT NOT NULL DEFAULT '',
			research_citations TEXT,
			article TEXT NOT NULL DEFAULT '',
			review TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS trace_events (
			event_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			ts INTEGER NOT NULL,
			type TEXT NOT NULL,
			agent_name TEXT,
			status TEXT,
			payload TEXT,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trace_events_session ON trace_events(session_id, ts)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// CreateSession inserts a new session.
func (s *SQLiteStore) CreateSession(ctx context.Context, sess *domain.Session) error {
	citations, err := marshalCitations(sess.ResearchCitations)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, topic, taste, stage, status, iteration, max_iterations,
			research, research_citations, article, review, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.SessionID, sess.Topic, string(sess.Taste), string(sess.Stage), string(sess.Status),
		sess.Iteration, sess.MaxIterations, sess.Research, citations, sess.Article, sess.Review,
		sess.CreatedAt.UTC(), sess.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by id, or nil if absent.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, topic, taste, stage, status, iteration, max_iterations,
			research, research_citations, article, review, created_at, updated_at
		FROM sessions WHERE session_id = ?`, sessionID)

	var sess domain.Session
	var taste, stage, status string
	var citations sql.NullString
	var createdAt, updatedAt time.Time
	err := row.Scan(&sess.SessionID, &sess.Topic, &taste, &stage, &status,
		&sess.Iteration, &sess.MaxIterations, &sess.Research, &citations,
		&sess.Article, &sess.Review, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	sess.Taste = domain.Taste(taste)
	sess.Stage = domain.Stage(stage)
	sess.Status = domain.SessionStatus(status)
	sess.CreatedAt = createdAt
	sess.UpdatedAt = updatedAt
	if citations.Valid && citations.String != "" {
		if err := json.Unmarshal([]byte(citations.String), &sess.ResearchCitations); err != nil {
			return nil, fmt.Errorf("failed to decode citations: %w", err)
		}
	}
	return &sess, nil
}

// UpdateSession persists the mutable fields of an existing session.
func (s *SQLiteStore) UpdateSession(ctx context.Context, sess *domain.Session) error {
	citations, err := marshalCitations(sess.ResearchCitations)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET stage = ?, status = ?, iteration = ?,
			research = ?, research_citations = ?, article = ?, review = ?, updated_at = ?
		WHERE session_id = ?`,
		string(sess.Stage), string(sess.Status), sess.Iteration,
		sess.Research, citations, sess.Article, sess.Review, sess.UpdatedAt.UTC(),
		sess.SessionID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %s does not exist", sess.SessionID)
	}
	return nil
}

// CreateTraceEvent appends a trace event.
func (s *SQLiteStore) CreateTraceEvent(ctx context.Context, e *domain.TraceEvent) error {
	var payload any
	if len(e.Payload) > 0 {
		payload = string(e.Payload)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trace_events (event_id, session_id, ts, type, agent_name, status, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.EventID, e.SessionID, e.Ts, string(e.Type), e.AgentName, e.Status, payload)
	if err != nil {
		return fmt.Errorf("failed to create trace event: %w", err)
	}
	return nil
}

// GetTraceEvents retrieves all trace events for a session in emission order.
func (s *SQLiteStore) GetTraceEvents(ctx context.Context, sessionID string) ([]domain.TraceEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, session_id, ts, type, agent_name, status, payload
		FROM trace_events WHERE session_id = ? ORDER BY ts ASC, rowid ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trace events: %w", err)
	}
	defer rows.Close()

	var events []domain.TraceEvent
	for rows.Next() {
		var e domain.TraceEvent
		var eventType string
		var agentName, status, payload sql.NullString
		if err := rows.Scan(&e.EventID, &e.SessionID, &e.Ts, &eventType, &agentName, &status, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan trace event: %w", err)
		}
		e.Type = domain.EventType(eventType)
		e.AgentName = agentName.String
		e.Status = status.String
		if payload.Valid && payload.String != "" {
			e.Payload = json.RawMessage(payload.String)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func marshalCitations(citations []domain.Citation) (any, error) {
	if len(citations) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(citations)
	if err != nil {
		return nil, fmt.Errorf("failed to encode citations: %w", err)
	}
	return string(raw), nil
}
