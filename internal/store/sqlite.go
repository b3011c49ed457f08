package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"itandi_watch/internal/model"
	"itandi_watch/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

const (
	statusPending  = "pending"
	statusNotified = "notified"
)

// SQLite implements SeenStore and ThreadStore backed by a local SQLite
// database. It is the fallback when no spreadsheet is configured, and
// always the home of thread ids (the sheet has no column for them).
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// LoadSeen returns the dedup keys of already-notified listings.
func (s *SQLite) LoadSeen(ctx context.Context) (map[model.SeenKey]struct{}, error) {
	return s.loadKeys(ctx, statusNotified)
}

// LoadPending returns the dedup keys of listings awaiting approval.
func (s *SQLite) LoadPending(ctx context.Context) (map[model.SeenKey]struct{}, error) {
	return s.loadKeys(ctx, statusPending)
}

func (s *SQLite) loadKeys(ctx context.Context, status string) (map[model.SeenKey]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT customer, room_id FROM seen_listings WHERE status = ?`, status)
	if err != nil {
		return nil, fmt.Errorf("query seen listings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	keys := make(map[model.SeenKey]struct{})
	for rows.Next() {
		var key model.SeenKey
		if err := rows.Scan(&key.Customer, &key.RoomID); err != nil {
			return nil, fmt.Errorf("scan seen listing: %w", err)
		}
		keys[key] = struct{}{}
	}
	return keys, rows.Err()
}

// AppendPending records surfaced listings. Re-inserting a known
// (customer, room) pair is a no-op.
func (s *SQLite) AppendPending(ctx context.Context, entries []model.SeenEntry) error {
	for _, e := range entries {
		notifiedAt := e.NotifiedAt
		if notifiedAt.IsZero() {
			notifiedAt = time.Now()
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO seen_listings
			 (customer, building_id, room_id, building_name, rent, url, status, notified_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.Customer, e.BuildingID, e.RoomID, e.BuildingName, e.Rent, e.URL,
			statusPending, notifiedAt.UTC().Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("insert seen listing: %w", err)
		}
	}
	return nil
}

// MarkNotified promotes a pending listing after operator approval.
func (s *SQLite) MarkNotified(ctx context.Context, key model.SeenKey) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE seen_listings SET status = ? WHERE customer = ? AND room_id = ?`,
		statusNotified, key.Customer, key.RoomID)
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

// GetThread returns the customer's notification thread id, or "" when
// none has been recorded.
func (s *SQLite) GetThread(ctx context.Context, customer string) (string, error) {
	var threadID string
	err := s.db.QueryRowContext(ctx,
		`SELECT thread_id FROM notification_threads WHERE customer = ?`, customer,
	).Scan(&threadID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query thread: %w", err)
	}
	return threadID, nil
}

// SetThread records the customer's notification thread id.
func (s *SQLite) SetThread(ctx context.Context, customer, threadID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notification_threads (customer, thread_id, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(customer) DO UPDATE SET thread_id = excluded.thread_id,
		                                     updated_at = excluded.updated_at`,
		customer, threadID, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("set thread: %w", err)
	}
	return nil
}
