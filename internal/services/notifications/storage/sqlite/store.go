// Package sqlite persists notifications, category mutes and messages in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/camptrack/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/camptrack/internal/services/notifications/domain"
	"github.com/louisbranch/camptrack/internal/services/notifications/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for the ledger and the mailbox.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a notifications SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// ListNotifications returns every notification oldest first.
func (s *Store) ListNotifications(ctx context.Context) ([]domain.Notification, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, message, created_at, level, category, context_json, read_by_json, deleted_by_json
FROM notifications
ORDER BY created_at ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var (
			n                             domain.Notification
			createdAt                     int64
			level                         string
			contextJSON, readBy, deletedBy string
		)
		if err := rows.Scan(&n.ID, &n.Message, &createdAt, &level, &n.Category, &contextJSON, &readBy, &deletedBy); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.CreatedAt = fromMillis(createdAt)
		n.Level = domain.Level(level)
		if err := decodeJSON(contextJSON, &n.Context); err != nil {
			return nil, fmt.Errorf("decode context for notification %s: %w", n.ID, err)
		}
		if err := decodeJSON(readBy, &n.ReadBy); err != nil {
			return nil, fmt.Errorf("decode readers for notification %s: %w", n.ID, err)
		}
		if err := decodeJSON(deletedBy, &n.DeletedBy); err != nil {
			return nil, fmt.Errorf("decode deleters for notification %s: %w", n.ID, err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return notifications, nil
}

// PutNotifications upserts notifications in one transaction.
func (s *Store) PutNotifications(ctx context.Context, notifications []domain.Notification) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.inTx(ctx, "notification write", func(tx *sql.Tx) error {
		for _, n := range notifications {
			contextJSON, err := encodeJSON(n.Context, "{}")
			if err != nil {
				return fmt.Errorf("encode context for notification %s: %w", n.ID, err)
			}
			readBy, err := encodeJSON(n.ReadBy, "[]")
			if err != nil {
				return fmt.Errorf("encode readers for notification %s: %w", n.ID, err)
			}
			deletedBy, err := encodeJSON(n.DeletedBy, "[]")
			if err != nil {
				return fmt.Errorf("encode deleters for notification %s: %w", n.ID, err)
			}
			if _, err := tx.ExecContext(ctx, `
INSERT INTO notifications (id, message, created_at, level, category, context_json, read_by_json, deleted_by_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    read_by_json = excluded.read_by_json,
    deleted_by_json = excluded.deleted_by_json
`, n.ID, n.Message, toMillis(n.CreatedAt), string(n.Level), n.Category, contextJSON, readBy, deletedBy); err != nil {
				return fmt.Errorf("put notification %s: %w", n.ID, err)
			}
		}
		return nil
	})
}

// ListMutes returns every stored mute keyed by category, expired or not.
func (s *Store) ListMutes(ctx context.Context) (map[string]time.Time, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT category, expires_at FROM notification_mutes`)
	if err != nil {
		return nil, fmt.Errorf("list mutes: %w", err)
	}
	defer rows.Close()

	mutes := map[string]time.Time{}
	for rows.Next() {
		var (
			category  string
			expiresAt int64
		)
		if err := rows.Scan(&category, &expiresAt); err != nil {
			return nil, fmt.Errorf("scan mute: %w", err)
		}
		mutes[category] = fromMillis(expiresAt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mutes: %w", err)
	}
	return mutes, nil
}

// PutMute sets or resets the expiry of a category mute.
func (s *Store) PutMute(ctx context.Context, category string, expiresAt time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO notification_mutes (category, expires_at) VALUES (?, ?)
ON CONFLICT(category) DO UPDATE SET expires_at = excluded.expires_at
`, category, toMillis(expiresAt)); err != nil {
		return fmt.Errorf("put mute %s: %w", category, err)
	}
	return nil
}

// DeleteMutes removes the named category mutes.
func (s *Store) DeleteMutes(ctx context.Context, categories []string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.inTx(ctx, "mute delete", func(tx *sql.Tx) error {
		for _, category := range categories {
			if _, err := tx.ExecContext(ctx, `DELETE FROM notification_mutes WHERE category = ?`, category); err != nil {
				return fmt.Errorf("delete mute %s: %w", category, err)
			}
		}
		return nil
	})
}

// ListMessages returns every message in send order.
func (s *Store) ListMessages(ctx context.Context) ([]domain.Message, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, sender, recipient, text, sent_at, read, priority, requires_ack, acked, acked_at,
       pinned, pinned_by, attachment, metadata_json
FROM messages
ORDER BY sent_at ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var (
			m            domain.Message
			sentAt       int64
			ackedAt      sql.NullInt64
			metadataJSON string
		)
		if err := rows.Scan(
			&m.ID,
			&m.From,
			&m.To,
			&m.Text,
			&sentAt,
			&m.Read,
			&m.Priority,
			&m.RequiresAck,
			&m.Acked,
			&ackedAt,
			&m.Pinned,
			&m.PinnedBy,
			&m.Attachment,
			&metadataJSON,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.SentAt = fromMillis(sentAt)
		if ackedAt.Valid {
			m.AckedAt = fromMillis(ackedAt.Int64)
		}
		if err := decodeJSON(metadataJSON, &m.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for message %s: %w", m.ID, err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

// PutMessages upserts messages in one transaction.
func (s *Store) PutMessages(ctx context.Context, messages []domain.Message) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.inTx(ctx, "message write", func(tx *sql.Tx) error {
		for _, m := range messages {
			metadataJSON, err := encodeJSON(m.Metadata, "{}")
			if err != nil {
				return fmt.Errorf("encode metadata for message %s: %w", m.ID, err)
			}
			var ackedAt sql.NullInt64
			if !m.AckedAt.IsZero() {
				ackedAt = sql.NullInt64{Int64: toMillis(m.AckedAt), Valid: true}
			}
			if _, err := tx.ExecContext(ctx, `
INSERT INTO messages (
    id, sender, recipient, text, sent_at, read, priority, requires_ack, acked, acked_at,
    pinned, pinned_by, attachment, metadata_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    read = excluded.read,
    acked = excluded.acked,
    acked_at = excluded.acked_at,
    pinned = excluded.pinned,
    pinned_by = excluded.pinned_by
`,
				m.ID,
				m.From,
				m.To,
				m.Text,
				toMillis(m.SentAt),
				m.Read,
				m.Priority,
				m.RequiresAck,
				m.Acked,
				ackedAt,
				m.Pinned,
				m.PinnedBy,
				m.Attachment,
				metadataJSON,
			); err != nil {
				return fmt.Errorf("put message %s: %w", m.ID, err)
			}
		}
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, label string, fn func(*sql.Tx) error) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", label, err)
	}
	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback %s: %v", err, label, rollbackErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", label, err)
	}
	return nil
}

func encodeJSON(value any, empty string) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	if string(data) == "null" {
		return empty, nil
	}
	return string(data), nil
}

func decodeJSON(raw string, dest any) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dest)
}
