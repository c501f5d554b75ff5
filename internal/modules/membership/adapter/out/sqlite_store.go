package out

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	membershipout "vocabhub/internal/modules/membership/port/out"
	"vocabhub/internal/platform/tx"
)

// SQLiteStore keeps the saved set in the local database. The token is
// ignored; the local backend has a single learner.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

var _ membershipout.Gateway = (*SQLiteStore)(nil)

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS saved_items (
  item_id TEXT PRIMARY KEY,
  saved_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create saved_items table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, _ string) ([]string, error) {
	rows, err := tx.From(ctx, s.db).QueryContext(ctx, `SELECT item_id FROM saved_items ORDER BY saved_at, item_id`)
	if err != nil {
		return nil, fmt.Errorf("list saved: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan saved: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Add(ctx context.Context, _ string, itemID string) error {
	_, err := tx.From(ctx, s.db).ExecContext(ctx,
		`INSERT INTO saved_items (item_id, saved_at) VALUES (?, ?) ON CONFLICT(item_id) DO NOTHING`,
		itemID, s.now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("add saved: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Remove(ctx context.Context, _ string, itemID string) error {
	if _, err := tx.From(ctx, s.db).ExecContext(ctx, `DELETE FROM saved_items WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("remove saved: %w", err)
	}
	return nil
}
