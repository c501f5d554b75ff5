package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"vocabhub/internal/modules/session/domain"
	sessionout "vocabhub/internal/modules/session/port/out"
	"vocabhub/internal/platform/clock"
	"vocabhub/internal/platform/id"
	"vocabhub/internal/platform/tx"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// stamp formats t in UTC so stored times compare lexically.
func stamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// Session lifecycle values stored in sessions.status.
const (
	storedActive    = "active"
	storedCompleted = "completed"
	storedAbandoned = "abandoned"
)

// SQLiteStore is the local backend: the word deck, per-word review
// progress and server-side session records.
type SQLiteStore struct {
	db    *sql.DB
	tx    tx.Manager
	clock clock.Clock
	ids   id.Generator
}

func NewSQLiteStore(ctx context.Context, db *sql.DB, clk clock.Clock, ids id.Generator) (*SQLiteStore, error) {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if ids == nil {
		ids = id.UUID{}
	}
	s := &SQLiteStore{db: db, tx: tx.NewSQLManager(db), clock: clk, ids: ids}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

var _ sessionout.DeckStore = (*SQLiteStore)(nil)

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS words (
  id TEXT PRIMARY KEY,
  word TEXT NOT NULL UNIQUE,
  definition TEXT NOT NULL,
  phonetic TEXT,
  part_of_speech TEXT,
  examples TEXT,
  level INTEGER NOT NULL,
  created_at TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS study_progress (
  word_id TEXT PRIMARY KEY REFERENCES words(id) ON DELETE CASCADE,
  interval_days REAL NOT NULL,
  due_at TEXT NOT NULL,
  reviews INTEGER NOT NULL,
  lapses INTEGER NOT NULL,
  updated_at TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  flow TEXT NOT NULL,
  status TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS session_items (
  session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
  item_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  response TEXT,
  answered_at TEXT,
  PRIMARY KEY (session_id, item_id)
)`,
		`CREATE INDEX IF NOT EXISTS idx_study_progress_due ON study_progress(due_at)`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create session tables: %w", err)
		}
	}
	return nil
}

// ImportDeck inserts words, updating definitions of words already present.
// Progress of existing words is kept.
func (s *SQLiteStore) ImportDeck(ctx context.Context, words []domain.DeckWord) (int, error) {
	const stmt = `
INSERT INTO words (id, word, definition, phonetic, part_of_speech, examples, level, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(word) DO UPDATE SET
  definition=excluded.definition,
  phonetic=excluded.phonetic,
  part_of_speech=excluded.part_of_speech,
  examples=excluded.examples,
  level=excluded.level;
`
	now := s.clock.Now()
	imported := 0
	err := s.tx.Within(ctx, func(ctx context.Context) error {
		exec := tx.From(ctx, s.db)
		for i, w := range words {
			examples, err := json.Marshal(w.Examples)
			if err != nil {
				return fmt.Errorf("encode examples for %q: %w", w.Word, err)
			}
			// Keep deck order stable for new-word selection.
			created := stamp(now.Add(time.Duration(i) * time.Second))
			if _, err := exec.ExecContext(ctx, stmt,
				s.ids.New(),
				strings.ToLower(w.Word),
				w.Definition,
				w.Phonetic,
				w.PartOfSpeech,
				string(examples),
				w.Level,
				created,
			); err != nil {
				return fmt.Errorf("import word %q: %w", w.Word, err)
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return imported, nil
}

type wordRow struct {
	id           string
	word         string
	definition   string
	phonetic     string
	partOfSpeech string
	examples     []string
	level        int
}

func scanWord(rows *sql.Rows, extra ...any) (wordRow, error) {
	var (
		w          wordRow
		phonetic   sql.NullString
		pos        sql.NullString
		examples   sql.NullString
		scanTarget = []any{&w.id, &w.word, &w.definition, &phonetic, &pos, &examples, &w.level}
	)
	if err := rows.Scan(append(scanTarget, extra...)...); err != nil {
		return wordRow{}, fmt.Errorf("scan word: %w", err)
	}
	w.phonetic = phonetic.String
	w.partOfSpeech = pos.String
	if examples.Valid && examples.String != "" {
		if err := json.Unmarshal([]byte(examples.String), &w.examples); err != nil {
			return wordRow{}, fmt.Errorf("decode examples of %q: %w", w.word, err)
		}
	}
	return w, nil
}

const wordColumns = `w.id, w.word, w.definition, w.phonetic, w.part_of_speech, w.examples, w.level`

func (s *SQLiteStore) newWords(ctx context.Context, limit int) ([]wordRow, error) {
	rows, err := tx.From(ctx, s.db).QueryContext(ctx, `
SELECT `+wordColumns+`
FROM words w
LEFT JOIN study_progress p ON p.word_id = w.id
WHERE p.word_id IS NULL
ORDER BY w.created_at, w.id
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select new words: %w", err)
	}
	defer rows.Close()
	var out []wordRow
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) dueWords(ctx context.Context, now time.Time, limit int) ([]wordRow, error) {
	rows, err := tx.From(ctx, s.db).QueryContext(ctx, `
SELECT `+wordColumns+`
FROM words w
JOIN study_progress p ON p.word_id = w.id
WHERE p.due_at <= ?
ORDER BY p.due_at, w.id
LIMIT ?`, stamp(now), limit)
	if err != nil {
		return nil, fmt.Errorf("select due words: %w", err)
	}
	defer rows.Close()
	var out []wordRow
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) randomWords(ctx context.Context, limit int) ([]wordRow, error) {
	rows, err := tx.From(ctx, s.db).QueryContext(ctx, `
SELECT `+wordColumns+`
FROM words w
ORDER BY RANDOM()
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select assessment words: %w", err)
	}
	defer rows.Close()
	var out []wordRow
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) countDue(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := tx.From(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM study_progress WHERE due_at <= ?`, stamp(now)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count due words: %w", err)
	}
	return n, nil
}

// openSession records a new session over itemIDs, in order.
func (s *SQLiteStore) openSession(ctx context.Context, flow string, itemIDs []string) (string, error) {
	sessionID := s.ids.New()
	now := stamp(s.clock.Now())
	exec := tx.From(ctx, s.db)
	if _, err := exec.ExecContext(ctx,
		`INSERT INTO sessions (id, flow, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, flow, storedActive, now, now); err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	for i, itemID := range itemIDs {
		if _, err := exec.ExecContext(ctx,
			`INSERT INTO session_items (session_id, item_id, position) VALUES (?, ?, ?)`,
			sessionID, itemID, i); err != nil {
			return "", fmt.Errorf("insert session item: %w", err)
		}
	}
	return sessionID, nil
}

var (
	errUnknownSession = errors.New("unknown session")
	errSessionClosed  = errors.New("session is not active")
	errUnknownItem    = errors.New("item is not part of the session")
)

// recordResponse stores response for itemID. It reports whether the item
// was already answered and whether every item of the session now is.
func (s *SQLiteStore) recordResponse(ctx context.Context, flow, sessionID, itemID string, response any) (already, complete bool, err error) {
	exec := tx.From(ctx, s.db)
	var status, storedFlow string
	err = exec.QueryRowContext(ctx, `SELECT status, flow FROM sessions WHERE id = ?`, sessionID).Scan(&status, &storedFlow)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && storedFlow != flow) {
		return false, false, errUnknownSession
	}
	if err != nil {
		return false, false, fmt.Errorf("load session: %w", err)
	}

	var answered sql.NullString
	err = exec.QueryRowContext(ctx, `SELECT answered_at FROM session_items WHERE session_id = ? AND item_id = ?`, sessionID, itemID).Scan(&answered)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, errUnknownItem
	}
	if err != nil {
		return false, false, fmt.Errorf("load session item: %w", err)
	}
	if answered.Valid {
		return true, status == storedCompleted, nil
	}
	if status != storedActive {
		return false, false, errSessionClosed
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return false, false, fmt.Errorf("encode response: %w", err)
	}
	now := stamp(s.clock.Now())
	if _, err := exec.ExecContext(ctx,
		`UPDATE session_items SET response = ?, answered_at = ? WHERE session_id = ? AND item_id = ?`,
		string(payload), now, sessionID, itemID); err != nil {
		return false, false, fmt.Errorf("store response: %w", err)
	}

	var open int
	if err := exec.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM session_items WHERE session_id = ? AND answered_at IS NULL`, sessionID).Scan(&open); err != nil {
		return false, false, fmt.Errorf("count open items: %w", err)
	}
	if open == 0 {
		if _, err := exec.ExecContext(ctx,
			`UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?`, storedCompleted, now, sessionID); err != nil {
			return false, false, fmt.Errorf("complete session: %w", err)
		}
	}
	return false, open == 0, nil
}

func (s *SQLiteStore) abandonSession(ctx context.Context, flow, sessionID string) (bool, error) {
	res, err := tx.From(ctx, s.db).ExecContext(ctx,
		`UPDATE sessions SET status = ?, updated_at = ? WHERE id = ? AND flow = ? AND status = ?`,
		storedAbandoned, stamp(s.clock.Now()), sessionID, flow, storedActive)
	if err != nil {
		return false, fmt.Errorf("abandon session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("abandon session: %w", err)
	}
	return n == 1, nil
}

// SessionCounts reports how many sessions per flow and status exist.
func (s *SQLiteStore) SessionCounts(ctx context.Context) (map[string]int, error) {
	rows, err := tx.From(ctx, s.db).QueryContext(ctx, `SELECT flow, status, COUNT(*) FROM sessions GROUP BY flow, status`)
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var flow, status string
		var n int
		if err := rows.Scan(&flow, &status, &n); err != nil {
			return nil, fmt.Errorf("scan session count: %w", err)
		}
		out[flow+"."+status] = n
	}
	return out, rows.Err()
}

// responses returns the stored responses of a session in item order.
func (s *SQLiteStore) responses(ctx context.Context, sessionID string) ([]wordRow, []string, error) {
	rows, err := tx.From(ctx, s.db).QueryContext(ctx, `
SELECT `+wordColumns+`, si.response
FROM session_items si
JOIN words w ON w.id = si.item_id
WHERE si.session_id = ?
ORDER BY si.position`, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("select responses: %w", err)
	}
	defer rows.Close()
	var words []wordRow
	var raw []string
	for rows.Next() {
		var resp sql.NullString
		w, err := scanWord(rows, &resp)
		if err != nil {
			return nil, nil, err
		}
		words = append(words, w)
		raw = append(raw, resp.String)
	}
	return words, raw, rows.Err()
}

// Labels maps word ids to their words. Unknown ids are left out.
func (s *SQLiteStore) Labels(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, itemID := range ids {
		args[i] = itemID
	}
	query := `SELECT id, word FROM words WHERE id IN (?` + strings.Repeat(",?", len(ids)-1) + `)`
	rows, err := tx.From(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select labels: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var itemID, word string
		if err := rows.Scan(&itemID, &word); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		out[itemID] = word
	}
	return out, rows.Err()
}
