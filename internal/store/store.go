// Package store owns the relational schema and all CRUD for the
// knowledge system. Every write is a single implicit transaction;
// conflicting writers are serialized by sqlite's busy handler.
package store

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at dbPath and applies the schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, wrapErr("open", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, wrapErr("apply schema", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for shared read access.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error {
	return s.db.Close()
}

// --- Sessions ---

// CreateSession inserts a session if it does not already exist.
// Re-creating an existing session is a no-op that preserves created_at,
// so concurrent creators can all treat the call as success.
func (s *Store) CreateSession(sessionID, title, description string, metadata map[string]string) error {
	meta := "{}"
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err != nil {
			return wrapErr("create session", err)
		}
		meta = string(b)
	}
	now := time.Now().UTC()
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO sessions (session_id, title, description, status, metadata, created_at, last_activity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sessionID, title, description, SessionActive, meta, now, now)
	return wrapErr("create session", err)
}

// GetSession returns a session with its tag set.
func (s *Store) GetSession(sessionID string) (*Session, error) {
	var sess Session
	var meta string
	err := s.db.QueryRow(`
		SELECT id, session_id, COALESCE(title,''), COALESCE(description,''), status, COALESCE(metadata,'{}'), created_at, last_activity
		FROM sessions WHERE session_id = ?
	`, sessionID).Scan(&sess.ID, &sess.SessionID, &sess.Title, &sess.Description, &sess.Status, &meta, &sess.CreatedAt, &sess.LastActivity)
	if err == sql.ErrNoRows {
		return nil, notFound("get session", "session")
	}
	if err != nil {
		return nil, wrapErr("get session", err)
	}
	if meta != "" && meta != "{}" {
		_ = json.Unmarshal([]byte(meta), &sess.Metadata)
	}
	tags, err := s.SessionTags(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Tags = tags
	return &sess, nil
}

// ListSessions returns sessions with the given status, most recently
// active first. An empty status lists everything.
func (s *Store) ListSessions(status string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, session_id, COALESCE(title,''), COALESCE(description,''), status, COALESCE(metadata,'{}'), created_at, last_activity FROM sessions`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY last_activity DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, wrapErr("list sessions", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var meta string
		if err := rows.Scan(&sess.ID, &sess.SessionID, &sess.Title, &sess.Description, &sess.Status, &meta, &sess.CreatedAt, &sess.LastActivity); err != nil {
			return nil, wrapErr("list sessions", err)
		}
		if meta != "" && meta != "{}" {
			_ = json.Unmarshal([]byte(meta), &sess.Metadata)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// AllSessions returns every session regardless of status, most recently
// active first. Search walks the full table, so no limit applies here.
func (s *Store) AllSessions() ([]Session, error) {
	rows, err := s.db.Query(`SELECT id, session_id, COALESCE(title,''), COALESCE(description,''), status, COALESCE(metadata,'{}'), created_at, last_activity FROM sessions ORDER BY last_activity DESC`)
	if err != nil {
		return nil, wrapErr("all sessions", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var meta string
		if err := rows.Scan(&sess.ID, &sess.SessionID, &sess.Title, &sess.Description, &sess.Status, &meta, &sess.CreatedAt, &sess.LastActivity); err != nil {
			return nil, wrapErr("all sessions", err)
		}
		if meta != "" && meta != "{}" {
			_ = json.Unmarshal([]byte(meta), &sess.Metadata)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// TouchSession bumps last_activity to now.
func (s *Store) TouchSession(sessionID string) error {
	res, err := s.db.Exec(`UPDATE sessions SET last_activity = ? WHERE session_id = ?`, time.Now().UTC(), sessionID)
	if err != nil {
		return wrapErr("touch session", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("touch session", "session")
	}
	return nil
}

// ArchiveSession marks the session archived. Archived sessions stay
// queryable and exportable but drop out of default listings.
func (s *Store) ArchiveSession(sessionID string) error {
	res, err := s.db.Exec(`UPDATE sessions SET status = ?, last_activity = ? WHERE session_id = ?`,
		SessionArchived, time.Now().UTC(), sessionID)
	if err != nil {
		return wrapErr("archive session", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("archive session", "session")
	}
	return nil
}

// --- Tags ---

// AddTag creates a tag if it does not exist.
func (s *Store) AddTag(name string) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO tags (name) VALUES (?)`, name)
	return wrapErr("add tag", err)
}

// TagSession attaches a tag to a session, creating the tag lazily.
func (s *Store) TagSession(sessionID, tagName string) error {
	if err := s.AddTag(tagName); err != nil {
		return err
	}
	res, err := s.db.Exec(`
		INSERT OR IGNORE INTO session_tags (session_id, tag_id)
		SELECT s.id, t.id FROM sessions s, tags t
		WHERE s.session_id = ? AND t.name = ?
	`, sessionID, tagName)
	if err != nil {
		return wrapErr("tag session", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either the session is missing or the tag was already attached.
		var exists int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE session_id = ?`, sessionID).Scan(&exists); err != nil {
			return wrapErr("tag session", err)
		}
		if exists == 0 {
			return notFound("tag session", "session")
		}
	}
	return nil
}

// SessionTags returns the tag names attached to a session.
func (s *Store) SessionTags(sessionID string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT t.name FROM tags t
		JOIN session_tags st ON t.id = st.tag_id
		JOIN sessions s ON st.session_id = s.id
		WHERE s.session_id = ?
		ORDER BY t.name
	`, sessionID)
	if err != nil {
		return nil, wrapErr("session tags", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, wrapErr("session tags", err)
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

// --- Interactions ---

// InsertInteraction writes one interaction row and returns its id.
func (s *Store) InsertInteraction(rec *Interaction) (int64, error) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	res, err := s.db.Exec(`
		INSERT INTO interactions (session_id, timestamp, user_text, response_text, context, metadata, encrypted)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.SessionID, rec.Timestamp, rec.UserText, rec.ResponseText, rec.Context, rec.Metadata, rec.Encrypted)
	if err != nil {
		return 0, wrapErr("insert interaction", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrapErr("insert interaction", err)
	}
	rec.ID = id
	return id, nil
}

// GetInteraction returns a single interaction by id.
func (s *Store) GetInteraction(id int64) (*Interaction, error) {
	var rec Interaction
	err := s.db.QueryRow(`
		SELECT id, session_id, timestamp, COALESCE(user_text,''), COALESCE(response_text,''), COALESCE(context,''), COALESCE(metadata,''), encrypted
		FROM interactions WHERE id = ?
	`, id).Scan(&rec.ID, &rec.SessionID, &rec.Timestamp, &rec.UserText, &rec.ResponseText, &rec.Context, &rec.Metadata, &rec.Encrypted)
	if err == sql.ErrNoRows {
		return nil, notFound("get interaction", "interaction")
	}
	if err != nil {
		return nil, wrapErr("get interaction", err)
	}
	return &rec, nil
}

// QueryInteractions returns interactions filtered by optional session
// and stored-text substring, newest first. The substring filter runs
// against text as stored; callers holding encoded rows filter on the
// decoded text themselves.
func (s *Store) QueryInteractions(sessionID, textContains string, limit int) ([]Interaction, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, session_id, timestamp, COALESCE(user_text,''), COALESCE(response_text,''), COALESCE(context,''), COALESCE(metadata,''), encrypted FROM interactions WHERE 1=1`
	args := []interface{}{}
	if sessionID != "" {
		query += ` AND session_id = ?`
		args = append(args, sessionID)
	}
	if textContains != "" {
		query += ` AND (user_text LIKE ? OR response_text LIKE ?)`
		pat := "%" + textContains + "%"
		args = append(args, pat, pat)
	}
	query += ` ORDER BY timestamp DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, wrapErr("query interactions", err)
	}
	defer rows.Close()

	var recs []Interaction
	for rows.Next() {
		var rec Interaction
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Timestamp, &rec.UserText, &rec.ResponseText, &rec.Context, &rec.Metadata, &rec.Encrypted); err != nil {
			return nil, wrapErr("query interactions", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// SessionInteractions returns all interactions of one session in
// chronological order, for exports and transcripts.
func (s *Store) SessionInteractions(sessionID string) ([]Interaction, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, timestamp, COALESCE(user_text,''), COALESCE(response_text,''), COALESCE(context,''), COALESCE(metadata,''), encrypted
		FROM interactions WHERE session_id = ? ORDER BY timestamp ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, wrapErr("session interactions", err)
	}
	defer rows.Close()

	var recs []Interaction
	for rows.Next() {
		var rec Interaction
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Timestamp, &rec.UserText, &rec.ResponseText, &rec.Context, &rec.Metadata, &rec.Encrypted); err != nil {
			return nil, wrapErr("session interactions", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// DeleteInteractionsBefore removes interactions older than cutoff and
// returns the number of rows deleted.
func (s *Store) DeleteInteractionsBefore(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM interactions WHERE timestamp < ?`, cutoff.UTC())
	if err != nil {
		return 0, wrapErr("delete interactions", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapErr("delete interactions", err)
	}
	return n, nil
}
