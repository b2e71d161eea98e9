// Package sessionmgr handles session lifecycle, tagging, cross-store
// search, and export.
package sessionmgr

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/wawagot/convlog/internal/recorder"
	"github.com/wawagot/convlog/internal/store"
)

// titleWindow is the leading span of interaction text treated as a
// title-equivalent for relevance scoring.
const titleWindow = 50

type Manager struct {
	store     *store.Store
	recorder  *recorder.Recorder
	exportDir string
}

// New creates a session manager. Exports land in exportDir.
func New(st *store.Store, rec *recorder.Recorder, exportDir string) *Manager {
	return &Manager{store: st, recorder: rec, exportDir: exportDir}
}

// Create registers a session. It is idempotent: re-creating an
// existing session is a no-op that keeps the original created_at.
func (m *Manager) Create(sessionID, title, description string) error {
	if sessionID == "" {
		return fmt.Errorf("create session: session id is required")
	}
	return m.store.CreateSession(sessionID, title, description, nil)
}

// Touch bumps the session's last activity timestamp.
func (m *Manager) Touch(sessionID string) error {
	return m.store.TouchSession(sessionID)
}

// Tag attaches a tag to a session, creating the tag lazily.
func (m *Manager) Tag(sessionID, tagName string) error {
	if tagName == "" {
		return fmt.Errorf("tag session: tag name is required")
	}
	return m.store.TagSession(sessionID, tagName)
}

// Archive marks a session archived. It stays searchable and
// exportable but drops out of default listings.
func (m *Manager) Archive(sessionID string) error {
	return m.store.ArchiveSession(sessionID)
}

// Get returns one session with its tags.
func (m *Manager) Get(sessionID string) (*store.Session, error) {
	return m.store.GetSession(sessionID)
}

// List returns sessions by status; empty status means active only
// (the default listing excludes archived sessions).
func (m *Manager) List(status string, limit int) ([]store.Session, error) {
	if status == "" {
		status = store.SessionActive
	}
	return m.store.ListSessions(status, limit)
}

// MatchedRecord is one search hit over decoded interaction text.
type MatchedRecord struct {
	SessionID     string    `json:"session_id"`
	InteractionID int64     `json:"interaction_id"`
	Timestamp     time.Time `json:"timestamp"`
	Relevance     int       `json:"relevance"`
	UserText      string    `json:"user_text"`
	ResponseText  string    `json:"response_text"`
}

// Search performs a case-insensitive substring match over decoded
// interaction text. Relevance: +10 when the query appears in the
// leading title window, +5 for a session description hit, +1 per
// content occurrence; ties broken by recency. A nil sessionID
// searches every session, archived included.
func (m *Manager) Search(query string, sessionID *string, limit int) ([]MatchedRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	q := strings.ToLower(query)
	if q == "" {
		return nil, nil
	}

	var sessions []store.Session
	if sessionID != nil {
		sess, err := m.store.GetSession(*sessionID)
		if err != nil {
			return nil, err
		}
		sessions = []store.Session{*sess}
	} else {
		all, err := m.store.AllSessions()
		if err != nil {
			return nil, err
		}
		sessions = all
	}

	var matches []MatchedRecord
	for _, sess := range sessions {
		sessionBonus := 0
		if strings.Contains(strings.ToLower(sess.Description), q) {
			sessionBonus += 5
		}

		recs, err := m.store.SessionInteractions(sess.SessionID)
		if err != nil {
			return nil, err
		}
		for i := range recs {
			d, err := m.recorder.DecodeInteraction(&recs[i])
			if err != nil {
				slog.Warn("search: skipping undecodable interaction", "id", recs[i].ID, "error", err)
				continue
			}
			content := strings.ToLower(d.UserText + " " + d.ResponseText)
			hits := strings.Count(content, q)
			if hits == 0 {
				continue
			}
			relevance := sessionBonus + hits
			head := content
			if r := []rune(head); len(r) > titleWindow {
				head = string(r[:titleWindow])
			}
			if strings.Contains(head, q) || strings.Contains(strings.ToLower(sess.Title), q) {
				relevance += 10
			}
			matches = append(matches, MatchedRecord{
				SessionID:     sess.SessionID,
				InteractionID: d.ID,
				Timestamp:     d.Timestamp,
				Relevance:     relevance,
				UserText:      d.UserText,
				ResponseText:  d.ResponseText,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Relevance != matches[j].Relevance {
			return matches[i].Relevance > matches[j].Relevance
		}
		return matches[i].Timestamp.After(matches[j].Timestamp)
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
