package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "convlog.db")
	st, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestSessionLifecycle(t *testing.T) {
	st := newTestStore(t)

	if err := st.CreateSession("sess-1", "First", "a test session", map[string]string{"origin": "test"}); err != nil {
		t.Fatalf("create session: %v", err)
	}

	sess, err := st.GetSession("sess-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess.Title != "First" || sess.Status != SessionActive {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if sess.Metadata["origin"] != "test" {
		t.Fatalf("expected metadata to round-trip, got %v", sess.Metadata)
	}

	if err := st.ArchiveSession("sess-1"); err != nil {
		t.Fatalf("archive session: %v", err)
	}
	sess, err = st.GetSession("sess-1")
	if err != nil {
		t.Fatalf("get archived session: %v", err)
	}
	if sess.Status != SessionArchived {
		t.Fatalf("expected archived status, got %q", sess.Status)
	}
}

func TestCreateSessionIdempotent(t *testing.T) {
	st := newTestStore(t)

	if err := st.CreateSession("dup", "Original", "", nil); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := st.CreateSession("dup", "Replacement", "", nil); err != nil {
		t.Fatalf("second create should be a no-op, got: %v", err)
	}

	sess, err := st.GetSession("dup")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess.Title != "Original" {
		t.Fatalf("duplicate create must not overwrite, got title %q", sess.Title)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetSession("missing")
	if err == nil {
		t.Fatalf("expected error for missing session")
	}
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestTouchSessionMissing(t *testing.T) {
	st := newTestStore(t)

	if err := st.TouchSession("nope"); !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestTagSession(t *testing.T) {
	st := newTestStore(t)

	if err := st.CreateSession("sess-tag", "", "", nil); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := st.TagSession("sess-tag", "golang"); err != nil {
		t.Fatalf("tag session: %v", err)
	}
	// Tagging twice must not duplicate.
	if err := st.TagSession("sess-tag", "golang"); err != nil {
		t.Fatalf("repeat tag: %v", err)
	}
	if err := st.TagSession("sess-tag", "sqlite"); err != nil {
		t.Fatalf("second tag: %v", err)
	}

	tags, err := st.SessionTags("sess-tag")
	if err != nil {
		t.Fatalf("session tags: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %v", tags)
	}

	if err := st.TagSession("missing", "golang"); !IsNotFound(err) {
		t.Fatalf("expected not-found tagging missing session, got %v", err)
	}
}

func TestListSessionsFiltersStatus(t *testing.T) {
	st := newTestStore(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := st.CreateSession(id, "", "", nil); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if err := st.ArchiveSession("b"); err != nil {
		t.Fatalf("archive: %v", err)
	}

	active, err := st.ListSessions(SessionActive, 10)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active sessions, got %d", len(active))
	}

	all, err := st.ListSessions("", 10)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(all))
	}
}

func TestAllSessionsIsUnbounded(t *testing.T) {
	st := newTestStore(t)

	for i := 0; i < 130; i++ {
		if err := st.CreateSession(fmt.Sprintf("s-%03d", i), "", "", nil); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := st.ArchiveSession("s-000"); err != nil {
		t.Fatalf("archive: %v", err)
	}

	all, err := st.AllSessions()
	if err != nil {
		t.Fatalf("all sessions: %v", err)
	}
	if len(all) != 130 {
		t.Fatalf("expected every session regardless of status, got %d", len(all))
	}
}

func TestInteractionForeignKey(t *testing.T) {
	st := newTestStore(t)

	_, err := st.InsertInteraction(&Interaction{SessionID: "ghost", UserText: "hi"})
	if err == nil {
		t.Fatalf("expected foreign key violation for unknown session")
	}
	if !IsConstraint(err) {
		t.Fatalf("expected constraint error, got %v", err)
	}
}

func TestInteractionRoundTrip(t *testing.T) {
	st := newTestStore(t)

	if err := st.CreateSession("sess-i", "", "", nil); err != nil {
		t.Fatalf("create session: %v", err)
	}
	id, err := st.InsertInteraction(&Interaction{
		SessionID:    "sess-i",
		UserText:     "hello there",
		ResponseText: "hi yourself",
		Metadata:     `{"channel":"cli"}`,
	})
	if err != nil {
		t.Fatalf("insert interaction: %v", err)
	}

	rec, err := st.GetInteraction(id)
	if err != nil {
		t.Fatalf("get interaction: %v", err)
	}
	if rec.UserText != "hello there" || rec.ResponseText != "hi yourself" {
		t.Fatalf("unexpected interaction: %+v", rec)
	}
	if rec.Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}

	recs, err := st.QueryInteractions("sess-i", "yourself", 10)
	if err != nil {
		t.Fatalf("query interactions: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 match, got %d", len(recs))
	}
}

func TestDeleteInteractionsBeforeCutoff(t *testing.T) {
	st := newTestStore(t)

	if err := st.CreateSession("sess-r", "", "", nil); err != nil {
		t.Fatalf("create session: %v", err)
	}

	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	old := cutoff.Add(-time.Minute)
	fresh := cutoff.Add(time.Minute)

	for _, ts := range []time.Time{old, cutoff, fresh} {
		if _, err := st.InsertInteraction(&Interaction{SessionID: "sess-r", UserText: "x", Timestamp: ts}); err != nil {
			t.Fatalf("insert at %v: %v", ts, err)
		}
	}

	n, err := st.DeleteInteractionsBefore(cutoff)
	if err != nil {
		t.Fatalf("delete before: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly the pre-cutoff row deleted, got %d", n)
	}

	left, err := st.SessionInteractions("sess-r")
	if err != nil {
		t.Fatalf("session interactions: %v", err)
	}
	// The row exactly at the cutoff survives.
	if len(left) != 2 {
		t.Fatalf("expected 2 surviving rows, got %d", len(left))
	}
}
