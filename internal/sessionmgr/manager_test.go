package sessionmgr

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wawagot/convlog/internal/codec"
	"github.com/wawagot/convlog/internal/recorder"
	"github.com/wawagot/convlog/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *recorder.Recorder, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "convlog.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	rec := recorder.New(st, codec.Base64{})
	return New(st, rec, filepath.Join(dir, "exports")), rec, st
}

func TestCreateAndList(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	if err := mgr.Create("work", "Work notes", "daily standup log"); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Create is idempotent.
	if err := mgr.Create("work", "Other", ""); err != nil {
		t.Fatalf("repeat create: %v", err)
	}
	if err := mgr.Create("play", "", ""); err != nil {
		t.Fatalf("create second: %v", err)
	}
	if err := mgr.Archive("play"); err != nil {
		t.Fatalf("archive: %v", err)
	}

	// Default listing shows active sessions only.
	active, err := mgr.List("", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 1 || active[0].SessionID != "work" {
		t.Fatalf("expected only the active session, got %+v", active)
	}

	archived, err := mgr.List(store.SessionArchived, 10)
	if err != nil {
		t.Fatalf("list archived: %v", err)
	}
	if len(archived) != 1 || archived[0].SessionID != "play" {
		t.Fatalf("expected archived session, got %+v", archived)
	}
}

func TestSearchFindsDecodedText(t *testing.T) {
	mgr, rec, _ := newTestManager(t)

	if _, err := rec.Record("greetings", "hello there", "hi, how can I help?", nil, nil); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := rec.Record("greetings", "unrelated question", "unrelated answer", nil, nil); err != nil {
		t.Fatalf("record: %v", err)
	}

	matches, err := mgr.Search("hello", nil, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Relevance < 1 {
		t.Fatalf("expected positive relevance, got %d", matches[0].Relevance)
	}
	if matches[0].UserText != "hello there" {
		t.Fatalf("expected decoded text in match, got %q", matches[0].UserText)
	}
}

func TestSearchRanking(t *testing.T) {
	mgr, rec, _ := newTestManager(t)

	if err := mgr.Create("deploys", "Deploy log", "everything about deploys"); err != nil {
		t.Fatalf("create: %v", err)
	}
	// One mention, buried past the leading window.
	long := "this message talks about many things and only much later mentions a deploy"
	if _, err := rec.Record("deploys", long, "ok", nil, nil); err != nil {
		t.Fatalf("record: %v", err)
	}
	// Query in the leading window and repeated.
	if _, err := rec.Record("deploys", "deploy failed, deploy retried", "noted", nil, nil); err != nil {
		t.Fatalf("record: %v", err)
	}

	matches, err := mgr.Search("deploy", nil, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].UserText != "deploy failed, deploy retried" {
		t.Fatalf("expected leading-window match ranked first, got %q", matches[0].UserText)
	}
	if matches[0].Relevance <= matches[1].Relevance {
		t.Fatalf("ranking not descending: %d then %d", matches[0].Relevance, matches[1].Relevance)
	}
}

func TestSearchScopedToSession(t *testing.T) {
	mgr, rec, _ := newTestManager(t)

	if _, err := rec.Record("a", "needle here", "ok", nil, nil); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := rec.Record("b", "needle there too", "ok", nil, nil); err != nil {
		t.Fatalf("record: %v", err)
	}

	scope := "a"
	matches, err := mgr.Search("needle", &scope, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 || matches[0].SessionID != "a" {
		t.Fatalf("expected only session a, got %+v", matches)
	}

	missing := "nope"
	if _, err := mgr.Search("needle", &missing, 10); !store.IsNotFound(err) {
		t.Fatalf("expected not-found for unknown session, got %v", err)
	}
}

func TestSearchIncludesArchivedSessions(t *testing.T) {
	mgr, rec, _ := newTestManager(t)

	if _, err := rec.Record("old", "archived needle", "ok", nil, nil); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := mgr.Archive("old"); err != nil {
		t.Fatalf("archive: %v", err)
	}

	matches, err := mgr.Search("needle", nil, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("archived sessions must stay searchable, got %d matches", len(matches))
	}
}

func TestTagFlow(t *testing.T) {
	mgr, _, st := newTestManager(t)

	if err := mgr.Create("tagged", "", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mgr.Tag("tagged", "important"); err != nil {
		t.Fatalf("tag: %v", err)
	}

	sess, err := st.GetSession("tagged")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(sess.Tags) != 1 || sess.Tags[0] != "important" {
		t.Fatalf("expected tag on session, got %v", sess.Tags)
	}
}

func TestSearchScansEverySession(t *testing.T) {
	mgr, rec, _ := newTestManager(t)

	if _, err := rec.Record("earliest", "quarterly retro summary", "ok", nil, nil); err != nil {
		t.Fatalf("record: %v", err)
	}
	// Bury the match under far more sessions than any listing page holds.
	for i := 0; i < 120; i++ {
		if err := mgr.Create(fmt.Sprintf("filler-%03d", i), "", ""); err != nil {
			t.Fatalf("create filler: %v", err)
		}
	}

	matches, err := mgr.Search("retro", nil, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 || matches[0].SessionID != "earliest" {
		t.Fatalf("least recently active session must stay searchable, got %+v", matches)
	}
}

func TestSearchTitleBonusWithMultibyteText(t *testing.T) {
	mgr, rec, _ := newTestManager(t)

	// 40 two-byte runes push the window cut past a rune boundary when
	// counted in bytes. The query still sits inside the leading window.
	lead := strings.Repeat("é", 40)
	if _, err := rec.Record("accents", lead+" deploy finished", "ok", nil, nil); err != nil {
		t.Fatalf("record: %v", err)
	}

	matches, err := mgr.Search("deploy", nil, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Relevance != 11 {
		t.Fatalf("expected leading-window bonus, got relevance %d", matches[0].Relevance)
	}
}
