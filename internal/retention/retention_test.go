package retention

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/wawagot/convlog/internal/store"
)

func newTestSweeper(t *testing.T, maxAge time.Duration) (*Sweeper, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "convlog.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return New(Config{MaxAge: maxAge, Interval: time.Hour}, st), st
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	sw, st := newTestSweeper(t, 24*time.Hour)

	if err := st.CreateSession("sess", "", "", nil); err != nil {
		t.Fatalf("create session: %v", err)
	}
	now := time.Now().UTC()
	stamps := []time.Time{
		now.Add(-48 * time.Hour), // expired
		now.Add(-25 * time.Hour), // expired
		now.Add(-1 * time.Hour),  // fresh
		now,                      // fresh
	}
	for _, ts := range stamps {
		if _, err := st.InsertInteraction(&store.Interaction{SessionID: "sess", UserText: "x", Timestamp: ts}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	removed, err := sw.Sweep()
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}

	left, err := st.SessionInteractions("sess")
	if err != nil {
		t.Fatalf("session interactions: %v", err)
	}
	if len(left) != 2 {
		t.Fatalf("expected 2 surviving, got %d", len(left))
	}

	// A second sweep finds nothing new.
	removed, err = sw.Sweep()
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected idempotent sweep, removed %d", removed)
	}
}

func TestSweepEmptyStore(t *testing.T) {
	sw, _ := newTestSweeper(t, time.Hour)

	removed, err := sw.Sweep()
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected nothing removed, got %d", removed)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	sw := New(Config{}, nil)
	def := DefaultConfig()
	if sw.cfg.MaxAge != def.MaxAge || sw.cfg.Interval != def.Interval {
		t.Fatalf("expected defaults applied, got %+v", sw.cfg)
	}
}
