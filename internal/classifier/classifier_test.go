package classifier

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/wawagot/convlog/internal/codec"
	"github.com/wawagot/convlog/internal/recorder"
	"github.com/wawagot/convlog/internal/store"
)

func newTestClassifier(t *testing.T) (*Classifier, *recorder.Recorder, *store.Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "convlog.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	rec := recorder.New(st, codec.Base64{})
	return New(st, rec, DefaultLexicon()), rec, st
}

func mustCategory(t *testing.T, st *store.Store, name string, keywords map[string]float64) int64 {
	t.Helper()
	id, err := st.CreateCategory(name, "", store.PriorityMedium)
	if err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	for term, weight := range keywords {
		if err := st.AddKeyword(id, term, weight); err != nil {
			t.Fatalf("add keyword %s: %v", term, err)
		}
	}
	return id
}

func TestClassifyConfidencePerCategory(t *testing.T) {
	cl, rec, st := newTestClassifier(t)

	bugsID := mustCategory(t, st, "bugs", map[string]float64{"error": 1, "crash": 1})
	setupID := mustCategory(t, st, "setup", map[string]float64{"install": 1})

	id, err := rec.Record("sess-c", "I got an error during install", "try reinstalling", nil, nil)
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	results, err := cl.Classify(id)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected both categories matched, got %d", len(results))
	}

	byCategory := map[int64]store.FilterResult{}
	for _, r := range results {
		byCategory[r.CategoryID] = r
	}
	// bugs matched "error" only: 1 of 2 total weight.
	if got := byCategory[bugsID].Confidence; math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("bugs confidence: got %v want 0.5", got)
	}
	// setup matched its only keyword.
	if got := byCategory[setupID].Confidence; math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("setup confidence: got %v want 1.0", got)
	}
	for _, r := range results {
		if r.Confidence < 0 || r.Confidence > 1 {
			t.Fatalf("confidence out of bounds: %v", r.Confidence)
		}
	}

	// Results are persisted per category.
	stored, err := st.ListFilterResults(id)
	if err != nil {
		t.Fatalf("list filter results: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored results, got %d", len(stored))
	}
}

func TestClassifyNoMatches(t *testing.T) {
	cl, rec, st := newTestClassifier(t)
	mustCategory(t, st, "bugs", map[string]float64{"error": 1})

	id, err := rec.Record("sess-n", "completely unrelated", "indeed", nil, nil)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	results, err := cl.Classify(id)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestClassifyEnqueuesClassifiedEvent(t *testing.T) {
	cl, rec, st := newTestClassifier(t)
	mustCategory(t, st, "bugs", map[string]float64{"error": 1})

	id, err := rec.Record("sess-e", "an error happened", "noted", nil, nil)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := cl.Classify(id); err != nil {
		t.Fatalf("classify: %v", err)
	}

	pending, err := st.DequeuePending(10)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	var classified int
	for _, ev := range pending {
		if ev.EventType == store.EventInteractionClassified {
			classified++
		}
	}
	if classified != 1 {
		t.Fatalf("expected one classified event, got %d", classified)
	}
}

func TestSentiment(t *testing.T) {
	cl, _, _ := newTestClassifier(t)

	if got := cl.Sentiment("I love this"); got <= 0 {
		t.Fatalf("expected positive sentiment, got %v", got)
	}
	if got := cl.Sentiment("this is terrible and broken"); got >= 0 {
		t.Fatalf("expected negative sentiment, got %v", got)
	}
	if got := cl.Sentiment(""); got != 0 {
		t.Fatalf("expected zero sentiment for empty text, got %v", got)
	}
	for _, text := range []string{"love", "hate", "love love hate"} {
		if got := cl.Sentiment(text); got < -1 || got > 1 {
			t.Fatalf("sentiment out of bounds for %q: %v", text, got)
		}
	}
}

func TestDerivePriority(t *testing.T) {
	cases := []struct {
		confidence float64
		sentiment  float64
		want       string
	}{
		{0.9, 0, store.PriorityHigh},
		{0, 0.8, store.PriorityHigh},
		{0, -0.8, store.PriorityHigh},
		{0.6, 0, store.PriorityMedium},
		{0, 0.5, store.PriorityMedium},
		{0.3, 0.1, store.PriorityLow},
		{0, 0, store.PriorityLow},
	}
	for _, tc := range cases {
		if got := derivePriority(tc.confidence, tc.sentiment); got != tc.want {
			t.Fatalf("derivePriority(%v, %v) = %q, want %q", tc.confidence, tc.sentiment, got, tc.want)
		}
	}
}

func TestScoreCategorySkipsNonPositiveWeights(t *testing.T) {
	kws := []store.Keyword{
		{Term: "error", Weight: 1},
		{Term: "crash", Weight: 0},
		{Term: "panic", Weight: -2},
	}
	conf, found := scoreCategory("an error and a crash", kws)
	if conf != 1.0 {
		t.Fatalf("bad weights must not dilute the score, got %v", conf)
	}
	if len(found) != 1 || found[0] != "error" {
		t.Fatalf("unexpected matches: %v", found)
	}
}

func TestSeedDefaultsIdempotent(t *testing.T) {
	cl, _, st := newTestClassifier(t)

	if err := cl.SeedDefaults(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cats, err := st.ListCategories()
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) == 0 {
		t.Fatalf("expected seeded categories")
	}

	if err := cl.SeedDefaults(); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	again, err := st.ListCategories()
	if err != nil {
		t.Fatalf("list categories after reseed: %v", err)
	}
	if len(again) != len(cats) {
		t.Fatalf("reseed must not add categories: %d -> %d", len(cats), len(again))
	}
	for _, cat := range again {
		kws, err := st.ListKeywords(cat.ID)
		if err != nil {
			t.Fatalf("list keywords: %v", err)
		}
		seen := map[string]bool{}
		for _, kw := range kws {
			if seen[kw.Term] {
				t.Fatalf("duplicate keyword %q in %s after reseed", kw.Term, cat.Name)
			}
			seen[kw.Term] = true
		}
	}
}
