// Package classifier scores interactions against the user-defined
// category/keyword taxonomy and a lexicon-based sentiment heuristic.
// It is purely computational apart from store I/O, so it is safe to
// run from the coordinator's dispatch loop.
package classifier

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wawagot/convlog/internal/recorder"
	"github.com/wawagot/convlog/internal/store"
)

// ClassifiedPayload is the JSON body of an interaction_classified event.
type ClassifiedPayload struct {
	InteractionID int64    `json:"interaction_id"`
	SessionID     string   `json:"session_id"`
	Categories    []string `json:"categories"`
}

// Lexicon holds the sentiment word lists.
type Lexicon struct {
	Positive []string
	Negative []string
}

// DefaultLexicon returns a small general-purpose sentiment lexicon.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Positive: []string{"good", "great", "love", "thanks", "thank", "excellent", "happy", "glad", "perfect", "nice"},
		Negative: []string{"bad", "terrible", "hate", "angry", "broken", "awful", "wrong", "sad", "fail", "worse"},
	}
}

type Classifier struct {
	store    *store.Store
	recorder *recorder.Recorder
	lexicon  Lexicon
}

// New creates a Classifier reading interactions through rec so text is
// decoded before matching.
func New(st *store.Store, rec *recorder.Recorder, lex Lexicon) *Classifier {
	return &Classifier{store: st, recorder: rec, lexicon: lex}
}

// Classify scores one interaction against every category, persists a
// result row per matched category, and enqueues the classified event.
func (c *Classifier) Classify(interactionID int64) ([]store.FilterResult, error) {
	rec, err := c.store.GetInteraction(interactionID)
	if err != nil {
		return nil, err
	}
	decoded, err := c.recorder.DecodeInteraction(rec)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	text := decoded.UserText + " " + decoded.ResponseText

	cats, err := c.store.ListCategories()
	if err != nil {
		return nil, err
	}

	sentiment := c.Sentiment(text)

	type match struct {
		category   store.Category
		confidence float64
		keywords   []string
	}
	var matches []match
	maxConfidence := 0.0

	for _, cat := range cats {
		kws, err := c.store.ListKeywords(cat.ID)
		if err != nil {
			return nil, err
		}
		confidence, found := scoreCategory(text, kws)
		if confidence <= 0 {
			continue
		}
		if confidence > maxConfidence {
			maxConfidence = confidence
		}
		matches = append(matches, match{category: cat, confidence: confidence, keywords: found})
	}

	priority := derivePriority(maxConfidence, sentiment)

	var results []store.FilterResult
	for _, m := range matches {
		fr := store.FilterResult{
			InteractionID:   interactionID,
			CategoryID:      m.category.ID,
			Confidence:      m.confidence,
			MatchedKeywords: m.keywords,
			Sentiment:       sentiment,
			Priority:        priority,
		}
		if _, err := c.store.InsertFilterResult(&fr); err != nil {
			return nil, err
		}
		results = append(results, fr)
	}

	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.category.Name
	}
	payload, _ := json.Marshal(ClassifiedPayload{
		InteractionID: interactionID,
		SessionID:     rec.SessionID,
		Categories:    names,
	})
	if err := c.store.EnqueueEvent(&store.IntegrationEvent{
		EventType: store.EventInteractionClassified,
		Source:    store.ComponentClassifier,
		Target:    store.ComponentSessionManager,
		Payload:   string(payload),
	}); err != nil {
		return nil, err
	}

	slog.Info("interaction classified", "interaction", interactionID, "categories", len(matches), "priority", priority)
	return results, nil
}

// scoreCategory computes matched-weight / total-weight with
// case-insensitive substring matching. A term contributes its full
// weight once regardless of frequency. Keywords with non-positive
// weights are skipped (the category is still scored from the rest).
func scoreCategory(text string, kws []store.Keyword) (float64, []string) {
	lower := strings.ToLower(text)
	var totalWeight, matchedWeight float64
	var found []string
	for _, kw := range kws {
		if kw.Weight <= 0 {
			slog.Warn("classifier: skipping keyword with non-positive weight", "term", kw.Term, "weight", kw.Weight)
			continue
		}
		totalWeight += kw.Weight
		if strings.Contains(lower, strings.ToLower(kw.Term)) {
			found = append(found, kw.Term)
			matchedWeight += kw.Weight
		}
	}
	if totalWeight <= 0 {
		return 0, nil
	}
	return matchedWeight / totalWeight, found
}

// Sentiment counts lexicon hits and normalizes by word count:
// (positive - negative) / max(1, words), clamped to [-1, 1].
func (c *Classifier) Sentiment(text string) float64 {
	lower := strings.ToLower(text)
	var pos, neg int
	for _, w := range c.lexicon.Positive {
		if strings.Contains(lower, strings.ToLower(w)) {
			pos++
		}
	}
	for _, w := range c.lexicon.Negative {
		if strings.Contains(lower, strings.ToLower(w)) {
			neg++
		}
	}
	words := len(strings.Fields(text))
	if words < 1 {
		words = 1
	}
	score := float64(pos-neg) / float64(words)
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}

func derivePriority(maxConfidence, sentiment float64) string {
	abs := sentiment
	if abs < 0 {
		abs = -abs
	}
	switch {
	case maxConfidence > 0.8 || abs > 0.7:
		return store.PriorityHigh
	case maxConfidence > 0.5 || abs > 0.4:
		return store.PriorityMedium
	default:
		return store.PriorityLow
	}
}
