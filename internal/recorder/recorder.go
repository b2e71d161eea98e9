// Package recorder is the ingestion path: it persists interaction
// records, applies the at-rest transform, and emits the ingestion
// event that drives classification.
package recorder

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/wawagot/convlog/internal/codec"
	"github.com/wawagot/convlog/internal/store"
)

// IngestedPayload is the JSON body of an interaction_ingested event.
type IngestedPayload struct {
	InteractionID int64  `json:"interaction_id"`
	SessionID     string `json:"session_id"`
}

type Recorder struct {
	store *store.Store
	codec codec.Codec
}

// New creates a Recorder writing through the given store and codec.
func New(st *store.Store, c codec.Codec) *Recorder {
	return &Recorder{store: st, codec: c}
}

// Record persists one interaction. The session is created on first
// use; user/response/context text goes through the at-rest transform;
// on success an interaction_ingested event is enqueued and the
// session's last activity is bumped.
func (r *Recorder) Record(sessionID, userText, responseText string, context map[string]string, metadata map[string]string) (int64, error) {
	if sessionID == "" {
		return 0, fmt.Errorf("record: session id is required")
	}

	// Duplicate create is a no-op, so a racing creator still succeeds.
	if err := r.store.CreateSession(sessionID, "", "", nil); err != nil {
		return 0, fmt.Errorf("record: ensure session: %w", err)
	}

	contextJSON := ""
	if len(context) > 0 {
		b, err := json.Marshal(context)
		if err != nil {
			return 0, fmt.Errorf("record: marshal context: %w", err)
		}
		contextJSON = string(b)
	}
	metaJSON := ""
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err != nil {
			return 0, fmt.Errorf("record: marshal metadata: %w", err)
		}
		metaJSON = string(b)
	}

	// Fail closed: an encode error aborts the call before any write.
	encUser, err := r.codec.Encode(userText)
	if err != nil {
		return 0, fmt.Errorf("record: %w", err)
	}
	encResp, err := r.codec.Encode(responseText)
	if err != nil {
		return 0, fmt.Errorf("record: %w", err)
	}
	encCtx := ""
	if contextJSON != "" {
		if encCtx, err = r.codec.Encode(contextJSON); err != nil {
			return 0, fmt.Errorf("record: %w", err)
		}
	}

	id, err := r.store.InsertInteraction(&store.Interaction{
		SessionID:    sessionID,
		Timestamp:    time.Now().UTC(),
		UserText:     encUser,
		ResponseText: encResp,
		Context:      encCtx,
		Metadata:     metaJSON,
		Encrypted:    r.codec.Obfuscating(),
	})
	if err != nil {
		return 0, err
	}

	if err := r.store.TouchSession(sessionID); err != nil {
		slog.Warn("recorder: touch session failed", "session", sessionID, "error", err)
	}

	payload, _ := json.Marshal(IngestedPayload{InteractionID: id, SessionID: sessionID})
	if err := r.store.EnqueueEvent(&store.IntegrationEvent{
		EventType: store.EventInteractionIngested,
		Source:    store.ComponentRecorder,
		Target:    store.ComponentClassifier,
		Payload:   string(payload),
	}); err != nil {
		return 0, fmt.Errorf("record: enqueue event: %w", err)
	}

	slog.Info("interaction recorded", "session", sessionID, "interaction", id)
	return id, nil
}

// Decoded is one interaction with its text fields run back through
// the codec.
type Decoded struct {
	ID           int64
	SessionID    string
	Timestamp    time.Time
	UserText     string
	ResponseText string
	Context      string
	Metadata     map[string]string
}

// DecodeInteraction reverses the at-rest transform on one row.
// Decode of an unencoded row is the identity.
func (r *Recorder) DecodeInteraction(rec *store.Interaction) (*Decoded, error) {
	d := &Decoded{
		ID:        rec.ID,
		SessionID: rec.SessionID,
		Timestamp: rec.Timestamp,
	}
	var err error
	if rec.Encrypted {
		if d.UserText, err = r.codec.Decode(rec.UserText); err != nil {
			return nil, fmt.Errorf("decode interaction %d: %w", rec.ID, err)
		}
		if d.ResponseText, err = r.codec.Decode(rec.ResponseText); err != nil {
			return nil, fmt.Errorf("decode interaction %d: %w", rec.ID, err)
		}
		if rec.Context != "" {
			if d.Context, err = r.codec.Decode(rec.Context); err != nil {
				return nil, fmt.Errorf("decode interaction %d: %w", rec.ID, err)
			}
		}
	} else {
		d.UserText = rec.UserText
		d.ResponseText = rec.ResponseText
		d.Context = rec.Context
	}
	if rec.Metadata != "" {
		_ = json.Unmarshal([]byte(rec.Metadata), &d.Metadata)
	}
	return d, nil
}

// History returns the decoded interactions of a session, newest first.
func (r *Recorder) History(sessionID string, limit int) ([]Decoded, error) {
	recs, err := r.store.QueryInteractions(sessionID, "", limit)
	if err != nil {
		return nil, err
	}
	out := make([]Decoded, 0, len(recs))
	for i := range recs {
		d, err := r.DecodeInteraction(&recs[i])
		if err != nil {
			// A single malformed row does not abort the batch.
			slog.Warn("recorder: skipping undecodable interaction", "id", recs[i].ID, "error", err)
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}
