package sessionmgr

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wawagot/convlog/internal/recorder"
	"github.com/wawagot/convlog/internal/store"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

// exportDocument is the structured form of a JSON export.
type exportDocument struct {
	Session      *store.Session     `json:"session"`
	Interactions []recorder.Decoded `json:"interactions"`
	ExportedAt   time.Time          `json:"exported_at"`
	Total        int                `json:"total_interactions"`
}

// Export serializes a session header plus all of its interactions
// (decoded, chronological) to a file named
// <sessionID>_<timestamp>.<ext> in the export directory.
func (m *Manager) Export(sessionID, format string) (string, error) {
	if format != FormatJSON && format != FormatText {
		return "", fmt.Errorf("export: unsupported format %q", format)
	}

	sess, err := m.store.GetSession(sessionID)
	if err != nil {
		return "", err
	}

	recs, err := m.store.SessionInteractions(sessionID)
	if err != nil {
		return "", err
	}
	decoded := make([]recorder.Decoded, 0, len(recs))
	for i := range recs {
		d, err := m.recorder.DecodeInteraction(&recs[i])
		if err != nil {
			return "", fmt.Errorf("export: %w", err)
		}
		decoded = append(decoded, *d)
	}

	if err := os.MkdirAll(m.exportDir, 0o755); err != nil {
		return "", fmt.Errorf("export: create dir: %w", err)
	}
	ext := "json"
	if format == FormatText {
		ext = "txt"
	}
	name := fmt.Sprintf("%s_%s.%s", safeFileName(sessionID), time.Now().UTC().Format("20060102_150405"), ext)
	path := filepath.Join(m.exportDir, name)

	var data []byte
	switch format {
	case FormatJSON:
		doc := exportDocument{
			Session:      sess,
			Interactions: decoded,
			ExportedAt:   time.Now().UTC(),
			Total:        len(decoded),
		}
		data, err = json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", fmt.Errorf("export: marshal: %w", err)
		}
	case FormatText:
		data = []byte(renderTranscript(sess, decoded))
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("export: write file: %w", err)
	}

	if err := m.store.RecordExport(sessionID, format, path); err != nil {
		slog.Warn("export: record history failed", "session", sessionID, "error", err)
	}

	slog.Info("session exported", "session", sessionID, "format", format, "path", path)
	return path, nil
}

func renderTranscript(sess *store.Session, recs []recorder.Decoded) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", sess.SessionID)
	if sess.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", sess.Title)
	}
	if sess.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", sess.Description)
	}
	fmt.Fprintf(&b, "Status: %s\n", sess.Status)
	if len(sess.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(sess.Tags, ", "))
	}
	fmt.Fprintf(&b, "Exported: %s\n", time.Now().UTC().Format(time.RFC3339))
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	for _, rec := range recs {
		ts := rec.Timestamp.Format(time.RFC3339)
		fmt.Fprintf(&b, "[%s] User: %s\n", ts, rec.UserText)
		fmt.Fprintf(&b, "[%s] Assistant: %s\n\n", ts, rec.ResponseText)
	}
	return b.String()
}

// safeFileName strips path separators and traversal components so a
// session key cannot escape the export directory.
func safeFileName(key string) string {
	key = strings.ReplaceAll(key, "/", "_")
	key = strings.ReplaceAll(key, "\\", "_")
	key = strings.ReplaceAll(key, "..", "_")
	key = strings.ReplaceAll(key, ":", "_")
	return filepath.Base(key)
}
