// Package backup creates zip archives of configured source paths and
// tracks their history, pruning the oldest archives past a cap.
package backup

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wawagot/convlog/internal/store"
)

// Config holds backup manager settings.
type Config struct {
	Dir        string        `json:"dir"`
	Sources    []string      `json:"sources"`
	Exclude    []string      `json:"exclude"`
	Interval   time.Duration `json:"interval"`
	MaxBackups int           `json:"maxBackups"`
}

// DefaultConfig backs up daily and keeps the last ten archives.
func DefaultConfig() Config {
	return Config{
		Exclude:    []string{".git", "node_modules", "__pycache__", ".tmp"},
		Interval:   24 * time.Hour,
		MaxBackups: 10,
	}
}

type Manager struct {
	cfg   Config
	store *store.Store
}

// New creates a Manager.
func New(cfg Config, st *store.Store) *Manager {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = DefaultConfig().MaxBackups
	}
	return &Manager{cfg: cfg, store: st}
}

// Create runs one backup cycle: a pending history row is written
// first, then the archive, then the row is flipped to completed or
// failed. Returns the backup ID.
func (m *Manager) Create() (string, error) {
	backupID := "backup_" + time.Now().UTC().Format("20060102_150405")
	archivePath := filepath.Join(m.cfg.Dir, backupID+".zip")

	if err := os.MkdirAll(m.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	if err := m.store.InsertBackup(backupID, archivePath); err != nil {
		return "", fmt.Errorf("record backup: %w", err)
	}

	fileCount, err := m.writeArchive(archivePath)
	if err != nil {
		if markErr := m.store.UpdateBackupStatus(backupID, store.BackupFailed, 0, 0, err.Error()); markErr != nil {
			slog.Error("backup: mark failed status", "id", backupID, "error", markErr)
		}
		return backupID, fmt.Errorf("backup %s: %w", backupID, err)
	}

	info, err := os.Stat(archivePath)
	var size int64
	if err == nil {
		size = info.Size()
	}
	if err := m.store.UpdateBackupStatus(backupID, store.BackupCompleted, size, fileCount, ""); err != nil {
		return backupID, fmt.Errorf("finalize backup %s: %w", backupID, err)
	}

	ev := &store.IntegrationEvent{
		EventType: store.EventBackupCreated,
		Source:    store.ComponentBackup,
		Target:    store.ComponentCoordinator,
		Payload:   fmt.Sprintf(`{"backupId":%q,"sizeBytes":%d,"fileCount":%d}`, backupID, size, fileCount),
	}
	if err := m.store.EnqueueEvent(ev); err != nil {
		slog.Warn("backup: enqueue event failed", "id", backupID, "error", err)
	}

	slog.Info("backup completed", "id", backupID, "sizeBytes", size, "files", fileCount)

	if err := m.Prune(); err != nil {
		slog.Warn("backup: prune failed", "error", err)
	}
	return backupID, nil
}

// writeArchive zips every configured source into archivePath and
// returns the number of files written.
func (m *Manager) writeArchive(archivePath string) (int, error) {
	f, err := os.Create(archivePath)
	if err != nil {
		return 0, fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	count := 0
	for _, src := range m.cfg.Sources {
		n, err := m.addSource(zw, src)
		if err != nil {
			zw.Close()
			return 0, err
		}
		count += n
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("close archive: %w", err)
	}
	return count, nil
}

func (m *Manager) addSource(zw *zip.Writer, src string) (int, error) {
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("backup: source missing, skipping", "path", src)
			return 0, nil
		}
		return 0, fmt.Errorf("stat %s: %w", src, err)
	}

	if !info.IsDir() {
		if err := m.addFile(zw, src, filepath.Base(src)); err != nil {
			return 0, err
		}
		return 1, nil
	}

	count := 0
	base := filepath.Base(src)
	err = filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if m.excluded(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if err := m.addFile(zw, path, filepath.Join(base, rel)); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk %s: %w", src, err)
	}
	return count, nil
}

func (m *Manager) addFile(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer src.Close()

	w, err := zw.Create(filepath.ToSlash(name))
	if err != nil {
		return fmt.Errorf("archive entry %s: %w", name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (m *Manager) excluded(name string) bool {
	for _, pat := range m.cfg.Exclude {
		if name == pat || strings.HasSuffix(name, pat) {
			return true
		}
	}
	return false
}

// Prune removes the oldest completed archives beyond MaxBackups, both
// the file on disk and the history row.
func (m *Manager) Prune() error {
	records, err := m.store.ListBackups(1000)
	if err != nil {
		return err
	}
	var completed []store.BackupRecord
	for _, rec := range records {
		if rec.Status == store.BackupCompleted {
			completed = append(completed, rec)
		}
	}
	if len(completed) <= m.cfg.MaxBackups {
		return nil
	}
	// ListBackups is newest first; everything past the cap goes.
	for _, rec := range completed[m.cfg.MaxBackups:] {
		if err := os.Remove(rec.Path); err != nil && !os.IsNotExist(err) {
			slog.Warn("backup: remove archive failed", "path", rec.Path, "error", err)
			continue
		}
		if err := m.store.DeleteBackup(rec.BackupID); err != nil {
			slog.Warn("backup: remove history row failed", "id", rec.BackupID, "error", err)
			continue
		}
		slog.Info("backup pruned", "id", rec.BackupID)
	}
	return nil
}

// Run creates backups on the configured interval until ctx is
// cancelled. Failures are logged and retried on the next tick.
func (m *Manager) Run(ctx context.Context) error {
	slog.Info("backup manager started", "interval", m.cfg.Interval, "dir", m.cfg.Dir)
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("backup manager stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := m.Create(); err != nil {
				slog.Error("backup failed", "error", err)
			}
		}
	}
}
