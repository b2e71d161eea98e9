package store

import (
	"database/sql"
	"time"
)

// --- Backup history ---

// InsertBackup records a new backup run in pending state.
func (s *Store) InsertBackup(backupID, path string) error {
	_, err := s.db.Exec(`INSERT INTO backup_history (backup_id, path, status) VALUES (?, ?, ?)`,
		backupID, path, BackupPending)
	return wrapErr("insert backup", err)
}

// UpdateBackupStatus finalizes a backup run.
func (s *Store) UpdateBackupStatus(backupID, status string, sizeBytes int64, fileCount int, errText string) error {
	res, err := s.db.Exec(`
		UPDATE backup_history
		SET status = ?, size_bytes = ?, file_count = ?, error_text = ?, completed_at = ?
		WHERE backup_id = ?
	`, status, sizeBytes, fileCount, errText, time.Now().UTC(), backupID)
	if err != nil {
		return wrapErr("update backup status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("update backup status", "backup")
	}
	return nil
}

// ListBackups returns backup records, newest first.
func (s *Store) ListBackups(limit int) ([]BackupRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT backup_id, COALESCE(path,''), size_bytes, file_count, status, COALESCE(error_text,''), created_at, completed_at
		FROM backup_history ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, wrapErr("list backups", err)
	}
	defer rows.Close()

	var out []BackupRecord
	for rows.Next() {
		var b BackupRecord
		var completed sql.NullTime
		if err := rows.Scan(&b.BackupID, &b.Path, &b.SizeBytes, &b.FileCount, &b.Status, &b.ErrorText, &b.CreatedAt, &completed); err != nil {
			return nil, wrapErr("list backups", err)
		}
		if completed.Valid {
			b.CompletedAt = &completed.Time
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteBackup removes one backup record (used when pruning).
func (s *Store) DeleteBackup(backupID string) error {
	_, err := s.db.Exec(`DELETE FROM backup_history WHERE backup_id = ?`, backupID)
	return wrapErr("delete backup", err)
}

// --- Export history ---

// RecordExport logs a completed session export.
func (s *Store) RecordExport(sessionID, format, filePath string) error {
	_, err := s.db.Exec(`INSERT INTO exports (session_id, format, file_path) VALUES (?, ?, ?)`,
		sessionID, format, filePath)
	return wrapErr("record export", err)
}

// ExportHistory returns export records, optionally for one session.
func (s *Store) ExportHistory(sessionID string) ([]ExportRecord, error) {
	query := `SELECT id, session_id, format, file_path, created_at FROM exports`
	args := []interface{}{}
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, wrapErr("export history", err)
	}
	defer rows.Close()

	var out []ExportRecord
	for rows.Next() {
		var e ExportRecord
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Format, &e.FilePath, &e.CreatedAt); err != nil {
			return nil, wrapErr("export history", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
