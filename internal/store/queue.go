package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// --- Integration event queue ---

// EnqueueEvent appends a pending event to the integration queue.
// EventID is generated when empty.
func (s *Store) EnqueueEvent(ev *IntegrationEvent) error {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.Status == "" {
		ev.Status = EventPending
	}
	if ev.Payload == "" {
		ev.Payload = "{}"
	}
	res, err := s.db.Exec(`
		INSERT INTO integration_events (event_id, event_type, source, target, payload, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ev.EventID, ev.EventType, ev.Source, ev.Target, ev.Payload, ev.Status)
	if err != nil {
		return wrapErr("enqueue event", err)
	}
	ev.ID, _ = res.LastInsertId()
	return nil
}

// DequeuePending returns up to limit pending events, oldest first.
// Rows are not locked; the single dispatch loop is the only consumer,
// and handlers must tolerate at-least-once delivery regardless.
func (s *Store) DequeuePending(limit int) ([]IntegrationEvent, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`
		SELECT id, event_id, event_type, COALESCE(source,''), COALESCE(target,''), COALESCE(payload,'{}'), status, created_at, processed_at
		FROM integration_events
		WHERE status = ?
		ORDER BY created_at ASC, id ASC
		LIMIT ?
	`, EventPending, limit)
	if err != nil {
		return nil, wrapErr("dequeue pending", err)
	}
	defer rows.Close()

	var events []IntegrationEvent
	for rows.Next() {
		var ev IntegrationEvent
		var processed sql.NullTime
		if err := rows.Scan(&ev.ID, &ev.EventID, &ev.EventType, &ev.Source, &ev.Target, &ev.Payload, &ev.Status, &ev.CreatedAt, &processed); err != nil {
			return nil, wrapErr("dequeue pending", err)
		}
		if processed.Valid {
			ev.ProcessedAt = &processed.Time
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// MarkEventStatus moves an event to its terminal status and stamps
// processed_at. processed_at is set iff status leaves pending.
func (s *Store) MarkEventStatus(id int64, status string) error {
	if status != EventCompleted && status != EventFailed {
		return &StoreError{Kind: KindConstraint, Op: "mark event status", Err: errInvalidStatus(status)}
	}
	res, err := s.db.Exec(`
		UPDATE integration_events SET status = ?, processed_at = ? WHERE id = ?
	`, status, time.Now().UTC(), id)
	if err != nil {
		return wrapErr("mark event status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("mark event status", "event")
	}
	return nil
}

// QueueDepth returns event counts grouped by status.
func (s *Store) QueueDepth() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM integration_events GROUP BY status`)
	if err != nil {
		return nil, wrapErr("queue depth", err)
	}
	defer rows.Close()

	depth := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, wrapErr("queue depth", err)
		}
		depth[status] = count
	}
	return depth, rows.Err()
}

// --- Component health ---

// UpsertComponentHealth records one health probe. connection_attempts
// increments on every probe; error_count only when the probe failed.
func (s *Store) UpsertComponentHealth(component string, connected bool) error {
	status := HealthDisconnected
	errInc := 1
	if connected {
		status = HealthConnected
		errInc = 0
	}
	now := time.Now().UTC()
	var lastConnected interface{}
	if connected {
		lastConnected = now
	}
	_, err := s.db.Exec(`
		INSERT INTO component_health (component, status, last_connected, connection_attempts, error_count, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(component) DO UPDATE SET
			status = excluded.status,
			last_connected = COALESCE(excluded.last_connected, component_health.last_connected),
			connection_attempts = component_health.connection_attempts + 1,
			error_count = component_health.error_count + ?,
			updated_at = excluded.updated_at
	`, component, status, lastConnected, errInc, now, errInc)
	return wrapErr("upsert component health", err)
}

// ListComponentHealth returns the health snapshot for all components.
func (s *Store) ListComponentHealth() ([]ComponentHealth, error) {
	rows, err := s.db.Query(`
		SELECT component, status, last_connected, connection_attempts, error_count, updated_at
		FROM component_health ORDER BY component
	`)
	if err != nil {
		return nil, wrapErr("list component health", err)
	}
	defer rows.Close()

	var out []ComponentHealth
	for rows.Next() {
		var ch ComponentHealth
		var last sql.NullTime
		if err := rows.Scan(&ch.Component, &ch.Status, &last, &ch.ConnectionAttempts, &ch.ErrorCount, &ch.UpdatedAt); err != nil {
			return nil, wrapErr("list component health", err)
		}
		if last.Valid {
			ch.LastConnected = &last.Time
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

type errInvalidStatus string

func (e errInvalidStatus) Error() string { return "invalid terminal status: " + string(e) }
