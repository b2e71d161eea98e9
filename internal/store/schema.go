package store

import (
	"time"
)

// Session groups interaction records that share a logical context.
type Session struct {
	ID           int64             `json:"id"`
	SessionID    string            `json:"session_id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Status       string            `json:"status"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActivity time.Time         `json:"last_activity"`
}

// Interaction is one logged exchange tied to a session. Rows are
// immutable once written; only the retention sweeper removes them.
type Interaction struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"session_id"`
	Timestamp    time.Time `json:"timestamp"`
	UserText     string    `json:"user_text"`
	ResponseText string    `json:"response_text"`
	Context      string    `json:"context,omitempty"`
	Metadata     string    `json:"metadata,omitempty"` // JSON blob
	Encrypted    bool      `json:"encrypted"`
}

// Category is one user-defined classification bucket.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Priority    string    `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
}

// Keyword carries a relative weight within its category.
type Keyword struct {
	ID         int64     `json:"id"`
	CategoryID int64     `json:"category_id"`
	Term       string    `json:"term"`
	Weight     float64   `json:"weight"`
	CreatedAt  time.Time `json:"created_at"`
}

// FilterResult is one (interaction, matched category) classification row.
type FilterResult struct {
	ID              int64     `json:"id"`
	InteractionID   int64     `json:"interaction_id"`
	CategoryID      int64     `json:"category_id"`
	Confidence      float64   `json:"confidence"`
	MatchedKeywords []string  `json:"matched_keywords,omitempty"`
	Sentiment       float64   `json:"sentiment"`
	Priority        string    `json:"priority"`
	CreatedAt       time.Time `json:"created_at"`
}

// IntegrationEvent is a durable, queued unit of cross-component work.
// Status transitions pending -> completed|failed exactly once.
type IntegrationEvent struct {
	ID          int64      `json:"id"`
	EventID     string     `json:"event_id"`
	EventType   string     `json:"event_type"`
	Source      string     `json:"source"`
	Target      string     `json:"target"`
	Payload     string     `json:"payload"` // JSON blob
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// ComponentHealth is the last-known liveness record for one subsystem.
type ComponentHealth struct {
	Component          string     `json:"component"`
	Status             string     `json:"status"`
	LastConnected      *time.Time `json:"last_connected,omitempty"`
	ConnectionAttempts int        `json:"connection_attempts"`
	ErrorCount         int        `json:"error_count"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// BackupRecord tracks one backup run.
type BackupRecord struct {
	BackupID    string     `json:"backup_id"`
	Path        string     `json:"path"`
	SizeBytes   int64      `json:"size_bytes"`
	FileCount   int        `json:"file_count"`
	Status      string     `json:"status"`
	ErrorText   string     `json:"error_text,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ExportRecord tracks one session export.
type ExportRecord struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Format    string    `json:"format"`
	FilePath  string    `json:"file_path"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	SessionActive   = "active"
	SessionArchived = "archived"

	EventPending   = "pending"
	EventCompleted = "completed"
	EventFailed    = "failed"

	HealthConnected    = "connected"
	HealthDisconnected = "disconnected"

	BackupPending   = "pending"
	BackupCompleted = "completed"
	BackupFailed    = "failed"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Event types and component names used on the integration queue.
const (
	EventInteractionIngested   = "interaction_ingested"
	EventInteractionClassified = "interaction_classified"
	EventBackupCreated         = "backup_created"

	ComponentRecorder       = "recorder"
	ComponentClassifier     = "classifier"
	ComponentSessionManager = "session_manager"
	ComponentBackup         = "backup"
	ComponentCoordinator    = "coordinator"
)

const Schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT UNIQUE NOT NULL,
	title TEXT DEFAULT '',
	description TEXT DEFAULT '',
	status TEXT NOT NULL DEFAULT 'active',
	metadata TEXT DEFAULT '{}',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_activity DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
CREATE INDEX IF NOT EXISTS idx_sessions_activity ON sessions(last_activity);

CREATE TABLE IF NOT EXISTS tags (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT UNIQUE NOT NULL,
	color TEXT DEFAULT '#007bff',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS session_tags (
	session_id INTEGER NOT NULL,
	tag_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (session_id, tag_id),
	FOREIGN KEY (session_id) REFERENCES sessions(id),
	FOREIGN KEY (tag_id) REFERENCES tags(id)
);

CREATE TABLE IF NOT EXISTS interactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	user_text TEXT,
	response_text TEXT,
	context TEXT DEFAULT '',
	metadata TEXT DEFAULT '',
	encrypted BOOLEAN NOT NULL DEFAULT 0,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);
CREATE INDEX IF NOT EXISTS idx_interactions_session ON interactions(session_id);
CREATE INDEX IF NOT EXISTS idx_interactions_timestamp ON interactions(timestamp);

CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT UNIQUE NOT NULL,
	description TEXT DEFAULT '',
	priority TEXT NOT NULL DEFAULT 'medium',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS keywords (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	category_id INTEGER NOT NULL,
	term TEXT NOT NULL,
	weight REAL NOT NULL DEFAULT 1.0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (category_id) REFERENCES categories(id)
);
CREATE INDEX IF NOT EXISTS idx_keywords_category ON keywords(category_id);

CREATE TABLE IF NOT EXISTS filter_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	interaction_id INTEGER NOT NULL,
	category_id INTEGER NOT NULL,
	confidence REAL NOT NULL DEFAULT 0,
	matched_keywords TEXT DEFAULT '[]',
	sentiment REAL NOT NULL DEFAULT 0,
	priority TEXT NOT NULL DEFAULT 'low',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (interaction_id) REFERENCES interactions(id),
	FOREIGN KEY (category_id) REFERENCES categories(id)
);
CREATE INDEX IF NOT EXISTS idx_filter_results_interaction ON filter_results(interaction_id);
CREATE INDEX IF NOT EXISTS idx_filter_results_category ON filter_results(category_id);

CREATE TABLE IF NOT EXISTS integration_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id TEXT UNIQUE NOT NULL,
	event_type TEXT NOT NULL,
	source TEXT DEFAULT '',
	target TEXT DEFAULT '',
	payload TEXT DEFAULT '{}',
	status TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	processed_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_events_status ON integration_events(status);
CREATE INDEX IF NOT EXISTS idx_events_created ON integration_events(created_at);

CREATE TABLE IF NOT EXISTS component_health (
	component TEXT PRIMARY KEY,
	status TEXT NOT NULL DEFAULT 'disconnected',
	last_connected DATETIME,
	connection_attempts INTEGER NOT NULL DEFAULT 0,
	error_count INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS backup_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	backup_id TEXT UNIQUE NOT NULL,
	path TEXT DEFAULT '',
	size_bytes INTEGER NOT NULL DEFAULT 0,
	file_count INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'pending',
	error_text TEXT DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	completed_at DATETIME
);

CREATE TABLE IF NOT EXISTS exports (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	format TEXT NOT NULL,
	file_path TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_exports_session ON exports(session_id);
`
