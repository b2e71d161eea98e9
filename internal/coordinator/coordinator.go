// Package coordinator runs the durable integration event queue: a
// polling dispatch loop that wires recorder output to the classifier
// and session manager, plus a periodic component health check.
package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wawagot/convlog/internal/store"
)

// HandlerFunc processes one dequeued event. A nil return marks the
// event completed; an error marks it failed. Either way the status is
// terminal: failed events are not retried.
type HandlerFunc func(ev store.IntegrationEvent) error

// Probe checks liveness of one registered component.
type Probe struct {
	Name  string
	Check func() bool
}

// Config holds coordinator loop settings.
type Config struct {
	PollInterval   time.Duration `json:"pollInterval"`
	HealthInterval time.Duration `json:"healthInterval"`
	BatchSize      int           `json:"batchSize"`
	DrainTimeout   time.Duration `json:"drainTimeout"`
}

// DefaultConfig returns sensible coordinator defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval:   5 * time.Second,
		HealthInterval: 5 * time.Minute,
		BatchSize:      10,
		DrainTimeout:   10 * time.Second,
	}
}

type Coordinator struct {
	cfg      Config
	store    *store.Store
	handlers map[string]HandlerFunc
	probes   []Probe
	mu       sync.RWMutex
}

// New creates a Coordinator.
func New(cfg Config, st *store.Store) *Coordinator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.HealthInterval <= 0 {
		cfg.HealthInterval = DefaultConfig().HealthInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = DefaultConfig().DrainTimeout
	}
	return &Coordinator{
		cfg:      cfg,
		store:    st,
		handlers: make(map[string]HandlerFunc),
	}
}

// Register installs the handler for an event type.
func (c *Coordinator) Register(eventType string, fn HandlerFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[eventType] = fn
	slog.Info("coordinator handler registered", "type", eventType)
}

// RegisterProbe adds a component to the health check rotation.
func (c *Coordinator) RegisterProbe(p Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes = append(c.probes, p)
}

// Run starts the dispatch loop and blocks until ctx is cancelled.
// On cancellation the in-flight batch is drained (bounded by
// DrainTimeout) before returning; no new batch is started.
func (c *Coordinator) Run(ctx context.Context) error {
	slog.Info("coordinator started", "poll", c.cfg.PollInterval, "batch", c.cfg.BatchSize)
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("coordinator stopped")
			return ctx.Err()
		case <-ticker.C:
			c.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch dequeues and dispatches up to one batch of pending
// events. Exported so callers with their own scheduling (and tests)
// can drive the queue directly.
func (c *Coordinator) ProcessBatch(ctx context.Context) {
	events, err := c.store.DequeuePending(c.cfg.BatchSize)
	if err != nil {
		slog.Error("coordinator: dequeue failed", "error", err)
		return
	}

	var cancelledAt time.Time
	for _, ev := range events {
		if ctx.Err() != nil {
			if cancelledAt.IsZero() {
				cancelledAt = time.Now()
			}
			if time.Since(cancelledAt) > c.cfg.DrainTimeout {
				slog.Warn("coordinator: drain timeout, leaving remaining events pending")
				return
			}
		}
		c.dispatch(ev)
	}
}

// dispatch runs one event's handler and records the terminal status.
// A handler error never aborts the batch.
func (c *Coordinator) dispatch(ev store.IntegrationEvent) {
	c.mu.RLock()
	handler, ok := c.handlers[ev.EventType]
	c.mu.RUnlock()

	status := store.EventCompleted
	if !ok {
		slog.Warn("coordinator: no handler for event", "type", ev.EventType, "id", ev.ID)
		status = store.EventFailed
	} else if err := handler(ev); err != nil {
		slog.Error("coordinator: handler failed", "type", ev.EventType, "id", ev.ID, "error", err)
		status = store.EventFailed
	}

	if err := c.store.MarkEventStatus(ev.ID, status); err != nil {
		slog.Error("coordinator: mark status failed", "id", ev.ID, "error", err)
	}
}

// RunHealth starts the periodic health check loop and blocks until
// ctx is cancelled.
func (c *Coordinator) RunHealth(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.HealthInterval)
	defer ticker.Stop()

	c.CheckHealth()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.CheckHealth()
		}
	}
}

// CheckHealth probes every registered component once and upserts the
// result. connection_attempts increments on every probe.
func (c *Coordinator) CheckHealth() {
	c.mu.RLock()
	probes := make([]Probe, len(c.probes))
	copy(probes, c.probes)
	c.mu.RUnlock()

	for _, p := range probes {
		connected := p.Check != nil && p.Check()
		if err := c.store.UpsertComponentHealth(p.Name, connected); err != nil {
			slog.Error("coordinator: health upsert failed", "component", p.Name, "error", err)
		}
	}
}
