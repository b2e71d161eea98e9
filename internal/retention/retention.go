// Package retention prunes interactions older than the configured
// maximum age on a fixed interval.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wawagot/convlog/internal/store"
)

// Config holds sweeper settings.
type Config struct {
	MaxAge   time.Duration `json:"maxAge"`
	Interval time.Duration `json:"interval"`
}

// DefaultConfig keeps ninety days of interactions, sweeping daily.
func DefaultConfig() Config {
	return Config{
		MaxAge:   90 * 24 * time.Hour,
		Interval: 24 * time.Hour,
	}
}

type Sweeper struct {
	cfg   Config
	store *store.Store
}

// New creates a Sweeper.
func New(cfg Config, st *store.Store) *Sweeper {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultConfig().MaxAge
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	return &Sweeper{cfg: cfg, store: st}
}

// Sweep deletes interactions strictly older than now minus MaxAge and
// returns the number removed. Rows exactly at the cutoff survive.
func (s *Sweeper) Sweep() (int64, error) {
	cutoff := time.Now().UTC().Add(-s.cfg.MaxAge)
	removed, err := s.store.DeleteInteractionsBefore(cutoff)
	if err != nil {
		return 0, fmt.Errorf("retention sweep: %w", err)
	}
	if removed > 0 {
		slog.Info("retention sweep removed interactions", "count", removed, "cutoff", cutoff)
	}
	return removed, nil
}

// Run sweeps on the configured interval until ctx is cancelled. A
// failed sweep is logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	slog.Info("retention sweeper started", "maxAge", s.cfg.MaxAge, "interval", s.cfg.Interval)
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Sweep(); err != nil {
				slog.Error("retention sweep failed", "error", err)
			}
		}
	}
}
