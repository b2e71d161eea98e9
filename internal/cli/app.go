package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/wawagot/convlog/internal/backup"
	"github.com/wawagot/convlog/internal/classifier"
	"github.com/wawagot/convlog/internal/codec"
	"github.com/wawagot/convlog/internal/config"
	"github.com/wawagot/convlog/internal/coordinator"
	"github.com/wawagot/convlog/internal/recorder"
	"github.com/wawagot/convlog/internal/sessionmgr"
	"github.com/wawagot/convlog/internal/store"
)

// app bundles the wired components every command needs.
type app struct {
	cfg        *config.Config
	store      *store.Store
	recorder   *recorder.Recorder
	classifier *classifier.Classifier
	sessions   *sessionmgr.Manager
	backups    *backup.Manager
}

// openApp loads config, opens the store, and wires the components.
// Callers must Close when done.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.EnsureDir(filepath.Dir(cfg.Paths.DBPath)); err != nil {
		return nil, fmt.Errorf("prepare data dir: %w", err)
	}
	st, err := store.Open(cfg.Paths.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	rec := recorder.New(st, codec.ForMode(cfg.Codec.Obfuscate))
	lex := classifier.DefaultLexicon()
	if len(cfg.Classifier.PositiveWords) > 0 {
		lex.Positive = cfg.Classifier.PositiveWords
	}
	if len(cfg.Classifier.NegativeWords) > 0 {
		lex.Negative = cfg.Classifier.NegativeWords
	}

	return &app{
		cfg:        cfg,
		store:      st,
		recorder:   rec,
		classifier: classifier.New(st, rec, lex),
		sessions:   sessionmgr.New(st, rec, cfg.Paths.ExportDir),
		backups:    backup.New(cfg.Backup, st),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// newCoordinator builds the event coordinator with the standard
// handler and probe set.
func (a *app) newCoordinator() *coordinator.Coordinator {
	coord := coordinator.New(a.cfg.Coordinator, a.store)

	coord.Register(store.EventInteractionIngested, func(ev store.IntegrationEvent) error {
		var p recorder.IngestedPayload
		if err := json.Unmarshal([]byte(ev.Payload), &p); err != nil {
			return fmt.Errorf("decode ingested payload: %w", err)
		}
		_, err := a.classifier.Classify(p.InteractionID)
		return err
	})
	coord.Register(store.EventInteractionClassified, func(ev store.IntegrationEvent) error {
		var p classifier.ClassifiedPayload
		if err := json.Unmarshal([]byte(ev.Payload), &p); err != nil {
			return fmt.Errorf("decode classified payload: %w", err)
		}
		return a.sessions.Touch(p.SessionID)
	})
	coord.Register(store.EventBackupCreated, func(ev store.IntegrationEvent) error {
		// Archive bookkeeping already happened; the event exists so
		// downstream consumers see backups in the same queue.
		return nil
	})

	ping := func() bool { return a.store.DB().Ping() == nil }
	coord.RegisterProbe(coordinator.Probe{Name: store.ComponentRecorder, Check: ping})
	coord.RegisterProbe(coordinator.Probe{Name: store.ComponentClassifier, Check: ping})
	coord.RegisterProbe(coordinator.Probe{Name: store.ComponentSessionManager, Check: ping})
	coord.RegisterProbe(coordinator.Probe{Name: store.ComponentBackup, Check: ping})
	return coord
}
