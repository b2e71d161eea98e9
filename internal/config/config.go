// Package config loads convlog configuration from file and
// environment, with environment taking precedence.
package config

import (
	"path/filepath"

	"github.com/wawagot/convlog/internal/backup"
	"github.com/wawagot/convlog/internal/coordinator"
	"github.com/wawagot/convlog/internal/retention"
)

// PathsConfig groups filesystem locations. Empty derived paths are
// filled from DataDir at load time.
type PathsConfig struct {
	DataDir   string `json:"dataDir" envconfig:"DATA_DIR"`
	DBPath    string `json:"dbPath" envconfig:"DB_PATH"`
	ExportDir string `json:"exportDir" envconfig:"EXPORT_DIR"`
}

// CodecConfig controls interaction text encoding at rest.
type CodecConfig struct {
	Obfuscate bool `json:"obfuscate" envconfig:"OBFUSCATE"`
}

// ClassifierConfig lets deployments override the sentiment lexicon.
// Empty slices fall back to the built-in word lists.
type ClassifierConfig struct {
	PositiveWords []string `json:"positiveWords" envconfig:"POSITIVE_WORDS"`
	NegativeWords []string `json:"negativeWords" envconfig:"NEGATIVE_WORDS"`
}

// Config is the root configuration.
type Config struct {
	Paths       PathsConfig        `json:"paths"`
	Codec       CodecConfig        `json:"codec"`
	Coordinator coordinator.Config `json:"coordinator"`
	Retention   retention.Config   `json:"retention"`
	Backup      backup.Config      `json:"backup"`
	Classifier  ClassifierConfig   `json:"classifier"`
}

// DefaultConfig returns the built-in defaults. Paths are relative to
// the config home and resolved during Load.
func DefaultConfig() *Config {
	return &Config{
		Codec:       CodecConfig{Obfuscate: true},
		Coordinator: coordinator.DefaultConfig(),
		Retention:   retention.DefaultConfig(),
		Backup:      backup.DefaultConfig(),
	}
}

// resolveDerivedPaths fills empty path fields from DataDir.
func resolveDerivedPaths(cfg *Config) {
	if cfg.Paths.DBPath == "" {
		cfg.Paths.DBPath = filepath.Join(cfg.Paths.DataDir, "convlog.db")
	}
	if cfg.Paths.ExportDir == "" {
		cfg.Paths.ExportDir = filepath.Join(cfg.Paths.DataDir, "exports")
	}
	if cfg.Backup.Dir == "" {
		cfg.Backup.Dir = filepath.Join(cfg.Paths.DataDir, "backups")
	}
	if len(cfg.Backup.Sources) == 0 {
		cfg.Backup.Sources = []string{cfg.Paths.DBPath, cfg.Paths.ExportDir}
	}
}
