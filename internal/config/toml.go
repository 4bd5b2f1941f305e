// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Sink kinds accepted in the [sink] section.
const (
	SinkStore = "store"
	SinkHTTP  = "http"
	SinkAMQP  = "amqp"
	SinkNone  = "none"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Training TrainingConfig `toml:"training"`
	Sink     SinkConfig     `toml:"sink"`
	Log      LogConfig      `toml:"log"`
}

// TrainingConfig maps session settings.
type TrainingConfig struct {
	Difficulty *string `toml:"difficulty"`
	User       *string `toml:"user"`
	Catalog    *string `toml:"catalog"`
}

// SinkConfig selects where submitted records go.
type SinkConfig struct {
	Kind    *string   `toml:"kind"`
	URL     *string   `toml:"url"`
	Queue   *string   `toml:"queue"`
	Timeout *Duration `toml:"timeout"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
}

// Duration decodes TOML strings such as "5s" into a time.Duration.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return FileConfig{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

// ParseSinkKind normalises a sink kind.
func ParseSinkKind(kind string) (string, error) {
	switch k := strings.ToLower(strings.TrimSpace(kind)); k {
	case SinkStore, SinkHTTP, SinkAMQP, SinkNone:
		return k, nil
	case "":
		return SinkStore, nil
	default:
		return "", fmt.Errorf("unknown sink kind %q (want store, http, amqp or none)", kind)
	}
}

// ParseLevel maps a level name to a slog level. ok is false for unknown names, which
// fall back to info.
func ParseLevel(name string) (level slog.Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
