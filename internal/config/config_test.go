package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Training.Difficulty != nil || cfg.Sink.Kind != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[training]
difficulty = "hard"
user = "learner"

[sink]
kind = "http"
url = "http://localhost:3001/api/training/record"
timeout = "3s"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Training.Difficulty == nil || *cfg.Training.Difficulty != "hard" {
		t.Fatalf("unexpected difficulty: %v", cfg.Training.Difficulty)
	}
	if cfg.Training.Catalog != nil {
		t.Fatalf("expected absent catalog to stay nil")
	}
	if cfg.Sink.Timeout == nil || cfg.Sink.Timeout.Duration != 3*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.Sink.Timeout)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %v", cfg.Log.Level)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[training]\nwords = 25\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "training.words") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestParseSinkKind(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: SinkStore},
		{in: "HTTP", want: SinkHTTP},
		{in: " amqp ", want: SinkAMQP},
		{in: "none", want: SinkNone},
		{in: "kafka", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSinkKind(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParseSinkKind(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, ok := ParseLevel("DEBUG"); !ok || lvl != slog.LevelDebug {
		t.Fatalf("unexpected debug level: %v %v", lvl, ok)
	}
	if lvl, ok := ParseLevel("warning"); !ok || lvl != slog.LevelWarn {
		t.Fatalf("unexpected warn level: %v %v", lvl, ok)
	}
	if lvl, ok := ParseLevel("verbose"); ok || lvl != slog.LevelInfo {
		t.Fatalf("expected info fallback, got %v %v", lvl, ok)
	}
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "wordtally", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultCatalogPath(); got != filepath.Join("/cfg", "wordtally", "catalog.toml") {
		t.Fatalf("unexpected catalog path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "wordtally", "wordtally.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/data", "wordtally", "wordtally.log") {
		t.Fatalf("unexpected log path %q", got)
	}
}
