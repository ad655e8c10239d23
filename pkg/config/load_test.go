package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "0.0.0.0:8081"
  max_concurrent: 4
  admission_timeout: 2s
  stats_schedule: "@every 1m"

static:
  mounts:
    - pattern: "/assets/.*"
      root: "/static"
      path: "./public"
      watch: true
    - backend: sqlite
      path: "./bundle.db"

telemetry:
  logging:
    level: debug
    format: text
    redact_patterns:
      - name: session
        pattern: "sess-[a-z0-9]+"
        replacement: "[SESSION]"
  metrics:
    enabled: true
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:8081" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:8081", cfg.Server.ListenAddress)
	}
	if cfg.Server.MaxConcurrent != 4 {
		t.Errorf("expected max concurrent 4, got %d", cfg.Server.MaxConcurrent)
	}
	if cfg.Server.AdmissionTimeout != 2*time.Second {
		t.Errorf("expected admission timeout 2s, got %v", cfg.Server.AdmissionTimeout)
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("expected default read timeout, got %v", cfg.Server.ReadTimeout)
	}
	if len(cfg.Static.Mounts) != 2 {
		t.Fatalf("expected 2 mounts, got %d", len(cfg.Static.Mounts))
	}
	if !cfg.Static.Mounts[0].Watch || cfg.Static.Mounts[0].Root != "/static" {
		t.Errorf("unexpected first mount: %+v", cfg.Static.Mounts[0])
	}
	if cfg.Static.Mounts[1].Pattern != DefaultMountPattern || cfg.Static.Mounts[1].Backend != BackendSQLite {
		t.Errorf("unexpected second mount: %+v", cfg.Static.Mounts[1])
	}
	if len(cfg.Telemetry.Logging.RedactPatterns) != 1 || cfg.Telemetry.Logging.RedactPatterns[0].Replacement != "[SESSION]" {
		t.Errorf("unexpected redact patterns: %+v", cfg.Telemetry.Logging.RedactPatterns)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics to be enabled")
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			content: "server: [",
			wantErr: "failed to parse",
		},
		{
			name:    "unknown field",
			content: "server:\n  listen_port: 80\n",
			wantErr: "failed to parse",
		},
		{
			name:    "invalid value",
			content: "server:\n  max_concurrent: -3\n",
			wantErr: "server.max_concurrent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/lantern.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected defaults, got listen address %q", cfg.Server.ListenAddress)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  listen_address: \"127.0.0.1:8080\"\n")

	t.Setenv("LANTERN_SERVER_LISTEN_ADDRESS", "127.0.0.1:9191")
	t.Setenv("LANTERN_SERVER_MAX_CONCURRENT", "3")
	t.Setenv("LANTERN_SERVER_ADMISSION_TIMEOUT", "250ms")
	t.Setenv("LANTERN_TELEMETRY_LOGGING_LEVEL", "warn")
	t.Setenv("LANTERN_TELEMETRY_METRICS_ENABLED", "true")
	t.Setenv("LANTERN_TELEMETRY_TRACING_SAMPLE_RATIO", "0.25")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:9191" {
		t.Errorf("expected listen address override, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.MaxConcurrent != 3 {
		t.Errorf("expected max concurrent override, got %d", cfg.Server.MaxConcurrent)
	}
	if cfg.Server.AdmissionTimeout != 250*time.Millisecond {
		t.Errorf("expected admission timeout override, got %v", cfg.Server.AdmissionTimeout)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("expected level override, got %q", cfg.Telemetry.Logging.Level)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics override")
	}
	if cfg.Telemetry.Tracing.SampleRatio != 0.25 {
		t.Errorf("expected sample ratio override, got %v", cfg.Telemetry.Tracing.SampleRatio)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("LANTERN_SERVER_LISTEN_ADDRESS", "127.0.0.1:0")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.ListenAddress != "127.0.0.1:0" {
		t.Errorf("expected listen address override, got %q", cfg.Server.ListenAddress)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidValue(t *testing.T) {
	t.Setenv("LANTERN_SERVER_READ_TIMEOUT", "soon")

	_, err := LoadConfigWithEnvOverrides("")
	if err == nil {
		t.Fatal("expected error for unparsable override")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Errors[0].Field != "LANTERN_SERVER_READ_TIMEOUT" {
		t.Errorf("unexpected field %q", verr.Errors[0].Field)
	}
}
