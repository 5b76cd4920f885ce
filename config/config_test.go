package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"siren-node/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("SIREN_ID", "siren-42")

	path := writeConfig(t, `
siren:
  id: ${SIREN_ID}
server:
  url: wss://fleet.example.com/ws
tts:
  base_url: http://localhost:5002
translate:
  base_url: http://localhost:5003
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Siren.ID != "siren-42" {
		t.Errorf("siren id: got %q, want env-expanded siren-42", cfg.Siren.ID)
	}
	if cfg.Server.URL != "wss://fleet.example.com/ws" {
		t.Errorf("server url: got %q", cfg.Server.URL)
	}

	// Defaults fill everything the file omits.
	if cfg.Server.ProbeAttempts != 10 {
		t.Errorf("probe attempts: got %d, want 10", cfg.Server.ProbeAttempts)
	}
	if cfg.Audio.DeviceHint != "usb" {
		t.Errorf("device hint: got %q, want usb", cfg.Audio.DeviceHint)
	}
	if cfg.Audio.MaxInitAttempts != 5 {
		t.Errorf("init attempts: got %d, want 5", cfg.Audio.MaxInitAttempts)
	}
	if len(cfg.Connectivity.WiredInterfaces) != 2 {
		t.Errorf("wired interfaces: got %v", cfg.Connectivity.WiredInterfaces)
	}
	if cfg.Connectivity.CellularInterface != "ppp0" {
		t.Errorf("cellular interface: got %q", cfg.Connectivity.CellularInterface)
	}
	if cfg.Health.Addr != ":9090" {
		t.Errorf("health addr: got %q", cfg.Health.Addr)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("log defaults: got %+v", cfg.Log)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing siren id", "server:\n  url: wss://x\ntts:\n  base_url: http://x\n"},
		{"missing server url", "siren:\n  id: s1\ntts:\n  base_url: http://x\n"},
		{"missing tts url", "siren:\n  id: s1\nserver:\n  url: wss://x\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := config.Load(writeConfig(t, tc.content)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
