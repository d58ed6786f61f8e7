package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoadOverridesOnlySetKeys(t *testing.T) {
	path := writeSettings(t, `
timezone = "Europe/Warsaw"
default_session_min = 45

[recommendation]
peak = "Guard {{time}} at all costs."
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Timezone != "Europe/Warsaw" || cfg.DefaultSessionMin != 45 {
		t.Errorf("Load() = %+v", cfg)
	}
	if !cfg.AutoBackup {
		t.Error("auto_backup should keep its default when omitted")
	}
	if cfg.Recommendation.Peak != "Guard {{time}} at all costs." {
		t.Errorf("Recommendation.Peak = %q", cfg.Recommendation.Peak)
	}

	loc, err := cfg.Location()
	if err != nil || loc.String() != "Europe/Warsaw" {
		t.Errorf("Location() = %v, %v", loc, err)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"unparsable", "timezone = ", "failed to parse"},
		{"unknown timezone", `timezone = "Mars/Olympus"`, "unknown timezone"},
		{"session too short", "default_session_min = 5", "default_session_min"},
		{"broken template", "[recommendation]\npeak = \"{{#time}} unclosed\"", "recommendation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeSettings(t, tt.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	cfg, err := Load(writeSettings(t, "theme = \"dark\"\ndebug = true\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug not decoded")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	want := Default()
	want.Timezone = "UTC"
	want.AutoBackup = false
	want.Recommendation.Secondary = "Also try {{second_time}}."

	if err := Save(path, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}
