package config

import (
	"os"
	"path/filepath"
	"testing"

	"dual-subtitle-burner/internal/domain"
)

// TestDefaultSettings verifies baseline defaults are present.
func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.Preset != domain.PresetNone {
		t.Fatalf("preset = %q, want none", cfg.Preset)
	}
	if cfg.Style1.FontFamily != "SimSun" || cfg.Style2.FontFamily != "Gotham Medium" {
		t.Fatalf("unexpected default fonts: %q / %q", cfg.Style1.FontFamily, cfg.Style2.FontFamily)
	}
	if cfg.Style1.VerticalMargin != 35 || cfg.Style2.VerticalMargin != 5 {
		t.Fatalf("unexpected default margins: %d / %d", cfg.Style1.VerticalMargin, cfg.Style2.VerticalMargin)
	}
	if cfg.OutputDir == "" {
		t.Fatal("expected non-empty output dir")
	}
}

// TestJSONStoreLoadMissingReturnsDefaults checks first-run behavior.
func TestJSONStoreLoadMissingReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "settings.json")
	store := NewJSONStore(path)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Preset != domain.PresetNone {
		t.Fatalf("preset = %q, want none", got.Preset)
	}
}

// TestJSONStoreSaveAndLoadRoundTrip checks persisted settings fidelity.
func TestJSONStoreSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	store := NewJSONStore(path)
	want := domain.Settings{
		Style1:    domain.DefaultStyle(domain.SlotPrimary),
		Style2:    domain.DefaultStyle(domain.SlotSecondary),
		Preset:    domain.PresetSecondaryOnly,
		OutputDir: "/out",
	}
	want.Style2.PrimaryColor = domain.RGB{R: 255, G: 200, B: 0}
	want.Style2.OutlineEnabled = false

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("settings = %+v, want %+v", got, want)
	}
}

// TestJSONStoreLoadInvalidJSON checks parse error handling.
func TestJSONStoreLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not-json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewJSONStore(path)
	if _, err := store.Load(); err == nil {
		t.Fatal("expected json parse error")
	}
}

// TestJSONStoreBackfillsMissingPreset upgrades files from older versions.
func TestJSONStoreBackfillsMissingPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"outputDir":"/out"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := NewJSONStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Preset != domain.PresetNone {
		t.Fatalf("preset = %q, want backfilled none", got.Preset)
	}
}
