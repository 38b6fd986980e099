package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Dt != DefaultDt || cfg.Duration != DefaultDuration {
		t.Errorf("unexpected defaults: dt=%f duration=%f", cfg.Dt, cfg.Duration)
	}
	if cfg.Sweep.Scale != "log" {
		t.Errorf("expected log sweep default, got %q", cfg.Sweep.Scale)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lesson.yaml")

	cfg := DefaultConfig()
	cfg.Plant = PlantConfig{Num: []float64{100, 20, 1}, Den: []float64{1, 3, 3, 1}}
	cfg.Method = "tustin"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded.Plant.Den) != 4 || loaded.Plant.Den[3] != 1 {
		t.Errorf("plant did not round-trip: %v", loaded.Plant.Den)
	}
	if loaded.Method != "tustin" {
		t.Errorf("expected method tustin, got %q", loaded.Method)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.yaml")

	data := []byte("plant:\n  num: [1]\n  den: [2, 1]\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Dt != DefaultDt {
		t.Errorf("expected default dt, got %f", cfg.Dt)
	}
	if cfg.Sweep.Points != DefaultPoints {
		t.Errorf("expected default sweep points, got %d", cfg.Sweep.Points)
	}
}

func TestValidateRejectsBadPlant(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Plant = PlantConfig{Num: []float64{1}, Den: []float64{1}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for constant denominator")
	}

	cfg.Plant = PlantConfig{Den: []float64{1, 1}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty numerator")
	}
}

func TestPresetsAreValid(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("preset %s not found", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestUnknownPreset(t *testing.T) {
	if GetPreset("no-such-plant") != nil {
		t.Error("expected nil for unknown preset")
	}
}
