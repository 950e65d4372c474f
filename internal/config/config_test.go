package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/dnamc/internal/sim"
	"github.com/san-kum/dnamc/internal/steps"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.NumBasePairs != 100 {
		t.Errorf("expected 100 base pairs, got %d", cfg.NumBasePairs)
	}
	if cfg.RelaxStep != 100 || cfg.LinkRelaxStep != 100 {
		t.Errorf("unexpected relax defaults %d/%d", cfg.RelaxStep, cfg.LinkRelaxStep)
	}
	if cfg.Out != "MC_data.npz" {
		t.Errorf("expected default out MC_data.npz, got %s", cfg.Out)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if src := cfg.Source(); src.GaussianParams != steps.DefaultGaussian {
		t.Errorf("expected built-in gaussian source, got %+v", src)
	}
}

func TestValidate(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "db.yaml")
	if err := os.WriteFile(existing, []byte("steps: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"ok", func(c *Config) {}, nil},
		{"negative n_step", func(c *Config) { c.NumStep = -1 }, sim.ErrConfiguration},
		{"negative relax", func(c *Config) { c.RelaxStep = -1 }, sim.ErrConfiguration},
		{"zero kt", func(c *Config) { c.KT = 0 }, sim.ErrConfiguration},
		{"nan force", func(c *Config) { c.Force = math.NaN() }, sim.ErrConfiguration},
		{"two sources", func(c *Config) {
			c.ParamsFile = existing
			c.GaussianParams = steps.DefaultGaussian
		}, sim.ErrConfiguration},
		{"fit without database", func(c *Config) { c.GaussianSampling = true }, sim.ErrConfiguration},
		{"both link modes", func(c *Config) {
			c.ComputeExactLink = true
			c.ComputeFullerLink = true
		}, sim.ErrConfiguration},
		{"check with link", func(c *Config) {
			c.CheckFuller = "wr.txt"
			c.ComputeFullerLink = true
		}, sim.ErrConfiguration},
		{"seq conflicts with n_bp", func(c *Config) { c.Seq = "ACGT" }, sim.ErrConfiguration},
		{"seq fixes n_bp", func(c *Config) {
			c.Seq = "ACGT"
			c.NumBasePairs = 0
		}, nil},
		{"bad letters", func(c *Config) {
			c.Seq = "ACXT"
			c.NumBasePairs = 0
		}, sim.ErrConfiguration},
		{"missing params file", func(c *Config) { c.ParamsFile = "/nonexistent/db.yaml" }, sim.ErrMissingFile},
		{"missing in frame", func(c *Config) { c.InFrame = "/nonexistent/frame.csv" }, sim.ErrMissingFile},
		{"existing params file", func(c *Config) { c.ParamsFile = existing }, nil},
		{"in frame leaves n_bp open", func(c *Config) {
			c.InFrame = existing
			c.NumBasePairs = 0
		}, nil},
		{"negative n_bp with in frame", func(c *Config) {
			c.InFrame = existing
			c.NumBasePairs = -1
		}, sim.ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.NumStep = 10
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestTweezersTarget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TargetLink = link(2)

	if cfg.Tweezers().Trapped() {
		t.Error("target without stiffness must not trap")
	}

	cfg.TorsionalStiffness = 100
	target, ok := cfg.Tweezers().Target()
	if !ok || math.Abs(target-4*math.Pi) > 1e-12 {
		t.Errorf("expected target 4π rad, got %f (%v)", target, ok)
	}
}

func TestWritheMode(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Writhe() != sim.WritheNone {
		t.Error("expected no writhe by default")
	}
	cfg.ComputeFullerLink = true
	if cfg.Sim().Writhe != sim.WritheFuller {
		t.Error("expected fuller writhe")
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := GetPreset("plectoneme")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.TargetLink == nil || *loaded.TargetLink != 35 {
		t.Errorf("target link lost: %v", loaded.TargetLink)
	}
	if loaded.TorsionalStiffness != cfg.TorsionalStiffness || loaded.NumBasePairs != cfg.NumBasePairs {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestLoadLengthFromInputs(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		yaml string
		want int
	}{
		{"in-frame only", "n_step: 5\nin_frame: chain.csv\n", 0},
		{"sequence only", "n_step: 5\nseq: ACGT\n", 0},
		{"explicit n_bp kept", "n_step: 5\nin_frame: chain.csv\nn_bp: 9\n", 9},
		{"plain default", "n_step: 5\n", DefaultNumBasePairs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(path)
			if err != nil {
				t.Fatal(err)
			}
			if cfg.NumBasePairs != tt.want {
				t.Errorf("n_bp = %d, want %d", cfg.NumBasePairs, tt.want)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load("/nonexistent/run.yaml"); !errors.Is(err, sim.ErrMissingFile) {
		t.Errorf("expected ErrMissingFile, got %v", err)
	}
}

func TestDataDirFromEnv(t *testing.T) {
	t.Setenv(DataEnv, "/tmp/dnamc-test")
	if got := DataDir(); got != "/tmp/dnamc-test" {
		t.Errorf("DataDir() = %s", got)
	}
}

func TestPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != 4 {
		t.Fatalf("expected 4 presets, got %v", names)
	}
	for _, name := range names {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("preset %s missing", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetIsCopy(t *testing.T) {
	a := GetPreset("plectoneme")
	*a.TargetLink = 99
	if b := GetPreset("plectoneme"); *b.TargetLink != 35 {
		t.Error("preset mutated through returned config")
	}
}
