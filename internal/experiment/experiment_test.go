package experiment

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/dnamc/internal/config"
	"github.com/san-kum/dnamc/internal/helix"
	"github.com/san-kum/dnamc/internal/npz"
	"github.com/san-kum/dnamc/internal/sim"
	"github.com/san-kum/dnamc/internal/steps"
)

func smallConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.NumBasePairs = 12
	cfg.NumStep = 20
	cfg.RelaxStep = 5
	cfg.Force = 1
	cfg.ConstantSeed = true
	cfg.Seed = 3
	cfg.Out = filepath.Join(t.TempDir(), "MC_data.npz")
	return cfg
}

func TestSetupSequenceErrors(t *testing.T) {
	tests := []struct {
		name   string
		params string
		seq    string
		want   error
	}{
		{"pooled source", "", "ACGTACGT", sim.ErrConfiguration},
		{"uncovered step", steps.DinucleotideGaussian, "ACGU", sim.ErrSamplerExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig(t)
			cfg.GaussianParams = tt.params
			cfg.Seq = tt.seq
			cfg.NumBasePairs = 0
			if err := New(cfg).Setup(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSetupRunsValidation(t *testing.T) {
	cfg := smallConfig(t)
	cfg.NumStep = -4
	if err := New(cfg).Setup(); !errors.Is(err, sim.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestRunBeforeSetup(t *testing.T) {
	if _, err := New(smallConfig(t)).Run(context.Background()); err == nil {
		t.Error("expected error when running before setup")
	}
}

func TestRunWritesOutputs(t *testing.T) {
	cfg := smallConfig(t)
	cfg.ComputeFullerLink = true
	cfg.OutFrame = filepath.Join(t.TempDir(), "final.csv")

	exp := New(cfg)
	if err := exp.Setup(); err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := exp.WriteOutputs(res); err != nil {
		t.Fatal(err)
	}

	traj, err := npz.Load(cfg.Out)
	if err != nil {
		t.Fatal(err)
	}
	if len(traj.Coords) != 20 || len(traj.Frames) != 20 || len(traj.Writhe) != 20 {
		t.Errorf("trajectory lengths %d/%d/%d", len(traj.Coords), len(traj.Frames), len(traj.Writhe))
	}

	final, err := helix.Load(cfg.OutFrame)
	if err != nil {
		t.Fatal(err)
	}
	if final.NumBasePairs() != 12 {
		t.Errorf("final frame has %d base pairs", final.NumBasePairs())
	}
	for _, name := range []string{"accept_rate", "mean_extension", "lateral_rms", "mean_link_turns"} {
		if _, ok := res.Metrics[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}
}

func TestConstantSeedReproduces(t *testing.T) {
	run := func() *sim.Result {
		exp := New(smallConfig(t))
		if err := exp.Setup(); err != nil {
			t.Fatal(err)
		}
		res, err := exp.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return res
	}
	a, b := run(), run()
	if a.Coords[19] != b.Coords[19] || a.Accepted != b.Accepted {
		t.Error("constant seed runs differ")
	}
}

func TestInFrameSetsLength(t *testing.T) {
	frame := filepath.Join(t.TempDir(), "in.csv")
	c, err := helix.New(7, helix.Params{0, 0, 3.4, 0, 0, 0.6})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Save(frame); err != nil {
		t.Fatal(err)
	}

	cfg := smallConfig(t)
	cfg.NumBasePairs = 0
	cfg.InFrame = frame
	cfg.NumStep = 0
	cfg.RelaxStep = 0
	cfg.OutFrame = filepath.Join(t.TempDir(), "out.csv")
	exp := New(cfg)
	if err := exp.Setup(); err != nil {
		t.Fatal(err)
	}
	if got := exp.Config().BasePairs(); got != 7 {
		t.Errorf("config reports %d base pairs, want 7 from in-frame", got)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := exp.WriteOutputs(res); err != nil {
		t.Fatal(err)
	}
	out, err := helix.Load(cfg.OutFrame)
	if err != nil {
		t.Fatal(err)
	}
	if out.NumBasePairs() != 7 {
		t.Errorf("expected 7 base pairs from in-frame, got %d", out.NumBasePairs())
	}
}

func TestInFrameLengthConflict(t *testing.T) {
	frame := filepath.Join(t.TempDir(), "in.csv")
	c, err := helix.New(7, helix.Params{0, 0, 3.4, 0, 0, 0.6})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Save(frame); err != nil {
		t.Fatal(err)
	}

	cfg := smallConfig(t)
	cfg.InFrame = frame
	if err := New(cfg).Setup(); !errors.Is(err, sim.ErrConfiguration) {
		t.Errorf("n_bp 12 with a 7 bp in-frame: expected ErrConfiguration, got %v", err)
	}

	cfg.NumBasePairs = 7
	if err := New(cfg).Setup(); err != nil {
		t.Errorf("matching n_bp: %v", err)
	}
}

func TestCheckMode(t *testing.T) {
	cfg := smallConfig(t)
	cfg.CheckFuller = filepath.Join(t.TempDir(), "writhe.txt")

	exp := New(cfg)
	if err := exp.Setup(); err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := exp.WriteOutputs(res); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cfg.Out); !os.IsNotExist(err) {
		t.Error("check mode must not write the trajectory archive")
	}

	data, err := os.ReadFile(cfg.CheckFuller)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 20 {
		t.Errorf("expected 20 lines, got %d", len(lines))
	}

	if _, err := exp.Ensemble(context.Background(), 2); !errors.Is(err, sim.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for check-mode ensemble, got %v", err)
	}
}

func TestEnsemble(t *testing.T) {
	cfg := smallConfig(t)
	cfg.SnapshotPrefix = filepath.Join(t.TempDir(), "snap")
	cfg.NumStep = 2

	exp := New(cfg)
	if err := exp.Setup(); err != nil {
		t.Fatal(err)
	}
	results, err := exp.Ensemble(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if _, err := helix.Load(cfg.SnapshotPrefix + "_r2_1.csv"); err != nil {
		t.Errorf("replica snapshot missing: %v", err)
	}
}
