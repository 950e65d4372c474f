package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dnamc/internal/score"
	"github.com/san-kum/dnamc/internal/sim"
	"github.com/san-kum/dnamc/internal/steps"
)

const (
	DefaultNumBasePairs  = 100
	DefaultRelaxStep     = 100
	DefaultLinkRelaxStep = 100
	DefaultOut           = "MC_data.npz"
	DefaultMaxRamp       = sim.DefaultMaxRampSweeps

	// DataEnv overrides the directory holding the run registry.
	DataEnv = "DNAMC_DATA"
)

// Config is a run description. Every field mirrors a flag of `dnamc run`.
type Config struct {
	NumBasePairs     int    `yaml:"n_bp"`
	NumStep          int    `yaml:"n_step"`
	Seq              string `yaml:"seq,omitempty"`
	ParamsFile       string `yaml:"params_file,omitempty"`
	GaussianParams   string `yaml:"gaussian_params,omitempty"`
	GaussianSampling bool   `yaml:"gaussian_sampling,omitempty"`

	Force              float64 `yaml:"force"`
	TorsionalStiffness float64 `yaml:"torsional_stiffness"`
	// TargetLink is in turns; nil leaves the linking number free.
	TargetLink  *float64 `yaml:"target_link,omitempty"`
	XYStiffness float64  `yaml:"xy_stiffness"`
	KT          float64  `yaml:"kt"`

	RelaxStep     int `yaml:"relax_step"`
	LinkRelaxStep int `yaml:"link_relax_step"`
	MaxRampSweeps int `yaml:"max_ramp_sweeps"`

	ComputeExactLink  bool   `yaml:"compute_exact_link,omitempty"`
	ComputeFullerLink bool   `yaml:"compute_fuller_link,omitempty"`
	CheckFuller       string `yaml:"check_fuller,omitempty"`

	Out            string `yaml:"out"`
	OutFrame       string `yaml:"out_frame,omitempty"`
	InFrame        string `yaml:"in_frame,omitempty"`
	SnapshotPrefix string `yaml:"snapshot_prefix,omitempty"`

	Seed         int64 `yaml:"seed"`
	ConstantSeed bool  `yaml:"constant_seed,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		NumBasePairs:  DefaultNumBasePairs,
		KT:            score.DefaultKT,
		RelaxStep:     DefaultRelaxStep,
		LinkRelaxStep: DefaultLinkRelaxStep,
		MaxRampSweeps: DefaultMaxRamp,
		Out:           DefaultOut,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", sim.ErrMissingFile, path)
		}
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", sim.ErrConfiguration, path, err)
	}

	// a sequence or saved chain sets the length unless n_bp is given
	if cfg.Seq != "" || cfg.InFrame != "" {
		var keys map[string]any
		if err := yaml.Unmarshal(data, &keys); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", sim.ErrConfiguration, path, err)
		}
		if _, ok := keys["n_bp"]; !ok {
			cfg.NumBasePairs = 0
		}
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DataDir is where the run registry lives: $DNAMC_DATA, else ~/.dnamc.
func DataDir() string {
	if dir := os.Getenv(DataEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dnamc"
	}
	return filepath.Join(home, ".dnamc")
}

// BasePairs is the chain length implied by the config. A sequence fixes it;
// with in_frame and no n_bp it is known once the experiment is set up.
func (c *Config) BasePairs() int {
	if c.Seq != "" {
		return len(c.Seq)
	}
	return c.NumBasePairs
}

func (c *Config) Source() steps.Source {
	src := steps.Source{
		Database:         c.ParamsFile,
		GaussianParams:   c.GaussianParams,
		GaussianSampling: c.GaussianSampling,
	}
	if src.Database == "" && src.GaussianParams == "" {
		src.GaussianParams = steps.DefaultGaussian
	}
	return src
}

func (c *Config) Writhe() sim.WritheMode {
	switch {
	case c.ComputeExactLink:
		return sim.WritheExact
	case c.ComputeFullerLink:
		return sim.WritheFuller
	}
	return sim.WritheNone
}

// Tweezers builds the final score functional with the target converted
// from turns to radians.
func (c *Config) Tweezers() score.Tweezers {
	t := score.Tweezers{
		Force:              c.Force,
		TorsionalStiffness: c.TorsionalStiffness,
		XYStiffness:        c.XYStiffness,
		KT:                 c.KT,
	}
	if c.TargetLink != nil && c.TorsionalStiffness != 0 {
		t = t.WithTarget(*c.TargetLink * 2 * math.Pi)
	}
	return t
}

func (c *Config) Sim() sim.Config {
	return sim.Config{
		NumStep:        c.NumStep,
		RelaxStep:      c.RelaxStep,
		LinkRelaxStep:  c.LinkRelaxStep,
		Writhe:         c.Writhe(),
		RampIncrement:  sim.DefaultRampIncrement,
		MaxRampSweeps:  c.MaxRampSweeps,
		SnapshotPrefix: c.SnapshotPrefix,
	}
}

// Validate reports the first inconsistency. It only touches the filesystem
// to check that inputs exist.
func (c *Config) Validate() error {
	if c.NumStep < 0 {
		return fmt.Errorf("%w: n_step must be non-negative, got %d", sim.ErrConfiguration, c.NumStep)
	}
	if c.RelaxStep < 0 || c.LinkRelaxStep < 0 {
		return fmt.Errorf("%w: relax_step and link_relax_step must be non-negative", sim.ErrConfiguration)
	}
	if c.MaxRampSweeps < 0 {
		return fmt.Errorf("%w: max_ramp_sweeps must be non-negative", sim.ErrConfiguration)
	}
	if c.KT <= 0 {
		return fmt.Errorf("%w: kt must be positive, got %g", sim.ErrConfiguration, c.KT)
	}
	if c.TorsionalStiffness < 0 || c.XYStiffness < 0 {
		return fmt.Errorf("%w: stiffnesses must be non-negative", sim.ErrConfiguration)
	}
	for name, v := range map[string]float64{
		"force":               c.Force,
		"torsional_stiffness": c.TorsionalStiffness,
		"xy_stiffness":        c.XYStiffness,
		"kt":                  c.KT,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", sim.ErrConfiguration, name)
		}
	}

	if c.ParamsFile != "" && c.GaussianParams != "" {
		return fmt.Errorf("%w: params_file and gaussian_params are mutually exclusive", sim.ErrConfiguration)
	}
	if c.GaussianSampling && c.ParamsFile == "" {
		return fmt.Errorf("%w: gaussian_sampling needs params_file", sim.ErrConfiguration)
	}

	if c.Seq != "" {
		if c.NumBasePairs != 0 && c.NumBasePairs != len(c.Seq) {
			return fmt.Errorf("%w: n_bp %d conflicts with sequence length %d",
				sim.ErrConfiguration, c.NumBasePairs, len(c.Seq))
		}
		if !validSeq(c.Seq) {
			return fmt.Errorf("%w: sequence may only contain A, C, G, T, U", sim.ErrConfiguration)
		}
	} else if c.InFrame == "" && c.NumBasePairs < 1 {
		return fmt.Errorf("%w: n_bp must be at least 1, got %d", sim.ErrConfiguration, c.NumBasePairs)
	}
	if c.NumBasePairs < 0 {
		return fmt.Errorf("%w: n_bp must be non-negative, got %d", sim.ErrConfiguration, c.NumBasePairs)
	}

	if c.ComputeExactLink && c.ComputeFullerLink {
		return fmt.Errorf("%w: compute_exact_link and compute_fuller_link are mutually exclusive", sim.ErrConfiguration)
	}
	if c.CheckFuller != "" && (c.ComputeExactLink || c.ComputeFullerLink) {
		return fmt.Errorf("%w: check_fuller cannot be combined with link output", sim.ErrConfiguration)
	}
	if c.CheckFuller == "" && c.Out == "" {
		return fmt.Errorf("%w: out is required", sim.ErrConfiguration)
	}

	inputs := []string{c.ParamsFile, c.InFrame}
	if !steps.IsBuiltin(c.GaussianParams) {
		inputs = append(inputs, c.GaussianParams)
	}
	for _, path := range inputs {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: %s", sim.ErrMissingFile, path)
		}
	}
	return nil
}

func validSeq(seq string) bool {
	for _, r := range strings.ToUpper(seq) {
		switch r {
		case 'A', 'C', 'G', 'T', 'U':
		default:
			return false
		}
	}
	return true
}
