package config

import (
	"sort"

	"github.com/san-kum/dnamc/internal/steps"
)

func link(turns float64) *float64 { return &turns }

// Presets are starting points for common tweezers experiments. Flags
// given alongside a preset override its values.
var Presets = map[string]*Config{
	"free": {
		NumBasePairs: 100, NumStep: 1000, RelaxStep: 100,
	},
	"stretch": {
		NumBasePairs: 200, NumStep: 5000, RelaxStep: 200,
		Force: 2, XYStiffness: 0.001,
	},
	"plectoneme": {
		NumBasePairs: 300, NumStep: 2000, RelaxStep: 200, LinkRelaxStep: 200,
		Force: 1, TorsionalStiffness: 1000, TargetLink: link(35),
		ComputeFullerLink: true,
	},
	"sequence": {
		Seq:       "GCGCATATGCGCAAATTTGCGCATATGCGC",
		NumStep:   2000,
		RelaxStep: 100,
		Force:     5,
		// the built-in dinucleotide set is the only sequence-aware default
		GaussianParams: steps.DinucleotideGaussian,
	},
}

// GetPreset returns a full config for name, defaults filled in, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.NumBasePairs = p.NumBasePairs
	cfg.NumStep = p.NumStep
	cfg.Seq = p.Seq
	cfg.GaussianParams = p.GaussianParams
	cfg.Force = p.Force
	cfg.TorsionalStiffness = p.TorsionalStiffness
	cfg.XYStiffness = p.XYStiffness
	cfg.ComputeFullerLink = p.ComputeFullerLink
	if p.TargetLink != nil {
		cfg.TargetLink = link(*p.TargetLink)
	}
	if p.RelaxStep != 0 {
		cfg.RelaxStep = p.RelaxStep
	}
	if p.LinkRelaxStep != 0 {
		cfg.LinkRelaxStep = p.LinkRelaxStep
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
