package steps

import "fmt"

// Source selects where step samples come from.
type Source struct {
	Database         string
	GaussianParams   string
	GaussianSampling bool
}

// Mode names the sampling strategy Open will build.
func (s Source) Mode() string {
	switch {
	case s.GaussianParams != "":
		return "gaussian-params"
	case s.GaussianSampling:
		return "gaussian-fit"
	default:
		return "aggregate"
	}
}

// Open builds the sampler described by src.
func Open(src Source) (Sampler, error) {
	if src.GaussianParams != "" {
		return LoadGaussian(src.GaussianParams)
	}
	if src.Database == "" {
		return nil, fmt.Errorf("steps: a step database is required for %s sampling", src.Mode())
	}
	db, err := LoadDatabase(src.Database)
	if err != nil {
		return nil, err
	}
	if src.GaussianSampling {
		return FitGaussian(db)
	}
	return NewAggregate(db)
}
