package steps

import (
	_ "embed"
	"fmt"
	"math"
	"math/rand"
	"os"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/dnamc/internal/helix"
)

// Built-in Gaussian parameter sets, usable in place of a file path.
const (
	// DefaultGaussian pools all steps into one averaged B-DNA class.
	DefaultGaussian = "default"
	// DinucleotideGaussian is sequence-aware with one class per step.
	DinucleotideGaussian = "dinucleotide"
)

var (
	//go:embed default_gaussian.yaml
	defaultGaussianYAML []byte
	//go:embed dinucleotide_gaussian.yaml
	dinucleotideGaussianYAML []byte
)

var builtin = map[string][]byte{
	DefaultGaussian:      defaultGaussianYAML,
	DinucleotideGaussian: dinucleotideGaussianYAML,
}

// IsBuiltin reports whether name refers to an embedded parameter set.
func IsBuiltin(name string) bool {
	_, ok := builtin[name]
	return ok
}

// unit converts degrees to radians for the rotational components.
var unit = [6]float64{1, 1, 1, math.Pi / 180, math.Pi / 180, math.Pi / 180}

// GaussianFile is the on-disk form of a Gaussian parameter set. Means are in
// Angstrom/degrees, covariances in the matching squared units.
type GaussianFile struct {
	Name    string                   `yaml:"name"`
	Classes map[string]GaussianClass `yaml:"classes"`
}

type GaussianClass struct {
	Mean []float64   `yaml:"mean"`
	Cov  [][]float64 `yaml:"cov"`
}

type normal struct {
	mean helix.Params
	chol [6][6]float64
}

func newNormal(mean []float64, cov *mat.SymDense) (normal, error) {
	var n normal
	copy(n.mean[:], mean)

	var chol mat.Cholesky
	if !chol.Factorize(cov) {
		jittered := mat.NewSymDense(6, nil)
		jittered.CopySym(cov)
		for i := 0; i < 6; i++ {
			jittered.SetSym(i, i, jittered.At(i, i)+1e-10)
		}
		if !chol.Factorize(jittered) {
			return n, ErrDegenerate
		}
	}
	var l mat.TriDense
	chol.LTo(&l)
	for i := 0; i < 6; i++ {
		for j := 0; j <= i; j++ {
			n.chol[i][j] = l.At(i, j)
		}
	}
	return n, nil
}

func (n normal) draw(r *rand.Rand) helix.Params {
	var z [6]float64
	for i := range z {
		z[i] = r.NormFloat64()
	}
	p := n.mean
	for i := 0; i < 6; i++ {
		for j := 0; j <= i; j++ {
			p[i] += n.chol[i][j] * z[j]
		}
	}
	return p
}

// Gaussian draws steps from a multivariate normal per class.
type Gaussian struct {
	classIndex
	classes []normal
	pooled  normal
}

func (g *Gaussian) Sample(r *rand.Rand) helix.Params { return g.pooled.draw(r) }

func (g *Gaussian) SampleClass(r *rand.Rand, id int) helix.Params {
	return g.classes[id].draw(r)
}

func (g *Gaussian) Average() helix.Params { return g.pooled.mean }

// LoadGaussian reads a Gaussian parameter file, or a built-in set when
// path names one.
func LoadGaussian(path string) (*Gaussian, error) {
	data, ok := builtin[path]
	if !ok {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, err
		}
	}
	var gf GaussianFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return nil, fmt.Errorf("steps: parse %s: %w", path, err)
	}
	return NewGaussian(&gf)
}

// NewGaussian converts file units and factorizes every class covariance.
// Unconditioned draws use the equal-weight mixture moments of all classes.
func NewGaussian(gf *GaussianFile) (*Gaussian, error) {
	if len(gf.Classes) == 0 {
		return nil, ErrEmptyDatabase
	}
	names := make([]string, 0, len(gf.Classes))
	for name := range gf.Classes {
		names = append(names, name)
	}
	g := &Gaussian{classIndex: newClassIndex(names)}

	mixMean := make([]float64, 6)
	mixSecond := mat.NewSymDense(6, nil)
	for _, name := range g.names {
		c := gf.Classes[name]
		if len(c.Mean) != 6 || len(c.Cov) != 6 {
			return nil, fmt.Errorf("steps: class %s: need 6 means and a 6x6 covariance", name)
		}
		mean := make([]float64, 6)
		cov := mat.NewSymDense(6, nil)
		for i := 0; i < 6; i++ {
			mean[i] = c.Mean[i] * unit[i]
			if len(c.Cov[i]) != 6 {
				return nil, fmt.Errorf("steps: class %s: covariance row %d has %d entries", name, i, len(c.Cov[i]))
			}
			for j := i; j < 6; j++ {
				cov.SetSym(i, j, c.Cov[i][j]*unit[i]*unit[j])
			}
		}
		n, err := newNormal(mean, cov)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", name, err)
		}
		g.classes = append(g.classes, n)

		for i := 0; i < 6; i++ {
			mixMean[i] += mean[i]
			for j := i; j < 6; j++ {
				mixSecond.SetSym(i, j, mixSecond.At(i, j)+cov.At(i, j)+mean[i]*mean[j])
			}
		}
	}

	k := float64(len(g.names))
	pooledCov := mat.NewSymDense(6, nil)
	for i := 0; i < 6; i++ {
		mixMean[i] /= k
	}
	for i := 0; i < 6; i++ {
		for j := i; j < 6; j++ {
			pooledCov.SetSym(i, j, mixSecond.At(i, j)/k-mixMean[i]*mixMean[j])
		}
	}
	pooled, err := newNormal(mixMean, pooledCov)
	if err != nil {
		return nil, fmt.Errorf("pooled: %w", err)
	}
	g.pooled = pooled
	return g, nil
}

// FitGaussian estimates a Gaussian per class from observed steps.
func FitGaussian(db *Database) (*Gaussian, error) {
	byName, err := db.params()
	if err != nil {
		return nil, err
	}
	g := &Gaussian{classIndex: newClassIndex(db.classNames())}
	var all []helix.Params
	for _, name := range g.names {
		n, err := fitNormal(byName[name])
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", name, err)
		}
		g.classes = append(g.classes, n)
		all = append(all, byName[name]...)
	}
	if g.pooled, err = fitNormal(all); err != nil {
		return nil, fmt.Errorf("pooled: %w", err)
	}
	return g, nil
}

func fitNormal(ps []helix.Params) (normal, error) {
	if len(ps) < 2 {
		return normal{}, fmt.Errorf("%w: need at least 2 samples, got %d", ErrDegenerate, len(ps))
	}
	x := mat.NewDense(len(ps), 6, nil)
	for i, p := range ps {
		x.SetRow(i, p[:])
	}
	mean := make([]float64, 6)
	for j := 0; j < 6; j++ {
		mean[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}
	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, x, nil)
	return newNormal(mean, &cov)
}
