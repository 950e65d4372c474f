package steps

import (
	"math/rand"

	"github.com/san-kum/dnamc/internal/helix"
)

// Aggregate resamples observed steps uniformly.
type Aggregate struct {
	classIndex
	classes [][]helix.Params
	pooled  []helix.Params
	avg     helix.Params
}

func NewAggregate(db *Database) (*Aggregate, error) {
	byName, err := db.params()
	if err != nil {
		return nil, err
	}
	a := &Aggregate{classIndex: newClassIndex(db.classNames())}
	a.classes = make([][]helix.Params, len(a.names))
	for i, name := range a.names {
		a.classes[i] = byName[name]
		a.pooled = append(a.pooled, byName[name]...)
	}
	if len(a.pooled) == 0 {
		return nil, ErrEmptyDatabase
	}
	for _, p := range a.pooled {
		for k := range p {
			a.avg[k] += p[k]
		}
	}
	for k := range a.avg {
		a.avg[k] /= float64(len(a.pooled))
	}
	return a, nil
}

func (a *Aggregate) Sample(r *rand.Rand) helix.Params {
	return a.pooled[r.Intn(len(a.pooled))]
}

func (a *Aggregate) SampleClass(r *rand.Rand, id int) helix.Params {
	c := a.classes[id]
	return c[r.Intn(len(c))]
}

func (a *Aggregate) Average() helix.Params { return a.avg }
