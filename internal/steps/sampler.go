package steps

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/san-kum/dnamc/internal/helix"
)

// Sampler draws candidate base-pair steps.
type Sampler interface {
	// Sample draws from all classes pooled together.
	Sample(r *rand.Rand) helix.Params
	// SampleClass draws from the class returned by Lookup.
	SampleClass(r *rand.Rand, id int) helix.Params
	Lookup(pair string) (int, error)
	SequenceAware() bool
	// Average is the mean step, used to initialize chains.
	Average() helix.Params
}

// classIndex maps class names to dense ids.
type classIndex struct {
	names []string
	ids   map[string]int
	aware bool
}

func newClassIndex(names []string) classIndex {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	idx := classIndex{names: sorted, ids: make(map[string]int, len(sorted)), aware: len(sorted) > 0}
	for i, n := range sorted {
		idx.ids[n] = i
		if !isDinucleotide(n) {
			idx.aware = false
		}
	}
	return idx
}

func (c classIndex) Lookup(pair string) (int, error) {
	if !c.aware {
		return 0, ErrNotSequenceAware
	}
	id, ok := c.ids[strings.ToUpper(pair)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDinucleotide, pair)
	}
	return id, nil
}

func (c classIndex) SequenceAware() bool { return c.aware }

func (c classIndex) Names() []string { return c.names }

func isDinucleotide(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, b := range []byte(s) {
		switch b {
		case 'A', 'C', 'G', 'T', 'U':
		default:
			return false
		}
	}
	return true
}

// IndexTable resolves the class of every step in seq once, before a run.
func IndexTable(s Sampler, seq string) ([]int, error) {
	if !s.SequenceAware() {
		return nil, ErrNotSequenceAware
	}
	seq = strings.ToUpper(seq)
	if len(seq) < 1 {
		return nil, fmt.Errorf("steps: empty sequence")
	}
	table := make([]int, len(seq)-1)
	for i := range table {
		id, err := s.Lookup(seq[i : i+2])
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		table[i] = id
	}
	return table, nil
}
