package helix

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// Save writes the committed step parameters as CSV, angles in degrees.
func (c *Chain) Save(path string) error {
	if c.pending >= 0 {
		return ErrTrialPending
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Names[:]); err != nil {
		return err
	}
	for _, p := range c.committed.params {
		deg := p.Degrees()
		row := make([]string, len(deg))
		for k, v := range deg {
			row[k] = strconv.FormatFloat(v, 'f', 8, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// Load reads a chain written by Save.
func Load(path string) (*Chain, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("helix: read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("helix: %s: missing header", path)
	}

	ps := make([]Params, 0, len(records)-1)
	for line, rec := range records[1:] {
		row := make([]float64, len(rec))
		for k, s := range rec {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("helix: %s line %d: %w", path, line+2, err)
			}
			row[k] = v
		}
		p, err := ParamsFromDegrees(row)
		if err != nil {
			return nil, fmt.Errorf("helix: %s line %d: %w", path, line+2, err)
		}
		ps = append(ps, p)
	}
	return FromParams(ps)
}
