package steps

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dnamc/internal/helix"
)

// Database is a collection of observed base-pair steps grouped by class.
// Rows are shift, slide, rise, tilt, roll, twist with angles in degrees.
type Database struct {
	Name  string                 `yaml:"name"`
	Steps map[string][][]float64 `yaml:"steps"`
}

// LoadDatabase reads a YAML step database.
func LoadDatabase(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var db Database
	if err := yaml.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("steps: parse %s: %w", path, err)
	}
	if len(db.Steps) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyDatabase)
	}
	return &db, nil
}

func (db *Database) classNames() []string {
	names := make([]string, 0, len(db.Steps))
	for name := range db.Steps {
		names = append(names, name)
	}
	return names
}

// params converts every row of every class, keyed by class.
func (db *Database) params() (map[string][]helix.Params, error) {
	out := make(map[string][]helix.Params, len(db.Steps))
	for name, rows := range db.Steps {
		if len(rows) == 0 {
			return nil, fmt.Errorf("class %s: %w", name, ErrEmptyDatabase)
		}
		ps := make([]helix.Params, len(rows))
		for i, row := range rows {
			p, err := helix.ParamsFromDegrees(row)
			if err != nil {
				return nil, fmt.Errorf("class %s row %d: %w", name, i, err)
			}
			ps[i] = p
		}
		out[name] = ps
	}
	return out, nil
}
