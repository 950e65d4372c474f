package npz

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/dnamc/internal/helix"
	"github.com/san-kum/dnamc/internal/sim"
)

// Member names of a trajectory archive.
const (
	CoordTerminal = "coord_terminal"
	FrameTerminal = "frame_terminal"
	Twist         = "twist"
	Writhe        = "writhe"
)

// Trajectory is the per-sweep record of a sampling run. Twist and Writhe
// are nil when link output was not requested.
type Trajectory struct {
	Coords []r3.Vec
	Frames []helix.Frame
	Twist  []float64
	Writhe []float64
}

func FromResult(res *sim.Result) *Trajectory {
	return &Trajectory{
		Coords: res.Coords,
		Frames: res.Frames,
		Twist:  res.Twist,
		Writhe: res.Writhe,
	}
}

// Extension returns the terminal z coordinate of every sweep.
func (t *Trajectory) Extension() []float64 {
	z := make([]float64, len(t.Coords))
	for i, c := range t.Coords {
		z[i] = c.Z
	}
	return z
}

// Link returns twist + writhe per sweep, or nil when either is missing.
func (t *Trajectory) Link() []float64 {
	if t.Twist == nil || t.Writhe == nil || len(t.Twist) != len(t.Writhe) {
		return nil
	}
	lk := make([]float64, len(t.Twist))
	for i := range lk {
		lk[i] = t.Twist[i] + t.Writhe[i]
	}
	return lk
}

func (t *Trajectory) arrays() []Array {
	n := len(t.Coords)
	coords := make([]float64, 0, 3*n)
	for _, c := range t.Coords {
		coords = append(coords, c.X, c.Y, c.Z)
	}
	frames := make([]float64, 0, 9*len(t.Frames))
	for _, f := range t.Frames {
		frames = append(frames, f.Flat()...)
	}

	out := []Array{
		{Name: CoordTerminal, Shape: []int{n, 3}, Data: coords},
		{Name: FrameTerminal, Shape: []int{len(t.Frames), 3, 3}, Data: frames},
	}
	if t.Twist != nil {
		out = append(out, Array{Name: Twist, Shape: []int{len(t.Twist)}, Data: t.Twist})
	}
	if t.Writhe != nil {
		out = append(out, Array{Name: Writhe, Shape: []int{len(t.Writhe)}, Data: t.Writhe})
	}
	return out
}

// Save writes the trajectory to path.
func (t *Trajectory) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := Write(f, t.arrays()...); err != nil {
		return err
	}
	return f.Close()
}

// Load reads a trajectory written by Save or by numpy with the same
// member names.
func Load(path string) (*Trajectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	arrays, err := Read(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("npz: %s: %w", path, err)
	}

	t := &Trajectory{}
	if a, ok := arrays[CoordTerminal]; ok {
		if len(a.Shape) != 2 || a.Shape[1] != 3 {
			return nil, fmt.Errorf("%w: %s shape %v", ErrShape, CoordTerminal, a.Shape)
		}
		t.Coords = make([]r3.Vec, a.Shape[0])
		for i := range t.Coords {
			t.Coords[i] = r3.Vec{X: a.Data[3*i], Y: a.Data[3*i+1], Z: a.Data[3*i+2]}
		}
	}
	if a, ok := arrays[FrameTerminal]; ok {
		if len(a.Shape) != 3 || a.Shape[1] != 3 || a.Shape[2] != 3 {
			return nil, fmt.Errorf("%w: %s shape %v", ErrShape, FrameTerminal, a.Shape)
		}
		t.Frames = make([]helix.Frame, a.Shape[0])
		for i := range t.Frames {
			t.Frames[i] = helix.FrameFromFlat(a.Data[9*i : 9*i+9])
		}
	}
	if a, ok := arrays[Twist]; ok {
		t.Twist = a.Data
	}
	if a, ok := arrays[Writhe]; ok {
		t.Writhe = a.Data
	}
	return t, nil
}
