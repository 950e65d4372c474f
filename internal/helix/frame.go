package helix

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Frame is a 3x3 rotation; its columns are the x, y and z axes of a
// base-pair reference frame in lab coordinates.
type Frame [3][3]float64

func Identity() Frame {
	return Frame{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func RotZ(a float64) Frame {
	s, c := math.Sincos(a)
	return Frame{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}
}

func RotY(a float64) Frame {
	s, c := math.Sincos(a)
	return Frame{{c, 0, s}, {0, 1, 0}, {-s, 0, c}}
}

// AxisAngle returns the rotation by angle a about the unit vector u.
func AxisAngle(u r3.Vec, a float64) Frame {
	s, c := math.Sincos(a)
	t := 1 - c
	return Frame{
		{c + u.X*u.X*t, u.X*u.Y*t - u.Z*s, u.X*u.Z*t + u.Y*s},
		{u.Y*u.X*t + u.Z*s, c + u.Y*u.Y*t, u.Y*u.Z*t - u.X*s},
		{u.Z*u.X*t - u.Y*s, u.Z*u.Y*t + u.X*s, c + u.Z*u.Z*t},
	}
}

// FromAxes builds a frame whose columns are x, y and z.
func FromAxes(x, y, z r3.Vec) Frame {
	return Frame{
		{x.X, y.X, z.X},
		{x.Y, y.Y, z.Y},
		{x.Z, y.Z, z.Z},
	}
}

func (f Frame) Mul(g Frame) Frame {
	var out Frame
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = f[i][0]*g[0][j] + f[i][1]*g[1][j] + f[i][2]*g[2][j]
		}
	}
	return out
}

func (f Frame) T() Frame {
	var out Frame
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = f[j][i]
		}
	}
	return out
}

// Apply returns f·v.
func (f Frame) Apply(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: f[0][0]*v.X + f[0][1]*v.Y + f[0][2]*v.Z,
		Y: f[1][0]*v.X + f[1][1]*v.Y + f[1][2]*v.Z,
		Z: f[2][0]*v.X + f[2][1]*v.Y + f[2][2]*v.Z,
	}
}

// Col returns axis k of the frame.
func (f Frame) Col(k int) r3.Vec {
	return r3.Vec{X: f[0][k], Y: f[1][k], Z: f[2][k]}
}

// Flat returns the frame in row-major order.
func (f Frame) Flat() []float64 {
	out := make([]float64, 0, 9)
	for i := 0; i < 3; i++ {
		out = append(out, f[i][:]...)
	}
	return out
}

// FrameFromFlat is the inverse of Flat. It panics if v has fewer than nine
// values.
func FrameFromFlat(v []float64) Frame {
	_ = v[8]
	var f Frame
	for i := 0; i < 3; i++ {
		copy(f[i][:], v[3*i:3*i+3])
	}
	return f
}

func (f Frame) Dense() *mat.Dense {
	return mat.NewDense(3, 3, f.Flat())
}

// IsOrthonormal reports whether fᵀf equals the identity within tol.
func (f Frame) IsOrthonormal(tol float64) bool {
	m := f.Dense()
	var p mat.Dense
	p.Mul(m.T(), m)
	eye := mat.NewDiagDense(3, []float64{1, 1, 1})
	return mat.EqualApprox(&p, eye, tol)
}

func (f Frame) IsValid() bool {
	for i := range f {
		for _, v := range f[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
