package helix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Indices into Params.
const (
	Shift = iota
	Slide
	Rise
	Tilt
	Roll
	Twist
)

// Names lists the step parameters in storage order.
var Names = [6]string{"shift", "slide", "rise", "tilt", "roll", "twist"}

// Params holds one base-pair step: translations in Angstrom, rotations in radians.
type Params [6]float64

// ParamsFromDegrees builds Params from a row whose angles are in degrees.
func ParamsFromDegrees(row []float64) (Params, error) {
	var p Params
	if len(row) != 6 {
		return p, fmt.Errorf("helix: step needs 6 values, got %d", len(row))
	}
	copy(p[:], row)
	for k := Tilt; k <= Twist; k++ {
		p[k] *= math.Pi / 180
	}
	return p, nil
}

// Degrees returns the parameters with angles converted to degrees.
func (p Params) Degrees() [6]float64 {
	out := [6]float64(p)
	for k := Tilt; k <= Twist; k++ {
		out[k] *= 180 / math.Pi
	}
	return out
}

func (p Params) IsValid() bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// StepTransform returns the rotation carrying frame i onto frame i+1 and the
// displacement of origin i+1, both expressed in frame i.
//
// With bend Γ = sqrt(Tilt²+Roll²) and phase φ = atan2(Tilt, Roll):
//
//	R  = Rz(Ω/2-φ) Ry(Γ) Rz(Ω/2+φ)
//	Rm = Rz(Ω/2-φ) Ry(Γ/2) Rz(φ)
//	d  = Rm (Shift, Slide, Rise)
func StepTransform(p Params) (Frame, r3.Vec) {
	gamma := math.Hypot(p[Tilt], p[Roll])
	phi := math.Atan2(p[Tilt], p[Roll])
	half := p[Twist] / 2

	a := RotZ(half - phi)
	rot := a.Mul(RotY(gamma)).Mul(RotZ(half + phi))
	mid := a.Mul(RotY(gamma / 2)).Mul(RotZ(phi))
	d := mid.Apply(r3.Vec{X: p[Shift], Y: p[Slide], Z: p[Rise]})
	return rot, d
}

// FrameToParams inverts StepTransform. rot and d are expressed in frame i.
func FrameToParams(rot Frame, d r3.Vec) Params {
	ez := r3.Vec{Z: 1}
	z2 := rot.Col(2)

	cosGamma := clamp(r3.Dot(ez, z2))
	gamma := math.Acos(cosGamma)

	var p Params
	var mid Frame
	if gamma < 1e-10 {
		omega := signedAngle(r3.Vec{Y: 1}, rot.Col(1), ez)
		mid = RotZ(omega / 2)
		p[Twist] = omega
	} else {
		hinge := r3.Unit(r3.Cross(ez, z2))
		f1 := AxisAngle(hinge, gamma/2)
		f2 := AxisAngle(hinge, -gamma/2).Mul(rot)

		zm := r3.Unit(r3.Add(f1.Col(2), f2.Col(2)))
		xm := r3.Unit(r3.Add(f1.Col(0), f2.Col(0)))
		ym := r3.Unit(r3.Add(f1.Col(1), f2.Col(1)))
		mid = FromAxes(xm, ym, zm)

		omega := signedAngle(f1.Col(1), f2.Col(1), zm)
		phi := signedAngle(hinge, ym, zm)
		p[Twist] = omega
		p[Roll] = gamma * math.Cos(phi)
		p[Tilt] = gamma * math.Sin(phi)
	}

	p[Shift] = r3.Dot(d, mid.Col(0))
	p[Slide] = r3.Dot(d, mid.Col(1))
	p[Rise] = r3.Dot(d, mid.Col(2))
	return p
}

func signedAngle(a, b, axis r3.Vec) float64 {
	return math.Atan2(r3.Dot(axis, r3.Cross(a, b)), r3.Dot(a, b))
}

func clamp(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
