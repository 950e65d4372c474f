package helix

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// extensionFactor scales the straight tails added along z to close an open
// chain for the Gauss integral.
const extensionFactor = 1000.0

var labZ = r3.Vec{Z: 1}

// fullerWrithe sums the signed spherical-triangle areas (z, t_i, t_i+1)
// swept by the frame z axes.
func fullerWrithe(frames []Frame) float64 {
	wr := 0.0
	for i := 0; i+1 < len(frames); i++ {
		a := frames[i].Col(2)
		b := frames[i+1].Col(2)
		num := r3.Dot(labZ, r3.Cross(a, b))
		den := 1 + r3.Dot(labZ, a) + r3.Dot(a, b) + r3.Dot(b, labZ)
		wr += 2 * math.Atan2(num, den)
	}
	return wr
}

// exactWrithe evaluates the Gauss double integral of the origin polyline
// with straight tails along ±z at both ends.
func exactWrithe(origins []r3.Vec) float64 {
	span := 1.0
	for i := 0; i+1 < len(origins); i++ {
		span += r3.Norm(r3.Sub(origins[i+1], origins[i]))
	}
	ext := extensionFactor * span

	pts := make([]r3.Vec, 0, len(origins)+2)
	pts = append(pts, r3.Sub(origins[0], r3.Scale(ext, labZ)))
	pts = append(pts, origins...)
	pts = append(pts, r3.Add(origins[len(origins)-1], r3.Scale(ext, labZ)))

	wr := 0.0
	nseg := len(pts) - 1
	for i := 0; i < nseg; i++ {
		for j := i + 2; j < nseg; j++ {
			wr += segmentSolidAngle(pts[i], pts[i+1], pts[j], pts[j+1])
		}
	}
	return wr
}

// segmentSolidAngle is the Klenin-Langowski contribution of the segment
// pair (p1,p2), (p3,p4); summed over i<j it gives 2π·Wr.
func segmentSolidAngle(p1, p2, p3, p4 r3.Vec) float64 {
	r13 := r3.Sub(p3, p1)
	r14 := r3.Sub(p4, p1)
	r23 := r3.Sub(p3, p2)
	r24 := r3.Sub(p4, p2)

	n1, ok1 := unitOK(r3.Cross(r13, r14))
	n2, ok2 := unitOK(r3.Cross(r14, r24))
	n3, ok3 := unitOK(r3.Cross(r24, r23))
	n4, ok4 := unitOK(r3.Cross(r23, r13))
	if !(ok1 && ok2 && ok3 && ok4) {
		return 0
	}

	omega := math.Asin(clamp(r3.Dot(n1, n2))) +
		math.Asin(clamp(r3.Dot(n2, n3))) +
		math.Asin(clamp(r3.Dot(n3, n4))) +
		math.Asin(clamp(r3.Dot(n4, n1)))

	r12 := r3.Sub(p2, p1)
	r34 := r3.Sub(p4, p3)
	if r3.Dot(r3.Cross(r34, r12), r13) < 0 {
		omega = -omega
	}
	return omega
}

func unitOK(v r3.Vec) (r3.Vec, bool) {
	n := r3.Norm(v)
	if n < 1e-12 {
		return r3.Vec{}, false
	}
	return r3.Scale(1/n, v), true
}
