package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/dnamc/internal/helix"
)

// ChainView projects a chain onto a canvas orthographically. The lab z axis
// (the pulling direction) points up at zero pitch.
type ChainView struct {
	Yaw, Pitch float64
	Zoom       float64
}

func NewChainView() *ChainView {
	return &ChainView{Zoom: 1}
}

func (v *ChainView) Rotate(dyaw, dpitch float64) {
	v.Yaw += dyaw
	v.Pitch = math.Max(-math.Pi/2, math.Min(math.Pi/2, v.Pitch+dpitch))
}

func (v *ChainView) ZoomIn()  { v.Zoom = math.Min(20, v.Zoom*1.25) }
func (v *ChainView) ZoomOut() { v.Zoom = math.Max(0.05, v.Zoom/1.25) }

func (v *ChainView) rotation() helix.Frame {
	return helix.AxisAngle(r3.Vec{X: 1}, v.Pitch).Mul(helix.RotZ(v.Yaw))
}

// Render draws the polyline through pts, scaled so the whole chain fits
// at zoom 1, with the first point at the bottom center.
func (v *ChainView) Render(c *Canvas, pts []r3.Vec) {
	c.Clear()
	if len(pts) == 0 {
		return
	}
	rot := v.rotation()
	proj := make([]r3.Vec, len(pts))
	extent := 0.0
	for i, p := range pts {
		q := rot.Apply(r3.Sub(p, pts[0]))
		proj[i] = q
		extent = math.Max(extent, math.Max(math.Abs(q.X), math.Abs(q.Z)))
	}
	if extent == 0 {
		extent = 1
	}

	pw, ph := c.Pixels()
	scale := v.Zoom * math.Min(float64(ph-1), float64(pw/2)) / extent
	screen := func(q r3.Vec) (int, int) {
		return pw/2 + int(math.Round(q.X*scale)), ph - 1 - int(math.Round(q.Z*scale))
	}
	x0, y0 := screen(proj[0])
	c.Set(x0, y0)
	for _, q := range proj[1:] {
		x1, y1 := screen(q)
		c.DrawLine(x0, y0, x1, y1)
		x0, y0 = x1, y1
	}
}
