package viz

import (
	"image"
	"image/color"
	"image/gif"
	"io"
	"math"

	"github.com/san-kum/reactorlab/internal/dynamo"
	"github.com/san-kum/reactorlab/internal/models"
)

type point struct{ x, y int }

// Trail keeps the last n positions of the second bob.
type Trail struct {
	points []point
	max    int
}

func NewTrail(max int) *Trail {
	return &Trail{points: make([]point, 0, max), max: max}
}

func (t *Trail) Add(x, y int) {
	t.points = append(t.points, point{x, y})
	if t.max > 0 && len(t.points) > t.max {
		t.points = t.points[1:]
	}
}

func (t *Trail) Len() int { return len(t.points) }

func (t *Trail) Reset() { t.points = t.points[:0] }

// PendulumScene maps pendulum coordinates onto a canvas with the pivot in
// the centre, so the arms fit whichever way they swing.
type PendulumScene struct {
	Model *models.DoublePendulum
	Trail *Trail
}

func NewPendulumScene(dp *models.DoublePendulum, trailLen int) *PendulumScene {
	return &PendulumScene{Model: dp, Trail: NewTrail(trailLen)}
}

func (s *PendulumScene) project(c *Canvas, x, y float64) (int, int) {
	sw, sh := c.SubSize()
	cx, cy := sw/2, sh/2
	scale := 0.9 * math.Min(float64(sw)/2, float64(sh)/2) / s.Model.Reach()
	return cx + int(math.Round(x*scale)), cy - int(math.Round(y*scale))
}

// Draw renders both arms, both bobs and the trace of the second bob. The
// trail grows by one point per call.
func (s *PendulumScene) Draw(c *Canvas, x dynamo.State) {
	b := s.Model.Positions(x)
	px, py := s.project(c, 0, 0)
	x1, y1 := s.project(c, b.X1, b.Y1)
	x2, y2 := s.project(c, b.X2, b.Y2)

	s.Trail.Add(x2, y2)
	for _, p := range s.Trail.points {
		c.Set(p.x, p.y)
	}

	c.Dot(px, py, 0)
	c.DrawLine(px, py, x1, y1)
	c.DrawLine(x1, y1, x2, y2)
	c.Dot(x1, y1, 1)
	c.Dot(x2, y2, 1)
}

// DrawCore sketches a reactor vessel: rods hang in from the top by the
// inserted fraction, and the fill level tracks power on a log scale over
// [1e-3, 1e3] times nominal.
func DrawCore(c *Canvas, powerRatio, rodInsertion float64) {
	sw, sh := c.SubSize()
	x0, y0 := sw/6, sh/8
	x1, y1 := sw-sw/6, sh-sh/8
	c.Rect(x0, y0, x1, y1)

	level := 0.0
	if powerRatio > 0 {
		level = (math.Log10(powerRatio) + 3) / 6
	}
	level = math.Max(0, math.Min(1, level))
	top := y1 - int(level*float64(y1-y0))
	for y := y1 - 1; y > top; y-- {
		for x := x0 + 1; x < x1; x++ {
			if (x+y)%3 == 0 {
				c.Set(x, y)
			}
		}
	}

	rodInsertion = math.Max(0, math.Min(1, rodInsertion))
	depth := y0 + int(rodInsertion*float64(y1-y0))
	const rods = 5
	for i := 1; i <= rods; i++ {
		x := x0 + i*(x1-x0)/(rods+1)
		c.DrawLine(x, y0, x, depth)
		c.DrawLine(x+1, y0, x+1, depth)
	}
}

// Palette used for GIF frames.
var Palette = color.Palette{
	color.RGBA{0x0a, 0x0a, 0x0a, 0xff},
	color.RGBA{0x00, 0xff, 0x88, 0xff},
}

// EncodeGIF writes frames as a looping animation with delay in 1/100 s.
func EncodeGIF(w io.Writer, frames []*image.Paletted, delay int) error {
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, &anim)
}
