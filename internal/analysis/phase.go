package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/reactorlab/internal/dynamo"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D holds the projection of a trajectory onto two state
// components.
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point
}

func GeneratePhasePortrait(
	dyn dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	xIdx, yIdx int,
	dt, duration float64,
) *PhasePortrait2D {
	if xIdx >= len(x0) || yIdx >= len(x0) || dt <= 0 {
		return nil
	}

	steps := int(math.Round(duration / dt))
	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, steps+1),
	}

	x := x0.Clone()
	ctrl := make(dynamo.Control, dyn.ControlDim())
	portrait.Points = append(portrait.Points, Point{x[xIdx], x[yIdx]})

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, ctrl, float64(i)*dt, dt)
		if !x.IsValid() {
			break
		}
		portrait.Points = append(portrait.Points, Point{x[xIdx], x[yIdx]})
	}

	return portrait
}

func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = '•'
		}
	}

	// axes where they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if grid[row][col] == ' ' {
				grid[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if grid[row][col] == ' ' {
				grid[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// PoincareSection records (recordX, recordY) each time state[crossIdx]
// crosses threshold upwards, linearly interpolated to the crossing.
type PoincareSection struct {
	Points []Point
}

func GeneratePoincareSection(
	dyn dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	crossIdx int,
	threshold float64,
	recordX, recordY int,
	dt, duration float64,
) *PoincareSection {
	if crossIdx >= len(x0) || recordX >= len(x0) || recordY >= len(x0) || dt <= 0 {
		return nil
	}

	section := &PoincareSection{}
	x := x0.Clone()
	ctrl := make(dynamo.Control, dyn.ControlDim())
	steps := int(math.Round(duration / dt))

	for i := 0; i < steps; i++ {
		prev := x
		x = integ.Step(dyn, x, ctrl, float64(i)*dt, dt)
		if !x.IsValid() {
			break
		}

		a, b := prev[crossIdx], x[crossIdx]
		if a < threshold && b >= threshold {
			frac := (threshold - a) / (b - a)
			section.Points = append(section.Points, Point{
				X: prev[recordX] + frac*(x[recordX]-prev[recordX]),
				Y: prev[recordY] + frac*(x[recordY]-prev[recordY]),
			})
		}
	}

	return section
}

func PoincareSectionToASCII(section *PoincareSection, width, height int) string {
	if section == nil || len(section.Points) == 0 {
		return "no crossings detected"
	}
	return PhasePortraitToASCII(&PhasePortrait2D{Points: section.Points}, width, height)
}
