package export

import (
	"fmt"
	"image"
	"io"

	"github.com/san-kum/reactorlab/internal/dynamo"
	"github.com/san-kum/reactorlab/internal/models"
	"github.com/san-kum/reactorlab/internal/viz"
)

type AnimationOptions struct {
	Width, Height int // canvas cells
	Every         int // draw every n-th state
	Delay         int // frame delay in 1/100 s
	Trail         int // trace length in frames
	DotSize       int
}

func DefaultAnimationOptions() AnimationOptions {
	return AnimationOptions{Width: 60, Height: 30, Every: 1, Delay: 2, Trail: 200, DotSize: 3}
}

// PendulumFrames draws one frame per selected state: both arms, both bobs
// and the trace of the second bob.
func PendulumFrames(dp *models.DoublePendulum, states []dynamo.State, opts AnimationOptions) ([]*image.Paletted, *viz.Canvas) {
	if opts.Every < 1 {
		opts.Every = 1
	}
	scene := viz.NewPendulumScene(dp, opts.Trail)
	canvas := viz.NewCanvas(opts.Width, opts.Height)

	frames := make([]*image.Paletted, 0, len(states)/opts.Every+1)
	for i := 0; i < len(states); i += opts.Every {
		canvas.Clear()
		scene.Draw(canvas, states[i])
		frames = append(frames, canvas.Frame(opts.DotSize, viz.Palette))
	}
	return frames, canvas
}

// AnimationGIF writes the double pendulum run as a looping GIF and returns
// the canvas holding the last frame.
func AnimationGIF(w io.Writer, dp *models.DoublePendulum, states []dynamo.State, opts AnimationOptions) (*viz.Canvas, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("no states to animate")
	}
	frames, last := PendulumFrames(dp, states, opts)
	if err := viz.EncodeGIF(w, frames, opts.Delay); err != nil {
		return nil, err
	}
	return last, nil
}
