package stack

import(
	"fmt"
	"path/filepath"

	"github.com/abworrall/lkalign/pkg/emath"
	"github.com/abworrall/lkalign/pkg/imageio"
)

// A Frame is one input image, along with its intensity grid
type Frame struct {
	imageio.Source
	Grid emath.FloatGrid
}

func NewFrame(src imageio.Source, mode imageio.GrayMode) Frame {
	return Frame{
		Source: src,
		Grid: imageio.ToGrid(src.Image, mode),
	}
}

func (f Frame)Name() string {
	return filepath.Base(f.Filename)
}

func (f Frame)String() string {
	return fmt.Sprintf("%s: %s", f.Name(), f.Grid.Stats())
}
