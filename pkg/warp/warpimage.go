package warp

import(
	"fmt"

	"github.com/abworrall/lkalign/pkg/emath"
)

type Interpolation int

const(
	InterpBilinear Interpolation = iota
	InterpNearest
)

// GridPair is one channel to resample: Src is read through the warp, Dst is
// written in template coordinates. All Dst grids passed together must share
// dimensions.
type GridPair struct {
	Src emath.FloatGrid
	Dst *emath.FloatGrid
}

// WarpImage fills dst by mapping the center of each of its pixels through w
// and sampling src there, bilinearly. dst keeps its own size.
func WarpImage(src emath.FloatGrid, dst *emath.FloatGrid, w Warp) {
	WarpRows(w, InterpBilinear, 0, dst.Dy(), GridPair{src, dst})
}

func WarpImageNearest(src emath.FloatGrid, dst *emath.FloatGrid, w Warp) {
	WarpRows(w, InterpNearest, 0, dst.Dy(), GridPair{src, dst})
}

// WarpImages resamples several channels under one warp; the warped
// coordinate is computed once per pixel and shared by all of them. It
// panics if the Dst grids differ in size.
func WarpImages(w Warp, pairs ...GridPair) {
	if len(pairs) == 0 {
		return
	}
	for i := range pairs[1:] {
		if !pairs[0].Dst.SameSize(pairs[i+1].Dst) {
			panic(fmt.Sprintf("WarpImages: dst %d is %dx%d, want %dx%d", i+1,
				pairs[i+1].Dst.Dx(), pairs[i+1].Dst.Dy(), pairs[0].Dst.Dx(), pairs[0].Dst.Dy()))
		}
	}
	WarpRows(w, InterpBilinear, 0, pairs[0].Dst.Dy(), pairs...)
}

// WarpRows is WarpImages restricted to destination rows [y0,y1). Disjoint row
// ranges can be run concurrently.
func WarpRows(w Warp, interp Interpolation, y0, y1 int, pairs ...GridPair) {
	if len(pairs) == 0 {
		return
	}
	width := pairs[0].Dst.Dx()

	for y:=y0; y<y1; y++ {
		for x:=0; x<width; x++ {
			q := w.Apply(Point{float64(x)+0.5, float64(y)+0.5})
			for i := range pairs {
				var v float64
				if interp == InterpNearest {
					v = pairs[i].Src.Nearest(q.X, q.Y)
				} else {
					v = pairs[i].Src.Bilinear(q.X, q.Y)
				}
				pairs[i].Dst.Set(x, y, v)
			}
		}
	}
}
