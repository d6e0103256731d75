package align

import(
	"fmt"
	"image"
	"image/color"

	"github.com/abworrall/lkalign/pkg/emath"
)

// Images that know how many channels they carry can say so; anything that
// returns 1 is read through color.GrayModel.
type channeler interface {
	Channels() int
}

// IsSingleChannel reports whether img is a one channel (gray) image.
func IsSingleChannel(img image.Image) bool {
	if c, ok := img.(channeler); ok {
		return c.Channels() == 1
	}
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return true
	}
	return false
}

// ToGrid converts a single channel image into float intensities in the
// [0,255] range. 16 bit images are scaled down so that they behave just like
// 8 bit ones.
func ToGrid(img image.Image) (emath.FloatGrid, error) {
	if img == nil {
		return emath.FloatGrid{}, fmt.Errorf("%w: nil image", ErrInvalidInput)
	}
	if !IsSingleChannel(img) {
		return emath.FloatGrid{}, fmt.Errorf("%w: %T is not single channel", ErrInvalidInput, img)
	}
	b := img.Bounds()
	if b.Empty() {
		return emath.FloatGrid{}, fmt.Errorf("%w: empty image %v", ErrInvalidInput, b)
	}

	g := emath.NewFloatGrid(b.Dx(), b.Dy())

	switch src := img.(type) {
	case *image.Gray:
		for y:=0; y<b.Dy(); y++ {
			row := g.Row(y)
			for x := range row {
				row[x] = float64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
	case *image.Gray16:
		for y:=0; y<b.Dy(); y++ {
			row := g.Row(y)
			for x := range row {
				row[x] = float64(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y) / 257.0
			}
		}
	default:
		for y:=0; y<b.Dy(); y++ {
			row := g.Row(y)
			for x := range row {
				c := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
				row[x] = float64(c.Y) / 257.0
			}
		}
	}

	return g, nil
}
