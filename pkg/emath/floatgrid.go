package emath

import(
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg" // Move to https://pkg.go.dev/golang.org/x/image/font#Drawer sometime
	"gonum.org/v1/gonum/floats"
)

// A FloatGrid is a single channel image of float64 intensities, stored
// row-major. Pixel (x,y) covers the area [x,x+1)x[y,y+1), so its center
// is at (x+0.5, y+0.5); the samplers below follow that convention.
type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	if w <= 0 || h <= 0 {
		return FloatGrid{}
	}
	return FloatGrid{
		stride: w,
		values: make([]float64, w*h),
	}
}

// NewFloatGridFunc builds a grid whose pixels are given by f; handy for
// synthetic images.
func NewFloatGridFunc(w, h int, f func(x, y int) float64) FloatGrid {
	g := NewFloatGrid(w, h)
	for y:=0; y<h; y++ {
		for x:=0; x<w; x++ {
			g.Set(x, y, f(x, y))
		}
	}
	return g
}

func (g1 *FloatGrid)NewFromThis() FloatGrid  { return NewFloatGrid(g1.Dx(), g1.Dy()) }
func (fg *FloatGrid)Set(x, y int, v float64) { fg.values[fg.stride*y + x] = v }
func (fg *FloatGrid)Get(x, y int) float64    { return fg.values[fg.stride*y + x] }
func (fg *FloatGrid)Dx() int                 { return fg.stride }
func (fg *FloatGrid)Size() int               { return len(fg.values) }
func (fg *FloatGrid)Empty() bool             { return len(fg.values) == 0 }
func (fg *FloatGrid)Bounds() image.Rectangle { return image.Rect(0, 0, fg.Dx(), fg.Dy()) }

func (fg *FloatGrid)Dy() int {
	if fg.stride == 0 {
		return 0
	}
	return len(fg.values) / fg.stride
}

// Row returns the backing slice for row y; writes go straight into the grid.
func (fg *FloatGrid)Row(y int) []float64 {
	return fg.values[fg.stride*y : fg.stride*(y+1)]
}

func (g1 *FloatGrid)Copy() *FloatGrid {
	g2 := FloatGrid{stride: g1.stride, values:make([]float64, len(g1.values))}
	copy(g2.values, g1.values)
	return &g2
}

// SameSize is true if both grids have identical dimensions.
func (g1 *FloatGrid)SameSize(g2 *FloatGrid) bool {
	return g1.Dx() == g2.Dx() && g1.Dy() == g2.Dy()
}

// SubInto sets fg = a - b, pixelwise. All three grids must be the same size.
func (fg *FloatGrid)SubInto(a, b *FloatGrid) {
	floats.SubTo(fg.values, a.values, b.values)
}

func (fg *FloatGrid)Scale(f float64) {
	floats.Scale(f, fg.values)
}

func (fg *FloatGrid)Sum() float64 {
	return floats.Sum(fg.values)
}

// Mean is the signed average of all the values.
func (fg *FloatGrid)Mean() float64 {
	if fg.Empty() {
		return 0
	}
	return floats.Sum(fg.values) / float64(len(fg.values))
}

// MeanSquare is the average of the squared values; for an error image,
// this is the per-pixel SSD.
func (fg *FloatGrid)MeanSquare() float64 {
	if fg.Empty() {
		return 0
	}
	return floats.Dot(fg.values, fg.values) / float64(len(fg.values))
}

// Sub returns the rectangle r of the grid, as a new grid. r is clipped to
// the grid.
func (fg *FloatGrid)Sub(r image.Rectangle) FloatGrid {
	r = r.Intersect(fg.Bounds())
	g := NewFloatGrid(r.Dx(), r.Dy())
	for y:=0; y<r.Dy(); y++ {
		copy(g.Row(y), fg.Row(r.Min.Y+y)[r.Min.X:r.Max.X])
	}
	return g
}

// MaxSampleCoord bounds the coordinates the samplers will fold back into the
// grid. Anything beyond it (or NaN) samples as NaN.
const MaxSampleCoord = 1 << 48

func sampleable(x, y float64) bool {
	return math.Abs(x) < MaxSampleCoord && math.Abs(y) < MaxSampleCoord
}

// Bilinear samples the grid at continuous image coordinates (pixel
// centers at +0.5). Addresses outside the grid are folded back in with
// Reflect101; NaN, infinite and absurdly distant addresses give NaN.
func (fg *FloatGrid)Bilinear(x, y float64) float64 {
	if !sampleable(x, y) {
		return math.NaN()
	}
	x -= 0.5
	y -= 0.5

	fx, fy := math.Floor(x), math.Floor(y)
	ix, iy := int(fx), int(fy)
	w, h := fg.Dx(), fg.Dy()

	x0 := Reflect101(ix, w)
	x1 := Reflect101(ix+1, w)
	y0 := Reflect101(iy, h)
	y1 := Reflect101(iy+1, h)

	a := x - fx
	b := y - fy

	f0 := fg.values[y0*fg.stride + x0]
	f1 := fg.values[y0*fg.stride + x1]
	f2 := fg.values[y1*fg.stride + x0]
	f3 := fg.values[y1*fg.stride + x1]

	return (f0*(1-a) + f1*a)*(1-b) + (f2*(1-a) + f3*a)*b
}

// Nearest samples the pixel whose area contains (x,y), with the same border
// policy as Bilinear.
func (fg *FloatGrid)Nearest(x, y float64) float64 {
	if !sampleable(x, y) {
		return math.NaN()
	}
	ix := Reflect101(int(math.Floor(x)), fg.Dx())
	iy := Reflect101(int(math.Floor(y)), fg.Dy())
	return fg.values[iy*fg.stride + ix]
}

// Sobel computes the x and y derivatives with the 3x3 Sobel kernel. The raw
// kernel response is 8x the per-pixel slope, so it is scaled by 1/8 to keep
// the gradients in intensity-per-pixel units. Borders use Reflect101.
func (H *FloatGrid)Sobel() (FloatGrid, FloatGrid) {
	width := H.Dx()
	height := H.Dy()
	gx := H.NewFromThis()
	gy := H.NewFromThis()

	for y:=0; y<height; y++ {
		n := Reflect101(y-1, height)
		s := Reflect101(y+1, height)
		for x:=0; x<width; x++ {
			w := Reflect101(x-1, width)
			e := Reflect101(x+1, width)

			dx := (H.Get(e,n) + 2*H.Get(e,y) + H.Get(e,s)) - (H.Get(w,n) + 2*H.Get(w,y) + H.Get(w,s))
			dy := (H.Get(w,s) + 2*H.Get(x,s) + H.Get(e,s)) - (H.Get(w,n) + 2*H.Get(x,n) + H.Get(e,n))

			gx.Set(x, y, dx * 0.125)
			gy.Set(x, y, dy * 0.125)
		}
	}

	return gx, gy
}

func (g1 FloatGrid)GaussianBlur() FloatGrid {
	width := g1.Dx()
	height := g1.Dy()
	g2 := g1.NewFromThis()
	if width < 2 || height < 2 {
		copy(g2.values, g1.values)
		return g2
	}

	T  := g1.NewFromThis()

	//--- X blur, build up in T
	for y:=0; y<height; y++ {
		for x:=1; x<width-1; x++ {
			t := 2.0*g1.Get(x,y)
			t += g1.Get(x-1,y)
			t += g1.Get(x+1,y)
			T.Set(x, y, t/4.0)
		}
		T.Set(0, y,       (3.0*g1.Get(0,      y) + g1.Get(1,      y)) / 4.0)
		T.Set(width-1, y, (3.0*g1.Get(width-1,y) + g1.Get(width-2,y)) / 4.0)
	}

	//--- Y blur, read from T and generate output
	for x:=0; x<width; x++ {
		for y:=1; y<height-1; y++ {
			t := 2.0*T.Get(x,y)
			t += T.Get(x,y-1)
			t += T.Get(x,y+1)
			g2.Set(x, y, t/4.0)
		}
		g2.Set(x, 0,        (3.0*T.Get(x,       0) + T.Get(x,       1)) / 4.0)
		g2.Set(x, height-1, (3.0*T.Get(x,height-1) + T.Get(x,height-2)) / 4.0)
	}

	return g2
}

func (fg *FloatGrid)MinMax() (float64, float64) {
	if fg.Empty() {
		return 0, 0
	}
	return floats.Min(fg.values), floats.Max(fg.values)
}

func (fg *FloatGrid)Stats() string {
	min, max := fg.MinMax()
	return fmt.Sprintf("fg[%dx%d, vals{%f,%f}, mean %f]", fg.Dx(), fg.Dy(), min, max, fg.Mean())
}

// ToGray clamps the values into [0,255] and returns an 8-bit image. This
// is the inverse of reading a gray image into a grid, so intensities keep
// their meaning.
func (fg *FloatGrid)ToGray() *image.Gray {
	img := image.NewGray(fg.Bounds())
	for y:=0; y<fg.Dy(); y++ {
		for x:=0; x<fg.Dx(); x++ {
			v := math.Round(fg.Get(x,y))
			if v < 0   { v = 0 }
			if v > 255 { v = 255 }
			img.SetGray(x, y, color.Gray{uint8(v)})
		}
	}
	return img
}

// ToImg saves a simple grayscale, based on the range of values in the grid, and gamma scaling the
// gray to look normal for human vision
func (fg *FloatGrid)ToImg(title, filename string) error {
	min, max := fg.MinMax()
	span := max - min
	if span == 0 {
		span = 1
	}

	img := image.NewRGBA64(fg.Bounds())
	for x:=0; x<fg.Dx(); x++ {
		for y:=0; y<fg.Dy(); y++ {
			lum := fg.Get(x,y)
			gray := GammaExpand_F64 ((lum - min) / span)
			col := color.RGBA64{uint16(gray * 65535.0), uint16(gray * 65535.0), uint16(gray * 65535.0), 0xFFFF}
			img.Set(x, y, col)
		}
	}

	dc := gg.NewContextForImage(img)
	dc.SetRGB(1,0,0)
	dc.DrawString(title, 4, 12)
	return dc.SavePNG(filename)
}
