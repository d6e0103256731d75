package imageio

import(
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/abworrall/lkalign/pkg/warp"
)

// RenderAligned resamples the (color) target into the template's frame,
// using the warp that maps template coords into the target. Affine warps go
// through x/image/draw; projective ones are sampled pixel by pixel.
func RenderAligned(target image.Image, w warp.Warp, size image.Point) (*image.RGBA, error) {
	dst := image.NewRGBA(image.Rectangle{Max: size})

	inv, err := warp.Invert(w)
	if err != nil {
		return nil, err
	}

	if inv.IsAffine() {
		// Transform wants the src->dst mapping
		draw.BiLinear.Transform(dst, f64.Aff3(inv.Aff3()), target, target.Bounds(), draw.Src, nil)
		return dst, nil
	}

	b := target.Bounds()
	for y:=0; y<size.Y; y++ {
		for x:=0; x<size.X; x++ {
			q := w.Apply(warp.Point{X: float64(x)+0.5, Y: float64(y)+0.5})
			p := image.Pt(b.Min.X + int(q.X), b.Min.Y + int(q.Y))
			if q.X < 0 || q.Y < 0 || !p.In(b) {
				continue
			}
			dst.Set(x, y, target.At(p.X, p.Y))
		}
	}
	return dst, nil
}

// Outline returns the template's border, mapped into target coordinates.
func Outline(w warp.Warp, size image.Point) []warp.Point {
	corners := []warp.Point{
		{X: 0, Y: 0},
		{X: float64(size.X), Y: 0},
		{X: float64(size.X), Y: float64(size.Y)},
		{X: 0, Y: float64(size.Y)},
	}
	out := []warp.Point{}
	for _, c := range corners {
		out = append(out, w.Apply(c))
	}
	return out
}

// DrawOutline draws the warped template border on top of img.
func DrawOutline(img image.Image, w warp.Warp, size image.Point, title, filename string) error {
	dc := gg.NewContextForImage(img)

	pts := Outline(w, size)
	dc.SetRGB(1, 0, 0)
	dc.SetLineWidth(2)
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.ClosePath()
	dc.Stroke()

	dc.DrawString(title, 4, 12)
	return dc.SavePNG(filename)
}

// A Marker is a tracked point; drawn as a line from where it was to where it
// ended up, with a dot on the end. Lost points are drawn in gray.
type Marker struct {
	From, To warp.Point
	Ok       bool
}

func DrawMarkers(img image.Image, markers []Marker, filename string) error {
	dc := gg.NewContextForImage(img)
	dc.SetLineWidth(1.5)

	for _, m := range markers {
		if m.Ok {
			dc.SetRGB(0, 1, 0)
		} else {
			dc.SetColor(color.Gray{128})
		}
		dc.DrawLine(m.From.X, m.From.Y, m.To.X, m.To.Y)
		dc.Stroke()
		dc.DrawCircle(m.To.X, m.To.Y, 2.5)
		dc.Fill()
	}

	return dc.SavePNG(filename)
}
