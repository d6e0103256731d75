package imageio

import(
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mdouchement/hdr"

	"github.com/abworrall/lkalign/pkg/align"
	"github.com/abworrall/lkalign/pkg/emath"
)

// GrayMode says how a color image is reduced to intensities
type GrayMode int

const(
	Luma      GrayMode = iota // Rec.601 weighted sum of R,G,B
	Lightness                 // CIE L*, perceptually uniform
)

func (m GrayMode)String() string {
	if m == Lightness {
		return "lightness"
	}
	return "luma"
}

func ParseGrayMode(s string) (GrayMode, error) {
	switch strings.ToLower(s) {
	case "", "luma":  return Luma, nil
	case "lightness": return Lightness, nil
	}
	return Luma, fmt.Errorf("gray mode '%s' unknown (want luma or lightness)", s)
}

func (m GrayMode)MarshalYAML() (interface{}, error) { return m.String(), nil }

func (m *GrayMode)UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	mode, err := ParseGrayMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ToGrid turns any image into a grid of intensities in [0,255] (HDR
// images can go beyond 255). Single channel images are copied as is.
func ToGrid(img image.Image, mode GrayMode) emath.FloatGrid {
	if align.IsSingleChannel(img) {
		if g, err := align.ToGrid(img); err == nil {
			return g
		}
	}

	b := img.Bounds()
	g := emath.NewFloatGrid(b.Dx(), b.Dy())
	if g.Empty() {
		return g
	}

	hdrImg, isHDR := img.(hdr.Image)

	for y:=0; y<b.Dy(); y++ {
		row := g.Row(y)
		for x := range row {
			if isHDR {
				r, gr, bl, _ := hdrImg.HDRAt(b.Min.X+x, b.Min.Y+y).HDRRGBA()
				row[x] = 255.0 * (0.299*r + 0.587*gr + 0.114*bl)
				continue
			}

			c := img.At(b.Min.X+x, b.Min.Y+y)
			if mode == Lightness {
				row[x] = lightness(c)
			} else {
				r, gr, bl, _ := c.RGBA()
				row[x] = (0.299*float64(r) + 0.587*float64(gr) + 0.114*float64(bl)) / 257.0
			}
		}
	}

	return g
}

func lightness(c color.Color) float64 {
	col, ok := colorful.MakeColor(c)
	if !ok {
		return 0
	}
	l, _, _ := col.Lab()
	return l * 255.0
}
