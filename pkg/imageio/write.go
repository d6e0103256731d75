package imageio

import(
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/lkalign/pkg/emath"
)

func WritePNG(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return png.Encode(writer, img)
	}
}

// HDRGrid presents a FloatGrid as an hdr.Image, so it can be written without
// clamping or quantising to 8 bits. Intensities are divided by 255, so a
// gray 8 bit image comes out in the usual [0,1] HDR range.
type HDRGrid struct {
	Grid emath.FloatGrid
}

// Implement golang's image.Image interface
func (h HDRGrid)ColorModel() color.Model { return hdrcolor.RGBModel }
func (h HDRGrid)Bounds() image.Rectangle { return h.Grid.Bounds() }
func (h HDRGrid)At(x, y int) color.Color { return h.HDRAt(x,y) }

// Implement hdr.Image interface
func (h HDRGrid)HDRAt(x, y int) hdrcolor.Color {
	v := h.Grid.Get(x,y) / 255.0
	if v < 0 {
		v = 0
	}
	return hdrcolor.RGB{R: v, G: v, B: v}
}
func (h HDRGrid)Size() int { return h.Grid.Size() }

func WriteHDR(img hdr.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return rgbe.Encode(writer, img)
	}
}

// WriteGrid writes a grid as an 8 bit gray PNG, or as Radiance HDR if the
// filename ends in .hdr
func WriteGrid(g emath.FloatGrid, filename string) error {
	if len(filename) > 4 && filename[len(filename)-4:] == ".hdr" {
		return WriteHDR(HDRGrid{g}, filename)
	}
	return WritePNG(g.ToGray(), filename)
}
