package imageio

import(
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/lkalign/pkg/emath"
	"github.com/abworrall/lkalign/pkg/warp"
)

func testGray(wd, ht int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, wd, ht))
	for y:=0; y<ht; y++ {
		for x:=0; x<wd; x++ {
			img.SetGray(x, y, color.Gray{uint8(100 + 50*math.Sin(float64(x)/3) + 40*math.Cos(float64(y)/4))})
		}
	}
	return img
}

func testRGBA(wd, ht int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, wd, ht))
	for y:=0; y<ht; y++ {
		for x:=0; x<wd; x++ {
			img.Set(x, y, color.RGBA{uint8(x*5), uint8(y*5), uint8((x+y)*2), 255})
		}
	}
	return img
}

func TestWriteAndLoadPNG(t *testing.T) {
	dir := t.TempDir()
	img := testGray(30, 20)
	filename := filepath.Join(dir, "a.png")
	require.NoError(t, WritePNG(img, filename))

	src, err := Load(filename)
	require.NoError(t, err)
	assert.Equal(t, filename, src.Filename)
	assert.True(t, src.Taken.IsZero())
	assert.Equal(t, img.Bounds(), src.Image.Bounds())

	g := ToGrid(src.Image, Luma)
	assert.Equal(t, float64(img.GrayAt(7, 3).Y), g.Get(7, 3))
	assert.Contains(t, src.String(), "a.png")
}

func TestLoadFilesAndDirs(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))

	require.NoError(t, WritePNG(testGray(10, 10), filepath.Join(dir, "one.png")))
	require.NoError(t, WritePNG(testRGBA(10, 10), filepath.Join(sub, "two.png")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "job.yaml"), []byte("warp: affine\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644))

	srcs, cfgs, err := LoadFilesAndDirs(dir)
	require.NoError(t, err)
	assert.Len(t, srcs, 2)
	assert.Equal(t, []string{filepath.Join(dir, "job.yaml")}, cfgs)

	_, _, err = LoadFilesAndDirs(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "notes.txt"))
	assert.Error(t, err)
}

func TestToGridModes(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{255, 255, 255, 255})
	img.Set(2, 0, color.RGBA{0, 0, 0, 255})

	g := ToGrid(img, Luma)
	assert.InDelta(t, 0.299*255, g.Get(0, 0), 1e-6)
	assert.InDelta(t, 255.0, g.Get(1, 0), 1e-6)

	l := ToGrid(img, Lightness)
	assert.InDelta(t, 255.0, l.Get(1, 0), 0.1)
	assert.InDelta(t, 0.0, l.Get(2, 0), 0.1)
	// Red is brighter to L* than to Rec.601
	assert.Greater(t, l.Get(0, 0), g.Get(0, 0))
}

func TestParseGrayMode(t *testing.T) {
	m, err := ParseGrayMode("Lightness")
	require.NoError(t, err)
	assert.Equal(t, Lightness, m)
	m, err = ParseGrayMode("")
	require.NoError(t, err)
	assert.Equal(t, Luma, m)
	_, err = ParseGrayMode("chroma")
	assert.Error(t, err)
}

func TestHDRRoundTrip(t *testing.T) {
	g := emath.NewFloatGridFunc(16, 8, func(x, y int) float64 { return float64(10*x + y) })
	filename := filepath.Join(t.TempDir(), "g.hdr")
	require.NoError(t, WriteGrid(g, filename))

	src, err := Load(filename)
	require.NoError(t, err)
	g2 := ToGrid(src.Image, Luma)
	require.Equal(t, g.Dx(), g2.Dx())
	require.Equal(t, g.Dy(), g2.Dy())
	for y:=0; y<8; y++ {
		for x:=0; x<16; x++ {
			// RGBE keeps 8 bits of mantissa
			assert.InDelta(t, g.Get(x, y), g2.Get(x, y), 0.01*g.Get(x, y)+1e-6)
		}
	}
}

func TestRenderAligned(t *testing.T) {
	target := testRGBA(40, 40)
	w, _ := warp.NewWithParameters(warp.Translation, []float64{5, 7})

	out, err := RenderAligned(target, w, image.Pt(20, 20))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 20), out.Bounds())
	for y:=0; y<20; y++ {
		for x:=0; x<20; x++ {
			assert.Equal(t, target.RGBAAt(x+5, y+7), out.RGBAAt(x, y))
		}
	}

	p, _ := warp.NewWithParameters(warp.Projective, []float64{5, 7, 0, 0, 0, 0, 0, 0})
	out2, err := RenderAligned(target, p, image.Pt(20, 20))
	require.NoError(t, err)
	assert.Equal(t, target.RGBAAt(10, 10), out2.RGBAAt(5, 3))
}

func TestOutlineAndDrawing(t *testing.T) {
	w, _ := warp.NewWithParameters(warp.Translation, []float64{5, 7})
	pts := Outline(w, image.Pt(20, 10))
	assert.Equal(t, []warp.Point{{X: 5, Y: 7}, {X: 25, Y: 7}, {X: 25, Y: 17}, {X: 5, Y: 17}}, pts)

	dir := t.TempDir()
	img := testGray(40, 40)
	require.NoError(t, DrawOutline(img, w, image.Pt(20, 10), "outline", filepath.Join(dir, "o.png")))

	markers := []Marker{
		{From: warp.Point{X: 5, Y: 5}, To: warp.Point{X: 8, Y: 6}, Ok: true},
		{From: warp.Point{X: 20, Y: 20}, To: warp.Point{X: 20, Y: 20}},
	}
	require.NoError(t, DrawMarkers(img, markers, filepath.Join(dir, "m.png")))
	_, err := os.Stat(filepath.Join(dir, "m.png"))
	assert.NoError(t, err)
}
