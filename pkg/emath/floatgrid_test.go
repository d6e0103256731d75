package emath

import(
	"image"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReflect101(t *testing.T) {
	cases := []struct{ in, n, want int }{
		{0, 5, 0},
		{4, 5, 4},
		{-1, 5, 1},
		{-2, 5, 2},
		{5, 5, 3},
		{6, 5, 2},
		{-7, 5, 1},
		{13, 5, 3},
		{-3, 1, 0},
		{2, 2, 0},
		{8*1000003 + 3, 5, 3},
		{-8*1000003 - 1, 5, 1},
		{math.MaxInt, 5, 1},
		{math.MinInt, 5, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Reflect101(c.in, c.n), "Reflect101(%d,%d)", c.in, c.n)
	}
}

func TestBilinearAtPixelCenters(t *testing.T) {
	g := NewFloatGridFunc(4, 3, func(x, y int) float64 { return float64(10*y + x) })

	for y:=0; y<3; y++ {
		for x:=0; x<4; x++ {
			assert.InDelta(t, g.Get(x,y), g.Bilinear(float64(x)+0.5, float64(y)+0.5), 1e-12)
			assert.Equal(t, g.Get(x,y), g.Nearest(float64(x)+0.7, float64(y)+0.2))
		}
	}

	// Half way between (1,1) and (2,1)
	assert.InDelta(t, 11.5, g.Bilinear(2.0, 1.5), 1e-12)
	// Half way between four pixels
	assert.InDelta(t, 16.5, g.Bilinear(2.0, 2.0), 1e-12)
}

func TestBilinearBorderReflects(t *testing.T) {
	g := NewFloatGridFunc(5, 1, func(x, y int) float64 { return float64(x) })

	// Center of virtual pixel -1 is the same as pixel 1
	assert.InDelta(t, 1.0, g.Bilinear(-0.5, 0.5), 1e-12)
	// Center of virtual pixel 5 is the same as pixel 3
	assert.InDelta(t, 3.0, g.Bilinear(5.5, 0.5), 1e-12)
	// Between pixel 4 and virtual pixel 5 (== 3)
	assert.InDelta(t, 3.5, g.Bilinear(5.0, 0.5), 1e-12)
	assert.Equal(t, 3.0, g.Nearest(5.2, 0.0))
}

func TestSamplersRejectFarAddresses(t *testing.T) {
	g := NewFloatGridFunc(5, 5, func(x, y int) float64 { return float64(x + y) })

	for _, c := range [][2]float64{
		{math.NaN(), 1},
		{1, math.Inf(1)},
		{math.Inf(-1), 1},
		{1e300, 1},
		{1, -MaxSampleCoord},
	} {
		assert.True(t, math.IsNaN(g.Bilinear(c[0], c[1])), "Bilinear(%v,%v)", c[0], c[1])
		assert.True(t, math.IsNaN(g.Nearest(c[0], c[1])), "Nearest(%v,%v)", c[0], c[1])
	}

	// Far, but still folded back in
	assert.False(t, math.IsNaN(g.Bilinear(1e13, 2.5)))
	assert.Equal(t, g.Get(2,2), g.Nearest(8*1e6 + 2.5, 2.5))
}

func TestSobelOnRamp(t *testing.T) {
	g := NewFloatGridFunc(8, 6, func(x, y int) float64 { return 3.0*float64(x) - 2.0*float64(y) })
	gx, gy := g.Sobel()

	// Interior slopes come out in intensity units per pixel
	for y:=1; y<5; y++ {
		for x:=1; x<7; x++ {
			assert.InDelta(t, 3.0, gx.Get(x,y), 1e-12)
			assert.InDelta(t, -2.0, gy.Get(x,y), 1e-12)
		}
	}
	// Reflected borders have zero derivative across the edge
	assert.InDelta(t, 0.0, gx.Get(0,3), 1e-12)
	assert.InDelta(t, 0.0, gy.Get(3,0), 1e-12)
}

func TestArithmetic(t *testing.T) {
	a := NewFloatGridFunc(3, 2, func(x, y int) float64 { return float64(x + y) })
	b := NewFloatGridFunc(3, 2, func(x, y int) float64 { return 1 })
	d := a.NewFromThis()
	d.SubInto(&a, &b)

	assert.Equal(t, 3, d.Dx())
	assert.Equal(t, 2, d.Dy())
	// a sums to 9 over 6 pixels
	assert.InDelta(t, 9.0/6.0-1.0, d.Mean(), 1e-12)
	assert.InDelta(t, (1.0+0+1+0+1+4)/6.0, d.MeanSquare(), 1e-12)

	min, max := a.MinMax()
	assert.Equal(t, 0.0, min)
	assert.Equal(t, 3.0, max)

	c := a.Copy()
	c.Scale(2)
	assert.InDelta(t, 18.0, c.Sum(), 1e-12)
	assert.InDelta(t, 9.0, a.Sum(), 1e-12)
}

func TestSubAndEmpty(t *testing.T) {
	g := NewFloatGridFunc(6, 6, func(x, y int) float64 { return float64(10*y + x) })
	s := g.Sub(image.Rect(2, 1, 5, 3))
	require.Equal(t, 3, s.Dx())
	require.Equal(t, 2, s.Dy())
	assert.Equal(t, 12.0, s.Get(0,0))
	assert.Equal(t, 24.0, s.Get(2,1))

	e := NewFloatGrid(0, 4)
	assert.True(t, e.Empty())
	assert.Equal(t, 0, e.Dy())
	assert.Equal(t, 0.0, e.Mean())
}

func TestGaussianBlurKeepsConstant(t *testing.T) {
	g := NewFloatGridFunc(5, 4, func(x, y int) float64 { return 7 })
	b := g.GaussianBlur()
	for y:=0; y<4; y++ {
		for x:=0; x<5; x++ {
			assert.InDelta(t, 7.0, b.Get(x,y), 1e-12)
		}
	}
}

func TestToGrayAndToImg(t *testing.T) {
	g := NewFloatGridFunc(4, 2, func(x, y int) float64 { return float64(x*100) - 20 })
	img := g.ToGray()
	assert.Equal(t, uint8(0), img.GrayAt(0,0).Y)
	assert.Equal(t, uint8(80), img.GrayAt(1,0).Y)
	assert.Equal(t, uint8(255), img.GrayAt(3,1).Y)

	require.NoError(t, g.ToImg("test", filepath.Join(t.TempDir(), "grid.png")))
}
