package warp

import(
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abworrall/lkalign/pkg/emath"
)

func texture(x, y int) float64 {
	fx, fy := float64(x), float64(y)
	return 100 + 40*math.Sin(fx/4) + 40*math.Cos(fy/5) + 20*math.Sin((fx+fy)/7)
}

func TestWarpImageIntegerShift(t *testing.T) {
	src := emath.NewFloatGridFunc(40, 30, texture)
	dst := emath.NewFloatGrid(10, 8)
	w, _ := NewWithParameters(Translation, []float64{12, 9})

	WarpImage(src, &dst, w)
	for y:=0; y<8; y++ {
		for x:=0; x<10; x++ {
			assert.InDelta(t, src.Get(x+12, y+9), dst.Get(x,y), 1e-9)
		}
	}

	near := emath.NewFloatGrid(10, 8)
	w2, _ := NewWithParameters(Translation, []float64{12.2, 8.9})
	WarpImageNearest(src, &near, w2)
	for y:=0; y<8; y++ {
		for x:=0; x<10; x++ {
			assert.Equal(t, src.Get(x+12, y+9), near.Get(x,y))
		}
	}
}

func TestWarpImageIdentity(t *testing.T) {
	src := emath.NewFloatGridFunc(16, 16, texture)
	for _, k := range allKinds {
		dst := src.NewFromThis()
		WarpImage(src, &dst, New(k))
		for y:=0; y<16; y++ {
			for x:=0; x<16; x++ {
				assert.InDelta(t, src.Get(x,y), dst.Get(x,y), 1e-9, k.String())
			}
		}
	}
}

func TestWarpImagesShareCoordinates(t *testing.T) {
	a := emath.NewFloatGridFunc(20, 20, texture)
	b := emath.NewFloatGridFunc(20, 20, func(x, y int) float64 { return 2*texture(x,y) })
	da, db := emath.NewFloatGrid(12, 12), emath.NewFloatGrid(12, 12)

	w, _ := NewWithParameters(Euclidean, []float64{3.3, 2.1, 0.05})
	WarpImages(w, GridPair{a, &da}, GridPair{b, &db})
	for y:=0; y<12; y++ {
		for x:=0; x<12; x++ {
			assert.InDelta(t, 2*da.Get(x,y), db.Get(x,y), 1e-9)
		}
	}

	small := emath.NewFloatGrid(6, 12)
	assert.Panics(t, func() { WarpImages(w, GridPair{a, &da}, GridPair{b, &small}) })
}

func TestWarpImageOutOfBoundsReflects(t *testing.T) {
	src := emath.NewFloatGridFunc(5, 1, func(x, y int) float64 { return float64(x) })
	dst := emath.NewFloatGrid(5, 1)
	w, _ := NewWithParameters(Translation, []float64{2, 0})
	WarpImage(src, &dst, w)
	assert.Equal(t, []float64{2, 3, 4, 3, 2}, []float64{dst.Get(0,0), dst.Get(1,0), dst.Get(2,0), dst.Get(3,0), dst.Get(4,0)})
}

func TestWarpImageFarAway(t *testing.T) {
	src := emath.NewFloatGridFunc(5, 4, texture)
	dst := emath.NewFloatGrid(3, 3)

	w, _ := NewWithParameters(Translation, []float64{math.NaN(), 0})
	WarpImage(src, &dst, w)
	assert.True(t, math.IsNaN(dst.Get(1,1)))

	w, _ = NewWithParameters(Projective, []float64{0, 0, 0, 0, 0, 0, -2, 0})
	WarpImageNearest(src, &dst, w)
	assert.True(t, math.IsNaN(dst.Get(0,0)))
	assert.False(t, math.IsNaN(dst.Get(2,2)))
}
