package warp

import(
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/lkalign/pkg/emath"
)

// SimilarityWarp is rotation, uniform scale and shift. It is parameterised
// linearly as (tx, ty, a, b), giving the matrix [1+a -b tx; b 1+a ty], so
// that the Jacobian does not depend on the parameters. Use Canonical and
// SetCanonical to work with (tx, ty, theta, scale).
type SimilarityWarp struct {
	planar
}

func NewSimilarity() *SimilarityWarp {
	return &SimilarityWarp{newPlanar(Similarity)}
}

func (w *SimilarityWarp)Apply(p Point) Point {
	a, b := w.at(2), w.at(3)
	return Point{
		(1+a)*p.X - b*p.Y + w.at(0),
		b*p.X + (1+a)*p.Y + w.at(1),
	}
}

func (w *SimilarityWarp)Jacobian(p Point, dst *mat.Dense) *mat.Dense {
	J := jacobianDst(dst, 4)
	J.Set(0, 0, 1)
	J.Set(0, 2, p.X)
	J.Set(0, 3, -p.Y)
	J.Set(1, 1, 1)
	J.Set(1, 2, p.Y)
	J.Set(1, 3, p.X)
	return J
}

func (w *SimilarityWarp)Matrix() emath.Mat3 {
	a, b := w.at(2), w.at(3)
	return emath.Mat3{
		1+a,  -b, w.at(0),
		  b, 1+a, w.at(1),
		  0,   0, 1,
	}
}

// Canonical returns the shift, rotation angle (radians) and scale.
func (w *SimilarityWarp)Canonical() (tx, ty, theta, scale float64) {
	a, b := w.at(2), w.at(3)
	return w.at(0), w.at(1), math.Atan2(b, 1+a), math.Hypot(1+a, b)
}

func (w *SimilarityWarp)SetCanonical(tx, ty, theta, scale float64) {
	s, c := math.Sincos(theta)
	w.p.SetVec(0, tx)
	w.p.SetVec(1, ty)
	w.p.SetVec(2, scale*c - 1)
	w.p.SetVec(3, scale*s)
}
