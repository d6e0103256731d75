package warp

import(
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/lkalign/pkg/emath"
)

// EuclideanWarp is a rotation by theta (radians) about the origin, followed
// by a shift of (tx, ty). Parameters are (tx, ty, theta).
type EuclideanWarp struct {
	planar
}

func NewEuclidean() *EuclideanWarp {
	return &EuclideanWarp{newPlanar(Euclidean)}
}

func (w *EuclideanWarp)Apply(p Point) Point {
	s, c := math.Sincos(w.at(2))
	return Point{
		c*p.X - s*p.Y + w.at(0),
		s*p.X + c*p.Y + w.at(1),
	}
}

func (w *EuclideanWarp)Jacobian(p Point, dst *mat.Dense) *mat.Dense {
	s, c := math.Sincos(w.at(2))
	J := jacobianDst(dst, 3)
	J.Set(0, 0, 1)
	J.Set(0, 2, -s*p.X - c*p.Y)
	J.Set(1, 1, 1)
	J.Set(1, 2, c*p.X - s*p.Y)
	return J
}

func (w *EuclideanWarp)Matrix() emath.Mat3 {
	s, c := math.Sincos(w.at(2))
	return emath.Mat3{
		c, -s, w.at(0),
		s,  c, w.at(1),
		0,  0, 1,
	}
}
