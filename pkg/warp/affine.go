package warp

import(
	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/lkalign/pkg/emath"
)

// AffineWarp is a general 2x3 affine map, parameters (tx, ty, a00, a01, a10,
// a11) giving [1+a00 a01 tx; a10 1+a11 ty].
type AffineWarp struct {
	planar
}

func NewAffine() *AffineWarp {
	return &AffineWarp{newPlanar(Affine)}
}

func (w *AffineWarp)Apply(p Point) Point {
	return Point{
		(1+w.at(2))*p.X + w.at(3)*p.Y + w.at(0),
		w.at(4)*p.X + (1+w.at(5))*p.Y + w.at(1),
	}
}

func (w *AffineWarp)Jacobian(p Point, dst *mat.Dense) *mat.Dense {
	J := jacobianDst(dst, 6)
	J.Set(0, 0, 1)
	J.Set(0, 2, p.X)
	J.Set(0, 3, p.Y)
	J.Set(1, 1, 1)
	J.Set(1, 4, p.X)
	J.Set(1, 5, p.Y)
	return J
}

func (w *AffineWarp)Matrix() emath.Mat3 {
	return emath.Mat3{
		1+w.at(2),   w.at(3), w.at(0),
		  w.at(4), 1+w.at(5), w.at(1),
		        0,         0, 1,
	}
}
