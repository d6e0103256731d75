package warp

import(
	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/lkalign/pkg/emath"
)

// ProjectiveWarp is a homography, parameters (tx, ty, h00, h01, h10, h11,
// h20, h21) giving [1+h00 h01 tx; h10 1+h11 ty; h20 h21 1].
type ProjectiveWarp struct {
	planar
}

func NewProjective() *ProjectiveWarp {
	return &ProjectiveWarp{newPlanar(Projective)}
}

func (w *ProjectiveWarp)Apply(p Point) Point {
	return project(w.Matrix(), p)
}

// The derivatives pick up the perspective divide: with d the homogeneous
// coordinate and (x',y') the projected point, dx'/dh20 = -x*x'/d and so on.
func (w *ProjectiveWarp)Jacobian(p Point, dst *mat.Dense) *mat.Dense {
	d := w.at(6)*p.X + w.at(7)*p.Y + 1
	q := w.Apply(p)

	J := jacobianDst(dst, 8)
	J.Set(0, 0, 1/d)
	J.Set(0, 2, p.X/d)
	J.Set(0, 3, p.Y/d)
	J.Set(0, 6, -p.X*q.X/d)
	J.Set(0, 7, -p.Y*q.X/d)

	J.Set(1, 1, 1/d)
	J.Set(1, 4, p.X/d)
	J.Set(1, 5, p.Y/d)
	J.Set(1, 6, -p.X*q.Y/d)
	J.Set(1, 7, -p.Y*q.Y/d)
	return J
}

func (w *ProjectiveWarp)Matrix() emath.Mat3 {
	return emath.Mat3{
		1+w.at(2),   w.at(3), w.at(0),
		  w.at(4), 1+w.at(5), w.at(1),
		  w.at(6),   w.at(7), 1,
	}
}
