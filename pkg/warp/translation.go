package warp

import(
	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/lkalign/pkg/emath"
)

// TranslationWarp shifts by (tx, ty).
type TranslationWarp struct {
	planar
}

func NewTranslation() *TranslationWarp {
	return &TranslationWarp{newPlanar(Translation)}
}

func (w *TranslationWarp)Apply(p Point) Point {
	return Point{p.X + w.at(0), p.Y + w.at(1)}
}

func (w *TranslationWarp)Jacobian(p Point, dst *mat.Dense) *mat.Dense {
	J := jacobianDst(dst, 2)
	J.Set(0, 0, 1)
	J.Set(1, 1, 1)
	return J
}

func (w *TranslationWarp)ConstantJacobian() bool { return true }

func (w *TranslationWarp)Matrix() emath.Mat3 {
	return emath.Mat3{
		1, 0, w.at(0),
		0, 1, w.at(1),
		0, 0, 1,
	}
}
