package warp

import(
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/lkalign/pkg/emath"
)

// planar holds the parameter vector shared by all the families.
type planar struct {
	kind Kind
	p    *mat.VecDense
}

func newPlanar(k Kind) planar {
	return planar{kind: k, p: mat.NewVecDense(k.NumParameters(), nil)}
}

func (w *planar)Kind() Kind                { return w.kind }
func (w *planar)NumParameters() int        { return w.p.Len() }
func (w *planar)SetIdentity()              { w.p.Zero() }
func (w *planar)Parameters() *mat.VecDense { return mat.VecDenseCopyOf(w.p) }
func (w *planar)ConstantJacobian() bool    { return false }

func (w *planar)SetParameters(p mat.Vector) error {
	if p == nil || p.Len() != w.p.Len() {
		n := 0
		if p != nil {
			n = p.Len()
		}
		return fmt.Errorf("%w: %s takes %d, got %d", ErrParameterCount, w.kind, w.p.Len(), n)
	}
	w.p.CopyVec(p)
	return nil
}

func (w *planar)at(i int) float64 { return w.p.AtVec(i) }

// jacobianDst returns dst if it's already 2 x n, else a fresh one.
func jacobianDst(dst *mat.Dense, n int) *mat.Dense {
	if dst != nil {
		if r, c := dst.Dims(); r == 2 && c == n {
			dst.Zero()
			return dst
		}
	}
	return mat.NewDense(2, n, nil)
}

func project(m emath.Mat3, p Point) Point {
	x, y := m.Project(p.X, p.Y)
	return Point{x, y}
}
