package align

import(
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/lkalign/pkg/warp"
)

// A band is a range of template rows, [y0,y1)
type band struct {
	y0, y1 int
}

// partialSums holds one band's contribution to the normal equations. h is
// the full n x n Hessian, row major (only the upper triangle is filled).
type partialSums struct {
	h []float64
	b []float64
}

func (e *Engine)bands() []band {
	height := e.template.Dy()
	workers := e.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > height {
		workers = height
	}

	rows := (height + workers - 1) / workers
	bands := []band{}
	for y:=0; y<height; y+=rows {
		end := y + rows
		if end > height {
			end = height
		}
		bands = append(bands, band{y, end})
	}
	return bands
}

// accumulate resamples one band of the template frame, fills in the error
// image, and sums sd^T.sd and sd^T.err over its pixels, where sd is the
// steepest descent row [gx gy].J
func (e *Engine)accumulate(w warp.Warp, constJ *mat.Dense, b band) partialSums {
	n := w.NumParameters()
	ps := partialSums{
		h: make([]float64, n*n),
		b: make([]float64, n),
	}

	warp.WarpRows(w, warp.InterpBilinear, b.y0, b.y1,
		warp.GridPair{Src: e.target, Dst: &e.warpedTarget},
		warp.GridPair{Src: e.gradX,  Dst: &e.warpedGradX},
		warp.GridPair{Src: e.gradY,  Dst: &e.warpedGradY},
	)

	J := constJ
	var jbuf *mat.Dense
	sd := make([]float64, n)
	width := e.template.Dx()

	for y:=b.y0; y<b.y1; y++ {
		tmpl := e.template.Row(y)
		warped := e.warpedTarget.Row(y)
		gxRow := e.warpedGradX.Row(y)
		gyRow := e.warpedGradY.Row(y)
		errRow := e.errorImage.Row(y)

		for x:=0; x<width; x++ {
			errRow[x] = tmpl[x] - warped[x]

			if constJ == nil {
				jbuf = w.Jacobian(warp.Point{X:float64(x)+0.5, Y:float64(y)+0.5}, jbuf)
				J = jbuf
			}

			gx, gy := gxRow[x], gyRow[x]
			for i:=0; i<n; i++ {
				sd[i] = gx*J.At(0,i) + gy*J.At(1,i)
			}
			for i:=0; i<n; i++ {
				row := ps.h[i*n:]
				for j:=i; j<n; j++ {
					row[j] += sd[i] * sd[j]
				}
				ps.b[i] += sd[i] * errRow[x]
			}
		}
	}

	return ps
}

// rankCutoff is the smallest singular value, relative to the largest, that
// the least squares fallback treats as non-zero.
const rankCutoff = 1e-10

// solve finds delta in H.delta = b. Cholesky handles the usual positive
// definite case; when H is rank deficient (a ramp has no texture along one
// axis, say) the minimum norm least squares solution is taken from the SVD
// instead. Only an all-zero or non-finite system is singular.
func solve(H *mat.SymDense, b *mat.VecDense) (*mat.VecDense, error) {
	if !allFinite(H) || !allFinite(b) {
		return nil, fmt.Errorf("%w: non-finite hessian or gradient", ErrSingularSystem)
	}

	delta := mat.NewVecDense(b.Len(), nil)

	var chol mat.Cholesky
	if ok := chol.Factorize(H); ok {
		if err := chol.SolveVecTo(delta, b); err == nil && allFinite(delta) {
			return delta, nil
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(H, mat.SVDFull); !ok {
		return nil, fmt.Errorf("%w: SVD of hessian failed", ErrSingularSystem)
	}
	rank := svd.Rank(rankCutoff)
	if rank < 1 {
		return nil, fmt.Errorf("%w: hessian is zero", ErrSingularSystem)
	}
	delta.Zero()
	svd.SolveVecTo(delta, b, rank)
	if !allFinite(delta) {
		return nil, fmt.Errorf("%w: non-finite increment", ErrSingularSystem)
	}
	return delta, nil
}

func allFinite(m mat.Matrix) bool {
	r, c := m.Dims()
	for i:=0; i<r; i++ {
		for j:=0; j<c; j++ {
			v := m.At(i,j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
