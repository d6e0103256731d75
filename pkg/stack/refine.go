package stack

import(
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/lkalign/pkg/align"
	"github.com/abworrall/lkalign/pkg/warp"
)

type RefineOptions struct {
	MaxIterations int
	Epsilon       float64
}

type RefineResult struct {
	Iterations int
	Residual   float64 // Mean signed error at the last step
	SSD        float64 // Mean squared error at the last step
	Converged  bool    // Stopped because the increment got small, not because we ran out of steps
	Elapsed    time.Duration
}

// Refine runs Align steps on a prepared engine until the parameter increment
// falls below opts.Epsilon, or opts.MaxIterations steps have been taken. A
// step that fails ends the refinement, returning the error; w keeps the
// parameters from the last good step.
func Refine(e *align.Engine, w warp.Warp, opts RefineOptions) (RefineResult, error) {
	res := RefineResult{}
	start := time.Now()

	for res.Iterations < opts.MaxIterations {
		residual, err := e.Align(w)
		if err != nil {
			res.Elapsed = time.Since(start)
			return res, err
		}
		res.Iterations++
		res.Residual = residual
		res.SSD = e.LastSSD()

		if mat.Norm(e.LastIncrement(), 2) < opts.Epsilon {
			res.Converged = true
			break
		}
	}

	res.Elapsed = time.Since(start)
	return res, nil
}
