// Package align implements forward additive Lucas-Kanade image alignment.
//
// An Engine is prepared once with a template and a target image, then Align
// is called repeatedly; each call performs exactly one Gauss-Newton step,
// updating the warp's parameters in place. Deciding when to stop is up to
// the caller.
package align

import(
	"fmt"
	"image"
	"log"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/lkalign/pkg/emath"
	"github.com/abworrall/lkalign/pkg/warp"
)

type Engine struct {
	Config
	kind     warp.Kind
	prepared bool

	template emath.FloatGrid
	target   emath.FloatGrid
	gradX    emath.FloatGrid // Sobel gradients of the unwarped target
	gradY    emath.FloatGrid

	// Per step buffers, all the size of the template
	warpedTarget emath.FloatGrid
	warpedGradX  emath.FloatGrid
	warpedGradY  emath.FloatGrid
	errorImage   emath.FloatGrid

	iteration     int
	lastIncrement *mat.VecDense
	lastResidual  float64
	lastSSD       float64
}

func NewEngine(kind warp.Kind, cfg Config) *Engine {
	return &Engine{
		Config: cfg,
		kind: kind,
	}
}

func (e *Engine)Kind() warp.Kind { return e.kind }
func (e *Engine)Prepared() bool  { return e.prepared }

// Iteration is the number of successful Align steps since Prepare.
func (e *Engine)Iteration() int { return e.iteration }

// LastResidual is the mean signed error returned by the last successful Align.
func (e *Engine)LastResidual() float64 { return e.lastResidual }

// LastSSD is the mean squared error of the last successful Align, measured
// before its update was applied.
func (e *Engine)LastSSD() float64 { return e.lastSSD }

// LastIncrement is the parameter update made by the last successful Align,
// or nil.
func (e *Engine)LastIncrement() *mat.VecDense {
	if e.lastIncrement == nil {
		return nil
	}
	return mat.VecDenseCopyOf(e.lastIncrement)
}

func (e *Engine)TemplateSize() image.Point {
	return image.Pt(e.template.Dx(), e.template.Dy())
}

// ErrorImage and WarpedTarget are copies of the buffers from the last Align.
func (e *Engine)ErrorImage() emath.FloatGrid   { return *e.errorImage.Copy() }
func (e *Engine)WarpedTarget() emath.FloatGrid { return *e.warpedTarget.Copy() }

// Reset drops all the buffers; the engine must be prepared again.
func (e *Engine)Reset() {
	e.prepared = false
	e.template = emath.FloatGrid{}
	e.target = emath.FloatGrid{}
	e.gradX = emath.FloatGrid{}
	e.gradY = emath.FloatGrid{}
	e.warpedTarget = emath.FloatGrid{}
	e.warpedGradX = emath.FloatGrid{}
	e.warpedGradY = emath.FloatGrid{}
	e.errorImage = emath.FloatGrid{}
	e.iteration = 0
	e.lastIncrement = nil
	e.lastResidual = 0
	e.lastSSD = 0
}

// Prepare loads a template and the target image to be aligned onto it. Both
// must be single channel. The two need not be the same size; typically the
// template is a crop. On failure the engine is left unprepared.
func (e *Engine)Prepare(template, target image.Image) error {
	tmpl, err := ToGrid(template)
	if err != nil {
		e.Reset()
		return fmt.Errorf("template: %w", err)
	}
	targ, err := ToGrid(target)
	if err != nil {
		e.Reset()
		return fmt.Errorf("target: %w", err)
	}
	return e.PrepareGrids(tmpl, targ)
}

// PrepareGrids is Prepare for images that are already intensity grids. The
// engine keeps references to both grids; callers should not modify them
// while the engine is in use.
func (e *Engine)PrepareGrids(template, target emath.FloatGrid) error {
	e.Reset()
	if template.Empty() || target.Empty() {
		return fmt.Errorf("%w: empty grid (template %dx%d, target %dx%d)", ErrInvalidInput,
			template.Dx(), template.Dy(), target.Dx(), target.Dy())
	}

	e.template = template
	e.target = target
	e.gradX, e.gradY = target.Sobel()

	e.warpedTarget = template.NewFromThis()
	e.warpedGradX = template.NewFromThis()
	e.warpedGradY = template.NewFromThis()
	e.errorImage = template.NewFromThis()

	e.prepared = true

	if e.Verbosity > 0 {
		log.Printf("align: prepared %s engine, template %dx%d, target %dx%d\n", e.kind,
			template.Dx(), template.Dy(), target.Dx(), target.Dy())
	}
	return nil
}

// Align performs one Gauss-Newton step: it resamples the target and its
// gradients through w, builds the Hessian and steepest descent vector over
// every template pixel, solves for the parameter increment and adds it to
// w. It returns the mean (signed) difference between the template and the
// warped target, as seen before the update.
//
// If the system can't be solved, ErrSingularSystem is returned and w is not
// changed; the residual is still returned.
func (e *Engine)Align(w warp.Warp) (float64, error) {
	if !e.prepared {
		return 0, ErrNotPrepared
	}
	if w == nil {
		return 0, fmt.Errorf("%w: nil warp", ErrWarpMismatch)
	}
	if w.Kind() != e.kind || w.NumParameters() != e.kind.NumParameters() {
		return 0, fmt.Errorf("%w: engine wants %s, got %s with %d params", ErrWarpMismatch,
			e.kind, w.Kind(), w.NumParameters())
	}

	n := w.NumParameters()

	var constJ *mat.Dense
	if w.ConstantJacobian() {
		constJ = w.Jacobian(warp.Point{X:0.5, Y:0.5}, nil)
	}

	bands := e.bands()
	partials := make([]partialSums, len(bands))

	var wg sync.WaitGroup
	for i, b := range bands {
		wg.Add(1)
		go func(i int, b band) {
			defer wg.Done()
			partials[i] = e.accumulate(w, constJ, b)
		}(i, b)
	}
	wg.Wait()

	// Reduce in band order, so a given worker count is deterministic
	hsum := make([]float64, n*n)
	bsum := make([]float64, n)
	for _, p := range partials {
		for i := range hsum {
			hsum[i] += p.h[i]
		}
		for i := range bsum {
			bsum[i] += p.b[i]
		}
	}

	residual := e.errorImage.Mean()
	ssd := e.errorImage.MeanSquare()

	e.dump(w, residual)

	delta, err := solve(mat.NewSymDense(n, hsum), mat.NewVecDense(n, bsum))
	if err != nil {
		if e.Verbosity > 0 {
			log.Printf("align: step %d failed for %s: %v\n", e.iteration, warp.Format(w), err)
		}
		return residual, err
	}

	params := w.Parameters()
	params.AddVec(params, delta)
	if err := w.SetParameters(params); err != nil {
		return residual, err
	}

	e.iteration++
	e.lastIncrement = delta
	e.lastResidual = residual
	e.lastSSD = ssd

	if e.Verbosity > 1 {
		log.Printf("align: step %3d, residual %10.5f, ssd %12.5f, |delta| %.6f, %s\n", e.iteration,
			residual, ssd, mat.Norm(delta, 2), warp.Format(w))
	}

	return residual, nil
}

func (e *Engine)dump(w warp.Warp, residual float64) {
	if e.DumpPrefix == "" {
		return
	}
	title := fmt.Sprintf("step %d, residual %.3f, %s", e.iteration, residual, warp.Format(w))
	filename := fmt.Sprintf("%s-%03d.png", e.DumpPrefix, e.iteration)
	if err := e.errorImage.ToImg(title, filename); err != nil {
		log.Printf("align: dump '%s': %v\n", filename, err)
	}
}
