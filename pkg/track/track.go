// Package track follows sparse points from one frame to the next, by
// aligning a small window around each point with a translation-only warp.
package track

import(
	"fmt"
	"image"
	"log"
	"math"
	"runtime"
	"sync"

	"github.com/abworrall/lkalign/pkg/align"
	"github.com/abworrall/lkalign/pkg/emath"
	"github.com/abworrall/lkalign/pkg/stack"
	"github.com/abworrall/lkalign/pkg/warp"
)

type Options struct {
	Verbosity     int
	Window        int     // Half-width of the window around each point
	MaxIterations int
	Epsilon       float64
	MaxSSD        float64 // A point is lost if its window's mean squared error ends up above this
	Workers       int
}

func NewOptions() Options {
	return Options{
		Window: 15,
		MaxIterations: 30,
		Epsilon: 1e-3,
		MaxSSD: 100,
		Workers: runtime.NumCPU(),
	}
}

type Result struct {
	From, To warp.Point
	Err      float64 // Mean squared error of the window at the final position
	Ok       bool
}

func (r Result)String() string {
	status := "ok"
	if !r.Ok {
		status = "lost"
	}
	return fmt.Sprintf("%s -> %s [%s, err %.2f]", r.From, r.To, status, r.Err)
}

type trackJob struct {
	I      int
	Result Result
}

// Track finds where each of pts (in prev) has moved to in next. Results
// come back in the same order as pts.
func Track(prev, next emath.FloatGrid, pts []warp.Point, opts Options) []Result {
	results := make([]Result, len(pts))

	var wg sync.WaitGroup
	jobsChan    := make(chan trackJob, len(pts))
	resultsChan := make(chan trackJob, len(pts))

	nWorkers := opts.Workers
	if nWorkers < 1 {
		nWorkers = 1
	}
	for i:=0; i<nWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobsChan {
				job.Result = trackPoint(prev, next, job.Result.From, opts)
				resultsChan<- job
			}
		}()
	}

	for i, p := range pts {
		jobsChan<- trackJob{I: i, Result: Result{From: p}}
	}
	close(jobsChan)
	wg.Wait()
	close(resultsChan)

	for job := range resultsChan {
		results[job.I] = job.Result
	}

	if opts.Verbosity > 0 {
		for _, r := range results {
			log.Printf("track: %s\n", r)
		}
	}
	return results
}

// Window is the template area used for a point.
func Window(p warp.Point, halfWidth int, bounds image.Rectangle) image.Rectangle {
	cx, cy := int(math.Floor(p.X)), int(math.Floor(p.Y))
	r := image.Rect(cx-halfWidth, cy-halfWidth, cx+halfWidth+1, cy+halfWidth+1)
	return r.Intersect(bounds)
}

func trackPoint(prev, next emath.FloatGrid, p warp.Point, opts Options) Result {
	r := Result{From: p, To: p, Err: math.Inf(1)}

	win := Window(p, opts.Window, prev.Bounds())
	if win.Empty() {
		return r
	}

	w, _ := warp.NewWithParameters(warp.Translation, []float64{float64(win.Min.X), float64(win.Min.Y)})

	cfg := align.NewConfig()
	cfg.Workers = 1
	e := align.NewEngine(warp.Translation, cfg)
	if err := e.PrepareGrids(prev.Sub(win), next); err != nil {
		return r
	}

	res, err := stack.Refine(e, w, stack.RefineOptions{MaxIterations: opts.MaxIterations, Epsilon: opts.Epsilon})
	if err != nil {
		if opts.Verbosity > 1 {
			log.Printf("track: %s: %v\n", p, err)
		}
		return r
	}

	params := warp.ParamSlice(w)
	r.To = warp.Point{
		X: p.X + params[0] - float64(win.Min.X),
		Y: p.Y + params[1] - float64(win.Min.Y),
	}
	r.Err = res.SSD
	r.Ok = res.SSD < opts.MaxSSD
	return r
}
