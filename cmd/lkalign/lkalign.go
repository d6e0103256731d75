package main

import(
	"flag"
	"fmt"
	"image"
	"log"
	"math"
	"math/rand"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/lkalign/pkg/align"
	"github.com/abworrall/lkalign/pkg/emath"
	"github.com/abworrall/lkalign/pkg/imageio"
	"github.com/abworrall/lkalign/pkg/stack"
	"github.com/abworrall/lkalign/pkg/warp"
)

var(
	fVerbosity int
	fWarp string
	fIterations int
	fEpsilon float64
	fInit string
	fWorkers int
	fGrayMode string
	fOutputDir string
	fDumpPrefix string
	fDemo bool
	fNearest bool
	fSeed int64
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fWarp, "warp", "translation", "warp to solve for: translation, euclidean, similarity, affine, projective")
	flag.IntVar(&fIterations, "iters", 100, "max number of alignment steps")
	flag.Float64Var(&fEpsilon, "eps", 1e-3, "stop once the parameter increment is smaller than this")
	flag.StringVar(&fInit, "init", "", "initial warp parameters, comma separated (default: identity)")
	flag.IntVar(&fWorkers, "workers", 0, "goroutines per alignment step (default: all cpus)")
	flag.StringVar(&fGrayMode, "gray", "luma", "how to turn color images gray: luma, lightness")
	flag.StringVar(&fOutputDir, "o", ".", "directory for output images")
	flag.StringVar(&fDumpPrefix, "dump", "", "write each step's error image to <dump>-NNN.png")
	flag.BoolVar(&fDemo, "demo", false, "align a random synthetic image against a crop of itself")
	flag.BoolVar(&fNearest, "nearest", false, "cut the -demo template with nearest neighbour sampling, not bilinear")
	flag.Int64Var(&fSeed, "seed", 0, "random seed for -demo (default: time based)")
	flag.Parse()

	log.Printf("lkalign starting\n")
}

func parseFloats(s string) ([]float64, error) {
	vals := []float64{}
	for _, str := range strings.Split(s, ",") {
		if str = strings.TrimSpace(str); str == "" {
			continue
		}
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return nil, fmt.Errorf("parse '%s': %v", str, err)
		}
		vals = append(vals, f)
	}
	return vals, nil
}

func main() {
	kind, err := warp.ParseKind(fWarp)
	if err != nil {
		log.Fatal(err)
	}

	cfg := align.NewConfig()
	cfg.Verbosity = fVerbosity
	cfg.DumpPrefix = fDumpPrefix
	if fWorkers > 0 {
		cfg.Workers = fWorkers
	}
	opts := stack.RefineOptions{MaxIterations: fIterations, Epsilon: fEpsilon}

	if fVerbosity > 0 {
		log.Printf("Configuration:-\n\n%s\n", cfg.AsYaml())
	}

	if fDemo {
		runDemo(kind, cfg, opts)
		return
	}

	if flag.NArg() != 2 {
		log.Fatal("usage: lkalign [flags] template target (or lkalign -demo)")
	}

	mode, err := imageio.ParseGrayMode(fGrayMode)
	if err != nil {
		log.Fatal(err)
	}
	tmplSrc, err := imageio.Load(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	targSrc, err := imageio.Load(flag.Arg(1))
	if err != nil {
		log.Fatal(err)
	}

	initParams, err := parseFloats(fInit)
	if err != nil {
		log.Fatal(err)
	}
	w, err := warp.NewWithParameters(kind, initParams)
	if err != nil {
		log.Fatal(err)
	}

	e := align.NewEngine(kind, cfg)
	if err := e.PrepareGrids(imageio.ToGrid(tmplSrc.Image, mode), imageio.ToGrid(targSrc.Image, mode)); err != nil {
		log.Fatal(err)
	}

	res, err := stack.Refine(e, w, opts)
	if err != nil {
		log.Fatalf("alignment failed after %d steps: %v\n", res.Iterations, err)
	}
	log.Printf("%d steps in %s (converged: %v), residual %.4f, ssd %.4f\n", res.Iterations, res.Elapsed,
		res.Converged, res.Residual, res.SSD)
	fmt.Printf("%s\n", describe(w))

	writeOutputs(targSrc.Image, w, e.TemplateSize())
}

// describe formats the warp, adding the shift, angle and scale for a
// similarity.
func describe(w warp.Warp) string {
	str := warp.Format(w)
	if sim, ok := w.(*warp.SimilarityWarp); ok {
		tx, ty, theta, scale := sim.Canonical()
		str += fmt.Sprintf(" (tx=%.3f, ty=%.3f, theta=%.4fdeg, scale=%.5f)", tx, ty, theta*180/math.Pi, scale)
	}
	return str
}

func writeOutputs(target image.Image, w warp.Warp, size image.Point) {
	alignedFile := filepath.Join(fOutputDir, "aligned.png")
	if aligned, err := imageio.RenderAligned(target, w, size); err != nil {
		log.Printf("render aligned: %v\n", err)
	} else if err := imageio.WritePNG(aligned, alignedFile); err != nil {
		log.Printf("%v\n", err)
	} else {
		log.Printf("Wrote %s\n", alignedFile)
	}

	outlineFile := filepath.Join(fOutputDir, "outline.png")
	if err := imageio.DrawOutline(target, w, size, warp.Format(w), outlineFile); err != nil {
		log.Printf("outline: %v\n", err)
	} else {
		log.Printf("Wrote %s\n", outlineFile)
	}
}

// runDemo makes up a target from blurred noise, cuts a template out of it
// with a known warp, then starts the alignment somewhere nearby and reports
// each step.
func runDemo(kind warp.Kind, cfg align.Config, opts stack.RefineOptions) {
	if fSeed == 0 {
		fSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(fSeed))
	log.Printf("demo: seed %d\n", fSeed)

	target := emath.NewFloatGridFunc(200, 200, func(x, y int) float64 { return rng.Float64() * 255 })
	for i:=0; i<20; i++ {
		target = target.GaussianBlur()
	}
	_, max := target.MinMax()
	target.Scale(255 / max)

	truthParams := make([]float64, kind.NumParameters())
	truthParams[0] = 40 + rng.Float64()*80
	truthParams[1] = 40 + rng.Float64()*80
	for i:=2; i<len(truthParams); i++ {
		truthParams[i] = (rng.Float64() - 0.5) * 0.04
	}
	if kind == warp.Projective {
		truthParams[6] *= 0.01
		truthParams[7] *= 0.01
	}
	truth, err := warp.NewWithParameters(kind, truthParams)
	if err != nil {
		log.Fatal(err)
	}
	if sim, ok := truth.(*warp.SimilarityWarp); ok {
		sim.SetCanonical(truthParams[0], truthParams[1], (rng.Float64()-0.5)*0.1, 0.95+rng.Float64()*0.1)
		truthParams = warp.ParamSlice(truth)
	}

	tmpl := emath.NewFloatGrid(64, 64)
	if fNearest {
		warp.WarpImageNearest(target, &tmpl, truth)
	} else {
		warp.WarpImage(target, &tmpl, truth)
	}

	startParams := append([]float64{}, truthParams...)
	startParams[0] += (rng.Float64() - 0.5) * 4
	startParams[1] += (rng.Float64() - 0.5) * 4
	w, err := warp.NewWithParameters(kind, startParams)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("demo: truth %s\n", describe(truth))
	log.Printf("demo: start %s\n", describe(w))

	e := align.NewEngine(kind, cfg)
	if err := e.PrepareGrids(tmpl, target); err != nil {
		log.Fatal(err)
	}

	for i:=0; i<opts.MaxIterations; i++ {
		residual, err := e.Align(w)
		if err != nil {
			log.Fatalf("demo: step %d: %v\n", i, err)
		}
		delta := mat.Norm(e.LastIncrement(), 2)
		log.Printf("demo: step %3d, residual %9.4f, ssd %10.4f, |delta| %.6f\n", i, residual, e.LastSSD(), delta)
		if delta < opts.Epsilon {
			break
		}
	}

	fmt.Printf("truth: %s\n", describe(truth))
	fmt.Printf("found: %s\n", describe(w))

	targetImg := target.ToGray()
	tmplFile := filepath.Join(fOutputDir, "template.png")
	if err := imageio.WritePNG(tmpl.ToGray(), tmplFile); err != nil {
		log.Printf("%v\n", err)
	} else {
		log.Printf("Wrote %s\n", tmplFile)
	}
	writeOutputs(targetImg, w, e.TemplateSize())
}
