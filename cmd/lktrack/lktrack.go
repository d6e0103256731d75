package main

import(
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/abworrall/lkalign/pkg/imageio"
	"github.com/abworrall/lkalign/pkg/track"
	"github.com/abworrall/lkalign/pkg/warp"
)

var(
	fVerbosity int
	fPoints string
	fWindow int
	fIterations int
	fEpsilon float64
	fMaxSSD float64
	fGrayMode string
	fOutput string
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fPoints, "points", "", "points to track in the first image, as x,y;x,y;...")
	flag.IntVar(&fWindow, "window", 15, "half-width of the window tracked around each point")
	flag.IntVar(&fIterations, "iters", 30, "max number of alignment steps per point")
	flag.Float64Var(&fEpsilon, "eps", 1e-3, "convergence threshold on the parameter increment")
	flag.Float64Var(&fMaxSSD, "maxssd", 100, "points whose window ends up with a larger mean squared error are lost")
	flag.StringVar(&fGrayMode, "gray", "luma", "how to turn color images gray: luma, lightness")
	flag.StringVar(&fOutput, "o", "tracks.png", "output image, with tracks drawn on the second image")
	flag.Parse()

	log.Printf("lktrack starting\n")
}

func parsePoints(s string) ([]warp.Point, error) {
	pts := []warp.Point{}
	for _, pair := range strings.Split(s, ";") {
		if pair = strings.TrimSpace(pair); pair == "" {
			continue
		}
		xy := strings.Split(pair, ",")
		if len(xy) != 2 {
			return nil, fmt.Errorf("point '%s': want x,y", pair)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xy[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("point '%s': %v", pair, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(xy[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("point '%s': %v", pair, err)
		}
		pts = append(pts, warp.Point{X: x, Y: y})
	}
	return pts, nil
}

func main() {
	if flag.NArg() != 2 {
		log.Fatal("usage: lktrack -points x,y;x,y prev next")
	}

	pts, err := parsePoints(fPoints)
	if err != nil {
		log.Fatal(err)
	}
	mode, err := imageio.ParseGrayMode(fGrayMode)
	if err != nil {
		log.Fatal(err)
	}

	prev, err := imageio.Load(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	next, err := imageio.Load(flag.Arg(1))
	if err != nil {
		log.Fatal(err)
	}

	opts := track.NewOptions()
	opts.Verbosity = fVerbosity
	opts.Window = fWindow
	opts.MaxIterations = fIterations
	opts.Epsilon = fEpsilon
	opts.MaxSSD = fMaxSSD

	results := track.Track(imageio.ToGrid(prev.Image, mode), imageio.ToGrid(next.Image, mode), pts, opts)

	markers := []imageio.Marker{}
	for _, r := range results {
		fmt.Printf("%s\n", r)
		markers = append(markers, imageio.Marker{From: r.From, To: r.To, Ok: r.Ok})
	}

	if err := imageio.DrawMarkers(next.Image, markers, fOutput); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s\n", fOutput)
}
