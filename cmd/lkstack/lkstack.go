package main

import(
	"flag"
	"io/ioutil"
	"log"

	"github.com/abworrall/lkalign/pkg/imageio"
	"github.com/abworrall/lkalign/pkg/stack"
	"github.com/abworrall/lkalign/pkg/warp"
)

var(
	fVerbosity int
	fWarp string
	fIterations int
	fEpsilon float64
	fWorkers int
	fGrayMode string
	fOutputDir string
	fReport string
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fWarp, "warp", "", "warp to solve for (overrides config file)")
	flag.IntVar(&fIterations, "iters", 0, "max number of alignment steps per frame (overrides config file)")
	flag.Float64Var(&fEpsilon, "eps", 0, "convergence threshold on the parameter increment (overrides config file)")
	flag.IntVar(&fWorkers, "workers", 0, "how many frames to align at once (overrides config file)")
	flag.StringVar(&fGrayMode, "gray", "", "how to turn color images gray: luma, lightness")
	flag.StringVar(&fOutputDir, "o", "", "if set, write aligned frames into this dir")
	flag.StringVar(&fReport, "report", "stack-report.yaml", "where to write the results")
	flag.Parse()

	log.Printf("lkstack starting\n")
}

func main() {
	s := stack.NewStack()

	// The gray mode is needed while loading, so it can't wait for the other overrides
	if fGrayMode != "" {
		mode, err := imageio.ParseGrayMode(fGrayMode)
		if err != nil {
			log.Fatal(err)
		}
		s.GrayMode = mode
	}

	if err := s.Load(flag.Args()...); err != nil {
		log.Fatal(err)
	}

	// Override the config file with command line args, if relevant
	if fWarp != "" {
		kind, err := warp.ParseKind(fWarp)
		if err != nil {
			log.Fatal(err)
		}
		s.Warp = kind
	}
	if fIterations > 0 { s.MaxIterations = fIterations }
	if fEpsilon > 0 { s.Epsilon = fEpsilon }
	if fWorkers > 0 { s.Workers = fWorkers }
	if fOutputDir != "" { s.OutputDir = fOutputDir }
	if fVerbosity > 0 { s.Verbosity = fVerbosity }

	if s.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", s.Config.AsYaml())
	}

	results, err := s.AlignAll()
	if err != nil {
		log.Fatalf("AlignAll failed, err: %v\n", err)
	}

	nOk := 0
	for _, r := range results {
		if r.Ok {
			nOk++
		}
	}
	log.Printf("%d/%d frames aligned ok\n", nOk, len(results))

	b, err := s.ReportYaml()
	if err != nil {
		log.Fatal(err)
	}
	if err := ioutil.WriteFile(fReport, b, 0644); err != nil {
		log.Fatal(err)
	}
	log.Printf("Report written '%s'\n", fReport)
}
