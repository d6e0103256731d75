package stack

import(
	"fmt"
	"image"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"

	"github.com/abworrall/lkalign/pkg/align"
	"github.com/abworrall/lkalign/pkg/emath"
	"github.com/abworrall/lkalign/pkg/imageio"
	"github.com/abworrall/lkalign/pkg/warp"
)

// A Stack is a sequence of frames of the same scene. The first frame (in
// capture order) is the reference: a template is cut from it, and every
// other frame is aligned onto that template.
type Stack struct {
	Config
	Frames  []Frame
	Results []Result
}

// Result records how one frame was aligned onto the template.
type Result struct {
	Filename   string
	Reference  bool    `yaml:",omitempty"`
	Params     []float64
	Iterations int
	Residual   float64
	SSD        float64
	ImgDiff    float64
	Converged  bool
	Ok         bool
	Error      string  `yaml:",omitempty"`
}

func (r Result)String() string {
	str := fmt.Sprintf("%-20s %v it=%2d ssd=%9.3f", filepath.Base(r.Filename), r.Params, r.Iterations, r.SSD)
	if r.Error != "" {
		str += " err=" + r.Error
	}
	return str
}

func NewStack() Stack {
	return Stack{
		Config: NewConfig(),
	}
}

// Load reads images and config files (the last .yaml wins). Frames are
// ordered by capture time, then filename.
func (s *Stack)Load(args ...string) error {
	srcs, cfgs, err := imageio.LoadFilesAndDirs(args...)
	if err != nil {
		return err
	}

	for _, filename := range cfgs {
		cfg, err := LoadConfig(filename)
		if err != nil {
			return fmt.Errorf("Loading %s as config YAML failed: %v", filename, err)
		}
		s.Config = cfg
		log.Printf("Loaded base configuration from %s\n", filename)
	}

	for _, src := range srcs {
		s.AddFrame(src)
	}
	s.SortFrames()

	return nil
}

func (s *Stack)AddFrame(src imageio.Source) {
	f := NewFrame(src, s.GrayMode)
	s.Frames = append(s.Frames, f)
	if s.Verbosity > 0 {
		log.Printf("Loaded %s\n", f)
	}
}

func (s *Stack)SortFrames() {
	sort.SliceStable(s.Frames, func(i, j int) bool {
		ti, tj := s.Frames[i].Taken, s.Frames[j].Taken
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return s.Frames[i].Filename < s.Frames[j].Filename
	})
}

// TemplateRect is the area of the reference frame used as the template.
func (s *Stack)TemplateRect() (image.Rectangle, error) {
	if len(s.Frames) == 0 {
		return image.Rectangle{}, fmt.Errorf("stack has no frames")
	}
	b := s.Frames[0].Grid.Bounds()

	r := s.TemplateArea
	if r.Empty() {
		r = image.Rect(b.Dx()/4, b.Dy()/4, b.Dx()*3/4, b.Dy()*3/4)
	}
	if r.Empty() || !r.In(b) {
		return r, fmt.Errorf("template area %v not inside reference frame %v", r, b)
	}
	return r, nil
}

// InitialWarp is where each frame's alignment starts from. Every warp family
// has (tx,ty) as its first two parameters, so by default we start at a
// shift to the template's position in the reference.
func (s *Stack)InitialWarp(tmplRect image.Rectangle) (warp.Warp, error) {
	if len(s.InitialParams) > 0 {
		return warp.NewWithParameters(s.Warp, s.InitialParams)
	}
	params := make([]float64, s.Warp.NumParameters())
	if len(params) < 2 {
		return nil, fmt.Errorf("%w: %v", warp.ErrUnknownKind, s.Warp)
	}
	params[0] = float64(tmplRect.Min.X)
	params[1] = float64(tmplRect.Min.Y)
	return warp.NewWithParameters(s.Warp, params)
}

type alignJob struct {
	// Inputs for the job
	I        int
	Template emath.FloatGrid
	Frame    *Frame
	Initial  warp.Warp

	// Output
	Result   Result
	Final    warp.Warp
	Elapsed  int64 // microsecs
}

// AlignAll aligns every frame onto the template, using a pool of
// goroutines. Each job has its own engine and warp. Results are returned in
// frame order.
func (s *Stack)AlignAll() ([]Result, error) {
	tmplRect, err := s.TemplateRect()
	if err != nil {
		return nil, err
	}
	initial, err := s.InitialWarp(tmplRect)
	if err != nil {
		return nil, err
	}
	template := s.Frames[0].Grid.Sub(tmplRect)

	if s.Verbosity > 0 {
		log.Printf("Aligning %d frames, template %v from %s, start %s\n", len(s.Frames)-1,
			tmplRect, s.Frames[0].Name(), warp.Format(initial))
	}

	results := make([]Result, len(s.Frames))
	results[0] = Result{
		Filename: s.Frames[0].Filename,
		Reference: true,
		Params: warp.ParamSlice(initial),
		Converged: true,
		Ok: true,
	}

	stats := NewStats()

	var wg sync.WaitGroup
	jobsChan    := make(chan alignJob, len(s.Frames))
	resultsChan := make(chan alignJob, len(s.Frames))

	// Kick off worker pool
	nWorkers := s.Workers
	if nWorkers < 1 {
		nWorkers = 1
	}
	for i:=0; i<nWorkers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			for job := range jobsChan {
				s.runJob(&job)
				resultsChan<- job
			}
		}()
	}

	// Feed in jobs
	for i:=1; i<len(s.Frames); i++ {
		jobsChan<- alignJob{I: i, Template: template, Frame: &s.Frames[i], Initial: initial}
	}

	close(jobsChan)
	wg.Wait()
	close(resultsChan)

	// results processor
	for job := range resultsChan {
		results[job.I] = job.Result
		stats.Record(job.Result, job.Elapsed)

		if s.OutputDir != "" && job.Final != nil {
			s.writeAligned(job.Frame, job.Final, tmplRect.Size())
		}
	}

	if s.Verbosity > 0 {
		for _, r := range results {
			log.Printf(" -- %s\n", r)
		}
		log.Printf("%s", stats)
	}

	s.Results = results
	return results, nil
}

func (s *Stack)runJob(job *alignJob) {
	r := Result{Filename: job.Frame.Filename}
	w := warp.Clone(job.Initial)

	cfg := align.NewConfig()
	cfg.Workers = s.AlignWorkers
	if s.Verbosity > 2 {
		cfg.Verbosity = s.Verbosity - 2
	}
	e := align.NewEngine(s.Warp, cfg)

	if err := e.PrepareGrids(job.Template, job.Frame.Grid); err != nil {
		r.Error = err.Error()
		job.Result = r
		return
	}

	res, err := Refine(e, w, s.RefineOptions())
	r.Params = warp.ParamSlice(w)
	r.Iterations = res.Iterations
	r.Residual = res.Residual
	r.SSD = res.SSD
	r.Converged = res.Converged
	r.ImgDiff = ImgDiff(s.Config, job.Template, job.Frame.Grid, w, job.Frame.Name())
	if res.Iterations > 0 {
		job.Elapsed = res.Elapsed.Microseconds() / int64(res.Iterations)
	}

	if err != nil {
		r.Error = err.Error()
	} else {
		r.Ok = s.MaxSSD <= 0 || r.ImgDiff <= s.MaxSSD
		job.Final = w
	}

	job.Result = r
}

func (s *Stack)writeAligned(f *Frame, w warp.Warp, size image.Point) {
	base := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
	filename := filepath.Join(s.OutputDir, "aligned-" + base + ".png")
	img, err := imageio.RenderAligned(f.Image, w, size)
	if err == nil {
		err = imageio.WritePNG(img, filename)
	}
	if err != nil {
		log.Printf("write aligned '%s': %v\n", filename, err)
	}
}

// Report is what gets written out after a run
type Report struct {
	Config  Config
	Results []Result
}

func (s *Stack)ReportYaml() ([]byte, error) {
	return yaml.Marshal(Report{s.Config, s.Results})
}
