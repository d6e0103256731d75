package stack

import(
	"fmt"
	"math"

	"github.com/codahale/hdrhistogram"
	"github.com/skypies/util/histogram"
)

// Stats summarises a stack run: how well frames ended up aligned, how many
// steps they took, and how long a step takes.
type Stats struct {
	RMSError   histogram.Histogram    // sqrt(ImgDiff), in gray levels
	Iterations *hdrhistogram.Histogram
	StepMicros *hdrhistogram.Histogram
	NumFailed  int
}

func NewStats() *Stats {
	return &Stats{
		RMSError:   histogram.Histogram{NumBuckets:256, ValMin:0, ValMax:256},
		Iterations: hdrhistogram.New(0, 10000, 3),
		StepMicros: hdrhistogram.New(1, 60*1000*1000, 3),
	}
}

func (st *Stats)Record(r Result, stepMicros int64) {
	if r.Error != "" {
		st.NumFailed++
		return
	}

	rms := math.Sqrt(r.ImgDiff)
	if rms > 255 {
		rms = 255
	}
	st.RMSError.Add(histogram.ScalarVal(int(rms)))

	st.Iterations.RecordValue(int64(r.Iterations))
	if stepMicros > 0 {
		st.StepMicros.RecordValue(stepMicros)
	}
}

func (st *Stats)String() string {
	str := fmt.Sprintf("Stats: %d frames aligned, %d failed\n", st.Iterations.TotalCount(), st.NumFailed)
	str += fmt.Sprintf("  iterations: mean %.1f, p50 %d, p90 %d, max %d\n", st.Iterations.Mean(),
		st.Iterations.ValueAtQuantile(50), st.Iterations.ValueAtQuantile(90), st.Iterations.Max())
	str += fmt.Sprintf("  step time:  mean %.0fus, p50 %dus, p99 %dus\n", st.StepMicros.Mean(),
		st.StepMicros.ValueAtQuantile(50), st.StepMicros.ValueAtQuantile(99))
	str += fmt.Sprintf("  rms error:  %v\n", st.RMSError)
	return str
}
