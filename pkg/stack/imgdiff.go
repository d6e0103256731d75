package stack

import(
	"fmt"
	"log"

	"github.com/abworrall/lkalign/pkg/emath"
	"github.com/abworrall/lkalign/pkg/warp"
)

// ImgDiff warps the frame into the template's frame, and returns the mean
// squared intensity difference. If a name is passed and the config is
// verbose, the difference image is written out.
func ImgDiff(cfg Config, template, frame emath.FloatGrid, w warp.Warp, name string) float64 {
	warped := template.NewFromThis()
	warp.WarpImages(w, warp.GridPair{Src: frame, Dst: &warped})

	diff := template.NewFromThis()
	diff.SubInto(&template, &warped)
	errMetric := diff.MeanSquare()

	if cfg.Verbosity > 1 && name != "" {
		title := fmt.Sprintf("%s: mse=%.3f; %s", name, errMetric, warp.Format(w))
		if err := diff.ToImg(title, fmt.Sprintf("diff-%s.png", name)); err != nil {
			log.Printf("imgdiff: %v\n", err)
		}
	}

	return errMetric
}
