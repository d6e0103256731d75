package stack

import(
	"fmt"
	"image"
	"io/ioutil"
	"log"
	"runtime"

	"gopkg.in/yaml.v2"

	"github.com/abworrall/lkalign/pkg/imageio"
	"github.com/abworrall/lkalign/pkg/warp"
)

type Config struct {
	Verbosity     int

	Warp          warp.Kind
	TemplateArea  image.Rectangle  // In the reference frame; if empty, the central half is used
	InitialParams []float64        // If empty, a shift to TemplateArea.Min

	MaxIterations int
	Epsilon       float64          // Stop once the parameter increment is smaller than this
	MaxSSD        float64          // Frames that end up with a worse mean squared error are not ok; 0 means no limit

	Workers       int              // How many frames to align at once
	AlignWorkers  int              // How many goroutines each alignment step uses

	GrayMode      imageio.GrayMode
	OutputDir     string           // If set, aligned frames are written here
}

func NewConfig() Config {
	return Config{
		Warp: warp.Translation,
		MaxIterations: 50,
		Epsilon: 1e-3,
		Workers: runtime.NumCPU(),
		AlignWorkers: 1,
	}
}

func newConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	err := yaml.Unmarshal(b, &c)
	return c, err
}

func LoadConfig(filename string) (Config, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("config read %s: %v", filename, err)
	}

	return newConfigFromYaml(contents)
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Fatalf("Can't marshal config yaml: %v\n", err)
	}
	return string(b)
}

func (c Config)RefineOptions() RefineOptions {
	return RefineOptions{
		MaxIterations: c.MaxIterations,
		Epsilon: c.Epsilon,
	}
}
