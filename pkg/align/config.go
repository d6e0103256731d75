package align

import(
	"runtime"

	"gopkg.in/yaml.v2"
)

type Config struct {
	// How many goroutines share the per-pixel accumulation in Align
	Workers    int

	Verbosity  int

	// If set, each Align writes its error image to <DumpPrefix>-NNN.png
	DumpPrefix string
}

func NewConfig() Config {
	return Config{
		Workers: runtime.NumCPU(),
	}
}

func (c Config)AsYaml() string {
	b, _ := yaml.Marshal(c)
	return string(b)
}
