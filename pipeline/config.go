package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"runtime"

	"github.com/jimbok8/lbvh-1/bvh/validate"
	"gopkg.in/yaml.v3"
)

// The model checked when no path is supplied.
const DefaultModelPath = "models/sponza.obj"

// Supported hierarchy builders.
const (
	BuilderLBVH = "lbvh"
	BuilderSAH  = "sah"
)

// Config holds the process-wide settings of a pipeline run.
type Config struct {
	// Path or http(s) URL of the wavefront model to check.
	ModelPath string `yaml:"model"`

	// Stop at the first violation instead of collecting all of them.
	ErrorsFatal bool `yaml:"errors_fatal"`

	// Hierarchy builder (lbvh or sah).
	Builder string `yaml:"builder"`

	// Number of workers for building and rendering; 0 uses one worker per CPU.
	Workers int `yaml:"workers"`

	// Smoke-test frame dimensions.
	FrameW uint32 `yaml:"frame_width"`
	FrameH uint32 `yaml:"frame_height"`

	// If set, the smoke-test frame is written to this file as a PNG.
	FrameOut string `yaml:"frame_out"`

	// Skip the smoke-test render.
	SkipRender bool `yaml:"skip_render"`

	// Log verbosity (debug, info, notice, warning, error).
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		ModelPath: DefaultModelPath,
		Builder:   BuilderLBVH,
		FrameW:    1000,
		FrameH:    1000,
		LogLevel:  "notice",
	}
}

// LoadConfig overlays the YAML document at path on top of base. Fields that
// are absent from the document keep their base value; unknown fields are
// rejected.
func LoadConfig(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("config: %w", err)
	}

	cfg := base
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return base, fmt.Errorf("config: could not parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Validate checks the settings for values that cannot be used.
func (c Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("config: model path must not be empty")
	}
	if c.Builder != BuilderLBVH && c.Builder != BuilderSAH {
		return fmt.Errorf("config: unknown builder %q", c.Builder)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative; got %d", c.Workers)
	}
	if !c.SkipRender && (c.FrameW == 0 || c.FrameH == 0) {
		return fmt.Errorf("config: frame dimensions must be positive; got %dx%d", c.FrameW, c.FrameH)
	}
	return nil
}

// Mode returns the validation mode selected by ErrorsFatal.
func (c Config) Mode() validate.Mode {
	if c.ErrorsFatal {
		return validate.FailFast
	}
	return validate.CollectAll
}

// WorkerCount resolves the number of workers to use.
func (c Config) WorkerCount() int {
	if c.Workers == 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}
