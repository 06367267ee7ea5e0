package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/image-delimit/internal/classify"
	"github.com/ironsheep/image-delimit/internal/imaging"
)

// ErrInvalid is returned (wrapped) when a configuration value is out of range.
var ErrInvalid = errors.New("invalid configuration")

// Environment variables that override values read from a config file.
const (
	EnvColor     = "IMAGE_DELIMIT_COLOR"
	EnvThreshold = "IMAGE_DELIMIT_THRESHOLD"
	EnvLogLevel  = "IMAGE_DELIMIT_LOG_LEVEL"
)

// Config is the full configuration of a split run.
//
// DelimiterColor, ColorThreshold and SampleGrid affect classification and
// grouping; the remaining fields configure decoding and output. SampleGrid 0
// samples the three fixed points; n > 0 samples the centers of an n x n grid.
type Config struct {
	DelimiterColor string  `yaml:"delimiterColor"`
	ColorThreshold float64 `yaml:"colorThreshold"`
	NamingScheme   string  `yaml:"namingScheme"`
	CreateFolders  bool    `yaml:"createFolders"`
	Move           bool    `yaml:"move"`
	Workers        int     `yaml:"workers"`
	SmoothRadius   float64 `yaml:"smoothRadius"`
	PDFDPI         int     `yaml:"pdfDPI"`
	SampleGrid     int     `yaml:"sampleGrid"`
	LogLevel       string  `yaml:"logLevel"`
}

// Default returns the documented defaults: white delimiter pages, threshold
// 10, "document" naming, one folder per group, copy rather than move.
func Default() Config {
	return Config{
		DelimiterColor: "#FFFFFF",
		ColorThreshold: classify.DefaultThreshold,
		NamingScheme:   "document",
		CreateFolders:  true,
		Move:           false,
		Workers:        runtime.NumCPU(),
		SmoothRadius:   0,
		PDFDPI:         150,
		SampleGrid:     0,
		LogLevel:       "info",
	}
}

// Load reads a YAML config file on top of Default. Keys missing from the file
// keep their default value. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides the delimiter color, threshold and log level from the
// environment when the corresponding variables are set.
func (c *Config) ApplyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvColor)); v != "" {
		c.DelimiterColor = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvThreshold)); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, EnvThreshold, v)
		}
		c.ColorThreshold = f
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks value ranges. A malformed DelimiterColor is not an error; it
// resolves to white when the classification config is built.
func (c Config) Validate() error {
	if c.ColorThreshold < 0 {
		return fmt.Errorf("%w: colorThreshold must be >= 0 (got %g)", ErrInvalid, c.ColorThreshold)
	}
	if strings.TrimSpace(c.NamingScheme) == "" {
		return fmt.Errorf("%w: namingScheme must not be empty", ErrInvalid)
	}
	if strings.ContainsAny(c.NamingScheme, `/\`) {
		return fmt.Errorf("%w: namingScheme must not contain path separators (got %q)", ErrInvalid, c.NamingScheme)
	}
	if c.SmoothRadius < 0 {
		return fmt.Errorf("%w: smoothRadius must be >= 0 (got %g)", ErrInvalid, c.SmoothRadius)
	}
	if c.SampleGrid < 0 {
		return fmt.Errorf("%w: sampleGrid must be >= 0 (got %d)", ErrInvalid, c.SampleGrid)
	}
	if c.PDFDPI <= 0 {
		return fmt.Errorf("%w: pdfDPI must be > 0 (got %d)", ErrInvalid, c.PDFDPI)
	}
	return nil
}

// Classification returns the part of the configuration the classifier sees.
func (c Config) Classification() classify.Config {
	return classify.Config{
		BlankColor: imaging.HexToColor(c.DelimiterColor),
		Threshold:  c.ColorThreshold,
	}
}

// Classifier builds the classifier for this configuration.
func (c Config) Classifier() *classify.Classifier {
	cls := classify.New(c.Classification())
	if c.SampleGrid > 0 {
		cls.Points = classify.GridPoints(c.SampleGrid)
	}
	return cls
}

// DecodeWorkers returns the decode parallelism, at least 1.
func (c Config) DecodeWorkers() int {
	if c.Workers < 1 {
		return 1
	}
	return c.Workers
}
