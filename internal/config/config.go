// Package config manages build configuration from a YAML file, environment
// variables, and flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const envPrefix = "SITEMD_"

// Resizer implementation names accepted by Config.ResizeTool.
const (
	ResizeMagick = "magick"
	ResizeNative = "native"
)

// Config holds runtime configuration for the site builder.
type Config struct {
	RootDir     string   `yaml:"root"`
	OutputDir   string   `yaml:"out"`
	Extensions  []string `yaml:"extensions"`
	ResizeTool  string   `yaml:"resize_tool"`
	Parallelism int      `yaml:"parallelism"`
	CleanOutput bool     `yaml:"clean"`
	Watch       bool     `yaml:"watch"`
	Verbose     bool     `yaml:"verbose"`
}

// Default returns ready-to-use defaults prior to file/env/flag overrides.
func Default() Config {
	return Config{
		RootDir:     ".",
		OutputDir:   "dist",
		Extensions:  []string{".md", ".markdown", ".txt"},
		ResizeTool:  ResizeMagick,
		Parallelism: 4,
	}
}

// RegisterFlags attaches configuration flags to the provided FlagSet.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.RootDir, "root", "r", cfg.RootDir, "root directory containing content documents")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "output directory for transformed documents")
	fs.StringSliceVar(&cfg.Extensions, "ext", cfg.Extensions, "file extensions treated as content documents")
	fs.StringVar(&cfg.ResizeTool, "resizer", cfg.ResizeTool, "thumbnail resizer: magick (external ImageMagick) or native (in-process)")
	fs.IntVar(&cfg.Parallelism, "parallel", cfg.Parallelism, "max concurrent image resolutions per document")
	fs.BoolVar(&cfg.CleanOutput, "clean", cfg.CleanOutput, "wipe the output directory before building")
	fs.BoolVarP(&cfg.Watch, "watch", "w", cfg.Watch, "rebuild documents as they change")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "enable verbose logging")
}

// LoadFile merges settings from a YAML config file into cfg in place.
func LoadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path) //nolint:gosec // path supplied by the operator
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnvOverrides reads supported environment variables and overrides cfg in place.
func ApplyEnvOverrides(cfg *Config) {
	applyStringEnv("ROOT", func(v string) { cfg.RootDir = v })
	applyStringEnv("OUT", func(v string) { cfg.OutputDir = v })
	applyStringEnv("EXT", func(v string) { cfg.Extensions = splitList(v) })
	applyStringEnv("RESIZER", func(v string) { cfg.ResizeTool = v })
	applyIntEnv("PARALLEL", func(v int) { cfg.Parallelism = v })
	applyBoolEnv("CLEAN", func(v bool) { cfg.CleanOutput = v })
	applyBoolEnv("WATCH", func(v bool) { cfg.Watch = v })
	applyBoolEnv("VERBOSE", func(v bool) { cfg.Verbose = v })
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func applyStringEnv(key string, apply func(string)) {
	if raw, ok := lookupNonEmpty(key); ok {
		apply(raw)
	}
}

func applyIntEnv(key string, apply func(int)) {
	if raw, ok := lookupNonEmpty(key); ok {
		if value, err := strconv.Atoi(raw); err == nil {
			apply(value)
		}
	}
}

func applyBoolEnv(key string, apply func(bool)) {
	if raw, ok := lookupNonEmpty(key); ok {
		if value, err := strconv.ParseBool(raw); err == nil {
			apply(value)
		}
	}
}

func lookupNonEmpty(key string) (string, bool) {
	raw, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return "", false
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false
	}
	return value, true
}

// Finalize validates and normalizes the configuration.
func Finalize(cfg *Config) error {
	root, err := filepath.Abs(cfg.RootDir)
	if err != nil {
		return fmt.Errorf("resolve root directory: %w", err)
	}
	cfg.RootDir = root

	if cfg.OutputDir == "" {
		cfg.OutputDir = "dist"
	}
	out, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("resolve output directory: %w", err)
	}
	cfg.OutputDir = out

	if len(cfg.Extensions) == 0 {
		cfg.Extensions = Default().Extensions
	}
	for i, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			cfg.Extensions[i] = "." + ext
		}
	}

	switch cfg.ResizeTool {
	case ResizeMagick, ResizeNative:
	default:
		return fmt.Errorf("unknown resizer %q (want %s or %s)", cfg.ResizeTool, ResizeMagick, ResizeNative)
	}

	if cfg.Parallelism <= 0 {
		cfg.Parallelism = Default().Parallelism
	}

	return nil
}
