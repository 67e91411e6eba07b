package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/brettbedarf/picsort/internal/util"
	"gopkg.in/yaml.v3"
)

// Order selects how the working set is sorted after a scan
type Order = string

const (
	OrderName        Order = "name"         // lexical by full path
	OrderCaptureTime Order = "capture_time" // EXIF capture time, falling back to mtime
)

// CLI style verbosity values accepted for ConfigOverride.LogLvl
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl = util.InfoLevel

	// DefaultScanDepth only looks at the direct children of each root which
	// keeps destination subfolders from being pulled into the working set
	DefaultScanDepth = 1

	DefaultIncludeHidden = false
	DefaultOrder         = OrderName
	DefaultPurgeOnStart  = true
)

// DefaultImageExts lists the extensions (lower case, with dot) treated as images
var DefaultImageExts = []string{
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp", ".heic", ".heif",
}

// Config contains runtime configuration values for a curation session.
type Config struct {
	LogLvl        util.LogLevel // Internal log level (Default info)
	HoldingDir    string        // Where deleted files are held until purged (Default <user cache>/picsort/holding)
	ScanWorkers   int           // Max directories read concurrently during a scan (Default NumCPU)
	ScanDepth     int           // Directory levels below each root to scan; <1 means unlimited (Default 1)
	ImageExts     []string      // Extensions that make a file part of the working set
	IncludeHidden bool          // Whether dot files and dot directories are scanned (Default false)
	Order         Order         // Working set order (Default name)
	PurgeOnStart  bool          // Purge orphaned holding entries when a session starts (Default true)
	MetricsFile   string        // Prometheus textfile written on close; empty disables (Default "")
}

// IsImage reports whether name has one of the configured image extensions
func (c *Config) IsImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range c.ImageExts {
		if e == ext {
			return true
		}
	}
	return false
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	// LogLvl is verbosity between 1 (error) and 5 (trace); out of range values are clamped
	LogLvl        *int      `yaml:"log_level,omitempty" json:"log_level,omitempty"`
	HoldingDir    *string   `yaml:"holding_dir,omitempty" json:"holding_dir,omitempty"`
	ScanWorkers   *int      `yaml:"scan_workers,omitempty" json:"scan_workers,omitempty"`
	ScanDepth     *int      `yaml:"scan_depth,omitempty" json:"scan_depth,omitempty"`
	ImageExts     *[]string `yaml:"image_exts,omitempty" json:"image_exts,omitempty"`
	IncludeHidden *bool     `yaml:"include_hidden,omitempty" json:"include_hidden,omitempty"`
	Order         *Order    `yaml:"order,omitempty" json:"order,omitempty"`
	PurgeOnStart  *bool     `yaml:"purge_on_start,omitempty" json:"purge_on_start,omitempty"`
	MetricsFile   *string   `yaml:"metrics_file,omitempty" json:"metrics_file,omitempty"`
}

// DefaultHoldingDir returns <user cache dir>/picsort/holding, or a temp dir
// based path when no cache dir is known
func DefaultHoldingDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "picsort", "holding")
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		LogLvl:        DefaultLogLvl,
		HoldingDir:    DefaultHoldingDir(),
		ScanWorkers:   runtime.NumCPU(),
		ScanDepth:     DefaultScanDepth,
		ImageExts:     append([]string(nil), DefaultImageExts...),
		IncludeHidden: DefaultIncludeHidden,
		Order:         DefaultOrder,
		PurgeOnStart:  DefaultPurgeOnStart,
	}
}

// NewConfig returns the defaults with override applied. A nil override is allowed.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// VerbosityToLogLevel clamps v to 1..5 and maps it from error to trace
func VerbosityToLogLevel(v int) util.LogLevel {
	v = max(ErrorVerbose, min(TraceVerbose, v))
	lvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return lvls[v-1]
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = VerbosityToLogLevel(*override.LogLvl)
	}
	if override.HoldingDir != nil {
		c.HoldingDir = *override.HoldingDir
	}
	if override.ScanWorkers != nil {
		c.ScanWorkers = *override.ScanWorkers
	}
	if override.ScanDepth != nil {
		c.ScanDepth = *override.ScanDepth
	}
	if override.ImageExts != nil {
		exts := make([]string, 0, len(*override.ImageExts))
		for _, e := range *override.ImageExts {
			e = strings.ToLower(strings.TrimSpace(e))
			if e == "" {
				continue
			}
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			exts = append(exts, e)
		}
		c.ImageExts = exts
	}
	if override.IncludeHidden != nil {
		c.IncludeHidden = *override.IncludeHidden
	}
	if override.Order != nil {
		c.Order = *override.Order
	}
	if override.PurgeOnStart != nil {
		c.PurgeOnStart = *override.PurgeOnStart
	}
	if override.MetricsFile != nil {
		c.MetricsFile = *override.MetricsFile
	}
}

// Validate checks values that cannot be defaulted silently and resolves ~ in paths
func (c *Config) Validate() error {
	if c.ScanWorkers < 1 {
		return fmt.Errorf("scan_workers must be at least 1, got %d", c.ScanWorkers)
	}
	if c.Order != OrderName && c.Order != OrderCaptureTime {
		return fmt.Errorf("unknown order %q (want %q or %q)", c.Order, OrderName, OrderCaptureTime)
	}
	if len(c.ImageExts) == 0 {
		return fmt.Errorf("image_exts must not be empty")
	}
	if c.HoldingDir == "" {
		return fmt.Errorf("holding_dir must not be empty")
	}
	dir, err := util.ExpandPath(c.HoldingDir)
	if err != nil {
		return fmt.Errorf("holding_dir: %w", err)
	}
	if c.HoldingDir, err = filepath.Abs(dir); err != nil {
		return fmt.Errorf("holding_dir: %w", err)
	}
	if c.MetricsFile != "" {
		if c.MetricsFile, err = util.ExpandPath(c.MetricsFile); err != nil {
			return fmt.Errorf("metrics_file: %w", err)
		}
	}
	return nil
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
