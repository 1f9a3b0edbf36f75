// pkg/config/config.go
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/arc-language/aptcache/pkg/core"
	"github.com/arc-language/aptcache/pkg/platform"
)

// Environment variables consulted by Load
const (
	EnvConfig = "APTC_CONFIG" // config file path
	EnvRoot   = "APTC_ROOT"   // rebases every directory
	EnvArch   = "APTC_ARCH"   // native architecture override
	EnvDebug  = "APTC_DEBUG"  // enables debug logging when set to 1 or true
)

// Default locations of the package database
const (
	DefaultStatusFile  = "/var/lib/dpkg/status"
	DefaultArchFile    = "/var/lib/dpkg/arch"
	DefaultListsDir    = "/var/lib/apt/lists"
	DefaultArchivesDir = "/var/cache/apt/archives"
)

// Dirs holds the locations the cache is built from
type Dirs struct {
	Status   string `yaml:"status" toml:"status"`
	ArchFile string `yaml:"arch_file" toml:"arch_file"`
	Lists    string `yaml:"lists" toml:"lists"`
	Archives string `yaml:"archives" toml:"archives"`
}

// Config holds aptc configuration
type Config struct {
	Dir           Dirs        `yaml:"dir" toml:"dir"`
	Architecture  string      `yaml:"architecture" toml:"architecture"`
	Architectures []string    `yaml:"architectures" toml:"architectures"`
	Debs          []string    `yaml:"debs" toml:"debs"`
	Debug         bool        `yaml:"debug" toml:"debug"`
	Logger        *log.Logger `yaml:"-" toml:"-"` // Custom logger (optional)
}

// DefaultConfig returns a configuration pointing at the system database
func DefaultConfig() *Config {
	return &Config{
		Dir: Dirs{
			Status:   DefaultStatusFile,
			ArchFile: DefaultArchFile,
			Lists:    DefaultListsDir,
			Archives: DefaultArchivesDir,
		},
	}
}

// DefaultPath returns the per-user config file location
func DefaultPath() string {
	if path := os.Getenv(EnvConfig); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "aptc", "config.yaml")
}

// Load reads configuration from path layered over the defaults, then applies
// environment overrides. An empty path means DefaultPath; a missing file is
// not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(path, data, cfg); err != nil {
				return nil, err
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}
	return nil
}

// Save saves configuration to path as yaml
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return fmt.Errorf("no config path")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func (c *Config) applyEnv() {
	if root := os.Getenv(EnvRoot); root != "" {
		c.Rebase(root)
	}
	if arch := os.Getenv(EnvArch); arch != "" {
		c.Architecture = arch
	}
	switch strings.ToLower(os.Getenv(EnvDebug)) {
	case "1", "true", "yes":
		c.Debug = true
	}
}

// Rebase prefixes every directory with root, like apt's Dir option
func (c *Config) Rebase(root string) {
	rebase := func(p string) string {
		if p == "" {
			return p
		}
		return filepath.Join(root, p)
	}
	c.Dir.Status = rebase(c.Dir.Status)
	c.Dir.ArchFile = rebase(c.Dir.ArchFile)
	c.Dir.Lists = rebase(c.Dir.Lists)
	c.Dir.Archives = rebase(c.Dir.Archives)
}

// NewLogger returns the configured logger, or a debug logger on stderr when
// Debug is set, or a logger that discards everything.
func (c *Config) NewLogger(prefix string) *log.Logger {
	if c.Logger != nil {
		return c.Logger.WithPrefix(prefix)
	}
	if c.Debug {
		return log.NewWithOptions(os.Stderr, log.Options{
			Prefix:          prefix,
			Level:           log.DebugLevel,
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
		})
	}
	return log.NewWithOptions(io.Discard, log.Options{})
}

// State is the process-wide configuration and detected system
type State struct {
	Config *Config
	System *platform.System
}

var (
	mu     sync.RWMutex
	global *State
)

// Init initializes the global configuration and system detection state.
// Calling it again replaces the previous state.
func Init(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	sys, err := platform.Detect(platform.DetectOptions{
		Architecture:  cfg.Architecture,
		Architectures: cfg.Architectures,
		ArchFile:      cfg.Dir.ArchFile,
		StatusFile:    cfg.Dir.Status,
	})
	if err != nil {
		return &core.Error{Op: "init system", Err: err}
	}

	logger := cfg.NewLogger("config")
	logger.Debug("initialized system", "label", sys.Label, "native", sys.NativeArch, "foreign", sys.ForeignArchs)
	logger.Debug("database", "status", cfg.Dir.Status, "lists", cfg.Dir.Lists)

	mu.Lock()
	global = &State{Config: cfg, System: sys}
	mu.Unlock()
	return nil
}

// Global returns the state stored by Init
func Global() (*State, error) {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		return nil, core.ErrNotInitialized
	}
	return global, nil
}

// Initialized reports whether Init has succeeded
func Initialized() bool {
	mu.RLock()
	defer mu.RUnlock()
	return global != nil
}

// Reset forgets the global state
func Reset() {
	mu.Lock()
	global = nil
	mu.Unlock()
}
