package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/binary-install/clangenv/pkg/registry"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is searched for in the working directory and its parents
	DefaultConfigPath = ".config/clangenv.yml"

	// FundamentalEnvVar names the root of the bootstrap framework
	FundamentalEnvVar = "DEVELOPMENT_ENVIRONMENT_FUNDAMENTAL"
)

// ErrNotFound is returned by Discover when no config file exists
var ErrNotFound = errors.New("no clangenv config found")

// Config holds the per-repository settings
type Config struct {
	// ScriptDir is the repository root that toolchain install paths are
	// relative to. Relative values are resolved against the directory
	// containing .config.
	ScriptDir string `yaml:"script_dir"`
	// FundamentalDir is the root of the bootstrap framework
	FundamentalDir string `yaml:"fundamental_dir"`
	// Tools pins tool versions, e.g. {Clang: v8.0.0}
	Tools map[string]string `yaml:"tools"`
	// Registry extends the built-in toolchain table
	Registry registry.Overrides `yaml:"registry"`
}

// Load reads and parses a clangenv config file from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file: %s", path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve config file path")
	}
	if err := cfg.SetDefaults(repositoryRoot(absPath)); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// repositoryRoot returns the directory that holds the .config directory, or
// the config file's own directory for files stored elsewhere.
func repositoryRoot(configPath string) string {
	dir := filepath.Dir(configPath)
	if filepath.Base(dir) == ".config" {
		return filepath.Dir(dir)
	}
	return dir
}

// SetDefaults fills unset fields. root is the directory relative paths are
// resolved against.
func (c *Config) SetDefaults(root string) error {
	if c.ScriptDir == "" {
		c.ScriptDir = root
	}
	c.ScriptDir = expandPath(c.ScriptDir)
	if !filepath.IsAbs(c.ScriptDir) {
		c.ScriptDir = filepath.Join(root, c.ScriptDir)
	}

	if c.FundamentalDir == "" {
		c.FundamentalDir = os.Getenv(FundamentalEnvVar)
	}
	if c.FundamentalDir != "" {
		c.FundamentalDir = expandPath(c.FundamentalDir)
		abs, err := filepath.Abs(c.FundamentalDir)
		if err != nil {
			return errors.Wrap(err, "failed to resolve fundamental directory")
		}
		c.FundamentalDir = abs
	}

	if c.Tools == nil {
		c.Tools = map[string]string{}
	}
	return nil
}

// Discover searches for a clangenv config file in the current directory
// and parent directories
func Discover() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to get current directory")
	}

	for {
		configPath := filepath.Join(dir, filepath.FromSlash(DefaultConfigPath))
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		// Check if we've reached the root
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrNotFound
}

// LoadOrDiscover loads a config from the given path, or discovers one if path
// is empty. Without a discovered file the defaults for the working directory
// are returned along with an empty path.
func LoadOrDiscover(configPath string) (*Config, string, error) {
	path := configPath
	if path == "" {
		discovered, err := Discover()
		if err != nil && errors.Cause(err) != ErrNotFound {
			return nil, "", err
		}
		if err != nil {
			wd, err := os.Getwd()
			if err != nil {
				return nil, "", errors.Wrap(err, "failed to get current directory")
			}
			log.Debugf("No config file found, using defaults for %s", wd)
			var cfg Config
			if err := cfg.SetDefaults(wd); err != nil {
				return nil, "", err
			}
			return &cfg, "", nil
		}
		path = discovered
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}

	return cfg, path, nil
}

// expandPath expands ~ and environment variables in a path
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home := os.Getenv("HOME"); home != "" {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}
