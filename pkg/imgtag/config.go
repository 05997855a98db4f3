// Package imgtag tags, summarizes and untags the images in a directory.
package imgtag

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"k8s.io/klog/v2"

	"github.com/tstromberg/imgtagman/pkg/usertags"
	"github.com/tstromberg/imgtagman/pkg/vision"
)

// ErrNoAPIKey is returned when a command needs the vision model but no credential was found.
var ErrNoAPIKey = errors.New("no API key: set OPENAI_API_KEY (or GEMINI_API_KEY for gemini) in the environment or a .env file")

// Duration is a time.Duration written as "90s" or "2m" in config files.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Workers are pool sizes per operation.
type Workers struct {
	Tag     int `toml:"tag"`
	Summary int `toml:"summary"`
	Remove  int `toml:"remove"`
	Read    int `toml:"read"`
}

// Config holds configuration for imgtagman.
type Config struct {
	Provider     string   `toml:"provider"`
	APIKey       string   `toml:"api_key"`
	Model        string   `toml:"model"`
	BaseURL      string   `toml:"base_url"`
	Language     string   `toml:"language"`
	MaxTags      int      `toml:"max_tags"`
	MaxDimension int      `toml:"max_dimension"`
	Timeout      Duration `toml:"timeout"`
	FileTimeout  Duration `toml:"file_timeout"`

	Store     string `toml:"store"`
	Attribute string `toml:"attribute"`
	DryRun    bool   `toml:"dry_run"`

	Directory string   `toml:"-"`
	Recursive bool     `toml:"recursive"`
	Exclude   []string `toml:"exclude"`

	Workers Workers `toml:"workers"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider:    vision.ProviderOpenAI,
		Language:    "English",
		MaxTags:     10,
		Timeout:     Duration{60 * time.Second},
		FileTimeout: Duration{2 * time.Minute},
		Store:       usertags.BackendXattr,
		Directory:   ".",
		Workers: Workers{
			Tag:     10,
			Summary: 25,
			Remove:  50,
			Read:    25,
		},
	}
}

// DefaultConfigDir is where config.toml and .env are looked up.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "imgtagman")
}

// LoadConfig reads key=value files into the environment, then the TOML file
// at path (or DefaultConfigDir()/config.toml when path is empty), then
// applies environment overrides. The result is not validated, since callers
// may still apply flags; call Validate once they have.
func LoadConfig(path string) (*Config, error) {
	loadDotEnv(".env", filepath.Join(DefaultConfigDir(), ".env"))

	c := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(DefaultConfigDir(), "config.toml")
	}
	bs, err := os.ReadFile(path)
	switch {
	case err == nil:
		klog.V(1).Infof("loading config from %s", path)
		if err := toml.Unmarshal(bs, &c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		klog.V(2).Infof("no config at %s", path)
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	c.applyEnv()
	return &c, nil
}

// loadDotEnv loads each file that exists. Variables already set in the
// environment win.
func loadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			klog.Warningf("unable to load %s: %v", p, err)
			continue
		}
		klog.V(1).Infof("loaded environment from %s", p)
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("IMGTAGMAN_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("IMGTAGMAN_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("IMGTAGMAN_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("IMGTAGMAN_STORE"); v != "" {
		c.Store = v
	}
	if v := os.Getenv("IMAGE_DIRECTORY"); v != "" {
		c.Directory = v
	}

	if c.APIKey != "" {
		return
	}
	switch c.Provider {
	case vision.ProviderGemini:
		c.APIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_AI_API_KEY")
	default:
		c.APIKey = firstEnv("OPENAI_API_KEY")
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	switch c.Provider {
	case vision.ProviderOpenAI, vision.ProviderGemini:
	default:
		return fmt.Errorf("provider %q: must be %q or %q", c.Provider, vision.ProviderOpenAI, vision.ProviderGemini)
	}

	switch c.Store {
	case usertags.BackendXattr, usertags.BackendCommand, usertags.BackendExiftool:
	default:
		return fmt.Errorf("store %q: must be one of %s, %s, %s", c.Store, usertags.BackendXattr, usertags.BackendCommand, usertags.BackendExiftool)
	}

	if c.MaxTags <= 0 {
		return fmt.Errorf("max_tags must be positive, got %d", c.MaxTags)
	}
	if c.MaxDimension < 0 {
		return fmt.Errorf("max_dimension must not be negative, got %d", c.MaxDimension)
	}
	for name, n := range map[string]int{"tag": c.Workers.Tag, "summary": c.Workers.Summary, "remove": c.Workers.Remove, "read": c.Workers.Read} {
		if n <= 0 {
			return fmt.Errorf("workers.%s must be positive, got %d", name, n)
		}
	}
	return nil
}

// RequireAPIKey returns ErrNoAPIKey when no credential is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrNoAPIKey
	}
	return nil
}

// VisionConfig returns the settings for vision.New.
func (c *Config) VisionConfig() vision.Config {
	return vision.Config{
		Provider:     c.Provider,
		APIKey:       c.APIKey,
		BaseURL:      c.BaseURL,
		Model:        c.Model,
		MaxTags:      c.MaxTags,
		Language:     c.Language,
		MaxDimension: c.MaxDimension,
		Timeout:      c.Timeout.Duration,
	}
}

// StoreOptions returns the settings for usertags.New.
func (c *Config) StoreOptions() usertags.Options {
	return usertags.Options{
		Backend:   c.Store,
		Attribute: c.Attribute,
		DryRun:    c.DryRun,
	}
}

// ScanOptions returns the scanner settings for the given extension allow-list.
func (c *Config) ScanOptions(exts map[string]string) ScanOptions {
	return ScanOptions{
		Extensions: exts,
		Recursive:  c.Recursive,
		Exclude:    c.Exclude,
	}
}
