package pubsite

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for a pubsite build.
type SiteConfig struct {
	Name          string `yaml:"name"`           // Site name (default "Blog")
	URL           string `yaml:"url"`            // Canonical URL (default "http://localhost:3000")
	Description   string `yaml:"description"`    // Site description for RSS and the home page
	Author        string `yaml:"author"`         // Author name for the feed
	TwitterHandle string `yaml:"twitter_handle"` // Handle linked from every page footer

	ContentDir string `yaml:"content_dir"` // Markdown sources (default "content")
	StaticDir  string `yaml:"static_dir"`  // Assets copied verbatim (default "static")
	OutputDir  string `yaml:"output_dir"`  // Generated site (default "public")

	IncludeDrafts  bool   `yaml:"include_drafts"`  // Render draft documents
	Workers        int    `yaml:"workers"`         // Render workers (default NumCPU)
	ImageMaxWidth  int    `yaml:"image_max_width"` // Static images wider than this are downscaled (default 1600)
	HighlightStyle string `yaml:"highlight_style"` // chroma style for code blocks
	HardWraps      bool   `yaml:"hard_wraps"`      // Single newlines in markdown become <br>
	Layout         string `yaml:"layout"`          // Optional html/template file replacing the embedded base layout

	Addr string `yaml:"addr"` // Preview listen address (default ":3000")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	if c.OutputDir == "" {
		c.OutputDir = "public"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.ImageMaxWidth <= 0 {
		c.ImageMaxWidth = 1600
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
}

// Metadata returns the immutable site identity passed to every render.
func (c SiteConfig) Metadata() SiteMetadata {
	return SiteMetadata{
		SiteName:      c.Name,
		TwitterHandle: c.TwitterHandle,
	}
}

// LoadConfig reads a YAML config file and applies PUBSITE_* environment
// overrides. A missing file is not an error; defaults and the environment
// still apply.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("pubsite: read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("pubsite: parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) applyEnv() {
	c.Name = EnvOr("PUBSITE_NAME", c.Name)
	c.URL = EnvOr("PUBSITE_URL", c.URL)
	c.Description = EnvOr("PUBSITE_DESCRIPTION", c.Description)
	c.Author = EnvOr("PUBSITE_AUTHOR", c.Author)
	c.TwitterHandle = EnvOr("PUBSITE_TWITTER_HANDLE", c.TwitterHandle)
	c.OutputDir = EnvOr("PUBSITE_OUTPUT_DIR", c.OutputDir)
	c.Addr = EnvOr("PUBSITE_ADDR", c.Addr)
	if v := os.Getenv("PUBSITE_INCLUDE_DRAFTS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.IncludeDrafts = b
		}
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Option configures additional Site behavior.
type Option func(*Site)

// WithLogger sets the logger used for build and preview progress.
func WithLogger(l *slog.Logger) Option {
	return func(s *Site) {
		s.logger = l
	}
}

// WithNow sets the clock used for footer years and feed timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *Site) {
		s.now = now
	}
}

// WithForce disables incremental skipping so every page is rewritten.
func WithForce(force bool) Option {
	return func(s *Site) {
		s.force = force
	}
}
