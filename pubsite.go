// Package pubsite is a static blog generator. Markdown files with YAML
// frontmatter are compiled, merged into a shared HTML layout and written
// to an output directory together with feeds, tag pages and assets.
//
// The Page Renderer (Render) is a pure function of a ContentDocument and
// the SiteMetadata; everything else in the package feeds it.
package pubsite

import (
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/eringen/pubsite/markdown"
)

// Site is the central pubsite object. It wires together the config,
// markdown compiler, renderer and listing templates.
type Site struct {
	Config   SiteConfig
	Renderer *Renderer
	Markdown *markdown.Compiler

	list      *template.Template
	layoutSig string
	logger    *slog.Logger
	now       func() time.Time
	force     bool
}

// New creates a Site from cfg. Zero config fields get their defaults.
func New(cfg SiteConfig, opts ...Option) (*Site, error) {
	cfg.setDefaults()

	s := &Site{
		Config: cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	renderOpts := []RendererOption{WithClock(s.now)}
	base, err := Layouts.ReadFile("layouts/base.html")
	if err != nil {
		return nil, fmt.Errorf("pubsite: read base layout: %w", err)
	}
	if cfg.Layout != "" {
		base, err = os.ReadFile(cfg.Layout)
		if err != nil {
			return nil, fmt.Errorf("pubsite: read layout: %w", err)
		}
		t, err := template.New(filepath.Base(cfg.Layout)).Parse(string(base))
		if err != nil {
			return nil, fmt.Errorf("pubsite: parse layout %s: %w", cfg.Layout, err)
		}
		renderOpts = append(renderOpts, WithLayout(t))
	}

	r, err := NewRenderer(renderOpts...)
	if err != nil {
		return nil, err
	}
	s.Renderer = r
	s.Markdown = markdown.New(markdown.Options{
		HighlightStyle: cfg.HighlightStyle,
		HardWraps:      cfg.HardWraps,
	})

	list, err := template.New("list.html").Funcs(template.FuncMap{
		"date": formatDate,
		"join": JoinTags,
	}).ParseFS(Layouts, "layouts/list.html")
	if err != nil {
		return nil, fmt.Errorf("pubsite: parse list layout: %w", err)
	}
	s.list = list

	s.layoutSig = fmt.Sprintf("%s\x00%s\x00%t", base, cfg.HighlightStyle, cfg.HardWraps)
	return s, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
