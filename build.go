package pubsite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/eringen/pubsite/internal/logfields"
)

// feedSize caps how many posts appear in feed.xml.
const feedSize = 20

// BuildReport summarizes one Build.
type BuildReport struct {
	Rendered  int
	Unchanged int
	Drafts    int
	Images    int
	Failed    []*PageError
	Duration  time.Duration
}

// Build compiles every document under ContentDir into OutputDir. A failing
// page is recorded in the report and the remaining pages are still written;
// the returned error then joins all page failures.
func (s *Site) Build(ctx context.Context) (BuildReport, error) {
	start := time.Now()
	cfg := s.Config
	var report BuildReport

	sources, err := discover(cfg.ContentDir)
	if err != nil {
		return report, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return report, fmt.Errorf("pubsite: create output dir: %w", err)
	}
	prev, err := LoadManifest(cfg.OutputDir)
	if err != nil {
		return report, err
	}

	parsed := make([]ContentDocument, len(sources))
	parseErrs := make([]error, len(sources))
	err = forEach(ctx, len(sources), cfg.Workers, func(i int) {
		parsed[i], parseErrs[i] = s.loadDocument(sources[i])
	})
	if err != nil {
		return report, err
	}

	var candidates []ContentDocument
	for i, doc := range parsed {
		if parseErrs[i] != nil {
			report.Failed = append(report.Failed, &PageError{Source: sources[i], Err: parseErrs[i]})
			continue
		}
		if doc.Draft && !cfg.IncludeDrafts {
			report.Drafts++
			continue
		}
		candidates = append(candidates, doc)
	}
	docs, conflicts := claimURLs(candidates)
	report.Failed = append(report.Failed, conflicts...)

	site := cfg.Metadata()
	now := s.now()
	next := &Manifest{
		Site:  siteSignature(site, now.Year(), s.layoutSig),
		Pages: map[string]ManifestPage{},
	}

	results := make([]pageResult, len(docs))
	err = forEach(ctx, len(docs), cfg.Workers, func(i int) {
		results[i] = s.writePage(docs[i], site, prev, next.Site)
	})
	if err != nil {
		return report, err
	}
	for i, res := range results {
		if res.err != nil {
			report.Failed = append(report.Failed, &PageError{Source: docs[i].Source, Err: res.err})
			continue
		}
		if res.skipped {
			report.Unchanged++
		} else {
			report.Rendered++
			s.logger.Debug("page written", logfields.Source(docs[i].Source), logfields.Output(res.output))
		}
		next.Pages[docs[i].Source] = ManifestPage{Fingerprint: docs[i].Fingerprint, Output: res.output}
	}

	cat := NewCatalog(docs)
	next.Listings, err = s.writeListings(ctx, cat, site)
	if err != nil {
		return report, err
	}
	if err := s.writeSiteFiles(cat, now); err != nil {
		return report, err
	}
	if _, err := os.Stat(cfg.StaticDir); err == nil {
		n, err := s.copyStatic(cfg.StaticDir, cfg.OutputDir)
		if err != nil {
			return report, err
		}
		report.Images = n
	}

	removeStale(cfg.OutputDir, prev, next)
	if err := next.Save(cfg.OutputDir); err != nil {
		return report, err
	}

	report.Duration = time.Since(start)
	s.logger.Info("build complete",
		logfields.Pages(report.Rendered),
		"unchanged", report.Unchanged,
		"drafts", report.Drafts,
		"failed", len(report.Failed),
		logfields.Duration(report.Duration))

	if len(report.Failed) > 0 {
		errs := make([]error, len(report.Failed))
		for i, f := range report.Failed {
			errs[i] = f
		}
		return report, fmt.Errorf("pubsite: %d page(s) failed: %w", len(errs), errors.Join(errs...))
	}
	return report, nil
}

// claimURLs keeps the first document for each URL path and reports the
// rest as failures. The home page and the tag listings own their paths
// before any document does.
func claimURLs(candidates []ContentDocument) ([]ContentDocument, []*PageError) {
	owner := map[string]string{"/": "the home page"}
	for _, t := range NewCatalog(candidates).TagPages() {
		owner[t.URLPath()] = "the tag listing"
	}

	var docs []ContentDocument
	var failed []*PageError
	for _, doc := range candidates {
		url := doc.URLPath()
		if other, taken := owner[url]; taken {
			failed = append(failed, &PageError{
				Source: doc.Source,
				Err:    fmt.Errorf("output %s already produced by %s", url, other),
			})
			continue
		}
		owner[url] = doc.Source
		docs = append(docs, doc)
	}
	return docs, failed
}

// discover lists markdown sources under dir, relative to dir and using
// forward slashes. Hidden entries and names starting with "_" are skipped.
func discover(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if path != dir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isMarkdown(name) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pubsite: scan content: %w", err)
	}
	return out, nil
}

func isMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func (s *Site) loadDocument(source string) (ContentDocument, error) {
	raw, err := os.ReadFile(filepath.Join(s.Config.ContentDir, filepath.FromSlash(source)))
	if err != nil {
		return ContentDocument{}, err
	}
	return ParseDocument(source, raw, s.Markdown)
}

// forEach runs fn for 0..n-1 on a pool of workers. Once ctx is done no new
// indexes are handed out and ctx.Err() is returned after in-flight calls end.
func forEach(ctx context.Context, n, workers int, fn func(i int)) error {
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}

dispatch:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return ctx.Err()
}

type pageResult struct {
	output  string
	skipped bool
	err     error
}

func (s *Site) writePage(doc ContentDocument, site SiteMetadata, prev *Manifest, sig string) pageResult {
	output := outputPath(doc.URLPath())
	res := pageResult{output: output}
	if !s.force && prev.Unchanged(sig, doc.Source, doc.Fingerprint, s.Config.OutputDir) {
		res.skipped = true
		return res
	}
	page, err := s.Renderer.Render(doc, site)
	if err != nil {
		res.err = err
		return res
	}
	res.err = writeOutput(s.Config.OutputDir, output, page.HTML)
	return res
}

// outputPath maps a URL path like /posts/hello/ to posts/hello/index.html.
func outputPath(urlPath string) string {
	rel := strings.Trim(urlPath, "/")
	if rel == "" {
		return "index.html"
	}
	return rel + "/index.html"
}

func writeOutput(root, rel, content string) error {
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

type listData struct {
	Intro     template.HTML
	Tags      []TagPage
	ActiveTag string
	Posts     []ContentDocument
}

const notFoundMarkdown = "Nothing lives at this address. Try the [home page](/)."

// writeListings renders the home page, one page per tag slug, and 404.html.
// It returns the output paths it wrote.
func (s *Site) writeListings(ctx context.Context, cat *Catalog, site SiteMetadata) ([]string, error) {
	tags := cat.TagPages()

	var intro bytes.Buffer
	if err := s.Markdown.Component(s.Config.Description).Render(ctx, &intro); err != nil {
		return nil, fmt.Errorf("pubsite: render intro: %w", err)
	}
	home, err := s.listPage("Home", s.Config.Description, listData{
		Intro: template.HTML(intro.String()),
		Tags:  tags,
		Posts: cat.Posts(),
	})
	if err != nil {
		return nil, err
	}
	outputs := []string{"index.html"}
	if err := s.renderListing(home, site, "index.html"); err != nil {
		return nil, err
	}

	for _, tag := range tags {
		label := tag.Label()
		doc, err := s.listPage("Tagged "+label, "Posts tagged "+label, listData{
			Tags:      tags,
			ActiveTag: tag.Slug,
			Posts:     cat.PostsTagged(tag.Slug),
		})
		if err != nil {
			return nil, err
		}
		output := outputPath(tag.URLPath())
		if err := s.renderListing(doc, site, output); err != nil {
			return nil, err
		}
		outputs = append(outputs, output)
	}

	var body bytes.Buffer
	if err := s.Markdown.Component(notFoundMarkdown).Render(ctx, &body); err != nil {
		return nil, fmt.Errorf("pubsite: render 404: %w", err)
	}
	notFound := ContentDocument{Title: "Page not found", Body: template.HTML(body.String())}
	if err := s.renderListing(notFound, site, "404.html"); err != nil {
		return nil, err
	}
	return append(outputs, "404.html"), nil
}

func (s *Site) listPage(title, description string, data listData) (ContentDocument, error) {
	var buf bytes.Buffer
	if err := s.list.Execute(&buf, data); err != nil {
		return ContentDocument{}, fmt.Errorf("pubsite: render listing %q: %w", title, err)
	}
	return ContentDocument{
		Title:       title,
		Description: description,
		Body:        template.HTML(buf.String()),
	}, nil
}

func (s *Site) renderListing(doc ContentDocument, site SiteMetadata, output string) error {
	page, err := s.Renderer.Render(doc, site)
	if err != nil {
		return fmt.Errorf("pubsite: render %s: %w", output, err)
	}
	if err := writeOutput(s.Config.OutputDir, output, page.HTML); err != nil {
		return fmt.Errorf("pubsite: write %s: %w", output, err)
	}
	return nil
}

// writeSiteFiles writes feed.xml, sitemap.xml, robots.txt and highlight.css.
func (s *Site) writeSiteFiles(cat *Catalog, now time.Time) error {
	posts := cat.Posts()
	if len(posts) > feedSize {
		posts = posts[:feedSize]
	}

	var feed bytes.Buffer
	if err := WriteRSS(&feed, s.Config, posts, now); err != nil {
		return err
	}
	var sitemap bytes.Buffer
	if err := WriteSitemap(&sitemap, s.Config, cat); err != nil {
		return err
	}
	css, err := s.Markdown.HighlightCSS()
	if err != nil {
		return err
	}

	files := map[string]string{
		"feed.xml":      feed.String(),
		"sitemap.xml":   sitemap.String(),
		"robots.txt":    RobotsTxt(s.Config),
		"highlight.css": css,
	}
	for name, content := range files {
		if err := writeOutput(s.Config.OutputDir, name, content); err != nil {
			return fmt.Errorf("pubsite: write %s: %w", name, err)
		}
	}
	return nil
}

// removeStale deletes every output recorded in prev that next no longer
// produces, along with any directories left empty.
func removeStale(outDir string, prev, next *Manifest) {
	keep := next.Outputs()
	for output := range prev.Outputs() {
		if _, ok := keep[output]; ok || output == "" {
			continue
		}
		path := filepath.Join(outDir, filepath.FromSlash(output))
		if os.Remove(path) != nil {
			continue
		}
		for dir := filepath.Dir(path); dir != outDir && strings.HasPrefix(dir, outDir); dir = filepath.Dir(dir) {
			if os.Remove(dir) != nil {
				break
			}
		}
	}
}
