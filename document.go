package pubsite

import (
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eringen/pubsite/frontmatter"
	"github.com/eringen/pubsite/markdown"
)

const excerptLength = 160

var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// isoDate accepts the date layouts authors actually write in frontmatter.
type isoDate struct {
	time.Time
}

func (d *isoDate) UnmarshalYAML(value *yaml.Node) error {
	raw := strings.TrimSpace(value.Value)
	if raw == "" {
		return nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q, use YYYY-MM-DD or RFC 3339", raw)
}

type documentMeta struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Published   isoDate  `yaml:"published"`
	Draft       bool     `yaml:"draft"`
	Tags        []string `yaml:"tags"`
	TOC         bool     `yaml:"toc"`
	Slug        string   `yaml:"slug"`
}

// ParseDocument turns a content file into a ContentDocument. source is the
// path relative to the content directory and determines the URL.
func ParseDocument(source string, raw []byte, md *markdown.Compiler) (ContentDocument, error) {
	var meta documentMeta
	fm, body, err := frontmatter.Parse(raw, &meta)
	if err != nil {
		return ContentDocument{}, fmt.Errorf("pubsite: %s: %w", source, err)
	}
	if strings.TrimSpace(meta.Title) == "" {
		return ContentDocument{}, &MissingFieldError{Field: "title", Source: source}
	}

	res, err := md.Compile(body)
	if err != nil {
		return ContentDocument{}, fmt.Errorf("pubsite: %s: %w", source, err)
	}
	html := res.HTML
	if meta.TOC {
		html = markdown.TableOfContents(res.Headings) + html
	}

	slug := Slugify(meta.Slug)
	if slug == "" {
		slug = Slugify(strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)))
	}
	if slug == "" {
		return ContentDocument{}, fmt.Errorf("pubsite: %s: no URL slug can be derived from the file name, set slug in the frontmatter", source)
	}
	description := strings.TrimSpace(meta.Description)
	if description == "" {
		description = markdown.Excerpt(res.HTML, excerptLength)
	}

	return ContentDocument{
		Title:           strings.TrimSpace(meta.Title),
		Description:     description,
		Published:       meta.Published.Time,
		Draft:           meta.Draft,
		Tags:            normalizeTags(meta.Tags),
		TableOfContents: meta.TOC,
		Body:            template.HTML(html),
		Slug:            slug,
		Source:          filepath.ToSlash(source),
		Fingerprint:     fingerprint(fm, body),
	}, nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	var out []string
	for _, t := range FilterEmpty(tags) {
		n := normalizeTag(t)
		if Slugify(n) == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
