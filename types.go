package pubsite

import (
	"html/template"
	"time"
)

// ContentDocument is one blog post or page: frontmatter metadata plus the
// compiled HTML body. It is parsed from a content file, rendered once and
// then discarded.
type ContentDocument struct {
	Title           string
	Description     string
	Published       time.Time
	Draft           bool
	Tags            []string
	TableOfContents bool
	Body            template.HTML

	Slug        string // last URL path segment
	Source      string // path relative to the content directory
	Fingerprint string // content hash recorded in the build manifest
}

// SiteMetadata is the site identity injected into every render call.
// It is built once per build from SiteConfig and never mutated.
type SiteMetadata struct {
	SiteName string
	// TwitterHandle fills the footer social link. A leading "@" is ignored;
	// when empty the link is left out of the page entirely.
	TwitterHandle string
}

// RenderedPage is the final HTML for one ContentDocument.
type RenderedPage struct {
	HTML string
}

// URLPath returns the site-relative path a document is published under,
// e.g. "/posts/hello-world/".
func (d ContentDocument) URLPath() string {
	return permalink(d.Source, d.Slug)
}

// IsDated reports whether the document carries a publish date and belongs
// in listings and feeds.
func (d ContentDocument) IsDated() bool {
	return !d.Published.IsZero()
}
