package pubsite

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
)

const twitterBaseURL = "https://x.com/"

// Renderer merges a ContentDocument and SiteMetadata into the base layout.
// It holds no per-call state and is safe for concurrent use.
type Renderer struct {
	layout *template.Template
	now    func() time.Time
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithClock sets the time source used for the footer year.
func WithClock(now func() time.Time) RendererOption {
	return func(r *Renderer) {
		r.now = now
	}
}

// WithLayout replaces the embedded base layout.
func WithLayout(t *template.Template) RendererOption {
	return func(r *Renderer) {
		r.layout = t
	}
}

// NewRenderer parses the embedded base layout unless WithLayout is given.
func NewRenderer(opts ...RendererOption) (*Renderer, error) {
	r := &Renderer{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	if r.layout == nil {
		t, err := template.ParseFS(Layouts, "layouts/base.html")
		if err != nil {
			return nil, fmt.Errorf("pubsite: parse base layout: %w", err)
		}
		r.layout = t
	}
	return r, nil
}

var defaultRenderer = sync.OnceValues(func() (*Renderer, error) {
	return NewRenderer()
})

// Render renders doc with the embedded layout and the wall clock.
func Render(doc ContentDocument, site SiteMetadata) (RenderedPage, error) {
	r, err := defaultRenderer()
	if err != nil {
		return RenderedPage{}, err
	}
	return r.Render(doc, site)
}

// layoutData is every value the base layout reads. Building it is the only
// place document and site fields meet, so a missing field fails here and
// never reaches the template.
type layoutData struct {
	Title         string
	Description   string
	SiteName      string
	TwitterHandle string
	TwitterURL    string
	Year          int
	Body          template.HTML
}

func mergeLayout(doc ContentDocument, site SiteMetadata, now time.Time) (layoutData, error) {
	if strings.TrimSpace(doc.Title) == "" {
		return layoutData{}, &MissingFieldError{Field: "title", Source: doc.Source}
	}
	if strings.TrimSpace(string(doc.Body)) == "" {
		return layoutData{}, &MissingFieldError{Field: "body", Source: doc.Source}
	}
	handle := strings.TrimPrefix(strings.TrimSpace(site.TwitterHandle), "@")
	return layoutData{
		Title:         doc.Title,
		Description:   doc.Description,
		SiteName:      site.SiteName,
		TwitterHandle: handle,
		TwitterURL:    TwitterURL(handle),
		Year:          now.Year(),
		Body:          doc.Body,
	}, nil
}

// TwitterURL builds the profile link for handle, or "" when handle is empty.
func TwitterURL(handle string) string {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return ""
	}
	return twitterBaseURL + url.PathEscape(handle)
}

// Render produces the final HTML for doc. It fails with *MissingFieldError
// when the title or body is empty and writes nothing in that case.
func (r *Renderer) Render(doc ContentDocument, site SiteMetadata) (RenderedPage, error) {
	data, err := mergeLayout(doc, site, r.now())
	if err != nil {
		return RenderedPage{}, err
	}
	var buf bytes.Buffer
	if err := templ.FromGoHTML(r.layout, data).Render(context.Background(), &buf); err != nil {
		return RenderedPage{}, fmt.Errorf("pubsite: render %q: %w", doc.Title, err)
	}
	return RenderedPage{HTML: buf.String()}, nil
}
