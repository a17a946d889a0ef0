// Package markdown compiles post bodies to HTML with goldmark and exposes
// the pieces of the result the site pipeline needs: heading anchors for a
// table of contents and plain-text excerpts.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// DefaultHighlightStyle is the chroma style used when Options leaves it empty.
const DefaultHighlightStyle = "github"

// Options tunes the compiler.
type Options struct {
	HighlightStyle string // chroma style name
	HardWraps      bool   // render single newlines as <br>
}

// Heading is a section heading found while compiling.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Result is a compiled markdown body.
type Result struct {
	HTML     string
	Headings []Heading
}

// Compiler turns markdown into HTML. It is safe for concurrent use.
type Compiler struct {
	md    goldmark.Markdown
	style string
}

// New builds a Compiler with GFM, footnotes, heading IDs and class-based
// syntax highlighting.
func New(opts Options) *Compiler {
	style := opts.HighlightStyle
	if style == "" {
		style = DefaultHighlightStyle
	}
	htmlOpts := []renderer.Option{gmhtml.WithUnsafe()}
	if opts.HardWraps {
		htmlOpts = append(htmlOpts, gmhtml.WithHardWraps())
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(htmlOpts...),
	)
	return &Compiler{md: md, style: style}
}

// Compile renders src to HTML and collects its headings.
func (c *Compiler) Compile(src []byte) (Result, error) {
	doc := c.md.Parser().Parse(text.NewReader(src))

	var headings []Heading
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		heading := Heading{Level: h.Level, Text: nodeText(h, src)}
		if id, ok := h.AttributeString("id"); ok {
			if b, ok := id.([]byte); ok {
				heading.ID = string(b)
			}
		}
		headings = append(headings, heading)
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("markdown: walk: %w", err)
	}

	var buf bytes.Buffer
	if err := c.md.Renderer().Render(&buf, src, doc); err != nil {
		return Result{}, fmt.Errorf("markdown: render: %w", err)
	}
	return Result{HTML: buf.String(), Headings: headings}, nil
}

// HighlightCSS returns the stylesheet for the compiler's highlight classes.
func (c *Compiler) HighlightCSS() (string, error) {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(c.style)); err != nil {
		return "", fmt.Errorf("markdown: highlight css: %w", err)
	}
	return buf.String(), nil
}

func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	var collect func(ast.Node)
	collect = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				b.Write(t.Segment.Value(src))
				if t.SoftLineBreak() {
					b.WriteByte(' ')
				}
			case *ast.String:
				b.Write(t.Value)
			default:
				collect(c)
			}
		}
	}
	collect(n)
	return strings.TrimSpace(b.String())
}

// TableOfContents renders h2 and h3 headings as a navigation list, or ""
// when there are none.
func TableOfContents(headings []Heading) string {
	var b strings.Builder
	for _, h := range headings {
		if h.Level < 2 || h.Level > 3 || h.ID == "" {
			continue
		}
		if b.Len() == 0 {
			b.WriteString(`<nav class="toc" aria-label="Table of contents"><ul>`)
		}
		fmt.Fprintf(&b, `<li class="toc-h%d"><a href="#%s">%s</a></li>`,
			h.Level, html.EscapeString(h.ID), html.EscapeString(h.Text))
	}
	if b.Len() == 0 {
		return ""
	}
	b.WriteString("</ul></nav>\n")
	return b.String()
}

// Component returns a templ.Component that renders src as HTML.
func (c *Compiler) Component(src string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		res, err := c.Compile([]byte(src))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, res.HTML)
		return err
	})
}
