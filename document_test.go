package pubsite

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pubsite/markdown"
)

var testCompiler = markdown.New(markdown.Options{})

func TestParseDocument(t *testing.T) {
	raw := []byte(`---
title: Hello World
description: A first post
published: 2025-01-15
tags: [Go, web, go, " "]
---
# Hello

Body text.
`)
	doc, err := ParseDocument("posts/hello-world.md", raw, testCompiler)
	require.NoError(t, err)

	assert.Equal(t, "Hello World", doc.Title)
	assert.Equal(t, "A first post", doc.Description)
	assert.Equal(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), doc.Published)
	assert.False(t, doc.Draft)
	assert.False(t, doc.TableOfContents)
	assert.Equal(t, []string{"go", "web"}, doc.Tags)
	assert.Equal(t, "hello-world", doc.Slug)
	assert.Equal(t, "/posts/hello-world/", doc.URLPath())
	assert.Contains(t, string(doc.Body), "<p>Body text.</p>")
	assert.NotEmpty(t, doc.Fingerprint)
}

func TestParseDocumentDateFormats(t *testing.T) {
	tests := []struct {
		value string
		want  time.Time
	}{
		{"2024-06-01", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"\"2024-06-01T10:30:00Z\"", time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)},
		{"\"2024-06-01 10:30:00\"", time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		raw := []byte("---\ntitle: Dated\npublished: " + tt.value + "\n---\nbody\n")
		doc, err := ParseDocument("dated.md", raw, testCompiler)
		require.NoError(t, err, tt.value)
		assert.True(t, tt.want.Equal(doc.Published), "published %q parsed as %v", tt.value, doc.Published)
	}
}

func TestParseDocumentInvalidDate(t *testing.T) {
	raw := []byte("---\ntitle: Bad\npublished: next tuesday\n---\nbody\n")
	_, err := ParseDocument("bad.md", raw, testCompiler)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.md")
}

func TestParseDocumentMissingTitle(t *testing.T) {
	raw := []byte("---\ndescription: no title here\n---\nbody\n")
	_, err := ParseDocument("untitled.md", raw, testCompiler)
	require.Error(t, err)
	assert.True(t, IsMissingField(err))
	assert.Contains(t, err.Error(), "untitled.md")
}

func TestParseDocumentDraftAndSlugOverride(t *testing.T) {
	raw := []byte("---\ntitle: Work in progress\ndraft: true\nslug: Custom Slug\n---\nsoon\n")
	doc, err := ParseDocument("drafts/wip.md", raw, testCompiler)
	require.NoError(t, err)
	assert.True(t, doc.Draft)
	assert.Equal(t, "custom-slug", doc.Slug)
	assert.Equal(t, "/drafts/custom-slug/", doc.URLPath())
}

func TestParseDocumentTableOfContents(t *testing.T) {
	raw := []byte("---\ntitle: Guide\ntoc: true\n---\n## Install\n\nstep\n\n## Use\n\nmore\n")
	doc, err := ParseDocument("guide.md", raw, testCompiler)
	require.NoError(t, err)

	body := string(doc.Body)
	assert.True(t, doc.TableOfContents)
	assert.True(t, strings.HasPrefix(body, `<nav class="toc"`), body)
	assert.Contains(t, body, `<a href="#install">Install</a>`)
	assert.Contains(t, body, `<a href="#use">Use</a>`)
}

func TestParseDocumentDescriptionFallsBackToExcerpt(t *testing.T) {
	raw := []byte("---\ntitle: Short\n---\nThe **whole** story.\n")
	doc, err := ParseDocument("short.md", raw, testCompiler)
	require.NoError(t, err)
	assert.Equal(t, "The whole story.", doc.Description)
}

func TestParseDocumentFingerprintTracksContent(t *testing.T) {
	a, err := ParseDocument("a.md", []byte("---\ntitle: A\n---\none\n"), testCompiler)
	require.NoError(t, err)
	b, err := ParseDocument("a.md", []byte("---\ntitle: A\n---\ntwo\n"), testCompiler)
	require.NoError(t, err)
	again, err := ParseDocument("a.md", []byte("---\ntitle: A\n---\none\n"), testCompiler)
	require.NoError(t, err)

	assert.NotEqual(t, a.Fingerprint, b.Fingerprint)
	assert.Equal(t, a.Fingerprint, again.Fingerprint)
}

func TestParseDocumentUnicodeFileName(t *testing.T) {
	doc, err := ParseDocument("posts/日本語.md", []byte("---\ntitle: Nihongo\n---\nUnique body text.\n"), testCompiler)
	require.NoError(t, err)
	assert.Equal(t, "日本語", doc.Slug)
	assert.Equal(t, "/posts/日本語/", doc.URLPath())
}

func TestParseDocumentEmptySlug(t *testing.T) {
	_, err := ParseDocument("+++.md", []byte("---\ntitle: Symbols\n---\nBody.\n"), testCompiler)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slug")

	doc, err := ParseDocument("+++.md", []byte("---\ntitle: Symbols\nslug: symbols\n---\nBody.\n"), testCompiler)
	require.NoError(t, err)
	assert.Equal(t, "/symbols/", doc.URLPath())
}

func TestParseDocumentDropsUnsluggableTags(t *testing.T) {
	doc, err := ParseDocument("a.md", []byte("---\ntitle: A\ntags: [\"+++\", go]\n---\nBody.\n"), testCompiler)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, doc.Tags)
}
