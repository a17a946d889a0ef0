package pubsite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, time.February, d, 0, 0, 0, 0, time.UTC)
}

func testCatalog() *Catalog {
	return NewCatalog([]ContentDocument{
		{Title: "About", Slug: "about"},
		{Title: "Older", Slug: "older", Published: day(1), Tags: []string{"go"}},
		{Title: "Newest", Slug: "newest", Published: day(20), Tags: []string{"web", "go"}},
		{Title: "Middle", Slug: "middle", Published: day(10), Tags: []string{"Web"}},
	})
}

func TestCatalogOrdersNewestFirst(t *testing.T) {
	all := testCatalog().All()
	require.Len(t, all, 4)
	assert.Equal(t, []string{"newest", "middle", "older", "about"},
		[]string{all[0].Slug, all[1].Slug, all[2].Slug, all[3].Slug})
}

func TestCatalogPostsSkipsUndated(t *testing.T) {
	posts := testCatalog().Posts()
	require.Len(t, posts, 3)
	assert.Equal(t, "newest", posts[0].Slug)
}

func TestCatalogPostsTagged(t *testing.T) {
	c := testCatalog()

	web := c.PostsTagged("web")
	require.Len(t, web, 2)
	assert.Equal(t, "newest", web[0].Slug)
	assert.Equal(t, "middle", web[1].Slug)

	assert.Empty(t, c.PostsTagged("rust"))
}

func TestCatalogTagPages(t *testing.T) {
	pages := testCatalog().TagPages()
	assert.Equal(t, []TagPage{
		{Slug: "go", Tags: []string{"go"}},
		{Slug: "web", Tags: []string{"web"}},
	}, pages)
	assert.Equal(t, "/tags/go/", pages[0].URLPath())
}

func TestCatalogMergesCollidingTagSlugs(t *testing.T) {
	c := NewCatalog([]ContentDocument{
		{Title: "Cpp Post", Slug: "cpp", Published: day(2), Tags: []string{"c++"}},
		{Title: "C Post", Slug: "c", Published: day(1), Tags: []string{"c"}},
	})

	pages := c.TagPages()
	require.Len(t, pages, 1)
	assert.Equal(t, "c", pages[0].Slug)
	assert.Equal(t, "c, c++", pages[0].Label())

	tagged := c.PostsTagged("c")
	require.Len(t, tagged, 2)
	assert.Equal(t, "cpp", tagged[0].Slug)
	assert.Equal(t, "c", tagged[1].Slug)
}
