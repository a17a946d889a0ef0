package pubsite

import (
	"slices"
	"sort"
	"strings"
)

// Catalog is the ordered set of documents a build publishes. Posts are
// sorted newest first; undated documents sort last by title.
type Catalog struct {
	docs []ContentDocument
	tags []TagPage
}

// TagPage is one /tags/<slug>/ listing and the tags published under it.
type TagPage struct {
	Slug string
	Tags []string
}

// URLPath returns the site-relative path of the tag listing.
func (t TagPage) URLPath() string {
	return "/tags/" + t.Slug + "/"
}

// Label is the display name of the page, e.g. "c, c++".
func (t TagPage) Label() string {
	return JoinTags(t.Tags)
}

// NewCatalog sorts docs and indexes their tags. docs is not modified.
func NewCatalog(docs []ContentDocument) *Catalog {
	sorted := make([]ContentDocument, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case a.IsDated() && !b.IsDated():
			return true
		case !a.IsDated() && b.IsDated():
			return false
		case !a.Published.Equal(b.Published):
			return a.Published.After(b.Published)
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})

	bySlug := make(map[string][]string)
	for _, d := range sorted {
		for _, t := range d.Tags {
			t = normalizeTag(t)
			slug := Slugify(t)
			if slug == "" || slices.Contains(bySlug[slug], t) {
				continue
			}
			bySlug[slug] = append(bySlug[slug], t)
		}
	}
	tags := make([]TagPage, 0, len(bySlug))
	for slug, names := range bySlug {
		sort.Strings(names)
		tags = append(tags, TagPage{Slug: slug, Tags: names})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Slug < tags[j].Slug })

	return &Catalog{docs: sorted, tags: tags}
}

// All returns every document in catalog order.
func (c *Catalog) All() []ContentDocument {
	return c.docs
}

// Posts returns the dated documents in catalog order.
func (c *Catalog) Posts() []ContentDocument {
	var posts []ContentDocument
	for _, d := range c.docs {
		if d.IsDated() {
			posts = append(posts, d)
		}
	}
	return posts
}

// TagPages returns one entry per tag URL, sorted by slug. Tags whose slugs
// collide, like "c" and "c++", share a page.
func (c *Catalog) TagPages() []TagPage {
	return c.tags
}

// PostsTagged returns dated documents carrying any tag that slugifies to slug.
func (c *Catalog) PostsTagged(slug string) []ContentDocument {
	var posts []ContentDocument
	for _, d := range c.docs {
		if !d.IsDated() {
			continue
		}
		for _, t := range d.Tags {
			if Slugify(normalizeTag(t)) == slug {
				posts = append(posts, d)
				break
			}
		}
	}
	return posts
}
