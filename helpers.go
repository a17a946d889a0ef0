package pubsite

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldAccents decomposes s and drops combining marks, so "Café" becomes "Cafe".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Slugify converts a title or file name to a URL-safe slug. Letters and
// digits of any script are kept; everything else collapses to single dashes.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(foldAccents(s)))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// JoinTags joins tags with ", ".
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// permalink maps a content-relative source path and slug to a site path:
// "posts/hello.md" with slug "hello" becomes "/posts/hello/".
func permalink(source, slug string) string {
	dir := filepath.ToSlash(filepath.Dir(source))
	if dir == "." {
		dir = ""
	}
	p := path.Join("/", dir, slug)
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}
