package pubsite

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"  Go 1.24: What's New?  ", "go-1-24-what-s-new"},
		{"Café au lait", "cafe-au-lait"},
		{"Ünïcödé Títle", "unicode-title"},
		{"---", ""},
		{"already-a-slug", "already-a-slug"},
		{"日本語", "日本語"},
		{"Привет, мир", "привет-мир"},
		{"c++", "c"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.expected {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		expected string
	}{
		{"https://example.com", nil, "https://example.com"},
		{"https://example.com", []string{"posts", "hello"}, "https://example.com/posts/hello/"},
		{"https://example.com/blog/", []string{"feed.xml"}, "https://example.com/blog/feed.xml/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.expected {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.expected)
		}
	}
}

func TestPermalink(t *testing.T) {
	tests := []struct {
		source, slug, expected string
	}{
		{"posts/hello.md", "hello", "/posts/hello/"},
		{"about.md", "about", "/about/"},
		{"notes/2024/idea.md", "idea", "/notes/2024/idea/"},
	}
	for _, tt := range tests {
		if got := permalink(tt.source, tt.slug); got != tt.expected {
			t.Errorf("permalink(%q, %q) = %q, want %q", tt.source, tt.slug, got, tt.expected)
		}
	}
}

func TestFilterEmpty(t *testing.T) {
	got := FilterEmpty([]string{" go ", "", "  ", "web"})
	if len(got) != 2 || got[0] != "go" || got[1] != "web" {
		t.Errorf("FilterEmpty = %q, want [go web]", got)
	}
}
