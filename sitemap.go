package pubsite

import (
	"encoding/xml"
	"fmt"
	"io"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// WriteSitemap writes sitemap.xml covering the home page, every document
// and every tag page.
func WriteSitemap(w io.Writer, cfg SiteConfig, cat *Catalog) error {
	base := cfg.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
	}
	for _, d := range cat.All() {
		u := sitemapURL{Loc: BuildURL(base, d.URLPath())}
		if d.IsDated() {
			u.LastMod = d.Published.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	for _, t := range cat.TagPages() {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, t.URLPath())})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if err := xml.NewEncoder(w).Encode(sitemap); err != nil {
		return fmt.Errorf("pubsite: encode sitemap: %w", err)
	}
	return nil
}

// RobotsTxt returns a robots.txt that points crawlers at the sitemap.
func RobotsTxt(cfg SiteConfig) string {
	return fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s\n", sitemapLocation(cfg.URL))
}

func sitemapLocation(base string) string {
	u := BuildURL(base)
	if len(u) > 0 && u[len(u)-1] == '/' {
		return u + "sitemap.xml"
	}
	return u + "/sitemap.xml"
}
