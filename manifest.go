package pubsite

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/inful/mdfp"
)

// ManifestFile is written to the output directory after every build.
const ManifestFile = ".pubsite-manifest.json"

// Manifest records what the previous build wrote so unchanged pages can be
// skipped. A page is reused only when both its fingerprint and the site
// signature match.
type Manifest struct {
	Site     string                  `json:"site"`
	Pages    map[string]ManifestPage `json:"pages"`
	Listings []string                `json:"listings,omitempty"` // home, tag and 404 outputs
}

// ManifestPage is one rendered page keyed by its source path.
type ManifestPage struct {
	Fingerprint string `json:"fingerprint"`
	Output      string `json:"output"`
}

func fingerprint(fm, body []byte) string {
	return mdfp.CalculateFingerprintFromParts(strings.TrimRight(string(fm), "\r\n"), string(body))
}

// siteSignature hashes everything outside a document that changes its
// rendered HTML.
func siteSignature(site SiteMetadata, year int, parts ...string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d", site.SiteName, site.TwitterHandle, year)
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// LoadManifest reads the manifest in dir. A missing or unreadable manifest
// yields an empty one, which simply forces a full build.
func LoadManifest(dir string) (*Manifest, error) {
	m := &Manifest{Pages: map[string]ManifestPage{}}
	b, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pubsite: read manifest: %w", err)
	}
	if err := json.Unmarshal(b, m); err != nil {
		return &Manifest{Pages: map[string]ManifestPage{}}, nil
	}
	if m.Pages == nil {
		m.Pages = map[string]ManifestPage{}
	}
	return m, nil
}

// Save writes the manifest into dir.
func (m *Manifest) Save(dir string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("pubsite: encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), b, 0o644); err != nil {
		return fmt.Errorf("pubsite: write manifest: %w", err)
	}
	return nil
}

// Outputs returns every output path the manifest records.
func (m *Manifest) Outputs() map[string]struct{} {
	out := make(map[string]struct{}, len(m.Pages)+len(m.Listings))
	for _, p := range m.Pages {
		out[p.Output] = struct{}{}
	}
	for _, l := range m.Listings {
		out[l] = struct{}{}
	}
	return out
}

// Unchanged reports whether source was written by a build with the same
// site signature and fingerprint, and its output still exists.
func (m *Manifest) Unchanged(site, source, fp, outDir string) bool {
	if m.Site != site {
		return false
	}
	prev, ok := m.Pages[source]
	if !ok || prev.Fingerprint != fp {
		return false
	}
	_, err := os.Stat(filepath.Join(outDir, prev.Output))
	return err == nil
}
