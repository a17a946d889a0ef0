package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/eringen/pubsite/scaffold"
)

// scaffoldData holds the template variables passed to every scaffold template.
type scaffoldData struct {
	ProjectName string
	SiteName    string
	Date        string
}

// renamed maps scaffold file names that cannot be embedded under their
// real name.
var renamed = map[string]string{
	"gitignore": ".gitignore",
	"dotenv":    ".env.example",
}

func runNew(name string, out io.Writer) error {
	dirName := filepath.Base(filepath.Clean(name))
	if dirName == "." || dirName == string(filepath.Separator) {
		return fmt.Errorf("invalid project name %q", name)
	}
	if _, err := os.Stat(name); err == nil {
		return fmt.Errorf("directory %q already exists", name)
	}

	data := scaffoldData{
		ProjectName: dirName,
		SiteName:    toTitle(dirName),
		Date:        time.Now().Format("2006-01-02"),
	}

	fmt.Fprintf(out, "Creating new pubsite project: %s\n\n", name)

	root := "templates"
	err := fs.WalkDir(scaffold.Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(root, filepath.FromSlash(path))
		if err != nil {
			return err
		}

		outPath := strings.TrimSuffix(filepath.Join(name, relPath), ".tmpl")
		if r, ok := renamed[filepath.Base(outPath)]; ok {
			outPath = filepath.Join(filepath.Dir(outPath), r)
		}

		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		content, err := scaffold.Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if !strings.HasSuffix(path, ".tmpl") {
			return writeScaffold(outPath, content, out)
		}

		tmpl, err := template.New(filepath.Base(path)).Parse(string(content))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}
		var buf strings.Builder
		if err := tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("execute template %s: %w", path, err)
		}
		return writeScaffold(outPath, []byte(buf.String()), out)
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Done! Next steps:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  cd %s\n", name)
	fmt.Fprintln(out, "  pubsite serve")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Write posts under content/posts and run 'pubsite build' to publish.")
	return nil
}

func writeScaffold(path string, content []byte, out io.Writer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	fmt.Fprintf(out, "  created %s\n", path)
	return nil
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
