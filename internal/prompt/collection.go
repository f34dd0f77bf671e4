package prompt

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"text/template"

	"holamundo/internal/domain"
)

//go:embed templates/*.txt
var defaultTemplates embed.FS

const templateExt = ".txt"

// Collection loads every *.txt file of a file system as a prompt template
// named after the file stem.
type Collection struct {
	fsys fs.FS
	dir  string
}

// Default returns the built-in templates.
func Default() *Collection {
	return &Collection{fsys: defaultTemplates, dir: "templates"}
}

// FromDir returns the templates stored in a directory on disk.
func FromDir(dir string) *Collection {
	return &Collection{fsys: os.DirFS(dir), dir: "."}
}

// FromFS returns the templates stored in dir of fsys.
func FromFS(fsys fs.FS, dir string) *Collection {
	return &Collection{fsys: fsys, dir: dir}
}

// Load reads all templates sorted by name. Any unreadable or unparsable
// template fails the whole load.
func (c *Collection) Load() ([]domain.PromptTemplate, error) {
	entries, err := fs.ReadDir(c.fsys, c.dir)
	if err != nil {
		return nil, fmt.Errorf("read template dir: %w", err)
	}
	var out []domain.PromptTemplate
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), templateExt) {
			continue
		}
		data, err := fs.ReadFile(c.fsys, path.Join(c.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", e.Name(), err)
		}
		name := strings.TrimSuffix(e.Name(), templateExt)
		if _, err := parse(name, string(data)); err != nil {
			return nil, err
		}
		out = append(out, domain.PromptTemplate{Name: name, Body: string(data)})
	}
	if len(out) == 0 {
		return nil, errors.New("template collection is empty")
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Vars are the values available to a template body.
type Vars struct {
	Level   string
	Context string
}

// Render executes a template body with vars.
func Render(t domain.PromptTemplate, vars Vars) (string, error) {
	tmpl, err := parse(t.Name, t.Body)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render template %s: %w", t.Name, err)
	}
	return buf.String(), nil
}

func parse(name, body string) (*template.Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return tmpl, nil
}

var _ domain.TemplateSource = (*Collection)(nil)
