package main

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	texttemplate "text/template"
)

type templateEngine struct {
	toHtml renderer
	funcs  template.FuncMap

	// includes holds every template under the includes directory. It is
	// never executed itself; each render works on a clone.
	includes *template.Template
	mu       sync.Mutex
}

func newTemplateEngine(r renderer, funcs template.FuncMap, includesDir string) (*templateEngine, error) {
	includes := template.New("").Funcs(funcs)

	err := filepath.WalkDir(includesDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(includesDir, p)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if _, err := includes.New(filepath.ToSlash(rel)).Parse(string(content)); err != nil {
			return fmt.Errorf("parsing %v: %w", p, err)
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return &templateEngine{toHtml: r, funcs: funcs, includes: includes}, nil
}

func (te *templateEngine) clone() (*template.Template, error) {
	te.mu.Lock()
	defer te.mu.Unlock()
	return te.includes.Clone()
}

// layoutName finds layout among the includes, with or without its .html
// extension.
func (te *templateEngine) layoutName(layout string) (string, error) {
	for _, name := range []string{layout, layout + ".html"} {
		if te.includes.Lookup(name) != nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("layout %q not found", layout)
}

// renderItem writes the finished page for it to w and returns the rendered
// content without the layout. engine applies to the item's body.
func (te *templateEngine) renderItem(it *item, engine string, data map[string]any, w io.Writer) (string, error) {
	t, err := te.clone()
	if err != nil {
		return "", err
	}

	body := it.Body
	if engine == engineGoTemplate {
		if body, err = te.executeBody(t, it, data); err != nil {
			return "", err
		}
	}

	content := string(body)
	if it.ext == ".md" {
		content = te.toHtml.render(body)
	}

	if it.Layout == "" {
		_, err = io.WriteString(w, content)
		return content, err
	}

	name, err := te.layoutName(it.Layout)
	if err != nil {
		return "", err
	}
	data["content"] = template.HTML(content)
	return content, t.ExecuteTemplate(w, name, data)
}

// executeBody runs the template pass over the item's body. Markdown is not
// HTML yet, so it goes through text/template.
func (te *templateEngine) executeBody(t *template.Template, it *item, data map[string]any) ([]byte, error) {
	var b bytes.Buffer
	if it.ext == ".md" {
		bodyTemplate, err := texttemplate.New(it.InputPath).Funcs(texttemplate.FuncMap(te.funcs)).Parse(string(it.Body))
		if err != nil {
			return nil, err
		}
		if err := bodyTemplate.Execute(&b, data); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	}

	bodyTemplate, err := t.New(it.InputPath).Parse(string(it.Body))
	if err != nil {
		return nil, err
	}
	if err := bodyTemplate.Execute(&b, data); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
