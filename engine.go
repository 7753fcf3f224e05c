package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hashicorp/go-multierror"
	"github.com/natefinch/atomic"
	"github.com/otiai10/copy"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

type Site struct {
	conf        *SiteConf
	bc          *buildConfig
	items       items
	collections map[string]items
	data        map[string]any
	renderCache map[string]string
}

func ReadSite(conf *SiteConf, bc *buildConfig, drafts bool) (*Site, error) {
	skip := make([]string, 0, len(bc.passthrough))
	for _, p := range bc.passthrough {
		skip = append(skip, conf.projectPath(p.src))
	}

	files, err := findTemplateFiles(conf, skip)
	if err != nil {
		return nil, err
	}

	data, err := readGlobalData(conf.dataDir())
	if err != nil {
		return nil, err
	}

	thisSite := Site{
		items:       make(items, 0, len(files)),
		conf:        conf,
		bc:          bc,
		data:        data,
		renderCache: make(map[string]string),
	}

	for _, f := range files {
		it, err := readItemFromFile(conf, f)
		if err != nil {
			return nil, err
		}
		klog.V(3).Infof("Read item:\n%v", it)
		if drafts || !it.Draft {
			thisSite.items = append(thisSite.items, it)
		}
	}
	klog.Infof("Read %d items from %s", len(thisSite.items), conf.Dir.Input)

	thisSite.collections = buildCollections(thisSite.items, bc.collections)

	return &thisSite, nil
}

func (s *Site) funcs() template.FuncMap {
	funcs := template.FuncMap{"url": prefixUrl(s.conf.PathPrefix)}
	maps.Copy(funcs, s.bc.filters)
	return funcs
}

func (s *Site) engineFor(it *item) string {
	if it.ext == ".md" {
		return s.conf.MarkdownTemplateEngine
	}
	return s.conf.HtmlTemplateEngine
}

// pageData is what templates see: global data, then front matter, then the
// generator's own keys.
func (s *Site) pageData(it *item) map[string]any {
	data := make(map[string]any, len(s.data)+len(it.Data)+3)
	maps.Copy(data, s.data)
	maps.Copy(data, it.Data)
	data["page"] = it
	data["collections"] = s.collections
	data["pathPrefix"] = s.conf.PathPrefix
	return data
}

// RenderHtml renders all items in parallel. A failing item does not stop
// the others; all failures are returned together.
func (s *Site) RenderHtml(ctx context.Context) error {
	engine, err := newTemplateEngine(newMarkdownRenderer(), s.funcs(), s.conf.includesDir())
	if err != nil {
		return err
	}

	rendered := make([]string, len(s.items))
	errs := make([]error, len(s.items))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, it := range s.items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			rendered[i], errs[i] = s.renderItem(engine, it)
			return nil
		})
	}
	_ = g.Wait()

	var result *multierror.Error
	for i, it := range s.items {
		if errs[i] != nil {
			result = multierror.Append(result, errs[i])
			continue
		}
		s.renderCache[it.InputPath] = rendered[i]
	}
	return result.ErrorOrNil()
}

func (s *Site) renderItem(engine *templateEngine, it *item) (string, error) {
	var b bytes.Buffer
	content, err := engine.renderItem(it, s.engineFor(it), s.pageData(it), &b)
	if err != nil {
		return "", fmt.Errorf("rendering %v: %w", it.InputPath, err)
	}
	if it.OutputPath == "" {
		return content, nil
	}

	outName := filepath.Join(s.conf.Dir.Output, filepath.FromSlash(it.OutputPath))
	if err := os.MkdirAll(filepath.Dir(outName), os.FileMode(0775)); err != nil {
		return "", err
	}
	if err := atomic.WriteFile(outName, &b); err != nil {
		return "", fmt.Errorf("writing %v: %w", outName, err)
	}
	if err := os.Chmod(outName, os.FileMode(0664)); err != nil {
		return "", err
	}
	klog.V(2).Infof("Wrote %s", outName)
	return content, nil
}

func (s *Site) RenderAll(ctx context.Context) error {
	if err := s.RenderHtml(ctx); err != nil {
		return err
	}
	return s.RenderAtom()
}

// CopyPassthrough copies the registered directories into the output tree
// byte for byte. Missing sources are skipped with a warning.
func (s *Site) CopyPassthrough() error {
	for _, p := range s.bc.passthrough {
		src := s.conf.projectPath(p.src)
		dest := filepath.Join(s.conf.Dir.Output, filepath.FromSlash(p.dest))
		if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
			klog.Warningf("Passthrough source %s does not exist, skipping", src)
			continue
		}
		klog.Infof("Recursively copying %s to %s", src, dest)
		if err := copy.Copy(src, dest); err != nil {
			return fmt.Errorf("copying %v to %v: %w", src, dest, err)
		}
	}
	return nil
}
