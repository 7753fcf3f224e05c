package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

const fileDateStampFormat = "2006-01-02"

var templateExtensions = []string{".md", ".html"}

// findTemplateFiles returns the content files under conf's input directory,
// leaving out includes, data, output and the skipped directories.
func findTemplateFiles(conf *SiteConf, skip []string) ([]string, error) {
	files := make([]string, 0, 100)
	skipDirs := append([]string{conf.includesDir(), conf.dataDir(), conf.Dir.Output}, skip...)

	err := filepath.WalkDir(conf.Dir.Input, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != conf.Dir.Input && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if slices.Contains(skipDirs, p) {
				return filepath.SkipDir
			}
			return nil
		}
		if slices.Contains(templateExtensions, strings.ToLower(filepath.Ext(p))) {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

func extractDateFromFilename(filename string, dateStampFormat string) (time.Time, error) {
	if len(filename) < len(dateStampFormat) {
		return time.Time{}, fmt.Errorf("%v is too short for a date stamp", filename)
	}

	dateStr := filename[:len(dateStampFormat)]
	date, err := time.Parse(dateStampFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("no date stamp in %v", filename)
	}
	return date, nil
}

func readItemFromFile(conf *SiteConf, p string) (*item, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	fileContent, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}

	data := make(map[string]any)
	body, err := frontmatter.Parse(bytes.NewReader(fileContent), &data)
	if err != nil {
		return nil, fmt.Errorf("invalid front matter in %v: %w", p, err)
	}
	if data == nil {
		data = make(map[string]any)
	}

	rel, err := filepath.Rel(conf.Dir.Input, p)
	if err != nil {
		return nil, err
	}
	ext := filepath.Ext(rel)
	baseName := strings.TrimSuffix(filepath.Base(rel), ext)

	it := &item{
		InputPath: filepath.ToSlash(rel),
		FileSlug:  fileSlug(baseName),
		Data:      data,
		Body:      body,
		ext:       strings.ToLower(ext),
	}

	if it.Date, err = itemDate(data["date"], baseName, info); err != nil {
		return nil, fmt.Errorf("%v: %w", p, err)
	}

	it.Title, _ = data["title"].(string)
	if it.Title == "" {
		it.Title = titleFromSlug(it.FileSlug)
	}
	it.Layout, _ = data["layout"].(string)
	it.Draft, _ = data["draft"].(bool)

	switch tags := data["tags"].(type) {
	case nil:
	case string:
		it.Tags = []string{tags}
	case []any:
		for _, t := range tags {
			it.Tags = append(it.Tags, fmt.Sprint(t))
		}
	default:
		klog.Warningf("Ignoring tags of type %T in %v", tags, p)
	}

	switch permalink := data["permalink"].(type) {
	case nil:
		it.OutputPath, it.Url = defaultOutputPath(it.InputPath, it.FileSlug)
	case string:
		it.OutputPath, it.Url = permalinkOutputPath(permalink)
	case bool:
		if permalink {
			return nil, fmt.Errorf("%v: permalink must be a path or false", p)
		}
	default:
		return nil, fmt.Errorf("%v: permalink must be a path or false, got %T", p, permalink)
	}

	return it, nil
}

// itemDate resolves the front matter date, falling back to a date stamp in
// the file name and then to the modification time.
func itemDate(raw any, baseName string, info fs.FileInfo) (time.Time, error) {
	switch raw {
	case nil:
	case "Last Modified", "Created":
		return info.ModTime(), nil
	default:
		if t, ok := toDate(raw); ok {
			return t, nil
		}
		return time.Time{}, fmt.Errorf("invalid date %v", raw)
	}

	if date, err := extractDateFromFilename(baseName, fileDateStampFormat); err == nil {
		return date, nil
	}
	return info.ModTime(), nil
}

// fileSlug drops a leading "2006-01-02-" date stamp.
func fileSlug(baseName string) string {
	if _, err := extractDateFromFilename(baseName, fileDateStampFormat); err == nil {
		if rest := strings.TrimLeft(baseName[len(fileDateStampFormat):], "-_"); rest != "" {
			return rest
		}
	}
	return baseName
}

func titleFromSlug(slug string) string {
	title := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	return cases.Title(language.Italian).String(title)
}

// defaultOutputPath maps dir/name.md to dir/name/index.html and dir/index.md
// to dir/index.html.
func defaultOutputPath(inputPath, slug string) (string, string) {
	dir := path.Dir(inputPath)
	base := strings.TrimSuffix(path.Base(inputPath), path.Ext(inputPath))
	urlPath := dir
	if base != "index" {
		urlPath = path.Join(dir, slug)
	}
	if urlPath == "." {
		return "index.html", "/"
	}
	return path.Join(urlPath, "index.html"), "/" + urlPath + "/"
}

func permalinkOutputPath(permalink string) (string, string) {
	u := "/" + strings.TrimLeft(permalink, "/")
	if strings.HasSuffix(u, "/") {
		return strings.TrimPrefix(u+"index.html", "/"), u
	}
	return strings.TrimPrefix(u, "/"), u
}

// readGlobalData decodes every JSON and YAML file in dir, keyed by file
// name without extension. A missing directory means no data.
func readGlobalData(dir string) (map[string]any, error) {
	data := make(map[string]any)

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".json" && ext != ".yaml" && ext != ".yml") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		var v any
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("invalid data file %v: %w", e.Name(), err)
		}
		data[strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))] = v
	}
	return data, nil
}
