package main

import "html/template"

type collectionFunc func(api *collectionAPI) items

type passthroughCopy struct {
	src  string // relative to the project root
	dest string // relative to the output directory
}

// buildConfig collects the registrations made by configure. It is filled
// once before the build and only read afterwards.
type buildConfig struct {
	passthrough []passthroughCopy
	filters     template.FuncMap
	collections map[string]collectionFunc
}

func newBuildConfig() *buildConfig {
	return &buildConfig{
		filters:     make(template.FuncMap),
		collections: make(map[string]collectionFunc),
	}
}

// AddPassthroughCopy copies src to dest unchanged, without templating.
func (bc *buildConfig) AddPassthroughCopy(src, dest string) {
	bc.passthrough = append(bc.passthrough, passthroughCopy{src: src, dest: dest})
}

// AddFilter makes fn available to templates under name. fn must be safe to
// call concurrently.
func (bc *buildConfig) AddFilter(name string, fn any) {
	bc.filters[name] = fn
}

// AddCollection derives the collection name from the site's items, replacing
// the tag collection of the same name.
func (bc *buildConfig) AddCollection(name string, fn collectionFunc) {
	bc.collections[name] = fn
}
