package main

import (
	"slices"
)

// collectionAPI is handed to registered collection functions.
type collectionAPI struct {
	all items // oldest first
}

func newCollectionAPI(all items) *collectionAPI {
	sorted := slices.Clone(all)
	slices.SortFunc(sorted, oldestFirst)
	return &collectionAPI{all: sorted}
}

// getAll returns every item, oldest first. The slice is the caller's to sort.
func (api *collectionAPI) getAll() items {
	return slices.Clone(api.all)
}

// getFilteredByTag returns the items tagged tag, oldest first.
func (api *collectionAPI) getFilteredByTag(tag string) items {
	filtered := make(items, 0, len(api.all))
	for _, it := range api.all {
		if it.HasTag(tag) {
			filtered = append(filtered, it)
		}
	}
	return filtered
}

// buildCollections returns "all", one collection per tag, and the registered
// collections, which win over a tag of the same name.
func buildCollections(all items, registered map[string]collectionFunc) map[string]items {
	api := newCollectionAPI(all)

	byTag := map[string]items{"all": api.getAll()}
	for _, it := range api.all {
		for _, tag := range it.Tags {
			if tag == "all" {
				continue
			}
			byTag[tag] = append(byTag[tag], it)
		}
	}

	for name, fn := range registered {
		byTag[name] = fn(api)
	}
	return byTag
}
