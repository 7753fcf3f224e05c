// Command journey builds the Journey blog: markdown and HTML pages under
// src/, layouts from src/_includes, global data from src/_data, written to
// _site/ for deployment under /Journey/.
package main

import "slices"

// configure registers what the site needs from the generator and returns the
// directory layout. Values in journey.yaml, JOURNEY_* variables and flags
// override the returned record.
func configure(bc *buildConfig) SiteConf {
	// Static assets (css, images, js).
	bc.AddPassthroughCopy("src/assets", "assets")

	bc.AddFilter("readableDate", readableDate)
	bc.AddFilter("htmlDateString", htmlDateString)

	// Newest posts first.
	bc.AddCollection("post", func(api *collectionAPI) items {
		posts := api.getFilteredByTag("post")
		slices.SortFunc(posts, newestFirst)
		return posts
	})

	return SiteConf{
		Dir: DirConf{
			Input:    "src",
			Includes: "_includes",
			Data:     "_data",
			Output:   "_site",
		},
		// For username.github.io/Journey/. Set pathPrefix to "/" to serve
		// from the domain root.
		PathPrefix:             "/Journey/",
		MarkdownTemplateEngine: engineGoTemplate,
		HtmlTemplateEngine:     engineGoTemplate,
		Site: SiteMeta{
			Title:  "Journey",
			Author: "Journey",
		},
	}
}
