package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseLayout = `<!doctype html>
<html lang="it">
<head>
<title>{{ .title }}</title>
<link rel="stylesheet" href="{{ "/assets/css/site.css" | url }}">
</head>
<body>
<header>{{ .site.motto }}</header>
{{ .content }}
</body>
</html>
`

const indexPage = `---
title: Home
layout: base.html
---
<ul>
{{ range .collections.post }}<li><a href="{{ .Url | url }}">{{ .Title }}</a> <time datetime="{{ .Date | htmlDateString }}">{{ .Date | readableDate }}</time></li>
{{ end }}</ul>
`

// writeSite lays out a small project in a temp dir and returns the path of
// its config file.
func writeSite(t *testing.T, config string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files["journey.yaml"] = config
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return filepath.Join(dir, "journey.yaml")
}

func journeySite() map[string]string {
	return map[string]string{
		"src/_includes/base.html": baseLayout,
		"src/_data/site.json":     `{"motto": "Diario di viaggio"}`,
		"src/index.html":          indexPage,
		"src/posts/2024-06-01-nuovo.md": `---
title: Nuovo
tags: post
layout: base.html
---
Pubblicato il {{ .page.Date | readableDate }}.
`,
		"src/posts/vecchio.md": `---
title: Vecchio
date: 2023-01-01
tags: [post]
layout: base
---
Un *vecchio* post.
`,
		"src/posts/antico.md": `---
title: Antico
date: "2022-03-01T00:00:00Z"
tags: post
---
Senza layout.
`,
		"src/posts/bozza.md": `---
title: Bozza
draft: true
tags: post
date: 2025-01-01
---
Non ancora.
`,
		"src/assets/css/site.css":  "body { color: #333; }\n",
		"src/assets/img/pixel.bin": "\x00\x01\xfe\xff{{ not a template }}",
		"src/assets/snippet.html":  "<p>{{ .untouched }}</p>",
	}
}

func runBuild(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCommand()
	cmd.SetArgs(append([]string{"build"}, args...))
	return cmd.ExecuteContext(context.Background())
}

func readOutput(t *testing.T, configPath, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(filepath.Dir(configPath), "_site", filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(b)
}

func TestBuild(t *testing.T) {
	config := writeSite(t, `
site:
  title: Journey
  author: Viaggiatore
  authorUri: https://example.org/
  baseUrl: https://example.org
`, journeySite())

	require.NoError(t, runBuild(t, "--config", config))

	t.Run("posts", func(t *testing.T) {
		nuovo := readOutput(t, config, "posts/nuovo/index.html")
		assert.Contains(t, nuovo, "<title>Nuovo</title>")
		assert.Contains(t, nuovo, "Pubblicato il 1 giugno 2024.")
		assert.Contains(t, nuovo, `href="/Journey/assets/css/site.css"`)
		assert.Contains(t, nuovo, "<header>Diario di viaggio</header>")

		vecchio := readOutput(t, config, "posts/vecchio/index.html")
		assert.Contains(t, vecchio, "<em>vecchio</em>")
		assert.Contains(t, vecchio, "<title>Vecchio</title>")

		antico := readOutput(t, config, "posts/antico/index.html")
		assert.Equal(t, "<p>Senza layout.</p>\n", antico)

		_, err := os.Stat(filepath.Join(filepath.Dir(config), "_site", "posts", "bozza"))
		assert.True(t, os.IsNotExist(err), "drafts are not built by default")
	})

	t.Run("index lists posts newest first", func(t *testing.T) {
		index := readOutput(t, config, "index.html")
		assert.Contains(t, index, `<a href="/Journey/posts/nuovo/">Nuovo</a>`)
		assert.Contains(t, index, `<time datetime="2023-01-01">1 gennaio 2023</time>`)

		nuovo := strings.Index(index, ">Nuovo<")
		vecchio := strings.Index(index, ">Vecchio<")
		antico := strings.Index(index, ">Antico<")
		require.True(t, nuovo >= 0 && vecchio >= 0 && antico >= 0, index)
		assert.Less(t, nuovo, vecchio)
		assert.Less(t, vecchio, antico)
		assert.NotContains(t, index, "Bozza")
	})

	t.Run("assets are copied unchanged", func(t *testing.T) {
		site := journeySite()
		for _, rel := range []string{"css/site.css", "img/pixel.bin", "snippet.html"} {
			assert.Equal(t, site["src/assets/"+rel], readOutput(t, config, "assets/"+rel), rel)
		}
		_, err := os.Stat(filepath.Join(filepath.Dir(config), "_site", "assets", "snippet", "index.html"))
		assert.True(t, os.IsNotExist(err), "passthrough files are not rendered")
	})

	t.Run("feed", func(t *testing.T) {
		feed := readOutput(t, config, feedFileName)
		nuovo := strings.Index(feed, "https://example.org/Journey/posts/nuovo/")
		vecchio := strings.Index(feed, "https://example.org/Journey/posts/vecchio/")
		require.True(t, nuovo >= 0 && vecchio >= 0, feed)
		assert.Less(t, nuovo, vecchio)
	})
}

func TestBuildPathPrefixFlag(t *testing.T) {
	config := writeSite(t, "", journeySite())

	require.NoError(t, runBuild(t, "--config", config, "--path-prefix", "/"))

	index := readOutput(t, config, "index.html")
	assert.Contains(t, index, `<a href="/posts/nuovo/">Nuovo</a>`)
	assert.Contains(t, index, `href="/assets/css/site.css"`)

	_, err := os.Stat(filepath.Join(filepath.Dir(config), "_site", feedFileName))
	assert.True(t, os.IsNotExist(err), "no feed without site.baseUrl")
}

func TestBuildDrafts(t *testing.T) {
	config := writeSite(t, "", journeySite())

	require.NoError(t, runBuild(t, "--config", config, "--drafts"))

	assert.Contains(t, readOutput(t, config, "posts/bozza/index.html"), "Non ancora.")
	index := readOutput(t, config, "index.html")
	assert.Less(t, strings.Index(index, ">Bozza<"), strings.Index(index, ">Nuovo<"))
}

func TestBuildWithoutTemplateEngine(t *testing.T) {
	site := journeySite()
	site["src/raw.md"] = "Literally {{ .title }}\n"
	config := writeSite(t, "markdownTemplateEngine: none\n", site)

	require.NoError(t, runBuild(t, "--config", config))

	assert.Equal(t, "<p>Literally {{ .title }}</p>\n", readOutput(t, config, "raw/index.html"))
}

func TestBuildCollectsAllRenderErrors(t *testing.T) {
	site := journeySite()
	site["src/uno.md"] = "---\nlayout: missing.html\n---\nx"
	site["src/due.html"] = "{{ .nope.deeper | readableDate }"
	config := writeSite(t, "", site)

	err := runBuild(t, "--config", config)
	require.Error(t, err)
	assert.ErrorContains(t, err, "uno.md")
	assert.ErrorContains(t, err, "due.html")

	// Items without errors are still written.
	assert.Contains(t, readOutput(t, config, "posts/nuovo/index.html"), "<title>Nuovo</title>")
}

func TestBuildMarkdownWithHtmlSnippets(t *testing.T) {
	site := journeySite()
	site["src/codice.md"] = "---\n" +
		"title: Codice\n" +
		"layout: base.html\n" +
		"date: 2024-07-10\n" +
		"---\n" +
		"Usa il tag `<a` per i link, scritto il {{ .page.Date | readableDate }}.\n" +
		"\n" +
		"```html\n" +
		"<a title='l'estate'>\n" +
		"```\n"
	config := writeSite(t, "", site)

	require.NoError(t, runBuild(t, "--config", config))

	codice := readOutput(t, config, "codice/index.html")
	assert.Contains(t, codice, "<code>&lt;a</code>")
	assert.Contains(t, codice, "scritto il 10 luglio 2024.")
	assert.Contains(t, codice, "&lt;a title=")
}

func TestBuildWithoutAssets(t *testing.T) {
	site := journeySite()
	for rel := range site {
		if strings.HasPrefix(rel, "src/assets/") {
			delete(site, rel)
		}
	}
	config := writeSite(t, "", site)

	require.NoError(t, runBuild(t, "--config", config))

	assert.Contains(t, readOutput(t, config, "posts/nuovo/index.html"), "<title>Nuovo</title>")
	_, err := os.Stat(filepath.Join(filepath.Dir(config), "_site", "assets"))
	assert.True(t, os.IsNotExist(err), "nothing to copy")
}

func TestBuildFeedWithoutPosts(t *testing.T) {
	config := writeSite(t, `
site:
  title: Journey
  author: Viaggiatore
  baseUrl: https://example.org
`, map[string]string{
		"src/index.html":          "<p>Presto.</p>",
		"src/assets/css/site.css": "body { color: #333; }\n",
	})

	require.NoError(t, runBuild(t, "--config", config))

	assert.Equal(t, "body { color: #333; }\n", readOutput(t, config, "assets/css/site.css"))
	assert.Contains(t, readOutput(t, config, feedFileName), "https://example.org/Journey/feed.xml")
}
