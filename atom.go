package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/natefinch/atomic"
	atom "github.com/thomas11/atomgenerator"
	"k8s.io/klog/v2"
)

const feedFileName = "feed.xml"

// RenderAtom writes the feed of the post collection. It needs site.baseUrl
// for absolute links and is skipped without it.
func (s *Site) RenderAtom() error {
	if s.conf.Site.BaseUrl == "" {
		klog.V(1).Info("No site.baseUrl configured, not writing a feed")
		return nil
	}

	atomXml, err := s.renderFeed(s.conf.Site.Title, feedFileName, s.collections["post"])
	if err != nil {
		return err
	}

	filePath := filepath.Join(s.conf.Dir.Output, feedFileName)
	if err := os.MkdirAll(s.conf.Dir.Output, os.FileMode(0775)); err != nil {
		return err
	}
	if err := atomic.WriteFile(filePath, bytes.NewReader(atomXml)); err != nil {
		return err
	}
	return os.Chmod(filePath, os.FileMode(0664))
}

// absoluteUrl turns a site URL into one including the base URL and the path
// prefix.
func (s *Site) absoluteUrl(u string) string {
	return strings.TrimSuffix(s.conf.Site.BaseUrl, "/") + prefixUrl(s.conf.PathPrefix)("/"+strings.TrimPrefix(u, "/"))
}

// feedPosts returns the posts that have a page to link to, and the date the
// feed was last updated. A feed without entries is dated now.
func feedPosts(posts items) (items, time.Time) {
	published := make(items, 0, len(posts))
	for _, post := range posts {
		if post.OutputPath != "" {
			published = append(published, post)
		}
	}
	updated := published.latestDate()
	if updated.IsZero() {
		updated = time.Now()
	}
	return published, updated
}

func (s *Site) renderFeed(title, relUrl string, posts items) ([]byte, error) {
	published, updated := feedPosts(posts)

	feed := atom.Feed{
		Title:   title,
		Link:    s.absoluteUrl(relUrl),
		PubDate: updated,
	}
	feed.AddAuthor(atom.Author{
		Name: s.conf.Site.Author,
		Uri:  s.conf.Site.AuthorUri,
	})

	for _, post := range published {
		feed.AddEntry(s.entryForPost(post))
	}

	if errs := feed.Validate(); len(errs) > 0 {
		var result *multierror.Error
		for _, e := range errs {
			result = multierror.Append(result, e)
		}
		klog.Error("Atom feed is not valid")
		return nil, result
	}

	return feed.GenXml()
}

func (s *Site) entryForPost(post *item) *atom.Entry {
	description, _ := post.Data["description"].(string)
	if description == "" {
		description = post.Title
	}

	e := &atom.Entry{
		Title:       post.Title,
		Description: description,
		Link:        s.absoluteUrl(post.Url),
		PubDate:     post.Date,
	}

	for _, tag := range post.Tags {
		e.AddCategory(atom.Category{Term: tag})
	}

	if renderedBody, ok := s.renderCache[post.InputPath]; ok {
		e.Content = renderedBody
	}

	return e
}
