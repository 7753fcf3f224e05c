package main

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"time"
)

// item is one content file. Templates see it as .page and in collections.
type item struct {
	Title      string
	Date       time.Time
	Tags       []string
	Url        string // without the path prefix
	FileSlug   string
	InputPath  string // relative to the input directory, slash separated
	OutputPath string // relative to the output directory, empty if not written
	Layout     string
	Draft      bool
	Data       map[string]any
	Body       []byte

	ext string
}

func (it *item) HasTag(tag string) bool {
	return slices.Contains(it.Tags, tag)
}

func (it *item) String() string {
	b := new(bytes.Buffer)
	b.WriteString("title: ")
	b.WriteString(it.Title)
	b.WriteString("\ndate: ")
	b.WriteString(it.Date.String())
	b.WriteString("\nurl: ")
	b.WriteString(it.Url)
	b.WriteString("\ntags: ")
	fmt.Fprintln(b, it.Tags)

	body := it.Body
	if len(body) > 200 {
		body = append(body[:200:200], '.', '.', '.')
	}
	b.WriteString("\nbody: ")
	b.Write(body)

	return b.String()
}

type items []*item

// newestFirst orders b before a when b is later, i.e. b.Date - a.Date.
// Equal dates compare equal.
func newestFirst(a, b *item) int {
	return b.Date.Compare(a.Date)
}

func oldestFirst(a, b *item) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return cmp.Compare(a.InputPath, b.InputPath)
}

func (is items) latestDate() time.Time {
	var t time.Time
	for _, it := range is {
		if it.Date.After(t) {
			t = it.Date
		}
	}
	return t
}
