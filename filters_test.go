package main

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var htmlDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func TestHtmlDateString(t *testing.T) {
	jan1 := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"iso string", "2024-01-01T00:00:00Z", "2024-01-01"},
		{"iso string with offset", "2024-01-01T23:30:00-02:00", "2024-01-02"},
		{"date only", "2024-01-01", "2024-01-01"},
		{"time", jan1, "2024-01-01"},
		{"time pointer", &jan1, "2024-01-01"},
		{"unix millis", int64(1704067200000), "2024-01-01"},
		{"unix millis float", float64(1704067200000), "2024-01-01"},
		{"garbage", "yesterday", invalidDate},
		{"nil", nil, invalidDate},
		{"nil time pointer", (*time.Time)(nil), invalidDate},
		{"unsupported type", struct{}{}, invalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, htmlDateString(tt.in))
		})
	}
}

func TestReadableDate(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"2024-01-01T00:00:00Z", "1 gennaio 2024"},
		{"2024-06-01", "1 giugno 2024"},
		{time.Date(2023, time.December, 25, 12, 0, 0, 0, time.UTC), "25 dicembre 2023"},
		{"31/12/2023", invalidDate},
		{nil, invalidDate},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, readableDate(tt.in), "readableDate(%v)", tt.in)
	}

	got := readableDate("2024-01-01T00:00:00Z")
	assert.Contains(t, got, "gennaio")
	assert.Contains(t, got, "2024")
}

func TestDateFiltersAgreeOnTheDay(t *testing.T) {
	start := time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
	for d := start; d.Year() < 2100; d = d.AddDate(0, 0, 97) {
		html := htmlDateString(d)
		assert.Len(t, html, 10)
		assert.Regexp(t, htmlDatePattern, html)
		assert.Equal(t, d.Format("2006-01-02"), html)

		readable := readableDate(d)
		assert.True(t, strings.HasPrefix(readable, strconv.Itoa(d.Day())+" "), readable)
		assert.True(t, strings.HasSuffix(readable, " "+strconv.Itoa(d.Year())), readable)
	}
}

func TestDateFiltersConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d := time.Date(2020+i, time.March, 3, 0, 0, 0, 0, time.UTC)
			assert.Equal(t, d.Format("2006-01-02"), htmlDateString(d))
			assert.Equal(t, "3 marzo "+strconv.Itoa(2020+i), readableDate(d))
		}()
	}
	wg.Wait()
}

func TestPrefixUrl(t *testing.T) {
	tests := []struct {
		prefix, in, want string
	}{
		{"/Journey/", "/", "/Journey/"},
		{"/Journey/", "/posts/ciao/", "/Journey/posts/ciao/"},
		{"/Journey/", "/assets/css/site.css", "/Journey/assets/css/site.css"},
		{"/Journey/", "https://example.org/", "https://example.org/"},
		{"/Journey/", "//cdn.example.org/x.js", "//cdn.example.org/x.js"},
		{"/Journey/", "relative/path", "relative/path"},
		{"/", "/posts/ciao/", "/posts/ciao/"},
		{"/", "/", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, prefixUrl(tt.prefix)(tt.in), "prefix %q url %q", tt.prefix, tt.in)
	}
}
