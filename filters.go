package main

import (
	"math"
	"path"
	"strings"
	"time"

	"github.com/goodsign/monday"
)

const invalidDate = "Invalid Date"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// toDate accepts what templates hand to the date filters: times, ISO-8601
// strings and Unix milliseconds.
func toDate(v any) (time.Time, bool) {
	var t time.Time
	switch d := v.(type) {
	case time.Time:
		t = d
	case *time.Time:
		if d == nil {
			return t, false
		}
		t = *d
	case string:
		s := strings.TrimSpace(d)
		parsed := false
		for _, layout := range dateLayouts {
			if p, err := time.Parse(layout, s); err == nil {
				t, parsed = p, true
				break
			}
		}
		if !parsed {
			return t, false
		}
	case int:
		t = time.UnixMilli(int64(d))
	case int64:
		t = time.UnixMilli(d)
	case float64:
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return t, false
		}
		t = time.UnixMilli(int64(d))
	default:
		return t, false
	}

	if y := t.UTC().Year(); y < 0 || y > 9999 {
		return time.Time{}, false
	}
	return t, true
}

// readableDate formats d as an Italian long date, e.g. "1 gennaio 2024".
func readableDate(d any) string {
	t, ok := toDate(d)
	if !ok {
		return invalidDate
	}
	// it-IT month names are lowercase.
	return strings.ToLower(monday.Format(t.UTC(), "2 January 2006", monday.LocaleItIT))
}

// htmlDateString returns the date part of d's ISO-8601 form, e.g. "2024-01-01".
func htmlDateString(d any) string {
	t, ok := toDate(d)
	if !ok {
		return invalidDate
	}
	iso := t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	date, _, _ := strings.Cut(iso, "T")
	return date
}

// prefixUrl returns the url filter for a site deployed under prefix. Only
// root-relative URLs are rewritten.
func prefixUrl(prefix string) func(string) string {
	return func(u string) string {
		if !strings.HasPrefix(u, "/") || strings.HasPrefix(u, "//") {
			return u
		}
		joined := path.Join(prefix, u)
		if strings.HasSuffix(u, "/") && !strings.HasSuffix(joined, "/") {
			joined += "/"
		}
		return joined
	}
}
