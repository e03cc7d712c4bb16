package core

import (
	"strings"
	"time"
)

// DateLayout is the wire format of calendar dates (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// NowFunc is mockable in tests.
var NowFunc = time.Now

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Today returns the current calendar date in loc, formatted with DateLayout.
func Today(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return NowFunc().In(loc).Format(DateLayout)
}
