// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dateonly handles calendar dates stored as midnight UTC.
//
// Lending and reading-list dates carry no time of day. Normalizing them to
// midnight UTC keeps equality checks and lexical ordering in SQLite stable.
package dateonly

import (
	"strings"
	"time"
)

// Layout is the wire format for calendar dates.
const Layout = time.DateOnly

// Parse reads a YYYY-MM-DD string.
func Parse(value string) (time.Time, error) {
	parsed, err := time.Parse(Layout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}

// ParseOptional returns nil for an empty string.
func ParseOptional(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parsed, err := Parse(value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// Of truncates t to its calendar date in t's own location, expressed in UTC.
func Of(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// FromParts builds a date, defaulting a zero month or day to 1.
func FromParts(year, month, day int) time.Time {
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// YearRange returns [Jan 1 of year, Jan 1 of year+1).
func YearRange(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

// Today is the local calendar date expressed in UTC.
func Today() time.Time {
	return Of(time.Now())
}
