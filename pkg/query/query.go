// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package query parses optional URL query parameters.
//
// Absent parameters yield nil; present but malformed ones yield an error so the
// handler can answer with a validation failure instead of silently ignoring input.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// OptionalInt parses values[key] as an int, or returns nil when absent.
func OptionalInt(values url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("query: %s must be an integer", key)
	}
	return &n, nil
}

// Text returns the trimmed value of values[key].
func Text(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}
