// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package isbn normalizes and formats ISBN strings.
//
// The catalog never requires an ISBN to be valid or unique; these helpers only
// clean input and produce the hyphenated display form.
package isbn

import "strings"

// Normalize strips separators and upper-cases a trailing check character.
func Normalize(value string) string {
	var builder strings.Builder
	for _, r := range strings.TrimSpace(value) {
		switch {
		case r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == 'x' || r == 'X':
			builder.WriteRune('X')
		case r == '-' || r == ' ':
		default:
			// Unknown characters are kept so Valid can reject them
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// Valid reports whether value normalizes to a 10 or 13 character ISBN.
// Only an ISBN-10 may end in X.
func Valid(value string) bool {
	normalized := Normalize(value)
	switch len(normalized) {
	case 10:
		return allDigits(normalized[:9]) && (allDigits(normalized[9:]) || normalized[9] == 'X')
	case 13:
		return allDigits(normalized)
	}
	return false
}

// Format hyphenates a 13 digit ISBN as 3-1-3-5-1 and a 10 digit one as 1-3-5-1.
// Any other input is returned normalized.
func Format(value string) string {
	normalized := Normalize(value)
	switch len(normalized) {
	case 13:
		return normalized[0:3] + "-" + normalized[3:4] + "-" + normalized[4:7] + "-" + normalized[7:12] + "-" + normalized[12:]
	case 10:
		return normalized[0:1] + "-" + normalized[1:4] + "-" + normalized[4:9] + "-" + normalized[9:]
	}
	return normalized
}

func allDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
