// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package labels parses and joins the comma separated category and tag lists
// stored on a book.
//
// # Normalization
//
// Labels are NFC-normalized and compared case-insensitively with Unicode case
// folding, so "Science Fiction" and "science fiction" collapse into the first
// spelling seen.
package labels

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Separator joins labels in the stored form.
const Separator = ", "

// Parse splits a stored or user-entered list into distinct labels, keeping input order.
func Parse(raw string) []string {
	return Dedupe(strings.Split(raw, ","))
}

// Dedupe trims, normalizes and removes case-insensitive duplicates.
func Dedupe(values []string) []string {
	folder := cases.Fold()
	seen := make(map[string]struct{}, len(values))

	var out []string
	for _, value := range values {
		label := norm.NFC.String(strings.TrimSpace(value))
		if label == "" {
			continue
		}
		key := folder.String(label)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, label)
	}
	return out
}

// Join renders labels in the stored form.
func Join(values []string) string {
	return strings.Join(Dedupe(values), Separator)
}

// Canonical re-renders a user-entered list in the stored form.
func Canonical(raw string) string {
	return strings.Join(Parse(raw), Separator)
}

// Collect merges several stored lists into one sorted, distinct set.
func Collect(rows []string) []string {
	var all []string
	for _, row := range rows {
		all = append(all, Parse(row)...)
	}
	out := Dedupe(all)

	folder := cases.Fold()
	sort.SliceStable(out, func(i, j int) bool {
		return folder.String(out[i]) < folder.String(out[j])
	})
	return out
}

// Key returns the comparison key of a label.
func Key(label string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(label)))
}
