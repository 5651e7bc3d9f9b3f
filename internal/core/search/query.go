// Package search ranks catalog products against a free-text query.
// It is part of the functional core and performs no I/O.
package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinTermLength = 2
	MaxTerms      = 8
)

// Query is a parsed search query.
type Query struct {
	Raw   string
	Terms []string
}

// Empty reports whether the query has no usable terms.
func (q Query) Empty() bool {
	return len(q.Terms) == 0
}

// ParseQuery lowercases raw, splits it on anything that is not a letter or
// digit, drops short terms and duplicates, and keeps at most MaxTerms.
func ParseQuery(raw string) Query {
	q := Query{Raw: strings.TrimSpace(raw)}
	fields := strings.FieldsFunc(strings.ToLower(q.Raw), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < MinTermLength || seen[f] {
			continue
		}
		seen[f] = true
		q.Terms = append(q.Terms, f)
		if len(q.Terms) == MaxTerms {
			break
		}
	}
	return q
}
