// Package identity derives the canonical dedup key used to group
// offering records that describe the same entity across feeds.
//
// Feeds disagree on lexical details of a company name: casing, legal
// suffixes ("Ltd" vs "Limited" vs nothing), punctuation and stray
// whitespace. Key folds all of that away. Two genuinely different
// entities can still normalize to the same key; the merge layer logs
// when it observes one, since resolving it would need a stronger
// external identifier than a name.
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// suffixTokens are legal-entity noise words dropped from names.
// Dropping them makes "Acme Industries Ltd" and "ACME INDUSTRIES
// LIMITED" group together.
var suffixTokens = map[string]bool{
	"ltd":     true,
	"limited": true,
	"pvt":     true,
	"private": true,
}

var folder = cases.Fold()

// Key normalizes a display name into the identity key records are
// grouped by. It is pure and idempotent: Key(Key(x)) == Key(x).
// An empty result means the name carries no identity at all and the
// record must be dropped before grouping.
func Key(displayName string) string {
	folded := folder.String(displayName)

	// Replace punctuation with spaces so "acme-industries" and
	// "acme industries" tokenize identically.
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	tokens := strings.Fields(b.String())
	kept := tokens[:0]
	for _, tok := range tokens {
		if !suffixTokens[tok] {
			kept = append(kept, tok)
		}
	}

	return strings.Join(kept, " ")
}
