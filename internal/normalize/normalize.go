// Package normalize maps free-text team and player names to stable identifiers.
//
// Identity is exact-match only after normalization: case, surrounding
// whitespace, and diacritics are folded away, but spelling variants of the
// same name deliberately produce distinct identifiers. Fuzzy matching is a
// known data-quality gap and must not be added without changing downstream
// aggregates knowingly.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonWord = regexp.MustCompile(`[^a-z0-9_]+`)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StableID derives the stable identifier for a team or player name.
// "Petr Novák", "petr novak" and " Petr  Novak " all map to "petr_novak";
// "Petr Novotný" does not. The same name always yields the same identifier,
// so re-crawls reuse rows already persisted by earlier runs.
func StableID(name string) string {
	folded := StripAccents(name)
	folded = strings.ToLower(strings.TrimSpace(folded))
	folded = strings.Join(strings.Fields(folded), "_")
	return nonWord.ReplaceAllString(folded, "")
}

// StripAccents removes combining marks: "Dvořák" becomes "Dvorak".
func StripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// CleanName trims whitespace and squad-list annotations such as "[K]"
// (captain markers) from a display name.
func CleanName(name string) string {
	name = bracketNote.ReplaceAllString(name, "")
	return strings.Join(strings.Fields(name), " ")
}

var bracketNote = regexp.MustCompile(`\s*\[[^\]]*\]`)
