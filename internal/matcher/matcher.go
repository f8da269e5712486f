// Package matcher is a tokenizing, stopword-filtering title matcher with
// positive/negative/disambiguation token sets (spec §4.8), adapted
// directly from internal/retrieval's tokenize/stopwords/sharedKeywords
// trio — generalized from prompt/evidence topic matching to skill-tile
// title matching against an allow list.
package matcher

// #region imports
import (
	"strings"
	"unicode"
)

// #endregion

// #region stopwords

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "and": true,
	"or": true, "to": true, "for": true, "in": true, "on": true,
	"with": true, "is": true, "it": true, "its": true,
}

// #endregion

// #region tokenize

// Tokenize splits text into unique lowercase non-stopword tokens, splitting
// on anything that is not a letter or digit.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool)
	var tokens []string
	for _, w := range words {
		if stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		tokens = append(tokens, w)
	}
	return tokens
}

// #endregion

// #region allow-entry

// AllowEntry is one skill-title allow-list entry: a name plus the
// disambiguation token sets needed to tell it apart from similarly-worded
// titles (e.g. "non-standard" vs "standard" — spec §4.8's named trap).
type AllowEntry struct {
	Name           string
	PositiveTokens []string // every token must be present in the title
	NegativeTokens []string // no token may be present in the title
}

// #endregion

// #region match

// Match returns the first AllowEntry whose positive tokens are all present
// in title and whose negative tokens are all absent.
func Match(title string, entries []AllowEntry) (AllowEntry, bool) {
	tokens := tokenSet(Tokenize(title))
	for _, e := range entries {
		if allPresent(tokens, e.PositiveTokens) && nonePresent(tokens, e.NegativeTokens) {
			return e, true
		}
	}
	return AllowEntry{}, false
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

func allPresent(set map[string]bool, required []string) bool {
	for _, t := range required {
		if !set[strings.ToLower(t)] {
			return false
		}
	}
	return true
}

func nonePresent(set map[string]bool, forbidden []string) bool {
	for _, t := range forbidden {
		if set[strings.ToLower(t)] {
			return false
		}
	}
	return true
}

// #endregion
