package textutil

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName decomposes the name (NFD), strips combining marks and lowercases it.
// "José À." becomes "jose a.".
func NormalizeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	return strings.ToLower(stripped)
}

// NameSet is a normalized set of candidate names that full names are resolved against.
type NameSet map[string]struct{}

func NewNameSet(candidates []string) NameSet {
	set := make(NameSet, len(candidates))
	for _, c := range candidates {
		set[NormalizeName(c)] = struct{}{}
	}
	return set
}

// Contains reports whether any single whitespace separated token of fullName
// equals one of the candidates. This is a bag-of-tokens match, not full name
// equality: "John Doe" matches a set containing only "doe".
//
// Members sharing a token (a common surname for instance) can match the same
// candidate, callers that need precision must not rely on this.
func (s NameSet) Contains(fullName string) bool {
	if len(s) == 0 {
		return false
	}
	for _, token := range strings.Fields(NormalizeName(fullName)) {
		if _, ok := s[token]; ok {
			return true
		}
	}
	return false
}

// Resolve reports whether fullName matches any entry of candidates, see NameSet.Contains.
func Resolve(fullName string, candidates []string) bool {
	return NewNameSet(candidates).Contains(fullName)
}

// Closest returns the entry of pool most similar to name, along with the
// similarity. Every entry is scored by Jaro-Winkler over its normalized text and
// over each of its tokens, the best score counts, so a printed surname lines up
// with a full name. It returns ("", 0) for an empty pool.
func Closest(name string, pool []string) (string, float64) {
	target := NormalizeName(name)

	var best string
	var bestSimilarity float64
	for _, candidate := range pool {
		normalized := NormalizeName(candidate)
		similarity := matchr.JaroWinkler(target, normalized, false)
		for _, token := range strings.Fields(normalized) {
			tokenSimilarity := matchr.JaroWinkler(target, token, false)
			if tokenSimilarity > similarity {
				similarity = tokenSimilarity
			}
		}
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = candidate
		}
	}
	return best, bestSimilarity
}
