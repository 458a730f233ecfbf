package resolver

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

type (
	// Replacement substitutes every match of Token, a regular expression, with Value.
	Replacement struct {
		Token string
		Value string
	}

	// Replacements apply in order, so a later token can match text inserted by an earlier one.
	Replacements []Replacement
)

// ReplacementsFromMap builds replacements from m, ordered by token.
func ReplacementsFromMap(m map[string]string) Replacements {
	tokens := make([]string, 0, len(m))
	for token := range m {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	out := make(Replacements, 0, len(tokens))
	for _, token := range tokens {
		out = append(out, Replacement{Token: token, Value: m[token]})
	}

	return out
}

// ParseReplacement parses "token=value". The token is everything before the first '='.
func ParseReplacement(s string) (Replacement, error) {
	i := strings.Index(s, "=")
	if i <= 0 {
		return Replacement{}, fmt.Errorf("replacement %q is not in token=value form", s)
	}

	return Replacement{Token: s[:i], Value: s[i+1:]}, nil
}

// Apply runs every replacement over s. Values are inserted literally.
func (rs Replacements) Apply(s string) (string, error) {
	for _, r := range rs {
		re, err := regexp.Compile(r.Token)
		if err != nil {
			return "", fmt.Errorf("invalid replacement token %q: %w", r.Token, err)
		}

		s = re.ReplaceAllLiteralString(s, r.Value)
	}

	return s, nil
}
