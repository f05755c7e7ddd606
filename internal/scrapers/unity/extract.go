package unity

import (
	"u3d/internal/catalog"
)

type Pair struct {
	Version string
	URL     string
}

// Extract returns every non-overlapping match of the pattern in text order.
func Extract(body string, pattern PagePattern) []Pair {
	matches := pattern.Regexp.FindAllStringSubmatch(body, -1)
	out := make([]Pair, 0, len(matches))
	for _, groups := range matches {
		out = append(out, Pair{
			Version: groups[pattern.VersionGroup],
			URL:     groups[pattern.URLGroup],
		})
	}
	return out
}

// ExtractCatalog folds the extracted pairs into a catalog, a version that
// appears more than once keeps the URL of its last match.
func ExtractCatalog(body string, pattern PagePattern) catalog.Catalog {
	out := catalog.Catalog{}
	for _, pair := range Extract(body, pattern) {
		out[pair.Version] = pair.URL
	}
	return out
}

// ExtractTokens returns the distinct tokens in the order they first appear.
func ExtractTokens(body string, pattern TokenPattern) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, groups := range pattern.Regexp.FindAllStringSubmatch(body, -1) {
		token := groups[pattern.Group]
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}
