package analytics

import (
	"sort"
	"strings"
)

// DetectBrands derives a brand/display decomposition for a distinct
// product-name set using greedy common-prefix-by-word matching: a
// name's brand prefix grows while at least two names (itself included)
// agree on the word at the current position among names that already
// agree on all earlier words.
//
// The walk is quadratic in distinct names, so callers run it once per
// name set, never per record.
func DetectBrands(productNames []string) map[string]BrandMapping {
	split := make([][]string, len(productNames))
	for i, name := range productNames {
		split[i] = strings.Fields(name)
	}

	mappings := make(map[string]BrandMapping, len(productNames))
	for i, name := range productNames {
		words := split[i]

		prefixLen := 0
		for prefixLen < len(words) {
			shared := 0
			for j, other := range split {
				if j == i {
					continue
				}
				if agreesAt(other, words, prefixLen) {
					shared++
				}
			}
			// The name itself plus at least one other must carry this
			// word at this position.
			if shared == 0 {
				break
			}
			prefixLen++
		}

		mappings[name] = BrandMapping{
			Original:    name,
			BrandName:   strings.Join(words[:prefixLen], " "),
			DisplayName: strings.Join(words[prefixLen:], " "),
		}
	}
	return mappings
}

// agreesAt reports whether other matches words at every position up to
// and including pos.
func agreesAt(other, words []string, pos int) bool {
	if len(other) <= pos {
		return false
	}
	for k := 0; k <= pos; k++ {
		if other[k] != words[k] {
			return false
		}
	}
	return true
}

// BrandNames extracts the distinct non-empty brand names from a
// mapping, sorted for stable output.
func BrandNames(mappings map[string]BrandMapping) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range mappings {
		if m.BrandName == "" || seen[m.BrandName] {
			continue
		}
		seen[m.BrandName] = true
		names = append(names, m.BrandName)
	}
	sort.Strings(names)
	return names
}
