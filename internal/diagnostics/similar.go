package diagnostics

import (
	"sort"
	"strings"
)

// EditDistance computes the Levenshtein distance between two strings using
// two rolling rows.
func EditDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(a)]
}

// ContiguousSimilarity weights the longest common substring twice as much as
// the overall ratio of matching character pairs. It catches transpositions
// that edit distance punishes, e.g. "getNameFull" vs "getFullName".
func ContiguousSimilarity(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	longest, matches := 0, 0

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				longest = max(longest, curr[j])
				matches++
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}

	contiguous := float64(longest) / float64(max(len(a), len(b)))
	ratio := float64(matches) / float64(len(a)*len(b))
	return contiguous*2 + ratio
}

// IsSimilar decides whether candidate is worth suggesting for name.
func IsSimilar(name, candidate string) bool {
	if name == candidate {
		return false
	}
	threshold := max(2, (len(name)+1)/2)
	if EditDistance(name, candidate) <= threshold {
		return true
	}
	return len(name) >= 3 && ContiguousSimilarity(name, candidate) > 0.65
}

// Suggest returns the similar candidates in sorted order.
func Suggest(name string, candidates []string) []string {
	var out []string
	for _, c := range candidates {
		if IsSimilar(name, c) {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// DidYouMean formats suggestions for DiagnosticError.Hint; empty when there
// is nothing to suggest.
func DidYouMean(kind string, suggestions []string) string {
	if len(suggestions) == 0 {
		return ""
	}
	return "did you mean " + kind + " " + strings.Join(suggestions, ", ") + "?"
}
