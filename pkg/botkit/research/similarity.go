package research

import "strings"

// querySetSimilarity returns a 0..1 ratio of how similar two query sets
// are, using a Levenshtein ratio over the joined, normalized sets.
func querySetSimilarity(a, b []string) float64 {
	left := strings.ToLower(strings.Join(a, " | "))
	right := strings.ToLower(strings.Join(b, " | "))
	if left == right {
		return 1
	}
	if left == "" || right == "" {
		return 0
	}

	distance := levenshtein([]rune(left), []rune(right))
	longest := len([]rune(left))
	if l := len([]rune(right)); l > longest {
		longest = l
	}
	return 1 - float64(distance)/float64(longest)
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
