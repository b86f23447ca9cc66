package cmd

import "strings"

// maxSuggestDistance is the largest edit distance still worth suggesting.
const maxSuggestDistance = 3

// levenshtein computes the edit distance between a and b using a single row.
func levenshtein(a, b string) int {
	if a == "" {
		return len(b)
	}
	if b == "" {
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			next := min(row[j]+1, row[j-1]+1, diag+cost)
			diag = row[j]
			row[j] = next
		}
	}
	return row[len(b)]
}

// closest returns the candidate nearest to input, comparing with leading
// dashes stripped and case folded. Returns "" when nothing is close.
func closest(input string, candidates []string) string {
	needle := strings.ToLower(strings.TrimLeft(input, "-"))
	if needle == "" {
		return ""
	}
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range candidates {
		d := levenshtein(needle, strings.ToLower(strings.TrimLeft(c, "-")))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// suggestCommand finds the closest command name to the unknown input.
func suggestCommand(unknown string, commands []string) string {
	return closest(unknown, commands)
}

// suggestFlag finds the closest flag to the unknown input, returned with its
// original dashes.
func suggestFlag(unknown string, flags []string) string {
	return closest(unknown, flags)
}
