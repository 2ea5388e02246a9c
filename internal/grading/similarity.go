package grading

// EditDistance returns the Levenshtein distance between a and b: the
// minimum number of single-rune insertions, deletions and substitutions
// turning one into the other.
func EditDistance(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}

	// Two rolling rows over b instead of the full matrix.
	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ar); i++ {
		curr[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(br)]
}

// Similarity returns how alike a and b are as a percentage in [0, 100],
// scaled by the longer string so that one typo in a long word costs less
// than one typo in a short word.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	maxLen := max(len([]rune(a)), len([]rune(b)))
	dist := EditDistance(a, b)
	score := 100 * float64(maxLen-dist) / float64(maxLen)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
