package merge

import (
	"regexp"
	"strings"

	"github.com/hyperifyio/klassenbuch/internal/homework"
)

var (
	// \s alone is ASCII-only in Go; the source text is decoded HTML, so
	// non-breaking spaces and other Unicode separators count as whitespace
	// too.
	whitespaceRe = regexp.MustCompile(`[\s\p{Z}\x{FEFF}]+`)
	strippableRe = regexp.MustCompile(`[^\w\säöüß]`)
)

// Normalize prepares a description for comparison: lowercase, whitespace
// runs collapsed, everything except word characters, whitespace and the
// German letters äöüß stripped, then trimmed.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strippableRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// AreDuplicates reports whether two records describe the same assignment:
// same subject, same calendar day, and descriptions that are either
// normalized-equal or more than 90% similar by edit distance. Symmetric in
// its arguments.
func AreDuplicates(a, b homework.Record) bool {
	if a.Subject != b.Subject {
		return false
	}
	if !homework.SameDay(a.DueDate, b.DueDate) {
		return false
	}
	d1 := Normalize(a.Description)
	d2 := Normalize(b.Description)
	if d1 == d2 {
		return true
	}
	return Similarity(d1, d2) > 0.9
}

// Similarity returns an edit-distance ratio in [0,1]:
// (maxLen - levenshtein) / maxLen, with two empty strings counting as
// identical. Lengths and distances count runes, not bytes, so umlauts in
// normalized text weigh the same as ASCII letters.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1.0
	}
	return float64(longest-levenshtein(ra, rb)) / float64(longest)
}

// levenshtein computes the classic unit-cost edit distance using a two-row
// rolling table.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j-1]+cost, cur[j-1]+1, prev[j]+1)
		}
		prev, cur = cur, prev
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

// Merge folds incoming records into the existing set, left to right. Each
// incoming record either joins the first duplicate already in the
// accumulating result (union of source file ids, every other field of the
// earlier record wins) or is appended unchanged. The fold order is part of
// the contract: near the similarity threshold duplicate grouping is not
// associative, so callers must feed batches in upload order.
func Merge(existing, incoming []homework.Record) []homework.Record {
	merged := make([]homework.Record, len(existing))
	copy(merged, existing)

	for _, in := range incoming {
		i := firstDuplicate(merged, in)
		if i < 0 {
			merged = append(merged, in)
			continue
		}
		merged[i].SourceFileIDs = unionSourceIDs(merged[i].SourceFileIDs, in.SourceFileIDs)
	}
	return merged
}

func firstDuplicate(records []homework.Record, candidate homework.Record) int {
	for i, r := range records {
		if AreDuplicates(r, candidate) {
			return i
		}
	}
	return -1
}

// unionSourceIDs appends ids from next that are not already present,
// preserving relative order. Always returns a fresh slice so merged entries
// never alias their inputs.
func unionSourceIDs(current, next []string) []string {
	out := make([]string, 0, len(current)+len(next))
	seen := make(map[string]struct{}, len(current)+len(next))
	for _, id := range current {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range next {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
