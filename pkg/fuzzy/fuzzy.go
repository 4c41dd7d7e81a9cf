// Package fuzzy ranks free-text queries against short title/content pairs
// with typo tolerance.
package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Distance is the Levenshtein edit distance between two normalized strings.
func Distance(a, b string) int {
	ra := []rune(Normalize(a))
	rb := []rune(Normalize(b))
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// two rolling rows instead of the full matrix
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

// Threshold is the edit distance tolerated for a query term of this length.
func Threshold(term string) int {
	n := len([]rune(term))
	switch {
	case n <= 3:
		return 0
	case n <= 5:
		return 1
	case n >= 9:
		return 3
	default:
		return 2
	}
}

// Match reports whether every query term matches somewhere in text.
func Match(query, text string) bool {
	terms := strings.Fields(Normalize(query))
	if len(terms) == 0 {
		return false
	}
	words := strings.Fields(Normalize(text))
	for _, term := range terms {
		if termScore(term, words) == 0 {
			return false
		}
	}
	return true
}

// Score ranks title and content against query; zero means no match.
// Title hits weigh twice as much as content hits and every term must hit
// at least one of the two.
func Score(query, title, content string) float64 {
	terms := strings.Fields(Normalize(query))
	if len(terms) == 0 {
		return 0
	}
	titleWords := strings.Fields(Normalize(title))
	contentWords := strings.Fields(Normalize(content))

	total := 0.0
	for _, term := range terms {
		ts := 2 * termScore(term, titleWords)
		cs := termScore(term, contentWords)
		if ts == 0 && cs == 0 {
			return 0
		}
		total += ts + cs
	}

	// whole phrase bonus
	phrase := strings.Join(terms, " ")
	if len(terms) > 1 && strings.Contains(strings.Join(titleWords, " "), phrase) {
		total += 50
	}
	return total
}

// termScore: exact word 100, prefix 60, substring 40, typo 30 minus 10 per edit.
func termScore(term string, words []string) float64 {
	best := 0.0
	limit := Threshold(term)
	for _, w := range words {
		var s float64
		switch {
		case w == term:
			s = 100
		case strings.HasPrefix(w, term):
			s = 60
		case strings.Contains(w, term):
			s = 40
		default:
			if d := Distance(term, w); d <= limit {
				s = 30 - float64(d)*10
				if s <= 0 {
					s = 5
				}
			}
		}
		if s > best {
			best = s
		}
	}
	return best
}

// Normalize lowercases, strips diacritics and punctuation, and collapses whitespace.
func Normalize(s string) string {
	// transformer chains keep state, so build one per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err == nil {
		s = stripped
	}
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
