// Package reconcile collapses OCR misreads of the same protocol identifier.
//
// Running OCR over many pages and rotation angles produces many copies of the
// same physical identifier, some of them off by a single misread character.
// A [Tally] counts the normalized candidates of one document and [Tally.Reconcile]
// reduces them to the final identifier set:
//
//  1. Candidates are ranked by frequency, most frequent first. Ties keep the
//     order in which candidates were first added.
//  2. Walking the ranking, a candidate is dropped as a misread when an already
//     accepted identifier has the same length, differs from it in exactly one
//     position, and starts with the same character.
//  3. The accepted identifiers are returned in lexicographic order.
//
// Identifiers whose first characters differ are never collapsed, so
// PIP1902094449 and AIP1902094449 both survive. The heuristic is greedy and
// order-sensitive; it is not a clustering algorithm.
package reconcile

import (
	"sort"
	"strings"
	"unicode"
)

// Normalize removes every rune that is not a letter or a digit.
// Normalize is idempotent.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// Candidate is a normalized identifier with its occurrence count.
type Candidate struct {
	Text  string
	Count int
}

// Tally is a multiset of normalized identifier candidates that remembers
// first-insertion order. The zero value is ready to use.
type Tally struct {
	counts map[string]int
	order  []string
	total  int
}

// Add normalizes and counts each raw match. Matches that normalize to the
// empty string are ignored.
func (t *Tally) Add(raw ...string) {
	for _, r := range raw {
		t.addNormalized(Normalize(r), 1)
	}
}

// Merge adds every candidate of o to t, preserving o's insertion order for
// candidates t has not seen yet.
func (t *Tally) Merge(o Tally) {
	for _, s := range o.order {
		t.addNormalized(s, o.counts[s])
	}
}

func (t *Tally) addNormalized(s string, n int) {
	if s == "" || n <= 0 {
		return
	}
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	if _, seen := t.counts[s]; !seen {
		t.order = append(t.order, s)
	}
	t.counts[s] += n
	t.total += n
}

// Total returns the number of counted matches, including repeats.
func (t *Tally) Total() int {
	return t.total
}

// Distinct returns the number of distinct normalized candidates.
func (t *Tally) Distinct() int {
	return len(t.order)
}

// Count returns how often the normalized form of s was added.
func (t *Tally) Count(s string) int {
	return t.counts[Normalize(s)]
}

// Ranked returns the candidates by descending count, ties in insertion order.
func (t *Tally) Ranked() []Candidate {
	ranked := make([]Candidate, len(t.order))
	for i, s := range t.order {
		ranked[i] = Candidate{Text: s, Count: t.counts[s]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	return ranked
}

// Reconcile returns the accepted identifiers in lexicographic order.
// The result is never nil.
func (t *Tally) Reconcile() []string {
	accepted := make([]string, 0, len(t.order))
	for _, c := range t.Ranked() {
		if !misreadOfAny(c.Text, accepted) {
			accepted = append(accepted, c.Text)
		}
	}
	sort.Strings(accepted)
	return accepted
}

// Reconcile normalizes and reconciles a list of raw matches.
func Reconcile(raw []string) []string {
	var t Tally
	t.Add(raw...)
	return t.Reconcile()
}

// IsMisread reports whether candidate should be treated as an OCR misread of
// accepted: same length, exactly one differing position, same first character.
func IsMisread(candidate, accepted string) bool {
	a, b := []rune(candidate), []rune(accepted)
	if len(a) != len(b) || len(a) == 0 || a[0] != b[0] {
		return false
	}
	diff := 0
	for i := range a {
		if a[i] != b[i] {
			diff++
			if diff > 1 {
				return false
			}
		}
	}
	return diff == 1
}

func misreadOfAny(candidate string, accepted []string) bool {
	for _, a := range accepted {
		if IsMisread(candidate, a) {
			return true
		}
	}
	return false
}
