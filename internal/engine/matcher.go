package engine

import (
	"regexp"
	"strings"
)

// Predicate reports whether a normalized message matches a rule.
type Predicate func(text string) bool

// Normalize lower-cases text for keyword matching. It is applied once per message.
func Normalize(text string) string { return strings.ToLower(text) }

// ContainsKeyword matches when the lower-cased keyword occurs anywhere in the text.
// Matching is substring-based: "work" also matches "homework".
func ContainsKeyword(keyword string) Predicate {
	kw := Normalize(keyword)
	return func(text string) bool { return strings.Contains(text, kw) }
}

// ContainsAny matches when at least one keyword occurs in the text.
func ContainsAny(keywords ...string) Predicate {
	preds := make([]Predicate, 0, len(keywords))
	for _, kw := range keywords {
		preds = append(preds, ContainsKeyword(kw))
	}
	return AnyOf(preds...)
}

func AnyOf(preds ...Predicate) Predicate {
	return func(text string) bool {
		for _, p := range preds {
			if p(text) {
				return true
			}
		}
		return false
	}
}

// MatchesPattern wraps a compiled regexp as a Predicate.
func MatchesPattern(re *regexp.Regexp) Predicate {
	return re.MatchString
}

// countMatches returns how many predicates match text. Each predicate counts at most once.
func countMatches(text string, preds []Predicate) int {
	n := 0
	for _, p := range preds {
		if p(text) {
			n++
		}
	}
	return n
}

// orderedSet keeps the first-insertion order of comparable values and drops repeats.
type orderedSet[T comparable] struct {
	seen  map[T]struct{}
	items []T
}

func newOrderedSet[T comparable](capacity int) *orderedSet[T] {
	return &orderedSet[T]{seen: make(map[T]struct{}, capacity), items: make([]T, 0, capacity)}
}

// Add inserts v unless present and reports whether it was added.
func (s *orderedSet[T]) Add(v T) bool {
	if _, ok := s.seen[v]; ok {
		return false
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

func (s *orderedSet[T]) Has(v T) bool {
	_, ok := s.seen[v]
	return ok
}

func (s *orderedSet[T]) Len() int { return len(s.items) }

func (s *orderedSet[T]) Items() []T { return s.items }
