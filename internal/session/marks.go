package session

import "sort"

// MarkSet holds 1-indexed question numbers flagged for review.
type MarkSet struct {
	m map[int]struct{}
}

// Toggle flips membership of n and reports whether n is now marked.
func (s *MarkSet) Toggle(n int) bool {
	if s.m == nil {
		s.m = map[int]struct{}{}
	}
	if _, ok := s.m[n]; ok {
		delete(s.m, n)
		return false
	}
	s.m[n] = struct{}{}
	return true
}

// Has reports whether n is marked.
func (s *MarkSet) Has(n int) bool {
	_, ok := s.m[n]
	return ok
}

// Len returns the number of marked questions.
func (s *MarkSet) Len() int {
	return len(s.m)
}

// Sorted returns the marked questions in ascending order.
func (s *MarkSet) Sorted() []int {
	out := make([]int, 0, len(s.m))
	for n := range s.m {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Clear removes every mark.
func (s *MarkSet) Clear() {
	s.m = nil
}
