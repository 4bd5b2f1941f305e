package session

import "testing"

func TestMarkSet(t *testing.T) {
	var s MarkSet
	if s.Has(1) || s.Len() != 0 {
		t.Fatalf("expected empty set")
	}
	if !s.Toggle(5) || !s.Toggle(2) {
		t.Fatalf("expected toggles to mark")
	}
	if got := s.Sorted(); len(got) != 2 || got[0] != 2 || got[1] != 5 {
		t.Fatalf("unexpected sorted marks: %v", got)
	}
	if s.Toggle(5) {
		t.Fatalf("expected second toggle to unmark")
	}
	if s.Has(5) || !s.Has(2) || s.Len() != 1 {
		t.Fatalf("unexpected membership after toggle")
	}
	s.Clear()
	if s.Len() != 0 || s.Has(2) {
		t.Fatalf("expected cleared set")
	}
}
