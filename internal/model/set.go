package model

import "sort"

// IDSet is an unordered set of opaque ids.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids, dropping duplicates.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id and reports whether the set changed.
func (s IDSet) Add(id string) bool {
	if s.Contains(id) {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Remove deletes id and reports whether the set changed.
func (s IDSet) Remove(id string) bool {
	if !s.Contains(id) {
		return false
	}
	delete(s, id)
	return true
}

func (s IDSet) Len() int {
	return len(s)
}

// Slice returns the members in sorted order so callers get stable query args.
func (s IDSet) Slice() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
