package services

import "sort"

// Selection is the set of catalog indices chosen for quotation.
// Membership is toggled, never appended, so an index appears at most once.
type Selection struct {
	members map[int]struct{}
}

func NewSelection() *Selection {
	return &Selection{members: make(map[int]struct{})}
}

// Toggle flips membership of index. Indices outside [0, catalogLen) are
// ignored. It reports whether the selection changed.
func (s *Selection) Toggle(index, catalogLen int) bool {
	if index < 0 || index >= catalogLen {
		return false
	}
	if _, ok := s.members[index]; ok {
		delete(s.members, index)
		return true
	}
	s.members[index] = struct{}{}
	return true
}

func (s *Selection) Contains(index int) bool {
	_, ok := s.members[index]
	return ok
}

func (s *Selection) Len() int { return len(s.members) }

func (s *Selection) IsEmpty() bool { return len(s.members) == 0 }

// Indices returns the selected indices in ascending order.
func (s *Selection) Indices() []int {
	out := make([]int, 0, len(s.members))
	for i := range s.members {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Entries resolves the selection against catalog in ascending index order.
// Indices no longer present in catalog are skipped.
func (s *Selection) Entries(catalog []CatalogEntry) []CatalogEntry {
	idx := s.Indices()
	out := make([]CatalogEntry, 0, len(idx))
	for _, i := range idx {
		if i < len(catalog) {
			out = append(out, catalog[i])
		}
	}
	return out
}

// Reset empties the selection. Called whenever the catalog is reloaded.
func (s *Selection) Reset() {
	s.members = make(map[int]struct{})
}
