package domain

// CategorySet is the closed set of pattern categories, loaded once from
// configuration at startup and held immutably for the process lifetime.
// Validation is a membership check, never a per-call config read.
type CategorySet struct {
	members map[string]struct{}
	names   []string
}

// NewCategorySet builds an immutable category set. Duplicates are collapsed;
// the original order of first appearance is kept for display.
func NewCategorySet(names []string) *CategorySet {
	s := &CategorySet{
		members: make(map[string]struct{}, len(names)),
		names:   make([]string, 0, len(names)),
	}
	for _, name := range names {
		if _, ok := s.members[name]; ok {
			continue
		}
		s.members[name] = struct{}{}
		s.names = append(s.names, name)
	}
	return s
}

// Contains reports whether name is a configured category.
func (s *CategorySet) Contains(name string) bool {
	_, ok := s.members[name]
	return ok
}

// Names returns the configured categories in declaration order.
func (s *CategorySet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s *CategorySet) Len() int {
	return len(s.names)
}
