package usecase

import "securehire/internal/domain/entity"

// IdentitySet remembers every key of every identity added to it, so a person is found
// again by either their auth id or their backend id.
type IdentitySet struct {
	keys map[string]struct{}
}

func NewIdentitySet() *IdentitySet {
	return &IdentitySet{keys: make(map[string]struct{})}
}

// Contains reports whether any key of id is already present.
func (s *IdentitySet) Contains(id entity.Identity) bool {
	for _, k := range id.Keys() {
		if _, ok := s.keys[k]; ok {
			return true
		}
	}
	return false
}

func (s *IdentitySet) Add(id entity.Identity) {
	for _, k := range id.Keys() {
		s.keys[k] = struct{}{}
	}
}

// Len is the number of keys held, not the number of identities.
func (s *IdentitySet) Len() int {
	return len(s.keys)
}
