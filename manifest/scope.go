package manifest

import (
	"fmt"
	"strings"
)

// Scope holds the named manifests defined by one project configuration.
type Scope struct {
	ids       []string
	manifests map[string]*Manifest
}

func NewScope() *Scope {
	return &Scope{manifests: make(map[string]*Manifest)}
}

func (s *Scope) Define(id string, m *Manifest) error {
	if m == nil {
		return fmt.Errorf("%w: manifest %q is nil", ErrConfig, id)
	}
	if _, ok := s.manifests[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateManifest, id)
	}
	s.ids = append(s.ids, id)
	s.manifests[id] = m
	return nil
}

// Resolve looks a manifest up by id. An empty id is only valid when the
// scope holds exactly one manifest.
func (s *Scope) Resolve(id string) (*Manifest, error) {
	if id == "" {
		switch len(s.ids) {
		case 0:
			return nil, fmt.Errorf("%w: no manifests defined", ErrManifestNotFound)
		case 1:
			return s.manifests[s.ids[0]], nil
		default:
			return nil, fmt.Errorf("%w: choose one of %s", ErrAmbiguousManifest, strings.Join(s.ids, ", "))
		}
	}
	m, ok := s.manifests[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrManifestNotFound, id)
	}
	return m, nil
}

// IDs returns manifest ids in definition order.
func (s *Scope) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *Scope) Len() int {
	return len(s.ids)
}
