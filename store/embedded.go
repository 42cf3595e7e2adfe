package store

import (
	"fmt"

	"github.com/robbyt/go-luamount/manifest"
)

// Module is one blob captured at build time.
type Module struct {
	Name   string        `msgpack:"name"`
	Kind   manifest.Kind `msgpack:"kind"`
	Data   []byte        `msgpack:"data,omitempty"`
	Opener string        `msgpack:"opener,omitempty"`
}

// Embedded serves modules from memory and never touches a file system.
// Macro modules are kept apart from ordinary ones, so both may share a name.
type Embedded struct {
	id      string
	order   []Module
	modules map[string]Module
	macros  map[string]Module
}

func NewEmbedded(id string, modules []Module) (*Embedded, error) {
	s := &Embedded{
		id:      id,
		order:   make([]Module, 0, len(modules)),
		modules: make(map[string]Module, len(modules)),
		macros:  make(map[string]Module),
	}
	for _, m := range modules {
		ns := s.modules
		if m.Kind == manifest.KindMacro {
			ns = s.macros
		}
		if _, ok := ns[m.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicate, m.Name)
		}
		ns[m.Name] = m
		s.order = append(s.order, m)
	}
	return s, nil
}

func (s *Embedded) String() string {
	return fmt.Sprintf("store.Embedded{Manifest: %s, Modules: %d}", s.id, len(s.order))
}

func content(m Module) Content {
	return Content{
		Name:   m.Name,
		Kind:   m.Kind,
		Data:   m.Data,
		Origin: "embedded:" + m.Name,
		Opener: m.Opener,
	}
}

func (s *Embedded) ID() string {
	return s.id
}

func (s *Embedded) Get(name string) (Content, bool, error) {
	m, ok := s.modules[name]
	if !ok {
		return Content{}, false, nil
	}
	return content(m), true, nil
}

func (s *Embedded) GetMacro(name string) (Content, bool, error) {
	m, ok := s.macros[name]
	if !ok {
		return Content{}, false, nil
	}
	return content(m), true, nil
}

func (s *Embedded) Kind(name string) (manifest.Kind, bool) {
	m, ok := s.modules[name]
	return m.Kind, ok
}

func (s *Embedded) Names() []string {
	out := make([]string, len(s.order))
	for i, m := range s.order {
		out[i] = m.Name
	}
	return out
}

func (s *Embedded) HasKind(k manifest.Kind) bool {
	if k == manifest.KindMacro {
		return len(s.macros) > 0
	}
	for _, m := range s.modules {
		if m.Kind == k {
			return true
		}
	}
	return false
}

// Modules returns the blobs in insertion order.
func (s *Embedded) Modules() []Module {
	out := make([]Module, len(s.order))
	copy(out, s.order)
	return out
}
