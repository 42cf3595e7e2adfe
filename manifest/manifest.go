package manifest

import (
	"fmt"
	"strings"

	"github.com/robbyt/go-luamount/internal/helpers"
)

// Manifest is an ordered collection of resolved entries. Macro modules live
// in their own namespace, so a name can appear once as a macro module and
// once as an ordinary one, as with init.fnl and init-macros.fnl. It is never
// modified after construction; Merge and WithDoc return new values.
type Manifest struct {
	doc     string
	entries []Entry
	index   map[slot]int
	id      string
}

// slot keys an entry within its namespace.
type slot struct {
	name  string
	macro bool
}

func slotOf(e Entry) slot {
	return slot{name: e.Name, macro: e.Kind == KindMacro}
}

// New validates the entries and collapses duplicate names within each
// namespace. The last entry with a given name wins but keeps the position
// where the name first appeared.
func New(entries ...Entry) (*Manifest, error) {
	m := &Manifest{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[slot]int, len(entries)),
	}
	for _, e := range entries {
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		m.put(e)
	}
	m.id = m.digest()
	return m, nil
}

func (m *Manifest) put(e Entry) {
	k := slotOf(e)
	if i, ok := m.index[k]; ok {
		m.entries[i] = e
		return
	}
	m.index[k] = len(m.entries)
	m.entries = append(m.entries, e)
}

func (m *Manifest) digest() string {
	var b strings.Builder
	for _, e := range m.entries {
		fmt.Fprintf(&b, "%s\x00%s\x00%s\x00%s\x00%s\n",
			e.Name, e.Kind, e.Path, helpers.SHA256Bytes(e.Inline), e.Opener)
	}
	return helpers.ShortSHA256([]byte(b.String()))
}

// ID identifies the manifest by content. Two manifests with the same entries
// in the same order share an ID.
func (m *Manifest) ID() string {
	return m.id
}

func (m *Manifest) Doc() string {
	return m.doc
}

// WithDoc returns a copy carrying the docstring.
func (m *Manifest) WithDoc(doc string) *Manifest {
	cp := *m
	cp.doc = doc
	return &cp
}

func (m *Manifest) Len() int {
	return len(m.entries)
}

// Get returns the ordinary module registered under name.
func (m *Manifest) Get(name string) (Entry, bool) {
	return m.lookup(slot{name: name})
}

// GetMacro returns the macro module registered under name.
func (m *Manifest) GetMacro(name string) (Entry, bool) {
	return m.lookup(slot{name: name, macro: true})
}

func (m *Manifest) lookup(k slot) (Entry, bool) {
	i, ok := m.index[k]
	if !ok {
		return Entry{}, false
	}
	return m.entries[i], true
}

// Entries returns the entries in declaration order.
func (m *Manifest) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Names lists entry names in order. A name shared by a macro module and an
// ordinary module appears twice.
func (m *Manifest) Names() []string {
	names := make([]string, len(m.entries))
	for i, e := range m.entries {
		names[i] = e.Name
	}
	return names
}

// HasKind reports whether any entry is of kind k.
func (m *Manifest) HasKind(k Kind) bool {
	for _, e := range m.entries {
		if e.Kind == k {
			return true
		}
	}
	return false
}

// Merge combines two manifests. On a name collision within a namespace the
// entry from other wins, at the position the name had in m.
func (m *Manifest) Merge(other *Manifest) *Manifest {
	out := &Manifest{
		doc:     m.doc,
		entries: make([]Entry, 0, len(m.entries)+len(other.entries)),
		index:   make(map[slot]int, len(m.entries)+len(other.entries)),
	}
	for _, e := range m.entries {
		out.put(e)
	}
	for _, e := range other.entries {
		out.put(e)
	}
	out.id = out.digest()
	return out
}

func (m *Manifest) String() string {
	return fmt.Sprintf("manifest.Manifest{ID: %s, Entries: %d}", m.id, len(m.entries))
}
