package compile

import (
	"fmt"
	"maps"
	"slices"
)

// Cache maps module names to compiled Lua. It is filled once at build time
// and read-only afterwards, so it can be shared freely.
type Cache struct {
	entries map[string]string
}

func NewCache(entries map[string]string) *Cache {
	c := &Cache{entries: make(map[string]string, len(entries))}
	maps.Copy(c.entries, entries)
	return c
}

func (c *Cache) String() string {
	return fmt.Sprintf("compile.Cache{Modules: %d}", len(c.entries))
}

func (c *Cache) Get(name string) (string, bool) {
	out, ok := c.entries[name]
	return out, ok
}

func (c *Cache) Len() int {
	return len(c.entries)
}

// Names returns the cached module names, sorted.
func (c *Cache) Names() []string {
	return slices.Sorted(maps.Keys(c.entries))
}

// Entries returns a copy of the cache contents.
func (c *Cache) Entries() map[string]string {
	return maps.Clone(c.entries)
}
