// Package store serves module content by logical name. Embedded serves
// content captured at build time; Lazy reads files each time a module is
// requested.
package store

import (
	"errors"
	"fmt"

	"github.com/robbyt/go-luamount/manifest"
)

var (
	ErrRead       = errors.New("failed to read module content")
	ErrDuplicate  = errors.New("duplicate module name")
	ErrBadOption  = errors.New("invalid store option")
	ErrNoManifest = errors.New("store needs a manifest")
)

// Content is what a store returns for one module.
type Content struct {
	Name string
	Kind manifest.Kind
	// Data is the module text. Empty for loader modules, and for compiled
	// modules in an embedded store, whose Lua lives in the compile cache.
	Data []byte
	// Origin names where Data came from, for chunk names and errors.
	Origin string
	// Opener is set for loader modules.
	Opener string
}

func (c Content) String() string {
	return fmt.Sprintf("store.Content{Name: %s, Kind: %s, Bytes: %d}", c.Name, c.Kind, len(c.Data))
}

// Store is the lookup surface the searcher depends on. Get and GetMacro
// report a miss with ok set to false and a nil error.
type Store interface {
	// ID identifies the manifest the store serves.
	ID() string
	// Get looks name up among ordinary modules.
	Get(name string) (c Content, ok bool, err error)
	// GetMacro looks name up among macro modules.
	GetMacro(name string) (c Content, ok bool, err error)
	// Kind reports an ordinary module's kind without reading its content.
	Kind(name string) (manifest.Kind, bool)
	// Names lists modules in manifest order.
	Names() []string
	HasKind(k manifest.Kind) bool
}
