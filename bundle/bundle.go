// Package bundle captures a manifest's modules, with Fennel already compiled,
// into a single artifact that can be embedded in a binary and served without
// touching the file system.
package bundle

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/robbyt/go-luamount/compile"
	"github.com/robbyt/go-luamount/manifest"
	"github.com/robbyt/go-luamount/store"
	"github.com/spf13/afero"
	"github.com/vmihailenco/msgpack/v5"
)

// FormatVersion is bumped whenever the encoded layout changes.
const FormatVersion = 1

var magic = []byte("LMB\x01")

// Bundle is the build-time snapshot of a manifest. Modules hold Lua and
// macro source verbatim; Fennel modules appear there without data, and their
// compiled Lua lives in Compiled.
type Bundle struct {
	Format     int               `msgpack:"format"`
	ManifestID string            `msgpack:"manifest"`
	Doc        string            `msgpack:"doc,omitempty"`
	Compiler   string            `msgpack:"compiler,omitempty"`
	Modules    []store.Module    `msgpack:"modules"`
	Compiled   map[string]string `msgpack:"compiled"`
}

func (b *Bundle) String() string {
	return fmt.Sprintf("bundle.Bundle{Manifest: %s, Modules: %d, Compiled: %d}",
		b.ManifestID, len(b.Modules), len(b.Compiled))
}

// Validate checks that every Fennel module has compiled output and that the
// cache holds nothing else.
func (b *Bundle) Validate() error {
	if b.Format != FormatVersion {
		return fmt.Errorf("%w: format %d, want %d", ErrCorrupt, b.Format, FormatVersion)
	}
	seen := make(map[string]manifest.Kind, len(b.Modules))
	macros := make(map[string]bool)
	for _, m := range b.Modules {
		if m.Kind == manifest.KindMacro {
			if macros[m.Name] {
				return fmt.Errorf("%w: macro module %q appears twice", ErrInconsistent, m.Name)
			}
			macros[m.Name] = true
			continue
		}
		if _, dup := seen[m.Name]; dup {
			return fmt.Errorf("%w: module %q appears twice", ErrInconsistent, m.Name)
		}
		seen[m.Name] = m.Kind
		if m.Kind == manifest.KindCompile {
			if _, ok := b.Compiled[m.Name]; !ok {
				return fmt.Errorf("%w: no compiled output for %q", ErrInconsistent, m.Name)
			}
		}
	}
	for name := range b.Compiled {
		if seen[name] != manifest.KindCompile {
			return fmt.Errorf("%w: compiled output for %q which is not a fennel module", ErrInconsistent, name)
		}
	}
	return nil
}

// Store returns an embedded store over the bundled modules.
func (b *Bundle) Store() (*store.Embedded, error) {
	return store.NewEmbedded(b.ManifestID, b.Modules)
}

// Cache returns the compiled module cache.
func (b *Bundle) Cache() *compile.Cache {
	return compile.NewCache(b.Compiled)
}

// Marshal encodes the bundle as msgpack compressed with zstd, behind a magic
// header.
func (b *Bundle) Marshal() ([]byte, error) {
	payload, err := msgpack.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bundle: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}
	defer enc.Close()

	out := make([]byte, 0, len(magic)+len(payload)/2)
	out = append(out, magic...)
	return enc.EncodeAll(payload, out), nil
}

// Open decodes and validates a bundle produced by Marshal.
func Open(data []byte) (*Bundle, error) {
	if !bytes.HasPrefix(data, magic) {
		return nil, fmt.Errorf("%w: missing header", ErrCorrupt)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	defer dec.Close()

	payload, err := dec.DecodeAll(data[len(magic):], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	b := &Bundle{}
	if err := msgpack.Unmarshal(payload, b); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Write stores the encoded bundle at path, creating parent directories.
func Write(fs afero.Fs, path string, b *Bundle) error {
	data, err := b.Marshal()
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	return afero.WriteFile(fs, path, data, os.FileMode(0o644))
}

// Read loads and opens the bundle at path.
func Read(fs afero.Fs, path string) (*Bundle, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	return Open(data)
}
