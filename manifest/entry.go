package manifest

import (
	"fmt"

	"github.com/robbyt/go-luamount/internal/helpers"
)

// Entry is one resolved module. Exactly one of Path, Inline, or Opener
// carries the content source, depending on Kind.
type Entry struct {
	Name string
	Kind Kind

	// Path is the absolute location of a file-backed module.
	Path string
	// Inline holds the content of modules declared with text.
	Inline []byte
	// Opener names the Go opener bound to a KindLoader entry.
	Opener string
}

// IsInline reports whether the content lives in the entry itself.
func (e Entry) IsInline() bool {
	return e.Path == "" && e.Kind != KindLoader
}

// Origin describes where the content comes from, for error messages and
// chunk names.
func (e Entry) Origin() string {
	switch {
	case e.Kind == KindLoader:
		return "opener:" + e.Opener
	case e.Path != "":
		return e.Path
	default:
		return fmt.Sprintf("inline:%s@%s", e.Name, helpers.ShortSHA256(e.Inline))
	}
}

func (e Entry) String() string {
	return fmt.Sprintf("manifest.Entry{Name: %s, Kind: %s, Origin: %s}", e.Name, e.Kind, e.Origin())
}

func (e Entry) validate() error {
	if e.Name == "" {
		return fmt.Errorf("%w: entry has no name", ErrInvalidDeclaration)
	}
	switch e.Kind {
	case KindNative, KindCompile, KindMacro:
		if e.Path == "" && e.Inline == nil {
			return fmt.Errorf("%w: module %q has no content source", ErrInvalidDeclaration, e.Name)
		}
	case KindLoader:
		if e.Opener == "" {
			return fmt.Errorf("%w: loader module %q has no opener", ErrInvalidDeclaration, e.Name)
		}
	default:
		return fmt.Errorf("%w: module %q", ErrUnknownModuleKind, e.Name)
	}
	return nil
}
