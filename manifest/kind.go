package manifest

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Kind says how a module's content reaches the runtime.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNative is Lua source loaded unmodified.
	KindNative
	// KindCompile is Fennel source compiled to Lua before loading.
	KindCompile
	// KindMacro is a Fennel macro module, visible only to the compiler.
	KindMacro
	// KindLoader is backed by a Go opener that returns the loader function.
	KindLoader
)

const (
	ExtLua    = ".lua"
	ExtFennel = ".fnl"
	ExtMacro  = ".fnlm"

	initStem      = "init"
	initMacroStem = "init-macros"
)

var kindNames = map[Kind]string{
	KindNative:  "lua",
	KindCompile: "fennel",
	KindMacro:   "fennel-macros",
	KindLoader:  "loader",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts the names used in configuration files.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownModuleKind, s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownModuleKind, int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// InferKind derives the kind from a file name. Files named init-macros with
// any recognized extension are macro modules regardless of that extension.
func InferKind(p string) (Kind, error) {
	base := path.Base(filepath.ToSlash(p))
	ext := path.Ext(base)

	var k Kind
	switch ext {
	case ExtLua:
		k = KindNative
	case ExtFennel:
		k = KindCompile
	case ExtMacro:
		k = KindMacro
	default:
		return KindUnknown, fmt.Errorf("%w: cannot infer kind of %q", ErrUnknownModuleKind, p)
	}

	if strings.TrimSuffix(base, ext) == initMacroStem {
		k = KindMacro
	}
	return k, nil
}

// Recognized reports whether the file name carries one of the known
// extensions.
func Recognized(p string) bool {
	_, err := InferKind(p)
	return err == nil
}
