package loader

import (
	"fmt"

	"github.com/robbyt/go-luamount/manifest"
)

// Inline returns a contribution that always yields one inline module. The
// "as" argument renames it.
func Inline(name string, kind manifest.Kind, content []byte) Func {
	return func(args Args) ([]manifest.Entry, error) {
		if len(content) == 0 {
			return nil, fmt.Errorf("module %q has no content", name)
		}
		return []manifest.Entry{{
			Name:   args.Get("as", name),
			Kind:   kind,
			Inline: content,
		}}, nil
	}
}
