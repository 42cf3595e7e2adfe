package config

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

type tomlManifest struct {
	Doc     string `toml:"doc"`
	Modules []Item `toml:"modules"`
}

type tomlFile struct {
	Loaders   map[string]string       `toml:"loaders"`
	Manifests map[string]tomlManifest `toml:"manifests"`
}

// decodeTOML reads the TOML layout:
//
//	[loaders]
//	fennel = "fennel.Source"
//
//	[manifests.kiwi]
//	doc = "kiwi modules"
//	modules = [
//	  { loader = "fennel" },
//	  { walk = "kiwi", exclude = ["**_test.fnl"] },
//	  { name = "kiwi.native", opener = "kiwi.Native" },
//	]
//
// Manifests are ordered by id since TOML tables are unordered.
func decodeTOML(data []byte, p *Project) error {
	var f tomlFile
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("%w: line %d column %d: %w", ErrParse, row, col, err)
		}
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			return fmt.Errorf("%w: %s", ErrInvalid, serr.String())
		}
		return fmt.Errorf("%w: %w", ErrParse, err)
	}

	p.addLoaders(f.Loaders)
	ids := make([]string, 0, len(f.Manifests))
	for id := range f.Manifests {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		m := f.Manifests[id]
		if err := p.addManifest(ManifestSpec{ID: id, Doc: m.Doc, Items: m.Modules}); err != nil {
			return err
		}
	}
	return nil
}
