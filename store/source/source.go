// Package source provides readers for module content, whether it sits on a
// file system or in memory.
package source

import (
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/robbyt/go-luamount/manifest"
	"github.com/spf13/afero"
)

var (
	ErrSchemeUnsupported = errors.New("unsupported scheme")
	ErrNotAvailable      = errors.New("module content not available")
)

// Source hands out fresh readers over one module's content.
type Source interface {
	GetReader() (io.ReadCloser, error)
	GetSourceURL() *url.URL
}

// ReadAll reads the whole content of s.
func ReadAll(s Source) ([]byte, error) {
	r, err := s.GetReader()
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("failed to read %s: %w", s.GetSourceURL(), err)
	}
	if err := r.Close(); err != nil {
		return nil, fmt.Errorf("failed to close reader: %w", err)
	}
	return data, nil
}

// ForEntry picks the source matching where the entry's content lives.
// Loader entries have no content and are rejected.
func ForEntry(fs afero.Fs, e manifest.Entry) (Source, error) {
	switch {
	case e.Kind == manifest.KindLoader:
		return nil, fmt.Errorf("%w: %q is served by opener %q", ErrNotAvailable, e.Name, e.Opener)
	case e.Path != "":
		return NewFromDisk(fs, e.Path)
	default:
		return NewFromBytes(e.Name, e.Inline)
	}
}
