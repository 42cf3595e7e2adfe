package source

import (
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/robbyt/go-luamount/internal/helpers"
	"github.com/spf13/afero"
)

// FromDisk opens the file again on every GetReader call, so edits show up
// on the next read.
type FromDisk struct {
	fs        afero.Fs
	path      string
	sourceURL *url.URL
}

func NewFromDisk(fs afero.Fs, path string) (*FromDisk, error) {
	if fs == nil {
		return nil, fmt.Errorf("%w: no file system", ErrNotAvailable)
	}
	path = strings.TrimPrefix(path, "file://")

	if strings.Contains(path, "://") {
		return nil, fmt.Errorf("%w: %s", ErrSchemeUnsupported, path)
	}

	if !filepath.IsAbs(path) {
		return nil, fmt.Errorf("%w: relative paths are not supported", ErrNotAvailable)
	}

	path = filepath.Clean(path)
	if path == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: path is empty or invalid", ErrNotAvailable)
	}

	return &FromDisk{
		fs:        fs,
		path:      path,
		sourceURL: &url.URL{Scheme: "file", Path: filepath.ToSlash(path)},
	}, nil
}

func (l *FromDisk) String() string {
	noChkSum := fmt.Sprintf("source.FromDisk{Path: %s}", l.path)

	reader, err := l.GetReader()
	if err != nil {
		return noChkSum
	}
	defer reader.Close()

	chksum, err := helpers.SHA256Reader(reader)
	if err != nil {
		return noChkSum
	}
	return fmt.Sprintf("source.FromDisk{Path: %s, SHA256: %s}", l.path, chksum[:8])
}

func (l *FromDisk) GetReader() (io.ReadCloser, error) {
	f, err := l.fs.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAvailable, err)
	}
	return f, nil
}

func (l *FromDisk) GetSourceURL() *url.URL {
	return l.sourceURL
}

func (l *FromDisk) Path() string {
	return l.path
}
