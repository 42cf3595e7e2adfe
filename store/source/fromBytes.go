package source

import (
	"bytes"
	"fmt"
	"io"
	"net/url"

	"github.com/robbyt/go-luamount/internal/helpers"
)

// FromBytes serves content held in memory. Empty content is allowed: an
// empty Lua chunk is a valid module.
type FromBytes struct {
	content   []byte
	sourceURL *url.URL
}

// NewFromBytes wraps content for the module called name.
func NewFromBytes(name string, content []byte) (*FromBytes, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: inline content needs a module name", ErrNotAvailable)
	}
	if content == nil {
		return nil, fmt.Errorf("%w: %q has no content", ErrNotAvailable, name)
	}

	u := &url.URL{
		Scheme: "bytes",
		Host:   "inline",
		Path:   "/" + name + "@" + helpers.SHA256Bytes(content)[:8],
	}
	return &FromBytes{content: content, sourceURL: u}, nil
}

func (l *FromBytes) String() string {
	return fmt.Sprintf("source.FromBytes{Bytes: %d}", len(l.content))
}

func (l *FromBytes) GetReader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(l.content)), nil
}

func (l *FromBytes) GetSourceURL() *url.URL {
	return l.sourceURL
}
