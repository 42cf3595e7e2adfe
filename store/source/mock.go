package source

import (
	"bytes"
	"io"
	"net/url"

	"github.com/stretchr/testify/mock"
)

// MockSource implements Source for tests.
type MockSource struct {
	mock.Mock
}

func (m *MockSource) GetSourceURL() *url.URL {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*url.URL)
}

func (m *MockSource) GetReader() (io.ReadCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// NewMockSourceWithContent returns a mock that serves content once.
func NewMockSourceWithContent(content []byte) *MockSource {
	m := new(MockSource)
	m.On("GetReader").Return(io.NopCloser(bytes.NewReader(content)), nil).Once()
	m.On("GetSourceURL").Return(&url.URL{Scheme: "mock", Host: "inline"}).Maybe()
	return m
}
