package config

import "errors"

var (
	ErrNotFound          = errors.New("no project configuration found")
	ErrUnsupportedFormat = errors.New("unsupported configuration format")
	ErrParse             = errors.New("failed to parse project configuration")
	ErrInvalid           = errors.New("invalid project configuration")
	ErrBadOption         = errors.New("invalid config option")
)
