package loader

import "errors"

var (
	ErrUnknownLoader = errors.New("unknown loader")
	ErrLoaderFailed  = errors.New("loader contribution failed")
	ErrBadOption     = errors.New("invalid loader registry option")
)
