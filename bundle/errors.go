package bundle

import "errors"

var (
	ErrCorrupt      = errors.New("bundle is corrupt")
	ErrInconsistent = errors.New("bundle is inconsistent")
	ErrBuild        = errors.New("bundle build failed")
	ErrBadOption    = errors.New("invalid bundle option")
)
