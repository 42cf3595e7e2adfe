package fennel

import "errors"

var (
	ErrUnavailable     = errors.New("fennel module is not importable")
	ErrProtocol        = errors.New("fennel module does not provide the expected API")
	ErrVersionMismatch = errors.New("fennel version mismatch")
	ErrEval            = errors.New("fennel evaluation failed")
)
