package searcher

import "errors"

var (
	ErrAttach      = errors.New("failed to attach searcher")
	ErrNoStore     = errors.New("searcher needs a module store")
	ErrNoPipeline  = errors.New("compiled modules need a compile pipeline")
	ErrNoMacroHost = errors.New("macro modules need a macro host")
	ErrNoOpener    = errors.New("no opener bound for loader module")
	ErrLoad        = errors.New("failed to load module")
	ErrBadOption   = errors.New("invalid searcher option")
)
