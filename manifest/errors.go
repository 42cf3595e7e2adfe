package manifest

import "errors"

var (
	// ErrConfig marks every error produced while turning declarations into a
	// manifest. All the more specific errors below are reported alongside it.
	ErrConfig = errors.New("invalid module configuration")

	ErrUnknownModuleKind  = errors.New("unknown module kind")
	ErrInvalidPath        = errors.New("invalid module path")
	ErrInvalidDeclaration = errors.New("invalid module declaration")

	ErrAmbiguousManifest = errors.New("manifest id required when more than one manifest is defined")
	ErrManifestNotFound  = errors.New("manifest not found")
	ErrDuplicateManifest = errors.New("manifest already defined")
)
