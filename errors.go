package humane

import "errors"

// Sentinel errors returned by the emitter.
var (
	// ErrNotConfigured indicates the package-level emitter was used before
	// [Configure].
	ErrNotConfigured = errors.New("not configured")
	// ErrInvalidConfig indicates a [Config] that failed validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrSinkWrite indicates the output sink rejected a rendering write.
	ErrSinkWrite = errors.New("sink write")
	// ErrUnknownSeverity indicates an unrecognized severity name.
	ErrUnknownSeverity = errors.New("unknown severity")
	// ErrUnknownColor indicates an unrecognized color token.
	ErrUnknownColor = errors.New("unknown color")
)
