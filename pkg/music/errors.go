package music

import "errors"

// Decoding errors shared by the format packages.
var (
	// ErrContainerMismatch reports an unexpected XMI chunk tag or an
	// unsupported track count. The XMI decoder never returns it to callers;
	// it is logged and the result is an empty timeline.
	ErrContainerMismatch = errors.New("container mismatch")

	// ErrInvalidEventLength is returned when a meta event declares a length
	// that does not fit its type.
	ErrInvalidEventLength = errors.New("invalid event length")

	// ErrUnsupportedEventType is returned for status bytes the decoder does
	// not understand.
	ErrUnsupportedEventType = errors.New("unsupported event type")

	// ErrInvalidFormat is returned for malformed MOD files.
	ErrInvalidFormat = errors.New("invalid format")
)
