package ir

import "errors"

var (
	// ErrUnsupportedProtocol is returned when a protocol has no codec.
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
	// ErrMalformedLength is returned when a pattern does not have the frame length.
	ErrMalformedLength = errors.New("malformed pattern length")
	// ErrChecksumMismatch is returned when the command inverse byte does not match.
	ErrChecksumMismatch = errors.New("command checksum mismatch")
	// ErrTimingOutOfTolerance is returned when a pulse or space is outside its band.
	ErrTimingOutOfTolerance = errors.New("timing out of tolerance")
	// ErrInvalidPattern is returned for patterns no emitter can play.
	ErrInvalidPattern = errors.New("invalid timing pattern")
)
