package lookahead

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrEndOfInput is returned when every byte of the source has been consumed.
	// It wraps io.EOF.
	ErrEndOfInput = fmt.Errorf("lookahead: end of input: %w", io.EOF)

	// ErrInvalidInput is returned by TakeChar when the consumed byte is not ASCII.
	ErrInvalidInput = errors.New("lookahead: not a valid ASCII character")

	// ErrPermissionDenied is wrapped by every refused take back.
	ErrPermissionDenied = errors.New("lookahead: permission denied")

	ErrRewindChunk = fmt.Errorf("%w: cannot take back more bytes than the size of a chunk", ErrPermissionDenied)
	ErrRewindStart = fmt.Errorf("%w: cannot take back more bytes than already consumed", ErrPermissionDenied)

	// ErrNegativeAmount is returned by TakeBack for a negative amount.
	ErrNegativeAmount = errors.New("lookahead: negative take back amount")

	// ErrChunkSize is returned by New when the chunk size is less than one.
	ErrChunkSize = errors.New("lookahead: chunk size must be greater than or equal to one")

	// ErrClosed is returned when a closed Buffer needs to read from its source.
	ErrClosed = errors.New("lookahead: read from closed buffer")

	errInvalidRead = errors.New("lookahead: source returned invalid count from Read")
)
