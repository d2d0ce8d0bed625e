package lookahead

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jacoelho/lookahead/internal/logutil"
)

var (
	_ io.Reader      = (*Buffer)(nil)
	_ io.ByteScanner = (*Buffer)(nil)
	_ io.WriterTo    = (*Buffer)(nil)
	_ io.Closer      = (*Buffer)(nil)
	_ fmt.Stringer   = (*Buffer)(nil)
	_ fmt.GoStringer = (*Buffer)(nil)
)

// Buffer reads bytes from a source through two chunks of equal size and can take back up
// to one chunk of consumed bytes.
//
// A Buffer is not safe for concurrent use.
type Buffer struct {
	src    io.Reader
	chunks *chunks
	logger *slog.Logger

	// consumed is the offset of the next byte handed out.
	consumed int64
	// loaded is the number of bytes ever read from src.
	loaded int64
	// withdrawn is the number of bytes taken back and not yet consumed again.
	withdrawn int

	closed bool
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithLogger sets the logger receiving chunk loads at trace level and refused take backs
// at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Buffer) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New returns a Buffer reading from src with two chunks of chunkSize bytes each.
// It returns ErrChunkSize if chunkSize is less than one.
func New(src io.Reader, chunkSize int, opts ...Option) (*Buffer, error) {
	if chunkSize < 1 {
		return nil, ErrChunkSize
	}

	b := &Buffer{
		src:    src,
		chunks: newChunks(chunkSize),
		logger: logutil.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Capacity returns the size of both chunks together.
func (b *Buffer) Capacity() int {
	return b.chunks.capacity()
}

// ChunkSize returns the size of one chunk, which is also the take back limit.
func (b *Buffer) ChunkSize() int {
	return b.chunks.size
}

// Position returns the slot of the next byte, in the range [0, Capacity()).
func (b *Buffer) Position() int {
	return int(b.consumed % int64(b.Capacity()))
}

// Offset returns the number of bytes consumed.
func (b *Buffer) Offset() int64 {
	return b.consumed
}

// Loaded returns the number of bytes read from the source so far.
func (b *Buffer) Loaded() int64 {
	return b.loaded
}

// Withdrawn returns the number of bytes taken back and not yet consumed again.
func (b *Buffer) Withdrawn() int {
	return b.withdrawn
}

// TakeByte returns the next byte.
//
// When every loaded byte has been consumed, the chunk under the cursor is refilled with a
// single read from the source first. Bytes that were taken back are served from the chunks
// without reading the source. ErrEndOfInput is returned once the source is exhausted;
// errors from the source are returned unchanged. Neither changes the cursor.
func (b *Buffer) TakeByte() (byte, error) {
	pos := b.Position()

	if b.consumed == b.loaded {
		if err := b.load(pos); err != nil {
			return 0, err
		}
	}

	if b.consumed >= b.loaded {
		return 0, ErrEndOfInput
	}

	c := b.chunks.at(pos)
	b.consumed++
	if b.withdrawn > 0 {
		b.withdrawn--
	}
	return c, nil
}

// TakeChar returns the next byte as a character. Only ASCII is supported: a byte with the
// high bit set returns ErrInvalidInput and stays consumed.
func (b *Buffer) TakeChar() (rune, error) {
	c, err := b.TakeByte()
	if err != nil {
		return 0, err
	}
	if c >= 0x80 {
		return 0, ErrInvalidInput
	}
	return rune(c), nil
}

// TakeBack moves the cursor back by amount bytes so they are served again, and returns the
// new position.
//
// At most one chunk can be taken back, and never more than was consumed; both limits are
// checked before anything moves. The chunk limit also applies to bytes still withdrawn by
// earlier calls, and is checked per byte: when it is hit halfway, the bytes already taken
// back stay taken back and ErrRewindChunk is returned with the position reached.
func (b *Buffer) TakeBack(amount int) (int, error) {
	switch {
	case amount < 0:
		return b.refuse(amount, ErrNegativeAmount)
	case amount > b.chunks.size:
		return b.refuse(amount, ErrRewindChunk)
	case int64(amount) > b.consumed:
		return b.refuse(amount, ErrRewindStart)
	}

	for range amount {
		if b.withdrawn+1 > b.chunks.size {
			return b.refuse(amount, ErrRewindChunk)
		}
		b.consumed--
		b.withdrawn++
	}
	return b.Position(), nil
}

// PeekByte returns the next byte without consuming it.
func (b *Buffer) PeekByte() (byte, error) {
	c, err := b.TakeByte()
	if err != nil {
		return 0, err
	}
	if _, err := b.TakeBack(1); err != nil {
		return 0, err
	}
	return c, nil
}

// ReadByte implements io.ByteReader. It returns io.EOF at the end of input.
func (b *Buffer) ReadByte() (byte, error) {
	c, err := b.TakeByte()
	if errors.Is(err, ErrEndOfInput) {
		return 0, io.EOF
	}
	return c, err
}

// UnreadByte implements io.ByteScanner.
func (b *Buffer) UnreadByte() error {
	_, err := b.TakeBack(1)
	return err
}

// Read implements io.Reader. It only reads from the source when nothing loaded is left to
// hand out.
func (b *Buffer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	var n int
	for n < len(p) {
		if n > 0 && b.consumed == b.loaded {
			break
		}
		c, err := b.TakeByte()
		if err != nil {
			if errors.Is(err, ErrEndOfInput) {
				err = io.EOF
			}
			if n > 0 && err == io.EOF {
				err = nil
			}
			return n, err
		}
		p[n] = c
		n++
	}
	return n, nil
}

// WriteTo implements io.WriterTo by writing the remaining bytes to w until the end of
// input or an error occurs.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	return copyBuffered(b.Read, w.Write)
}

// Close releases the source, closing it if it implements io.Closer.
// Bytes already loaded can still be taken; once they run out TakeByte returns ErrClosed.
// Calling Close more than once has no effect.
func (b *Buffer) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	if c, ok := b.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (b *Buffer) String() string {
	return fmt.Sprintf("lookahead.Buffer{source: %s, left: [% X], right: [% X], position: %d (%d positions)}",
		b.source(), b.chunks.left, b.chunks.right, b.Position(), b.Capacity())
}

func (b *Buffer) GoString() string {
	var sb strings.Builder
	sb.WriteString("lookahead.Buffer{\n")
	fmt.Fprintf(&sb, "    source: %s,\n", b.source())
	fmt.Fprintf(&sb, "    left: [% X],\n", b.chunks.left)
	fmt.Fprintf(&sb, "    right: [% X],\n", b.chunks.right)
	fmt.Fprintf(&sb, "    position: %d (%d positions),\n", b.Position(), b.Capacity())
	sb.WriteString("}")
	return sb.String()
}

func (b *Buffer) source() string {
	if s, ok := b.src.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", b.src)
}

func (b *Buffer) load(pos int) error {
	if b.closed {
		return ErrClosed
	}

	n, err := b.chunks.fill(b.src, pos)
	b.loaded += int64(n)

	half := "left"
	if pos >= b.chunks.size {
		half = "right"
	}
	b.logger.Log(context.Background(), logutil.LevelTrace, "chunk loaded",
		"half", half, "position", pos, "bytes", n, "loaded", b.loaded, "error", err)
	return err
}

func (b *Buffer) refuse(amount int, err error) (int, error) {
	b.logger.Debug("take back refused",
		"amount", amount, "consumed", b.consumed, "withdrawn", b.withdrawn, "error", err)
	return b.Position(), err
}

func copyBuffered(read func([]byte) (int, error), write func([]byte) (int, error)) (int64, error) {
	buf := make([]byte, 32*1024)
	var total int64
	for {
		n, rErr := read(buf)
		if n > 0 {
			wn, wErr := write(buf[:n])
			if wn < 0 || wn > n {
				wn = 0
				if wErr == nil {
					wErr = io.ErrShortWrite
				}
			}
			total += int64(wn)
			if wErr != nil {
				return total, wErr
			}
			if wn != n {
				return total, io.ErrShortWrite
			}
		}
		if rErr != nil {
			if rErr != io.EOF {
				return total, rErr
			}
			return total, nil
		}
	}
}
