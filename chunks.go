package lookahead

import "io"

// chunks holds the left and right half of the buffer.
// Positions run over both halves: [0, size) is left, [size, 2*size) is right.
type chunks struct {
	size  int
	left  []byte
	right []byte
}

func newChunks(size int) *chunks {
	return &chunks{
		size:  size,
		left:  make([]byte, size),
		right: make([]byte, size),
	}
}

func (c *chunks) capacity() int {
	return c.size * 2
}

// half returns the chunk that contains pos.
func (c *chunks) half(pos int) []byte {
	if pos < c.size {
		return c.left
	}
	return c.right
}

func (c *chunks) at(pos int) byte {
	return c.half(pos)[pos%c.size]
}

// fill reads once from src into the half containing pos, starting at pos and stopping at
// the end of that half. io.EOF is not an error; a short or empty read is returned as is.
func (c *chunks) fill(src io.Reader, pos int) (int, error) {
	dst := c.half(pos)[pos%c.size:]

	n, err := src.Read(dst)
	if n < 0 || n > len(dst) {
		return 0, errInvalidRead
	}
	if err == io.EOF {
		err = nil
	}
	return n, err
}
