// Package lookahead provides a fixed-capacity read buffer with bounded pushback, the kind of
// input staging that sits in front of a lexer. The buffer is split into two equal chunks that
// are refilled lazily from an io.Reader, and up to one chunk of already consumed bytes can be
// taken back and served again without touching the source.
package lookahead
