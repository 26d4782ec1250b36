package openpgp

import (
	"io"
)

// Source is the pull-style byte source the parser reads from.
// Read must deliver exactly len(dst) bytes on success.
// Short reads are never valid: the source is responsible for buffering
// internally until it can satisfy the request, fail, or report EOF.
//
// io.EOF must only be returned when zero bytes of dst have been filled
// (the stream ended cleanly between packets). Any other failure,
// including an EOF encountered after some but not all of dst has been
// filled, must be reported as a plain error distinguishable from
// io.EOF.
type Source interface {
	Read(dst []byte) error
}

// readerSource adapts an io.Reader to the Source contract using
// io.ReadFull's all-or-nothing semantics.
type readerSource struct {
	r io.Reader
}

// NewSource wraps an io.Reader as a parser Source. Most callers should
// use this rather than implementing Source directly.
func NewSource(r io.Reader) Source {
	return &readerSource{r: r}
}

func (s *readerSource) Read(dst []byte) error {
	if len(dst) == 0 {
		return nil
	}
	n, err := io.ReadFull(s.r, dst)
	switch {
	case err == nil:
		return nil
	case err == io.EOF && n == 0:
		return io.EOF
	case err == io.ErrUnexpectedEOF || err == io.EOF:
		// Some bytes were read before the stream ended: this is a
		// mid-read EOF, which is an error, not a clean end of stream.
		return sourceErrorf("unexpected end of stream after %d of %d bytes", n, len(dst))
	default:
		return sourceErrorf("%s", err)
	}
}
