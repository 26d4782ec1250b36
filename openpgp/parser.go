package openpgp

import "io"

// errIndeterminateEOF is a sentinel signaling that an indeterminate
// ("until EOF") region ran out of bytes cleanly. It is never delivered
// to the sink as a parser error; the top-level parse loop uses it to
// end the stream quietly.
var errIndeterminateEOF = io.EOF

// parser holds everything one Parse call threads through the region
// stack: the byte source, the optional accumulator, and subpacket
// disposition configuration. It is not safe for concurrent use, but
// concurrent Parse calls against independent parsers are fine — each
// owns its own accumulator and region chain.
type parser struct {
	src  Source
	acc  accumulator
	opts *Options
}

func newParser(opts *Options) *parser {
	return &parser{src: opts.Source, acc: accumulator{retain: opts.Accumulate}, opts: opts}
}

// baseRead pulls exactly len(dst) bytes from the source, independent
// of any region boundary, and mirrors them into the accumulator.
func (p *parser) baseRead(dst []byte) error {
	if err := p.src.Read(dst); err != nil {
		return err
	}
	p.acc.record(dst)
	return nil
}

// limitedRead reads len(dst) bytes, enforcing that doing so does not
// push r or any ancestor past its declared length. When r sits under
// an indeterminate-length region and the source reports a clean EOF,
// errIndeterminateEOF propagates instead of a format error.
func (p *parser) limitedRead(r *region, dst []byte) error {
	n := uint32(len(dst))
	if err := r.reserve(n); err != nil {
		return err
	}
	if err := p.baseRead(dst); err != nil {
		if err == io.EOF && r.anyIndeterminate() {
			return errIndeterminateEOF
		}
		return formatErrorf("read failed: %s", err)
	}
	r.commit(n)
	return nil
}

// limitedSkip discards n bytes from r in bounded chunks, exactly like
// limitedRead but without needing a full-size buffer.
func (p *parser) limitedSkip(r *region, n uint32) error {
	var buf [8192]byte
	for n > 0 {
		chunk := n
		if chunk > uint32(len(buf)) {
			chunk = uint32(len(buf))
		}
		if err := p.limitedRead(r, buf[:chunk]); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// readScalarRoot reads a big-endian scalar of 1..4 bytes directly from
// the source, with no region bound. Used only for the very first
// bytes of a packet header, before any region exists.
func (p *parser) readScalarRoot(n int) (uint32, error) {
	var buf [4]byte
	if err := p.baseRead(buf[:n]); err != nil {
		return 0, formatErrorf("read failed: %s", err)
	}
	return decodeBigEndian(buf[:n]), nil
}

// limitedReadScalar reads a big-endian scalar of 1..4 bytes, respecting
// region boundaries ("limited_read_scalar").
func (p *parser) limitedReadScalar(r *region, n int) (uint32, error) {
	var buf [4]byte
	if err := p.limitedRead(r, buf[:n]); err != nil {
		return 0, err
	}
	return decodeBigEndian(buf[:n]), nil
}

func decodeBigEndian(b []byte) uint32 {
	var t uint32
	for _, c := range b {
		t = t<<8 + uint32(c)
	}
	return t
}

// limitedReadTime reads a 4-byte unix timestamp.
func (p *parser) limitedReadTime(r *region) (uint32, error) {
	return p.limitedReadScalar(r, 4)
}

// limitedReadNewLength reads a new-format length prefix bounded by a
// region (used inside subpacket sets).
func (p *parser) limitedReadNewLength(r *region) (uint32, error) {
	var c [1]byte
	if err := p.limitedRead(r, c[:]); err != nil {
		return 0, err
	}
	return p.finishNewLength(c[0], func(n int) (uint32, error) {
		return p.limitedReadScalar(r, n)
	}, func() (byte, error) {
		var b [1]byte
		if err := p.limitedRead(r, b[:]); err != nil {
			return 0, err
		}
		return b[0], nil
	})
}

// readNewLengthRoot reads a new-format length prefix with no region
// bound, used at the very top of the packet dispatcher: the length is
// read via the new-format length decoder directly from the source,
// before any region is pushed.
func (p *parser) readNewLengthRoot() (uint32, error) {
	var c [1]byte
	if err := p.baseRead(c[:]); err != nil {
		return 0, formatErrorf("read failed: %s", err)
	}
	return p.finishNewLength(c[0], func(n int) (uint32, error) {
		return p.readScalarRoot(n)
	}, func() (byte, error) {
		var b [1]byte
		if err := p.baseRead(b[:]); err != nil {
			return 0, formatErrorf("read failed: %s", err)
		}
		return b[0], nil
	})
}

// finishNewLength implements the three-range new-format length rule
// (RFC 4880 §4.2.2), parameterized over how the remaining bytes are
// read so the root and region-bounded callers can share it.
func (p *parser) finishNewLength(first byte, readScalar func(int) (uint32, error), readByte func() (byte, error)) (uint32, error) {
	switch {
	case first < 192:
		return uint32(first), nil
	case first < 255:
		b, err := readByte()
		if err != nil {
			return 0, err
		}
		return (uint32(first)-192)<<8 + uint32(b) + 192, nil
	default:
		return readScalar(4)
	}
}
