package openpgp

import "math/big"

// MPI is a multiprecision integer as OpenPGP encodes it: a 16-bit bit
// length followed by the big-endian bytes ("Multiprecision
// integer"). BitLength is authoritative — for a plaintext MPI it is
// exact, matching the position of the highest set bit in Bytes.
type MPI struct {
	BitLength uint16
	Bytes     []byte
}

// Int decodes the MPI as a big.Int. Encrypted MPIs (ciphertext bytes
// under a bit-length that describes the plaintext) are still valid
// byte sequences to interpret this way; the caller is responsible for
// knowing whether the value is meaningful as an integer.
func (m MPI) Int() *big.Int {
	return new(big.Int).SetBytes(m.Bytes)
}

// NewMPI builds an MPI from a big.Int, computing the exact bit length
// RFC 4880 requires (no leading zero bits in the top byte).
func NewMPI(n *big.Int) MPI {
	b := n.Bytes()
	bits := n.BitLen()
	return MPI{BitLength: uint16(bits), Bytes: b}
}

// Encode serializes the MPI to its wire form: a 2-byte big-endian bit
// length followed by the bytes.
func (m MPI) Encode() []byte {
	out := make([]byte, 2+len(m.Bytes))
	out[0] = byte(m.BitLength >> 8)
	out[1] = byte(m.BitLength)
	copy(out[2:], m.Bytes)
	return out
}

// readMPI decodes the MPI wire format (RFC 4880 §3.2): a 2-byte bit
// length L, followed by ceil(L/8) bytes. When encrypted is false (the
// plaintext case) the most significant byte's high bits above the
// declared bit length must be zero and the declared top bit must be
// set; RFC 4880 exempts encrypted MPIs from this constraint, so the
// check is skipped when encrypted is true.
func (p *parser) readMPI(r *region, encrypted bool) (MPI, error) {
	bitLen, err := p.limitedReadScalar(r, 2)
	if err != nil {
		return MPI{}, err
	}

	nonzero := bitLen & 7
	if nonzero == 0 {
		nonzero = 8
	}
	byteLen := (bitLen + 7) / 8

	buf := make([]byte, byteLen)
	if err := p.limitedRead(r, buf); err != nil {
		return MPI{}, err
	}

	if !encrypted && byteLen > 0 {
		if buf[0]>>nonzero != 0 || buf[0]&(1<<(nonzero-1)) == 0 {
			return MPI{}, formatErrorf("MPI format error")
		}
	}

	return MPI{BitLength: uint16(bitLen), Bytes: buf}, nil
}
