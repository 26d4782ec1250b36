package sigengine

import (
	"bytes"
	"hash"

	"github.com/deflomu/openpgp-sdk-go/openpgp"
)

// Builder assembles a v4 signature packet using the two-pass protocol
// from original_source/src/signature.c's ops_signature_start /
// ops_signature_hashed_subpackets_end / ops_write_signature, and the
// original CLI's SignKey.sign: write the fixed header and a placeholder
// hashed-subpacket count, append the hashed subpackets, backfill the
// count, write a placeholder unhashed count, append the unhashed
// subpackets, backfill that count too, then hash everything through
// the end of the hashed set plus the trailer and sign the digest.
type Builder struct {
	hash hash.Hash
	buf  bytes.Buffer

	hashedLenOffset   int
	unhashedLenOffset int
	hashedDone        bool
}

// EncodeSubpacket wraps a subpacket body with its new-format length
// prefix and critical/type byte, ready to append to a Builder's hashed
// or unhashed set (framing, mirrored for construction).
func EncodeSubpacket(typ byte, critical bool, data []byte) []byte {
	tb := typ
	if critical {
		tb |= 0x80
	}
	body := append([]byte{tb}, data...)
	return append(openpgp.EncodeNewLength(uint32(len(body))), body...)
}

// StartSignature begins a v4 signature over the given hash context,
// which the caller has already fed with whatever key-binding preamble
// applies (see Init/AddUserID/AddSubkey) before calling this.
func StartSignature(h hash.Hash, sigType openpgp.SignatureType, keyAlg openpgp.Algorithm, hashAlg openpgp.HashAlgorithm) *Builder {
	b := &Builder{hash: h}
	b.buf.WriteByte(4)
	b.buf.WriteByte(byte(sigType))
	b.buf.WriteByte(byte(keyAlg))
	b.buf.WriteByte(byte(hashAlg))
	b.hashedLenOffset = b.buf.Len()
	b.buf.Write([]byte{0, 0})
	return b
}

// AddHashedSubpacket appends an already-encoded subpacket (see
// EncodeSubpacket) to the hashed set.
func (b *Builder) AddHashedSubpacket(raw []byte) {
	b.buf.Write(raw)
}

// EndHashedSubpackets backfills the hashed set's length and opens the
// unhashed set (ops_signature_hashed_subpackets_end).
func (b *Builder) EndHashedSubpackets() {
	n := uint32(b.buf.Len() - b.hashedLenOffset - 2)
	data := b.buf.Bytes()
	data[b.hashedLenOffset] = byte(n >> 8)
	data[b.hashedLenOffset+1] = byte(n)
	b.unhashedLenOffset = b.buf.Len()
	b.buf.Write([]byte{0, 0})
	b.hashedDone = true
}

// AddUnhashedSubpacket appends an already-encoded subpacket to the
// unhashed set. EndHashedSubpackets must be called first.
func (b *Builder) AddUnhashedSubpacket(raw []byte) {
	b.buf.Write(raw)
}

// Finish backfills the unhashed set's length, hashes the packet body
// from its start through the end of the hashed set plus the v4
// trailer, invokes sign with the resulting digest, appends the
// returned Hash2 preview and signature material, and returns the
// complete signature packet bytes (ptag, length, body).
func (b *Builder) Finish(sig *openpgp.Signature, signMPIs func(digest []byte) error) ([]byte, error) {
	if !b.hashedDone {
		b.EndHashedSubpackets()
	}
	n := uint32(b.buf.Len() - b.unhashedLenOffset - 2)
	data := b.buf.Bytes()
	data[b.unhashedLenOffset] = byte(n >> 8)
	data[b.unhashedLenOffset+1] = byte(n)

	hashedLength := uint32(b.unhashedLenOffset)
	b.hash.Write(b.buf.Bytes()[:b.unhashedLenOffset])
	b.hash.Write([]byte{4, 0xff, byte(hashedLength >> 24), byte(hashedLength >> 16), byte(hashedLength >> 8), byte(hashedLength)})
	digest := b.hash.Sum(nil)

	sig.Hash2[0], sig.Hash2[1] = digest[0], digest[1]
	if err := signMPIs(digest); err != nil {
		return nil, err
	}

	b.buf.Write(sig.Hash2[:])
	switch sig.KeyAlgorithm {
	case openpgp.AlgorithmRSA, openpgp.AlgorithmRSASignOnly:
		b.buf.Write(sig.RSA.S.Encode())
	case openpgp.AlgorithmDSA, openpgp.AlgorithmEdDSA:
		b.buf.Write(sig.DSA.R.Encode())
		b.buf.Write(sig.DSA.S.Encode())
	}

	return openpgp.EncodePacket(openpgp.ContentTagSignature, b.buf.Bytes()), nil
}
