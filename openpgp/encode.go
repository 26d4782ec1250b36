package openpgp

// This file complements the decoders in publickey.go and signature.go
// with the matching encoders, generalizing the ad hoc packet-building
// the original CLI did by hand (signkey.go's Packet()/PubPacket(), and
// passphrase2pgp.go's inline MPI/packet-header byte-twiddling) into
// reusable methods any caller — not just a passphrase-derived EdDSA
// key — can use. package sigengine builds on top of these to implement
// the hash-preamble and two-pass v4 signature construction protocol.

// EncodeNewLength encodes n using the new-format length rule (RFC 4880
// §4.2.2), the mirror image of readNewLengthRoot/limitedReadNewLength.
func EncodeNewLength(n uint32) []byte {
	switch {
	case n < 192:
		return []byte{byte(n)}
	case n < 8384:
		n -= 192
		return []byte{byte(n>>8) + 192, byte(n)}
	default:
		return []byte{255, byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
	}
}

// EncodePacketHeader writes a new-format packet tag byte plus length
// prefix for contentTag and a body of the given length (the tag byte
// layout is "1 nf tttttt": format bit, new-format bit, content tag).
func EncodePacketHeader(contentTag byte, bodyLength int) []byte {
	header := append([]byte{0x80 | 0x40 | contentTag}, EncodeNewLength(uint32(bodyLength))...)
	return header
}

// EncodePacket wraps EncodePacketHeader around a full body to produce
// one complete packet.
func EncodePacket(contentTag byte, body []byte) []byte {
	return append(EncodePacketHeader(contentTag, len(body)), body...)
}

// EncodeBody serializes the public key fields back to the packet body
// layout parsePublicKey reads. This is the "canonical serialized
// public key" fed into the key-binding hash preamble (RFC 4880 §5.2.4).
func (k *PublicKey) EncodeBody() ([]byte, error) {
	body := make([]byte, 0, 64)
	body = append(body, k.Version)
	body = append(body, byte(k.CreationTime>>24), byte(k.CreationTime>>16), byte(k.CreationTime>>8), byte(k.CreationTime))
	if k.Version == 2 || k.Version == 3 {
		body = append(body, byte(k.DaysValid>>8), byte(k.DaysValid))
	}
	body = append(body, byte(k.Algorithm))

	switch k.Algorithm {
	case AlgorithmDSA:
		body = append(body, k.DSA.P.Encode()...)
		body = append(body, k.DSA.Q.Encode()...)
		body = append(body, k.DSA.G.Encode()...)
		body = append(body, k.DSA.Y.Encode()...)
	case AlgorithmRSA, AlgorithmRSAEncryptOnly, AlgorithmRSASignOnly:
		body = append(body, k.RSA.N.Encode()...)
		body = append(body, k.RSA.E.Encode()...)
	case AlgorithmElGamal:
		body = append(body, k.ElGamal.P.Encode()...)
		body = append(body, k.ElGamal.G.Encode()...)
		body = append(body, k.ElGamal.Y.Encode()...)
	case AlgorithmEdDSA:
		body = append(body, k.RSA.N.Encode()...)
	default:
		return nil, algorithmErrorf("public key", byte(k.Algorithm))
	}
	return body, nil
}

// EncodeBody returns the user ID's bytes as they appear on the wire
// (no trailing NUL; the parser does not add one either).
func (u *UserID) EncodeBody() []byte {
	return u.Bytes
}
