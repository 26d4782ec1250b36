package sigengine

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"hash"

	"github.com/pkg/errors"

	"github.com/deflomu/openpgp-sdk-go/openpgp"
)

// ErrUnsupportedHash is returned for a hash algorithm this engine does
// not implement.
var ErrUnsupportedHash = errors.New("sigengine: unsupported hash algorithm")

// NewHash constructs the running hash context a signature's input is
// fed into, mirroring init_signature's hash->init(hash) step.
func NewHash(alg openpgp.HashAlgorithm) (hash.Hash, error) {
	switch alg {
	case openpgp.HashMD5:
		return md5.New(), nil
	case openpgp.HashSHA1:
		return sha1.New(), nil
	case openpgp.HashSHA256:
		return sha256.New(), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedHash, "hash algorithm %d", alg)
	}
}

// AddKey feeds a public key's canonical serialization into h as a
// key-binding preamble: 0x99, a 2-byte big-endian body length, then the
// body itself (hash_add_key in signature.c; also the original CLI's
// SignKey.Sign/Bind, which inlines the same three fields by hand).
func AddKey(h hash.Hash, key *openpgp.PublicKey) error {
	body, err := key.EncodeBody()
	if err != nil {
		return err
	}
	h.Write([]byte{0x99, byte(len(body) >> 8), byte(len(body))})
	h.Write(body)
	return nil
}

// AddUserID feeds a user ID into h as a certification preamble. A v4
// signature wraps it as 0xB4 + a 4-byte big-endian length (
// ops_check_certification_signature's OPS_SIG_V4 branch); a v3
// signature hashes the bytes directly with no wrapper at all.
func AddUserID(h hash.Hash, sigVersion byte, uid *openpgp.UserID) {
	body := uid.EncodeBody()
	if sigVersion == 4 {
		n := uint32(len(body))
		h.Write([]byte{0xb4, byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)})
	}
	h.Write(body)
}

// AddSubkey feeds a subkey's own canonical serialization into h for a
// subkey-binding signature (ops_check_subkey_signature: hash_add_key
// called a second time, for the subkey, after the primary key).
func AddSubkey(h hash.Hash, subkey *openpgp.PublicKey) error {
	return AddKey(h, subkey)
}

// AddTrailer appends the version-specific trailer and, for a v4
// signature, the hashed-subpacket region itself (hash_add_trailer).
// packetRaw is the full raw signature packet bytes captured via
// openpgp.Options{Accumulate: true} and the KindPacketEnd event; it is
// only needed for v4, where sig.HashedDataStart/HashedDataLength index
// into it.
func AddTrailer(h hash.Hash, sig *openpgp.Signature, packetRaw []byte) error {
	if sig.Version == 4 {
		end := sig.HashedDataStart + uint64(sig.HashedDataLength)
		if end > uint64(len(packetRaw)) {
			return errors.New("sigengine: hashed data range exceeds packet length")
		}
		h.Write(packetRaw[sig.HashedDataStart:end])
		h.Write([]byte{4, 0xff, byte(sig.HashedDataLength >> 24), byte(sig.HashedDataLength >> 16), byte(sig.HashedDataLength >> 8), byte(sig.HashedDataLength)})
		return nil
	}
	h.Write([]byte{byte(sig.Type)})
	h.Write([]byte{byte(sig.CreationTime >> 24), byte(sig.CreationTime >> 16), byte(sig.CreationTime >> 8), byte(sig.CreationTime)})
	return nil
}
