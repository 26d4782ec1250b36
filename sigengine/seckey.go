package sigengine

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"math/bits"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ed25519"

	"github.com/deflomu/openpgp-sdk-go/openpgp"
)

// SecretKey is an Ed25519 signing key together with its creation time,
// adapted from the original CLI's SignKey: the same S2K-protected
// secret-key packet format, still limited to Ed25519, rehomed here so
// it shares the wire types (PublicKey,
// MPI, EncodePacket) the rest of this engine already built. Unlike the
// original CLI, this version stores the 32-byte Ed25519 point directly as
// RSA.N (see ed25519PublicKey in verify.go) rather than OID-prefixed
// curve point data — a deliberate simplification that trades ECC
// curve-OID plumbing for symmetry with the RSA/DSA key-material
// dispatch already in PublicKey.
type SecretKey struct {
	Priv    ed25519.PrivateKey
	Created uint32
}

// ErrWrongPassphrase is returned by DecodeSecretPacket when the
// passphrase fails the packet's integrity check.
var ErrWrongPassphrase = errors.New("sigengine: wrong passphrase")

// s2kCount is the maximum-strength encoded iteration count; 0xff
// decodes to (16+15)<<(15+6) per decodeS2KCount.
const s2kCount = 0xff

func decodeS2KCount(c byte) int {
	return (16 + int(c&15)) << (uint(c>>4) + 6)
}

// s2k derives a symmetric key from a passphrase the way GnuPG actually
// does it in practice (iterated+salted SHA-256 over salt||passphrase,
// repeated until count bytes have been hashed) rather than the subtly
// different description in the RFC itself — see
// https://dev.gnupg.org/T4676, referenced directly in the original CLI's
// own s2k function.
func s2k(passphrase, salt []byte, count int) []byte {
	h := sha256.New()
	full := make([]byte, 8+len(passphrase))
	copy(full[0:], salt)
	copy(full[8:], passphrase)
	iterations := count / len(full)
	for i := 0; i < iterations; i++ {
		h.Write(full)
	}
	tail := count - iterations*len(full)
	h.Write(full[:tail])
	return h.Sum(nil)
}

// NewSecretKey derives a signing key from a 32-byte seed.
func NewSecretKey(seed []byte, created uint32) *SecretKey {
	return &SecretKey{Priv: ed25519.NewKeyFromSeed(seed), Created: created}
}

func (k *SecretKey) seed() []byte   { return k.Priv[:32] }
func (k *SecretKey) pubkey() []byte { return k.Priv[32:] }

// PublicKey returns the public half as a wire PublicKey.
func (k *SecretKey) PublicKey() *openpgp.PublicKey {
	return &openpgp.PublicKey{
		Version:      4,
		CreationTime: k.Created,
		Algorithm:    openpgp.AlgorithmEdDSA,
		RSA:          openpgp.RSAKeyMaterial{N: openpgp.MPI{BitLength: 256, Bytes: k.pubkey()}},
	}
}

// KeyID returns the low 8 bytes of the SHA-1 fingerprint over the
// public key's canonical serialization (the original CLI's
// SignKey.KeyID computes the same thing by hand).
func (k *SecretKey) KeyID() ([8]byte, error) {
	pub := k.PublicKey()
	body, err := pub.EncodeBody()
	if err != nil {
		return [8]byte{}, err
	}
	h := sha1.New()
	h.Write([]byte{0x99, byte(len(body) >> 8), byte(len(body))})
	h.Write(body)
	sum := h.Sum(nil)
	var id [8]byte
	copy(id[:], sum[12:20])
	return id, nil
}

// fixedMPI mirrors the original CLI's mpi(): a 2-byte bit length computed
// from the leading nonzero bit, followed by the bytes unchanged
// (unlike NewMPI, the byte slice is never trimmed — a 32-byte
// Ed25519 scalar must stay 32 bytes on the wire).
func fixedMPI(b []byte) []byte {
	bitLen := 0
	for i, c := range b {
		if c != 0 {
			bitLen = (len(b)-i-1)*8 + bits.Len8(c)
			break
		}
	}
	out := make([]byte, 2+len(b))
	out[0] = byte(bitLen >> 8)
	out[1] = byte(bitLen)
	copy(out[2:], b)
	return out
}

// decodeFixedMPI reads a 2-byte bit length and exactly byteLen bytes,
// returning those bytes and whatever follows in data.
func decodeFixedMPI(data []byte, byteLen int) (value, tail []byte, err error) {
	if len(data) < 2+byteLen {
		return nil, nil, errors.New("sigengine: truncated MPI")
	}
	return data[2 : 2+byteLen], data[2+byteLen:], nil
}

// checksum is the RFC 4880 §5.5.3 secret-key checksum: the bytes
// summed mod 65536.
func checksum(b []byte) uint16 {
	var sum uint16
	for _, c := range b {
		sum += uint16(c)
	}
	return sum
}

// EncodeUnencrypted builds a secret-key packet with no S2K protection
// at all (body[51] == 0 on the original CLI's wire layout).
func (k *SecretKey) EncodeUnencrypted() ([]byte, error) {
	body, err := k.encodePublicBody()
	if err != nil {
		return nil, err
	}
	body = append(body, 0) // string-to-key: unencrypted
	mpikey := fixedMPI(k.seed())
	body = append(body, mpikey...)
	var sumBuf [2]byte
	sum := checksum(mpikey)
	sumBuf[0], sumBuf[1] = byte(sum>>8), byte(sum)
	body = append(body, sumBuf[:]...)
	return openpgp.EncodePacket(openpgp.ContentTagSecretKey, body), nil
}

// EncodeEncrypted builds a passphrase-protected secret-key packet
// (AES-256-CFB, SHA-1 integrity check over the raw key material,
// matching the original CLI's EncPacket exactly).
func (k *SecretKey) EncodeEncrypted(passphrase []byte) ([]byte, error) {
	body, err := k.encodePublicBody()
	if err != nil {
		return nil, err
	}

	var saltIV [24]byte
	if _, err := rand.Read(saltIV[:]); err != nil {
		return nil, err
	}
	salt, iv := saltIV[:8], saltIV[8:]

	key := s2k(passphrase, salt, decodeS2KCount(s2kCount))

	mpikey := fixedMPI(k.seed())
	mac := sha1.New()
	mac.Write(mpikey)
	seckey := mac.Sum(mpikey)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(seckey, seckey)

	body = append(body, 254, 9, 3, 8) // encrypted, AES-256, iterated+salted S2K, SHA-256
	body = append(body, salt...)
	body = append(body, s2kCount)
	body = append(body, iv...)
	body = append(body, seckey...)
	return openpgp.EncodePacket(openpgp.ContentTagSecretKey, body), nil
}

// encodePublicBody writes the public portion shared by both encoded
// forms: version, creation time, algorithm, and the 32-byte point as a
// fixed-width MPI.
func (k *SecretKey) encodePublicBody() ([]byte, error) {
	pub := k.PublicKey()
	body, err := pub.EncodeBody()
	if err != nil {
		return nil, err
	}
	// pub.EncodeBody wrote the point with its stored nominal bit
	// length of 256; for the secret-key wire form that tail is rebuilt
	// with fixedMPI, which keeps the 32 bytes and writes the bit length
	// of the point's leading nonzero bit.
	fixedPoint := fixedMPI(k.pubkey())
	return append(body[:len(body)-len(fixedPoint)], fixedPoint...), nil
}

// DecodeSecretPacket parses a secret-key packet body (as delivered by
// a future secret-key content decoder; this engine's openpgp package
// only decodes public keys today, so callers hand this the raw packet
// body directly) and, if it is S2K-protected, decrypts it with
// passphrase.
func DecodeSecretPacket(body []byte, passphrase []byte) (*SecretKey, error) {
	if len(body) < 6 || body[0] != 0x04 {
		return nil, errors.New("sigengine: unsupported secret key packet")
	}
	created := uint32(body[1])<<24 | uint32(body[2])<<16 | uint32(body[3])<<8 | uint32(body[4])
	if body[5] != byte(openpgp.AlgorithmEdDSA) {
		return nil, errors.New("sigengine: only EdDSA secret keys are supported")
	}

	// Skip over the public point MPI (2-byte bit length + 32 bytes)
	// before reaching the secret-key usage octet.
	_, rest, err := decodeFixedMPI(body[6:], 32)
	if err != nil {
		return nil, err
	}
	var seed []byte
	switch rest[0] {
	case 0:
		seedBytes, tail, err := decodeFixedMPI(rest[1:], 32)
		if err != nil {
			return nil, err
		}
		if len(tail) < 2 {
			return nil, errors.New("sigengine: truncated secret key checksum")
		}
		encodedMPI := rest[1 : 1+len(seedBytes)+2]
		if checksum(encodedMPI) != uint16(tail[0])<<8|uint16(tail[1]) {
			return nil, errors.New("sigengine: secret key checksum mismatch")
		}
		seed = seedBytes
	case 254:
		if passphrase == nil {
			return nil, ErrWrongPassphrase
		}
		if rest[1] != 9 || rest[2] != 3 || rest[3] != 8 {
			return nil, errors.New("sigengine: unsupported secret key protection")
		}
		salt := rest[4:12]
		count := decodeS2KCount(rest[12])
		iv := rest[13:29]
		data := append([]byte(nil), rest[29:]...)

		key := s2k(passphrase, salt, count)
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		stream := cipher.NewCFBDecrypter(block, iv)
		stream.XORKeyStream(data, data)

		decoded, tail, err := decodeFixedMPI(data, 32)
		if err != nil {
			return nil, ErrWrongPassphrase
		}
		mac := sha1.New()
		mpikey := data[:2+32]
		mac.Write(mpikey)
		if subtle.ConstantTimeCompare(mac.Sum(nil), tail) == 0 {
			return nil, ErrWrongPassphrase
		}
		seed = decoded
	default:
		return nil, errors.New("sigengine: unsupported secret key protection")
	}

	return NewSecretKey(seed, created), nil
}
