package sigengine

import (
	"bytes"
	"crypto/rsa"
	"math/big"

	"github.com/pkg/errors"

	"github.com/deflomu/openpgp-sdk-go/openpgp"
)

// digestInfo prefixes are the DER encoding of the DigestInfo
// AlgorithmIdentifier for each hash this engine signs with, lifted
// byte-for-byte from original_source/src/signature.c's prefix_md5 and
// prefix_sha1. SHA-256's prefix isn't in the original (which predates
// it); it's the standard PKCS#1 DigestInfo prefix for SHA-256.
var digestInfoPrefix = map[openpgp.HashAlgorithm][]byte{
	openpgp.HashMD5: {
		0x30, 0x20, 0x30, 0x0C, 0x06, 0x08, 0x2A, 0x86,
		0x48, 0x86, 0xF7, 0x0D, 0x02, 0x05, 0x05, 0x00,
		0x04, 0x10,
	},
	openpgp.HashSHA1: {
		0x30, 0x21, 0x30, 0x09, 0x06, 0x05, 0x2b, 0x0E,
		0x03, 0x02, 0x1A, 0x05, 0x00, 0x04, 0x14,
	},
	openpgp.HashSHA256: {
		0x30, 0x31, 0x30, 0x0D, 0x06, 0x09, 0x60, 0x86,
		0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x01, 0x05,
		0x00, 0x04, 0x20,
	},
}

// RSAPublicKey converts the decoded wire key material to a standard
// library key, usable with either this package's hand-rolled padding
// or crypto/rsa directly.
func RSAPublicKey(key *openpgp.PublicKey) *rsa.PublicKey {
	return &rsa.PublicKey{N: key.RSA.N.Int(), E: int(key.RSA.E.Int().Int64())}
}

// buildPKCS1Block implements rsa_sign's padded hash block: 0x00 0x01
// (0xFF ... 0xFF) 0x00 DigestInfo(prefix || digest), left-padded with
// 0xFF bytes to exactly fill the modulus size.
func buildPKCS1Block(keySizeBytes int, alg openpgp.HashAlgorithm, digest []byte) ([]byte, error) {
	prefix, ok := digestInfoPrefix[alg]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedHash, "hash algorithm %d", alg)
	}
	tail := len(prefix) + len(digest)
	if keySizeBytes < tail+11 {
		return nil, errors.New("sigengine: RSA modulus too small for this hash")
	}

	block := make([]byte, keySizeBytes)
	block[0] = 0x00
	block[1] = 0x01
	padEnd := keySizeBytes - tail - 1
	for i := 2; i < padEnd; i++ {
		block[i] = 0xff
	}
	block[padEnd] = 0x00
	copy(block[padEnd+1:], prefix)
	copy(block[padEnd+1+len(prefix):], digest)
	return block, nil
}

// SignRSA signs digest (the output of the running hash, after
// AddTrailer) with priv, producing the PKCS#1 v1.5 block rsa_sign
// builds by hand and encrypting it with the private exponent (a plain
// math/big Exp of the block by priv.D modulo priv.N; no CRT and no
// blinding).
func SignRSA(priv *rsa.PrivateKey, alg openpgp.HashAlgorithm, digest []byte) (openpgp.MPI, error) {
	keySize := (priv.N.BitLen() + 7) / 8
	block, err := buildPKCS1Block(keySize, alg, digest)
	if err != nil {
		return openpgp.MPI{}, err
	}

	c := new(big.Int).Exp(new(big.Int).SetBytes(block), priv.D, priv.N)
	return openpgp.NewMPI(c), nil
}

// VerifyRSA checks sig against digest under pub, reproducing
// rsa_verify's manual PKCS#1 v1.5 block decoding (rather than
// crypto/rsa.VerifyPKCS1v15) so that the original's exact error
// conditions — leading zero byte, 0xFF run length, prefix match — are
// all reachable and testable the way the original parser exercises
// them.
func VerifyRSA(pub *rsa.PublicKey, alg openpgp.HashAlgorithm, digest []byte, sig openpgp.RSASignature) error {
	keySize := (pub.N.BitLen() + 7) / 8
	e := big.NewInt(int64(pub.E))
	m := new(big.Int).Exp(sig.S.Int(), e, pub.N)

	block := m.Bytes()
	if len(block) < keySize {
		padded := make([]byte, keySize)
		copy(padded[keySize-len(block):], block)
		block = padded
	}

	if block[0] != 0x00 || block[1] != 0x01 {
		return errors.New("sigengine: RSA signature padding invalid")
	}

	prefix, ok := digestInfoPrefix[alg]
	if !ok {
		return errors.Wrapf(ErrUnsupportedHash, "hash algorithm %d", alg)
	}
	tail := len(prefix) + len(digest)
	if keySize-tail < 10 {
		return errors.New("sigengine: RSA signature too short for this hash")
	}

	padEnd := keySize - tail - 1
	for i := 2; i < padEnd; i++ {
		if block[i] != 0xff {
			return errors.New("sigengine: RSA signature padding invalid")
		}
	}
	if block[padEnd] != 0x00 {
		return errors.New("sigengine: RSA signature padding invalid")
	}
	if !bytes.Equal(block[padEnd+1:padEnd+1+len(prefix)], prefix) {
		return errors.New("sigengine: RSA signature digest algorithm mismatch")
	}
	if !bytes.Equal(block[padEnd+1+len(prefix):], digest) {
		return errors.New("sigengine: RSA signature digest mismatch")
	}
	return nil
}
