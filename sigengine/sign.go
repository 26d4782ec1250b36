package sigengine

import (
	"crypto/dsa"
	"crypto/rsa"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ed25519"

	"github.com/deflomu/openpgp-sdk-go/openpgp"
)

// SigningKey is any private key this engine can sign a digest with. A
// single *rsa.PrivateKey, *dsa.PrivateKey or ed25519.PrivateKey all
// satisfy it trivially; signWithKey switches on the concrete type.
type SigningKey interface{}

// signWithKey fills in sig's signature material for digest using priv,
// dispatching on sig.KeyAlgorithm the same way readSignatureMaterial
// dispatches on the wire value when decoding.
func signWithKey(sig *openpgp.Signature, priv SigningKey, digest []byte) error {
	switch sig.KeyAlgorithm {
	case openpgp.AlgorithmRSA, openpgp.AlgorithmRSASignOnly:
		key, ok := priv.(*rsa.PrivateKey)
		if !ok {
			return errors.New("sigengine: RSA signature requested with a non-RSA key")
		}
		s, err := SignRSA(key, sig.HashAlgorithm, digest)
		if err != nil {
			return err
		}
		sig.RSA = openpgp.RSASignature{S: s}
		return nil
	case openpgp.AlgorithmDSA:
		key, ok := priv.(*dsa.PrivateKey)
		if !ok {
			return errors.New("sigengine: DSA signature requested with a non-DSA key")
		}
		s, err := SignDSA(key, digest)
		if err != nil {
			return err
		}
		sig.DSA = s
		return nil
	case openpgp.AlgorithmEdDSA:
		key, ok := priv.(ed25519.PrivateKey)
		if !ok {
			return errors.New("sigengine: EdDSA signature requested with a non-Ed25519 key")
		}
		sig.DSA = SignEdDSA(key, digest)
		return nil
	default:
		return errors.Errorf("sigengine: unsupported signature key algorithm (%d)", sig.KeyAlgorithm)
	}
}

// newDraftSignature builds the in-memory Signature header Builder will
// fill in as signing proceeds; CreationTime is left to the caller to
// add as a hashed subpacket (this format groups creation time with the
// other hashed subpackets, not the fixed header, for v4).
func newDraftSignature(sigType openpgp.SignatureType, keyAlg openpgp.Algorithm, hashAlg openpgp.HashAlgorithm) *openpgp.Signature {
	return &openpgp.Signature{Version: 4, Type: sigType, KeyAlgorithm: keyAlg, HashAlgorithm: hashAlg}
}

// SignCertification builds a v4 user-id certification signature over
// key+uid ("Certify" operation), with the given creation
// time as a hashed subpacket and the issuer key ID as an unhashed one.
func SignCertification(key *openpgp.PublicKey, uid *openpgp.UserID, sigType openpgp.SignatureType, hashAlg openpgp.HashAlgorithm, priv SigningKey, issuerKeyID [8]byte, created uint32) ([]byte, error) {
	sig := newDraftSignature(sigType, algorithmOf(priv), hashAlg)

	h, err := Init(sig, key)
	if err != nil {
		return nil, err
	}
	AddUserID(h, sig.Version, uid)

	b := StartSignature(h, sigType, sig.KeyAlgorithm, hashAlg)
	b.AddHashedSubpacket(EncodeSubpacket(openpgp.SubpacketSignatureCreationTime, false, be32(created)))
	b.EndHashedSubpackets()
	b.AddUnhashedSubpacket(EncodeSubpacket(openpgp.SubpacketIssuerKeyID, false, issuerKeyID[:]))

	return b.Finish(sig, func(digest []byte) error { return signWithKey(sig, priv, digest) })
}

// SignSubkeyBinding builds a v4 subkey binding signature (this format's
// "Bind" operation).
func SignSubkeyBinding(primary, subkey *openpgp.PublicKey, hashAlg openpgp.HashAlgorithm, priv SigningKey, issuerKeyID [8]byte, created uint32) ([]byte, error) {
	sig := newDraftSignature(openpgp.SigTypeSubkeyBinding, algorithmOf(priv), hashAlg)

	h, err := Init(sig, primary)
	if err != nil {
		return nil, err
	}
	if err := AddSubkey(h, subkey); err != nil {
		return nil, err
	}

	b := StartSignature(h, sig.Type, sig.KeyAlgorithm, hashAlg)
	b.AddHashedSubpacket(EncodeSubpacket(openpgp.SubpacketSignatureCreationTime, false, be32(created)))
	b.EndHashedSubpackets()
	b.AddUnhashedSubpacket(EncodeSubpacket(openpgp.SubpacketIssuerKeyID, false, issuerKeyID[:]))

	return b.Finish(sig, func(digest []byte) error { return signWithKey(sig, priv, digest) })
}

func algorithmOf(priv SigningKey) openpgp.Algorithm {
	switch priv.(type) {
	case *rsa.PrivateKey:
		return openpgp.AlgorithmRSA
	case *dsa.PrivateKey:
		return openpgp.AlgorithmDSA
	case ed25519.PrivateKey:
		return openpgp.AlgorithmEdDSA
	default:
		return 0
	}
}

func be32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}
