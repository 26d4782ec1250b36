package sigengine

import (
	"hash"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ed25519"

	"github.com/deflomu/openpgp-sdk-go/openpgp"
)

// ErrHashMismatch is returned when the quick left-16-bits check
// (sig.Hash2) disagrees with the digest actually computed. This always
// means the signature is invalid; it's checked before the expensive
// public-key operation, the same order init_signature/check_signature
// follow (the two-byte field exists precisely as a fast pre-check).
var ErrHashMismatch = errors.New("sigengine: signature hash prefix mismatch")

// Init starts a fresh hash context for sig and feeds it the key-binding
// preamble (hash_add_key / init_signature).
func Init(sig *openpgp.Signature, key *openpgp.PublicKey) (hash.Hash, error) {
	h, err := NewHash(sig.HashAlgorithm)
	if err != nil {
		return nil, err
	}
	if err := AddKey(h, key); err != nil {
		return nil, err
	}
	return h, nil
}

// FinalizeAndVerify appends the trailer for sig, finishes the hash, and
// checks the resulting digest against sig under signer's public key
// (finalise_signature + check_signature, generalized over all three
// key algorithms this engine supports).
func FinalizeAndVerify(h hash.Hash, sig *openpgp.Signature, packetRaw []byte, signer *openpgp.PublicKey) error {
	if err := AddTrailer(h, sig, packetRaw); err != nil {
		return err
	}
	digest := h.Sum(nil)
	if len(digest) < 2 || digest[0] != sig.Hash2[0] || digest[1] != sig.Hash2[1] {
		return ErrHashMismatch
	}

	switch sig.KeyAlgorithm {
	case openpgp.AlgorithmRSA, openpgp.AlgorithmRSASignOnly:
		return VerifyRSA(RSAPublicKey(signer), sig.HashAlgorithm, digest, sig.RSA)
	case openpgp.AlgorithmDSA:
		return VerifyDSA(DSAPublicKey(signer), digest, sig.DSA)
	case openpgp.AlgorithmEdDSA:
		pub, err := ed25519PublicKey(signer)
		if err != nil {
			return err
		}
		return VerifyEdDSA(pub, digest, sig.DSA)
	default:
		return errors.Errorf("sigengine: unsupported signature key algorithm (%d)", sig.KeyAlgorithm)
	}
}

// ed25519PublicKey recovers the raw 32-byte Ed25519 point from the MPI
// this library's EdDSA public keys are stored in: the native wire
// encoding has no dedicated EdDSA key material shape, so the point is
// carried in the RSA.N MPI slot, matching how the original CLI's own
// Pubkey() method packs it.
func ed25519PublicKey(key *openpgp.PublicKey) (ed25519.PublicKey, error) {
	b := key.RSA.N.Bytes
	if len(b) != ed25519.PublicKeySize {
		return nil, errors.New("sigengine: malformed Ed25519 public key")
	}
	return ed25519.PublicKey(b), nil
}

// VerifyCertification checks a user-id certification signature
// ("Certify" operation; ops_check_certification_signature).
func VerifyCertification(key *openpgp.PublicKey, uid *openpgp.UserID, sig *openpgp.Signature, packetRaw []byte, signer *openpgp.PublicKey) error {
	h, err := Init(sig, key)
	if err != nil {
		return err
	}
	AddUserID(h, sig.Version, uid)
	return FinalizeAndVerify(h, sig, packetRaw, signer)
}

// VerifySubkeyBinding checks a subkey binding signature (this format's
// "Bind" operation; ops_check_subkey_signature).
func VerifySubkeyBinding(primary, subkey *openpgp.PublicKey, sig *openpgp.Signature, packetRaw []byte, signer *openpgp.PublicKey) error {
	h, err := Init(sig, primary)
	if err != nil {
		return err
	}
	if err := AddSubkey(h, subkey); err != nil {
		return err
	}
	return FinalizeAndVerify(h, sig, packetRaw, signer)
}

// VerifyDocument checks a signature directly over a content hash the
// caller has already fed into h (a detached or inline document
// signature, the general case that VerifyCertification and
// VerifySubkeyBinding specialize). The caller is responsible for
// writing the signed content into h before calling this.
func VerifyDocument(h hash.Hash, sig *openpgp.Signature, packetRaw []byte, signer *openpgp.PublicKey) error {
	return FinalizeAndVerify(h, sig, packetRaw, signer)
}
