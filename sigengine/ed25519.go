package sigengine

import (
	"math/big"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ed25519"

	"github.com/deflomu/openpgp-sdk-go/openpgp"
)

// EdDSA signatures are carried in the same two-MPI DSASignature
// shape the wire format uses for DSA: the 64-byte
// Ed25519 signature splits into a 32-byte r and a 32-byte s, each
// stored as its own MPI. This mirrors the original CLI's SignKey.sign, which
// calls ed25519.Sign directly on the assembled hash digest and appends
// the two 32-byte halves as MPIs without ever separately hashing them
// again — Ed25519 performs its own internal SHA-512 over whatever
// digest it's handed.

func eddsaMPI(b []byte) openpgp.MPI {
	n := new(big.Int).SetBytes(b)
	return openpgp.NewMPI(n)
}

// fixed32 re-expands an MPI back to a full 32-byte big-endian buffer;
// NewMPI strips leading zero bytes, which a raw Ed25519 component must
// not lose.
func fixed32(m openpgp.MPI) []byte {
	out := make([]byte, 32)
	b := m.Bytes
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	copy(out[32-len(b):], b)
	return out
}

// SignEdDSA signs digest (the assembled hash-and-trailer output) with
// priv, returning the r/s MPI pair.
func SignEdDSA(priv ed25519.PrivateKey, digest []byte) openpgp.DSASignature {
	sig := ed25519.Sign(priv, digest)
	return openpgp.DSASignature{R: eddsaMPI(sig[:32]), S: eddsaMPI(sig[32:])}
}

// VerifyEdDSA checks sig against digest under pub.
func VerifyEdDSA(pub ed25519.PublicKey, digest []byte, sig openpgp.DSASignature) error {
	raw := append(fixed32(sig.R), fixed32(sig.S)...)
	if !ed25519.Verify(pub, digest, raw) {
		return errors.New("sigengine: EdDSA signature verification failed")
	}
	return nil
}
