package sigengine

import (
	"crypto/dsa"
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"

	"github.com/deflomu/openpgp-sdk-go/openpgp"
)

// DSAPublicKey converts the decoded wire key material to a standard
// library key.
func DSAPublicKey(key *openpgp.PublicKey) *dsa.PublicKey {
	return &dsa.PublicKey{
		Parameters: dsa.Parameters{P: key.DSA.P.Int(), Q: key.DSA.Q.Int(), G: key.DSA.G.Int()},
		Y:          key.DSA.Y.Int(),
	}
}

// truncateForQ trims digest to dsa's q bit length, per FIPS 186-3: only
// the leftmost Q bits of the hash are used, matching ops_dsa_verify's
// implicit truncation via BN_bin2bn(hash, qlen/8, ...).
func truncateForQ(digest []byte, q *big.Int) []byte {
	qBytes := (q.BitLen() + 7) / 8
	if qBytes > 0 && qBytes < len(digest) {
		return digest[:qBytes]
	}
	return digest
}

// SignDSA produces an (r, s) signature over digest with priv.
func SignDSA(priv *dsa.PrivateKey, digest []byte) (openpgp.DSASignature, error) {
	r, s, err := dsa.Sign(rand.Reader, priv, truncateForQ(digest, priv.Q))
	if err != nil {
		return openpgp.DSASignature{}, errors.Wrap(err, "sigengine: DSA sign failed")
	}
	return openpgp.DSASignature{R: openpgp.NewMPI(r), S: openpgp.NewMPI(s)}, nil
}

// VerifyDSA checks sig against digest under pub.
func VerifyDSA(pub *dsa.PublicKey, digest []byte, sig openpgp.DSASignature) error {
	r, s := sig.R.Int(), sig.S.Int()
	if !dsa.Verify(pub, truncateForQ(digest, pub.Q), r, s) {
		return errors.New("sigengine: DSA signature verification failed")
	}
	return nil
}
