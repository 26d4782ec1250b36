package sigengine

import (
	"bytes"
	"crypto/dsa"
	"crypto/rand"
	"crypto/rsa"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ed25519"

	"github.com/deflomu/openpgp-sdk-go/openpgp"
)

func testRSAKey(t *testing.T) (*rsa.PrivateKey, *openpgp.PublicKey) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	pub := &openpgp.PublicKey{
		Version:      4,
		CreationTime: 1000,
		Algorithm:    openpgp.AlgorithmRSA,
		RSA: openpgp.RSAKeyMaterial{
			N: openpgp.NewMPI(priv.N),
			E: openpgp.NewMPI(big.NewInt(int64(priv.E))),
		},
	}
	return priv, pub
}

// Round-trip an RSA certification signature: build it with
// SignCertification, then verify it through FinalizeAndVerify exactly
// as a caller decoding the wire bytes would.
func TestRSACertificationRoundTrip(t *testing.T) {
	priv, pub := testRSAKey(t)
	uid := &openpgp.UserID{Bytes: []byte("alice@example.com")}
	issuer := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}

	raw, err := SignCertification(pub, uid, openpgp.SigTypeGenericCert, openpgp.HashSHA256, priv, issuer, 1234)
	require.NoError(t, err)

	sink := &testSink{}
	opts := &openpgp.Options{Source: openpgp.NewSource(bytes.NewReader(raw)), Sink: sink, Accumulate: true}
	opts.Configure(openpgp.AllSubpacketTypes, openpgp.DispositionParsed)
	require.NoError(t, openpgp.Parse(opts))

	var sig *openpgp.Signature
	var packetRaw []byte
	for _, ev := range sink.events {
		if ev.Kind == openpgp.KindSignature {
			sig = ev.Signature
		}
		if ev.Kind == openpgp.KindPacketEnd {
			packetRaw = ev.Packet.Raw
		}
	}
	require.NotNil(t, sig)
	require.NotNil(t, packetRaw)

	require.NoError(t, VerifyCertification(pub, uid, sig, packetRaw, pub))
}

// Flipping a single byte of the signature MPI must break verification.
func TestRSACertificationBitFlipFails(t *testing.T) {
	priv, pub := testRSAKey(t)
	uid := &openpgp.UserID{Bytes: []byte("alice@example.com")}
	issuer := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}

	raw, err := SignCertification(pub, uid, openpgp.SigTypeGenericCert, openpgp.HashSHA256, priv, issuer, 1234)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff

	sink := &testSink{}
	opts := &openpgp.Options{Source: openpgp.NewSource(bytes.NewReader(raw)), Sink: sink, Accumulate: true}
	opts.Configure(openpgp.AllSubpacketTypes, openpgp.DispositionParsed)
	require.NoError(t, openpgp.Parse(opts))

	var sig *openpgp.Signature
	var packetRaw []byte
	for _, ev := range sink.events {
		if ev.Kind == openpgp.KindSignature {
			sig = ev.Signature
		}
		if ev.Kind == openpgp.KindPacketEnd {
			packetRaw = ev.Packet.Raw
		}
	}
	require.NotNil(t, sig)

	err = VerifyCertification(pub, uid, sig, packetRaw, pub)
	require.Error(t, err)
}

func TestDSASignVerify(t *testing.T) {
	var params dsa.Parameters
	require.NoError(t, dsa.GenerateParameters(&params, rand.Reader, dsa.L1024N160))
	var priv dsa.PrivateKey
	priv.Parameters = params
	require.NoError(t, dsa.GenerateKey(&priv, rand.Reader))

	pub := &openpgp.PublicKey{
		Version:   4,
		Algorithm: openpgp.AlgorithmDSA,
		DSA: openpgp.DSAKeyMaterial{
			P: openpgp.NewMPI(priv.P),
			Q: openpgp.NewMPI(priv.Q),
			G: openpgp.NewMPI(priv.G),
			Y: openpgp.NewMPI(priv.Y),
		},
	}

	digest := []byte("0123456789012345678901234567890123456789")
	s, err := SignDSA(&priv, digest)
	require.NoError(t, err)
	require.NoError(t, VerifyDSA(DSAPublicKey(pub), digest, s))

	digest[0] ^= 1
	require.Error(t, VerifyDSA(DSAPublicKey(pub), digest, s))
}

func TestEdDSASignVerify(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	digest := []byte("some digest bytes, 32 of them!!!")
	sig := SignEdDSA(priv, digest)
	require.NoError(t, VerifyEdDSA(pub, digest, sig))

	digest[0] ^= 1
	require.Error(t, VerifyEdDSA(pub, digest, sig))
}

func TestCanonicalPublicKeyRoundTrip(t *testing.T) {
	_, pub := testRSAKey(t)
	body, err := pub.EncodeBody()
	require.NoError(t, err)

	packet := openpgp.EncodePacket(openpgp.ContentTagPublicKey, body)
	sink := &testSink{}
	opts := &openpgp.Options{Source: openpgp.NewSource(bytes.NewReader(packet)), Sink: sink}
	require.NoError(t, openpgp.Parse(opts))

	require.Len(t, sink.events, 2)
	decoded := sink.events[1].PublicKey
	require.Equal(t, pub.Version, decoded.Version)
	require.Equal(t, pub.CreationTime, decoded.CreationTime)
	require.Equal(t, pub.RSA.N.Bytes, decoded.RSA.N.Bytes)
	require.Equal(t, pub.RSA.E.Bytes, decoded.RSA.E.Bytes)
}

type testSink struct {
	events []openpgp.Event
}

func (s *testSink) Consume(ev openpgp.Event) openpgp.Disposition {
	s.events = append(s.events, ev)
	return openpgp.ReleaseMemory
}
