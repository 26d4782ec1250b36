// This is free and unencumbered software released into the public domain.

package main

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/deflomu/openpgp-sdk-go/openpgp"
	"github.com/deflomu/openpgp-sdk-go/sigengine"
)

func buildSelfCertifiedKey(t *testing.T) []byte {
	t.Helper()
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	key := sigengine.NewSecretKey(seed, 1700000000)
	keyID, err := key.KeyID()
	require.NoError(t, err)

	pub := key.PublicKey()
	uid := &openpgp.UserID{Bytes: []byte("test <test@example.com>")}

	pubBody, err := pub.EncodeBody()
	require.NoError(t, err)

	sigPacket, err := sigengine.SignCertification(
		pub, uid, openpgp.SigTypePositiveCert, openpgp.HashSHA256,
		key.Priv, keyID, 1700000000,
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	buf.Write(openpgp.EncodePacket(openpgp.ContentTagPublicKey, pubBody))
	buf.Write(openpgp.EncodePacket(openpgp.ContentTagUserID, uid.EncodeBody()))
	buf.Write(sigPacket)
	return buf.Bytes()
}

func TestVerifyStateAcceptsSelfCertifiedKey(t *testing.T) {
	stream := buildSelfCertifiedKey(t)

	log := logrus.New()
	log.Out = &bytes.Buffer{}
	state := &verifyState{log: log}

	opts := &openpgp.Options{
		Source:     openpgp.NewSource(bytes.NewReader(stream)),
		Sink:       openpgp.SinkFunc(state.consume),
		Accumulate: true,
	}
	opts.Configure(openpgp.AllSubpacketTypes, openpgp.DispositionParsed)

	require.NoError(t, openpgp.Parse(opts))
	require.NoError(t, state.failed)
	require.True(t, state.certOK)
}

func TestVerifyStateRejectsTamperedUserID(t *testing.T) {
	stream := buildSelfCertifiedKey(t)

	// Flip a byte inside the user id packet body.
	tampered := append([]byte(nil), stream...)
	idx := bytes.Index(tampered, []byte("test <test@example.com>"))
	require.GreaterOrEqual(t, idx, 0)
	tampered[idx] = 'X'

	log := logrus.New()
	log.Out = &bytes.Buffer{}
	state := &verifyState{log: log}

	opts := &openpgp.Options{
		Source:     openpgp.NewSource(bytes.NewReader(tampered)),
		Sink:       openpgp.SinkFunc(state.consume),
		Accumulate: true,
	}
	opts.Configure(openpgp.AllSubpacketTypes, openpgp.DispositionParsed)

	require.NoError(t, openpgp.Parse(opts))
	require.Error(t, state.failed)
}
