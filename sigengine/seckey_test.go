package sigengine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func testSeed() []byte {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}
	return seed
}

func TestSecretKeyEncryptedRoundTrip(t *testing.T) {
	k := NewSecretKey(testSeed(), 1700000000)
	packet, err := k.EncodeEncrypted([]byte("correct horse battery staple"))
	require.NoError(t, err)

	body, err := stripPacketHeader(packet)
	require.NoError(t, err)

	decoded, err := DecodeSecretPacket(body, []byte("correct horse battery staple"))
	require.NoError(t, err)
	require.Equal(t, k.Priv, decoded.Priv)
	require.Equal(t, k.Created, decoded.Created)
}

func TestSecretKeyWrongPassphraseFails(t *testing.T) {
	k := NewSecretKey(testSeed(), 1700000000)
	packet, err := k.EncodeEncrypted([]byte("correct horse battery staple"))
	require.NoError(t, err)

	body, err := stripPacketHeader(packet)
	require.NoError(t, err)

	_, err = DecodeSecretPacket(body, []byte("wrong passphrase"))
	require.Error(t, err)
}

func TestSecretKeyUnencryptedRoundTrip(t *testing.T) {
	k := NewSecretKey(testSeed(), 42)
	packet, err := k.EncodeUnencrypted()
	require.NoError(t, err)

	body, err := stripPacketHeader(packet)
	require.NoError(t, err)

	decoded, err := DecodeSecretPacket(body, nil)
	require.NoError(t, err)
	require.Equal(t, k.Priv, decoded.Priv)
}

// stripPacketHeader strips the new-format ptag + length prefix
// EncodePacket wrote, returning just the body DecodeSecretPacket
// expects (this engine's content decoders don't yet special-case the
// secret-key tag, so tests hand DecodeSecretPacket the body directly).
func stripPacketHeader(packet []byte) ([]byte, error) {
	n := int(packet[1])
	if n < 192 {
		return packet[2:], nil
	}
	return nil, errors.New("unsupported test packet length")
}
