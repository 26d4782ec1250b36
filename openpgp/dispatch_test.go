package openpgp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// collectingSink records every event it sees, always releasing memory.
type collectingSink struct {
	events []Event
}

func (s *collectingSink) Consume(ev Event) Disposition {
	s.events = append(s.events, ev)
	return ReleaseMemory
}

func parseBytes(t *testing.T, raw []byte, accumulate bool, configure func(*Options)) *collectingSink {
	t.Helper()
	sink := &collectingSink{}
	opts := &Options{Source: NewSource(bytes.NewReader(raw)), Sink: sink, Accumulate: accumulate}
	if configure != nil {
		configure(opts)
	}
	err := Parse(opts)
	require.NoError(t, err)
	return sink
}

// S1 — minimal user-id packet.
func TestUserIDPacketMinimal(t *testing.T) {
	raw := []byte{0xCD, 0x09, 'H', 'e', 'l', 'l', 'o', ' ', 'W', 'o', 'r', 'l', 'd'}
	sink := parseBytes(t, raw, false, nil)

	require.Len(t, sink.events, 2)
	require.Equal(t, KindPacketTag, sink.events[0].Kind)
	tag := sink.events[0].PacketTag
	require.True(t, tag.NewFormat)
	require.EqualValues(t, ContentTagUserID, tag.ContentTag)
	require.EqualValues(t, 9, tag.Length)

	require.Equal(t, KindUserID, sink.events[1].Kind)
	require.Equal(t, "Hello World", sink.events[1].UserID.String())
}

// New-format length edge cases at the one-byte/two-byte/five-byte boundaries.
func TestNewFormatLengthEdges(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want uint32
	}{
		{"one-byte boundary", []byte{0xC0, 0x00}, 192},
		{"two-byte max", []byte{0xDF, 0xFF}, 8383},
		{"five-byte form", []byte{0xFF, 0x00, 0x00, 0x20, 0x00}, 8192},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newParser(&Options{Source: NewSource(bytes.NewReader(tc.in))})
			got, err := p.readNewLengthRoot()
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

// Packet with length == 0: content event fires
// with an empty region and no inner reads attempted.
func TestZeroLengthUserID(t *testing.T) {
	raw := []byte{0xCD, 0x00}
	sink := parseBytes(t, raw, false, nil)
	require.Len(t, sink.events, 2)
	require.Equal(t, KindUserID, sink.events[1].Kind)
	require.Empty(t, sink.events[1].UserID.Bytes)
}

// S3 — v3 RSA public key.
func buildV3RSAKey(t *testing.T) []byte {
	t.Helper()
	var body bytes.Buffer
	body.WriteByte(3)                      // version
	body.Write([]byte{0, 0, 0, 1})         // creation_time = 1
	body.Write([]byte{0, 0})               // days_valid
	body.WriteByte(1)                      // algorithm = RSA
	body.Write(MPI{BitLength: 8, Bytes: []byte{0x80}}.Encode()) // n
	body.Write(MPI{BitLength: 2, Bytes: []byte{0x03}}.Encode()) // e

	var packet bytes.Buffer
	packet.WriteByte(0x99) // old-format, tag 6 (public key), 2-byte length
	packet.Write([]byte{byte(body.Len() >> 8), byte(body.Len())})
	packet.Write(body.Bytes())
	return packet.Bytes()
}

func TestV3RSAPublicKey(t *testing.T) {
	raw := buildV3RSAKey(t)
	sink := parseBytes(t, raw, false, nil)

	require.Len(t, sink.events, 2)
	require.Equal(t, KindPublicKey, sink.events[1].Kind)
	key := sink.events[1].PublicKey
	require.EqualValues(t, 3, key.Version)
	require.Equal(t, AlgorithmRSA, key.Algorithm)
	require.EqualValues(t, 1, key.CreationTime)
}

// S4 — v4 signature with one hashed creation-time subpacket and an
// unhashed issuer-key-id subpacket.
func buildV4Signature(t *testing.T, keyID [8]byte) []byte {
	t.Helper()
	var body bytes.Buffer
	body.WriteByte(4)    // version
	body.WriteByte(0x00) // type: binary document
	body.WriteByte(1)    // key algorithm: RSA
	body.WriteByte(2)    // hash algorithm: SHA-1

	var hashed bytes.Buffer
	hashed.WriteByte(5)             // subpacket length (1 type byte + 4 data bytes)
	hashed.WriteByte(2)             // type 2: signature creation time, not critical
	hashed.Write([]byte{0, 0, 0, 7}) // creation time = 7
	body.Write([]byte{0, byte(hashed.Len())})
	body.Write(hashed.Bytes())

	var unhashed bytes.Buffer
	unhashed.WriteByte(9) // subpacket length (1 type byte + 8 data bytes)
	unhashed.WriteByte(16) // type 16: issuer key id
	unhashed.Write(keyID[:])
	body.Write([]byte{0, byte(unhashed.Len())})
	body.Write(unhashed.Bytes())

	body.Write([]byte{0xAB, 0xCD}) // hash2
	body.Write(MPI{BitLength: 8, Bytes: []byte{0x80}}.Encode())

	var packet bytes.Buffer
	packet.WriteByte(0xC0 | 2) // new format, tag 2 (signature)
	packet.WriteByte(byte(body.Len()))
	packet.Write(body.Bytes())
	return packet.Bytes()
}

func TestV4SignatureWithIssuerSubpacket(t *testing.T) {
	keyID := [8]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x00, 0x11}
	raw := buildV4Signature(t, keyID)

	sink := parseBytes(t, raw, true, func(o *Options) {
		o.Configure(AllSubpacketTypes, DispositionParsed)
	})

	var sigEvent *Event
	var packetEnd *Event
	for i := range sink.events {
		if sink.events[i].Kind == KindSignature {
			sigEvent = &sink.events[i]
		}
		if sink.events[i].Kind == KindPacketEnd {
			packetEnd = &sink.events[i]
		}
	}
	require.NotNil(t, sigEvent)
	require.NotNil(t, packetEnd)

	sig := sigEvent.Signature
	require.EqualValues(t, 4, sig.Version)
	require.Equal(t, keyID, sig.SignerKeyID)

	// The hashed-data slice starts at the version byte, so it holds the
	// 4 version/type/algorithm bytes, the hashed set's 2-byte length
	// prefix, and the hashed set itself. That prefix counts neither
	// itself nor the 4 header bytes, so it equals HashedDataLength - 6.
	raw2 := packetEnd.Packet.Raw
	slice := raw2[sig.HashedDataStart : sig.HashedDataStart+uint64(sig.HashedDataLength)]
	// slice = version,type,keyalg,hashalg,hashedLenHi,hashedLenLo,hashedBytes...
	hashedLenField := int(slice[4])<<8 | int(slice[5])
	require.Equal(t, hashedLenField, len(slice)-6)
}

// S5 — critical unknown subpacket configured as ignored.
func TestCriticalUnknownSubpacketIgnored(t *testing.T) {
	var body bytes.Buffer
	body.WriteByte(4)
	body.WriteByte(0x00)
	body.WriteByte(1)
	body.WriteByte(2)

	var hashed bytes.Buffer
	hashed.WriteByte(2)          // length: 1 type byte + 1 data byte
	hashed.WriteByte(0x80 | 100) // unknown type 100, critical bit set
	hashed.WriteByte(0x00)
	body.Write([]byte{0, byte(hashed.Len())})
	body.Write(hashed.Bytes())

	body.Write([]byte{0, 0}) // empty unhashed set
	body.Write([]byte{0xAB, 0xCD})
	body.Write(MPI{BitLength: 8, Bytes: []byte{0x80}}.Encode())

	var packet bytes.Buffer
	packet.WriteByte(0xC0 | 2)
	packet.WriteByte(byte(body.Len()))
	packet.Write(body.Bytes())

	sink := &collectingSink{}
	opts := &Options{Source: NewSource(bytes.NewReader(packet.Bytes())), Sink: sink}
	opts.Configure(AllSubpacketTypes, DispositionIgnore)

	err := Parse(opts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "critical signature subpacket ignored (100)")

	last := sink.events[len(sink.events)-1]
	require.Equal(t, KindParserError, last.Kind)
}

// An old-format indeterminate-length packet ends cleanly on source
// EOF, without a format error. The v3 signature
// decoder reads fixed-size fields up through hash2 and is cut off
// exactly there, so the next read (the signature MPI's bit-length
// scalar) starts a fresh read with nothing left in the source.
func TestIndeterminateLengthEndsCleanly(t *testing.T) {
	var body bytes.Buffer
	body.WriteByte(3)                // version
	body.WriteByte(5)                // hash info length
	body.WriteByte(0x00)             // type
	body.Write([]byte{0, 0, 0, 1})   // creation time
	body.Write(make([]byte, 8))      // signer key id
	body.WriteByte(1)                // key algorithm: RSA
	body.WriteByte(2)                // hash algorithm: SHA-1
	body.Write([]byte{0xAB, 0xCD})   // hash2
	// No MPI follows: the stream ends here.

	// Old format, tag 2 (signature), length-type 3 (indeterminate).
	raw := append([]byte{0x80 | (2 << 2) | 3}, body.Bytes()...)

	sink := parseBytes(t, raw, false, nil)
	require.Equal(t, KindPacketTag, sink.events[0].Kind)
	require.Equal(t, LengthIndeterminate, sink.events[0].PacketTag.LengthType)
	for _, ev := range sink.events {
		require.NotEqual(t, KindParserError, ev.Kind)
		require.NotEqual(t, KindSignature, ev.Kind)
	}
}

func TestSubpacketDispositionsAreExclusive(t *testing.T) {
	var opts Options
	opts.Configure(AllSubpacketTypes, DispositionRaw)
	opts.Configure(16, DispositionParsed)
	opts.Configure(5, DispositionIgnore)

	for n := 0; n < 256; n++ {
		d := opts.dispositionFor(byte(n))
		switch n {
		case 16:
			require.Equal(t, DispositionParsed, d)
		case 5:
			require.Equal(t, DispositionIgnore, d)
		default:
			require.Equal(t, DispositionRaw, d)
		}
	}
}
