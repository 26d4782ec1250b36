package openpgp

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// Round-trip each algorithm's public key body through EncodeBody and
// parsePublicKey, diffing the decoded struct against the original with
// go-cmp rather than a field-by-field require.Equal chain — useful
// here since a mismatch pinpoints exactly which MPI diverged.
func TestPublicKeyEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		key  *PublicKey
	}{
		{
			name: "RSA",
			key: &PublicKey{
				Version:      4,
				CreationTime: 1700000000,
				Algorithm:    AlgorithmRSA,
				RSA: RSAKeyMaterial{
					N: MPI{BitLength: 9, Bytes: []byte{0x01, 0x23}},
					E: MPI{BitLength: 2, Bytes: []byte{0x03}},
				},
			},
		},
		{
			name: "DSA",
			key: &PublicKey{
				Version:      4,
				CreationTime: 1700000001,
				Algorithm:    AlgorithmDSA,
				DSA: DSAKeyMaterial{
					P: MPI{BitLength: 9, Bytes: []byte{0x01, 0x00}},
					Q: MPI{BitLength: 5, Bytes: []byte{0x15}},
					G: MPI{BitLength: 3, Bytes: []byte{0x05}},
					Y: MPI{BitLength: 9, Bytes: []byte{0x01, 0x80}},
				},
			},
		},
		{
			name: "EdDSA",
			key: &PublicKey{
				Version:      4,
				CreationTime: 1700000002,
				Algorithm:    AlgorithmEdDSA,
				RSA:          RSAKeyMaterial{N: MPI{BitLength: 256, Bytes: bytes.Repeat([]byte{0xAB}, 32)}},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, err := tc.key.EncodeBody()
			require.NoError(t, err)

			p := newParser(&Options{Source: NewSource(bytes.NewReader(body))})
			region := newRegion(nil, uint32(len(body)))
			got, err := p.parsePublicKey(region)
			require.NoError(t, err)

			if diff := cmp.Diff(tc.key, got); diff != "" {
				t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
