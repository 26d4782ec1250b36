package openpgp

// Algorithm is an OpenPGP public-key algorithm identifier.
type Algorithm byte

const (
	AlgorithmRSA            Algorithm = 1
	AlgorithmRSAEncryptOnly Algorithm = 2
	AlgorithmRSASignOnly    Algorithm = 3
	AlgorithmElGamal        Algorithm = 16
	AlgorithmDSA            Algorithm = 17
	AlgorithmEdDSA          Algorithm = 22
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmRSA:
		return "RSA"
	case AlgorithmRSAEncryptOnly:
		return "RSA-encrypt-only"
	case AlgorithmRSASignOnly:
		return "RSA-sign-only"
	case AlgorithmElGamal:
		return "ElGamal"
	case AlgorithmDSA:
		return "DSA"
	case AlgorithmEdDSA:
		return "EdDSA"
	default:
		return "unknown"
	}
}

// HashAlgorithm is an OpenPGP hash algorithm identifier.
type HashAlgorithm byte

const (
	HashMD5    HashAlgorithm = 1
	HashSHA1   HashAlgorithm = 2
	HashSHA256 HashAlgorithm = 8
)

// RSAKeyMaterial holds an RSA public key's MPI pair.
type RSAKeyMaterial struct {
	N, E MPI
}

// DSAKeyMaterial holds a DSA public key's MPI tuple.
type DSAKeyMaterial struct {
	P, Q, G, Y MPI
}

// ElGamalKeyMaterial holds an ElGamal public key's MPI tuple.
type ElGamalKeyMaterial struct {
	P, G, Y MPI
}

// PublicKey is a decoded public key or subkey packet ("Public
// key"). Which of RSA/DSA/ElGamal is populated is selected by
// Algorithm.
type PublicKey struct {
	Version      byte
	CreationTime uint32
	DaysValid    uint16 // v2/v3 only
	Algorithm    Algorithm

	RSA     RSAKeyMaterial
	DSA     DSAKeyMaterial
	ElGamal ElGamalKeyMaterial
}

// UserID is a decoded user ID packet ("User id"). Bytes holds exactly
// the packet body; no trailing NUL is stored, and String returns the
// same bytes as a string without appending one.
type UserID struct {
	Bytes []byte
}

func (u UserID) String() string { return string(u.Bytes) }

// parsePublicKey decodes a public key packet (RFC 4880 §5.5.2). Primary
// keys and subkeys share this decoder; the caller (dispatchContent)
// picks the event Kind from the packet's content tag.
func (p *parser) parsePublicKey(r *region) (*PublicKey, error) {
	var c [1]byte
	if err := p.limitedRead(r, c[:]); err != nil {
		return nil, err
	}
	key := &PublicKey{Version: c[0]}
	if key.Version < 2 || key.Version > 4 {
		return nil, formatErrorf("bad public key version (0x%02x)", key.Version)
	}

	t, err := p.limitedReadTime(r)
	if err != nil {
		return nil, err
	}
	key.CreationTime = t

	if key.Version == 2 || key.Version == 3 {
		dv, err := p.limitedReadScalar(r, 2)
		if err != nil {
			return nil, err
		}
		key.DaysValid = uint16(dv)
	}

	if err := p.limitedRead(r, c[:]); err != nil {
		return nil, err
	}
	key.Algorithm = Algorithm(c[0])

	switch key.Algorithm {
	case AlgorithmDSA:
		if key.DSA.P, err = p.readMPI(r, false); err != nil {
			return nil, err
		}
		if key.DSA.Q, err = p.readMPI(r, false); err != nil {
			return nil, err
		}
		if key.DSA.G, err = p.readMPI(r, false); err != nil {
			return nil, err
		}
		if key.DSA.Y, err = p.readMPI(r, false); err != nil {
			return nil, err
		}
	case AlgorithmRSA, AlgorithmRSAEncryptOnly, AlgorithmRSASignOnly:
		if key.RSA.N, err = p.readMPI(r, false); err != nil {
			return nil, err
		}
		if key.RSA.E, err = p.readMPI(r, false); err != nil {
			return nil, err
		}
	case AlgorithmElGamal:
		if key.ElGamal.P, err = p.readMPI(r, false); err != nil {
			return nil, err
		}
		if key.ElGamal.G, err = p.readMPI(r, false); err != nil {
			return nil, err
		}
		if key.ElGamal.Y, err = p.readMPI(r, false); err != nil {
			return nil, err
		}
	case AlgorithmEdDSA:
		// This library has no dedicated EdDSA key-material shape; the
		// native curve point is carried in RSA.N, the same slot
		// package sigengine's ed25519PublicKey reads it back from. An
		// EdDSA point is not normalized the way a generic MPI is (its
		// top bits aren't guaranteed to match its nominal bit length),
		// so the MSB invariant check is skipped here the same way it
		// is for an encrypted MPI.
		if key.RSA.N, err = p.readMPI(r, true); err != nil {
			return nil, err
		}
	default:
		return nil, algorithmErrorf("public key", c[0])
	}

	if !r.consumed() {
		return nil, formatErrorf("unconsumed data (%d)", r.remaining())
	}
	return key, nil
}

// parseUserID decodes a user ID packet: read the whole region as
// bytes. No trailing NUL is added.
func (p *parser) parseUserID(r *region) (*UserID, error) {
	buf := make([]byte, r.remaining())
	if err := p.limitedRead(r, buf); err != nil {
		return nil, err
	}
	return &UserID{Bytes: buf}, nil
}
