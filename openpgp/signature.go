package openpgp

// SignatureType is the OpenPGP signature type byte (RFC 4880 §5.2.1).
type SignatureType byte

const (
	SigTypeBinary            SignatureType = 0x00
	SigTypeText              SignatureType = 0x01
	SigTypeGenericCert       SignatureType = 0x10
	SigTypePersonaCert       SignatureType = 0x11
	SigTypeCasualCert        SignatureType = 0x12
	SigTypePositiveCert      SignatureType = 0x13
	SigTypeSubkeyBinding     SignatureType = 0x18
	SigTypePrimaryKeyBinding SignatureType = 0x19
	SigTypeDirectKey         SignatureType = 0x1f
	SigTypeKeyRevocation     SignatureType = 0x20
	SigTypeSubkeyRevocation  SignatureType = 0x28
	SigTypeCertRevocation    SignatureType = 0x30
	SigTypeTimestamp         SignatureType = 0x40
	SigTypeThirdPartyConfirm SignatureType = 0x50
)

// RSASignature is the signature material for an RSA signature: a
// single MPI holding m^d mod n.
type RSASignature struct {
	S MPI
}

// DSASignature is the signature material for a DSA (or EdDSA, reusing
// the same r/s shape) signature.
type DSASignature struct {
	R, S MPI
}

// Signature is a decoded v3 or v4 signature packet (RFC 4880 §5.2).
// The v4-only fields are zero for a v3 signature.
type Signature struct {
	Version       byte
	Type          SignatureType
	CreationTime  uint32 // v3 only; v4 carries creation time as a hashed subpacket
	SignerKeyID   [8]byte
	KeyAlgorithm  Algorithm
	HashAlgorithm HashAlgorithm
	Hash2         [2]byte

	RSA RSASignature
	DSA DSASignature

	// v4-only: the link between this parser and the signature engine
	// (package sigengine). HashedDataStart is the accumulator offset
	// of the version byte itself; HashedDataLength is
	// the number of bytes from there through the end of the hashed
	// subpacket set, inclusive of that set's own 2-byte length
	// prefix.
	HashedDataStart  uint64
	HashedDataLength uint32
}

// parseSignature captures the accumulator offset the v4 hashed-data
// region will start from, reads the version byte,
// and branch to the v3 or v4 decoder.
func (p *parser) parseSignature(r *region, opts *Options) (*Signature, error) {
	hashedStart := p.acc.offset()

	var c [1]byte
	if err := p.limitedRead(r, c[:]); err != nil {
		return nil, err
	}
	switch c[0] {
	case 2, 3:
		// v2 and v3 share an identical wire layout (RFC 1991 vs RFC
		// 2440), so a v2 signature is accepted along the v3 path;
		// the decoded Version field still faithfully reports which
		// one was seen.
		return p.parseV3Signature(r, c[0])
	case 4:
		return p.parseV4Signature(r, opts, hashedStart)
	default:
		return nil, formatErrorf("bad signature version (%d)", c[0])
	}
}

func (p *parser) parseV3Signature(r *region, version byte) (*Signature, error) {
	sig := &Signature{Version: version}

	var c [1]byte
	if err := p.limitedRead(r, c[:]); err != nil {
		return nil, err
	}
	if c[0] != 5 {
		return nil, formatErrorf("bad hash info length")
	}

	if err := p.limitedRead(r, c[:]); err != nil {
		return nil, err
	}
	sig.Type = SignatureType(c[0])

	t, err := p.limitedReadTime(r)
	if err != nil {
		return nil, err
	}
	sig.CreationTime = t

	if err := p.limitedRead(r, sig.SignerKeyID[:]); err != nil {
		return nil, err
	}

	if err := p.limitedRead(r, c[:]); err != nil {
		return nil, err
	}
	sig.KeyAlgorithm = Algorithm(c[0])

	if err := p.limitedRead(r, c[:]); err != nil {
		return nil, err
	}
	sig.HashAlgorithm = HashAlgorithm(c[0])

	if err := p.limitedRead(r, sig.Hash2[:]); err != nil {
		return nil, err
	}

	if err := p.readSignatureMaterial(r, sig); err != nil {
		return nil, err
	}

	if !r.consumed() {
		return nil, formatErrorf("unconsumed data (%d)", r.remaining())
	}
	return sig, nil
}

func (p *parser) parseV4Signature(r *region, opts *Options, hashedStart uint64) (*Signature, error) {
	sig := &Signature{Version: 4, HashedDataStart: hashedStart}

	var c [1]byte
	if err := p.limitedRead(r, c[:]); err != nil {
		return nil, err
	}
	sig.Type = SignatureType(c[0])

	if err := p.limitedRead(r, c[:]); err != nil {
		return nil, err
	}
	sig.KeyAlgorithm = Algorithm(c[0])

	if err := p.limitedRead(r, c[:]); err != nil {
		return nil, err
	}
	sig.HashAlgorithm = HashAlgorithm(c[0])

	noop := func(Event) Disposition { return ReleaseMemory }
	deliver := noop
	if opts.Sink != nil {
		deliver = opts.Sink.Consume
	}

	if err := p.parseSubpacketSet(sig, r, opts, deliver); err != nil {
		return nil, err
	}
	// Captured here, before the unhashed set: the hashed length covers
	// the version..end-of-hashed-set bytes only.
	sig.HashedDataLength = uint32(p.acc.offset() - sig.HashedDataStart)

	if err := p.parseSubpacketSet(sig, r, opts, deliver); err != nil {
		return nil, err
	}

	if err := p.limitedRead(r, sig.Hash2[:]); err != nil {
		return nil, err
	}

	if err := p.readSignatureMaterial(r, sig); err != nil {
		return nil, err
	}

	if !r.consumed() {
		return nil, formatErrorf("unconsumed data (%d)", r.remaining())
	}
	return sig, nil
}

func (p *parser) readSignatureMaterial(r *region, sig *Signature) error {
	switch sig.KeyAlgorithm {
	case AlgorithmRSA, AlgorithmRSASignOnly:
		s, err := p.readMPI(r, false)
		if err != nil {
			return err
		}
		sig.RSA.S = s
		return nil
	case AlgorithmDSA, AlgorithmEdDSA:
		rr, err := p.readMPI(r, false)
		if err != nil {
			return err
		}
		ss, err := p.readMPI(r, false)
		if err != nil {
			return err
		}
		sig.DSA.R, sig.DSA.S = rr, ss
		return nil
	default:
		return algorithmErrorf("signature key", byte(sig.KeyAlgorithm))
	}
}
