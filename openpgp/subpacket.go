package openpgp

// Signature subpacket type values (RFC 4880 §5.2.3.1). Only the ones
// with a concrete parsed decoder are named individually below;
// anything else configured PARSED falls back to raw delivery.
const (
	SubpacketSignatureCreationTime   = 2
	SubpacketSignatureExpirationTime = 3
	SubpacketTrustSignature          = 5
	SubpacketKeyExpirationTime       = 9
	SubpacketPreferredSymmetric      = 11
	SubpacketIssuerKeyID             = 16
	SubpacketPreferredHash           = 21
	SubpacketPreferredCompression    = 22
	SubpacketKeyServerPreferences    = 23
	SubpacketPrimaryUserID           = 25
	SubpacketKeyFlags                = 27
	SubpacketFeatures                = 30
	SubpacketSignatureTarget         = 31
	SubpacketEmbeddedSignature       = 32
	SubpacketIssuerFingerprint       = 33
)

// Trust is the parsed form of a Trust Signature subpacket (type 5).
// The reference parser this engine is descended from read the trust
// level twice by mistake; here Level and Amount are two distinct
// fields, each read once.
type Trust struct {
	Level  byte
	Amount byte
}

// Subpacket is a signature subpacket that was decoded per its type
// (PARSED disposition). Value holds one of: uint32 (for
// creation/expiration/key-expiration time), Trust, [8]byte (issuer key
// id), []byte (preferred-algorithm lists, issuer fingerprint, embedded
// signature, signature target), byte (key flags, key server
// preferences, features), or bool (primary user id).
type Subpacket struct {
	Type  byte
	Value interface{}
}

// parseOneSubpacket decodes a single subpacket inside a hashed or
// unhashed set: length, critical flag + type byte, then
// dispatch by configured disposition. sig is the enclosing signature
// being built, whose SignerKeyID gets filled in when an issuer key id
// subpacket is decoded under the PARSED disposition; under RAW or
// IGNORE the issuer is not copied into the signature.
func (p *parser) parseOneSubpacket(sig *Signature, set *region, opts *Options, deliver func(Event) Disposition) error {
	length, err := p.limitedReadNewLength(set)
	if err != nil {
		return err
	}
	sub := newRegion(set, length)

	var c [1]byte
	if err := p.limitedRead(sub, c[:]); err != nil {
		return err
	}
	critical := c[0]&0x80 != 0
	typ := c[0] & 0x7f

	disposition := opts.dispositionFor(typ)

	if disposition == DispositionRaw {
		body := make([]byte, sub.remaining())
		if err := p.limitedRead(sub, body); err != nil {
			return err
		}
		deliver(Event{Kind: KindRawSubpacket, Critical: critical, RawSubpacket: &RawSubpacket{Type: typ, Data: body}})
		return nil
	}

	if disposition != DispositionParsed {
		if critical {
			return formatErrorf("critical signature subpacket ignored (%d)", typ)
		}
		return p.limitedSkip(sub, sub.remaining())
	}

	value, known, err := p.decodeSubpacketBody(sig, typ, sub)
	if err != nil {
		return err
	}
	if !known {
		// Recognized disposition (PARSED) but no decoder for this
		// type: fall back to raw delivery, same as the RAW path.
		body := make([]byte, sub.remaining())
		if err := p.limitedRead(sub, body); err != nil {
			return err
		}
		deliver(Event{Kind: KindRawSubpacket, Critical: critical, RawSubpacket: &RawSubpacket{Type: typ, Data: body}})
		return nil
	}

	if !sub.consumed() {
		return formatErrorf("unconsumed data (%d)", sub.remaining())
	}
	deliver(Event{Kind: KindSignatureSubpacket, Critical: critical, Subpacket: &Subpacket{Type: typ, Value: value}})
	return nil
}

// decodeSubpacketBody reads a subpacket's body per its type. known is
// false for a type with no concrete decoder, telling the caller to
// fall back to raw delivery.
func (p *parser) decodeSubpacketBody(sig *Signature, typ byte, sub *region) (value interface{}, known bool, err error) {
	switch typ {
	case SubpacketSignatureCreationTime, SubpacketSignatureExpirationTime, SubpacketKeyExpirationTime:
		t, err := p.limitedReadTime(sub)
		return t, true, err

	case SubpacketTrustSignature:
		var level, amount [1]byte
		if err := p.limitedRead(sub, level[:]); err != nil {
			return nil, true, err
		}
		if err := p.limitedRead(sub, amount[:]); err != nil {
			return nil, true, err
		}
		return Trust{Level: level[0], Amount: amount[0]}, true, nil

	case SubpacketIssuerKeyID:
		var id [8]byte
		if err := p.limitedRead(sub, id[:]); err != nil {
			return nil, true, err
		}
		sig.SignerKeyID = id
		return id, true, nil

	case SubpacketKeyFlags, SubpacketKeyServerPreferences, SubpacketFeatures:
		var b [1]byte
		if err := p.limitedRead(sub, b[:]); err != nil {
			return nil, true, err
		}
		return b[0], true, nil

	case SubpacketPrimaryUserID:
		var b [1]byte
		if err := p.limitedRead(sub, b[:]); err != nil {
			return nil, true, err
		}
		return b[0] != 0, true, nil

	case SubpacketPreferredSymmetric, SubpacketPreferredHash, SubpacketPreferredCompression,
		SubpacketSignatureTarget, SubpacketIssuerFingerprint, SubpacketEmbeddedSignature:
		body := make([]byte, sub.remaining())
		if err := p.limitedRead(sub, body); err != nil {
			return nil, true, err
		}
		return body, true, nil

	default:
		return nil, false, nil
	}
}

// parseSubpacketSet decodes a subpacket set's framing: a 2-byte length
// followed by back-to-back subpackets, used for both the hashed and
// unhashed sets of a v4 signature.
func (p *parser) parseSubpacketSet(sig *Signature, parent *region, opts *Options, deliver func(Event) Disposition) error {
	length, err := p.limitedReadScalar(parent, 2)
	if err != nil {
		return err
	}
	set := newRegion(parent, length)
	for set.lengthRead < set.length {
		if err := p.parseOneSubpacket(sig, set, opts, deliver); err != nil {
			return err
		}
	}
	return nil
}
