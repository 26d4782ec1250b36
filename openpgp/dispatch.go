package openpgp

import "io"

// Content tag values for the packet kinds this core uses (RFC 4880
// §4.3). The parser decodes signature, public key, public subkey and
// user ID packets; any other tag, including the secret-key tags (which
// are only used when encoding), is a format error.
const (
	ContentTagSignature    = 2
	ContentTagSecretKey    = 5
	ContentTagPublicKey    = 6
	ContentTagSecretSubkey = 7
	ContentTagUserID       = 13
	ContentTagPublicSubkey = 14
)

const (
	ptagAlwaysSet         = 0x80
	ptagNewFormat         = 0x40
	ptagNewContentTagMask = 0x3f
	ptagOldContentTagMask = 0x3c
	ptagOldContentShift   = 2
	ptagOldLengthTypeMask = 0x03
)

// Parse drives the top-level parse loop : read packets
// until the source reports a clean EOF, a format error is hit, or the
// source itself fails. It returns nil on a clean end of stream and the
// terminating error otherwise; in both cases every event the parser
// produced, including a final KindParserError event on failure, has
// already reached opts.Sink.
func Parse(opts *Options) error {
	p := newParser(opts)
	for {
		stop, err := p.parseOnePacket()
		if stop {
			return err
		}
	}
}

// parseOnePacket parses a single packet. stop is true when the loop
// should end: either a clean EOF (err == nil) or a fatal error that
// was already reported to the sink.
func (p *parser) parseOnePacket() (stop bool, err error) {
	var first [1]byte
	if err := p.baseRead(first[:]); err != nil {
		if err == io.EOF {
			return true, nil
		}
		p.deliver(Event{Kind: KindParserError, Err: err})
		return true, err
	}

	if first[0]&ptagAlwaysSet == 0 {
		err := formatErrorf("format error (ptag bit not set)")
		p.deliver(Event{Kind: KindParserError, Err: err})
		return true, err
	}

	tag := PacketTag{NewFormat: first[0]&ptagNewFormat != 0}

	if tag.NewFormat {
		tag.ContentTag = first[0] & ptagNewContentTagMask
		tag.LengthType = LengthNewFormat
		length, err := p.readNewLengthRoot()
		if err != nil {
			p.deliver(Event{Kind: KindParserError, Err: err})
			return true, err
		}
		tag.Length = length
	} else {
		tag.ContentTag = (first[0] & ptagOldContentTagMask) >> ptagOldContentShift
		switch first[0] & ptagOldLengthTypeMask {
		case 0:
			tag.LengthType = LengthOneByte
		case 1:
			tag.LengthType = LengthTwoByte
		case 2:
			tag.LengthType = LengthFourByte
		case 3:
			tag.LengthType = LengthIndeterminate
		}
		if tag.LengthType != LengthIndeterminate {
			var n int
			switch tag.LengthType {
			case LengthOneByte:
				n = 1
			case LengthTwoByte:
				n = 2
			case LengthFourByte:
				n = 4
			}
			length, err := p.readScalarRoot(n)
			if err != nil {
				p.deliver(Event{Kind: KindParserError, Err: err})
				return true, err
			}
			tag.Length = length
		}
	}

	p.deliver(Event{Kind: KindPacketTag, PacketTag: &tag})

	var root *region
	if tag.LengthType == LengthIndeterminate {
		root = newIndeterminateRegion(nil)
	} else {
		root = newRegion(nil, tag.Length)
	}

	err = p.dispatchContent(tag.ContentTag, root)
	if err == errIndeterminateEOF {
		// An old-format indeterminate-length packet ends cleanly on
		// source EOF, with no error event and no packet-end event
		// (the packet never reached a defined end).
		return true, nil
	}
	if err != nil {
		p.deliver(Event{Kind: KindParserError, Err: err})
		p.acc.length = 0
		return true, err
	}

	if p.opts.Accumulate {
		raw := p.acc.takeAndReset()
		p.deliver(Event{Kind: KindPacketEnd, Packet: &Packet{Raw: raw}})
	} else {
		p.acc.length = 0
	}

	return false, nil
}

func (p *parser) dispatchContent(contentTag byte, root *region) error {
	switch contentTag {
	case ContentTagSignature:
		sig, err := p.parseSignature(root, p.opts)
		if err != nil {
			return err
		}
		p.deliver(Event{Kind: KindSignature, Signature: sig})
		return nil

	case ContentTagPublicKey, ContentTagPublicSubkey:
		key, err := p.parsePublicKey(root)
		if err != nil {
			return err
		}
		kind := KindPublicKey
		if contentTag == ContentTagPublicSubkey {
			kind = KindPublicSubkey
		}
		p.deliver(Event{Kind: kind, PublicKey: key})
		return nil

	case ContentTagUserID:
		uid, err := p.parseUserID(root)
		if err != nil {
			return err
		}
		p.deliver(Event{Kind: KindUserID, UserID: uid})
		return nil

	default:
		return formatErrorf("format error (unknown content tag %d)", contentTag)
	}
}

func (p *parser) deliver(ev Event) Disposition {
	if p.opts.Sink == nil {
		return ReleaseMemory
	}
	return p.opts.Sink.Consume(ev)
}
