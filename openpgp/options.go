package openpgp

// SubpacketDisposition selects how a signature subpacket kind is
// delivered ("Subpacket disposition configuration").
type SubpacketDisposition int

const (
	// DispositionIgnore drops the subpacket body without reporting
	// it, unless it is marked critical, in which case a format error
	// is raised instead.
	DispositionIgnore SubpacketDisposition = iota
	// DispositionRaw delivers the subpacket body unparsed.
	DispositionRaw
	// DispositionParsed decodes the subpacket per its type, or falls
	// back to raw delivery for a recognized-but-undecoded type.
	DispositionParsed
)

// AllSubpacketTypes configures every one of the 256 subpacket type
// values at once, mirroring OPS_PTAG_SS_ALL in the original parser.
const AllSubpacketTypes = 256

// Options bundles everything the parser needs to drive one parse: the
// byte source, the event sink, and per-subpacket-type disposition. The
// zero value is usable: accumulation off, every subpacket type ignored.
type Options struct {
	Source Source
	Sink   Sink

	// Accumulate enables the byte-mirroring tap (component B). It
	// must be true for any v4 signature's hashed-data offsets to be
	// meaningful, since those offsets index into the accumulated
	// buffer.
	Accumulate bool

	dispositions [256]SubpacketDisposition
}

// Configure sets the disposition for one subpacket type (0..255), or
// for all of them when typ == AllSubpacketTypes. Exactly one of RAW,
// PARSED or IGNORE is active per type at any time, enforced here by
// simply overwriting the prior entry rather than keeping separate
// bitsets, which makes that true by construction.
func (o *Options) Configure(typ int, d SubpacketDisposition) {
	if typ == AllSubpacketTypes {
		for n := 0; n < 256; n++ {
			o.dispositions[n] = d
		}
		return
	}
	o.dispositions[typ] = d
}

func (o *Options) dispositionFor(typ byte) SubpacketDisposition {
	return o.dispositions[typ]
}
