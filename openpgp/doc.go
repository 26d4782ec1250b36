// Package openpgp implements a streaming parser for the OpenPGP packet
// format (RFC 4880, formerly RFC 2440bis). It consumes a byte stream
// and emits a sequence of events to a caller-supplied Sink: packet
// tags, public keys, user IDs, v3/v4 signatures and their subpackets.
//
// The parser never buffers a whole message. A Region stack tracks how
// many bytes remain in each nested length-delimited area so that a
// content decoder can never read past its own packet, and an optional
// Accumulator mirrors every byte the parser consumes so that the
// signature engine (package sigengine) can later hash the exact bytes
// of a v4 signature's hashed region.
package openpgp
