// Package sigengine implements the OpenPGP signature engine: assembling
// the exact hash input a signature covers, appending the v3 or v4
// trailer, and signing or verifying the resulting digest with RSA, DSA
// or Ed25519 ("Signature engine").
//
// It is built on top of package openpgp for the wire types (PublicKey,
// UserID, Signature, MPI) and their decoders/encoders, grounded on how
// the original CLI's SignKey.sign method and _examples/original_source's
// signature.c assemble the same hash input by hand.
package sigengine
