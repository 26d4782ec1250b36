package openpgp

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel causes. A caller can recover one of these from a wrapped
// error with errors.Cause or errors.Is.
var (
	// ErrSource is returned when the byte source itself failed (as
	// opposed to the bytes it returned being malformed).
	ErrSource = errors.New("openpgp: byte source error")

	// ErrFormat is the cause of every grammar violation: bad ptag bit,
	// unknown content tag, bad version, bad MPI, unconsumed region,
	// a critical subpacket that was configured to be ignored, and so
	// on. It is always wrapped with a message naming the specifics.
	ErrFormat = errors.New("openpgp: format error")

	// ErrAlgorithm is the cause used when a mandatory algorithm
	// dispatch encounters a value it doesn't recognize (public-key or
	// hash algorithm). It is reported to the sink as a format error
	// event, same as ErrFormat.
	ErrAlgorithm = errors.New("openpgp: unsupported algorithm")
)

const maxErrValueLen = 64

// formatErrorf builds a format error wrapping ErrFormat with a
// human-readable cause. Untrusted values embedded in the message are
// bounded so a malicious input can't inflate an error string without
// limit.
func formatErrorf(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if len(msg) > maxErrValueLen*4 {
		msg = msg[:maxErrValueLen*4] + "...(truncated)"
	}
	return errors.Wrap(ErrFormat, msg)
}

func algorithmErrorf(kind string, value byte) error {
	return errors.Wrapf(ErrAlgorithm, "unknown %s algorithm (%d)", kind, value)
}

func sourceErrorf(format string, args ...interface{}) error {
	return errors.Wrap(ErrSource, fmt.Sprintf(format, args...))
}
