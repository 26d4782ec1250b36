// This is free and unencumbered software released into the public domain.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// fatal prints the message like fmt.Printf and exits 1, the same
// convention the original CLI used for every unrecoverable error.
func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "opgptool: "+format+"\n", args...)
	os.Exit(1)
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.Out = os.Stderr
	log.Level = logrus.WarnLevel
	if verbose {
		log.Level = logrus.DebugLevel
	}
	return log
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  opgptool dump [-v] [file]")
	fmt.Fprintln(w, "  opgptool verify [-v] [file]")
	fmt.Fprintln(w, "  opgptool keygen -u id [-v] [-i pwfile] [-n] [-t secs]")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  dump      stream a packet file as text to stdout")
	fmt.Fprintln(w, "  verify    check a self-certified key's signatures")
	fmt.Fprintln(w, "  keygen    derive an EdDSA key from a passphrase and self-certify it")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(1)
	}

	cmd, rest := os.Args[1], os.Args[2:]
	switch cmd {
	case "dump":
		runDump(rest)
	case "verify":
		runVerify(rest)
	case "keygen":
		runKeygen(rest)
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		usage(os.Stderr)
		fatal("unknown command %q", cmd)
	}
}

// openInput opens args[0] if present, or falls back to stdin,
// mirroring the original CLI's "file argument or stdin" convention used by
// both its sign and clearsign commands.
func openInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 {
		return io.NopCloser(os.Stdin), nil
	}
	if len(args) > 1 {
		return nil, fmt.Errorf("too many arguments")
	}
	return os.Open(args[0])
}
