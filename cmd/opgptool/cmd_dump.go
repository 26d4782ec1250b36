// This is free and unencumbered software released into the public domain.

package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"nullprogram.com/x/optparse"

	"github.com/deflomu/openpgp-sdk-go/openpgp"
)

// runDump streams a packet file to stdout as text, one line per event,
// the way the original tool's maintainers would sketch a debugging aid
// on top of the parser's event sink.
func runDump(args []string) {
	options := []optparse.Option{
		{"verbose", 'v', optparse.KindNone},
		{"help", 'h', optparse.KindNone},
	}
	results, rest, err := optparse.Parse(options, append([]string{"opgptool dump"}, args...))
	if err != nil {
		fatal("%s", err)
	}

	var verbose bool
	for _, r := range results {
		switch r.Long {
		case "verbose":
			verbose = true
		case "help":
			usage(os.Stdout)
			os.Exit(0)
		}
	}

	in, err := openInput(rest)
	if err != nil {
		fatal("%s", err)
	}
	defer in.Close()

	log := newLogger(verbose)

	opts := &openpgp.Options{
		Source: openpgp.NewSource(in),
		Sink:   openpgp.SinkFunc(dumpSink(log)),
	}
	opts.Configure(openpgp.AllSubpacketTypes, openpgp.DispositionParsed)

	if err := openpgp.Parse(opts); err != nil {
		fatal("%s", err)
	}
}

// dumpSink renders each event to stdout; it never takes ownership of
// event payloads, since dump only ever reads them once.
func dumpSink(log *logrus.Logger) func(openpgp.Event) openpgp.Disposition {
	return func(ev openpgp.Event) openpgp.Disposition {
		switch ev.Kind {
		case openpgp.KindPacketTag:
			log.Debugf("packet tag: content-tag=%d new-format=%v", ev.PacketTag.ContentTag, ev.PacketTag.NewFormat)

		case openpgp.KindPublicKey, openpgp.KindPublicSubkey:
			k := ev.PublicKey
			fmt.Printf("%s: version=%d algorithm=%s created=%d\n", ev.Kind, k.Version, k.Algorithm, k.CreationTime)

		case openpgp.KindUserID:
			fmt.Printf("user-id: %q\n", ev.UserID.String())

		case openpgp.KindSignature:
			s := ev.Signature
			fmt.Printf("signature: version=%d type=0x%02x key-algorithm=%s hash-algorithm=%d issuer=%x\n",
				s.Version, s.Type, s.KeyAlgorithm, s.HashAlgorithm, s.SignerKeyID)

		case openpgp.KindSignatureSubpacket:
			fmt.Printf("  subpacket: type=%d critical=%v value=%v\n", ev.Subpacket.Type, ev.Critical, ev.Subpacket.Value)

		case openpgp.KindRawSubpacket:
			fmt.Printf("  subpacket: type=%d critical=%v (%d raw bytes)\n", ev.RawSubpacket.Type, ev.Critical, len(ev.RawSubpacket.Data))

		case openpgp.KindPacketEnd:
			log.Debugf("packet end: %d bytes", len(ev.Packet.Raw))

		case openpgp.KindParserError:
			fmt.Fprintf(os.Stderr, "opgptool: %s\n", ev.Err)
		}
		return openpgp.ReleaseMemory
	}
}
